package blitz

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Job is the per job type capability a Runner is parameterised with. Validate
// inspects the encoded option document and returns the invalid field names;
// ShapeResult turns the raw result of a status response into the value
// handed to the callback.
type Job[R any] interface {
	Validate(options gjson.Result) []string
	ShapeResult(raw gjson.Result) R
}

// BaseJob runs only the shared option checks and passes results through
// unshaped. Job types embed it and override what they need.
type BaseJob struct{}

// Validate runs the shared option checks.
func (BaseJob) Validate(options gjson.Result) []string {
	return Validate(options)
}

// ShapeResult returns the raw result unchanged.
func (BaseJob) ShapeResult(raw gjson.Result) gjson.Result {
	return raw
}

// encodeOptions turns caller supplied options into the JSON document that is
// validated and submitted. Already encoded input is used as is.
func encodeOptions(options interface{}) (json.RawMessage, error) {
	switch v := options.(type) {
	case json.RawMessage:
		return v, nil
	case []byte:
		return json.RawMessage(v), nil
	case string:
		return json.RawMessage(v), nil
	}
	return json.Marshal(options)
}
