package http

import (
	"bytes"
	"time"

	"github.com/tidwall/gjson"
)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode   int
	ResponseTime time.Duration
	rawBody      []byte
}

// GetBodyAsString returns the response body as a string
func (r *Response) GetBodyAsString() string {
	return string(r.rawBody)
}

// IsEmpty reports whether the body carries no value: nothing but whitespace,
// or a bare JSON null.
func (r *Response) IsEmpty() bool {
	trimmed := bytes.TrimSpace(r.rawBody)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// IsJSON reports whether the body is syntactically valid JSON.
func (r *Response) IsJSON() bool {
	return gjson.ValidBytes(r.rawBody)
}

// GetBodyAsGJSON parses the body for path based access.
func (r *Response) GetBodyAsGJSON() gjson.Result {
	return gjson.ParseBytes(r.rawBody)
}

// GetResponseTimeMillis returns the response time in milliseconds
func (r *Response) GetResponseTimeMillis() int64 {
	return r.ResponseTime.Milliseconds()
}
