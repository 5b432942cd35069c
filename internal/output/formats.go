package output

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/blitz/pkg/blitz"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable text format
	FormatText OutputFormat = "text"
	// FormatJSON writes one JSON document per line
	FormatJSON OutputFormat = "json"
	// FormatYAML writes one YAML document per event
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(name string) (OutputFormat, error) {
	switch f := OutputFormat(name); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", name)
}

// FormatProvider is an interface for different output formatters
type FormatProvider interface {
	FormatQueued(jobID string) string
	FormatAborted(jobID string) string
	FormatResult(result *blitz.Result) string
	FormatSummary(summary Summary) string
	FormatError(err error) string
}

// Event is the structured form of everything a rush reports.
type Event struct {
	Type    string        `json:"type" yaml:"type"`
	JobID   string        `json:"jobId,omitempty" yaml:"jobId,omitempty"`
	Result  *blitz.Result `json:"result,omitempty" yaml:"result,omitempty"`
	Summary *Summary      `json:"summary,omitempty" yaml:"summary,omitempty"`
	Error   *ErrorData    `json:"error,omitempty" yaml:"error,omitempty"`
}

// ErrorData is the structured form of a failure.
type ErrorData struct {
	Kind   string   `json:"kind" yaml:"kind"`
	Reason string   `json:"reason" yaml:"reason"`
	Fields []string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

func newErrorData(err error) *ErrorData {
	var validationErr *blitz.ValidationError
	if errors.As(err, &validationErr) {
		return &ErrorData{Kind: validationErr.Kind(), Reason: validationErr.Reason(), Fields: validationErr.Fields}
	}
	var blitzErr blitz.Error
	if errors.As(err, &blitzErr) {
		return &ErrorData{Kind: blitzErr.Kind(), Reason: blitzErr.Reason()}
	}
	return &ErrorData{Kind: "error", Reason: err.Error()}
}

// JSONFormatter renders events as JSON lines
type JSONFormatter struct{}

func (f *JSONFormatter) encode(e Event) string {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf(`{"type":"error","error":{"kind":"output","reason":%q}}`+"\n", err.Error())
	}
	return string(data) + "\n"
}

// FormatQueued renders a queued event.
func (f *JSONFormatter) FormatQueued(jobID string) string {
	return f.encode(Event{Type: "queued", JobID: jobID})
}

// FormatAborted renders an aborted event.
func (f *JSONFormatter) FormatAborted(jobID string) string {
	return f.encode(Event{Type: "aborted", JobID: jobID})
}

// FormatResult renders a result event.
func (f *JSONFormatter) FormatResult(result *blitz.Result) string {
	return f.encode(Event{Type: "result", Result: result})
}

// FormatSummary renders a summary event.
func (f *JSONFormatter) FormatSummary(summary Summary) string {
	return f.encode(Event{Type: "summary", Summary: &summary})
}

// FormatError renders an error event.
func (f *JSONFormatter) FormatError(err error) string {
	return f.encode(Event{Type: "error", Error: newErrorData(err)})
}

// YAMLFormatter renders events as a YAML document stream
type YAMLFormatter struct{}

func (f *YAMLFormatter) encode(e Event) string {
	data, err := yaml.Marshal(e)
	if err != nil {
		return fmt.Sprintf("---\ntype: error\nerror:\n  kind: output\n  reason: %q\n", err.Error())
	}
	return "---\n" + string(data)
}

// FormatQueued renders a queued event.
func (f *YAMLFormatter) FormatQueued(jobID string) string {
	return f.encode(Event{Type: "queued", JobID: jobID})
}

// FormatAborted renders an aborted event.
func (f *YAMLFormatter) FormatAborted(jobID string) string {
	return f.encode(Event{Type: "aborted", JobID: jobID})
}

// FormatResult renders a result event.
func (f *YAMLFormatter) FormatResult(result *blitz.Result) string {
	return f.encode(Event{Type: "result", Result: result})
}

// FormatSummary renders a summary event.
func (f *YAMLFormatter) FormatSummary(summary Summary) string {
	return f.encode(Event{Type: "summary", Summary: &summary})
}

// FormatError renders an error event.
func (f *YAMLFormatter) FormatError(err error) string {
	return f.encode(Event{Type: "error", Error: newErrorData(err)})
}

// GetFormatter returns a formatter for the specified output format
func GetFormatter(format OutputFormat, verbose bool, noColor bool) FormatProvider {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return NewFormatter(verbose, noColor)
	}
}
