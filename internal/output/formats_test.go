package output

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/blitz/pkg/blitz"
)

func TestGetFormatter(t *testing.T) {
	if _, ok := GetFormatter(FormatJSON, false, true).(*JSONFormatter); !ok {
		t.Error("Expected JSONFormatter for json format")
	}
	if _, ok := GetFormatter(FormatYAML, false, true).(*YAMLFormatter); !ok {
		t.Error("Expected YAMLFormatter for yaml format")
	}
	if _, ok := GetFormatter(FormatText, false, true).(*Formatter); !ok {
		t.Error("Expected Formatter for text format")
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"text", "json", "yaml"} {
		if _, err := ParseFormat(name); err != nil {
			t.Errorf("Expected %s to be accepted: %v", name, err)
		}
	}
	if _, err := ParseFormat("junit"); err == nil {
		t.Error("Expected unknown format to be rejected")
	}
}

func TestJSONFormatter(t *testing.T) {
	f := &JSONFormatter{}

	var event Event
	if err := json.Unmarshal([]byte(f.FormatResult(sampleResult())), &event); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if event.Type != "result" || event.Result.Region == nil || *event.Result.Region != "california" || len(event.Result.Timeline) != 2 {
		t.Errorf("Unexpected event: %+v", event)
	}

	line := f.FormatResult(&blitz.Result{Timeline: []blitz.Point{{}}})
	if !strings.Contains(line, `"timeline":[{}]`) {
		t.Errorf("Expected unknown point fields to be omitted, got %s", line)
	}

	errLine := f.FormatError(&blitz.ValidationError{Msg: "Validation error.", Fields: []string{"url"}})
	if !strings.Contains(errLine, `"kind":"validation"`) || !strings.Contains(errLine, `"fields":["url"]`) {
		t.Errorf("Unexpected error line %s", errLine)
	}

	if !strings.HasSuffix(f.FormatQueued("abc"), "\n") {
		t.Error("Expected JSON lines to end with a newline")
	}
}

func TestYAMLFormatter(t *testing.T) {
	f := &YAMLFormatter{}

	doc := f.FormatSummary(Summarize(sampleResult()))
	if !strings.HasPrefix(doc, "---\n") {
		t.Errorf("Expected document separator, got %s", doc)
	}

	var event Event
	if err := yaml.Unmarshal([]byte(strings.TrimPrefix(doc, "---\n")), &event); err != nil {
		t.Fatalf("Invalid YAML: %v", err)
	}
	if event.Type != "summary" || event.Summary.Hits != 27 {
		t.Errorf("Unexpected event: %+v", event)
	}

	errDoc := f.FormatError(&blitz.ServerError{Code: "throttle", Msg: "slow down"})
	if !strings.Contains(errDoc, "kind: throttle") {
		t.Errorf("Unexpected error document %s", errDoc)
	}
}
