package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/blitz/pkg/jsonschema"
)

// rushSchema only pins the document to an object with known keys; value
// shapes are checked by the rush validator so every bad field is reported
// together.
const rushSchema = `{
	"type": "object",
	"properties": {
		"url": {},
		"pattern": {},
		"region": {},
		"referrer": {},
		"status": {},
		"timeout": {},
		"cookies": {},
		"headers": {},
		"user": {},
		"user-agent": {},
		"content": {},
		"follow": {},
		"variables": {}
	},
	"additionalProperties": false
}`

var rushOptionsSchema = jsonschema.MustCompile(rushSchema)

// LoadRushOptions reads rush options from a YAML or JSON file. The result is
// a generic document suitable for blitz.Runner.Execute.
func LoadRushOptions(path string) (map[string]interface{}, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("options file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading options file: %w", err)
	}

	return ParseRushOptions(data)
}

// ParseRushOptions decodes YAML or JSON rush options and rejects unknown keys.
func ParseRushOptions(data []byte) (map[string]interface{}, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error parsing options file: %w", err)
	}

	options, ok := doc.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("options file must contain a mapping, got %T", doc)
	}

	if errs := rushOptionsSchema.ValidateValue(options); len(errs) > 0 {
		return nil, fmt.Errorf("invalid options file: %w", errs)
	}

	return options, nil
}

// MergeRushOptions overlays override on base; keys in override win.
func MergeRushOptions(base, override map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(base)+len(override))

	for key, value := range base {
		result[key] = value
	}

	for key, value := range override {
		result[key] = value
	}

	return result
}
