package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Path    string
	Message string
}

// Error returns the error message
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// ValidateSettings validates the connection settings
func ValidateSettings(s *Settings) ValidationErrors {
	var errors ValidationErrors

	if s.User == "" {
		errors = append(errors, ValidationError{
			Path:    "user",
			Message: "user is required (--user or BLITZ_USER)",
		})
	}

	if s.APIKey == "" {
		errors = append(errors, ValidationError{
			Path:    "api-key",
			Message: "api key is required (--api-key or BLITZ_API_KEY)",
		})
	}

	if s.Host == "" {
		errors = append(errors, ValidationError{
			Path:    "host",
			Message: "host cannot be empty",
		})
	}

	if s.Port < 1 || s.Port > 65535 {
		errors = append(errors, ValidationError{
			Path:    "port",
			Message: fmt.Sprintf("invalid port: %d", s.Port),
		})
	}

	if s.Scheme != "http" && s.Scheme != "https" {
		errors = append(errors, ValidationError{
			Path:    "scheme",
			Message: fmt.Sprintf("invalid scheme: %s", s.Scheme),
		})
	}

	if s.Timeout <= 0 {
		errors = append(errors, ValidationError{
			Path:    "timeout",
			Message: "timeout must be positive",
		})
	}

	if s.PollInterval <= 0 {
		errors = append(errors, ValidationError{
			Path:    "poll-interval",
			Message: "poll interval must be positive",
		})
	}

	return errors
}
