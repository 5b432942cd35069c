package blitz

import (
	"fmt"
	"strings"
)

// KindClient and KindValidation are the error kinds produced locally. Any
// other kind comes from the remote service.
const (
	KindClient     = "client"
	KindValidation = "validation"
)

// Error is implemented by every error this package returns from a Runner.
type Error interface {
	error
	Kind() string
	Reason() string
}

// ClientError reports a transport or protocol shape problem: no response,
// an unparseable response or a missing required field.
type ClientError struct {
	Msg string
	Err error
}

func newClientError(msg string, err error) *ClientError {
	return &ClientError{Msg: msg, Err: err}
}

func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("client: %s: %v", e.Msg, e.Err)
	}
	return "client: " + e.Msg
}

// Kind always returns KindClient.
func (e *ClientError) Kind() string { return KindClient }

// Reason returns the human readable message.
func (e *ClientError) Reason() string { return e.Msg }

func (e *ClientError) Unwrap() error { return e.Err }

// ServerError carries an error kind and reason reported by the remote
// service, either at the top level of a response or nested under result.
type ServerError struct {
	Code string
	Msg  string
}

func (e *ServerError) Error() string {
	if e.Msg == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Kind returns the server supplied error code.
func (e *ServerError) Kind() string { return e.Code }

// Reason returns the server supplied reason.
func (e *ServerError) Reason() string { return e.Msg }

// ValidationError lists every option field that failed validation.
type ValidationError struct {
	Msg    string
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s (%s)", e.Msg, strings.Join(e.Fields, ", "))
}

// Kind always returns KindValidation.
func (e *ValidationError) Kind() string { return KindValidation }

// Reason returns the human readable message.
func (e *ValidationError) Reason() string { return e.Msg }

// HasField reports whether name is one of the invalid fields.
func (e *ValidationError) HasField(name string) bool {
	for _, f := range e.Fields {
		if f == name {
			return true
		}
	}
	return false
}
