package provider

import (
	"errors"
	"fmt"
)

// ErrMissingCredential is returned when no API key is configured.
var ErrMissingCredential = errors.New("no API key configured")

// ErrMalformedResponse is returned when the completion is not the expected JSON.
var ErrMalformedResponse = errors.New("malformed classification response")

// Error describes a failed provider call.
type Error struct {
	Op         string // "credential", "request", "response", "decode"
	StatusCode int    // HTTP status, 0 when no response was received
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
