package profile

import (
	"fmt"

	"studiodrop/internal/services"
)

// LoadError reports a profile that could not be read or failed validation.
// It matches services.ErrProfileLoad with errors.Is.
type LoadError struct {
	// Source is the file path or profile name being loaded.
	Source string
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	msg := "profile load"
	if e.Source != "" {
		msg += " " + e.Source
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() []error {
	if e.Err == nil {
		return []error{services.ErrProfileLoad}
	}
	return []error{services.ErrProfileLoad, e.Err}
}

func loadErrorf(source string, err error, format string, args ...any) *LoadError {
	return &LoadError{Source: source, Reason: fmt.Sprintf(format, args...), Err: err}
}
