package media

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation reports an upload rejected before any network call.
	ErrValidation = errors.New("media: validation failed")
	// ErrUpstream reports a failure of the transformation service.
	ErrUpstream = errors.New("media: upstream failure")

	errEmptyPublicID = errors.New("empty public id in upload response")
)

// ValidationError names the first rejected upload field. Cause carries
// every field error found.
type ValidationError struct {
	Field  string
	Reason string
	Cause  error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return ErrValidation.Error()
	}
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", ErrValidation.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Cause}
}

// UpstreamError wraps the error returned by the transformation service.
type UpstreamError struct {
	Folder string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e == nil || e.Err == nil {
		return ErrUpstream.Error()
	}
	return fmt.Sprintf("%s: %v", ErrUpstream.Error(), e.Err)
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstream}
	}
	return []error{ErrUpstream, e.Err}
}
