package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingInput    = errors.New("missing input")
	ErrUpstream        = errors.New("completion service request failed")
	ErrMalformedOutput = errors.New("model reply is not valid JSON")
	ErrInvalidRecord   = errors.New("quotation data has an unexpected shape")
)

// Failure categories shown to the user
const (
	CategoryMissingInput      = "missing_input"
	CategoryUpstreamFailure   = "upstream_failure"
	CategoryMalformedOutput   = "malformed_output"
	CategoryProcessingFailure = "processing_failure"
)

// MissingInputError names the empty field; nothing runs after it
type MissingInputError struct {
	Field string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing input: %s is required", e.Field)
}

func (e *MissingInputError) Is(target error) bool { return target == ErrMissingInput }

// UpstreamError wraps anything that went wrong while obtaining the completion
type UpstreamError struct {
	Reason string // quota, connection, auth or unknown
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("completion service request failed (%s): %v", e.Reason, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

// MalformedOutputError carries the raw reply so it can be shown for diagnosis
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("model reply is not valid JSON: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

func (e *MalformedOutputError) Is(target error) bool { return target == ErrMalformedOutput }

// RecordError is valid JSON whose values cannot be used, e.g. a string where a price belongs
type RecordError struct {
	Field  string
	Reason string
}

func (e *RecordError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("quotation data has an unexpected shape: %s", e.Reason)
	}
	return fmt.Sprintf("quotation data has an unexpected shape: %s: %s", e.Field, e.Reason)
}

func (e *RecordError) Is(target error) bool { return target == ErrInvalidRecord }

// Category maps an error from the pipeline to the category reported to the user
func Category(err error) string {
	switch {
	case errors.Is(err, ErrMissingInput):
		return CategoryMissingInput
	case errors.Is(err, ErrUpstream):
		return CategoryUpstreamFailure
	case errors.Is(err, ErrMalformedOutput):
		return CategoryMalformedOutput
	default:
		return CategoryProcessingFailure
	}
}
