package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the console can surface.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindInvalidInput: local validation failed, no call issued.
	KindInvalidInput
	// KindNotFound: the backend answered a lookup with absence.
	KindNotFound
	// KindReferenceMissing: an existence probe failed before a create.
	KindReferenceMissing
	// KindRejected: the backend answered non-2xx.
	KindRejected
	// KindNetwork: the backend could not be reached.
	KindNetwork
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindReferenceMissing:
		return "reference_missing"
	case KindRejected:
		return "rejected"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrReferenceMissing indicates a dependent create was refused because the
// referenced entity does not exist.
type ErrReferenceMissing struct {
	Resource string
	Key      string
}

func (e *ErrReferenceMissing) Error() string {
	return fmt.Sprintf("%s does not exist: %s", e.Resource, e.Key)
}

// APIError is the single failure type returned by the gateway client.
// Status is zero for KindNetwork.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	switch {
	case e.Kind == KindNetwork:
		return fmt.Sprintf("backend unreachable: %v", e.Err)
	case e.Message != "":
		return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
	default:
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// KindOf reports the taxonomy class of err.
func KindOf(err error) ErrorKind {
	var validation *ErrValidation
	var missing *ErrReferenceMissing
	var apiErr *APIError

	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &validation):
		return KindInvalidInput
	case errors.As(err, &missing):
		return KindReferenceMissing
	case errors.As(err, &apiErr):
		return apiErr.Kind
	default:
		return KindUnknown
	}
}

// UserMessage derives the text shown to the operator: the local validation
// or reference message, else the backend message when present, else fallback.
func UserMessage(err error, fallback string) string {
	var validation *ErrValidation
	var missing *ErrReferenceMissing
	var apiErr *APIError

	switch {
	case errors.As(err, &validation):
		return validation.Message
	case errors.As(err, &missing):
		return fmt.Sprintf("%s does not exist", missing.Resource)
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	default:
		return fallback
	}
}
