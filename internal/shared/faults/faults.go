package faults

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies engine failures so callers can decide between retry,
// re-fetch, or surfacing the failure as-is.
type Kind string

const (
	KindInvalidTransition Kind = "INVALID_TRANSITION"
	KindTableUnavailable  Kind = "TABLE_UNAVAILABLE"
	KindTableOccupied     Kind = "TABLE_OCCUPIED"
	KindContended         Kind = "CONTENDED"
	KindNotFound          Kind = "NOT_FOUND"
	KindValidation        Kind = "VALIDATION"
)

// Fault is a typed engine error. Every mutating command either succeeds or
// returns a Fault (possibly wrapping a lower-level cause); the engine never
// applies a transition it reports as failed.
type Fault struct {
	Kind    Kind
	Message string
	cause   error
}

func (f *Fault) Error() string {
	if f.cause != nil {
		return f.Message + ": " + f.cause.Error()
	}
	return f.Message
}

func (f *Fault) Unwrap() error {
	return f.cause
}

// Is allows errors.Is matching on bare-kind sentinels.
func (f *Fault) Is(target error) bool {
	t, ok := target.(*Fault)
	if !ok {
		return false
	}
	return t.Kind == f.Kind && (t.Message == "" || t.Message == f.Message)
}

// InvalidTransition reports a command that is not legal from the current status.
func InvalidTransition(status, command string) error {
	return &Fault{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("command %q is not valid from status %s", command, status),
	}
}

// TableUnavailable reports a table that failed the availability recheck at commit time.
func TableUnavailable(tableID string) error {
	return &Fault{
		Kind:    KindTableUnavailable,
		Message: fmt.Sprintf("table %s is not available", tableID),
	}
}

// TableOccupied reports an operation rejected because the table is mid-service.
func TableOccupied(tableID string) error {
	return &Fault{
		Kind:    KindTableOccupied,
		Message: fmt.Sprintf("table %s is occupied", tableID),
	}
}

// Contended reports a lock acquisition timeout. Safe to retry.
func Contended(tableID string) error {
	return &Fault{
		Kind:    KindContended,
		Message: fmt.Sprintf("table %s is locked by another operation", tableID),
	}
}

// NotFound reports an unknown entity id.
func NotFound(entity, id string) error {
	return &Fault{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s %s not found", entity, id),
	}
}

// Validation reports a request that failed input validation.
func Validation(msg string) error {
	return &Fault{
		Kind:    KindValidation,
		Message: msg,
	}
}

// Wrap attaches a cause to a fault kind.
func Wrap(kind Kind, msg string, cause error) error {
	return &Fault{Kind: kind, Message: msg, cause: cause}
}

// KindOf extracts the fault kind from an error chain, or "" for plain errors.
func KindOf(err error) Kind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

// IsKind reports whether err carries the given fault kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps a fault kind to the HTTP status controllers respond with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalidTransition:
		return http.StatusUnprocessableEntity
	case KindTableUnavailable, KindTableOccupied:
		return http.StatusConflict
	case KindContended:
		return http.StatusLocked
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
