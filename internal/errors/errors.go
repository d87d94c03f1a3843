// Package errors provides the typed error taxonomy shared by every
// LoTaR component. Services return these instead of bare fmt.Errorf
// so the external interface layer (cmd/lotar, internal/httpapi) can map
// them to exit codes and HTTP statuses without string matching.
package errors

import (
	"errors"
	"fmt"
)

// Kind categorizes an error for the purpose of exit-code / HTTP-status
// mapping and user-facing remediation.
type Kind string

const (
	KindWorkspaceNotFound  Kind = "workspace_not_found"
	KindInvalidTaskID      Kind = "invalid_task_id"
	KindTaskNotFound       Kind = "task_not_found"
	KindInvalidTaskFile    Kind = "invalid_task_file"
	KindPrefixConflict     Kind = "prefix_conflict"
	KindValidation         Kind = "validation_error"
	KindIO                 Kind = "io_error"
	KindSerialization      Kind = "serialization_error"
	KindRemoteAuth         Kind = "remote_auth_error"
	KindRemoteRequest      Kind = "remote_request_error"
	KindCancelled          Kind = "cancelled"
)

// Error is the concrete structured error every service returns for
// expected failure modes. Programmer errors (violated invariants) still
// panic; Error is reserved for conditions callers are expected to
// recover from or report to a user.
type Error struct {
	Err        error
	Kind       Kind
	Msg        string
	Field      string
	Suggestion string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Kind, e.Msg, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error of the given kind with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap creates an Error of the given kind wrapping a lower-level cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// WithField attaches the offending field name, surfaced to CLI/HTTP
// callers alongside the message.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// WithSuggestion attaches a remediation hint.
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestion = suggestion
	return e
}

// Is reports whether target shares this error's Kind, so callers can use
// errors.Is(err, &errors.Error{Kind: errors.KindTaskNotFound}) without
// needing the exact message or wrapped cause to match.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// KindOf extracts the Kind of err if it is (or wraps) an *Error, and
// ok=false otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// Is reports whether err is (or wraps) an *Error of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

func IsWorkspaceNotFound(err error) bool { return Is(err, KindWorkspaceNotFound) }
func IsTaskNotFound(err error) bool      { return Is(err, KindTaskNotFound) }
func IsInvalidTaskID(err error) bool     { return Is(err, KindInvalidTaskID) }
func IsValidation(err error) bool        { return Is(err, KindValidation) }
func IsPrefixConflict(err error) bool    { return Is(err, KindPrefixConflict) }
func IsCancelled(err error) bool         { return Is(err, KindCancelled) }

// ExitCode maps an error's Kind to the CLI exit code scheme from
// spec.md §6: 2 usage, 3 validation, 4 external failure, 1 internal.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	kind, ok := KindOf(err)
	if !ok {
		return 1
	}
	switch kind {
	case KindInvalidTaskID, KindWorkspaceNotFound:
		return 2
	case KindValidation, KindPrefixConflict, KindInvalidTaskFile:
		return 3
	case KindRemoteAuth, KindRemoteRequest, KindIO:
		return 4
	default:
		return 1
	}
}

// HTTPStatus maps an error's Kind to the HTTP status codes from
// spec.md §6 (INVALID_ARGUMENT=400, NOT_FOUND=404, INTERNAL=500).
func HTTPStatus(err error) (code string, status int) {
	kind, ok := KindOf(err)
	if !ok {
		return "INTERNAL", 500
	}
	switch kind {
	case KindTaskNotFound, KindWorkspaceNotFound:
		return "NOT_FOUND", 404
	case KindInvalidTaskID, KindValidation, KindPrefixConflict, KindInvalidTaskFile:
		return "INVALID_ARGUMENT", 400
	default:
		return "INTERNAL", 500
	}
}
