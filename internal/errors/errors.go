package errors

import (
	"errors"
	"fmt"
)

// Code represents an error code for categorizing errors
type Code string

const (
	// CodeUnknown indicates an unknown error
	CodeUnknown Code = "unknown"

	// CodeInvalidArgument indicates client specified an invalid argument
	CodeInvalidArgument Code = "invalid_argument"

	// CodeNotFound indicates a requested resource was not found
	CodeNotFound Code = "not_found"

	// CodeAlreadyExists indicates an attempt to create a resource that already exists
	CodeAlreadyExists Code = "already_exists"

	// CodePermissionDenied indicates the caller does not own the resource
	CodePermissionDenied Code = "permission_denied"

	// CodeConflict indicates a concurrent write won the race
	CodeConflict Code = "conflict"

	// CodeInternal indicates internal system error
	CodeInternal Code = "internal"

	// CodeSessionAlreadyActive is returned when a player already has an incomplete session
	CodeSessionAlreadyActive Code = "session_already_active"

	// CodeInvalidPhase is returned when an operation does not fit the session phase
	CodeInvalidPhase Code = "invalid_phase"

	// CodeSequenceConflict is returned when an exchange is not exactly last+1
	CodeSequenceConflict Code = "sequence_conflict"

	// CodeAnalyzerUnavailable marks a failed external analysis call.
	// It never leaves the analysis package.
	CodeAnalyzerUnavailable Code = "analyzer_unavailable"

	// CodeAlreadyFinalized signals that a grant was already issued for the session
	CodeAlreadyFinalized Code = "already_finalized"

	// CodeIncompleteDialogue is returned when completion is attempted before an outcome exists
	CodeIncompleteDialogue Code = "incomplete_dialogue"
)

// Error represents an application error with code and metadata
type Error struct {
	// Code is the error code
	Code Code

	// Message is the error message
	Message string

	// Cause is the wrapped error
	Cause error

	// Meta contains additional context
	Meta map[string]any
}

// Error returns the error message
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithMeta adds metadata to the error (builder pattern)
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = value
	return e
}

// New creates a new error with the given code and message
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new error with formatted message
func Newf(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with additional context, keeping the code of a coded cause
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	var coded *Error
	if errors.As(err, &coded) {
		return &Error{
			Code:    coded.Code,
			Message: message,
			Cause:   err,
			Meta:    copyMeta(coded.Meta),
		}
	}

	return &Error{
		Code:    CodeUnknown,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps an error with a specific code
func WrapWithCode(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}

	wrapped := Wrap(err, message)
	wrapped.Code = code
	return wrapped
}

// NotFoundf creates a formatted not found error
func NotFoundf(format string, args ...any) *Error {
	return Newf(CodeNotFound, format, args...)
}

// InvalidArgument creates an invalid argument error
func InvalidArgument(message string) *Error {
	return New(CodeInvalidArgument, message)
}

// InvalidArgumentf creates a formatted invalid argument error
func InvalidArgumentf(format string, args ...any) *Error {
	return Newf(CodeInvalidArgument, format, args...)
}

// AlreadyExistsf creates a formatted already exists error
func AlreadyExistsf(format string, args ...any) *Error {
	return Newf(CodeAlreadyExists, format, args...)
}

// Conflictf creates a formatted conflict error
func Conflictf(format string, args ...any) *Error {
	return Newf(CodeConflict, format, args...)
}

// PermissionDeniedf creates a formatted permission denied error
func PermissionDeniedf(format string, args ...any) *Error {
	return Newf(CodePermissionDenied, format, args...)
}

// Internalf creates a formatted internal error
func Internalf(format string, args ...any) *Error {
	return Newf(CodeInternal, format, args...)
}

// SessionAlreadyActivef creates a formatted session already active error
func SessionAlreadyActivef(format string, args ...any) *Error {
	return Newf(CodeSessionAlreadyActive, format, args...)
}

// InvalidPhasef creates a formatted invalid phase error
func InvalidPhasef(format string, args ...any) *Error {
	return Newf(CodeInvalidPhase, format, args...)
}

// SequenceConflictf creates a formatted sequence conflict error
func SequenceConflictf(format string, args ...any) *Error {
	return Newf(CodeSequenceConflict, format, args...)
}

// AnalyzerUnavailable wraps a failed analyzer call
func AnalyzerUnavailable(err error, analyzer string) *Error {
	return WrapWithCode(err, CodeAnalyzerUnavailable, "analyzer unavailable").
		WithMeta("analyzer", analyzer)
}

// AlreadyFinalizedf creates a formatted already finalized error
func AlreadyFinalizedf(format string, args ...any) *Error {
	return Newf(CodeAlreadyFinalized, format, args...)
}

// IncompleteDialoguef creates a formatted incomplete dialogue error
func IncompleteDialoguef(format string, args ...any) *Error {
	return Newf(CodeIncompleteDialogue, format, args...)
}

// Is checks if the error is of a specific code
func Is(err error, code Code) bool {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code == code
	}
	return false
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return Is(err, CodeNotFound)
}

// IsConflict checks if the error is an optimistic write conflict
func IsConflict(err error) bool {
	return Is(err, CodeConflict)
}

// IsSessionAlreadyActive checks for an active session error
func IsSessionAlreadyActive(err error) bool {
	return Is(err, CodeSessionAlreadyActive)
}

// IsInvalidPhase checks for an invalid phase error
func IsInvalidPhase(err error) bool {
	return Is(err, CodeInvalidPhase)
}

// IsSequenceConflict checks for a sequence conflict error
func IsSequenceConflict(err error) bool {
	return Is(err, CodeSequenceConflict)
}

// IsAnalyzerUnavailable checks for an analyzer failure
func IsAnalyzerUnavailable(err error) bool {
	return Is(err, CodeAnalyzerUnavailable)
}

// IsAlreadyFinalized checks for the finalize idempotency signal
func IsAlreadyFinalized(err error) bool {
	return Is(err, CodeAlreadyFinalized)
}

// IsIncompleteDialogue checks for an incomplete dialogue error
func IsIncompleteDialogue(err error) bool {
	return Is(err, CodeIncompleteDialogue)
}

// GetCode returns the error code
func GetCode(err error) Code {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return CodeUnknown
}

// GetMeta returns the error metadata
func GetMeta(err error) map[string]any {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Meta
	}
	return nil
}

// UserMessage translates an error into text a player can act on.
// Internal codes are never exposed.
func UserMessage(err error) string {
	switch GetCode(err) {
	case CodeSessionAlreadyActive:
		return "You already have a negotiation in progress. Picking up where you left off."
	case CodeInvalidPhase:
		return "That step isn't available right now. Refresh and try again."
	case CodeSequenceConflict, CodeConflict:
		return "The guard already heard that answer. Please refresh and resubmit."
	case CodeAlreadyFinalized:
		return "You already talked your way into a ship. The shipyard has nothing more for you."
	case CodeIncompleteDialogue:
		return "The guard isn't finished with you yet. Answer the remaining questions first."
	case CodeNotFound:
		return "We couldn't find that negotiation. Start a new one."
	case CodePermissionDenied:
		return "That negotiation belongs to someone else."
	case CodeInvalidArgument:
		return "Something about that request wasn't right. Please check it and resubmit."
	default:
		return "Something went wrong on our side. Please resubmit in a moment."
	}
}

// copyMeta creates a copy of the metadata map
func copyMeta(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}

	copied := make(map[string]any, len(meta))
	for k, v := range meta {
		copied[k] = v
	}
	return copied
}
