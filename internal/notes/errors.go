package notes

import (
	"errors"
	"fmt"
)

// ErrorKind identifies which pipeline stage failed. Exactly one kind is
// surfaced per run; later stages never execute after a failure.
type ErrorKind string

const (
	// KindValidation is local and silent: the submit control stays inert.
	KindValidation ErrorKind = "validation"
	// KindRateLimited is transient; the caller clears it after RetryNoticeMs.
	KindRateLimited ErrorKind = "rate_limited"
	KindUpload      ErrorKind = "upload"
	KindNotify      ErrorKind = "notify"
	KindPersist     ErrorKind = "persist"
)

// Fixed user-facing stage messages. Upload and persist failures share the
// archive wording; the sender cannot act differently on the distinction.
const (
	msgRateLimited = "Too many notes sent. Please wait a few minutes and try again."
	msgArchive     = "Archive connection failed. Your note was not saved."
	msgNotify      = "Neural link disrupted. Your note could not be delivered."
)

// RetryNoticeMs is how long the UI should show the rate-limited notice
// before clearing it.
const RetryNoticeMs = 5000

var (
	errMissingUploader = errors.New("object storage is not configured")
	errMissingStore    = errors.New("record store is not configured")
)

// StageError maps a stage failure to its single user-facing message. The
// underlying cause is kept for logs only and never crosses to the UI.
type StageError struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *StageError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s stage failed: %v", e.Kind, e.cause)
	}
	return fmt.Sprintf("%s stage failed", e.Kind)
}

func (e *StageError) Unwrap() error {
	return e.cause
}

func validationError() *StageError {
	return &StageError{Kind: KindValidation}
}

func rateLimitedError() *StageError {
	return &StageError{Kind: KindRateLimited, Message: msgRateLimited}
}

func uploadError(cause error) *StageError {
	return &StageError{Kind: KindUpload, Message: msgArchive, cause: cause}
}

func notifyError(cause error) *StageError {
	return &StageError{Kind: KindNotify, Message: msgNotify, cause: cause}
}

func persistError(cause error) *StageError {
	return &StageError{Kind: KindPersist, Message: msgArchive, cause: cause}
}
