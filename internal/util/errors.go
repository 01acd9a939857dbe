package util

import "errors"

// Input errors. Surfaced to the caller, never retried.
var (
	ErrEmptyDocument     = errors.New("document has no extractable text")
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrCorruptFile       = errors.New("corrupt document file")
	ErrUnknownSection    = errors.New("unknown section")
	ErrEmptyQuestion     = errors.New("question is empty")
)

// State errors. The caller asked for something out of sequence.
var (
	ErrNotReady         = errors.New("session is not ready")
	ErrNoIndex          = errors.New("no index for session")
	ErrUploadInProgress = errors.New("upload already in progress")
	ErrStaleUpload      = errors.New("upload superseded")
	ErrUnknownSession   = errors.New("unknown session")
)

// Collaborator errors. Transient from the caller's point of view.
var (
	ErrEmbeddingService = errors.New("embedding service error")
	ErrLanguageModel    = errors.New("language model error")
)

var (
	ErrQuotaExhausted = errors.New("provider quota exhausted")
	ErrRateLimited    = errors.New("provider rate limited")
	ErrTransient      = errors.New("transient provider error")
	ErrPermanent      = errors.New("permanent provider error")
	ErrContextTooLong = errors.New("context too long")
)

// IsInputError reports whether err is caused by the uploaded document or the
// request itself rather than a collaborator.
func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptyDocument) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrCorruptFile) ||
		errors.Is(err, ErrUnknownSection) ||
		errors.Is(err, ErrEmptyQuestion)
}
