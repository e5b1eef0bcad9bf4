// Package errs defines the RAG engine's error-kind taxonomy and its mapping
// to HTTP status codes, grounded on the AppException pattern of the system
// this engine was distilled from.
package errs

import "fmt"

// Kind identifies a class of failure the HTTP layer knows how to translate.
type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindUnsupportedFile    Kind = "unsupported_file_type"
	KindEmptyText          Kind = "empty_text"
	KindUnextractablePDF   Kind = "unextractable_pdf"
	KindNotFound           Kind = "not_found"
	KindPipelineNotReady   Kind = "pipeline_not_ready"
	KindEmbeddingMismatch  Kind = "embedding_mismatch"
	KindConflict           Kind = "conflict"
	KindProviderAuth       Kind = "provider_auth"
	KindProviderRateLimit  Kind = "provider_rate_limit"
	KindProviderTimeout    Kind = "provider_timeout"
	KindAllProvidersFailed Kind = "all_providers_failed"
	KindVectorStoreFailure Kind = "vector_store_failure"
	KindInternal           Kind = "internal"
)

// statusByKind maps each Kind to the HTTP status the handlers should return.
var statusByKind = map[Kind]int{
	KindValidation:         400,
	KindUnsupportedFile:    400,
	KindEmptyText:          400,
	KindUnextractablePDF:   400,
	KindNotFound:           404,
	KindPipelineNotReady:   400,
	KindEmbeddingMismatch:  409,
	KindConflict:           409,
	KindProviderAuth:       502,
	KindProviderRateLimit:  429,
	KindProviderTimeout:    504,
	KindAllProvidersFailed: 502,
	KindVectorStoreFailure: 500,
	KindInternal:           500,
}

// Error is the engine-wide error type. Every component-level failure that
// must cross a component boundary is wrapped into one of these before it
// reaches the HTTP layer.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// HTTPStatus returns the status code this error should be reported as.
func (e *Error) HTTPStatus() int {
	if code, ok := statusByKind[e.Kind]; ok {
		return code
	}
	return 500
}

// New constructs an Error with no underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an Error carrying an underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// WithDetails attaches structured detail fields and returns the same error
// for chaining at the call site.
func (e *Error) WithDetails(details map[string]any) *Error {
	e.Details = details
	return e
}

// As reports whether err is (or wraps) an *Error, mirroring errors.As without
// forcing every call site to import "errors" for this one use.
func As(err error) (*Error, bool) {
	var target *Error
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return target, false
}
