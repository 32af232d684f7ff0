package domain

import (
	"errors"
	"fmt"
)

var (
	ErrIngestion           = errors.New("document ingestion failed")
	ErrInference           = errors.New("inference request failed")
	ErrSchema              = errors.New("response does not match analysis schema")
	ErrNoAnalysis          = errors.New("no analysis available")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrObjectNotFound      = errors.New("object not found in storage")
	ErrStorageUnavailable  = errors.New("object storage is not configured")
)

// GenericFailureMessage is the only failure text shown to users, whatever
// stage failed.
const GenericFailureMessage = "Analysis failed. Please ensure the file is a clear bank statement."

// UserMessage collapses any pipeline error into the user-facing message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return GenericFailureMessage
}

// IngestionKind classifies ingestion failures.
type IngestionKind string

const (
	IngestionUnreadable       IngestionKind = "unreadable"
	IngestionUndecodable      IngestionKind = "undecodable"
	IngestionUnsupportedMedia IngestionKind = "unsupported_media_type"
	IngestionTooLarge         IngestionKind = "too_large"
	IngestionEmpty            IngestionKind = "empty_document"
)

// IngestionError reports an input that could not be turned into a payload.
type IngestionError struct {
	Kind IngestionKind
	Err  error
}

// NewIngestionError creates an IngestionError of the given kind.
func NewIngestionError(kind IngestionKind, err error) *IngestionError {
	return &IngestionError{Kind: kind, Err: err}
}

func (e *IngestionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("ingestion error (%s)", e.Kind)
	}
	return fmt.Sprintf("ingestion error (%s): %v", e.Kind, e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }

func (e *IngestionError) Is(target error) bool { return target == ErrIngestion }

// InferenceKind classifies inference failures.
type InferenceKind string

const (
	InferenceConfiguration InferenceKind = "configuration"
	InferenceTransport     InferenceKind = "transport"
	InferenceRejected      InferenceKind = "rejected"
	InferenceRateLimited   InferenceKind = "rate_limited"
	InferenceEmptyResponse InferenceKind = "empty_response"
)

// InferenceError reports a failed call to the inference service.
type InferenceError struct {
	Kind     InferenceKind
	Provider string
	Err      error
}

// NewInferenceError creates an InferenceError for provider.
func NewInferenceError(provider string, kind InferenceKind, err error) *InferenceError {
	return &InferenceError{Kind: kind, Provider: provider, Err: err}
}

func (e *InferenceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s inference error (%s)", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s inference error (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

func (e *InferenceError) Is(target error) bool { return target == ErrInference }

// SchemaKind classifies validation failures of the service response.
type SchemaKind string

const (
	SchemaMalformedJSON   SchemaKind = "malformed_json"
	SchemaMissingField    SchemaKind = "missing_field"
	SchemaTypeMismatch    SchemaKind = "type_mismatch"
	SchemaInvalidEnum     SchemaKind = "invalid_enum"
	SchemaInvalidNumber   SchemaKind = "invalid_number"
	SchemaDistributionSum SchemaKind = "distribution_sum"
)

// SchemaError reports where and how a response diverged from the schema.
type SchemaError struct {
	Kind     SchemaKind
	Path     string
	Expected string
	Actual   string
	Err      error
}

func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("schema error (%s)", e.Kind)
	if e.Path != "" {
		msg += " at " + e.Path
	}
	if e.Expected != "" || e.Actual != "" {
		msg += fmt.Sprintf(": expected %s, got %s", e.Expected, e.Actual)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SchemaError) Unwrap() error { return e.Err }

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// ErrorKind renders the internal classification of a pipeline error, e.g.
// "schema:malformed_json". Unclassified errors yield "internal".
func ErrorKind(err error) string {
	var ingErr *IngestionError
	var infErr *InferenceError
	var schErr *SchemaError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ingErr):
		return "ingestion:" + string(ingErr.Kind)
	case errors.As(err, &infErr):
		return "inference:" + string(infErr.Kind)
	case errors.As(err, &schErr):
		return "schema:" + string(schErr.Kind)
	default:
		return "internal"
	}
}
