package port

import "context"

// PartKind distinguishes request parts sent to the inference service.
type PartKind string

const (
	PartText   PartKind = "text"
	PartInline PartKind = "inline"
)

// Part is one ordered element of an inference request. Inline parts carry
// base64 Data and its MimeType; text parts carry Text.
type Part struct {
	Kind     PartKind
	Text     string
	Data     string
	MimeType string
}

// InferenceRequest carries the assembled parts and output/compute settings.
type InferenceRequest struct {
	Parts            []Part
	ResponseMIMEType string
	ThinkingBudget   int
}

// InferenceResponse is the raw text returned by the service.
type InferenceResponse struct {
	Text     string
	Model    string
	Provider string
}

// InferenceClient abstracts the external LLM inference service. Failures are
// returned as *domain.InferenceError.
type InferenceClient interface {
	Generate(ctx context.Context, req InferenceRequest) (*InferenceResponse, error)
}
