// Package extraction defines the contract with the OCR/AI field-extraction
// collaborator and provides the Claude-backed implementation. The pipeline
// only sees the Client interface; errors coming out of it are classified as
// transient (retryable) or permanent before the retry policy runs.
package extraction

import (
	"context"

	"github.com/meridian-legal/docaudit/internal/model"
)

// Request asks the collaborator to extract fields from one document segment.
type Request struct {
	DocumentType model.DocumentType
	// PageTexts holds the segment's page texts in page order. Pages without
	// usable text carry their ImageRef instead.
	PageTexts     []string
	PageImageRefs []string
	// PromptTemplate is the full system prompt for the document type.
	PromptTemplate string
}

// Field is one extracted field value with the confidence the method
// reported for it.
type Field struct {
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Response is the normalized collaborator output.
type Response struct {
	Fields map[string]Field `json:"fields"`
	// Method names the extraction method that produced the response, used
	// when merging primary and fallback results.
	Method string `json:"method"`
}

// Client is the extraction collaborator. Extract is synchronous; the caller
// owns concurrency, rate limiting, timeouts, and retries.
type Client interface {
	Method() string
	Extract(ctx context.Context, req Request) (*Response, error)
}
