package port

import (
	"context"

	"tradeflow/internal/domain"
)

// ExtractInput carries the data needed for document extraction.
type ExtractInput struct {
	FilePath     string
	ContentType  string
	DocumentType domain.DocumentType
}

// ExtractOutput contains the structured result from the extraction service.
// Fields is nil when the service could not extract anything; Confidence is in
// [0,1] and defaults to the no-extraction sentinel.
type ExtractOutput struct {
	Fields     map[string]interface{}
	Confidence float64
	Method     string
}

// DocumentExtractor abstracts AI-based field extraction from trade documents.
type DocumentExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}
