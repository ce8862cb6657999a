package port

import (
	"context"

	"github.com/google/uuid"

	"tradeflow/internal/domain"
)

// DocumentRepository persists uploaded document records.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	ListByShipment(ctx context.Context, shipmentID uuid.UUID) ([]domain.Document, error)
	// UpdateExtraction writes the extraction result fields of an existing
	// document: extracted_data, confidence_score, extraction_method, needs_review.
	UpdateExtraction(ctx context.Context, doc *domain.Document) error
}

// ExtractionJobRepository persists extraction job records.
type ExtractionJobRepository interface {
	Create(ctx context.Context, job *domain.ExtractionJob) error
	GetByDocumentID(ctx context.Context, docID uuid.UUID) (*domain.ExtractionJob, error)
	UpdateStatus(ctx context.Context, jobID uuid.UUID, status domain.ExtractionStatus, errorMessage string) error
}
