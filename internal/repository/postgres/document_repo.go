package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"tradeflow/internal/domain"
	"tradeflow/internal/port"
)

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *domain.Document) error {
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if len(doc.ExtractedData) == 0 {
		doc.ExtractedData = json.RawMessage("null")
	}

	query := `INSERT INTO documents (
		id, shipment_id, uploaded_by, type,
		file_name, file_url, file_size, mime_type,
		extracted_data, confidence_score, extraction_method, needs_review,
		created_at, updated_at
	) VALUES (
		$1, $2, $3, $4,
		$5, $6, $7, $8,
		$9, $10, $11, $12,
		$13, $14
	)`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.ShipmentID, doc.UploadedBy, doc.Type,
		doc.FileName, doc.FileURL, doc.FileSize, doc.MimeType,
		doc.ExtractedData, doc.ConfidenceScore, doc.ExtractionMethod, doc.NeedsReview,
		doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("documentRepo.Create: %w", err)
	}
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc, "SELECT * FROM documents WHERE id = $1", docID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) ListByShipment(ctx context.Context, shipmentID uuid.UUID) ([]domain.Document, error) {
	docs := []domain.Document{}
	err := r.db.SelectContext(ctx, &docs,
		"SELECT * FROM documents WHERE shipment_id = $1 ORDER BY created_at DESC",
		shipmentID)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.ListByShipment: %w", err)
	}
	return docs, nil
}

func (r *documentRepo) UpdateExtraction(ctx context.Context, doc *domain.Document) error {
	doc.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE documents SET
			extracted_data = $1, confidence_score = $2,
			extraction_method = $3, needs_review = $4, updated_at = $5
		 WHERE id = $6`,
		doc.ExtractedData, doc.ConfidenceScore,
		doc.ExtractionMethod, doc.NeedsReview, doc.UpdatedAt,
		doc.ID)
	if err != nil {
		return fmt.Errorf("documentRepo.UpdateExtraction: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

type extractionJobRepo struct {
	db *sqlx.DB
}

// NewExtractionJobRepo creates a new PostgreSQL-backed ExtractionJobRepository.
func NewExtractionJobRepo(db *sqlx.DB) port.ExtractionJobRepository {
	return &extractionJobRepo{db: db}
}

func (r *extractionJobRepo) Create(ctx context.Context, job *domain.ExtractionJob) error {
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO extraction_jobs (id, document_id, status, error_message, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		job.ID, job.DocumentID, job.Status, job.ErrorMessage, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("extractionJobRepo.Create: %w", err)
	}
	return nil
}

func (r *extractionJobRepo) GetByDocumentID(ctx context.Context, docID uuid.UUID) (*domain.ExtractionJob, error) {
	var job domain.ExtractionJob
	err := r.db.GetContext(ctx, &job,
		"SELECT * FROM extraction_jobs WHERE document_id = $1", docID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("extractionJobRepo.GetByDocumentID: %w", err)
	}
	return &job, nil
}

func (r *extractionJobRepo) UpdateStatus(ctx context.Context, jobID uuid.UUID, status domain.ExtractionStatus, errorMessage string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE extraction_jobs SET status = $1, error_message = $2, updated_at = $3 WHERE id = $4",
		status, errorMessage, time.Now().UTC(), jobID)
	if err != nil {
		return fmt.Errorf("extractionJobRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
