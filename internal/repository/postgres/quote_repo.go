package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"tradeflow/internal/domain"
	"tradeflow/internal/port"
)

type quoteRepo struct {
	db *sqlx.DB
}

// NewQuoteRepo creates a new PostgreSQL-backed QuoteRepository.
func NewQuoteRepo(db *sqlx.DB) port.QuoteRepository {
	return &quoteRepo{db: db}
}

func (r *quoteRepo) Create(ctx context.Context, quote *domain.Quote) error {
	now := time.Now().UTC()
	quote.CreatedAt = now
	quote.UpdatedAt = now
	if quote.Status == "" {
		quote.Status = domain.QuoteStatusPending
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO quotes (
			id, shipment_id, forwarder_id, amount, currency,
			validity_date, status, remarks, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		quote.ID, quote.ShipmentID, quote.ForwarderID, quote.Amount, quote.Currency,
		quote.ValidityDate, quote.Status, quote.Remarks, quote.CreatedAt, quote.UpdatedAt)
	if err != nil {
		return fmt.Errorf("quoteRepo.Create: %w", err)
	}
	return nil
}

func (r *quoteRepo) GetByID(ctx context.Context, quoteID uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.GetContext(ctx, &quote, "SELECT * FROM quotes WHERE id = $1", quoteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrQuoteNotFound
		}
		return nil, fmt.Errorf("quoteRepo.GetByID: %w", err)
	}
	return &quote, nil
}

func (r *quoteRepo) GetByIDForShipment(ctx context.Context, quoteID, shipmentID uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.GetContext(ctx, &quote,
		"SELECT * FROM quotes WHERE id = $1 AND shipment_id = $2", quoteID, shipmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrQuoteNotFound
		}
		return nil, fmt.Errorf("quoteRepo.GetByIDForShipment: %w", err)
	}
	return &quote, nil
}

func (r *quoteRepo) ListByShipment(ctx context.Context, shipmentID uuid.UUID) ([]domain.QuoteWithForwarder, error) {
	quotes := []domain.QuoteWithForwarder{}
	err := r.db.SelectContext(ctx, &quotes,
		`SELECT q.*,
			u.name AS forwarder_name,
			u.email AS forwarder_email,
			u.company_name AS forwarder_company
		 FROM quotes q
		 JOIN users u ON u.id = q.forwarder_id
		 WHERE q.shipment_id = $1
		 ORDER BY q.created_at DESC`,
		shipmentID)
	if err != nil {
		return nil, fmt.Errorf("quoteRepo.ListByShipment: %w", err)
	}
	return quotes, nil
}

func (r *quoteRepo) UpdateStatus(ctx context.Context, quote *domain.Quote) error {
	quote.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		"UPDATE quotes SET status = $1, remarks = $2, updated_at = $3 WHERE id = $4",
		quote.Status, quote.Remarks, quote.UpdatedAt, quote.ID)
	if err != nil {
		return fmt.Errorf("quoteRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrQuoteNotFound
	}
	return nil
}

func (r *quoteRepo) MarkExpired(ctx context.Context, quoteID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE quotes SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4",
		domain.QuoteStatusExpired, time.Now().UTC(), quoteID, domain.QuoteStatusPending)
	if err != nil {
		return fmt.Errorf("quoteRepo.MarkExpired: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrQuoteNotPending
	}
	return nil
}

func (r *quoteRepo) Accept(ctx context.Context, quoteID, shipmentID, forwarderID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("quoteRepo.Accept: begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()

	result, err := tx.ExecContext(ctx,
		"UPDATE quotes SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4",
		domain.QuoteStatusAccepted, now, quoteID, domain.QuoteStatusPending)
	if err != nil {
		return fmt.Errorf("quoteRepo.Accept: update quote: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrQuoteNotPending
	}

	result, err = tx.ExecContext(ctx,
		`UPDATE shipments SET forwarder_id = $1, status = $2, updated_at = $3
		 WHERE id = $4 AND forwarder_id IS NULL`,
		forwarderID, domain.ShipmentStatusBooked, now, shipmentID)
	if err != nil {
		return fmt.Errorf("quoteRepo.Accept: update shipment: %w", err)
	}
	rows, _ = result.RowsAffected()
	if rows == 0 {
		return domain.ErrForwarderAssigned
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("quoteRepo.Accept: commit: %w", err)
	}
	return nil
}
