package port

import (
	"context"

	"github.com/google/uuid"

	"tradeflow/internal/domain"
)

// QuoteRepository persists forwarder quotes.
type QuoteRepository interface {
	Create(ctx context.Context, quote *domain.Quote) error
	GetByID(ctx context.Context, quoteID uuid.UUID) (*domain.Quote, error)
	GetByIDForShipment(ctx context.Context, quoteID, shipmentID uuid.UUID) (*domain.Quote, error)
	ListByShipment(ctx context.Context, shipmentID uuid.UUID) ([]domain.QuoteWithForwarder, error)
	// UpdateStatus writes the quote's status and remarks.
	UpdateStatus(ctx context.Context, quote *domain.Quote) error
	// MarkExpired flips a pending quote to expired.
	MarkExpired(ctx context.Context, quoteID uuid.UUID) error
	// Accept transitions the quote to accepted and books the shipment for the
	// quote's forwarder in a single transaction. Both updates are guarded:
	// the quote must still be pending (domain.ErrQuoteNotPending otherwise) and
	// the shipment must have no forwarder bound (domain.ErrForwarderAssigned).
	Accept(ctx context.Context, quoteID, shipmentID, forwarderID uuid.UUID) error
}
