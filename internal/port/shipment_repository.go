package port

import (
	"context"

	"github.com/google/uuid"

	"tradeflow/internal/domain"
)

// ShipmentRepository persists shipments.
type ShipmentRepository interface {
	Create(ctx context.Context, shipment *domain.Shipment) error
	GetByID(ctx context.Context, shipmentID uuid.UUID) (*domain.Shipment, error)
	Update(ctx context.Context, shipment *domain.Shipment) error
	// ListUnassigned returns shipments with no forwarder bound, including those
	// where the column was never written.
	ListUnassigned(ctx context.Context) ([]domain.Shipment, error)
	// ListByQuoteForwarder returns shipments on which the forwarder submitted a
	// direct bid.
	ListByQuoteForwarder(ctx context.Context, forwarderID uuid.UUID) ([]domain.Shipment, error)
	// ListWonByForwarder returns booked shipments with an accepted quote where
	// the forwarder is either bound or the quoting party.
	ListWonByForwarder(ctx context.Context, forwarderID uuid.UUID) ([]domain.Shipment, error)
	AssignDriver(ctx context.Context, shipmentID, driverID uuid.UUID) error
}
