package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"tradeflow/internal/domain"
	"tradeflow/internal/port"
	"tradeflow/internal/xlsxexport"
)

// BidInput is the DTO for direct forwarder bids on a shipment.
type BidInput struct {
	QuoteAmount *float64
	QuoteExtra  string
	QuoteTime   *time.Time
}

// ForwarderService defines forwarder-facing operations.
type ForwarderService interface {
	// Profile returns the forwarder's own user record.
	Profile(ctx context.Context, forwarderID uuid.UUID) (*domain.User, error)
	// ShowShipments lists shipments open for bidding.
	ShowShipments(ctx context.Context, forwarderID uuid.UUID) ([]domain.Shipment, error)
	// SubmitBid records a direct bid on an unassigned shipment.
	SubmitBid(ctx context.Context, forwarderID, shipmentID uuid.UUID, input BidInput) (*domain.Shipment, error)
	// AllQuotes lists shipments this forwarder has bid on.
	AllQuotes(ctx context.Context, forwarderID uuid.UUID) ([]domain.Shipment, error)
	// AcceptedQuotes lists booked shipments won by this forwarder, each with a
	// supplier contact snapshot.
	AcceptedQuotes(ctx context.Context, forwarderID uuid.UUID) ([]domain.ShipmentWithSupplier, error)
	// ExportAcceptedQuotes renders the won shipments as an XLSX workbook.
	ExportAcceptedQuotes(ctx context.Context, forwarderID uuid.UUID) ([]byte, error)
	ShowDrivers(ctx context.Context, forwarderID uuid.UUID) ([]domain.Driver, error)
	AssignDriver(ctx context.Context, forwarderID, shipmentID, driverID uuid.UUID) (*domain.Shipment, error)
}

type forwarderService struct {
	shipmentRepo port.ShipmentRepository
	userRepo     port.UserRepository
	driverRepo   port.DriverRepository
}

// NewForwarderService creates a new ForwarderService implementation.
func NewForwarderService(
	shipmentRepo port.ShipmentRepository,
	userRepo port.UserRepository,
	driverRepo port.DriverRepository,
) ForwarderService {
	return &forwarderService{
		shipmentRepo: shipmentRepo,
		userRepo:     userRepo,
		driverRepo:   driverRepo,
	}
}

// requireForwarder loads the user and confirms the forwarder role. Routes are
// already role-gated; this guards direct service callers.
func (s *forwarderService) requireForwarder(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleForwarder {
		return nil, domain.ErrForbidden
	}
	return user, nil
}

func (s *forwarderService) Profile(ctx context.Context, forwarderID uuid.UUID) (*domain.User, error) {
	return s.requireForwarder(ctx, forwarderID)
}

func (s *forwarderService) ShowShipments(ctx context.Context, forwarderID uuid.UUID) ([]domain.Shipment, error) {
	if _, err := s.requireForwarder(ctx, forwarderID); err != nil {
		return nil, err
	}
	return s.shipmentRepo.ListUnassigned(ctx)
}

func (s *forwarderService) SubmitBid(ctx context.Context, forwarderID, shipmentID uuid.UUID, input BidInput) (*domain.Shipment, error) {
	if _, err := s.requireForwarder(ctx, forwarderID); err != nil {
		return nil, err
	}
	if input.QuoteAmount == nil {
		return nil, domain.ErrMissingQuoteAmount
	}

	shipment, err := s.shipmentRepo.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	// Bids only apply to shipments not yet bound to a forwarder.
	if shipment.ForwarderID != nil {
		return nil, domain.ErrShipmentNotFound
	}

	shipment.QuoteAmount = input.QuoteAmount
	shipment.QuoteForwarderID = &forwarderID
	shipment.QuoteStatus = string(domain.QuoteStatusAccepted)
	shipment.QuoteExtra = input.QuoteExtra
	if input.QuoteTime != nil {
		shipment.QuoteTime = input.QuoteTime
	}
	if shipment.Status == domain.ShipmentStatusDraft || shipment.Status == domain.ShipmentStatusPendingQuote {
		shipment.Status = domain.ShipmentStatusQuoted
	}

	if err := s.shipmentRepo.Update(ctx, shipment); err != nil {
		return nil, err
	}
	return shipment, nil
}

func (s *forwarderService) AllQuotes(ctx context.Context, forwarderID uuid.UUID) ([]domain.Shipment, error) {
	if _, err := s.requireForwarder(ctx, forwarderID); err != nil {
		return nil, err
	}
	return s.shipmentRepo.ListByQuoteForwarder(ctx, forwarderID)
}

func (s *forwarderService) AcceptedQuotes(ctx context.Context, forwarderID uuid.UUID) ([]domain.ShipmentWithSupplier, error) {
	if _, err := s.requireForwarder(ctx, forwarderID); err != nil {
		return nil, err
	}

	shipments, err := s.shipmentRepo.ListWonByForwarder(ctx, forwarderID)
	if err != nil {
		return nil, err
	}

	result := make([]domain.ShipmentWithSupplier, 0, len(shipments))
	for _, shipment := range shipments {
		entry := domain.ShipmentWithSupplier{Shipment: shipment}
		supplier, err := s.userRepo.GetByID(ctx, shipment.SupplierID)
		if err != nil {
			log.Printf("forwarderService.AcceptedQuotes: loading supplier %s: %v", shipment.SupplierID, err)
		} else {
			entry.SupplierDetails = &domain.SupplierDetails{
				Name:        supplier.Name,
				Email:       supplier.Email,
				Phone:       supplier.Phone,
				CompanyName: supplier.CompanyName,
			}
		}
		result = append(result, entry)
	}
	return result, nil
}

func (s *forwarderService) ExportAcceptedQuotes(ctx context.Context, forwarderID uuid.UUID) ([]byte, error) {
	shipments, err := s.AcceptedQuotes(ctx, forwarderID)
	if err != nil {
		return nil, err
	}
	return xlsxexport.WriteAcceptedQuotes(shipments)
}

func (s *forwarderService) ShowDrivers(ctx context.Context, forwarderID uuid.UUID) ([]domain.Driver, error) {
	if _, err := s.requireForwarder(ctx, forwarderID); err != nil {
		return nil, err
	}
	return s.driverRepo.ListActive(ctx)
}

func (s *forwarderService) AssignDriver(ctx context.Context, forwarderID, shipmentID, driverID uuid.UUID) (*domain.Shipment, error) {
	if _, err := s.requireForwarder(ctx, forwarderID); err != nil {
		return nil, err
	}

	shipment, err := s.shipmentRepo.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	driver, err := s.driverRepo.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}

	if err := s.shipmentRepo.AssignDriver(ctx, shipment.ID, driver.ID); err != nil {
		return nil, err
	}
	shipment.AssignedDriverID = &driver.ID
	return shipment, nil
}
