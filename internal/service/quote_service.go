package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"tradeflow/internal/domain"
	"tradeflow/internal/port"
)

// QuoteCreateInput is the DTO for forwarder quote submissions.
type QuoteCreateInput struct {
	ShipmentID   uuid.UUID
	ForwarderID  uuid.UUID
	Amount       float64
	Currency     string
	ValidityDate *time.Time
	Remarks      string
}

// QuoteUpdateInput is the DTO for forwarder quote updates.
type QuoteUpdateInput struct {
	Status  domain.QuoteStatus
	Remarks string
}

// QuoteService defines the quote lifecycle contract.
type QuoteService interface {
	Create(ctx context.Context, input QuoteCreateInput) (*domain.Quote, error)
	ListByShipment(ctx context.Context, shipmentID uuid.UUID) ([]domain.QuoteWithForwarder, error)
	// Accept books the shipment for the quote's forwarder. Only the supplier
	// owning the shipment may accept, and only one quote per shipment can ever
	// be accepted.
	Accept(ctx context.Context, supplierID, shipmentID, quoteID uuid.UUID) (*domain.QuoteWithForwarder, error)
	// Update lets the owning forwarder move a pending quote to rejected (or
	// back to pending) and amend remarks. Accepted and expired quotes are
	// final.
	Update(ctx context.Context, forwarderID, quoteID uuid.UUID, input QuoteUpdateInput) (*domain.QuoteWithForwarder, error)
}

type quoteService struct {
	quoteRepo    port.QuoteRepository
	shipmentRepo port.ShipmentRepository
	userRepo     port.UserRepository
	email        port.EmailSender
}

// NewQuoteService creates a new QuoteService implementation.
func NewQuoteService(
	quoteRepo port.QuoteRepository,
	shipmentRepo port.ShipmentRepository,
	userRepo port.UserRepository,
	email port.EmailSender,
) QuoteService {
	return &quoteService{
		quoteRepo:    quoteRepo,
		shipmentRepo: shipmentRepo,
		userRepo:     userRepo,
		email:        email,
	}
}

func (s *quoteService) Create(ctx context.Context, input QuoteCreateInput) (*domain.Quote, error) {
	if input.Amount <= 0 {
		return nil, domain.ErrMissingQuoteAmount
	}

	shipment, err := s.shipmentRepo.GetByID(ctx, input.ShipmentID)
	if err != nil {
		return nil, err
	}

	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	quote := &domain.Quote{
		ID:           uuid.New(),
		ShipmentID:   shipment.ID,
		ForwarderID:  input.ForwarderID,
		Amount:       input.Amount,
		Currency:     currency,
		ValidityDate: input.ValidityDate,
		Status:       domain.QuoteStatusPending,
		Remarks:      input.Remarks,
	}
	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		return nil, err
	}

	// A first bid moves the shipment out of its draft state.
	if shipment.Status == domain.ShipmentStatusDraft || shipment.Status == domain.ShipmentStatusPendingQuote {
		shipment.Status = domain.ShipmentStatusQuoted
		if err := s.shipmentRepo.Update(ctx, shipment); err != nil {
			log.Printf("quoteService.Create: updating shipment status: %v", err)
		}
	}

	return quote, nil
}

func (s *quoteService) ListByShipment(ctx context.Context, shipmentID uuid.UUID) ([]domain.QuoteWithForwarder, error) {
	if _, err := s.shipmentRepo.GetByID(ctx, shipmentID); err != nil {
		return nil, err
	}
	return s.quoteRepo.ListByShipment(ctx, shipmentID)
}

func (s *quoteService) Accept(ctx context.Context, supplierID, shipmentID, quoteID uuid.UUID) (*domain.QuoteWithForwarder, error) {
	shipment, err := s.shipmentRepo.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if shipment.SupplierID != supplierID {
		return nil, domain.ErrForbidden
	}

	quote, err := s.quoteRepo.GetByIDForShipment(ctx, quoteID, shipmentID)
	if err != nil {
		return nil, err
	}
	if quote.Status != domain.QuoteStatusPending {
		return nil, domain.ErrQuoteNotPending
	}
	if quote.ValidityDate != nil && quote.ValidityDate.Before(time.Now().UTC()) {
		if err := s.quoteRepo.MarkExpired(ctx, quote.ID); err != nil {
			log.Printf("quoteService.Accept: marking quote %s expired: %v", quote.ID, err)
		}
		return nil, domain.ErrQuoteExpired
	}

	if err := s.quoteRepo.Accept(ctx, quote.ID, shipment.ID, quote.ForwarderID); err != nil {
		return nil, err
	}
	quote.Status = domain.QuoteStatusAccepted
	// Reflect the committed booking so downstream consumers (the notification
	// email included) never see the pre-acceptance snapshot.
	shipment.ForwarderID = &quote.ForwarderID
	shipment.Status = domain.ShipmentStatusBooked

	forwarder, err := s.userRepo.GetByID(ctx, quote.ForwarderID)
	if err != nil {
		log.Printf("quoteService.Accept: loading forwarder %s: %v", quote.ForwarderID, err)
		return &domain.QuoteWithForwarder{Quote: *quote}, nil
	}

	// Notification is best effort; the booking already committed.
	if err := s.email.SendQuoteAcceptedEmail(ctx, forwarder.Email, forwarder.Name, shipment, quote); err != nil {
		log.Printf("quoteService.Accept: sending acceptance email: %v", err)
	}

	return withForwarderInfo(quote, forwarder), nil
}

func (s *quoteService) Update(ctx context.Context, forwarderID, quoteID uuid.UUID, input QuoteUpdateInput) (*domain.QuoteWithForwarder, error) {
	if input.Status != domain.QuoteStatusPending && input.Status != domain.QuoteStatusRejected {
		return nil, domain.ErrInvalidQuoteStatus
	}

	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.ForwarderID != forwarderID {
		return nil, domain.ErrForbidden
	}
	// Accepted and expired quotes are final; only pending and rejected quotes
	// can still move.
	if quote.Status == domain.QuoteStatusAccepted || quote.Status == domain.QuoteStatusExpired {
		return nil, domain.ErrQuoteNotPending
	}

	quote.Status = input.Status
	if input.Remarks != "" {
		quote.Remarks = input.Remarks
	}
	if err := s.quoteRepo.UpdateStatus(ctx, quote); err != nil {
		return nil, err
	}

	forwarder, err := s.userRepo.GetByID(ctx, quote.ForwarderID)
	if err != nil {
		return &domain.QuoteWithForwarder{Quote: *quote}, nil
	}
	return withForwarderInfo(quote, forwarder), nil
}

func withForwarderInfo(quote *domain.Quote, forwarder *domain.User) *domain.QuoteWithForwarder {
	return &domain.QuoteWithForwarder{
		Quote:            *quote,
		ForwarderName:    forwarder.Name,
		ForwarderEmail:   forwarder.Email,
		ForwarderCompany: forwarder.CompanyName,
	}
}
