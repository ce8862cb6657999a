package noop

import (
	"context"
	"log"

	"tradeflow/internal/domain"
	"tradeflow/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs instead of sending.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendQuoteAcceptedEmail(_ context.Context, toEmail, toName string, shipment *domain.Shipment, quote *domain.Quote) error {
	log.Printf("[NOOP EMAIL] Quote accepted for %s (%s): %.2f %s on shipment %s",
		toName, toEmail, quote.Amount, quote.Currency, shipment.ID)
	return nil
}
