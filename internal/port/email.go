package port

import (
	"context"

	"tradeflow/internal/domain"
)

// EmailSender defines the contract for sending notification emails.
type EmailSender interface {
	SendQuoteAcceptedEmail(ctx context.Context, toEmail, toName string, shipment *domain.Shipment, quote *domain.Quote) error
}
