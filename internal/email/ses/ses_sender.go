package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"tradeflow/internal/domain"
	"tradeflow/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (s *sesSender) SendQuoteAcceptedEmail(ctx context.Context, toEmail, toName string, shipment *domain.Shipment, quote *domain.Quote) error {
	subject := fmt.Sprintf("Your quote for %s → %s was accepted", shipment.Origin, shipment.Destination)
	htmlBody := buildQuoteAcceptedHTML(toName, shipment, quote)
	textBody := fmt.Sprintf(
		"Hi %s,\n\nYour quote of %.2f %s for the shipment %s → %s has been accepted by the supplier.\nThe shipment is now booked with you. Log in to assign a driver and start fulfillment.\n\nTradeFlow Team",
		toName, quote.Amount, quote.Currency, shipment.Origin, shipment.Destination)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildQuoteAcceptedHTML(name string, shipment *domain.Shipment, quote *domain.Quote) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Quote accepted</h2>
  <p>Hi %s,</p>
  <p>Your quote of <strong>%.2f %s</strong> for the shipment below has been accepted:</p>
  <table style="border-collapse: collapse; margin: 20px 0;">
    <tr><td style="padding: 4px 12px 4px 0; color: #666;">Route</td><td style="padding: 4px 0;">%s &rarr; %s</td></tr>
    <tr><td style="padding: 4px 12px 4px 0; color: #666;">Shipment ID</td><td style="padding: 4px 0;">%s</td></tr>
  </table>
  <p>The shipment is now booked with you. Log in to assign a driver and start fulfillment.</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">TradeFlow - Freight Logistics Platform</p>
</body>
</html>`, name, quote.Amount, quote.Currency, shipment.Origin, shipment.Destination, shipment.ID)
}
