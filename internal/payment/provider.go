package payment

import (
	"context"
	"fmt"

	"github.com/rosterup/rosterup/config"
)

// Webhook event types emitted by the processor.
const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
	EventChargeRefunded   = "charge.refunded"
)

// Intent is a payment intent created at the processor.
type Intent struct {
	ID           string
	ClientSecret string
	AmountCents  int64
	FeeCents     int64
	Currency     string
}

// CreateIntentParams describes the charge: AmountCents is collected from the
// buyer, FeeCents is retained by the platform, and the remainder transfers
// to the connected account.
type CreateIntentParams struct {
	AmountCents     int64
	FeeCents        int64
	Currency        string
	TransferAccount string
	ApplicationID   uint
	BuyerID         uint
}

// Event is a verified webhook callback from the processor.
type Event struct {
	ID              string            `json:"id"`
	Type            string            `json:"type"`
	PaymentIntentID string            `json:"payment_intent_id"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// Provider is the payment processor boundary. Implementations must verify
// webhook signatures before returning an Event.
type Provider interface {
	Name() string
	CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error)
	// CancelIntent is the compensating action when local persistence fails
	// after the processor-side intent was created.
	CancelIntent(ctx context.Context, intentID string) error
	// VerifyAndParse checks the signature over the raw body and decodes the
	// event. A bad signature must fail without returning an event.
	VerifyAndParse(body []byte, signature string) (*Event, error)
	CreateAccount(ctx context.Context, orgName string) (string, error)
	OnboardingLink(ctx context.Context, accountID string) (string, error)
}

// NewProvider selects the configured payment provider.
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.Payments.Provider {
	case "stub":
		return NewStubProvider(cfg.Payments.WebhookSecret, cfg.Payments.BaseURL), nil
	default:
		return nil, fmt.Errorf("unknown payment provider: %s", cfg.Payments.Provider)
	}
}
