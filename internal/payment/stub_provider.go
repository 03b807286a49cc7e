package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rosterup/rosterup/internal/apperr"
)

// StubProvider is an in-house stand-in for the hosted payment processor.
// Intents are fabricated locally and webhooks carry a hex HMAC-SHA256
// signature over the raw body in the X-Signature header.
type StubProvider struct {
	secret  string
	baseURL string
}

func NewStubProvider(secret, baseURL string) *StubProvider {
	return &StubProvider{secret: secret, baseURL: strings.TrimRight(baseURL, "/")}
}

func (p *StubProvider) Name() string { return "stub" }

func (p *StubProvider) CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error) {
	if params.AmountCents <= 0 {
		return nil, fmt.Errorf("amount must be positive, got %d", params.AmountCents)
	}
	id := "pi_" + uuid.NewString()
	return &Intent{
		ID:           id,
		ClientSecret: id + "_secret_" + uuid.NewString(),
		AmountCents:  params.AmountCents,
		FeeCents:     params.FeeCents,
		Currency:     params.Currency,
	}, nil
}

func (p *StubProvider) CancelIntent(ctx context.Context, intentID string) error {
	// Nothing to undo remotely for the stub.
	return nil
}

// Sign computes the signature the stub expects for a webhook body. Exposed
// so tests and local tooling can produce valid callbacks.
func (p *StubProvider) Sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(p.secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (p *StubProvider) VerifyAndParse(body []byte, signature string) (*Event, error) {
	expected := p.Sign(body)
	if signature == "" || !hmac.Equal([]byte(signature), []byte(expected)) {
		return nil, apperr.New(apperr.KindSignatureInvalid, "Invalid webhook signature")
	}

	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "Malformed webhook payload", err)
	}
	return &event, nil
}

func (p *StubProvider) CreateAccount(ctx context.Context, orgName string) (string, error) {
	return "acct_" + uuid.NewString(), nil
}

func (p *StubProvider) OnboardingLink(ctx context.Context, accountID string) (string, error) {
	return p.baseURL + "/connect/onboarding?account=" + accountID, nil
}
