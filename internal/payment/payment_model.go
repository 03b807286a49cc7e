package payment

import (
	"time"

	"gorm.io/gorm"
)

const (
	OrderRequiresPaymentMethod = "requires_payment_method"
	OrderSucceeded             = "succeeded"
	OrderFailed                = "failed"
	OrderRefunded              = "refunded"
)

// Order tracks one payment-intent lifecycle for a fee-bearing application.
// Status is driven exclusively by verified webhook events, never by direct
// user action.
type Order struct {
	gorm.Model
	OrgID            uint       `json:"org_id" gorm:"index;not null"`
	BuyerID          uint       `json:"buyer_id" gorm:"index;not null"`
	ApplicationID    uint       `json:"application_id" gorm:"index;not null"`
	AmountCents      int64      `json:"amount_cents" gorm:"not null"`
	PlatformFeeCents int64      `json:"platform_fee_cents" gorm:"not null"`
	Currency         string     `json:"currency" gorm:"not null"`
	PaymentIntentID  string     `json:"payment_intent_id" gorm:"uniqueIndex;not null"`
	Status           string     `json:"status" gorm:"default:'requires_payment_method';index"`
	RefundedAt       *time.Time `json:"refunded_at"`
}

// IntentResult is returned to the client to complete payment.
type IntentResult struct {
	ClientSecret     string `json:"client_secret"`
	AmountCents      int64  `json:"amount_cents"`
	PlatformFeeCents int64  `json:"platform_fee_cents"`
}
