package offer

import (
	"time"

	"gorm.io/gorm"
)

const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
	StatusExpired  = "expired"

	DefaultExpiryDays = 7
)

// Offer is a time-boxed invitation extended to an accepted applicant.
//
// Expiry is a read-time rule: there is no background sweeper, so a pending
// offer past ExpiresAt must be treated as expired even while the stored
// status still says pending. Use EffectiveStatus when displaying or acting
// on an offer.
type Offer struct {
	gorm.Model
	ApplicationID uint       `json:"application_id" gorm:"index;not null"`
	Status        string     `json:"status" gorm:"default:'pending';index"`
	ExpiresAt     time.Time  `json:"expires_at"`
	AcceptedAt    *time.Time `json:"accepted_at"`
	DeclinedAt    *time.Time `json:"declined_at"`
}

// IsExpired reports whether the offer's expiry timestamp is behind now.
func (o *Offer) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// EffectiveStatus derives the status consumers must act on: a stored pending
// offer past its expiry reads as expired.
func (o *Offer) EffectiveStatus(now time.Time) string {
	if o.Status == StatusPending && o.IsExpired(now) {
		return StatusExpired
	}
	return o.Status
}

type MakeOfferRequest struct {
	ExpiresInDays int `json:"expires_in_days" binding:"omitempty,gte=1,lte=90"`
}

// OfferResponse carries the derived status alongside the stored record.
type OfferResponse struct {
	Offer
	EffectiveStatus string `json:"effective_status"`
}

func NewOfferResponse(o Offer, now time.Time) OfferResponse {
	return OfferResponse{Offer: o, EffectiveStatus: o.EffectiveStatus(now)}
}
