package application

import (
	"gorm.io/gorm"
)

// Status is the lifecycle state of an application.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusSubmitted  Status = "submitted"
	StatusInReview   Status = "in_review"
	StatusAccepted   Status = "accepted"
	StatusWaitlisted Status = "waitlisted"
	StatusRejected   Status = "rejected"
	StatusWithdrawn  Status = "withdrawn"
)

const (
	PaymentNotRequired = "not_required"
	PaymentPending     = "pending"
	PaymentPaid        = "paid"
	PaymentRefunded    = "refunded"
)

// Application is one child's application to one roster spot. Withdrawal is a
// status, never a delete.
type Application struct {
	gorm.Model
	RosterSpotID    uint    `json:"roster_spot_id" gorm:"index;not null"`
	ChildID         uint    `json:"child_id" gorm:"index;not null"`
	GuardianID      uint    `json:"guardian_id" gorm:"index;not null"`
	Note            string  `json:"note"`
	Status          Status  `json:"status" gorm:"default:'submitted';index"`
	PaymentStatus   *string `json:"payment_status"`
	FeePaid         bool    `json:"fee_paid" gorm:"default:false"`
	PaymentIntentID string  `json:"payment_intent_id,omitempty" gorm:"index"`
}

// allowedTransitions is the full edge set of the lifecycle state machine.
// accepted targets are additionally capacity-guarded at transition time.
var allowedTransitions = map[Status][]Status{
	StatusDraft:      {StatusSubmitted, StatusWithdrawn},
	StatusSubmitted:  {StatusInReview, StatusAccepted, StatusRejected, StatusWithdrawn},
	StatusInReview:   {StatusAccepted, StatusWaitlisted, StatusRejected, StatusWithdrawn},
	StatusWaitlisted: {StatusAccepted, StatusWithdrawn},
	StatusAccepted:   {StatusWithdrawn},
}

// IsTerminal reports whether no further transitions are allowed from s.
func IsTerminal(s Status) bool {
	return s == StatusRejected || s == StatusWithdrawn
}

// CanTransition reports whether the edge from -> to exists in the state
// machine. It does not apply the capacity guard.
func CanTransition(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// KnownStatus reports whether s is a valid lifecycle status.
func KnownStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusInReview, StatusAccepted, StatusWaitlisted, StatusRejected, StatusWithdrawn:
		return true
	default:
		return false
	}
}

type SubmitApplicationRequest struct {
	RosterSpotID uint   `json:"roster_spot_id" binding:"required"`
	ChildID      uint   `json:"child_id" binding:"required"`
	Note         string `json:"note" binding:"max=2000"`
}

type TransitionRequest struct {
	Status Status `json:"status" binding:"required"`
}

type BulkTransitionRequest struct {
	ApplicationIDs []uint `json:"application_ids" binding:"required,min=1"`
	Status         Status `json:"status" binding:"required"`
}

// BulkResult reports the outcome for one application in a bulk transition.
// Bulk is best effort: failures do not roll back earlier successes.
type BulkResult struct {
	ApplicationID uint   `json:"application_id"`
	OK            bool   `json:"ok"`
	Error         string `json:"error,omitempty"`
}
