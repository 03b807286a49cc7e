package roster

import (
	"time"

	"gorm.io/gorm"
)

const (
	VisibilityPublic = "public"
	VisibilityInvite = "invite"

	StatusOpen   = "open"
	StatusClosed = "closed"
)

// RosterSpot is one recruitable position on a team for a season.
//
// Capacity semantics: nil means unlimited. The cap is enforced when an
// application is accepted, never retroactively. Lowering capacity below the
// current accepted count only blocks future acceptances.
type RosterSpot struct {
	gorm.Model
	TeamID      uint       `json:"team_id" gorm:"index;not null"`
	SeasonID    *uint      `json:"season_id" gorm:"index"`
	PositionID  *uint      `json:"position_id" gorm:"index"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description"`
	MinAge      *int       `json:"min_age"`
	MaxAge      *int       `json:"max_age"`
	MinGrade    *int       `json:"min_grade"`
	MaxGrade    *int       `json:"max_grade"`
	Capacity    *int       `json:"capacity"`
	Deadline    *time.Time `json:"deadline"`
	Visibility  string     `json:"visibility" gorm:"default:'public';index"`
	Status      string     `json:"status" gorm:"default:'open';index"`
	FeeCents    *int64     `json:"fee_cents"`
	Currency    string     `json:"currency" gorm:"default:'usd'"`
}

// CanAccept reports whether the spot can take one more accepted application.
// acceptedCount must be the fresh count of applications currently in accepted
// status for this spot.
func CanAccept(spot *RosterSpot, acceptedCount int) bool {
	if spot.Capacity == nil {
		return true
	}
	return acceptedCount < *spot.Capacity
}

// DeadlinePassed reports whether the application deadline is behind now.
// A passed deadline blocks new applications but does not close the spot.
func DeadlinePassed(spot *RosterSpot, now time.Time) bool {
	return spot.Deadline != nil && now.After(*spot.Deadline)
}

// HasFee reports whether accepting this spot requires a payment.
func HasFee(spot *RosterSpot) bool {
	return spot.FeeCents != nil && *spot.FeeCents > 0
}
