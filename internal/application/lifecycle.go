package application

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rosterup/rosterup/internal/apperr"
	"github.com/rosterup/rosterup/internal/outbox"
	"github.com/rosterup/rosterup/internal/roster"
	"github.com/rosterup/rosterup/internal/user"
)

// Lifecycle executes application status transitions. It owns the state
// machine, the capacity guard on acceptance, and the duplicate-application
// check on submit.
type Lifecycle struct {
	apps   ApplicationRepository
	spots  roster.RosterRepository
	users  user.UserRepository
	events outbox.Recorder
	log    zerolog.Logger
	now    func() time.Time
}

func NewLifecycle(apps ApplicationRepository, spots roster.RosterRepository, users user.UserRepository, events outbox.Recorder, log zerolog.Logger) *Lifecycle {
	return &Lifecycle{
		apps:   apps,
		spots:  spots,
		users:  users,
		events: events,
		log:    log,
		now:    time.Now,
	}
}

// Submit creates a new application in submitted status.
// Rejected when the spot is closed or invite-only, the deadline has passed,
// or a non-withdrawn application for the same (spot, child) already exists.
func (l *Lifecycle) Submit(guardianID uint, req SubmitApplicationRequest) (*Application, error) {
	child, err := l.users.GetChildByID(req.ChildID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamFailure, "child lookup failed", err)
	}
	if child == nil {
		return nil, apperr.New(apperr.KindNotFound, "Child not found")
	}
	if child.GuardianID != guardianID {
		return nil, apperr.New(apperr.KindForbidden, "Child does not belong to you")
	}

	spot, err := l.spots.GetSpotByID(req.RosterSpotID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamFailure, "roster spot lookup failed", err)
	}
	if spot == nil {
		return nil, apperr.New(apperr.KindNotFound, "Roster spot not found")
	}
	if spot.Status != roster.StatusOpen {
		return nil, apperr.New(apperr.KindInvalidState, "Roster spot is closed")
	}
	if spot.Visibility != roster.VisibilityPublic {
		return nil, apperr.New(apperr.KindForbidden, "Roster spot is invite-only")
	}
	if roster.DeadlinePassed(spot, l.now()) {
		return nil, apperr.New(apperr.KindInvalidState, "Application deadline has passed")
	}

	existing, err := l.apps.FindActiveBySpotAndChild(spot.ID, child.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamFailure, "duplicate check failed", err)
	}
	if existing != nil {
		return nil, apperr.New(apperr.KindConflict, "An application for this child already exists")
	}

	app := &Application{
		RosterSpotID: spot.ID,
		ChildID:      child.ID,
		GuardianID:   guardianID,
		Note:         req.Note,
		Status:       StatusSubmitted,
	}
	if !roster.HasFee(spot) {
		notRequired := PaymentNotRequired
		app.PaymentStatus = &notRequired
	}

	if err := l.apps.Create(app); err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamFailure, "application create failed", err)
	}

	l.events.Record("application.submitted", map[string]interface{}{
		"application_id": app.ID,
		"roster_spot_id": spot.ID,
		"guardian_id":    guardianID,
	})
	l.log.Info().Uint("application_id", app.ID).Uint("roster_spot_id", spot.ID).Msg("application submitted")
	return app, nil
}

// Transition moves an application to target.
//
// Acceptances run inside a single transaction that locks the roster spot row
// and recounts accepted applications, so two concurrent accepts near capacity
// serialize instead of overshooting. A denied transition leaves the row
// untouched.
func (l *Lifecycle) Transition(appID uint, target Status) (*Application, error) {
	if !KnownStatus(target) {
		return nil, apperr.New(apperr.KindValidation, fmt.Sprintf("Unknown status %q", target))
	}

	var updated *Application
	err := l.apps.WithTransaction(func(tx ApplicationRepository) error {
		app, err := tx.GetByID(appID)
		if err != nil {
			return apperr.Wrap(apperr.KindUpstreamFailure, "application lookup failed", err)
		}
		if app == nil {
			return apperr.New(apperr.KindNotFound, "Application not found")
		}
		if IsTerminal(app.Status) {
			return apperr.New(apperr.KindInvalidState, fmt.Sprintf("Application is %s and cannot change status", app.Status))
		}
		if !CanTransition(app.Status, target) {
			return apperr.New(apperr.KindInvalidState, fmt.Sprintf("Cannot move application from %s to %s", app.Status, target))
		}

		if target == StatusAccepted {
			spot, err := tx.LockSpot(app.RosterSpotID)
			if err != nil {
				return apperr.Wrap(apperr.KindUpstreamFailure, "roster spot lock failed", err)
			}
			if spot == nil {
				return apperr.New(apperr.KindNotFound, "Roster spot not found")
			}
			accepted, err := tx.CountAcceptedForSpot(spot.ID)
			if err != nil {
				return apperr.Wrap(apperr.KindUpstreamFailure, "accepted count failed", err)
			}
			if !roster.CanAccept(spot, int(accepted)) {
				return apperr.New(apperr.KindCapacityExceeded, "Roster spot capacity reached")
			}
		}

		app.Status = target
		if err := tx.Update(app); err != nil {
			return apperr.Wrap(apperr.KindUpstreamFailure, "application update failed", err)
		}
		updated = app
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.events.Record("application.status_changed", map[string]interface{}{
		"application_id": updated.ID,
		"status":         updated.Status,
	})
	l.log.Info().Uint("application_id", updated.ID).Str("status", string(updated.Status)).Msg("application transitioned")
	return updated, nil
}

// Withdraw is the guardian-initiated transition to withdrawn. Allowed from
// every non-terminal state.
func (l *Lifecycle) Withdraw(appID, guardianID uint) (*Application, error) {
	app, err := l.apps.GetByID(appID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamFailure, "application lookup failed", err)
	}
	if app == nil {
		return nil, apperr.New(apperr.KindNotFound, "Application not found")
	}
	if app.GuardianID != guardianID {
		return nil, apperr.New(apperr.KindForbidden, "Application belongs to another guardian")
	}
	return l.Transition(appID, StatusWithdrawn)
}

// BulkTransition applies the same transition to each id independently.
// Best effort: a failure partway through does not roll back prior successes.
// authorize is called per application before transitioning; a non-nil error
// records a failure for that id.
func (l *Lifecycle) BulkTransition(ids []uint, target Status, authorize func(*Application) error) []BulkResult {
	results := make([]BulkResult, 0, len(ids))
	for _, id := range ids {
		result := BulkResult{ApplicationID: id}

		app, err := l.apps.GetByID(id)
		if err != nil {
			result.Error = apperr.MessageOf(apperr.Wrap(apperr.KindUpstreamFailure, "application lookup failed", err))
			results = append(results, result)
			continue
		}
		if app == nil {
			result.Error = "Application not found"
			results = append(results, result)
			continue
		}
		if authorize != nil {
			if err := authorize(app); err != nil {
				result.Error = apperr.MessageOf(err)
				results = append(results, result)
				continue
			}
		}

		if _, err := l.Transition(id, target); err != nil {
			result.Error = apperr.MessageOf(err)
		} else {
			result.OK = true
		}
		results = append(results, result)
	}
	return results
}
