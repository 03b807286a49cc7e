package offer

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/rosterup/rosterup/internal/apperr"
	"github.com/rosterup/rosterup/internal/application"
	"github.com/rosterup/rosterup/internal/outbox"
)

// Service issues offers and applies guardian responses.
type Service struct {
	offers OfferRepository
	apps   application.ApplicationRepository
	events outbox.Recorder
	log    zerolog.Logger
	now    func() time.Time
}

func NewService(offers OfferRepository, apps application.ApplicationRepository, events outbox.Recorder, log zerolog.Logger) *Service {
	return &Service{
		offers: offers,
		apps:   apps,
		events: events,
		log:    log,
		now:    time.Now,
	}
}

// MakeOffer extends a pending offer to an accepted application. A still-
// pending earlier offer for the same application is superseded (marked
// expired) first, keeping at most one active offer per application.
func (s *Service) MakeOffer(applicationID uint, expiresInDays int) (*Offer, error) {
	if expiresInDays <= 0 {
		expiresInDays = DefaultExpiryDays
	}

	app, err := s.apps.GetByID(applicationID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamFailure, "application lookup failed", err)
	}
	if app == nil {
		return nil, apperr.New(apperr.KindNotFound, "Application not found")
	}
	if app.Status != application.StatusAccepted {
		return nil, apperr.New(apperr.KindInvalidState, "Offers can only be made for accepted applications")
	}

	existing, err := s.offers.GetPendingByApplication(applicationID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamFailure, "pending offer lookup failed", err)
	}
	if existing != nil {
		existing.Status = StatusExpired
		if err := s.offers.Update(existing); err != nil {
			return nil, apperr.Wrap(apperr.KindUpstreamFailure, "offer supersede failed", err)
		}
		s.log.Info().Uint("offer_id", existing.ID).Uint("application_id", applicationID).Msg("pending offer superseded")
	}

	o := &Offer{
		ApplicationID: applicationID,
		Status:        StatusPending,
		ExpiresAt:     s.now().AddDate(0, 0, expiresInDays),
	}
	if err := s.offers.Create(o); err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamFailure, "offer create failed", err)
	}

	s.events.Record("offer.created", map[string]interface{}{
		"offer_id":       o.ID,
		"application_id": applicationID,
		"guardian_id":    app.GuardianID,
		"expires_at":     o.ExpiresAt,
	})
	s.log.Info().Uint("offer_id", o.ID).Uint("application_id", applicationID).Time("expires_at", o.ExpiresAt).Msg("offer created")
	return o, nil
}

// Respond applies the guardian's accept/decline decision. A pending offer
// past its expiry is treated as expired and cannot be responded to.
func (s *Service) Respond(offerID, guardianID uint, accept bool) (*Offer, error) {
	o, err := s.offers.GetByID(offerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamFailure, "offer lookup failed", err)
	}
	if o == nil {
		return nil, apperr.New(apperr.KindNotFound, "Offer not found")
	}

	app, err := s.apps.GetByID(o.ApplicationID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamFailure, "application lookup failed", err)
	}
	if app == nil {
		return nil, apperr.New(apperr.KindNotFound, "Application not found")
	}
	if app.GuardianID != guardianID {
		return nil, apperr.New(apperr.KindForbidden, "Offer belongs to another guardian")
	}

	now := s.now()
	switch o.EffectiveStatus(now) {
	case StatusPending:
		// fall through to apply the response
	case StatusExpired:
		// Persist the derived state while rejecting the response.
		if o.Status == StatusPending {
			o.Status = StatusExpired
			if err := s.offers.Update(o); err != nil {
				s.log.Warn().Err(err).Uint("offer_id", o.ID).Msg("failed to persist derived expiry")
			}
		}
		return nil, apperr.New(apperr.KindInvalidState, "Offer has expired")
	default:
		return nil, apperr.New(apperr.KindInvalidState, "Offer has already been responded to")
	}

	if accept {
		o.Status = StatusAccepted
		o.AcceptedAt = &now
	} else {
		o.Status = StatusDeclined
		o.DeclinedAt = &now
	}
	if err := s.offers.Update(o); err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamFailure, "offer update failed", err)
	}

	s.events.Record("offer.responded", map[string]interface{}{
		"offer_id":       o.ID,
		"application_id": o.ApplicationID,
		"status":         o.Status,
	})
	s.log.Info().Uint("offer_id", o.ID).Str("status", o.Status).Msg("offer responded")
	return o, nil
}
