package payment

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/rosterup/rosterup/internal/apperr"
	"github.com/rosterup/rosterup/internal/application"
	"github.com/rosterup/rosterup/internal/org"
	"github.com/rosterup/rosterup/internal/outbox"
	"github.com/rosterup/rosterup/internal/roster"
)

// DefaultPlatformFeeBps is the marketplace cut retained on each transaction.
const DefaultPlatformFeeBps = 500

// PlatformFeeCents computes the platform's cut of an amount in basis points.
func PlatformFeeCents(amountCents int64, bps int) int64 {
	return int64(math.Round(float64(amountCents) * float64(bps) / 10000))
}

// Service creates payment intents for fee-bearing applications and
// reconciles webhook events into order/application state.
type Service struct {
	orders   PaymentRepository
	apps     application.ApplicationRepository
	spots    roster.RosterRepository
	orgs     org.OrgRepository
	provider Provider
	feeBps   int
	events   outbox.Recorder
	log      zerolog.Logger
}

func NewService(orders PaymentRepository, apps application.ApplicationRepository, spots roster.RosterRepository, orgs org.OrgRepository, provider Provider, feeBps int, events outbox.Recorder, log zerolog.Logger) *Service {
	if feeBps <= 0 {
		feeBps = DefaultPlatformFeeBps
	}
	return &Service{
		orders:   orders,
		apps:     apps,
		spots:    spots,
		orgs:     orgs,
		provider: provider,
		feeBps:   feeBps,
		events:   events,
		log:      log,
	}
}

// CreateIntent creates a processor-side payment intent and the local Order
// record for an application's fee. If the Order cannot be persisted after the
// intent exists, the intent is cancelled so no orphaned charge path remains.
func (s *Service) CreateIntent(ctx context.Context, appID, buyerID uint) (*IntentResult, error) {
	app, err := s.apps.GetByID(appID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamFailure, "application lookup failed", err)
	}
	if app == nil {
		return nil, apperr.New(apperr.KindNotFound, "Application not found")
	}
	if app.GuardianID != buyerID {
		return nil, apperr.New(apperr.KindForbidden, "Application belongs to another guardian")
	}

	spot, err := s.spots.GetSpotByID(app.RosterSpotID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamFailure, "roster spot lookup failed", err)
	}
	if spot == nil {
		return nil, apperr.New(apperr.KindNotFound, "Roster spot not found")
	}
	if !roster.HasFee(spot) {
		return nil, apperr.New(apperr.KindNoFeeRequired, "This roster spot has no fee")
	}

	owner, err := s.orgs.GetOrgForTeam(spot.TeamID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamFailure, "org lookup failed", err)
	}
	if owner == nil {
		return nil, apperr.New(apperr.KindNotFound, "Organization not found")
	}
	if owner.PaymentAccountID == "" || !owner.ChargesEnabled {
		return nil, apperr.New(apperr.KindPayeeNotOnboarded, "Organization has not completed payment onboarding")
	}

	amountCents := *spot.FeeCents
	platformFee := PlatformFeeCents(amountCents, s.feeBps)

	intent, err := s.provider.CreateIntent(ctx, CreateIntentParams{
		AmountCents:     amountCents,
		FeeCents:        platformFee,
		Currency:        spot.Currency,
		TransferAccount: owner.PaymentAccountID,
		ApplicationID:   app.ID,
		BuyerID:         buyerID,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamFailure, "payment intent creation failed", err)
	}

	order := &Order{
		OrgID:            owner.ID,
		BuyerID:          buyerID,
		ApplicationID:    app.ID,
		AmountCents:      amountCents,
		PlatformFeeCents: platformFee,
		Currency:         spot.Currency,
		PaymentIntentID:  intent.ID,
		Status:           OrderRequiresPaymentMethod,
	}
	if err := s.orders.CreateOrder(order); err != nil {
		// Compensating action: never leave a processor-side intent without a
		// local order to reconcile against.
		if cancelErr := s.provider.CancelIntent(ctx, intent.ID); cancelErr != nil {
			s.log.Error().Err(cancelErr).Str("payment_intent_id", intent.ID).Msg("failed to cancel orphaned payment intent")
		}
		return nil, apperr.Wrap(apperr.KindUpstreamFailure, "order persistence failed", err)
	}

	pending := application.PaymentPending
	app.PaymentStatus = &pending
	app.PaymentIntentID = intent.ID
	if err := s.apps.Update(app); err != nil {
		s.log.Warn().Err(err).Uint("application_id", app.ID).Msg("failed to link payment intent to application")
	}

	s.events.Record("order.created", map[string]interface{}{
		"order_id":       order.ID,
		"application_id": app.ID,
		"amount_cents":   amountCents,
	})
	s.log.Info().Uint("order_id", order.ID).Str("payment_intent_id", intent.ID).Int64("amount_cents", amountCents).Msg("payment intent created")

	return &IntentResult{
		ClientSecret:     intent.ClientSecret,
		AmountCents:      amountCents,
		PlatformFeeCents: platformFee,
	}, nil
}

// HandleWebhook verifies and applies one processor callback. Delivery is
// at-least-once: every branch is idempotent, and unrecognized event types are
// accepted and ignored so the processor does not redeliver them forever.
func (s *Service) HandleWebhook(body []byte, signature string) error {
	event, err := s.provider.VerifyAndParse(body, signature)
	if err != nil {
		return err
	}

	switch event.Type {
	case EventPaymentSucceeded:
		return s.applyPaymentSucceeded(event)
	case EventPaymentFailed:
		return s.applyPaymentFailed(event)
	case EventChargeRefunded:
		return s.applyChargeRefunded(event)
	default:
		s.log.Info().Str("event_type", event.Type).Str("event_id", event.ID).Msg("ignoring unhandled webhook event")
		return nil
	}
}

func (s *Service) applyPaymentSucceeded(event *Event) error {
	order, err := s.orders.GetOrderByIntentID(event.PaymentIntentID)
	if err != nil {
		return apperr.Wrap(apperr.KindUpstreamFailure, "order lookup failed", err)
	}
	if order == nil {
		s.log.Warn().Str("payment_intent_id", event.PaymentIntentID).Msg("succeeded event for unknown order, ignoring")
		return nil
	}
	if order.Status == OrderSucceeded {
		// Replay of an already-settled event.
		return nil
	}

	order.Status = OrderSucceeded
	if err := s.orders.UpdateOrder(order); err != nil {
		return apperr.Wrap(apperr.KindUpstreamFailure, "order update failed", err)
	}

	app, err := s.apps.GetByID(order.ApplicationID)
	if err != nil {
		return apperr.Wrap(apperr.KindUpstreamFailure, "application lookup failed", err)
	}
	if app != nil {
		paid := application.PaymentPaid
		app.PaymentStatus = &paid
		app.FeePaid = true
		if err := s.apps.Update(app); err != nil {
			return apperr.Wrap(apperr.KindUpstreamFailure, "application update failed", err)
		}
	}

	s.events.Record("order.succeeded", map[string]interface{}{
		"order_id":       order.ID,
		"application_id": order.ApplicationID,
	})
	s.log.Info().Uint("order_id", order.ID).Msg("payment succeeded")
	return nil
}

func (s *Service) applyPaymentFailed(event *Event) error {
	order, err := s.orders.GetOrderByIntentID(event.PaymentIntentID)
	if err != nil {
		return apperr.Wrap(apperr.KindUpstreamFailure, "order lookup failed", err)
	}
	if order == nil || order.Status == OrderFailed {
		return nil
	}
	// Never downgrade a settled order.
	if order.Status == OrderSucceeded || order.Status == OrderRefunded {
		return nil
	}

	order.Status = OrderFailed
	if err := s.orders.UpdateOrder(order); err != nil {
		return apperr.Wrap(apperr.KindUpstreamFailure, "order update failed", err)
	}
	s.log.Info().Uint("order_id", order.ID).Msg("payment failed")
	return nil
}

func (s *Service) applyChargeRefunded(event *Event) error {
	order, err := s.orders.GetOrderByIntentID(event.PaymentIntentID)
	if err != nil {
		return apperr.Wrap(apperr.KindUpstreamFailure, "order lookup failed", err)
	}
	if order == nil || order.Status == OrderRefunded {
		return nil
	}

	now := time.Now()
	order.Status = OrderRefunded
	order.RefundedAt = &now
	if err := s.orders.UpdateOrder(order); err != nil {
		return apperr.Wrap(apperr.KindUpstreamFailure, "order update failed", err)
	}

	app, err := s.apps.GetByID(order.ApplicationID)
	if err != nil {
		return apperr.Wrap(apperr.KindUpstreamFailure, "application lookup failed", err)
	}
	if app != nil {
		refunded := application.PaymentRefunded
		app.PaymentStatus = &refunded
		app.FeePaid = false
		if err := s.apps.Update(app); err != nil {
			return apperr.Wrap(apperr.KindUpstreamFailure, "application update failed", err)
		}
	}

	s.events.Record("order.refunded", map[string]interface{}{
		"order_id":       order.ID,
		"application_id": order.ApplicationID,
	})
	s.log.Info().Uint("order_id", order.ID).Msg("charge refunded")
	return nil
}
