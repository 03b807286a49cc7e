package payment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterup/rosterup/internal/apperr"
	"github.com/rosterup/rosterup/internal/application"
	"github.com/rosterup/rosterup/internal/org"
	"github.com/rosterup/rosterup/internal/roster"
)

type fakeOrderRepo struct {
	orders    map[uint]Order
	nextID    uint
	createErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uint]Order), nextID: 1}
}

func (r *fakeOrderRepo) CreateOrder(o *Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	o.ID = r.nextID
	r.nextID++
	r.orders[o.ID] = *o
	return nil
}

func (r *fakeOrderRepo) GetOrderByID(id uint) (*Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *fakeOrderRepo) GetOrderByIntentID(intentID string) (*Order, error) {
	for _, o := range r.orders {
		if o.PaymentIntentID == intentID {
			match := o
			return &match, nil
		}
	}
	return nil, nil
}

func (r *fakeOrderRepo) UpdateOrder(o *Order) error {
	r.orders[o.ID] = *o
	return nil
}

func (r *fakeOrderRepo) ListOrdersByOrg(orgID uint, page, limit int) ([]Order, int64, error) {
	return nil, 0, nil
}

type fakeAppRepo struct {
	apps map[uint]application.Application
}

func (r *fakeAppRepo) Create(app *application.Application) error { return nil }

func (r *fakeAppRepo) GetByID(id uint) (*application.Application, error) {
	app, ok := r.apps[id]
	if !ok {
		return nil, nil
	}
	return &app, nil
}

func (r *fakeAppRepo) Update(app *application.Application) error {
	r.apps[app.ID] = *app
	return nil
}

func (r *fakeAppRepo) FindActiveBySpotAndChild(spotID, childID uint) (*application.Application, error) {
	return nil, nil
}
func (r *fakeAppRepo) CountAcceptedForSpot(spotID uint) (int64, error) { return 0, nil }
func (r *fakeAppRepo) GetByPaymentIntentID(intentID string) (*application.Application, error) {
	return nil, nil
}
func (r *fakeAppRepo) ListBySpot(spotID uint, status application.Status, page, limit int) ([]application.Application, int64, error) {
	return nil, 0, nil
}
func (r *fakeAppRepo) ListByGuardian(guardianID uint) ([]application.Application, error) {
	return nil, nil
}
func (r *fakeAppRepo) LockSpot(spotID uint) (*roster.RosterSpot, error) { return nil, nil }
func (r *fakeAppRepo) WithTransaction(fn func(application.ApplicationRepository) error) error {
	return fn(r)
}

type fakeSpotRepo struct {
	spots map[uint]roster.RosterSpot
}

func (r *fakeSpotRepo) CreateSpot(spot *roster.RosterSpot) error { return nil }

func (r *fakeSpotRepo) GetSpotByID(id uint) (*roster.RosterSpot, error) {
	spot, ok := r.spots[id]
	if !ok {
		return nil, nil
	}
	return &spot, nil
}

func (r *fakeSpotRepo) UpdateSpot(spot *roster.RosterSpot) error        { return nil }
func (r *fakeSpotRepo) SetSpotStatus(id uint, status string) error      { return nil }
func (r *fakeSpotRepo) ListSpotsByTeam(teamID uint) ([]roster.RosterSpot, error) { return nil, nil }
func (r *fakeSpotRepo) ListSpots(page, limit int, filters map[string]interface{}) ([]roster.RosterSpot, int64, error) {
	return nil, 0, nil
}

type fakeOrgRepo struct {
	orgs map[uint]org.Org
	// teamID -> orgID
	teams map[uint]uint
}

func (r *fakeOrgRepo) CreateOrg(o *org.Org) error { return nil }

func (r *fakeOrgRepo) GetOrgByID(id uint) (*org.Org, error) {
	o, ok := r.orgs[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *fakeOrgRepo) GetOrgBySlug(slug string) (*org.Org, error) { return nil, nil }
func (r *fakeOrgRepo) UpdateOrg(o *org.Org) error {
	r.orgs[o.ID] = *o
	return nil
}

func (r *fakeOrgRepo) AddMember(member *org.OrgMember) error               { return nil }
func (r *fakeOrgRepo) GetMember(orgID, userID uint) (*org.OrgMember, error) { return nil, nil }
func (r *fakeOrgRepo) IsOrgManager(orgID, userID uint) (bool, error)       { return false, nil }

func (r *fakeOrgRepo) CreateTeam(team *org.Team) error           { return nil }
func (r *fakeOrgRepo) GetTeamByID(id uint) (*org.Team, error)    { return nil, nil }
func (r *fakeOrgRepo) ListTeamsByOrg(orgID uint) ([]org.Team, error) { return nil, nil }

func (r *fakeOrgRepo) GetOrgForTeam(teamID uint) (*org.Org, error) {
	orgID, ok := r.teams[teamID]
	if !ok {
		return nil, nil
	}
	return r.GetOrgByID(orgID)
}

func (r *fakeOrgRepo) IsTeamManager(teamID, userID uint) (bool, error) { return false, nil }

func (r *fakeOrgRepo) CreateSeason(season *org.Season) error               { return nil }
func (r *fakeOrgRepo) ListSeasonsByOrg(orgID uint) ([]org.Season, error)   { return nil, nil }
func (r *fakeOrgRepo) CreatePosition(position *org.Position) error         { return nil }
func (r *fakeOrgRepo) ListPositionsByOrg(orgID uint) ([]org.Position, error) { return nil, nil }

// recordingProvider wraps the stub to observe compensating cancels.
type recordingProvider struct {
	*StubProvider
	cancelled []string
	createErr error
}

func (p *recordingProvider) CreateIntent(ctx context.Context, params CreateIntentParams) (*Intent, error) {
	if p.createErr != nil {
		return nil, p.createErr
	}
	return p.StubProvider.CreateIntent(ctx, params)
}

func (p *recordingProvider) CancelIntent(ctx context.Context, intentID string) error {
	p.cancelled = append(p.cancelled, intentID)
	return nil
}

type recorderStub struct {
	topics []string
}

func (r *recorderStub) Record(topic string, payload interface{}) {
	r.topics = append(r.topics, topic)
}

type fixture struct {
	service  *Service
	orders   *fakeOrderRepo
	apps     *fakeAppRepo
	provider *recordingProvider
	recorder *recorderStub
}

// newFixture wires one org/team/spot/application with a 2500 cent fee and an
// onboarded payee.
func newFixture() *fixture {
	fee := int64(2500)
	spot := roster.RosterSpot{TeamID: 7, FeeCents: &fee, Currency: "usd"}
	spot.ID = 3

	app := application.Application{RosterSpotID: 3, ChildID: 2, GuardianID: 10, Status: application.StatusAccepted}
	app.ID = 1

	owner := org.Org{Name: "Riverside FC", PaymentAccountID: "acct_123", ChargesEnabled: true}
	owner.ID = 5

	orders := newFakeOrderRepo()
	apps := &fakeAppRepo{apps: map[uint]application.Application{1: app}}
	spots := &fakeSpotRepo{spots: map[uint]roster.RosterSpot{3: spot}}
	orgs := &fakeOrgRepo{orgs: map[uint]org.Org{5: owner}, teams: map[uint]uint{7: 5}}
	provider := &recordingProvider{StubProvider: NewStubProvider("whsec_test", "http://localhost:8090")}
	recorder := &recorderStub{}

	return &fixture{
		service:  NewService(orders, apps, spots, orgs, provider, 500, recorder, zerolog.Nop()),
		orders:   orders,
		apps:     apps,
		provider: provider,
		recorder: recorder,
	}
}

func TestPlatformFeeCents(t *testing.T) {
	assert.Equal(t, int64(125), PlatformFeeCents(2500, 500))
	assert.Equal(t, int64(50), PlatformFeeCents(999, 500), "49.95 rounds up")
	assert.Equal(t, int64(0), PlatformFeeCents(0, 500))
	assert.Equal(t, int64(2500), PlatformFeeCents(2500, 10000), "full take at 100%")
	assert.Equal(t, int64(1), PlatformFeeCents(100, 50), "0.5 rounds away from zero")
}

func TestCreateIntent(t *testing.T) {
	t.Run("creates order and links intent to application", func(t *testing.T) {
		f := newFixture()

		result, err := f.service.CreateIntent(context.Background(), 1, 10)
		require.NoError(t, err)
		assert.NotEmpty(t, result.ClientSecret)
		assert.Equal(t, int64(2500), result.AmountCents)
		assert.Equal(t, int64(125), result.PlatformFeeCents)

		require.Len(t, f.orders.orders, 1)
		order := f.orders.orders[1]
		assert.Equal(t, OrderRequiresPaymentMethod, order.Status)
		assert.Equal(t, uint(5), order.OrgID)
		assert.Equal(t, int64(125), order.PlatformFeeCents)

		app := f.apps.apps[1]
		require.NotNil(t, app.PaymentStatus)
		assert.Equal(t, application.PaymentPending, *app.PaymentStatus)
		assert.Equal(t, order.PaymentIntentID, app.PaymentIntentID)
		assert.Contains(t, f.recorder.topics, "order.created")
	})

	t.Run("refused for another guardian", func(t *testing.T) {
		f := newFixture()

		_, err := f.service.CreateIntent(context.Background(), 1, 99)
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
		assert.Empty(t, f.orders.orders)
	})

	t.Run("free spot has nothing to pay", func(t *testing.T) {
		f := newFixture()
		spot := roster.RosterSpot{TeamID: 7, Currency: "usd"}
		spot.ID = 3
		f.service.spots.(*fakeSpotRepo).spots[3] = spot

		_, err := f.service.CreateIntent(context.Background(), 1, 10)
		assert.Equal(t, apperr.KindNoFeeRequired, apperr.KindOf(err))
		assert.Empty(t, f.orders.orders)
	})

	t.Run("refused until the org finishes payment onboarding", func(t *testing.T) {
		for name, owner := range map[string]org.Org{
			"no account":       {Name: "Riverside FC"},
			"charges disabled": {Name: "Riverside FC", PaymentAccountID: "acct_123"},
		} {
			t.Run(name, func(t *testing.T) {
				f := newFixture()
				owner.ID = 5
				f.service.orgs.(*fakeOrgRepo).orgs[5] = owner

				_, err := f.service.CreateIntent(context.Background(), 1, 10)
				assert.Equal(t, apperr.KindPayeeNotOnboarded, apperr.KindOf(err))
				assert.Empty(t, f.orders.orders)
			})
		}
	})

	t.Run("cancels the intent when the order cannot be persisted", func(t *testing.T) {
		f := newFixture()
		f.orders.createErr = errors.New("connection reset")

		_, err := f.service.CreateIntent(context.Background(), 1, 10)
		assert.Equal(t, apperr.KindUpstreamFailure, apperr.KindOf(err))
		require.Len(t, f.provider.cancelled, 1, "orphaned intent must be cancelled")

		app := f.apps.apps[1]
		assert.Nil(t, app.PaymentStatus, "failed intent never marks the application")
	})
}

func signedEvent(t *testing.T, p *StubProvider, eventType, intentID string) ([]byte, string) {
	t.Helper()
	body, err := json.Marshal(Event{ID: "evt_1", Type: eventType, PaymentIntentID: intentID})
	require.NoError(t, err)
	return body, p.Sign(body)
}

func TestHandleWebhook(t *testing.T) {
	setup := func(t *testing.T) (*fixture, string) {
		f := newFixture()
		_, err := f.service.CreateIntent(context.Background(), 1, 10)
		require.NoError(t, err)
		return f, f.orders.orders[1].PaymentIntentID
	}

	t.Run("rejects a bad signature without touching state", func(t *testing.T) {
		f, intentID := setup(t)
		body, _ := signedEvent(t, f.provider.StubProvider, EventPaymentSucceeded, intentID)

		err := f.service.HandleWebhook(body, "deadbeef")
		assert.Equal(t, apperr.KindSignatureInvalid, apperr.KindOf(err))
		assert.Equal(t, OrderRequiresPaymentMethod, f.orders.orders[1].Status)
		assert.False(t, f.apps.apps[1].FeePaid)
	})

	t.Run("succeeded settles the order and marks the fee paid", func(t *testing.T) {
		f, intentID := setup(t)
		body, sig := signedEvent(t, f.provider.StubProvider, EventPaymentSucceeded, intentID)

		require.NoError(t, f.service.HandleWebhook(body, sig))
		assert.Equal(t, OrderSucceeded, f.orders.orders[1].Status)

		app := f.apps.apps[1]
		assert.True(t, app.FeePaid)
		require.NotNil(t, app.PaymentStatus)
		assert.Equal(t, application.PaymentPaid, *app.PaymentStatus)
	})

	t.Run("succeeded replay is a no-op", func(t *testing.T) {
		f, intentID := setup(t)
		body, sig := signedEvent(t, f.provider.StubProvider, EventPaymentSucceeded, intentID)

		require.NoError(t, f.service.HandleWebhook(body, sig))
		eventsAfterFirst := len(f.recorder.topics)

		require.NoError(t, f.service.HandleWebhook(body, sig))
		assert.Equal(t, OrderSucceeded, f.orders.orders[1].Status)
		assert.True(t, f.apps.apps[1].FeePaid)
		assert.Len(t, f.recorder.topics, eventsAfterFirst, "replay emits nothing")
	})

	t.Run("failed marks the order failed but never downgrades success", func(t *testing.T) {
		f, intentID := setup(t)

		body, sig := signedEvent(t, f.provider.StubProvider, EventPaymentFailed, intentID)
		require.NoError(t, f.service.HandleWebhook(body, sig))
		assert.Equal(t, OrderFailed, f.orders.orders[1].Status)

		f, intentID = setup(t)
		okBody, okSig := signedEvent(t, f.provider.StubProvider, EventPaymentSucceeded, intentID)
		require.NoError(t, f.service.HandleWebhook(okBody, okSig))
		body, sig = signedEvent(t, f.provider.StubProvider, EventPaymentFailed, intentID)
		require.NoError(t, f.service.HandleWebhook(body, sig))
		assert.Equal(t, OrderSucceeded, f.orders.orders[1].Status)
	})

	t.Run("refund flips the order and application to refunded", func(t *testing.T) {
		f, intentID := setup(t)
		okBody, okSig := signedEvent(t, f.provider.StubProvider, EventPaymentSucceeded, intentID)
		require.NoError(t, f.service.HandleWebhook(okBody, okSig))

		body, sig := signedEvent(t, f.provider.StubProvider, EventChargeRefunded, intentID)
		require.NoError(t, f.service.HandleWebhook(body, sig))

		order := f.orders.orders[1]
		assert.Equal(t, OrderRefunded, order.Status)
		require.NotNil(t, order.RefundedAt)

		app := f.apps.apps[1]
		assert.False(t, app.FeePaid)
		require.NotNil(t, app.PaymentStatus)
		assert.Equal(t, application.PaymentRefunded, *app.PaymentStatus)
	})

	t.Run("unknown event types are acknowledged and ignored", func(t *testing.T) {
		f, intentID := setup(t)
		body, sig := signedEvent(t, f.provider.StubProvider, "customer.created", intentID)

		require.NoError(t, f.service.HandleWebhook(body, sig))
		assert.Equal(t, OrderRequiresPaymentMethod, f.orders.orders[1].Status)
	})

	t.Run("events for unknown intents are ignored", func(t *testing.T) {
		f, _ := setup(t)
		body, sig := signedEvent(t, f.provider.StubProvider, EventPaymentSucceeded, "pi_never_seen")

		require.NoError(t, f.service.HandleWebhook(body, sig))
		assert.Equal(t, OrderRequiresPaymentMethod, f.orders.orders[1].Status)
	})

	t.Run("malformed body with a valid signature is a validation error", func(t *testing.T) {
		f, _ := setup(t)
		body := []byte("{not json")

		err := f.service.HandleWebhook(body, f.provider.Sign(body))
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})
}
