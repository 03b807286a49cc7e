package application

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rosterup/rosterup/internal/apperr"
	"github.com/rosterup/rosterup/internal/roster"
	"github.com/rosterup/rosterup/internal/user"
)

// fakeStore backs all lifecycle fakes with shared in-memory maps.
type fakeStore struct {
	apps     map[uint]Application
	spots    map[uint]roster.RosterSpot
	children map[uint]user.Child
	nextID   uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		apps:     make(map[uint]Application),
		spots:    make(map[uint]roster.RosterSpot),
		children: make(map[uint]user.Child),
		nextID:   1,
	}
}

func (s *fakeStore) addSpot(spot roster.RosterSpot) uint {
	id := s.nextID
	s.nextID++
	spot.ID = id
	if spot.Status == "" {
		spot.Status = roster.StatusOpen
	}
	if spot.Visibility == "" {
		spot.Visibility = roster.VisibilityPublic
	}
	s.spots[id] = spot
	return id
}

func (s *fakeStore) addChild(guardianID uint) uint {
	id := s.nextID
	s.nextID++
	s.children[id] = user.Child{Model: gorm.Model{ID: id}, GuardianID: guardianID, FirstName: "Kid"}
	return id
}

func (s *fakeStore) addApp(app Application) uint {
	id := s.nextID
	s.nextID++
	app.ID = id
	s.apps[id] = app
	return id
}

type fakeAppRepo struct {
	store     *fakeStore
	createErr error
}

func (r *fakeAppRepo) Create(app *Application) error {
	if r.createErr != nil {
		return r.createErr
	}
	app.ID = r.store.nextID
	r.store.nextID++
	r.store.apps[app.ID] = *app
	return nil
}

func (r *fakeAppRepo) GetByID(id uint) (*Application, error) {
	app, ok := r.store.apps[id]
	if !ok {
		return nil, nil
	}
	return &app, nil
}

func (r *fakeAppRepo) Update(app *Application) error {
	r.store.apps[app.ID] = *app
	return nil
}

func (r *fakeAppRepo) FindActiveBySpotAndChild(spotID, childID uint) (*Application, error) {
	for _, app := range r.store.apps {
		if app.RosterSpotID == spotID && app.ChildID == childID && app.Status != StatusWithdrawn {
			match := app
			return &match, nil
		}
	}
	return nil, nil
}

func (r *fakeAppRepo) CountAcceptedForSpot(spotID uint) (int64, error) {
	var count int64
	for _, app := range r.store.apps {
		if app.RosterSpotID == spotID && app.Status == StatusAccepted {
			count++
		}
	}
	return count, nil
}

func (r *fakeAppRepo) GetByPaymentIntentID(intentID string) (*Application, error) {
	for _, app := range r.store.apps {
		if app.PaymentIntentID == intentID {
			match := app
			return &match, nil
		}
	}
	return nil, nil
}

func (r *fakeAppRepo) ListBySpot(spotID uint, status Status, page, limit int) ([]Application, int64, error) {
	var apps []Application
	for _, app := range r.store.apps {
		if app.RosterSpotID == spotID && (status == "" || app.Status == status) {
			apps = append(apps, app)
		}
	}
	return apps, int64(len(apps)), nil
}

func (r *fakeAppRepo) ListByGuardian(guardianID uint) ([]Application, error) {
	var apps []Application
	for _, app := range r.store.apps {
		if app.GuardianID == guardianID {
			apps = append(apps, app)
		}
	}
	return apps, nil
}

func (r *fakeAppRepo) LockSpot(spotID uint) (*roster.RosterSpot, error) {
	spot, ok := r.store.spots[spotID]
	if !ok {
		return nil, nil
	}
	return &spot, nil
}

func (r *fakeAppRepo) WithTransaction(fn func(ApplicationRepository) error) error {
	return fn(r)
}

type fakeSpotRepo struct {
	store *fakeStore
}

func (r *fakeSpotRepo) CreateSpot(spot *roster.RosterSpot) error { return nil }

func (r *fakeSpotRepo) GetSpotByID(id uint) (*roster.RosterSpot, error) {
	spot, ok := r.store.spots[id]
	if !ok {
		return nil, nil
	}
	return &spot, nil
}

func (r *fakeSpotRepo) UpdateSpot(spot *roster.RosterSpot) error {
	r.store.spots[spot.ID] = *spot
	return nil
}

func (r *fakeSpotRepo) SetSpotStatus(id uint, status string) error {
	spot := r.store.spots[id]
	spot.Status = status
	r.store.spots[id] = spot
	return nil
}

func (r *fakeSpotRepo) ListSpots(page, limit int, filters map[string]interface{}) ([]roster.RosterSpot, int64, error) {
	return nil, 0, nil
}

func (r *fakeSpotRepo) ListSpotsByTeam(teamID uint) ([]roster.RosterSpot, error) { return nil, nil }

type fakeUserRepo struct {
	store *fakeStore
}

func (r *fakeUserRepo) GetUserByID(id uint) (*user.User, error)        { return nil, nil }
func (r *fakeUserRepo) GetUserRoles(userID uint) ([]string, error)     { return nil, nil }
func (r *fakeUserRepo) CreateChild(child *user.Child) error            { return nil }
func (r *fakeUserRepo) UpdateChild(child *user.Child) error            { return nil }
func (r *fakeUserRepo) ListChildrenByGuardian(id uint) ([]user.Child, error) {
	return nil, nil
}

func (r *fakeUserRepo) GetChildByID(id uint) (*user.Child, error) {
	child, ok := r.store.children[id]
	if !ok {
		return nil, nil
	}
	return &child, nil
}

type fakeRecorder struct {
	topics []string
}

func (r *fakeRecorder) Record(topic string, payload interface{}) {
	r.topics = append(r.topics, topic)
}

func newTestLifecycle(store *fakeStore) (*Lifecycle, *fakeRecorder) {
	recorder := &fakeRecorder{}
	l := NewLifecycle(&fakeAppRepo{store: store}, &fakeSpotRepo{store: store}, &fakeUserRepo{store: store}, recorder, zerolog.Nop())
	return l, recorder
}

func TestSubmit(t *testing.T) {
	t.Run("creates submitted application and marks payment not required for free spots", func(t *testing.T) {
		store := newFakeStore()
		spotID := store.addSpot(roster.RosterSpot{TeamID: 1})
		childID := store.addChild(10)
		l, recorder := newTestLifecycle(store)

		app, err := l.Submit(10, SubmitApplicationRequest{RosterSpotID: spotID, ChildID: childID, Note: "goalie"})
		require.NoError(t, err)
		assert.Equal(t, StatusSubmitted, app.Status)
		require.NotNil(t, app.PaymentStatus)
		assert.Equal(t, PaymentNotRequired, *app.PaymentStatus)
		assert.Contains(t, recorder.topics, "application.submitted")
	})

	t.Run("leaves payment status unset for fee-bearing spots", func(t *testing.T) {
		store := newFakeStore()
		fee := int64(2500)
		spotID := store.addSpot(roster.RosterSpot{TeamID: 1, FeeCents: &fee})
		childID := store.addChild(10)
		l, _ := newTestLifecycle(store)

		app, err := l.Submit(10, SubmitApplicationRequest{RosterSpotID: spotID, ChildID: childID})
		require.NoError(t, err)
		assert.Nil(t, app.PaymentStatus)
	})

	t.Run("rejects a child belonging to another guardian", func(t *testing.T) {
		store := newFakeStore()
		spotID := store.addSpot(roster.RosterSpot{TeamID: 1})
		childID := store.addChild(99)
		l, _ := newTestLifecycle(store)

		_, err := l.Submit(10, SubmitApplicationRequest{RosterSpotID: spotID, ChildID: childID})
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	})

	t.Run("rejects closed spots", func(t *testing.T) {
		store := newFakeStore()
		spotID := store.addSpot(roster.RosterSpot{TeamID: 1, Status: roster.StatusClosed})
		childID := store.addChild(10)
		l, _ := newTestLifecycle(store)

		_, err := l.Submit(10, SubmitApplicationRequest{RosterSpotID: spotID, ChildID: childID})
		assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
	})

	t.Run("rejects invite-only spots", func(t *testing.T) {
		store := newFakeStore()
		spotID := store.addSpot(roster.RosterSpot{TeamID: 1, Visibility: roster.VisibilityInvite})
		childID := store.addChild(10)
		l, _ := newTestLifecycle(store)

		_, err := l.Submit(10, SubmitApplicationRequest{RosterSpotID: spotID, ChildID: childID})
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	})

	t.Run("rejects when the deadline has passed", func(t *testing.T) {
		store := newFakeStore()
		past := time.Now().Add(-time.Hour)
		spotID := store.addSpot(roster.RosterSpot{TeamID: 1, Deadline: &past})
		childID := store.addChild(10)
		l, _ := newTestLifecycle(store)

		_, err := l.Submit(10, SubmitApplicationRequest{RosterSpotID: spotID, ChildID: childID})
		assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
	})

	t.Run("rejects duplicate non-withdrawn application for same spot and child", func(t *testing.T) {
		store := newFakeStore()
		spotID := store.addSpot(roster.RosterSpot{TeamID: 1})
		childID := store.addChild(10)
		store.addApp(Application{RosterSpotID: spotID, ChildID: childID, GuardianID: 10, Status: StatusSubmitted})
		l, _ := newTestLifecycle(store)

		_, err := l.Submit(10, SubmitApplicationRequest{RosterSpotID: spotID, ChildID: childID})
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	t.Run("a withdrawn application does not block re-applying", func(t *testing.T) {
		store := newFakeStore()
		spotID := store.addSpot(roster.RosterSpot{TeamID: 1})
		childID := store.addChild(10)
		store.addApp(Application{RosterSpotID: spotID, ChildID: childID, GuardianID: 10, Status: StatusWithdrawn})
		l, _ := newTestLifecycle(store)

		app, err := l.Submit(10, SubmitApplicationRequest{RosterSpotID: spotID, ChildID: childID})
		require.NoError(t, err)
		assert.Equal(t, StatusSubmitted, app.Status)
	})
}

func TestTransitionEdges(t *testing.T) {
	store := newFakeStore()
	spotID := store.addSpot(roster.RosterSpot{TeamID: 1})
	l, _ := newTestLifecycle(store)

	t.Run("submitted to in_review", func(t *testing.T) {
		id := store.addApp(Application{RosterSpotID: spotID, ChildID: 1, GuardianID: 10, Status: StatusSubmitted})
		app, err := l.Transition(id, StatusInReview)
		require.NoError(t, err)
		assert.Equal(t, StatusInReview, app.Status)
	})

	t.Run("terminal states refuse all transitions", func(t *testing.T) {
		for _, terminal := range []Status{StatusRejected, StatusWithdrawn} {
			id := store.addApp(Application{RosterSpotID: spotID, ChildID: 1, GuardianID: 10, Status: terminal})
			_, err := l.Transition(id, StatusInReview)
			assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err), "from %s", terminal)
		}
	})

	t.Run("missing edges are refused", func(t *testing.T) {
		id := store.addApp(Application{RosterSpotID: spotID, ChildID: 1, GuardianID: 10, Status: StatusSubmitted})
		_, err := l.Transition(id, StatusWaitlisted)
		assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err), "submitted cannot jump to waitlisted")
	})

	t.Run("unknown target status", func(t *testing.T) {
		id := store.addApp(Application{RosterSpotID: spotID, ChildID: 1, GuardianID: 10, Status: StatusSubmitted})
		_, err := l.Transition(id, Status("bogus"))
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	})

	t.Run("unknown application", func(t *testing.T) {
		_, err := l.Transition(99999, StatusInReview)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestAcceptCapacityGuard(t *testing.T) {
	t.Run("denied accept leaves the application untouched", func(t *testing.T) {
		store := newFakeStore()
		one := 1
		spotID := store.addSpot(roster.RosterSpot{TeamID: 1, Capacity: &one})
		store.addApp(Application{RosterSpotID: spotID, ChildID: 1, GuardianID: 10, Status: StatusAccepted})
		id := store.addApp(Application{RosterSpotID: spotID, ChildID: 2, GuardianID: 11, Status: StatusSubmitted})
		l, _ := newTestLifecycle(store)

		_, err := l.Transition(id, StatusAccepted)
		assert.Equal(t, apperr.KindCapacityExceeded, apperr.KindOf(err))
		assert.Equal(t, StatusSubmitted, store.apps[id].Status)
	})

	t.Run("nil capacity accepts without limit", func(t *testing.T) {
		store := newFakeStore()
		spotID := store.addSpot(roster.RosterSpot{TeamID: 1})
		for i := 0; i < 5; i++ {
			store.addApp(Application{RosterSpotID: spotID, ChildID: uint(100 + i), GuardianID: 10, Status: StatusAccepted})
		}
		id := store.addApp(Application{RosterSpotID: spotID, ChildID: 2, GuardianID: 11, Status: StatusSubmitted})
		l, _ := newTestLifecycle(store)

		app, err := l.Transition(id, StatusAccepted)
		require.NoError(t, err)
		assert.Equal(t, StatusAccepted, app.Status)
	})

	t.Run("zero capacity never accepts", func(t *testing.T) {
		store := newFakeStore()
		zero := 0
		spotID := store.addSpot(roster.RosterSpot{TeamID: 1, Capacity: &zero})
		id := store.addApp(Application{RosterSpotID: spotID, ChildID: 2, GuardianID: 11, Status: StatusSubmitted})
		l, _ := newTestLifecycle(store)

		_, err := l.Transition(id, StatusAccepted)
		assert.Equal(t, apperr.KindCapacityExceeded, apperr.KindOf(err))
	})
}

// Full capacity-one walk: accept A, B hits the cap, B waitlists, A withdraws,
// then B can be accepted off the waitlist.
func TestCapacityOneScenario(t *testing.T) {
	store := newFakeStore()
	one := 1
	spotID := store.addSpot(roster.RosterSpot{TeamID: 1, Capacity: &one})
	aID := store.addApp(Application{RosterSpotID: spotID, ChildID: 1, GuardianID: 10, Status: StatusSubmitted})
	bID := store.addApp(Application{RosterSpotID: spotID, ChildID: 2, GuardianID: 11, Status: StatusSubmitted})
	l, _ := newTestLifecycle(store)

	_, err := l.Transition(aID, StatusAccepted)
	require.NoError(t, err)

	_, err = l.Transition(bID, StatusAccepted)
	assert.Equal(t, apperr.KindCapacityExceeded, apperr.KindOf(err))

	_, err = l.Transition(bID, StatusInReview)
	require.NoError(t, err)
	_, err = l.Transition(bID, StatusWaitlisted)
	require.NoError(t, err)

	_, err = l.Withdraw(aID, 10)
	require.NoError(t, err)

	b, err := l.Transition(bID, StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, b.Status)
}

func TestWithdraw(t *testing.T) {
	t.Run("allowed from every non-terminal state", func(t *testing.T) {
		for _, from := range []Status{StatusDraft, StatusSubmitted, StatusInReview, StatusWaitlisted, StatusAccepted} {
			store := newFakeStore()
			spotID := store.addSpot(roster.RosterSpot{TeamID: 1})
			id := store.addApp(Application{RosterSpotID: spotID, ChildID: 1, GuardianID: 10, Status: from})
			l, _ := newTestLifecycle(store)

			app, err := l.Withdraw(id, 10)
			require.NoError(t, err, "from %s", from)
			assert.Equal(t, StatusWithdrawn, app.Status)
		}
	})

	t.Run("refused for another guardian", func(t *testing.T) {
		store := newFakeStore()
		spotID := store.addSpot(roster.RosterSpot{TeamID: 1})
		id := store.addApp(Application{RosterSpotID: spotID, ChildID: 1, GuardianID: 10, Status: StatusSubmitted})
		l, _ := newTestLifecycle(store)

		_, err := l.Withdraw(id, 99)
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	})

	t.Run("refused from terminal states", func(t *testing.T) {
		store := newFakeStore()
		spotID := store.addSpot(roster.RosterSpot{TeamID: 1})
		id := store.addApp(Application{RosterSpotID: spotID, ChildID: 1, GuardianID: 10, Status: StatusRejected})
		l, _ := newTestLifecycle(store)

		_, err := l.Withdraw(id, 10)
		assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
	})
}

func TestBulkTransitionBestEffort(t *testing.T) {
	store := newFakeStore()
	spotID := store.addSpot(roster.RosterSpot{TeamID: 1})
	okID := store.addApp(Application{RosterSpotID: spotID, ChildID: 1, GuardianID: 10, Status: StatusSubmitted})
	terminalID := store.addApp(Application{RosterSpotID: spotID, ChildID: 2, GuardianID: 10, Status: StatusRejected})
	deniedID := store.addApp(Application{RosterSpotID: spotID, ChildID: 3, GuardianID: 10, Status: StatusSubmitted})
	l, _ := newTestLifecycle(store)

	results := l.BulkTransition([]uint{okID, terminalID, 4242, deniedID}, StatusInReview, func(app *Application) error {
		if app.ID == deniedID {
			return apperr.New(apperr.KindForbidden, "You do not manage this team")
		}
		return nil
	})

	require.Len(t, results, 4)
	assert.True(t, results[0].OK)
	assert.False(t, results[1].OK)
	assert.False(t, results[2].OK)
	assert.Equal(t, "Application not found", results[2].Error)
	assert.False(t, results[3].OK)

	// The failure partway through did not roll back the first success.
	assert.Equal(t, StatusInReview, store.apps[okID].Status)
	assert.Equal(t, StatusSubmitted, store.apps[deniedID].Status)
}

func TestKnownStatus(t *testing.T) {
	assert.True(t, KnownStatus(StatusWaitlisted))
	assert.False(t, KnownStatus(Status("")))
	assert.False(t, KnownStatus(Status("pending")))
}

var errBoom = errors.New("boom")

func TestSubmitCreateFailureSurfacesUpstream(t *testing.T) {
	store := newFakeStore()
	spotID := store.addSpot(roster.RosterSpot{TeamID: 1})
	childID := store.addChild(10)

	recorder := &fakeRecorder{}
	repo := &fakeAppRepo{store: store, createErr: errBoom}
	l := NewLifecycle(repo, &fakeSpotRepo{store: store}, &fakeUserRepo{store: store}, recorder, zerolog.Nop())

	_, err := l.Submit(10, SubmitApplicationRequest{RosterSpotID: spotID, ChildID: childID})
	assert.Equal(t, apperr.KindUpstreamFailure, apperr.KindOf(err))
	assert.Empty(t, recorder.topics, "no event for a failed submit")
}
