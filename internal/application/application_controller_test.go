package application

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterup/rosterup/internal/middleware"
	"github.com/rosterup/rosterup/internal/org"
	"github.com/rosterup/rosterup/internal/roster"
)

// managerOrgRepo treats every user as a manager of every team, so the
// authorization helper always passes and the status guard under test is the
// only thing that can refuse.
type managerOrgRepo struct{}

func (r *managerOrgRepo) CreateOrg(o *org.Org) error                         { return nil }
func (r *managerOrgRepo) GetOrgByID(id uint) (*org.Org, error)               { return nil, nil }
func (r *managerOrgRepo) GetOrgBySlug(slug string) (*org.Org, error)         { return nil, nil }
func (r *managerOrgRepo) UpdateOrg(o *org.Org) error                         { return nil }
func (r *managerOrgRepo) AddMember(member *org.OrgMember) error              { return nil }
func (r *managerOrgRepo) GetMember(orgID, userID uint) (*org.OrgMember, error) { return nil, nil }
func (r *managerOrgRepo) IsOrgManager(orgID, userID uint) (bool, error)      { return true, nil }
func (r *managerOrgRepo) CreateTeam(team *org.Team) error                    { return nil }
func (r *managerOrgRepo) GetTeamByID(id uint) (*org.Team, error)             { return nil, nil }
func (r *managerOrgRepo) ListTeamsByOrg(orgID uint) ([]org.Team, error)      { return nil, nil }
func (r *managerOrgRepo) GetOrgForTeam(teamID uint) (*org.Org, error)        { return nil, nil }
func (r *managerOrgRepo) IsTeamManager(teamID, userID uint) (bool, error)    { return true, nil }
func (r *managerOrgRepo) CreateSeason(season *org.Season) error              { return nil }
func (r *managerOrgRepo) ListSeasonsByOrg(orgID uint) ([]org.Season, error)  { return nil, nil }
func (r *managerOrgRepo) CreatePosition(position *org.Position) error        { return nil }
func (r *managerOrgRepo) ListPositionsByOrg(orgID uint) ([]org.Position, error) {
	return nil, nil
}

func newTransitionRouter(store *fakeStore, actingUserID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)

	repo := &fakeAppRepo{store: store}
	lifecycle := NewLifecycle(repo, &fakeSpotRepo{store: store}, &fakeUserRepo{store: store}, &fakeRecorder{}, zerolog.Nop())
	controller := NewApplicationController(lifecycle, repo, &fakeSpotRepo{store: store}, &managerOrgRepo{})

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.AuthUserIDKey, actingUserID)
		c.Next()
	})
	r.POST("/applications/:application_id/transition", controller.Transition)
	r.POST("/applications/bulk-transition", controller.BulkTransition)
	return r
}

// Withdrawal belongs to the guardian's own endpoint; a team manager must not
// reach it through the coach transition surface even though the state machine
// has the edge.
func TestTransitionEndpointRefusesWithdrawn(t *testing.T) {
	store := newFakeStore()
	spotID := store.addSpot(roster.RosterSpot{TeamID: 1})
	appID := store.addApp(Application{RosterSpotID: spotID, ChildID: 1, GuardianID: 10, Status: StatusSubmitted})
	router := newTransitionRouter(store, 777)

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/applications/%d/transition", appID), strings.NewReader(`{"status":"withdrawn"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, StatusSubmitted, store.apps[appID].Status, "application must stay untouched")
}

func TestTransitionEndpointStillAllowsCoachEdges(t *testing.T) {
	store := newFakeStore()
	spotID := store.addSpot(roster.RosterSpot{TeamID: 1})
	appID := store.addApp(Application{RosterSpotID: spotID, ChildID: 1, GuardianID: 10, Status: StatusSubmitted})
	router := newTransitionRouter(store, 777)

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/applications/%d/transition", appID), strings.NewReader(`{"status":"in_review"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, StatusInReview, store.apps[appID].Status)
}

func TestBulkTransitionEndpointRefusesWithdrawn(t *testing.T) {
	store := newFakeStore()
	spotID := store.addSpot(roster.RosterSpot{TeamID: 1})
	appID := store.addApp(Application{RosterSpotID: spotID, ChildID: 1, GuardianID: 10, Status: StatusSubmitted})
	router := newTransitionRouter(store, 777)

	body := fmt.Sprintf(`{"application_ids":[%d],"status":"withdrawn"}`, appID)
	req := httptest.NewRequest(http.MethodPost, "/applications/bulk-transition", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, StatusSubmitted, store.apps[appID].Status)
}
