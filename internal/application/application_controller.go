package application

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rosterup/rosterup/internal/apperr"
	"github.com/rosterup/rosterup/internal/middleware"
	"github.com/rosterup/rosterup/internal/org"
	"github.com/rosterup/rosterup/internal/roster"
	"github.com/rosterup/rosterup/pkg/responses"
)

// ApplicationController handles application HTTP requests.
type ApplicationController struct {
	lifecycle *Lifecycle
	repo      ApplicationRepository
	spots     roster.RosterRepository
	orgs      org.OrgRepository
}

func NewApplicationController(lifecycle *Lifecycle, repo ApplicationRepository, spots roster.RosterRepository, orgs org.OrgRepository) *ApplicationController {
	return &ApplicationController{
		lifecycle: lifecycle,
		repo:      repo,
		spots:     spots,
		orgs:      orgs,
	}
}

func sendAppError(c *gin.Context, err error) {
	responses.SendError(c, apperr.StatusOf(err), apperr.MessageOf(err))
}

// managerOf checks that the acting user manages the team owning the spot.
func (ac *ApplicationController) managerOf(spotID, userID uint) error {
	spot, err := ac.spots.GetSpotByID(spotID)
	if err != nil {
		return apperr.Wrap(apperr.KindUpstreamFailure, "roster spot lookup failed", err)
	}
	if spot == nil {
		return apperr.New(apperr.KindNotFound, "Roster spot not found")
	}
	ok, err := ac.orgs.IsTeamManager(spot.TeamID, userID)
	if err != nil {
		return apperr.Wrap(apperr.KindUpstreamFailure, "team access check failed", err)
	}
	if !ok {
		return apperr.New(apperr.KindForbidden, "You do not manage this team")
	}
	return nil
}

// Submit godoc
// @Summary Submit an application
// @Description Applies a child to an open, public roster spot. One non-withdrawn application per (spot, child).
// @Tags Applications
// @Accept json
// @Produce json
// @Param application body SubmitApplicationRequest true "Application details"
// @Success 201 {object} responses.SuccessResponse
// @Failure 409 {object} responses.ErrorResponse
// @Failure 422 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /applications [post]
func (ac *ApplicationController) Submit(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}

	var req SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, "Invalid input: "+err.Error())
		return
	}

	app, err := ac.lifecycle.Submit(userID, req)
	if err != nil {
		sendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Application submitted", app)
}

// ListMine godoc
// @Summary List my applications
// @Tags Applications
// @Produce json
// @Success 200 {object} responses.SuccessResponse
// @Security BearerAuth
// @Router /users/me/applications [get]
func (ac *ApplicationController) ListMine(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}

	apps, err := ac.repo.ListByGuardian(userID)
	if err != nil {
		responses.InternalServerError(c, "Failed to fetch applications")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", apps)
}

// Withdraw godoc
// @Summary Withdraw my application
// @Description Guardian-initiated; allowed from any non-terminal status.
// @Tags Applications
// @Produce json
// @Param application_id path int true "Application ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 422 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /applications/{application_id}/withdraw [post]
func (ac *ApplicationController) Withdraw(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}
	appID, err := strconv.ParseUint(c.Param("application_id"), 10, 64)
	if err != nil || appID == 0 {
		responses.BadRequest(c, "Invalid application_id")
		return
	}

	app, err := ac.lifecycle.Withdraw(uint(appID), userID)
	if err != nil {
		sendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Application withdrawn", app)
}

// ListForSpot godoc
// @Summary List applications for a roster spot
// @Description Coach view with optional status filter and pagination.
// @Tags Applications
// @Produce json
// @Param spot_id path int true "Spot ID"
// @Param status query string false "Status filter"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} responses.PaginatedResponse
// @Security BearerAuth
// @Router /roster-spots/{spot_id}/applications [get]
func (ac *ApplicationController) ListForSpot(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}
	spotID, err := strconv.ParseUint(c.Param("spot_id"), 10, 64)
	if err != nil || spotID == 0 {
		responses.BadRequest(c, "Invalid spot_id")
		return
	}
	if err := ac.managerOf(uint(spotID), userID); err != nil {
		sendAppError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	status := Status(c.Query("status"))
	if status != "" && !KnownStatus(status) {
		responses.BadRequest(c, "Unknown status filter")
		return
	}

	apps, total, err := ac.repo.ListBySpot(uint(spotID), status, page, limit)
	if err != nil {
		responses.InternalServerError(c, "Failed to fetch applications")
		return
	}
	responses.SendPaginated(c, http.StatusOK, "", apps, total, page, limit)
}

// Transition godoc
// @Summary Transition an application
// @Description Coach-initiated status change. Acceptances are capacity-guarded. Withdrawal is guardian-only and refused here.
// @Tags Applications
// @Accept json
// @Produce json
// @Param application_id path int true "Application ID"
// @Param transition body TransitionRequest true "Target status"
// @Success 200 {object} responses.SuccessResponse
// @Failure 422 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /applications/{application_id}/transition [post]
func (ac *ApplicationController) Transition(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}
	appID, err := strconv.ParseUint(c.Param("application_id"), 10, 64)
	if err != nil || appID == 0 {
		responses.BadRequest(c, "Invalid application_id")
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, "Invalid input: "+err.Error())
		return
	}
	if req.Status == StatusWithdrawn {
		responses.Forbidden(c, "Withdrawal is reserved for the applying guardian")
		return
	}

	app, err := ac.repo.GetByID(uint(appID))
	if err != nil {
		responses.InternalServerError(c, "Failed to fetch application")
		return
	}
	if app == nil {
		responses.NotFound(c, "Application")
		return
	}
	if err := ac.managerOf(app.RosterSpotID, userID); err != nil {
		sendAppError(c, err)
		return
	}

	updated, err := ac.lifecycle.Transition(uint(appID), req.Status)
	if err != nil {
		sendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Application updated", updated)
}

// BulkTransition godoc
// @Summary Transition multiple applications
// @Description Best effort: each application is attempted independently and failures do not roll back prior successes.
// @Tags Applications
// @Accept json
// @Produce json
// @Param transition body BulkTransitionRequest true "Application ids and target status"
// @Success 200 {object} responses.SuccessResponse
// @Security BearerAuth
// @Router /applications/bulk-transition [post]
func (ac *ApplicationController) BulkTransition(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}

	var req BulkTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, "Invalid input: "+err.Error())
		return
	}
	if req.Status == StatusWithdrawn {
		responses.Forbidden(c, "Withdrawal is reserved for the applying guardian")
		return
	}

	results := ac.lifecycle.BulkTransition(req.ApplicationIDs, req.Status, func(app *Application) error {
		return ac.managerOf(app.RosterSpotID, userID)
	})
	responses.SendSuccess(c, http.StatusOK, "Bulk transition processed", results)
}
