package offer

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rosterup/rosterup/internal/apperr"
	"github.com/rosterup/rosterup/internal/middleware"
	"github.com/rosterup/rosterup/internal/org"
	"github.com/rosterup/rosterup/internal/roster"
	"github.com/rosterup/rosterup/pkg/responses"
)

// OfferController handles offer HTTP requests.
type OfferController struct {
	service *Service
	repo    OfferRepository
	spots   roster.RosterRepository
	orgs    org.OrgRepository
}

func NewOfferController(service *Service, repo OfferRepository, spots roster.RosterRepository, orgs org.OrgRepository) *OfferController {
	return &OfferController{
		service: service,
		repo:    repo,
		spots:   spots,
		orgs:    orgs,
	}
}

func sendAppError(c *gin.Context, err error) {
	responses.SendError(c, apperr.StatusOf(err), apperr.MessageOf(err))
}

// MakeOffer godoc
// @Summary Make an offer
// @Description Extends a time-boxed offer to an accepted application. Supersedes any still-pending offer.
// @Tags Offers
// @Accept json
// @Produce json
// @Param application_id path int true "Application ID"
// @Param offer body MakeOfferRequest false "Expiry override (default 7 days)"
// @Success 201 {object} responses.SuccessResponse
// @Failure 422 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /applications/{application_id}/offers [post]
func (oc *OfferController) MakeOffer(c *gin.Context) {
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

	var req MakeOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		responses.BadRequest(c, "Invalid input: "+err.Error())
		return
	}

	app, err := oc.service.apps.GetByID(uint(appID))
	if err != nil {
		responses.InternalServerError(c, "Failed to fetch application")
		return
	}
	if app == nil {
		responses.NotFound(c, "Application")
		return
	}

	spot, err := oc.spots.GetSpotByID(app.RosterSpotID)
	if err != nil || spot == nil {
		responses.InternalServerError(c, "Failed to fetch roster spot")
		return
	}
	ok, err := oc.orgs.IsTeamManager(spot.TeamID, userID)
	if err != nil {
		responses.InternalServerError(c, "Failed to verify team access")
		return
	}
	if !ok {
		responses.Forbidden(c, "You do not manage this team")
		return
	}

	o, err := oc.service.MakeOffer(uint(appID), req.ExpiresInDays)
	if err != nil {
		sendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Offer created", NewOfferResponse(*o, time.Now()))
}

// ListMine godoc
// @Summary List my offers
// @Description Guardian view; each offer carries its derived effective status.
// @Tags Offers
// @Produce json
// @Success 200 {object} responses.SuccessResponse
// @Security BearerAuth
// @Router /users/me/offers [get]
func (oc *OfferController) ListMine(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}

	offers, err := oc.repo.ListByGuardian(userID)
	if err != nil {
		responses.InternalServerError(c, "Failed to fetch offers")
		return
	}

	now := time.Now()
	out := make([]OfferResponse, 0, len(offers))
	for _, o := range offers {
		out = append(out, NewOfferResponse(o, now))
	}
	responses.SendSuccess(c, http.StatusOK, "", out)
}

// Respond godoc
// @Summary Accept or decline an offer
// @Tags Offers
// @Produce json
// @Param offer_id path int true "Offer ID"
// @Param action path string true "Action: accept or decline"
// @Success 200 {object} responses.SuccessResponse
// @Failure 422 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /offers/{offer_id}/{action} [post]
func (oc *OfferController) Respond(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}
	offerID, err := strconv.ParseUint(c.Param("offer_id"), 10, 64)
	if err != nil || offerID == 0 {
		responses.BadRequest(c, "Invalid offer_id")
		return
	}

	var accept bool
	switch c.Param("action") {
	case "accept":
		accept = true
	case "decline":
		accept = false
	default:
		responses.BadRequest(c, "Action must be 'accept' or 'decline'")
		return
	}

	o, err := oc.service.Respond(uint(offerID), userID, accept)
	if err != nil {
		sendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Offer "+o.Status, NewOfferResponse(*o, time.Now()))
}
