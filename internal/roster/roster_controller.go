package roster

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rosterup/rosterup/internal/middleware"
	"github.com/rosterup/rosterup/internal/org"
	"github.com/rosterup/rosterup/pkg/responses"
)

// RosterController handles roster spot HTTP requests.
type RosterController struct {
	repo RosterRepository
	orgs org.OrgRepository
}

func NewRosterController(repo RosterRepository, orgs org.OrgRepository) *RosterController {
	return &RosterController{repo: repo, orgs: orgs}
}

type CreateSpotRequest struct {
	TeamID      uint       `json:"team_id" binding:"required"`
	SeasonID    *uint      `json:"season_id"`
	PositionID  *uint      `json:"position_id"`
	Title       string     `json:"title" binding:"required,min=3,max=160"`
	Description string     `json:"description" binding:"max=4000"`
	MinAge      *int       `json:"min_age" binding:"omitempty,gte=0"`
	MaxAge      *int       `json:"max_age" binding:"omitempty,gte=0"`
	MinGrade    *int       `json:"min_grade" binding:"omitempty,gte=0,lte=12"`
	MaxGrade    *int       `json:"max_grade" binding:"omitempty,gte=0,lte=12"`
	Capacity    *int       `json:"capacity" binding:"omitempty,gte=0"`
	Deadline    *time.Time `json:"deadline"`
	Visibility  string     `json:"visibility" binding:"omitempty,oneof=public invite"`
	FeeCents    *int64     `json:"fee_cents" binding:"omitempty,gte=0"`
	Currency    string     `json:"currency" binding:"omitempty,len=3"`
}

type UpdateSpotRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=3,max=160"`
	Description *string    `json:"description" binding:"omitempty,max=4000"`
	MinAge      *int       `json:"min_age" binding:"omitempty,gte=0"`
	MaxAge      *int       `json:"max_age" binding:"omitempty,gte=0"`
	MinGrade    *int       `json:"min_grade" binding:"omitempty,gte=0,lte=12"`
	MaxGrade    *int       `json:"max_grade" binding:"omitempty,gte=0,lte=12"`
	Capacity    *int       `json:"capacity" binding:"omitempty,gte=0"`
	Deadline    *time.Time `json:"deadline"`
	Visibility  *string    `json:"visibility" binding:"omitempty,oneof=public invite"`
	FeeCents    *int64     `json:"fee_cents" binding:"omitempty,gte=0"`
}

func (rc *RosterController) requireTeamManager(c *gin.Context, teamID uint) (uint, bool) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return 0, false
	}
	ok, err := rc.orgs.IsTeamManager(teamID, userID)
	if err != nil {
		responses.InternalServerError(c, "Failed to verify team access")
		return 0, false
	}
	if !ok {
		responses.Forbidden(c, "You do not manage this team")
		return 0, false
	}
	return userID, true
}

func (rc *RosterController) spotFromParam(c *gin.Context) (*RosterSpot, bool) {
	id, err := strconv.ParseUint(c.Param("spot_id"), 10, 64)
	if err != nil || id == 0 {
		responses.BadRequest(c, "Invalid spot_id")
		return nil, false
	}
	spot, err := rc.repo.GetSpotByID(uint(id))
	if err != nil {
		responses.InternalServerError(c, "Failed to fetch roster spot")
		return nil, false
	}
	if spot == nil {
		responses.NotFound(c, "Roster spot")
		return nil, false
	}
	return spot, true
}

// CreateSpot godoc
// @Summary Create a roster spot
// @Description Posts a recruitable opening on a team. Requires team management rights.
// @Tags RosterSpots
// @Accept json
// @Produce json
// @Param spot body CreateSpotRequest true "Spot details"
// @Success 201 {object} responses.SuccessResponse
// @Failure 403 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /roster-spots [post]
func (rc *RosterController) CreateSpot(c *gin.Context) {
	var req CreateSpotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, "Invalid input: "+err.Error())
		return
	}

	if _, ok := rc.requireTeamManager(c, req.TeamID); !ok {
		return
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = VisibilityPublic
	}
	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	spot := &RosterSpot{
		TeamID:      req.TeamID,
		SeasonID:    req.SeasonID,
		PositionID:  req.PositionID,
		Title:       req.Title,
		Description: req.Description,
		MinAge:      req.MinAge,
		MaxAge:      req.MaxAge,
		MinGrade:    req.MinGrade,
		MaxGrade:    req.MaxGrade,
		Capacity:    req.Capacity,
		Deadline:    req.Deadline,
		Visibility:  visibility,
		Status:      StatusOpen,
		FeeCents:    req.FeeCents,
		Currency:    currency,
	}
	if err := rc.repo.CreateSpot(spot); err != nil {
		responses.InternalServerError(c, "Failed to create roster spot")
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Roster spot created", spot)
}

// UpdateSpot godoc
// @Summary Update a roster spot
// @Tags RosterSpots
// @Accept json
// @Produce json
// @Param spot_id path int true "Spot ID"
// @Param spot body UpdateSpotRequest true "Fields to update"
// @Success 200 {object} responses.SuccessResponse
// @Security BearerAuth
// @Router /roster-spots/{spot_id} [put]
func (rc *RosterController) UpdateSpot(c *gin.Context) {
	spot, ok := rc.spotFromParam(c)
	if !ok {
		return
	}
	if _, ok := rc.requireTeamManager(c, spot.TeamID); !ok {
		return
	}

	var req UpdateSpotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, "Invalid input: "+err.Error())
		return
	}

	if req.Title != nil {
		spot.Title = *req.Title
	}
	if req.Description != nil {
		spot.Description = *req.Description
	}
	if req.MinAge != nil {
		spot.MinAge = req.MinAge
	}
	if req.MaxAge != nil {
		spot.MaxAge = req.MaxAge
	}
	if req.MinGrade != nil {
		spot.MinGrade = req.MinGrade
	}
	if req.MaxGrade != nil {
		spot.MaxGrade = req.MaxGrade
	}
	if req.Capacity != nil {
		spot.Capacity = req.Capacity
	}
	if req.Deadline != nil {
		spot.Deadline = req.Deadline
	}
	if req.Visibility != nil {
		spot.Visibility = *req.Visibility
	}
	if req.FeeCents != nil {
		spot.FeeCents = req.FeeCents
	}

	if err := rc.repo.UpdateSpot(spot); err != nil {
		responses.InternalServerError(c, "Failed to update roster spot")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Roster spot updated", spot)
}

// SetSpotStatus godoc
// @Summary Open or close a roster spot
// @Tags RosterSpots
// @Produce json
// @Param spot_id path int true "Spot ID"
// @Param action path string true "Action: open or close"
// @Success 200 {object} responses.SuccessResponse
// @Security BearerAuth
// @Router /roster-spots/{spot_id}/{action} [post]
func (rc *RosterController) SetSpotStatus(c *gin.Context) {
	spot, ok := rc.spotFromParam(c)
	if !ok {
		return
	}
	if _, ok := rc.requireTeamManager(c, spot.TeamID); !ok {
		return
	}

	var status string
	switch c.Param("action") {
	case "open":
		status = StatusOpen
	case "close":
		status = StatusClosed
	default:
		responses.BadRequest(c, "Action must be 'open' or 'close'")
		return
	}

	if err := rc.repo.SetSpotStatus(spot.ID, status); err != nil {
		responses.InternalServerError(c, "Failed to update roster spot status")
		return
	}
	spot.Status = status
	responses.SendSuccess(c, http.StatusOK, "Roster spot "+status, spot)
}

// GetSpot godoc
// @Summary Get a roster spot
// @Tags RosterSpots
// @Produce json
// @Param spot_id path int true "Spot ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /roster-spots/{spot_id} [get]
func (rc *RosterController) GetSpot(c *gin.Context) {
	spot, ok := rc.spotFromParam(c)
	if !ok {
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", spot)
}

// BrowseSpots godoc
// @Summary Browse public roster spots
// @Description Lists open, public roster spots with filters and pagination.
// @Tags RosterSpots
// @Produce json
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Param team_id query int false "Filter by team"
// @Param season_id query int false "Filter by season"
// @Param q query string false "Title search"
// @Success 200 {object} responses.PaginatedResponse
// @Router /roster-spots [get]
func (rc *RosterController) BrowseSpots(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	filters := map[string]interface{}{
		"status":     StatusOpen,
		"visibility": VisibilityPublic,
	}
	if teamID := c.Query("team_id"); teamID != "" {
		filters["team_id"] = teamID
	}
	if seasonID := c.Query("season_id"); seasonID != "" {
		filters["season_id"] = seasonID
	}
	if q := c.Query("q"); q != "" {
		filters["q"] = q
	}

	spots, total, err := rc.repo.ListSpots(page, limit, filters)
	if err != nil {
		responses.InternalServerError(c, "Failed to fetch roster spots")
		return
	}
	responses.SendPaginated(c, http.StatusOK, "", spots, total, page, limit)
}

// ListTeamSpots godoc
// @Summary List a team's roster spots
// @Description Coach view: includes closed and invite-only spots.
// @Tags RosterSpots
// @Produce json
// @Param team_id path int true "Team ID"
// @Success 200 {object} responses.SuccessResponse
// @Security BearerAuth
// @Router /teams/{team_id}/roster-spots [get]
func (rc *RosterController) ListTeamSpots(c *gin.Context) {
	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 64)
	if err != nil || teamID == 0 {
		responses.BadRequest(c, "Invalid team_id")
		return
	}
	if _, ok := rc.requireTeamManager(c, uint(teamID)); !ok {
		return
	}

	spots, err := rc.repo.ListSpotsByTeam(uint(teamID))
	if err != nil {
		responses.InternalServerError(c, "Failed to fetch roster spots")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", spots)
}
