package org

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rosterup/rosterup/internal/middleware"
	"github.com/rosterup/rosterup/pkg/responses"
)

// OrgController handles org, team, season and position HTTP requests.
type OrgController struct {
	repo OrgRepository
}

func NewOrgController(repo OrgRepository) *OrgController {
	return &OrgController{repo: repo}
}

type CreateOrgRequest struct {
	Name        string `json:"name" binding:"required,min=3,max=120"`
	Slug        string `json:"slug" binding:"required,min=3,max=60,alphanum|contains=-"`
	Description string `json:"description" binding:"max=1000"`
	LogoURL     string `json:"logo_url"`
}

type CreateTeamRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=120"`
	Sport       string `json:"sport" binding:"max=60"`
	Description string `json:"description" binding:"max=1000"`
}

type CreateSeasonRequest struct {
	Name     string     `json:"name" binding:"required,max=120"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

type CreatePositionRequest struct {
	Name string `json:"name" binding:"required,max=60"`
}

type AddMemberRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"omitempty,oneof=owner admin coach"`
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		responses.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// requireOrgManager resolves the acting user and checks org management rights.
func (oc *OrgController) requireOrgManager(c *gin.Context, orgID uint) (uint, bool) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return 0, false
	}
	ok, err := oc.repo.IsOrgManager(orgID, userID)
	if err != nil {
		responses.InternalServerError(c, "Failed to verify org membership")
		return 0, false
	}
	if !ok {
		responses.Forbidden(c, "You do not manage this organization")
		return 0, false
	}
	return userID, true
}

// CreateOrg godoc
// @Summary Create an organization
// @Description Creates an org with the authenticated user as owner.
// @Tags Orgs
// @Accept json
// @Produce json
// @Param org body CreateOrgRequest true "Org details"
// @Success 201 {object} responses.SuccessResponse
// @Failure 409 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /orgs [post]
func (oc *OrgController) CreateOrg(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}

	var req CreateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, "Invalid input: "+err.Error())
		return
	}

	if existing, err := oc.repo.GetOrgBySlug(req.Slug); err != nil {
		responses.InternalServerError(c, "Failed to check slug")
		return
	} else if existing != nil {
		responses.SendError(c, http.StatusConflict, "An organization with this slug already exists")
		return
	}

	o := &Org{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		LogoURL:     req.LogoURL,
		CreatedByID: userID,
	}
	if err := oc.repo.CreateOrg(o); err != nil {
		responses.InternalServerError(c, "Failed to create organization")
		return
	}
	if err := oc.repo.AddMember(&OrgMember{OrgID: o.ID, UserID: userID, Role: MemberRoleOwner}); err != nil {
		responses.InternalServerError(c, "Failed to add owner membership")
		return
	}

	responses.SendSuccess(c, http.StatusCreated, "Organization created", o)
}

// GetOrg godoc
// @Summary Get an organization
// @Tags Orgs
// @Produce json
// @Param org_id path int true "Org ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 404 {object} responses.ErrorResponse
// @Router /orgs/{org_id} [get]
func (oc *OrgController) GetOrg(c *gin.Context) {
	orgID, ok := parseIDParam(c, "org_id")
	if !ok {
		return
	}
	o, err := oc.repo.GetOrgByID(orgID)
	if err != nil {
		responses.InternalServerError(c, "Failed to fetch organization")
		return
	}
	if o == nil {
		responses.NotFound(c, "Organization")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", o)
}

// AddMember godoc
// @Summary Add or update an org member
// @Tags Orgs
// @Accept json
// @Produce json
// @Param org_id path int true "Org ID"
// @Param member body AddMemberRequest true "Member details"
// @Success 200 {object} responses.SuccessResponse
// @Security BearerAuth
// @Router /orgs/{org_id}/members [post]
func (oc *OrgController) AddMember(c *gin.Context) {
	orgID, ok := parseIDParam(c, "org_id")
	if !ok {
		return
	}
	if _, ok := oc.requireOrgManager(c, orgID); !ok {
		return
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, "Invalid input: "+err.Error())
		return
	}
	role := req.Role
	if role == "" {
		role = MemberRoleCoach
	}

	member := &OrgMember{OrgID: orgID, UserID: req.UserID, Role: role}
	if err := oc.repo.AddMember(member); err != nil {
		responses.InternalServerError(c, "Failed to add member")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Member added", member)
}

// CreateTeam godoc
// @Summary Create a team in an org
// @Tags Orgs
// @Accept json
// @Produce json
// @Param org_id path int true "Org ID"
// @Param team body CreateTeamRequest true "Team details"
// @Success 201 {object} responses.SuccessResponse
// @Security BearerAuth
// @Router /orgs/{org_id}/teams [post]
func (oc *OrgController) CreateTeam(c *gin.Context) {
	orgID, ok := parseIDParam(c, "org_id")
	if !ok {
		return
	}
	userID, ok := oc.requireOrgManager(c, orgID)
	if !ok {
		return
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, "Invalid input: "+err.Error())
		return
	}

	team := &Team{
		OrgID:       orgID,
		Name:        req.Name,
		Sport:       req.Sport,
		Description: req.Description,
		CreatedByID: userID,
	}
	if err := oc.repo.CreateTeam(team); err != nil {
		responses.InternalServerError(c, "Failed to create team")
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Team created", team)
}

// ListTeams godoc
// @Summary List teams in an org
// @Tags Orgs
// @Produce json
// @Param org_id path int true "Org ID"
// @Success 200 {object} responses.SuccessResponse
// @Router /orgs/{org_id}/teams [get]
func (oc *OrgController) ListTeams(c *gin.Context) {
	orgID, ok := parseIDParam(c, "org_id")
	if !ok {
		return
	}
	teams, err := oc.repo.ListTeamsByOrg(orgID)
	if err != nil {
		responses.InternalServerError(c, "Failed to fetch teams")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", teams)
}

// CreateSeason godoc
// @Summary Create a season
// @Tags Orgs
// @Accept json
// @Produce json
// @Param org_id path int true "Org ID"
// @Param season body CreateSeasonRequest true "Season details"
// @Success 201 {object} responses.SuccessResponse
// @Security BearerAuth
// @Router /orgs/{org_id}/seasons [post]
func (oc *OrgController) CreateSeason(c *gin.Context) {
	orgID, ok := parseIDParam(c, "org_id")
	if !ok {
		return
	}
	if _, ok := oc.requireOrgManager(c, orgID); !ok {
		return
	}

	var req CreateSeasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, "Invalid input: "+err.Error())
		return
	}

	season := &Season{OrgID: orgID, Name: req.Name, StartsAt: req.StartsAt, EndsAt: req.EndsAt}
	if err := oc.repo.CreateSeason(season); err != nil {
		responses.InternalServerError(c, "Failed to create season")
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Season created", season)
}

// ListSeasons godoc
// @Summary List seasons in an org
// @Tags Orgs
// @Produce json
// @Param org_id path int true "Org ID"
// @Success 200 {object} responses.SuccessResponse
// @Router /orgs/{org_id}/seasons [get]
func (oc *OrgController) ListSeasons(c *gin.Context) {
	orgID, ok := parseIDParam(c, "org_id")
	if !ok {
		return
	}
	seasons, err := oc.repo.ListSeasonsByOrg(orgID)
	if err != nil {
		responses.InternalServerError(c, "Failed to fetch seasons")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", seasons)
}

// CreatePosition godoc
// @Summary Create a position
// @Tags Orgs
// @Accept json
// @Produce json
// @Param org_id path int true "Org ID"
// @Param position body CreatePositionRequest true "Position details"
// @Success 201 {object} responses.SuccessResponse
// @Security BearerAuth
// @Router /orgs/{org_id}/positions [post]
func (oc *OrgController) CreatePosition(c *gin.Context) {
	orgID, ok := parseIDParam(c, "org_id")
	if !ok {
		return
	}
	if _, ok := oc.requireOrgManager(c, orgID); !ok {
		return
	}

	var req CreatePositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, "Invalid input: "+err.Error())
		return
	}

	position := &Position{OrgID: orgID, Name: req.Name}
	if err := oc.repo.CreatePosition(position); err != nil {
		responses.InternalServerError(c, "Failed to create position")
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Position created", position)
}

// ListPositions godoc
// @Summary List positions in an org
// @Tags Orgs
// @Produce json
// @Param org_id path int true "Org ID"
// @Success 200 {object} responses.SuccessResponse
// @Router /orgs/{org_id}/positions [get]
func (oc *OrgController) ListPositions(c *gin.Context) {
	orgID, ok := parseIDParam(c, "org_id")
	if !ok {
		return
	}
	positions, err := oc.repo.ListPositionsByOrg(orgID)
	if err != nil {
		responses.InternalServerError(c, "Failed to fetch positions")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", positions)
}
