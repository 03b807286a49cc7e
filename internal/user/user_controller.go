package user

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rosterup/rosterup/internal/middleware"
	"github.com/rosterup/rosterup/pkg/responses"
)

// UserController handles guardian profile and child endpoints.
type UserController struct {
	repo UserRepository
}

func NewUserController(repo UserRepository) *UserController {
	return &UserController{repo: repo}
}

type CreateChildRequest struct {
	FirstName  string     `json:"first_name" binding:"required,max=100"`
	LastName   string     `json:"last_name" binding:"required,max=100"`
	BirthDate  *time.Time `json:"birth_date"`
	GradeLevel *int       `json:"grade_level" binding:"omitempty,gte=0,lte=12"`
}

// CreateChild godoc
// @Summary Add a child profile
// @Description Creates a child profile under the authenticated guardian.
// @Tags Users
// @Accept json
// @Produce json
// @Param child body CreateChildRequest true "Child details"
// @Success 201 {object} responses.SuccessResponse
// @Failure 400 {object} responses.ErrorResponse
// @Router /users/me/children [post]
func (uc *UserController) CreateChild(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}

	var req CreateChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.BadRequest(c, "Invalid input: "+err.Error())
		return
	}

	child := &Child{
		GuardianID: userID,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		BirthDate:  req.BirthDate,
		GradeLevel: req.GradeLevel,
	}
	if err := uc.repo.CreateChild(child); err != nil {
		responses.InternalServerError(c, "Failed to create child profile")
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Child profile created", child)
}

// ListMyChildren godoc
// @Summary List my children
// @Tags Users
// @Produce json
// @Success 200 {object} responses.SuccessResponse
// @Router /users/me/children [get]
func (uc *UserController) ListMyChildren(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}

	children, err := uc.repo.ListChildrenByGuardian(userID)
	if err != nil {
		responses.InternalServerError(c, "Failed to fetch children")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", children)
}
