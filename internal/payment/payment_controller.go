package payment

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rosterup/rosterup/internal/apperr"
	"github.com/rosterup/rosterup/internal/middleware"
	"github.com/rosterup/rosterup/internal/org"
	"github.com/rosterup/rosterup/pkg/responses"
)

// PaymentController handles payment HTTP requests.
type PaymentController struct {
	service  *Service
	repo     PaymentRepository
	orgs     org.OrgRepository
	provider Provider
}

func NewPaymentController(service *Service, repo PaymentRepository, orgs org.OrgRepository, provider Provider) *PaymentController {
	return &PaymentController{
		service:  service,
		repo:     repo,
		orgs:     orgs,
		provider: provider,
	}
}

func sendPaymentError(c *gin.Context, err error) {
	responses.SendError(c, apperr.StatusOf(err), apperr.MessageOf(err))
}

// CreateIntent godoc
// @Summary Create a payment intent for an application fee
// @Description Only the applying guardian may pay. Fails when the spot has no fee or the org has not onboarded for payments.
// @Tags Payments
// @Produce json
// @Param application_id path int true "Application ID"
// @Success 201 {object} responses.SuccessResponse
// @Failure 422 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /applications/{application_id}/payment-intent [post]
func (pc *PaymentController) CreateIntent(c *gin.Context) {
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

	result, err := pc.service.CreateIntent(c.Request.Context(), uint(appID), userID)
	if err != nil {
		sendPaymentError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Payment intent created", result)
}

// Webhook godoc
// @Summary Payment processor webhook
// @Description Verifies the X-Signature header over the raw body. Unknown event types are acknowledged and ignored.
// @Tags Payments
// @Accept json
// @Produce json
// @Success 200 {object} responses.SuccessResponse
// @Failure 400 {object} responses.ErrorResponse
// @Router /payments/webhook [post]
func (pc *PaymentController) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		responses.BadRequest(c, "Unreadable webhook body")
		return
	}

	if err := pc.service.HandleWebhook(body, c.GetHeader("X-Signature")); err != nil {
		sendPaymentError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Webhook processed", nil)
}

// OnboardingLink godoc
// @Summary Create a payment onboarding link for an org
// @Description Creates the connected account on first call, then returns a fresh onboarding link.
// @Tags Payments
// @Produce json
// @Param org_id path int true "Org ID"
// @Success 200 {object} responses.SuccessResponse
// @Failure 403 {object} responses.ErrorResponse
// @Security BearerAuth
// @Router /orgs/{org_id}/payments/onboarding-link [post]
func (pc *PaymentController) OnboardingLink(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}
	orgID, err := strconv.ParseUint(c.Param("org_id"), 10, 64)
	if err != nil || orgID == 0 {
		responses.BadRequest(c, "Invalid org_id")
		return
	}

	ok, err := pc.orgs.IsOrgManager(uint(orgID), userID)
	if err != nil {
		responses.InternalServerError(c, "Failed to check org access")
		return
	}
	if !ok {
		responses.Forbidden(c, "You do not manage this organization")
		return
	}

	owner, err := pc.orgs.GetOrgByID(uint(orgID))
	if err != nil {
		responses.InternalServerError(c, "Failed to fetch organization")
		return
	}
	if owner == nil {
		responses.NotFound(c, "Organization")
		return
	}

	if owner.PaymentAccountID == "" {
		accountID, err := pc.provider.CreateAccount(c.Request.Context(), owner.Name)
		if err != nil {
			responses.InternalServerError(c, "Failed to create payment account")
			return
		}
		owner.PaymentAccountID = accountID
		if err := pc.orgs.UpdateOrg(owner); err != nil {
			responses.InternalServerError(c, "Failed to save payment account")
			return
		}
	}

	link, err := pc.provider.OnboardingLink(c.Request.Context(), owner.PaymentAccountID)
	if err != nil {
		responses.InternalServerError(c, "Failed to create onboarding link")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "", gin.H{"url": link, "account_id": owner.PaymentAccountID})
}

// ListOrgOrders godoc
// @Summary List orders for an org
// @Tags Payments
// @Produce json
// @Param org_id path int true "Org ID"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} responses.PaginatedResponse
// @Security BearerAuth
// @Router /orgs/{org_id}/orders [get]
func (pc *PaymentController) ListOrgOrders(c *gin.Context) {
	userID, err := middleware.GetUserIDFromContext(c)
	if err != nil {
		responses.Unauthorized(c, "")
		return
	}
	orgID, err := strconv.ParseUint(c.Param("org_id"), 10, 64)
	if err != nil || orgID == 0 {
		responses.BadRequest(c, "Invalid org_id")
		return
	}

	ok, err := pc.orgs.IsOrgManager(uint(orgID), userID)
	if err != nil {
		responses.InternalServerError(c, "Failed to check org access")
		return
	}
	if !ok {
		responses.Forbidden(c, "You do not manage this organization")
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

	orders, total, err := pc.repo.ListOrdersByOrg(uint(orgID), page, limit)
	if err != nil {
		responses.InternalServerError(c, "Failed to fetch orders")
		return
	}
	responses.SendPaginated(c, http.StatusOK, "", orders, total, page, limit)
}
