package payment

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/rosterup/rosterup/config"
	"github.com/rosterup/rosterup/internal/application"
	"github.com/rosterup/rosterup/internal/middleware"
	"github.com/rosterup/rosterup/internal/org"
	"github.com/rosterup/rosterup/internal/outbox"
	"github.com/rosterup/rosterup/internal/roster"
)

// PaymentRoutes sets up all payment routes. The webhook endpoint stays
// unauthenticated: the signature check is its auth.
func PaymentRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config, provider Provider, events outbox.Recorder, log zerolog.Logger) {
	repo := NewPaymentRepository(db)
	appRepo := application.NewApplicationRepository(db)
	spotRepo := roster.NewRosterRepository(db)
	orgRepo := org.NewOrgRepository(db)

	service := NewService(repo, appRepo, spotRepo, orgRepo, provider, appConfig.Payments.PlatformFeeBps, events, log)
	controller := NewPaymentController(service, repo, orgRepo, provider)

	router.POST("/payments/webhook", controller.Webhook)

	authRoutes := router.Group("/")
	authRoutes.Use(middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		authRoutes.POST("/applications/:application_id/payment-intent", controller.CreateIntent)
		authRoutes.POST("/orgs/:org_id/payments/onboarding-link", controller.OnboardingLink)
		authRoutes.GET("/orgs/:org_id/orders", controller.ListOrgOrders)
	}
}
