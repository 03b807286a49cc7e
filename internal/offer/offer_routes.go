package offer

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

// OfferRoutes sets up all offer routes.
func OfferRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config, events outbox.Recorder, log zerolog.Logger) {
	repo := NewOfferRepository(db)
	appRepo := application.NewApplicationRepository(db)
	spotRepo := roster.NewRosterRepository(db)
	orgRepo := org.NewOrgRepository(db)

	service := NewService(repo, appRepo, events, log)
	controller := NewOfferController(service, repo, spotRepo, orgRepo)

	authRoutes := router.Group("/")
	authRoutes.Use(middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		authRoutes.POST("/applications/:application_id/offers", controller.MakeOffer)
		authRoutes.GET("/users/me/offers", controller.ListMine)
		authRoutes.POST("/offers/:offer_id/:action", controller.Respond)
	}
}
