package application

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/rosterup/rosterup/config"
	"github.com/rosterup/rosterup/internal/middleware"
	"github.com/rosterup/rosterup/internal/org"
	"github.com/rosterup/rosterup/internal/outbox"
	"github.com/rosterup/rosterup/internal/roster"
	"github.com/rosterup/rosterup/internal/user"
)

// ApplicationRoutes sets up all application lifecycle routes.
func ApplicationRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config, events outbox.Recorder, log zerolog.Logger) {
	repo := NewApplicationRepository(db)
	spotRepo := roster.NewRosterRepository(db)
	userRepo := user.NewUserRepository(db)
	orgRepo := org.NewOrgRepository(db)

	lifecycle := NewLifecycle(repo, spotRepo, userRepo, events, log)
	controller := NewApplicationController(lifecycle, repo, spotRepo, orgRepo)

	authRoutes := router.Group("/")
	authRoutes.Use(middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		// Guardian side
		authRoutes.POST("/applications", controller.Submit)
		authRoutes.GET("/users/me/applications", controller.ListMine)
		authRoutes.POST("/applications/:application_id/withdraw", controller.Withdraw)

		// Coach side
		authRoutes.GET("/roster-spots/:spot_id/applications", controller.ListForSpot)
		authRoutes.POST("/applications/:application_id/transition", controller.Transition)
		authRoutes.POST("/applications/bulk-transition", controller.BulkTransition)
	}
}
