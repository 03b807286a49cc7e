package roster

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rosterup/rosterup/config"
	"github.com/rosterup/rosterup/internal/middleware"
	"github.com/rosterup/rosterup/internal/org"
)

// RosterRoutes sets up all roster spot routes.
func RosterRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config) {
	repo := NewRosterRepository(db)
	orgRepo := org.NewOrgRepository(db)
	controller := NewRosterController(repo, orgRepo)

	// Public browse/listing pages
	router.GET("/roster-spots", controller.BrowseSpots)
	router.GET("/roster-spots/:spot_id", controller.GetSpot)

	authRoutes := router.Group("/")
	authRoutes.Use(middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		authRoutes.POST("/roster-spots", controller.CreateSpot)
		authRoutes.PUT("/roster-spots/:spot_id", controller.UpdateSpot)
		authRoutes.POST("/roster-spots/:spot_id/:action", controller.SetSpotStatus)
		authRoutes.GET("/teams/:team_id/roster-spots", controller.ListTeamSpots)
	}
}
