package org

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/rosterup/rosterup/config"
	"github.com/rosterup/rosterup/internal/middleware"
)

// OrgRoutes sets up all org-related routes.
func OrgRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config) {
	repo := NewOrgRepository(db)
	controller := NewOrgController(repo)

	// Public org pages
	router.GET("/orgs/:org_id", controller.GetOrg)
	router.GET("/orgs/:org_id/teams", controller.ListTeams)
	router.GET("/orgs/:org_id/seasons", controller.ListSeasons)
	router.GET("/orgs/:org_id/positions", controller.ListPositions)

	authRoutes := router.Group("/")
	authRoutes.Use(middleware.AuthMiddleware(appConfig.JWT.AccessTokenSecret, db))
	{
		authRoutes.POST("/orgs", controller.CreateOrg)
		authRoutes.POST("/orgs/:org_id/members", controller.AddMember)
		authRoutes.POST("/orgs/:org_id/teams", controller.CreateTeam)
		authRoutes.POST("/orgs/:org_id/seasons", controller.CreateSeason)
		authRoutes.POST("/orgs/:org_id/positions", controller.CreatePosition)
	}
}
