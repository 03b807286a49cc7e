package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/rosterup/rosterup/config"
	"github.com/rosterup/rosterup/internal/application"
	"github.com/rosterup/rosterup/internal/auth"
	"github.com/rosterup/rosterup/internal/offer"
	"github.com/rosterup/rosterup/internal/org"
	"github.com/rosterup/rosterup/internal/outbox"
	"github.com/rosterup/rosterup/internal/payment"
	"github.com/rosterup/rosterup/internal/roster"
	"github.com/rosterup/rosterup/internal/user"
)

func SetupRoutes(db *gorm.DB, appConfig *config.Config, provider payment.Provider, log zerolog.Logger) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default()) // allows all origins, GET/POST/PUT

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	events := outbox.NewEmitter(db, &outbox.LogSink{Log: log}, log)

	// API routes
	api := r.Group("/api")
	auth.RegisterAuthRoutes(api, db, appConfig)
	user.UserRoutes(api, db, appConfig)
	org.OrgRoutes(api, db, appConfig)
	roster.RosterRoutes(api, db, appConfig)
	application.ApplicationRoutes(api, db, appConfig, events, log)
	offer.OfferRoutes(api, db, appConfig, events, log)
	payment.PaymentRoutes(api, db, appConfig, provider, events, log)

	return r
}
