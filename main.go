package main

import (
	"log"
	"os"

	"github.com/rs/zerolog"

	"github.com/rosterup/rosterup/config"
	_ "github.com/rosterup/rosterup/docs"
	"github.com/rosterup/rosterup/internal/application"
	"github.com/rosterup/rosterup/internal/offer"
	"github.com/rosterup/rosterup/internal/org"
	"github.com/rosterup/rosterup/internal/outbox"
	"github.com/rosterup/rosterup/internal/payment"
	"github.com/rosterup/rosterup/internal/roster"
	"github.com/rosterup/rosterup/internal/user"
	"github.com/rosterup/rosterup/routes"
)

// @title RosterUp REST API
// @version 1.0
// @description Youth sports roster marketplace: orgs post roster spots, guardians apply, coaches accept against capacity, fees settle through payment intents.
// @host localhost:8090
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := config.Initialize(); err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	cfg := config.GetConfig()

	err := config.DB.AutoMigrate(
		&user.User{}, &user.Role{}, &user.Child{}, &user.RefreshToken{},
		&org.Org{}, &org.OrgMember{}, &org.Team{}, &org.Season{}, &org.Position{},
		&roster.RosterSpot{},
		&application.Application{},
		&offer.Offer{},
		&payment.Order{},
		&outbox.Event{},
	)
	if err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	log.Println("AutoMigrate successful")

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "rosterup").Logger()

	provider, err := payment.NewProvider(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize payment provider: %v", err)
	}

	r := routes.SetupRoutes(config.DB, cfg, provider, logger)

	log.Printf("Starting server on port %s in %s mode\n", cfg.App.Port, cfg.App.Env)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
