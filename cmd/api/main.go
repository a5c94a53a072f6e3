package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/wayplanhq/wayplan-backend/internal/config"
	"github.com/wayplanhq/wayplan-backend/internal/logging"
	"github.com/wayplanhq/wayplan-backend/internal/places"
	"github.com/wayplanhq/wayplan-backend/internal/repository/postgres"
	"github.com/wayplanhq/wayplan-backend/internal/service"
	transport "github.com/wayplanhq/wayplan-backend/internal/transport/http"
	"github.com/wayplanhq/wayplan-backend/internal/util"
)

func main() {
	cfg := config.Load()

	if cfg.LogstashTCPAddr != "" {
		writer, err := logging.NewLogstashWriter(cfg.LogstashTCPAddr)
		if err != nil {
			log.Fatalf("logstash writer: %v", err)
		}
		defer writer.Close()
		log.SetOutput(io.MultiWriter(os.Stdout, writer))
	}

	db, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer db.Close()

	sessionTTL, err := time.ParseDuration(cfg.SessionTTL)
	if err != nil {
		log.Fatalf("parse SESSION_TTL: %v", err)
	}

	placeRepo := postgres.NewPlaceRepo(db)
	tripRepo := postgres.NewTripRepo(db)
	dayRepo := postgres.NewDayRepo(db)
	attachmentRepo := postgres.NewAttachmentRepo(db)

	placesClient := places.NewClient(cfg.PlacesBaseURL, cfg.PlacesAPIKey)

	authService := service.NewAuthService(util.NewJWTManager(cfg.JWTSecret, sessionTTL))
	catalogService := service.NewCatalogService(placeRepo)
	itineraryService := service.NewItineraryService(tripRepo, dayRepo, attachmentRepo, catalogService, placesClient)

	e := transport.NewRouter(cfg.AllowOrigins)
	transport.RegisterItinerary(e, authService, itineraryService)
	transport.RegisterPlaces(e, authService, catalogService, placesClient)
	transport.RegisterSwagger(e)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
