package main // Entry point package

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/medirota/coverage-platform/internal/client"
	"github.com/medirota/coverage-platform/internal/config"
	"github.com/medirota/coverage-platform/internal/database"
	"github.com/medirota/coverage-platform/internal/handler"
	"github.com/medirota/coverage-platform/internal/queue"
	"github.com/medirota/coverage-platform/internal/repository"
	"github.com/medirota/coverage-platform/internal/router"
	"github.com/medirota/coverage-platform/internal/service"
)

func main() {
	// Load a local .env if present; real deployments set the
	// environment directly, so a missing file is not an error.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	// Redis backs the rate limiter and the response cache.  nil means
	// Redis is unreachable and both middlewares degrade to no-ops.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable, caching and rate limiting disabled")
	}

	bookings := repository.NewBookingRepo(db)
	medics := repository.NewMedicRepo(db)
	territories := repository.NewTerritoryRepo(db)
	swaps := repository.NewShiftSwapRepo(db)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)

	scorer := client.NewMatchScorerClient(cfg.MatchScorerURL, 10*time.Second)
	travel := client.NewTravelTimeClient(cfg.TravelTimeURL, 10*time.Second)
	events := queue.NewPublisher()

	triage := service.NewTriage(bookings, scorer, events)
	optimizer := service.NewCostOptimizer(medics, territories, travel)
	series := service.NewSeries(bookings, events)
	swapSvc := service.NewSwaps(swaps, bookings, medics, events)

	h := router.Handlers{
		Auth:      handler.NewAuthHandler(cfg, users, tokens),
		Triage:    handler.NewTriageHandler(triage),
		Cost:      handler.NewCostHandler(optimizer),
		Recurring: handler.NewRecurringHandler(series),
		Swaps:     handler.NewSwapHandler(swapSvc),
		Bookings:  handler.NewBookingHandler(bookings, medics, events),
	}

	e := echo.New()
	router.Register(e, h, cfg.JWTSecret, rdb)

	// Drain coverage events into the audit log in the background.
	go queue.StartCoverageConsumer()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
