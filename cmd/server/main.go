package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv" // Loads .env files in development
	"github.com/labstack/echo/v4"

	"github.com/glowpoint/salon-scheduler/internal/apiclient"
	"github.com/glowpoint/salon-scheduler/internal/cache"
	"github.com/glowpoint/salon-scheduler/internal/config"
	"github.com/glowpoint/salon-scheduler/internal/form"
	"github.com/glowpoint/salon-scheduler/internal/handler"
	"github.com/glowpoint/salon-scheduler/internal/layout"
	"github.com/glowpoint/salon-scheduler/internal/queue"
	"github.com/glowpoint/salon-scheduler/internal/router"
	"github.com/glowpoint/salon-scheduler/internal/selection"
)

func main() {
	// A missing .env is fine in production, real env vars take over there.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load()
	gridCfg, columns := config.LoadGridConfig()
	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()
	rdb := config.NewRedisClient() // nil when Redis is unreachable; limiter degrades to pass-through

	client := apiclient.New(cfg.APIBaseURL, cfg.SessionCookie)
	coordinator := cache.New(client, cacheCfg.EffectiveTTL())
	engine := layout.New(gridCfg)

	forms := form.NewManager(client, coordinator, gridCfg)
	selections := selection.NewManager(client, coordinator)

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterCalendar(e, router.Handlers{
		Calendar:     handler.NewCalendarHandler(coordinator, engine, columns),
		Appointments: handler.NewAppointmentHandler(forms, client, coordinator),
		Selection:    handler.NewSelectionHandler(selections, client, coordinator),
		Customers:    handler.NewCustomerHandler(client),
	}, cfg.JWTSecret, cfg.SessionCookie, rlCfg, rdb)

	// Cross-instance invalidation: drop cached dates when another replica
	// confirms a mutation. Runs its own reconnect loop for the process
	// lifetime.
	go queue.StartInvalidationConsumer(coordinator)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
