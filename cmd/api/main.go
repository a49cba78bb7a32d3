package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"meetpoint/cmd/internal/clock"
	"meetpoint/cmd/internal/domain/invariant"
	"meetpoint/cmd/internal/domain/sqlite"
	"meetpoint/cmd/internal/domain/sqlite/repository"
	"meetpoint/cmd/internal/integration/directory"
	"meetpoint/cmd/internal/routes"
	"meetpoint/cmd/internal/scheduler"
	"meetpoint/cmd/internal/service"
	"meetpoint/cmd/internal/utils/validators"
)

type config struct {
	port              string
	dbPath            string
	schedulerInterval time.Duration
	lookupTimeout     time.Duration
	rejectPastStart   bool
	userServiceURL    string
	userServiceKey    string
	guestServiceURL   string
	guestServiceKey   string
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warnf("no .env file loaded: %v", err)
	}
	cfg := loadConfig()

	validate := validator.New()
	if err := validate.RegisterValidation("iso8601", validators.IsIso8601); err != nil {
		log.Fatalf("failed to register iso8601 validator: %v", err)
	}

	db, err := sqlite.Init(cfg.dbPath)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	defer db.Close()

	store := repository.NewAppointmentRepository(db)
	hosts := directory.NewHostClient(directory.Config{
		BaseURL: cfg.userServiceURL,
		APIKey:  cfg.userServiceKey,
		Timeout: cfg.lookupTimeout,
	})
	guests := directory.NewGuestClient(directory.Config{
		BaseURL: cfg.guestServiceURL,
		APIKey:  cfg.guestServiceKey,
		Timeout: cfg.lookupTimeout,
	})

	clk := clock.Real()
	policy := invariant.Policy{RejectPastStart: cfg.rejectPastStart}
	apptService := service.NewAppointmentService(store, hosts, guests, validate, policy, clk)

	statusScheduler := scheduler.New(store, clk, cfg.schedulerInterval)
	statusScheduler.Start()
	defer statusScheduler.Stop()

	e := echo.New()
	e.Use(middleware.CORS())

	apptRoutes := routes.NewAppointmentDefault(apptService)
	apptRoutes.RegisterRoutes(e)

	go func() {
		if err := e.Start(":" + cfg.port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()
	log.Infof("server running on port %s", cfg.port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Errorf("server shutdown: %v", err)
	}
}

func loadConfig() config {
	return config{
		port:              envOr("SERVER_PORT", "8080"),
		dbPath:            envOr("DB_PATH", "./appointments.db"),
		schedulerInterval: envDuration("SCHEDULER_INTERVAL", time.Minute),
		lookupTimeout:     envDuration("LOOKUP_TIMEOUT", 3*time.Second),
		rejectPastStart:   envBool("REJECT_PAST_START", false),
		userServiceURL:    envOr("USER_SERVICE_URL", "http://localhost:8081"),
		userServiceKey:    os.Getenv("USER_SERVICE_API_KEY"),
		guestServiceURL:   envOr("GUEST_SERVICE_URL", "http://localhost:8082"),
		guestServiceKey:   os.Getenv("GUEST_SERVICE_API_KEY"),
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Fatalf("invalid duration for %s: %v", key, err)
	}
	return d
}

func envBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		log.Fatalf("invalid boolean for %s: %v", key, err)
	}
	return value
}
