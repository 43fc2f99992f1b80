package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"ticketing/cmd"
	adapterhttp "ticketing/internal/adapters/in/http"
	"ticketing/internal/adapters/out/postgres/lockrepo"
	"ticketing/internal/adapters/out/postgres/orderrepo"
	"ticketing/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	configs, err := getConfigs()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := openDatabase(configs)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&orderrepo.OrderDTO{}, &lockrepo.LockDTO{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	app, err := cmd.NewCompositionRoot(configs, db, logger)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	jobManager := jobs.NewJobManager(
		app.CreateCancelExpiredOrdersCommandHandler(),
		configs.ReaperSchedule,
		logger,
	)
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("Failed to start background jobs: %v", err)
	}
	defer jobManager.StopAll()

	startWebServer(&app, configs.HTTPPort)
}

func getConfigs() (cmd.Config, error) {
	// Missing .env is fine; plain environment variables still apply.
	_ = godotenv.Load(".env")

	issuePercent, err := envInt("ISSUE_SUCCESS_PERCENT", 80)
	if err != nil {
		return cmd.Config{}, err
	}
	retryPercent, err := envInt("RETRY_SUCCESS_PERCENT", 70)
	if err != nil {
		return cmd.Config{}, err
	}
	minDelayMs, err := envInt("AIRLINE_MIN_DELAY_MS", 200)
	if err != nil {
		return cmd.Config{}, err
	}
	maxDelayMs, err := envInt("AIRLINE_MAX_DELAY_MS", 2000)
	if err != nil {
		return cmd.Config{}, err
	}
	gracePeriod, err := envDuration("PAYMENT_GRACE_PERIOD", 15*time.Minute)
	if err != nil {
		return cmd.Config{}, err
	}
	lockMaxHold, err := envDuration("LOCK_MAX_HOLD", 5*time.Minute)
	if err != nil {
		return cmd.Config{}, err
	}
	lockMinHold, err := envDuration("LOCK_MIN_HOLD", 10*time.Second)
	if err != nil {
		return cmd.Config{}, err
	}

	return cmd.Config{
		HTTPPort:   envString("HTTP_PORT", "8080"),
		DBHost:     envString("DB_HOST", "localhost"),
		DBPort:     envString("DB_PORT", "5432"),
		DBUser:     envString("DB_USER", "postgres"),
		DBPassword: envString("DB_PASSWORD", "postgres"),
		DBName:     envString("DB_NAME", "ticketing"),
		DBSslMode:  envString("DB_SSLMODE", "disable"),

		IssueSuccessPercent: issuePercent,
		RetrySuccessPercent: retryPercent,
		AirlineMinDelay:     time.Duration(minDelayMs) * time.Millisecond,
		AirlineMaxDelay:     time.Duration(maxDelayMs) * time.Millisecond,

		PaymentGracePeriod: gracePeriod,
		ReaperSchedule:     envString("REAPER_SCHEDULE", "*/10 * * * * *"),
		LockMaxHold:        lockMaxHold,
		LockMinHold:        lockMinHold,
	}, nil
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return parsed, nil
}

func openDatabase(configs cmd.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser,
		configs.DBPassword, configs.DBName, configs.DBSslMode,
	)
	return gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
}

func startWebServer(app *cmd.CompositionRoot, port string) {
	e := echo.New()
	e.Use(middleware.Recover())

	server := adapterhttp.NewServer(
		app.CreateIssueTicketCommandHandler(),
		app.CreateRetryTicketCommandHandler(),
		app.CreateGetPendingRetriesQueryHandler(),
	)
	server.RegisterRoutes(e)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", port)))
}
