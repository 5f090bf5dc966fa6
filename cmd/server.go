//go:build !integration

package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"bitbucket.org/crgw/booking-engine/internal/booking"
	"bitbucket.org/crgw/booking-engine/internal/commission"
	"bitbucket.org/crgw/booking-engine/internal/currency"
	"bitbucket.org/crgw/booking-engine/internal/notify"
	"bitbucket.org/crgw/booking-engine/internal/payment"
	"bitbucket.org/crgw/booking-engine/internal/supplier/factory"
	"bitbucket.org/crgw/booking-engine/internal/tools/redisfactory"
	"bitbucket.org/crgw/booking-engine/internal/web"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

func newLogger(level string) *zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}

	logger := zerolog.New(os.Stdout).
		Level(parsed).
		With().
		Timestamp().
		Logger()

	return &logger
}

func newPersistence(log *zerolog.Logger) (booking.Store, commission.Recorder) {
	databaseUrl := os.Getenv("DATABASE_URL")
	if databaseUrl == "" {
		log.Warn().Msg("DATABASE_URL not set, bookings are held in memory")
		return booking.NewMemoryStore(), commission.NopRecorder{}
	}

	db, err := sql.Open("postgres", databaseUrl)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to open database")
	}

	return booking.NewPostgresStore(db), commission.NewPostgresRecorder(db)
}

func rateTTL() time.Duration {
	minutes, err := strconv.Atoi(os.Getenv("CURRENCY_TTL_MINUTES"))
	if err != nil || minutes <= 0 {
		return time.Hour
	}
	return time.Duration(minutes) * time.Minute
}

func serverApp(httpServer *http.Server, logger *zerolog.Logger) int {
	shutdown := false
	done := make(chan error, 1)
	stop := make(chan os.Signal, 1)
	go func() {
		logger.
			Info().
			Msg("Listening on address " + httpServer.Addr)
		done <- httpServer.ListenAndServe()
	}()
	go func() {
		// Wait for stop
		<-stop
		shutdown = true
		logger.Info().Msg("Shutting down server...")
		_ = httpServer.Shutdown(context.Background())
	}()

	// Notify stop channel if SIGINT or SIGTERM is received
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	err := <-done
	if err != nil && !shutdown {
		logger.
			Error().
			Err(err).
			Msg("Server failed")
		return 1
	}
	return 0
}

func main() {
	_ = godotenv.Load(".env")
	log := newLogger(os.Getenv("LOG_LEVEL"))

	redisFactory := redisfactory.New()

	currencyService := currency.NewService(
		redisFactory.CurrencyCacheClient(),
		currency.NewExchangeRateAPI(log),
		rateTTL(),
		log,
	)

	store, commissionRecorder := newPersistence(log)
	gateway := payment.NewStripeGateway()
	suppliers := factory.NewFactory(redisFactory)

	orchestrator := booking.NewOrchestrator(
		store,
		suppliers,
		gateway,
		currencyService,
		notify.NewSendgridNotifier(log),
		commissionRecorder,
	)
	reconciler := booking.NewReconciler(orchestrator, gateway)

	// keep the base table warm so bookings rarely hit a cold rate lookup
	scheduler := cron.New()
	_, err := scheduler.AddFunc("@hourly", func() {
		base := os.Getenv("CURRENCY_BASE")
		if base == "" {
			base = "USD"
		}
		currencyService.AllRates(context.Background(), base)
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to schedule rate refresh")
	}
	scheduler.Start()
	defer scheduler.Stop()

	appRouter := web.SetupRouter(log, web.Dependencies{
		RedisFactory: redisFactory,
		Suppliers:    suppliers,
		Orchestrator: orchestrator,
		Reconciler:   reconciler,
		Gateway:      gateway,
		Currency:     currencyService,
	})

	var host string
	if os.Getenv("TEST") == "true" {
		host = "localhost"
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", host, os.Getenv("PORT")),
		Handler: appRouter,
	}

	os.Exit(serverApp(httpServer, log))
}
