package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"staybook/internal/app/availability"
	"staybook/internal/app/catalog"
	appquote "staybook/internal/app/quote"
	"staybook/internal/app/reservation"
	"staybook/internal/domain/pricing"
	"staybook/internal/infra/broker/kafka"
	"staybook/internal/infra/cache"
	"staybook/internal/infra/config"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/obs"
	"staybook/internal/infra/provider"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	app := buildApplication(cfg, logger)
	defer app.close(logger)

	go func() {
		if err := app.sweeper.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("cache sweeper stopped", "error", err)
		}
	}()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: func() error { return nil },
	}, app.handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers ginserver.Handlers
	sweeper  cache.Sweeper
	producer *kafka.Producer
}

func buildApplication(cfg config.Config, logger *slog.Logger) application {
	retry := provider.RetryPolicy{
		MaxAttempts: cfg.RetryMaxAttempts,
		BaseDelay:   cfg.RetryBaseDelay,
	}
	tokens := &provider.TokenSource{
		TokenURL:     cfg.ProviderTokenURL,
		ClientID:     cfg.ProviderClientID,
		ClientSecret: cfg.ProviderClientSecret,
		Scope:        cfg.ProviderScope,
		Margin:       cfg.TokenSafetyMargin,
		Retry:        retry,
		Logger:       logger,
	}
	client := &provider.Client{
		BaseURL: cfg.ProviderBaseURL,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Tokens:  tokens,
		Queue:   provider.NewQueue(cfg.QueueSpacing),
		Retry:   retry,
		Logger:  logger,
	}

	catalogSvc := catalog.NewService(client, cfg.ListingsTTL, cfg.ListingTTL, nil, logger)
	calendarSvc := availability.NewService(client, cfg.CalendarTTL, nil, logger)

	rules := pricing.Config{
		TaxRate:          cfg.TaxRate,
		CleaningFee:      cfg.CleaningFee,
		ServiceFee:       cfg.ServiceFee,
		RoomDiscountMin:  cfg.RoomDiscountMin,
		RoomDiscountRate: cfg.RoomDiscountRate,
		Currency:         cfg.Currency,
	}
	quoteSvc := appquote.NewService(catalogSvc, calendarSvc, rules, logger)

	var producer *kafka.Producer
	var events reservation.Events
	if len(cfg.KafkaBrokers) > 0 {
		p, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, "staybook", nil)
		if err != nil {
			logger.Warn("kafka producer unavailable, reservation events disabled", "error", err)
		} else {
			producer = p
			events = p
		}
	} else {
		logger.Info("no kafka brokers configured, reservation events disabled")
	}
	reservationSvc := reservation.NewService(client, quoteSvc, events, logger)

	sweepTargets := append(catalogSvc.Caches(), calendarSvc.Caches()...)

	return application{
		handlers: ginserver.Handlers{
			Listing:     ginserver.ListingHandler{Listings: catalogSvc},
			Quote:       ginserver.QuoteHandler{Quotes: quoteSvc},
			Calendar:    ginserver.CalendarHandler{Calendars: calendarSvc},
			Reservation: ginserver.ReservationHandler{Reservations: reservationSvc},
		},
		sweeper: cache.Sweeper{
			Interval: cfg.SweepInterval,
			Targets:  sweepTargets,
		},
		producer: producer,
	}
}

func (a application) close(logger *slog.Logger) {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			logger.Warn("kafka producer close failed", "error", err)
		}
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
