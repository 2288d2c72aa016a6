package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/example/office-booking/internal/application"
	"github.com/example/office-booking/internal/config"
	httptransport "github.com/example/office-booking/internal/http"
	"github.com/example/office-booking/internal/logging"
	"github.com/example/office-booking/internal/persistence/sqlite"
)

func main() {
	logger := logging.New(os.Stdout, slog.LevelInfo)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	storage, err := sqlite.Open(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := storage.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := storage.Migrate(context.Background()); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	idGenerator := uuid.NewString
	now := time.Now

	planRepo := newFloorPlanRepositoryAdapter(storage)
	bookingRepo := newBookingRepositoryAdapter(storage)
	usageRepo := newUsageHistoryAdapter(storage)
	notificationRepo := newNotificationRepositoryAdapter(storage)

	notifier := application.NewCascadeNotifier(idGenerator, now)
	locks := application.NewFloorLocks()

	catalogService := application.NewCatalogServiceWithLogger(planRepo, notifier, locks, idGenerator, now, logger)
	bookingService := application.NewBookingServiceWithLogger(planRepo, bookingRepo, locks, idGenerator, now, logger)
	recommendService := application.NewRecommendationServiceWithLogger(planRepo, usageRepo, logger)
	notificationService := application.NewNotificationServiceWithLogger(notificationRepo, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		FloorPlans:    httptransport.NewFloorPlanHandler(catalogService, logger),
		Bookings:      httptransport.NewBookingHandler(bookingService, logger),
		Recommend:     httptransport.NewRecommendHandler(recommendService, logger),
		Notifications: httptransport.NewNotificationHandler(notificationService, logger),
		CORSOrigins:   cfg.CORSOrigins,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.Identity(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("booking API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}
