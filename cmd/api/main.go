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

	"github.com/srgjo27/ticket_marketplace/internal/adapter/cache"
	"github.com/srgjo27/ticket_marketplace/internal/adapter/handler"
	"github.com/srgjo27/ticket_marketplace/internal/adapter/notify"
	"github.com/srgjo27/ticket_marketplace/internal/adapter/repository/memory"
	"github.com/srgjo27/ticket_marketplace/internal/adapter/repository/postgres"
	"github.com/srgjo27/ticket_marketplace/internal/config"
	"github.com/srgjo27/ticket_marketplace/internal/core/ports"
	"github.com/srgjo27/ticket_marketplace/internal/core/services"
	"github.com/srgjo27/ticket_marketplace/internal/platform/database"
)

type storage struct {
	tx          ports.TxManager
	events      ports.EventRepository
	ticketTypes ports.TicketTypeRepository
	tickets     ports.TicketRepository
	carts       ports.CartRepository
	health      func(ctx context.Context) error
	close       func() error
}

func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	if cfg.IsProduction() {
		opts.Level = slog.LevelInfo
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}

	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	if cfg.Storage == config.StorageMemory {
		logger.Warn("using in-memory storage, data is lost on restart")

		store := memory.NewStore()
		return &storage{
			tx:          store,
			events:      store.Events(),
			ticketTypes: store.TicketTypes(),
			tickets:     store.Tickets(),
			carts:       store.Carts(),
			close:       func() error { return nil },
		}, nil
	}

	db, err := database.NewPostgresDB(ctx, database.Config{
		Host:         cfg.DBHost,
		Port:         cfg.DBPort,
		User:         cfg.DBUser,
		Password:     cfg.DBPassword,
		DBName:       cfg.DBName,
		SSLMode:      cfg.DBSSLMode,
		MaxOpenConns: cfg.DBMaxConns,
	}, logger)
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &storage{
		tx:          postgres.NewTxManager(db),
		events:      postgres.NewEventRepository(db),
		ticketTypes: postgres.NewTicketTypeRepository(db),
		tickets:     postgres.NewTicketRepository(db),
		carts:       postgres.NewCartRepository(db),
		health:      db.PingContext,
		close:       db.Close,
	}, nil
}

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	slog.SetDefault(logger)

	ctx := context.Background()

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer store.close()

	var availability ports.AvailabilityCache
	if addr := cfg.RedisAddr(); addr != "" {
		logger.Info("connecting to redis", "addr", addr)

		redisClient, err := cache.NewRedisClient(ctx, addr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()

		availability = cache.NewAvailabilityCache(redisClient, cfg.AvailabilityCacheTTL)
		logger.Info("redis connected")
	}

	var notifier ports.Notifier = notify.NewLogNotifier(logger)
	if cfg.SMTPEnabled() {
		email, err := notify.NewEmailNotifier(notify.EmailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, logger)
		if err != nil {
			logger.Error("failed to set up email notifier", "error", err)
			os.Exit(1)
		}
		notifier = email
	}

	allocator := services.NewAllocator(store.tx, store.ticketTypes, store.tickets, availability, logger,
		services.WithMaxAttempts(cfg.AllocationMaxAttempts),
		services.WithRetryDelay(cfg.AllocationRetryDelay),
	)
	resaleService := services.NewResaleService(store.tx, store.tickets, logger)
	eventService := services.NewEventService(store.tx, store.events, store.ticketTypes, logger)
	ticketTypeService := services.NewTicketTypeService(store.events, store.ticketTypes, availability, logger)
	cartService := services.NewCartService(store.tx, store.carts, store.ticketTypes, store.tickets, store.events,
		allocator, resaleService, notifier, logger)

	router := handler.NewRouter(handler.Routes{
		Events: handler.NewEventHandler(eventService, ticketTypeService, logger),
		Carts:  handler.NewCartHandler(cartService, logger),
		Resale: handler.NewResaleHandler(resaleService, logger),
		Auth:   handler.NewAuthenticator(cfg.JWTSecret, logger),
		Health: store.health,
		Logger: logger,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", server.Addr, "storage", cfg.Storage)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server startup failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	cartService.WaitNotifications()
	logger.Info("server exiting")
}
