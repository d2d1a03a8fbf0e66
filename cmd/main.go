package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cristianortiz/bidmaster/internal/auction/application"
	auctiondomain "github.com/cristianortiz/bidmaster/internal/auction/domain"
	"github.com/cristianortiz/bidmaster/internal/auction/infra/cache"
	auctionhttp "github.com/cristianortiz/bidmaster/internal/auction/infra/http"
	auctionmemory "github.com/cristianortiz/bidmaster/internal/auction/infra/repository/memory"
	auctionpg "github.com/cristianortiz/bidmaster/internal/auction/infra/repository/postgres"
	auctionws "github.com/cristianortiz/bidmaster/internal/auction/infra/websocket"
	notifapp "github.com/cristianortiz/bidmaster/internal/notification/application"
	notifdomain "github.com/cristianortiz/bidmaster/internal/notification/domain"
	"github.com/cristianortiz/bidmaster/internal/notification/infra/mailer"
	notifmemory "github.com/cristianortiz/bidmaster/internal/notification/infra/repository/memory"
	notifpg "github.com/cristianortiz/bidmaster/internal/notification/infra/repository/postgres"
	"github.com/cristianortiz/bidmaster/internal/shared/config"
	"github.com/cristianortiz/bidmaster/internal/shared/db"
	"github.com/cristianortiz/bidmaster/internal/shared/db/migrations"
	"github.com/cristianortiz/bidmaster/internal/shared/httpserver"
	"github.com/cristianortiz/bidmaster/internal/shared/logger"
	"github.com/cristianortiz/bidmaster/internal/shared/websocket"
	userdomain "github.com/cristianortiz/bidmaster/internal/user/domain"
	usermemory "github.com/cristianortiz/bidmaster/internal/user/infra/repository/memory"
	userpg "github.com/cristianortiz/bidmaster/internal/user/infra/repository/postgres"
	"go.uber.org/zap"
)

// stores groups the persistence adapters selected by STORE_DRIVER.
type stores struct {
	tx            auctiondomain.Transactor
	auctions      auctiondomain.AuctionRepository
	bids          auctiondomain.BidRepository
	notifications notifdomain.NotificationStore
	users         userdomain.UserRepository
	close         func()
}

func main() {
	logger := logger.GetLogger()
	defer logger.Sync()

	logger.Info("Starting Bid Master server...")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := buildStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Storage setup failed", zap.Error(err))
	}
	defer st.close()

	ledger, closeLedger := buildReminderLedger(ctx, cfg, logger)
	defer closeLedger()

	dispatcher := notifapp.NewDispatcher(st.notifications, mailer.NewLogMailer(logger), st.users, cfg.NotifyTimeout)

	hub := websocket.NewHub()
	go hub.Run(ctx)
	publisher := auctionws.NewHubPublisher(hub)

	sweepUC := application.NewSweepUseCase(st.tx, st.auctions, st.bids, dispatcher, publisher)
	service := application.NewAuctionService(
		application.NewCreateAuctionUseCase(st.auctions),
		application.NewPlaceBidUseCase(st.tx, st.auctions, st.bids, dispatcher, publisher),
		application.NewBuyNowUseCase(st.tx, st.auctions, st.bids, dispatcher, publisher),
		application.NewCancelAuctionUseCase(st.tx, st.auctions, st.bids, dispatcher, publisher),
		application.NewGetAuctionUseCase(st.auctions, st.bids, sweepUC),
		sweepUC,
		application.NewReminderUseCase(st.auctions, st.bids, ledger, dispatcher, cfg.ReminderHorizons, cfg.ReminderWindow),
	)

	if cfg.CronSecret == "" {
		logger.Warn("CRON_SECRET not configured, /api/cron will reject every request")
	}

	server := httpserver.NewServer()
	auctionhttp.NewAuctionHandler(service, cfg.CronSecret).RegisterRoutes(server.App())
	wsHandler := auctionws.NewAuctionWSHandler(service, hub)
	wsHandler.RegisterRoutes(ctx, server.App())
	go wsHandler.ListenForMessages(ctx)

	if cfg.SweepInterval > 0 {
		go sweepUC.RunPeriodic(ctx, cfg.SweepInterval)
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start(cfg.HTTPAddr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	stop()

	// notifications of already committed operations still go out
	dispatcher.Wait()
	logger.Info("Bid Master server stopped")
}

func buildStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("Using in-memory storage, data is lost on restart")
		demoUsers, err := usermemory.ParseUsers(cfg.DemoUsers)
		if err != nil {
			return nil, fmt.Errorf("DEMO_USERS: %w", err)
		}
		if len(demoUsers) == 0 {
			logger.Warn("No DEMO_USERS configured, user notifications and emails will fail with user not found")
		}
		store := auctionmemory.NewStore()
		return &stores{
			tx:            store,
			auctions:      store,
			bids:          store,
			notifications: notifmemory.NewNotificationRepository(),
			users:         usermemory.NewUserRepository(demoUsers...),
			close:         func() {},
		}, nil
	}

	logger.Info("Running database migrations...")
	if err := migrations.RunMigrations(cfg.MigrationsPath, cfg.DatabaseURL); err != nil {
		return nil, err
	}
	logger.Info("Database migrations completed successfully.")

	pool, err := db.GetPostgresDBPool(ctx, cfg.DatabaseURL, db.PoolOptions{
		MaxConns: int32(cfg.DBMaxConns),
		MinConns: int32(cfg.DBMinConns),
	})
	if err != nil {
		return nil, err
	}
	return &stores{
		tx:            db.NewTxManager(pool),
		auctions:      auctionpg.NewAuctionRepository(pool),
		bids:          auctionpg.NewBidRepository(pool),
		notifications: notifpg.NewNotificationRepository(pool),
		users:         userpg.NewUserRepository(pool),
		close:         pool.Close,
	}, nil
}

// buildReminderLedger prefers redis so reminder deduplication holds across
// instances; without it the ledger is process local.
func buildReminderLedger(ctx context.Context, cfg *config.Config, logger *zap.Logger) (auctiondomain.ReminderLedger, func()) {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryReminderLedger(), func() {}
	}
	ledger, err := cache.NewRedisReminderLedger(ctx, cache.RedisOptions{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory reminder ledger", zap.Error(err))
		return cache.NewMemoryReminderLedger(), func() {}
	}
	return ledger, func() {
		if err := ledger.Close(); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}
}
