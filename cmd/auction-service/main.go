package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"auction-ledger-service/internal/adapters/broadcaster"
	"auction-ledger-service/internal/adapters/db"
	"auction-ledger-service/internal/adapters/httpapi"
	"auction-ledger-service/internal/adapters/memory"
	"auction-ledger-service/internal/adapters/redis"
	"auction-ledger-service/internal/adapters/scheduler"
	"auction-ledger-service/internal/adapters/ws"
	"auction-ledger-service/internal/app"
	"auction-ledger-service/internal/clock"
	"auction-ledger-service/internal/config"
	"auction-ledger-service/internal/ports/outbound"
)

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	initLogging(cfg)

	log.Info().Msg("Starting Auction Ledger Service...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Select storage backend
	var auctionStore outbound.AuctionStore
	var bidLedger outbound.BidLedger

	switch cfg.Storage.Backend {
	case config.StoreBackendPostgres:
		dbConn, err := db.NewConnection(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer dbConn.Close()

		auctionStore = db.NewAuctionStore(dbConn)
		bidLedger = db.NewBidLedger(dbConn)
		log.Info().Msg("PostgreSQL storage initialized")

	default:
		store := memory.NewStore(log.Logger)
		auctionStore = store
		bidLedger = store
		log.Info().Msg("In-memory storage initialized")
	}

	// Select broadcast backend; the redis backend also drives the expiry sweep
	var eventBroadcaster outbound.Broadcaster
	var redisClient *goredis.Client

	systemClock := clock.System()

	if cfg.Broadcast.Backend == config.BroadcastBackendRedis {
		redisClient, err = redis.Connect(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		log.Info().Msg("Redis connection established")

		eventBroadcaster = broadcaster.NewRedisBroadcaster(broadcaster.RedisBroadcasterParams{
			RedisClient: redisClient,
			Logger:      log.Logger,
		})
	} else {
		eventBroadcaster = broadcaster.NewMemoryBroadcaster(broadcaster.MemoryBroadcasterParams{
			Logger: log.Logger,
		})
	}
	defer eventBroadcaster.Close()

	// Create business services
	auctionService := app.NewAuctionService(app.AuctionServiceParams{
		Store:       auctionStore,
		Broadcaster: eventBroadcaster,
		Clock:       systemClock,
		Logger:      log.Logger,
	})
	bidService := app.NewBidService(app.BidServiceParams{
		Ledger:      bidLedger,
		Broadcaster: eventBroadcaster,
		Clock:       systemClock,
		Logger:      log.Logger,
	})

	log.Info().Msg("Business services initialized")

	var auctionScheduler *scheduler.AuctionScheduler
	if redisClient != nil {
		auctionScheduler = scheduler.NewAuctionScheduler(scheduler.AuctionSchedulerParams{
			RedisClient:    redisClient,
			AuctionService: auctionService,
			Broadcaster:    eventBroadcaster,
			Logger:         log.Logger,
		})
		auctionScheduler.Start()
		auctionService.SetScheduler(auctionScheduler)
		log.Info().Msg("Auction scheduler started")
	}

	wsHandler := ws.NewHandler(ws.WsHandlerParams{
		Config:      cfg,
		Broadcaster: eventBroadcaster,
		Logger:      log.Logger,
	})

	apiServer := httpapi.NewServer(httpapi.ServerParams{
		Config:         cfg,
		AuctionService: auctionService,
		BidService:     bidService,
		WsHandler:      wsHandler,
		Logger:         log.Logger,
	})

	log.Info().Msg("API server initialized")

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting API server")
		if err := apiServer.Start(); err != nil {
			log.Error().Err(err).Msg("Failed to start API server")
			cancel()
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case <-ctx.Done():
		log.Info().Msg("Context cancelled")
	}

	log.Info().Msg("Starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if auctionScheduler != nil {
		auctionScheduler.Stop()
		log.Info().Msg("Auction scheduler stopped")
	}

	if err := apiServer.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping API server")
	}

	log.Info().Msg("Graceful shutdown completed")
}

func initLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Logging.Format == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	zerolog.DefaultContextLogger = &log.Logger
}
