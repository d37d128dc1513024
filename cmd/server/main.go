package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/foliolens/foliolens/internal/clients/yahoo"
	"github.com/foliolens/foliolens/internal/config"
	"github.com/foliolens/foliolens/internal/database"
	"github.com/foliolens/foliolens/internal/insights"
	"github.com/foliolens/foliolens/internal/marketdata"
	"github.com/foliolens/foliolens/internal/portfolio"
	"github.com/foliolens/foliolens/internal/scheduler"
	"github.com/foliolens/foliolens/internal/server"
	"github.com/foliolens/foliolens/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fallback, _ := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	if err != nil {
		fallback, _ := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	log.Info().Msg("Starting FolioLens")

	// Initialize databases
	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache database")
	}
	defer cacheDB.Close()

	portfolioDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "portfolio.db"),
		Profile: database.ProfileStandard,
		Name:    "portfolio",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize portfolio database")
	}
	defer portfolioDB.Close()

	// Market data: Yahoo Finance client behind a TTL cache
	yahooClient := yahoo.NewClient(log)

	cache, err := marketdata.NewCache(cacheDB, cfg.CacheTTL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize market data cache")
	}

	marketService := marketdata.NewService(yahooClient, cache, marketdata.Config{
		BenchmarkSymbol:  cfg.BenchmarkSymbol,
		RiskFreeSymbol:   cfg.RiskFreeSymbol,
		RiskFreeFallback: cfg.RiskFreeFallback,
	}, log)

	// Portfolio store
	positionRepo, err := portfolio.NewRepository(portfolioDB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize portfolio repository")
	}

	// Insights engine
	engine := insights.NewEngine(marketService, insights.Config{
		LookbackPeriod: cfg.LookbackPeriod,
	}, log)

	// Scheduler and background jobs
	sched := scheduler.New(log)
	if err := registerJobs(sched, marketService, cfg, cacheDB, portfolioDB, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to register jobs")
	}
	sched.Start()
	defer sched.Stop()

	// HTTP server
	srv := server.New(server.Config{
		Log:         log,
		Port:        cfg.Port,
		DevMode:     cfg.DevMode,
		CacheDB:     cacheDB,
		PortfolioDB: portfolioDB,
		Insights:    engine,
		Positions:   positionRepo,
		Market:      marketService,
		Lookback:    cfg.LookbackPeriod,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func registerJobs(
	sched *scheduler.Scheduler,
	marketService *marketdata.Service,
	cfg *config.Config,
	cacheDB, portfolioDB *database.DB,
	log zerolog.Logger,
) error {
	// Keep the benchmark series fresh: warm on the cache TTL cadence
	warm := scheduler.NewWarmBenchmarkJob(marketService, cfg.LookbackPeriod, log)
	if err := sched.AddJob("@every 10m", warm); err != nil {
		return err
	}

	// Warm once at startup so the first analysis does not pay the fetch
	if err := sched.RunNow(warm); err != nil {
		log.Warn().Err(err).Msg("Startup benchmark warm failed")
	}

	purge := scheduler.NewPurgeCacheJob(marketService, log)
	if err := sched.AddJob("@hourly", purge); err != nil {
		return err
	}

	checkpoint := scheduler.NewWALCheckpointJob([]*database.DB{cacheDB, portfolioDB}, log)
	if err := sched.AddJob("0 0 3 * * *", checkpoint); err != nil {
		return err
	}

	return nil
}
