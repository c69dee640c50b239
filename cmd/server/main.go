package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/api"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/config"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/database"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/dividend"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/logger"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/portfolio"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/pricehistory"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/repository"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/scheduler"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/service"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/symbols"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/version"
	"github.com/ndewijer/Investment-Portfolio-Tracker/internal/yahoo"
)

// jobTimeout bounds a single run of a background job.
const jobTimeout = 2 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Logger is not configured yet
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger.SetGlobalLogger(log)
	log.Info().Str("version", version.Version).Msg("Starting portfolio tracker")

	ctx := context.Background()

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("Failed to create data directory")
		}
	}

	// Open database connection
	db, err := database.Open(ctx, cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	log.Info().Str("path", cfg.Database.Path).Msg("Connected to database")

	// Create repositories and market data client
	portfolioStore := repository.NewPortfolioStore(db)
	priceRepo := repository.NewPriceRepository(db)
	dividendRepo := repository.NewDividendRepository(db)
	marketData := yahoo.NewFinanceClient()

	// Rebuild in-memory state
	p, err := portfolio.Load(ctx, portfolioStore, marketData, log, portfolio.Options{
		PriceTimeout: cfg.Market.PriceTimeout,
		Concurrency:  cfg.Market.Concurrency,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load portfolio")
	}

	history := pricehistory.NewStore()
	queue := dividend.NewQueue(dividendRepo, log)
	if err := queue.Restore(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to restore pending dividends")
	}

	// Create services
	directory := symbols.NewDirectory(portfolioStore, marketData, log)
	systemService := service.NewSystemService(db)
	portfolioService := service.NewPortfolioService(p, directory, log)
	analyticsService := service.NewAnalyticsService(
		p,
		history,
		priceRepo,
		marketData,
		service.AnalyticsOptions{
			DefaultThreshold: cfg.Risk.VolatilityThreshold,
			Concurrency:      cfg.Market.Concurrency,
		},
		log,
	)
	dividendService := service.NewDividendService(queue, p, log)

	if err := analyticsService.LoadHistory(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to load price history")
	}

	// Background jobs
	sched := scheduler.New(log)
	jobs := []struct {
		schedule string
		job      scheduler.Job
	}{
		{cfg.Scheduler.PriceRefresh, scheduler.NewRefreshPricesJob(portfolioService, jobTimeout, log)},
		{cfg.Scheduler.PriceHistory, scheduler.NewSyncPriceHistoryJob(analyticsService, jobTimeout, log)},
		{cfg.Scheduler.Dividends, scheduler.NewReinvestDividendsJob(dividendService, jobTimeout, log)},
	}
	for _, j := range jobs {
		if err := sched.AddJob(j.schedule, j.job); err != nil {
			log.Fatal().Err(err).Str("job", j.job.Name()).Msg("Failed to register job")
		}
	}
	sched.Start()

	// Create router
	router := api.NewRouter(systemService, portfolioService, analyticsService, dividendService, cfg, log)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	sched.Stop()

	log.Info().Msg("Server exited")
}
