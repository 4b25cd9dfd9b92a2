package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/edgehunter/edgehunter/internal/clients/coingecko"
	"github.com/edgehunter/edgehunter/internal/clients/marketdata"
	"github.com/edgehunter/edgehunter/internal/clients/quotecache"
	"github.com/edgehunter/edgehunter/internal/clients/ratelimit"
	"github.com/edgehunter/edgehunter/internal/clients/yahoo"
	"github.com/edgehunter/edgehunter/internal/config"
	"github.com/edgehunter/edgehunter/internal/database"
	"github.com/edgehunter/edgehunter/internal/events"
	"github.com/edgehunter/edgehunter/internal/modules/alerts"
	"github.com/edgehunter/edgehunter/internal/modules/opportunities"
	"github.com/edgehunter/edgehunter/internal/modules/scanner"
	"github.com/edgehunter/edgehunter/internal/modules/technicals"
	"github.com/edgehunter/edgehunter/internal/modules/universe"
	"github.com/edgehunter/edgehunter/internal/reliability"
	"github.com/edgehunter/edgehunter/internal/scheduler"
	"github.com/edgehunter/edgehunter/internal/server"
	"github.com/edgehunter/edgehunter/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootstrapLog := logger.New(logger.Config{Level: "info", Pretty: true})
		bootstrapLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting EdgeHunter")

	// Databases
	marketDB, err := database.New(database.Config{
		Path:    cfg.MarketDBPath,
		Profile: database.ProfileStandard,
		Name:    "market",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open market database")
	}
	defer marketDB.Close()

	cacheDB, err := database.New(database.Config{
		Path:    cfg.CacheDBPath,
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	for _, db := range []*database.DB{marketDB, cacheDB} {
		if err := db.Migrate(); err != nil {
			log.Fatal().Err(err).Str("database", db.Name()).Msg("Failed to run migrations")
		}
	}

	databases := map[string]*database.DB{
		"market": marketDB,
		"cache":  cacheDB,
	}

	// Repositories
	stockRepo := universe.NewStockRepository(marketDB.Conn(), log)
	opportunityRepo := opportunities.NewRepository(marketDB.Conn(), log)
	alertRepo := alerts.NewRepository(marketDB.Conn(), log)

	// Market data clients behind one shared rate limiter and cache
	limiter := ratelimit.New()
	cache := quotecache.New(cacheDB.Conn(), time.Duration(cfg.QuoteCacheTTL)*time.Minute, log)

	yahooClient := yahoo.NewClient(limiter, log)
	geckoClient := coingecko.NewClient(limiter, log)

	equityQuotes := quotecache.NewCachedQuoter(marketdata.SourceYahooFinance, yahooClient, cache)
	cryptoQuotes := quotecache.NewCachedQuoter(marketdata.SourceCoinGecko, geckoClient, cache)

	// Scan pipeline
	bus := events.NewBus(log)
	scanService := scanner.NewService(
		scanner.NewSectorLaggardDetector(equityQuotes, stockRepo, log),
		scanner.NewCryptoCorrelationDetector(cryptoQuotes, equityQuotes, log),
		scanner.NewOversoldDetector(stockRepo, log),
		opportunityRepo,
		bus,
		log,
	)

	technicalsService := technicals.NewService(yahooClient, log)

	// Scheduler and jobs
	sched := scheduler.New(log)

	scanJob := scheduler.NewScanJob(scanService, alertRepo, log)
	if err := sched.AddJob(cfg.ScanSchedule, scanJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register scan job")
	}

	maintenanceJob := reliability.NewMaintenanceJob(databases, cache, log)
	if err := sched.AddJob("0 3 * * *", maintenanceJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register maintenance job")
	}

	if cfg.BackupsEnabled() {
		if err := registerBackupJob(cfg, sched, databases, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to register backup job")
		}
	}

	sched.Start()
	defer sched.Stop()

	// HTTP server
	srv := server.New(server.Config{
		Port:          cfg.Port,
		Log:           log,
		DevMode:       cfg.DevMode,
		Scanner:       scanService,
		Opportunities: opportunityRepo,
		Alerts:        alertRepo,
		Technicals:    technicals.NewHandler(technicalsService, log),
		Events:        server.NewEventsStreamHandler(bus, log),
		System:        server.NewSystemHandlers(databases, log),
	})

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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func registerBackupJob(cfg *config.Config, sched *scheduler.Scheduler, databases map[string]*database.DB, log zerolog.Logger) error {
	s3Client, err := reliability.NewS3Client(context.Background(), reliability.S3Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	}, log)
	if err != nil {
		return err
	}

	backupService := reliability.NewBackupService(s3Client, databases, "./data", log)
	return sched.AddJob(cfg.BackupSchedule, scheduler.NewBackupJob(backupService, log))
}
