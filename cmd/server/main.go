package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/GeekyCryptoManiac/hdb-resale-analytics/config"
	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/alerts"
	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/analytics"
	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/api"
	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/database"
	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/geocoding"
	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/geometry"
	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/importer"
	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/processor"
	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/queue"
	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/recommend"
	"github.com/GeekyCryptoManiac/hdb-resale-analytics/internal/scheduler"
)

// geocodeBatchLimit caps one coordinate backfill run. Nominatim is rate
// limited to one request per second.
const geocodeBatchLimit = 200

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		logger.WithError(err).Fatal("Failed to create database directory")
	}
	logger.WithField("path", cfg.Database.Path).Info("Using database")

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// Import pipeline: CSV importer -> record queue -> batch processors ->
	// gorm writer.
	writer, err := database.NewWriter(cfg.Database.Path, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize batch writer")
	}

	recordQueue := queue.NewRecordQueue(cfg.Import.QueueSize, logger)
	batchProcessor := processor.NewBatchProcessor(writer, recordQueue, cfg, logger)
	batchProcessor.Start()
	defer recordQueue.Close()

	csvImporter := importer.New(recordQueue, cfg.Import.MaxBatchSize, logger)

	engine := analytics.NewEngine(db, logger)
	alertService := alerts.NewService(*cfg, logger)

	importScheduler := scheduler.NewScheduler(scheduler.Jobs{
		StoreEmpty: func() (bool, error) {
			agg, err := db.BaseAggregate()
			if err != nil {
				return false, err
			}
			return agg.Count == 0, nil
		},
		RunImport: func() error {
			stats, err := csvImporter.ImportFile(context.Background(), cfg.Import.DataFile)
			if err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{
				"total_rows": stats.TotalRows,
				"parsed":     stats.Parsed,
				"skipped":    stats.Skipped,
				"elapsed":    stats.Elapsed.String(),
			}).Info("Import run finished")
			return nil
		},
		SendDigest: func() error {
			year := time.Now().Format("2006")
			towns, err := engine.TopAppreciatingTowns(year, 5)
			if err != nil {
				return err
			}
			return alertService.SendMarketDigest(year, towns)
		},
	}, logger)
	importScheduler.Start()
	defer importScheduler.Stop()

	cacheDir := filepath.Join(os.TempDir(), "hdb-resale-analytics", "geocode_cache")
	geocoder := geocoding.NewGeocoder(logger, cacheDir)

	recommender := recommend.NewService(db, logger)
	boundaries := geometry.NewBuilder(db, logger)

	handler := api.NewHandler(engine, db, recommender, boundaries, func() (int, error) {
		return geocoder.Backfill(db, geocodeBatchLimit)
	}, cfg, logger)

	router := gin.Default()
	api.SetupRoutes(router, handler, cfg.Server.AllowOrigins)

	// Shut the pipeline down cleanly on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-quit
		logger.WithField("signal", sig.String()).Info("Shutting down")
		importScheduler.Stop()
		batchProcessor.Stop()
		recordQueue.Close()
		db.Close()
		os.Exit(0)
	}()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.WithField("addr", addr).Info("Starting server")
	if err := router.Run(addr); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
