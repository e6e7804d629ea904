package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/hvi-planner/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/hvi-planner/internal/adapter/kafka"
	"github.com/couchcryptid/hvi-planner/internal/adapter/sqlite"
	"github.com/couchcryptid/hvi-planner/internal/config"
	"github.com/couchcryptid/hvi-planner/internal/dataset"
	"github.com/couchcryptid/hvi-planner/internal/observability"
	"github.com/couchcryptid/hvi-planner/internal/planner"
	"github.com/couchcryptid/hvi-planner/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, closeSrc, err := openSource(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open zone source", "source", cfg.DataSource, "error", err)
		os.Exit(1)
	}
	zones, err := store.Load(ctx, src)
	if closeErr := closeSrc.Close(); closeErr != nil {
		logger.Warn("zone source close error", "error", closeErr)
	}
	if err != nil {
		logger.Error("failed to load zones", "source", cfg.DataSource, "error", err)
		os.Exit(1)
	}
	logger.Info("zones loaded", "source", cfg.DataSource, "count", zones.Len())

	// Plan publishing is feature-flagged via KAFKA_ENABLED.
	var opts []planner.Option
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		opts = append(opts, planner.WithPublisher(writer))
		logger.Info("plan publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaPlanTopic)
	} else {
		logger.Info("plan publishing disabled")
	}

	svc, err := planner.New(zones, cfg.ScoreCacheSize, logger, metrics, opts...)
	if err != nil {
		logger.Error("failed to create planner", "error", err)
		os.Exit(1)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, cfg.CORSAllowedOrigins, logger, metrics)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// openSource returns the configured zone source. The closer releases any
// handle the source holds once the zones are in memory.
func openSource(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Source, io.Closer, error) {
	switch cfg.DataSource {
	case config.SourceSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if cfg.GenerateIfMissing {
			if err := seedIfEmpty(ctx, db, cfg.DataSeed, logger); err != nil {
				db.Close() //nolint:errcheck // already failing
				return nil, nil, err
			}
		}
		return db, db, nil
	default:
		src := store.FileSource{
			Path:     cfg.DataFile,
			Generate: cfg.GenerateIfMissing,
			Seed:     cfg.DataSeed,
			Logger:   logger,
		}
		return src, nopCloser{}, nil
	}
}

func seedIfEmpty(ctx context.Context, db *sqlite.DB, seed int64, logger *slog.Logger) error {
	fc, err := db.LoadZones(ctx)
	if err != nil {
		return err
	}
	if len(fc.Features) > 0 {
		return nil
	}
	generated := dataset.GenerateKingston(seed)
	if err := db.SaveZones(ctx, generated); err != nil {
		return fmt.Errorf("seed zones table: %w", err)
	}
	logger.Info("seeded empty zone table with synthetic data", "count", len(generated.Features))
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
