package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/azores-high-index/internal/adapter/cache"
	"github.com/couchcryptid/azores-high-index/internal/adapter/chart"
	httpadapter "github.com/couchcryptid/azores-high-index/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/azores-high-index/internal/adapter/kafka"
	"github.com/couchcryptid/azores-high-index/internal/adapter/netcdf"
	"github.com/couchcryptid/azores-high-index/internal/adapter/parquet"
	"github.com/couchcryptid/azores-high-index/internal/adapter/xlsx"
	"github.com/couchcryptid/azores-high-index/internal/config"
	"github.com/couchcryptid/azores-high-index/internal/observability"
	"github.com/couchcryptid/azores-high-index/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	loader := netcdf.NewLoader(netcdf.Config{
		Path:    cfg.DataPath,
		SLPVar:  cfg.SLPVariable,
		LatVar:  cfg.LatVariable,
		LonVar:  cfg.LonVariable,
		TimeVar: cfg.TimeVariable,
	}, logger)

	var publishers []pipeline.Publisher
	if cfg.ParquetEnabled {
		publishers = append(publishers, parquet.NewWriter(cfg.OutputDir, logger))
	}
	if cfg.XLSXEnabled {
		publishers = append(publishers, xlsx.NewWriter(cfg.OutputDir, logger))
	}
	if cfg.PlotsEnabled {
		publishers = append(publishers, chart.NewWriter(cfg.OutputDir, logger))
	}
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publishers = append(publishers, writer)
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	}

	analyzer := pipeline.NewAnalyzer(logger, metrics)
	calc := cache.NewCachedCalculator(analyzer, cfg.CacheSize, metrics.CacheLookups)

	p := pipeline.New(loader, analyzer, publishers, logger, metrics, pipeline.Options{
		Params:  cfg.Params,
		Retries: cfg.PublishRetries,
	})

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, calc, cfg.Params, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Compute and publish the scheduled report. The server keeps answering
	// on-demand requests once it finishes.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
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
