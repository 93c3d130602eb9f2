// Package main runs the token configuration API:
// - HTTP + WebSocket validation endpoints
// - token request storage (memory or PostgreSQL)
// - validation event recording (memory or ClickHouse)
// - Prometheus metrics on /metrics
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"memecoin-creator/internal/api"
	"memecoin-creator/internal/config"
	"memecoin-creator/internal/logging"
	"memecoin-creator/internal/network"
	"memecoin-creator/internal/observability"
	"memecoin-creator/internal/storage"
	chstore "memecoin-creator/internal/storage/clickhouse"
	"memecoin-creator/internal/storage/memory"
	"memecoin-creator/internal/storage/migrations"
	pgstore "memecoin-creator/internal/storage/postgres"
)

// stores holds the storage implementations used by the API.
type stores struct {
	requests storage.TokenRequestStore
	events   storage.ValidationEventStore
}

func main() {
	configFile := flag.String("config", "", "Path to YAML config file")
	envFile := flag.String("env-file", ".env", "Path to .env file (missing file is ignored)")

	// Overrides; only flags set on the command line replace loaded values.
	httpAddr := flag.String("http-addr", "", "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", true, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	corsOrigins := flag.String("cors-origins", "", "Comma-separated allowed browser origins")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")

	flag.Parse()

	overrides := func(cfg *config.Config) {
		flag.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "http-addr":
				cfg.HTTPAddr = *httpAddr
			case "postgres-dsn":
				cfg.PostgresDSN = *postgresDSN
			case "clickhouse-dsn":
				cfg.ClickhouseDSN = *clickhouseDSN
			case "use-memory":
				cfg.UseMemory = *useMemory
			case "cors-origins":
				cfg.CORSOrigins = splitList(*corsOrigins)
			case "log-level":
				cfg.LogLevel = *logLevel
			}
		})
	}

	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: *configFile,
		EnvFile:    *envFile,
		Override:   overrides,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		os.Exit(1)
	}

	os.Exit(finish(logger, run(cfg, logger)))
}

// finish logs the outcome of run and flushes the logger before the process
// exits. It returns the exit code.
func finish(logger *zap.Logger, err error) int {
	code := 0
	if err != nil {
		logger.Error("server error", zap.Error(err))
		code = 1
	} else {
		logger.Info("shutdown complete")
	}
	_ = logger.Sync()
	return code
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	chain, err := network.Lookup(cfg.Network)
	if err != nil {
		return err
	}

	st, cleanup, err := createStores(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("create stores: %w", err)
	}
	defer cleanup()

	metrics := observability.DefaultMetrics

	recorder := api.NewRecorder(api.RecorderOptions{
		Store:         st.events,
		Metrics:       metrics,
		Logger:        logger.Named("recorder"),
		QueueSize:     cfg.Recorder.QueueSize,
		BatchSize:     cfg.Recorder.BatchSize,
		FlushInterval: cfg.Recorder.FlushInterval,
	})
	recorderCtx, stopRecorder := context.WithCancel(context.Background())
	recorderDone := make(chan struct{})
	go func() {
		defer close(recorderDone)
		_ = recorder.Run(recorderCtx)
	}()

	service := api.NewTokenService(api.ServiceOptions{
		Requests: st.requests,
		Events:   st.events,
		Recorder: recorder,
		Metrics:  metrics,
		Logger:   logger.Named("tokens"),
	})

	srv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: api.NewRouter(api.RouterOptions{
			Service:     service,
			CORSOrigins: cfg.CORSOrigins,
			Metrics:     metrics,
			Logger:      logger.Named("api"),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("network", chain.Name),
			zap.Uint64("chain_id", chain.ID),
			zap.Bool("use_memory", cfg.UseMemory))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("received signal, initiating graceful shutdown")
	case err := <-errCh:
		if err != nil {
			stopRecorder()
			<-recorderDone
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown timed out", zap.Error(err))
	}

	// Stop the recorder after the server so in-flight validations are flushed.
	stopRecorder()
	select {
	case <-recorderDone:
	case <-shutdownCtx.Done():
		logger.Warn("event recorder did not stop before shutdown timeout")
	}
	return nil
}

// createStores creates the stores for the configured backend.
func createStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, func(), error) {
	if cfg.UseMemory {
		logger.Info("using in-memory storage")
		return &stores{
			requests: memory.NewTokenRequestStore(),
			events:   memory.NewValidationEventStore(),
		}, func() {}, nil
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	applied, err := migrations.RunPostgresMigrations(ctx, pool)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}
	logger.Info("postgres ready",
		zap.String("dsn", config.RedactedDSN(cfg.PostgresDSN)),
		zap.Strings("migrations", applied))

	// ClickHouse; migrations return a connection bound to the target database.
	chConn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}
	logger.Info("clickhouse ready", zap.String("dsn", config.RedactedDSN(cfg.ClickhouseDSN)))

	st := &stores{
		requests: pgstore.NewTokenRequestStore(pool),
		events:   chstore.NewValidationEventStore(chConn),
	}
	cleanup := func() {
		_ = chConn.Close()
		pool.Close()
	}
	return st, cleanup, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
