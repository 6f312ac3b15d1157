package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Register pgx as database/sql driver
	"github.com/otbridge/plantgate/internal/api"
	"github.com/otbridge/plantgate/internal/plant"
	"github.com/otbridge/plantgate/internal/state"
	"github.com/otbridge/plantgate/internal/storage"
	"github.com/otbridge/plantgate/internal/tools"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// Logger
	logger := mustBuildLogger(envOrDefault("PLANTGATE_LOG_LEVEL", "info"))
	defer logger.Sync() //nolint:errcheck // best-effort flush

	// Config from env
	httpPort := envOrDefault("PLANTGATE_HTTP_PORT", "8080")
	clickhouseDSN := os.Getenv("CLICKHOUSE_DSN")
	postgresDSN := os.Getenv("POSTGRES_DSN")
	initTimeout := envOrDefaultInt("PLANTGATE_INIT_TIMEOUT_S", 30)

	logger.Info("starting plantgate server",
		zap.String("http_port", httpPort),
		zap.Int("init_timeout_s", initTimeout),
	)

	// Configuration source — Postgres plant_config table or env fallback
	var configSource plant.ConfigSource
	if postgresDSN != "" {
		db, err := sql.Open("pgx", postgresDSN)
		if err != nil {
			logger.Fatal("failed to open postgres", zap.Error(err))
		}
		defer func() { _ = db.Close() }()
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(context.Background()); err != nil {
			logger.Fatal("failed to ping postgres", zap.Error(err))
		}
		configSource = plant.NewPGConfigSource(db)
		logger.Info("postgres config source connected")
	} else {
		configSource = plant.EnvConfigFromEnviron()
		logger.Info("no POSTGRES_DSN set, using env config source")
	}

	// Plant — the simulator stands in until a live driver endpoint is wired
	sim := plant.DefaultSimPlant()
	logger.Info("using simulated plant")

	// Audit storage — ClickHouse or LogWriter fallback
	var writer storage.EventWriter
	if clickhouseDSN != "" {
		chWriter, err := storage.NewClickHouseWriter(clickhouseDSN, logger)
		if err != nil {
			logger.Warn("clickhouse connection failed, falling back to log writer",
				zap.Error(err),
			)
			writer = storage.NewLogWriter(logger)
		} else {
			writer = chWriter
			logger.Info("clickhouse writer connected")
		}
	} else {
		writer = storage.NewLogWriter(logger)
		logger.Info("no CLICKHOUSE_DSN set, using log writer")
	}
	defer writer.Close()

	// Runtime state manager + tool service
	stateMgr := state.NewManager(state.Sources{
		Config:    configSource,
		Documents: plant.NewFileDocumentStore(),
		Namespace: sim,
	}, logger)
	svc := tools.NewService(tools.DefaultRegistry(), stateMgr, sim, sim, writer, logger)

	// Pre-warm the runtime state so TLS material is known before listening.
	// A failure here is not fatal: initialization retries on first request.
	var creds state.Credentials
	warmCtx, cancelWarm := context.WithTimeout(context.Background(), time.Duration(initTimeout)*time.Second)
	if st, err := stateMgr.Get(warmCtx); err != nil {
		logger.Warn("runtime state pre-warm failed, will retry on first request", zap.Error(err))
	} else {
		creds = st.Credentials()
	}
	cancelWarm()

	deps := &api.Dependencies{
		Tools:  svc,
		Logger: logger,
	}
	httpServer := &http.Server{
		Addr:         ":" + httpPort,
		Handler:      api.NewRouter(deps),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		var err error
		if creds.KeyPath != "" && creds.CertPath != "" {
			logger.Info("https server listening",
				zap.String("addr", httpServer.Addr),
				zap.String("cert", creds.CertPath),
			)
			err = httpServer.ListenAndServeTLS(creds.CertPath, creds.KeyPath)
		} else {
			logger.Info("http server listening", zap.String("addr", httpServer.Addr))
			err = httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	// Block until shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", zap.String("signal", sig.String()))

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", zap.Error(err))
	}

	logger.Info("plantgate server stopped")
}

func mustBuildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	return logger
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
