// cmd/nl2sql-server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Violet0725/NLtoSQL/internal/common/config"
	"github.com/Violet0725/NLtoSQL/internal/common/database"
	"github.com/Violet0725/NLtoSQL/internal/common/logger"
	"github.com/Violet0725/NLtoSQL/internal/common/observability"
	"github.com/Violet0725/NLtoSQL/internal/model"
	"github.com/Violet0725/NLtoSQL/internal/nl2sql/executor"
	"github.com/Violet0725/NLtoSQL/internal/nl2sql/schema"
	"github.com/Violet0725/NLtoSQL/internal/seed"
	"github.com/Violet0725/NLtoSQL/internal/server"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting nl2sql server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init SQLite with retry ---
	var db *database.SQLiteClient
	err = retryWithBackoff(func() error {
		var err error
		db, err = database.NewSQLite(cfg.Database.SQLite)
		if err != nil {
			return err
		}
		return db.Ping(ctx)
	}, 5, time.Second, zapLog, "SQLite connection")

	if err != nil {
		zapLog.Fatal("sqlite failed after retries", zap.Error(err))
	}
	defer db.Close()
	zapLog.Info("SQLite connected successfully", zap.String("path", cfg.Database.SQLite.Path))

	// Seed the sample dataset if the tables are missing.
	if err := seed.EnsureSeeded(ctx, db.DB, log); err != nil {
		zapLog.Fatal("database seeding failed", zap.Error(err))
	}

	// --- Init Model Client with retry ---
	modelClient := model.NewClient(&model.Config{
		BaseURL:      cfg.Model.BaseURL,
		AdapterPath:  cfg.Model.AdapterPath,
		MaxNewTokens: cfg.Model.MaxNewTokens,
		Temperature:  cfg.Model.Temperature,
		Timeout:      time.Duration(cfg.Model.Timeout) * time.Millisecond,
		MaxRetries:   cfg.Model.MaxRetries,
	}, log)

	// A failed load is not fatal: the server comes up and reports
	// model_loaded: false until the inference server is reachable.
	err = retryWithBackoff(func() error {
		return modelClient.Load(ctx)
	}, 5, 2*time.Second, zapLog, "Model load")

	if err != nil {
		zapLog.Warn("model not loaded, /ask will return 503 until it is", zap.Error(err))
	} else {
		zapLog.Info("Model loaded successfully", zap.String("adapter", cfg.Model.AdapterPath))
	}
	defer modelClient.Close()

	// --- Build the pipeline ---
	schemaReader := schema.NewReader(cfg.Database.SQLite.Path)
	queryExecutor := executor.NewExecutor(&executor.Config{
		DatabasePath: cfg.Database.SQLite.Path,
		Timeout:      time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
	}, log)

	srv := server.New(&server.Config{
		Addr:         cfg.Server.Addr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Millisecond,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Millisecond,
	}, modelClient, schemaReader, queryExecutor, obs, log)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()
	zapLog.Info("HTTP server started", zap.String("addr", cfg.Server.Addr()))

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		zapLog.Info("Shutdown signal received, stopping server...", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			zapLog.Error("server exited with error", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Shutdown complete")
}
