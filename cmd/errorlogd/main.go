package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap/zapcore"

	"github.com/kerlexov/errorlog/pkg/api"
	"github.com/kerlexov/errorlog/pkg/apperror"
	"github.com/kerlexov/errorlog/pkg/auth"
	"github.com/kerlexov/errorlog/pkg/config"
	"github.com/kerlexov/errorlog/pkg/errlog"
	"github.com/kerlexov/errorlog/pkg/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := errlog.Options{
		ConsoleLevel: consoleLevel(cfg.Logger.ConsoleLevel),
		RecentCount:  cfg.Logger.RecentCount,
		SnapshotTail: cfg.Logger.SnapshotTail,
	}

	// Initialize the optional queryable index. When search is enabled the
	// store owns the index and keeps it in step with every Store call.
	var store *storage.SQLiteStore
	if cfg.Storage.Enabled {
		if cfg.Search.Enabled {
			store, err = storage.NewSQLiteStoreWithSearch(cfg.Storage.Path, cfg.Search.IndexPath)
		} else {
			store, err = storage.NewSQLiteStore(cfg.Storage.Path)
		}
		if err != nil {
			log.Fatalf("Failed to initialize error store: %v", err)
		}
		defer store.Close()
		opts.Store = store
	} else if cfg.Search.Enabled {
		search, err := storage.NewSearchService(cfg.Search.IndexPath)
		if err != nil {
			log.Fatalf("Failed to initialize search index: %v", err)
		}
		defer search.Close()
		opts.Search = search
	}

	logger, err := errlog.New(cfg.Logger.RootDir, opts)
	if err != nil {
		log.Fatalf("Failed to initialize error logger: %v", err)
	}
	defer logger.Close()
	errlog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start periodic retention cleanup against the store
	if store != nil {
		policy := storage.RetentionPolicy{
			DefaultDays: cfg.Retention.DefaultDays,
			BySeverity:  make(map[apperror.Severity]int, len(cfg.Retention.BySeverity)),
		}
		for severity, days := range cfg.Retention.BySeverity {
			policy.BySeverity[apperror.Severity(severity)] = days
		}

		retention := storage.NewRetentionService(store, policy)
		go retention.StartPeriodicCleanup(ctx, cfg.Retention.CleanupInterval)
	}

	// Start the inspection API
	if cfg.API.Enabled {
		var errStore storage.ErrorStore
		if store != nil {
			errStore = store
		}

		tokenConfig, err := auth.LoadTokenConfig(cfg.API.AuthTokensFile)
		if err != nil {
			log.Fatalf("Failed to load API token configuration: %v", err)
		}

		apiServer := api.NewServer(cfg.API, logger, errStore, auth.NewTokenManager(tokenConfig))
		go func() {
			if err := apiServer.Start(ctx); err != nil {
				log.Printf("API server error: %v", err)
			}
		}()
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	cancel()
}

func consoleLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
