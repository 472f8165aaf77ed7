package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/postway/postway/internal/config"
	"github.com/postway/postway/internal/executor"
	"github.com/postway/postway/internal/httpserver"
	"github.com/postway/postway/internal/httpserver/deps"
	"github.com/postway/postway/internal/ledger"
	"github.com/postway/postway/internal/logger"
	"github.com/postway/postway/internal/store/sqlite"
	"github.com/postway/postway/internal/version"
)

type App struct {
	cfg    *config.Config
	logger logger.Logger
	server *httpserver.Server
	store  *sqlite.Store
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Open storage early - fail fast if unavailable
	loggerClient.Infof("Opening sqlite database at %s", cfg.DBPath)
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		loggerClient.Errorf("Failed to open database: %v", err)
		os.Exit(1)
	}
	if err := store.Migrate(); err != nil {
		loggerClient.Errorf("Failed to migrate database: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("Database initialized successfully")

	// The ledger is the only component that writes attempt rows; it is
	// constructed once here and handed to handlers explicitly.
	historyLedger := ledger.New(store, nil)
	endpointHistory := ledger.NewEndpointHistory(store, nil)
	requestExecutor := executor.New(cfg.ExecuteTimeout)

	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		Development:     cfg.IsDevelopment(),
		Executor:        requestExecutor,
		Ledger:          historyLedger,
		Endpoints:       endpointHistory,
		DB:              store,
		TrustProxy:      cfg.TrustProxy,
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitPerMin: cfg.RateLimitPerMin,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:    cfg,
		logger: loggerClient,
		server: server,
		store:  store,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting postway v%s on %s (%s mode)",
		version.Version, a.cfg.ListenPort, a.cfg.Env)
	a.logger.Infof("postway %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if err := a.store.Close(); err != nil {
		a.logger.Warnf("failed to close database: %v", err)
	} else {
		a.logger.Info("✅ Database closed cleanly")
	}

	a.logger.Info("✅ postway stopped cleanly")
	return nil
}
