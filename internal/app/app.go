package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mnavcli/internal/config"
	"mnavcli/internal/feeds"
	"mnavcli/internal/infrastructure"
	"mnavcli/internal/mnav"
	"mnavcli/internal/registry"
	"mnavcli/internal/security"
	"mnavcli/internal/services"
	transport "mnavcli/internal/transport/http"
	"mnavcli/internal/websocket"
)

// AppName identifies the product in startup logs.
const AppName = "mNAV Pulse"

// Application is the assembled dashboard server.
type Application struct {
	Config    *config.Config
	Logger    *slog.Logger
	Telemetry *infrastructure.OTelProviders
	Registry  *registry.Registry
	Service   *services.MNAVService
	Health    *services.HealthService
	Hub       *websocket.Hub
	Server    *http.Server
}

// NewApplication loads configuration and wires every component.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("application starting",
		slog.String("name", AppName),
		slog.String("version", infrastructure.Version()))

	telemetry, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	reg, err := buildRegistry(cfg, logger)
	if err != nil {
		return nil, err
	}

	assembler := feeds.NewAssembler(
		feeds.NewCryptoFeed(cfg.Feeds.Crypto),
		feeds.NewStockFeed(cfg.Feeds.Stocks),
		feeds.NewForexFeed(cfg.Feeds.Forex),
		feeds.NewLSTFeed(cfg.Feeds.LST),
		logger, telemetry,
	)

	history := services.NewHistory(cfg.Engine.SnapshotHistoryTTL, nil)
	service, err := services.NewMNAVService(services.MNAVServiceOptions{
		Registry:  reg,
		Assembler: assembler,
		History:   history,
		EngineConfig: mnav.Config{
			OutlierThreshold: cfg.Engine.OutlierThreshold,
			SanityUpperBound: cfg.Engine.SanityUpperBound,
		},
		MaxConcurrency: cfg.Engine.MaxConcurrency,
		Logger:         logger,
		Metrics:        telemetry,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build mNAV service: %w", err)
	}

	// Snapshots older than two refresh intervals count as stale.
	health := services.NewHealthService(reg, history, 2*cfg.Engine.RefreshInterval)
	hub := websocket.NewHub(logger, telemetry)

	router := transport.NewRouter(transport.RouterOptions{
		Config:    cfg,
		Service:   service,
		Health:    health,
		Hub:       hub,
		Logger:    logger,
		Telemetry: telemetry,
	})

	return &Application{
		Config:    cfg,
		Logger:    logger,
		Telemetry: telemetry,
		Registry:  reg,
		Service:   service,
		Health:    health,
		Hub:       hub,
		Server: &http.Server{
			Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:        router,
			ReadTimeout:    cfg.Server.ReadTimeout,
			WriteTimeout:   cfg.Server.WriteTimeout,
			IdleTimeout:    cfg.Server.IdleTimeout,
			MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
		},
	}, nil
}

// buildRegistry picks the Sheets source when a spreadsheet is configured,
// else the local companies file.
func buildRegistry(cfg *config.Config, logger *slog.Logger) (*registry.Registry, error) {
	var loader registry.CompanyLoader
	if cfg.Registry.SpreadsheetID != "" {
		credentials := security.NewCredentialsManager(logger)
		option, err := credentials.SheetsClientOption(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to obtain sheets credentials: %w", err)
		}
		loader, err = registry.NewSheetsLoader(context.Background(), option,
			cfg.Registry.SpreadsheetID, cfg.Registry.CompaniesRange, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to build sheets loader: %w", err)
		}
		logger.Info("company registry source: google sheets",
			slog.String("spreadsheet_id", cfg.Registry.SpreadsheetID))
	} else {
		loader = registry.NewFileLoader(cfg.Paths.CompaniesFile)
		logger.Info("company registry source: local file",
			slog.String("path", cfg.Paths.CompaniesFile))
	}

	return registry.New(registry.Options{
		Loader:           loader,
		ActionsFile:      cfg.Paths.ActionsFile,
		StaticQuotesFile: cfg.Paths.StaticQuotesFile,
		OverridesFile:    cfg.Paths.OverridesFile,
		CacheTTL:         cfg.Registry.CacheTTL,
		Logger:           logger,
	})
}

// Run starts the server and the refresh loop, then blocks until interrupted.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.Hub.Start()
	go a.refreshLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case sig := <-sigCh:
		a.Logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	cancel()
	return a.Stop(context.Background())
}

// refreshLoop recomputes the universe on the configured interval and
// notifies websocket clients.
func (a *Application) refreshLoop(ctx context.Context) {
	// Initial run so the first request is served from history.
	a.refresh(ctx)

	ticker := time.NewTicker(a.Config.Engine.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.refresh(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *Application) refresh(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, a.Config.Feeds.FetchTimeout)
	defer cancel()

	set, err := a.Service.Refresh(runCtx)
	if err != nil {
		a.Logger.ErrorContext(runCtx, "scheduled refresh failed",
			slog.String("error", err.Error()))
		return
	}
	a.Hub.BroadcastSnapshotRefresh(set.AsOf, len(set.Valuations))
}

// Stop shuts everything down gracefully.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	a.Hub.Stop()

	if a.Telemetry != nil {
		if err := a.Telemetry.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "telemetry shutdown error",
				slog.String("error", err.Error()))
		}
	}
	if err := infrastructure.CloseLogFile(); err != nil {
		return err
	}

	a.Logger.InfoContext(ctx, "shutdown complete")
	return nil
}
