package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"mnavcli/internal/config"
	apierrors "mnavcli/internal/errors"
	"mnavcli/internal/infrastructure"
	"mnavcli/internal/middleware"
	"mnavcli/internal/services"
	"mnavcli/internal/websocket"

	"github.com/go-chi/render"
)

// RouterOptions carries everything the router assembles.
type RouterOptions struct {
	Config    *config.Config
	Service   ValuationReader
	Health    HealthChecker
	Hub       *websocket.Hub
	Logger    *slog.Logger
	Telemetry *infrastructure.OTelProviders
}

// NewRouter builds the full chi router with the middleware chain and all
// API routes.
func NewRouter(opts RouterOptions) chi.Router {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StructuredLogger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Compress(5))

	if opts.Config != nil && opts.Config.Security.EnableCORS {
		r.Use(middleware.CORS(middleware.CORSConfig{
			AllowedOrigins: opts.Config.Security.AllowedOrigins,
		}))
	}
	if opts.Config != nil && opts.Config.Security.RateLimit.Enabled {
		rl := middleware.NewRateLimiter(
			opts.Config.Security.RateLimit.RPS,
			opts.Config.Security.RateLimit.Burst,
			logger,
		)
		r.Use(rl.Handler)
	}

	companies := NewCompanyHandler(opts.Service, logger)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/companies", companies.Routes())
		r.Get("/stats", StatsHandler(opts.Service, logger))
		r.Get("/health", HealthHandler(opts.Health))
		r.Post("/refresh", RefreshHandler(opts.Service, logger, func(set services.ValuationSet) {
			if opts.Hub != nil {
				opts.Hub.BroadcastSnapshotRefresh(set.AsOf, len(set.Valuations))
			}
		}))
	})

	if opts.Telemetry != nil && opts.Telemetry.PrometheusHTTP != nil {
		r.Handle("/metrics", opts.Telemetry.PrometheusHTTP)
	}

	if opts.Hub != nil {
		r.Get("/ws", wsHandler(opts, logger))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrNotFound))
	})

	return r
}

// wsHandler upgrades dashboard clients onto the refresh stream.
func wsHandler(opts RouterOptions, logger *slog.Logger) http.HandlerFunc {
	var wsCfg config.WebSocketConfig
	var origins []string
	if opts.Config != nil {
		wsCfg = opts.Config.WebSocket
		origins = opts.Config.Security.AllowedOrigins
	}
	upgrader := websocket.Upgrader(wsCfg, origins)

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.WarnContext(r.Context(), "websocket upgrade failed",
				slog.String("error", err.Error()))
			return
		}
		websocket.Serve(opts.Hub, conn, wsCfg, logger)
	}
}
