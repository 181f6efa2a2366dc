package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "mnavcli/internal/errors"
	"mnavcli/internal/mnav"
	"mnavcli/internal/registry"
	"mnavcli/internal/services"
)

// CompanyHandler serves the company-facing endpoints.
type CompanyHandler struct {
	service ValuationReader
	logger  *slog.Logger
}

// NewCompanyHandler creates the handler.
func NewCompanyHandler(service ValuationReader, logger *slog.Logger) *CompanyHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompanyHandler{
		service: service,
		logger:  logger.With(slog.String("component", "company_handler")),
	}
}

// Routes returns the company routes.
func (h *CompanyHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.List)
	r.Route("/{ticker}", func(r chi.Router) {
		r.Get("/", h.Detail)
		r.Get("/normalization", h.Normalization)
	})
	return r
}

// companyListResponse is the list payload.
type companyListResponse struct {
	AsOf      time.Time               `json:"as_of"`
	Companies []mnav.CompanyValuation `json:"companies"`
	Stats     mnav.AggregateStats     `json:"stats"`
}

// List serves the full per-company mNAV table with aggregates.
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	set, err := h.service.Latest(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to serve company list",
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrSnapshotUnavailable))
		return
	}
	render.JSON(w, r, companyListResponse{
		AsOf:      set.AsOf,
		Companies: set.Valuations,
		Stats:     set.Stats,
	})
}

// Detail serves one company's valuation.
func (h *CompanyHandler) Detail(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	v, err := h.service.Company(r.Context(), ticker)
	if err != nil {
		h.renderLookupError(w, r, ticker, err)
		return
	}
	render.JSON(w, r, v)
}

// Normalization serves the corporate-action share-basis view. The as_of
// query parameter names the date the share count was recorded.
func (h *CompanyHandler) Normalization(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	asOf := r.URL.Query().Get("as_of")
	if asOf == "" {
		render.Render(w, r, apierrors.NewErrorResponse(
			apierrors.ErrValidation("as_of", "query parameter is required (YYYY-MM-DD)")))
		return
	}

	norm, err := h.service.ShareNormalizationFor(r.Context(), ticker, asOf)
	if err != nil {
		var ve mnav.ValidationError
		if errors.As(err, &ve) {
			render.Render(w, r, apierrors.NewErrorResponse(
				apierrors.ErrValidation(ve.Field, ve.Message)))
			return
		}
		h.renderLookupError(w, r, ticker, err)
		return
	}
	render.JSON(w, r, norm)
}

func (h *CompanyHandler) renderLookupError(w http.ResponseWriter, r *http.Request, ticker string, err error) {
	if errors.Is(err, registry.ErrNotTracked) {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.CompanyNotFoundError(ticker)))
		return
	}
	h.logger.ErrorContext(r.Context(), "company lookup failed",
		slog.String("ticker", ticker),
		slog.String("error", err.Error()))
	render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrInternalServer))
}

// statsResponse is the aggregate payload.
type statsResponse struct {
	AsOf  time.Time           `json:"as_of"`
	Stats mnav.AggregateStats `json:"stats"`
}

// StatsHandler serves the cross-sectional aggregates.
func StatsHandler(service ValuationReader, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, asOf, err := service.Stats(r.Context())
		if err != nil {
			logger.ErrorContext(r.Context(), "failed to serve stats",
				slog.String("error", err.Error()))
			render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrSnapshotUnavailable))
			return
		}
		render.JSON(w, r, statsResponse{AsOf: asOf, Stats: stats})
	}
}

// HealthHandler serves the health endpoint.
func HealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, checker.Check(r.Context()))
	}
}

// RefreshHandler triggers an immediate valuation run and reports its
// summary. notify runs after a successful refresh; the router wires the
// websocket broadcast through it.
func RefreshHandler(service ValuationReader, logger *slog.Logger, notify func(services.ValuationSet)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		set, err := service.Refresh(r.Context())
		if err != nil {
			logger.ErrorContext(r.Context(), "manual refresh failed",
				slog.String("error", err.Error()))
			render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrServiceUnavailable))
			return
		}
		if notify != nil {
			notify(set)
		}
		render.JSON(w, r, map[string]interface{}{
			"as_of":      set.AsOf,
			"companies":  len(set.Valuations),
			"aggregated": set.Stats.Count,
		})
	}
}
