package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"enrollrank/internal/analytics"
	"enrollrank/internal/config"
	apierrors "enrollrank/internal/errors"
	"enrollrank/internal/exporter"
	mw "enrollrank/internal/middleware"
	"enrollrank/internal/services"
	"enrollrank/pkg/contracts/domain"
)

// RankingHandler serves the JSON ranking API and its file exports
type RankingHandler struct {
	service      *services.RankingService
	validator    *mw.Validator
	errorHandler *apierrors.ErrorHandler
	cfg          config.DashboardConfig
	logger       *slog.Logger
}

// NewRankingHandler creates a new ranking handler
func NewRankingHandler(service *services.RankingService, validator *mw.Validator, errorHandler *apierrors.ErrorHandler, cfg config.DashboardConfig, logger *slog.Logger) *RankingHandler {
	return &RankingHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		cfg:          cfg,
		logger:       logger.With(slog.String("component", "ranking_handler")),
	}
}

// Routes returns the ranking routes, mounted under /api/v1
func (h *RankingHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/periods", h.GetPeriods)

	r.Route("/rankings", func(r chi.Router) {
		r.Use(mw.ContentTypeValidator(h.errorHandler, "multipart/form-data"))
		r.Post("/", h.CreateRanking)
		r.Post("/export", h.ExportRanking)
	})

	return r
}

// RankingData is the payload of a successful ranking response.
type RankingData struct {
	Periods     []string               `json:"periods"`
	Loaded      []string               `json:"loaded"`
	Skipped     []domain.PeriodFailure `json:"skipped"`
	Columns     []string               `json:"columns"`
	CourseTypes []string               `json:"course_types"`
	MaxTotal    float64                `json:"max_total"`
	Filter      domain.Filter          `json:"filter"`
	Rows        []domain.RankedRow     `json:"rows"`
	Summary     analytics.Summary      `json:"summary"`
	Charts      analytics.Charts       `json:"charts"`
}

// PeriodsData describes the selectable periods and dashboard defaults.
type PeriodsData struct {
	Periods        []string `json:"periods"`
	DefaultPeriods []string `json:"default_periods"`
	MinTotal       int64    `json:"min_total"`
	TopK           int      `json:"top_k"`
	MaxTopK        int      `json:"max_top_k"`
	MaxUploadBytes int64    `json:"max_upload_bytes"`
}

// GetPeriods handles GET /api/v1/periods
func (h *RankingHandler) GetPeriods(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": PeriodsData{
			Periods:        h.cfg.Periods,
			DefaultPeriods: h.cfg.DefaultPeriods,
			MinTotal:       h.cfg.MinTotal,
			TopK:           h.cfg.EvolutionRows,
			MaxTopK:        h.cfg.EvolutionMaxRows,
			MaxUploadBytes: h.cfg.MaxUploadBytes,
		},
	})
}

// CreateRanking handles POST /api/v1/rankings
func (h *RankingHandler) CreateRanking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reqID := middleware.GetReqID(ctx)

	form, err := h.parse(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer form.Close()

	h.logger.InfoContext(ctx, "computing ranking",
		slog.String("request_id", reqID),
		slog.String("file", form.Name),
		slog.Any("periods", form.Request.Periods))

	result, err := h.service.Rank(ctx, form.File, form.Request)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	skipped := result.Skipped
	if skipped == nil {
		skipped = []domain.PeriodFailure{}
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data": RankingData{
			Periods:     result.Periods,
			Loaded:      result.Loaded,
			Skipped:     skipped,
			Columns:     result.Columns,
			CourseTypes: result.CourseTypes,
			MaxTotal:    result.MaxTotal,
			Filter:      result.View.Filter,
			Rows:        result.View.Rows,
			Summary:     result.View.Summary,
			Charts:      result.View.Charts,
		},
		"count": len(result.View.Rows),
	})
}

// ExportRanking handles POST /api/v1/rankings/export?format=csv|xlsx
func (h *RankingHandler) ExportRanking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	format, err := exporter.ParseFormat(r.URL.Query().Get("format"))
	if err != nil || format == exporter.FormatTable {
		h.errorHandler.HandleError(w, r, apierrors.ErrUnsupportedExportType)
		return
	}

	form, err := h.parse(w, r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	defer form.Close()

	export, err := h.service.Export(ctx, form.File, form.Request, format)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	writeDownload(w, export)
}

func (h *RankingHandler) parse(w http.ResponseWriter, r *http.Request) (*rankingForm, error) {
	form, err := parseRankingForm(w, r, h.cfg.MaxUploadBytes, h.service.DefaultRequest())
	if err != nil {
		return nil, err
	}
	if err := h.validator.ValidateStruct(form.Request); err != nil {
		form.Close()
		return nil, err
	}
	return form, nil
}

func writeDownload(w http.ResponseWriter, export *services.Export) {
	w.Header().Set("Content-Type", export.Format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(export.Data)
}
