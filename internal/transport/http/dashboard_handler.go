package http

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"math"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"enrollrank/internal/analytics"
	"enrollrank/internal/config"
	"enrollrank/internal/enrollment"
	apierrors "enrollrank/internal/errors"
	"enrollrank/internal/exporter"
	mw "enrollrank/internal/middleware"
	"enrollrank/internal/services"
	"enrollrank/pkg/contracts/domain"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

// DashboardHandler serves the HTML dashboard. Every submission carries the
// workbook; nothing is kept between requests.
type DashboardHandler struct {
	service      *services.RankingService
	validator    *mw.Validator
	errorHandler *apierrors.ErrorHandler
	cfg          config.DashboardConfig
	logger       *slog.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service *services.RankingService, validator *mw.Validator, errorHandler *apierrors.ErrorHandler, cfg config.DashboardConfig, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		validator:    validator,
		errorHandler: errorHandler,
		cfg:          cfg,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
	}
}

// RegisterRoutes adds the dashboard page at / to r
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Show)
	r.Post("/", h.Submit)
}

type checkOption struct {
	Value   string
	Checked bool
}

type pageNotice struct {
	Title   string
	Details []string
}

type metric struct {
	Label string
	Value string
}

type dashboardTable struct {
	Header []string
	Rows   [][]string
}

type dashboardPage struct {
	Periods        []checkOption
	MinTotal       int64
	MaxMinTotal    int64
	TopK           int
	MaxTopK        int
	MaxUploadMB    int64
	CourseTypes    []checkOption
	Error          *pageNotice
	Warnings       []string
	Success        string
	Metrics        []metric
	Table          *dashboardTable
	Bars           *barChart
	Lines          *lineChart
	Pie            *pieChart
	TopN           int
	DistributionN  int
	HasResult      bool
	NoRowsFiltered bool
}

// Show handles GET /
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, h.newPage(h.service.DefaultRequest()))
}

// Submit handles POST /
func (h *DashboardHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	form, err := parseRankingForm(w, r, h.cfg.MaxUploadBytes, h.service.DefaultRequest())
	if err != nil {
		h.renderError(w, r, h.service.DefaultRequest(), err)
		return
	}
	defer form.Close()

	if err := h.validator.ValidateStruct(form.Request); err != nil {
		h.renderError(w, r, form.Request, err)
		return
	}

	result, err := h.service.Rank(ctx, form.File, form.Request)
	if err != nil {
		h.renderError(w, r, form.Request, err)
		return
	}

	h.logger.InfoContext(ctx, "dashboard rendered",
		slog.String("request_id", middleware.GetReqID(ctx)),
		slog.String("file", form.Name),
		slog.Any("loaded", result.Loaded),
		slog.Int("rows", len(result.View.Rows)))

	page := h.newPage(form.Request)
	page.fill(result, form.Request)
	h.render(w, r, http.StatusOK, page)
}

func (h *DashboardHandler) newPage(req services.RankingRequest) *dashboardPage {
	page := &dashboardPage{
		MinTotal:      req.MinTotal,
		TopK:          req.TopK,
		MaxTopK:       h.cfg.EvolutionMaxRows,
		MaxUploadMB:   h.cfg.MaxUploadBytes >> 20,
		TopN:          h.cfg.TopN,
		DistributionN: h.cfg.DistributionTop,
	}
	if page.TopK <= 0 {
		page.TopK = h.cfg.EvolutionRows
	}
	for _, p := range h.cfg.Periods {
		page.Periods = append(page.Periods, checkOption{Value: p, Checked: slices.Contains(req.Periods, p)})
	}
	return page
}

func (p *dashboardPage) fill(result *services.RankingResult, req services.RankingRequest) {
	view := result.View
	p.HasResult = true
	p.MinTotal = view.Filter.MinTotal
	p.MaxMinTotal = int64(math.Floor(result.MaxTotal))
	p.Success = "Dados carregados com sucesso!"
	for _, f := range result.Skipped {
		p.Warnings = append(p.Warnings, failureMessage(f))
	}

	for _, ct := range result.CourseTypes {
		checked := req.CourseTypes == nil || slices.Contains(req.CourseTypes, ct)
		p.CourseTypes = append(p.CourseTypes, checkOption{Value: ct, Checked: checked})
	}

	p.Metrics = []metric{{Label: "Total de Cursos", Value: analytics.FormatThousands(float64(view.Summary.Count))}}
	if view.Summary.HasTop {
		p.Metrics = append(p.Metrics,
			metric{Label: "Top 1 Curso", Value: view.Summary.TopLabel},
			metric{Label: "Matrículas do Top 1", Value: analytics.FormatThousands(view.Summary.TopTotal)})
	}

	table := &dashboardTable{Header: exporter.Header(result.Columns)}
	for _, row := range view.Rows {
		cells := make([]string, 0, len(table.Header))
		cells = append(cells, fmt.Sprintf("%d", row.Rank))
		for _, f := range row.Key.Fields() {
			cells = append(cells, f)
		}
		for i := range result.Columns {
			cells = append(cells, analytics.FormatThousands(row.Measure(i)))
		}
		cells = append(cells, analytics.FormatThousands(row.Total), row.Label)
		table.Rows = append(table.Rows, cells)
	}
	p.Table = table
	p.NoRowsFiltered = len(view.Rows) == 0

	if len(view.Charts.Top) > 0 {
		bars := newBarChart(view.Charts.Top)
		p.Bars = &bars
	}
	if len(view.Charts.Evolution.Series) > 0 {
		lines := newLineChart(view.Charts.Evolution)
		p.Lines = &lines
	}
	if len(view.Charts.Distribution) > 0 {
		pie := newPieChart(view.Charts.Distribution)
		p.Pie = &pie
	}
}

// renderError shows the form again with a notice describing err. The status
// code is the one the API would answer with.
func (h *DashboardHandler) renderError(w http.ResponseWriter, r *http.Request, req services.RankingRequest, err error) {
	problem := h.errorHandler.ErrorToProblem(err, r)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "dashboard request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", middleware.GetReqID(r.Context())))

	page := h.newPage(req)
	page.Error = errorNotice(err, problem)
	h.render(w, r, problem.Status, page)
}

func errorNotice(err error, problem *apierrors.ProblemDetails) *pageNotice {
	var noValid *enrollment.NoValidPeriodsError
	switch {
	case errors.Is(err, enrollment.ErrNoPeriodsSelected):
		return &pageNotice{Title: "Selecione pelo menos um ano!"}
	case errors.As(err, &noValid):
		notice := &pageNotice{Title: "Nenhuma aba válida encontrada!"}
		for _, f := range noValid.Failures {
			notice.Details = append(notice.Details, failureMessage(f))
		}
		return notice
	}

	detail := problem.Detail
	if detail == "" {
		detail = problem.Title
	}
	return &pageNotice{Title: "Erro durante o processamento", Details: []string{detail}}
}

func failureMessage(f domain.PeriodFailure) string {
	if f.Kind == domain.FailurePeriodNotFound {
		return fmt.Sprintf("A aba %s não foi encontrada", f.Period)
	}
	return fmt.Sprintf("A aba %s foi ignorada: %s", f.Period, f.Message)
}

func (h *DashboardHandler) render(w http.ResponseWriter, r *http.Request, status int, page *dashboardPage) {
	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, page); err != nil {
		h.errorHandler.HandleError(w, r, fmt.Errorf("render dashboard: %w", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
