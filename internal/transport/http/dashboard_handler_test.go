package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrollrank/internal/config"
	"enrollrank/internal/shared/testutil"
)

func newTestDashboard(t *testing.T, cfg config.DashboardConfig) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	service, validator, errorHandler := newTestService(t, cfg)
	r := chi.NewRouter()
	NewDashboardHandler(service, validator, errorHandler, cfg, logger).RegisterRoutes(r)
	return r
}

func TestDashboardHandler_Show(t *testing.T) {
	handler := newTestDashboard(t, config.Default().Dashboard)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "Dashboard de Matrículas - Região Norte")
	assert.Contains(t, body, "Carregue o arquivo Excel")
	assert.Contains(t, body, `value="2023" checked`)
	assert.Contains(t, body, `value="2021" checked`)
	assert.Contains(t, body, `<input type="checkbox" name="periods" value="2017">`)
	assert.Contains(t, body, `name="min_total" min="0" value="100"`)
	assert.NotContains(t, body, "Tipo de curso:")
	assert.NotContains(t, body, "Dados Completos")
}

func TestDashboardHandler_Submit(t *testing.T) {
	handler := newTestDashboard(t, config.Default().Dashboard)

	fields := map[string][]string{FieldPeriods: {"2023", "2022", "2021"}, FieldMinTotal: {"0"}}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, uploadRequest(t, "/", fields, scenarioWorkbook(t)))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()

	assert.Contains(t, body, "Dados carregados com sucesso!")
	assert.Contains(t, body, "A aba 2021 não foi encontrada")
	assert.Contains(t, body, "Total de Cursos")
	assert.Contains(t, body, "Universidade A - Direito")
	assert.Contains(t, body, "<td>250</td>")
	assert.Contains(t, body, "Tipo de curso:")
	assert.Contains(t, body, `<input type="hidden" name="course_type" value="">`)
	assert.Contains(t, body, `value="Tecnológico" checked`)
	assert.Contains(t, body, "Evolução das Matrículas - Top 2")
	assert.Contains(t, body, "Distribuição por Instituição")
	assert.Contains(t, body, "83.3%")
	assert.Contains(t, body, "<polyline")
	assert.Contains(t, body, "<path d=")
}

func TestDashboardHandler_SubmitFilteredOut(t *testing.T) {
	handler := newTestDashboard(t, config.Default().Dashboard)

	fields := map[string][]string{
		FieldPeriods:    {"2023"},
		FieldMinTotal:   {"0"},
		FieldCourseType: {""},
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, uploadRequest(t, "/", fields, scenarioWorkbook(t)))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Nenhum curso atende aos filtros selecionados.")
	assert.Contains(t, body, `value="Bacharelado">`)
	assert.NotContains(t, body, "<polyline")
}

func TestDashboardHandler_SubmitErrors(t *testing.T) {
	tests := []struct {
		name       string
		fields     map[string][]string
		file       []byte
		wantStatus int
		wantText   []string
	}{
		{
			name:       "no periods",
			fields:     map[string][]string{},
			file:       scenarioWorkbook(t),
			wantStatus: http.StatusBadRequest,
			wantText:   []string{"Selecione pelo menos um ano!"},
		},
		{
			name:       "no valid periods",
			fields:     map[string][]string{FieldPeriods: {"2021", "2018"}},
			file:       scenarioWorkbook(t),
			wantStatus: http.StatusUnprocessableEntity,
			wantText:   []string{"Nenhuma aba válida encontrada!", "A aba 2021 não foi encontrada", "A aba 2018 foi ignorada"},
		},
		{
			name:       "unreadable upload",
			fields:     map[string][]string{FieldPeriods: {"2023"}},
			file:       []byte("plain text"),
			wantStatus: http.StatusUnprocessableEntity,
			wantText:   []string{"Erro durante o processamento"},
		},
		{
			name:       "missing file",
			fields:     map[string][]string{FieldPeriods: {"2023"}},
			wantStatus: http.StatusBadRequest,
			wantText:   []string{"Erro durante o processamento"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestDashboard(t, config.Default().Dashboard)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, uploadRequest(t, "/", tt.fields, tt.file))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
			body := rec.Body.String()
			assert.Contains(t, body, `role="alert"`)
			for _, text := range tt.wantText {
				assert.Contains(t, body, text)
			}
			assert.NotContains(t, body, "Dados carregados com sucesso!")
		})
	}
}
