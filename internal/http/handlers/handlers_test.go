package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/supplydesk/backend/internal/analysis"
	"github.com/supplydesk/backend/internal/db"
	"github.com/supplydesk/backend/internal/export"
	"github.com/supplydesk/backend/internal/models"
	"github.com/supplydesk/backend/internal/service"
)

var testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSource struct {
	tickets []models.Ticket
	err     error
	pingErr error
}

func (s stubSource) FindTicketsCreatedSince(context.Context, time.Time) ([]models.Ticket, error) {
	return s.tickets, s.err
}

func (s stubSource) Ping(context.Context) error { return s.pingErr }

type oneRun struct {
	run *models.AnalysisRun
}

func (o *oneRun) CreateRun(context.Context, string) (string, error) {
	o.run = &models.AnalysisRun{ID: "run-1", Status: service.StatusRunning, StartedAt: testNow}
	return o.run.ID, nil
}

func (o *oneRun) FinishRun(_ context.Context, _ string, status string, summary []byte) error {
	o.run.Status = status
	o.run.Summary = summary
	return nil
}

func (o *oneRun) GetLatestRun(context.Context) (models.AnalysisRun, error) {
	if o.run == nil {
		return models.AnalysisRun{}, db.ErrNotFound
	}
	return *o.run, nil
}

func spike() []models.Ticket {
	var out []models.Ticket
	for i, p := range []models.Priority{models.PriorityUrgent, models.PriorityHigh, models.PriorityHigh, models.PriorityMedium} {
		out = append(out, models.Ticket{
			ID:          "T" + string(rune('1'+i)),
			Subject:     "Delivery delayed",
			Description: "My delivery is late and this is terrible",
			Priority:    p,
			CreatedAt:   testNow.Add(-time.Duration(i+1) * 24 * time.Hour),
		})
	}
	return out
}

func newRouter(src stubSource, runs service.RunStore) *gin.Engine {
	svc := &service.AnalysisService{
		Analyzer: &analysis.Analyzer{Source: src, Logger: zerolog.Nop(), Now: func() time.Time { return testNow }},
		Runs:     runs,
		Logger:   zerolog.Nop(),
		Clock:    func() time.Time { return testNow },
	}
	h := &Handler{Service: svc, Source: src, Validator: validator.New(), Logger: zerolog.Nop(), Clock: func() time.Time { return testNow }}

	r := gin.New()
	r.GET("/healthz", h.Healthz)
	r.GET("/api/analysis", h.Analysis)
	r.GET("/api/analysis/export", h.AnalysisExport)
	r.POST("/api/analysis/categorize", h.Categorize)
	r.POST("/api/analysis/triage", h.Triage)
	r.POST("/api/analysis/runs", h.RunsCreate)
	r.GET("/api/analysis/runs/latest", h.RunsLatest)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", w.Body.String(), err)
	}
	return body
}

func TestHealthz(t *testing.T) {
	if w := do(newRouter(stubSource{}, nil), http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	w := do(newRouter(stubSource{pingErr: errors.New("refused")}, nil), http.MethodGet, "/healthz", "")
	if w.Code != http.StatusServiceUnavailable || decodeError(t, w).Error.Code != "SOURCE_UNAVAILABLE" {
		t.Fatalf("expected 503 SOURCE_UNAVAILABLE, got %d %s", w.Code, w.Body.String())
	}
}

func TestAnalysis(t *testing.T) {
	w := do(newRouter(stubSource{tickets: spike()}, nil), http.MethodGet, "/api/analysis", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var report analysis.Report
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(report.Issues) != 1 || report.Issues[0].Severity != analysis.SeverityCritical {
		t.Fatalf("unexpected issues %+v", report.Issues)
	}
	if report.Summary == nil || report.Summary.OverallHealth != analysis.HealthCritical {
		t.Fatalf("unexpected summary %+v", report.Summary)
	}
}

func TestAnalysisEmptyWindow(t *testing.T) {
	w := do(newRouter(stubSource{}, nil), http.MethodGet, "/api/analysis", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := w.Body.String(); got != `{"message":"No tickets found for analysis","issues":[]}` {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestAnalysisSourceError(t *testing.T) {
	w := do(newRouter(stubSource{err: errors.New("db down")}, nil), http.MethodGet, "/api/analysis", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	body := decodeError(t, w)
	if body.Error.Code != "ANALYSIS_ERROR" || body.Error.Message != "Failed to analyze tickets: db down" {
		t.Fatalf("unexpected error body %+v", body)
	}
}

func TestAnalysisExport(t *testing.T) {
	w := do(newRouter(stubSource{tickets: spike()}, nil), http.MethodGet, "/api/analysis/export", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != export.ContentType {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "issue-analysis-20261015-120000.xlsx") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(export.SheetIssues)
	if err != nil || len(rows) != 2 {
		t.Fatalf("expected header and one issue row, got %v (%v)", rows, err)
	}
}

func TestCategorize(t *testing.T) {
	r := newRouter(stubSource{}, nil)

	w := do(r, http.MethodPost, "/api/analysis/categorize", `{"subject":"Payment declined","description":"my credit card was charged twice"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res service.CategorizeResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Category != analysis.CategoryPayment {
		t.Fatalf("expected payment, got %s", res.Category)
	}

	w = do(r, http.MethodPost, "/api/analysis/categorize", `{}`)
	if w.Code != http.StatusBadRequest || decodeError(t, w).Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected validation error, got %d %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodPost, "/api/analysis/categorize", `{"subject":`)
	if w.Code != http.StatusBadRequest || decodeError(t, w).Error.Code != "INVALID_REQUEST" {
		t.Fatalf("expected invalid request, got %d %s", w.Code, w.Body.String())
	}
}

func TestTriage(t *testing.T) {
	r := newRouter(stubSource{tickets: spike()}, nil)

	w := do(r, http.MethodPost, "/api/analysis/triage", `{"id":"N1","subject":"Delivery delayed again","priority":"urgent"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res analysis.TriageResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.TicketID != "N1" || res.Category != analysis.CategoryLogistics || res.RiskLevel != analysis.SeverityCritical {
		t.Fatalf("unexpected triage %+v", res)
	}

	w = do(r, http.MethodPost, "/api/analysis/triage", `{"id":"N2","subject":"x","priority":"critical"}`)
	if w.Code != http.StatusBadRequest || decodeError(t, w).Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected validation error for unknown priority, got %d %s", w.Code, w.Body.String())
	}
}

func TestRuns(t *testing.T) {
	runs := &oneRun{}
	r := newRouter(stubSource{tickets: spike()}, runs)

	if w := do(r, http.MethodGet, "/api/analysis/runs/latest", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any run, got %d", w.Code)
	}

	w := do(r, http.MethodPost, "/api/analysis/runs", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res service.RunResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.RunID != "run-1" || res.Status != service.StatusCompleted {
		t.Fatalf("unexpected run result %+v", res)
	}

	w = do(r, http.MethodGet, "/api/analysis/runs/latest", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"COMPLETED"`) {
		t.Fatalf("unexpected latest run %d %s", w.Code, w.Body.String())
	}
}

func TestRunsWithoutRunLog(t *testing.T) {
	r := newRouter(stubSource{}, nil)
	for _, req := range []struct{ method, path string }{
		{http.MethodPost, "/api/analysis/runs"},
		{http.MethodGet, "/api/analysis/runs/latest"},
	} {
		w := do(r, req.method, req.path, "")
		if w.Code != http.StatusNotImplemented || decodeError(t, w).Error.Code != "NOT_CONFIGURED" {
			t.Fatalf("%s %s: expected 501 NOT_CONFIGURED, got %d %s", req.method, req.path, w.Code, w.Body.String())
		}
	}
}

func TestHealthzIntegration(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	store, err := db.New(context.Background(), url)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	defer store.Close()

	h := &Handler{Source: store, Logger: zerolog.Nop()}
	r := gin.New()
	r.GET("/healthz", h.Healthz)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
