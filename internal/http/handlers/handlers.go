package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/supplydesk/backend/internal/db"
	"github.com/supplydesk/backend/internal/export"
	"github.com/supplydesk/backend/internal/models"
	"github.com/supplydesk/backend/internal/service"
)

// Pinger reports whether the ticket source is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Service   *service.AnalysisService
	Source    Pinger
	Validator *validator.Validate
	Logger    zerolog.Logger
	Clock     func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Clock == nil {
		return time.Now().UTC()
	}
	return h.Clock()
}

// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	if h.Source != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := h.Source.Ping(ctx); err != nil {
			writeError(c, http.StatusServiceUnavailable, "SOURCE_UNAVAILABLE", "Ticket source unavailable", err.Error())
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Analyze tickets
// @Description Runs issue detection over the tickets created in the analysis window
// @Tags analysis
// @Produce json
// @Success 200 {object} analysis.Report
// @Failure 500 {object} map[string]any
// @Router /api/analysis [get]
func (h *Handler) Analysis(c *gin.Context) {
	report, err := h.Service.Analyze(c.Request.Context())
	if err != nil {
		h.Logger.Error().Err(err).Msg("analysis failed")
		writeError(c, http.StatusInternalServerError, "ANALYSIS_ERROR", err.Error(), nil)
		return
	}
	c.JSON(http.StatusOK, report)
}

// @Summary Export analysis
// @Tags analysis
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Failure 500 {object} map[string]any
// @Router /api/analysis/export [get]
func (h *Handler) AnalysisExport(c *gin.Context) {
	report, err := h.Service.Analyze(c.Request.Context())
	if err != nil {
		h.Logger.Error().Err(err).Msg("analysis failed")
		writeError(c, http.StatusInternalServerError, "ANALYSIS_ERROR", err.Error(), nil)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteReport(&buf, report); err != nil {
		h.Logger.Error().Err(err).Msg("export failed")
		writeError(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to build workbook", err.Error())
		return
	}
	name := fmt.Sprintf("issue-analysis-%s.xlsx", h.now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

type CategorizeRequest struct {
	Subject     string `json:"subject" validate:"required_without=Description,max=1000"`
	Description string `json:"description" validate:"required_without=Subject,max=20000"`
}

// @Summary Categorize text
// @Tags analysis
// @Accept json
// @Produce json
// @Param body body CategorizeRequest true "Ticket text"
// @Success 200 {object} service.CategorizeResult
// @Failure 400 {object} map[string]any
// @Router /api/analysis/categorize [post]
func (h *Handler) Categorize(c *gin.Context) {
	var req CategorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, h.Service.Categorize(req.Subject, req.Description))
}

// @Summary Triage a new ticket
// @Description Relates a ticket to the issues detected in the current window
// @Tags analysis
// @Accept json
// @Produce json
// @Param body body models.Ticket true "Ticket"
// @Success 200 {object} analysis.TriageResult
// @Failure 400 {object} map[string]any
// @Failure 500 {object} map[string]any
// @Router /api/analysis/triage [post]
func (h *Handler) Triage(c *gin.Context) {
	var t models.Ticket
	if err := c.ShouldBindJSON(&t); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(t); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = h.now()
	}

	res, err := h.Service.Triage(c.Request.Context(), t)
	if err != nil {
		h.Logger.Error().Err(err).Str("ticket_id", t.ID).Msg("triage failed")
		writeError(c, http.StatusInternalServerError, "ANALYSIS_ERROR", err.Error(), nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Record an analysis run
// @Tags runs
// @Produce json
// @Param X-Admin-Key header string false "Admin key"
// @Success 200 {object} service.RunResult
// @Failure 401 {object} map[string]any
// @Failure 500 {object} map[string]any
// @Failure 501 {object} map[string]any
// @Router /api/analysis/runs [post]
func (h *Handler) RunsCreate(c *gin.Context) {
	res, err := h.Service.Run(c.Request.Context())
	if errors.Is(err, service.ErrRunLogDisabled) {
		writeError(c, http.StatusNotImplemented, "NOT_CONFIGURED", "Run log requires DATABASE_URL", nil)
		return
	}
	if err != nil {
		h.Logger.Error().Err(err).Str("run_id", res.RunID).Msg("analysis run failed")
		writeError(c, http.StatusInternalServerError, "ANALYSIS_ERROR", err.Error(), gin.H{"run_id": res.RunID})
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary Latest run
// @Tags runs
// @Produce json
// @Success 200 {object} models.AnalysisRun
// @Failure 404 {object} map[string]any
// @Failure 501 {object} map[string]any
// @Router /api/analysis/runs/latest [get]
func (h *Handler) RunsLatest(c *gin.Context) {
	run, err := h.Service.LatestRun(c.Request.Context())
	switch {
	case errors.Is(err, service.ErrRunLogDisabled):
		writeError(c, http.StatusNotImplemented, "NOT_CONFIGURED", "Run log requires DATABASE_URL", nil)
		return
	case errors.Is(err, db.ErrNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", "No runs found", nil)
		return
	case err != nil:
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load run", err.Error())
		return
	}
	c.JSON(http.StatusOK, run)
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
