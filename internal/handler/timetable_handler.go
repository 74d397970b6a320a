package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-adp-timetable/internal/dto"
	"github.com/noah-isme/sma-adp-timetable/internal/models"
	"github.com/noah-isme/sma-adp-timetable/internal/service"
	"github.com/noah-isme/sma-adp-timetable/internal/timetable"
	appErrors "github.com/noah-isme/sma-adp-timetable/pkg/errors"
	"github.com/noah-isme/sma-adp-timetable/pkg/response"
)

type timetableService interface {
	Templates(category string) dto.TimetableTemplateResponse
	Preview(ctx context.Context, req dto.GenerateTimetableRequest) (*dto.TimetablePreview, error)
	GetPreview(ctx context.Context, id string) (*dto.TimetablePreview, error)
	Analyze(ctx context.Context, req dto.AnalyzeTimetableRequest) (*timetable.GenerationAnalysis, error)
	Apply(ctx context.Context, req dto.ApplyTimetableRequest) (*dto.ApplyTimetableResponse, error)
	Export(ctx context.Context, previewID string, format dto.ExportFormat) (*dto.ExportedFile, error)
}

// TimetableHandler exposes timetable generation endpoints.
type TimetableHandler struct {
	service timetableService
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(svc *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// Template godoc
// @Summary Daily period template of a category
// @Tags Timetables
// @Produce json
// @Param category path string true "Class category"
// @Success 200 {object} response.Envelope
// @Router /timetables/templates/{category} [get]
func (h *TimetableHandler) Template(c *gin.Context) {
	tpl := h.service.Templates(c.Param("category"))
	response.JSON(c, http.StatusOK, tpl, map[string]interface{}{"fallback": !tpl.Known})
}

// Preview godoc
// @Summary Generate a timetable preview
// @Description Generates a full week for the class, keeps already assigned periods and stores the result for apply.
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generation payload"
// @Success 201 {object} response.Envelope
// @Router /timetables/previews [post]
func (h *TimetableHandler) Preview(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generation payload"))
		return
	}
	preview, err := h.service.Preview(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, preview, previewMeta(preview))
}

// GetPreview godoc
// @Summary Fetch a stored timetable preview
// @Tags Timetables
// @Produce json
// @Param id path string true "Preview ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/previews/{id} [get]
func (h *TimetableHandler) GetPreview(c *gin.Context) {
	preview, err := h.service.GetPreview(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, preview, previewMeta(preview))
}

// Export godoc
// @Summary Download a timetable preview
// @Tags Timetables
// @Produce text/csv,application/pdf
// @Param id path string true "Preview ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /timetables/previews/{id}/export [get]
func (h *TimetableHandler) Export(c *gin.Context) {
	format := dto.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(dto.ExportFormatCSV))))
	file, err := h.service.Export(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}

// Analyze godoc
// @Summary Analyse a period list
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.AnalyzeTimetableRequest true "Periods to analyse"
// @Success 200 {object} response.Envelope
// @Router /timetables/analyze [post]
func (h *TimetableHandler) Analyze(c *gin.Context) {
	var req dto.AnalyzeTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid analysis payload"))
		return
	}
	analysis, err := h.service.Analyze(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, analysis)
}

// Apply godoc
// @Summary Apply a preview or period list to the stored timetable
// @Description Fills empty slots and corrects slot types. Teacher or room double bookings return 409 SCHEDULE_CONFLICT.
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.ApplyTimetableRequest true "Apply payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetables/apply [post]
func (h *TimetableHandler) Apply(c *gin.Context) {
	var req dto.ApplyTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid apply payload"))
		return
	}
	result, err := h.service.Apply(c.Request.Context(), req)
	if err != nil {
		var conflictErr *models.ScheduleConflictError
		if errors.As(err, &conflictErr) {
			response.Error(c, err, map[string]interface{}{"conflicts": conflictErr.Conflicts})
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

func previewMeta(preview *dto.TimetablePreview) map[string]interface{} {
	return map[string]interface{}{
		"mode":             "preview",
		"expiresAt":        preview.ExpiresAt,
		"configurationGap": preview.Analysis.ConfigurationGap,
		"warnings":         len(preview.Analysis.Warnings),
	}
}
