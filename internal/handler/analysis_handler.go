package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"spendlens/internal/csvexport"
	"spendlens/internal/domain"
	"spendlens/internal/logger"
	"spendlens/internal/middleware"
	"spendlens/internal/service"
)

const exportBaseName = "spend_analysis"

// AnalysisHandler handles analysis submission, state and export endpoints.
type AnalysisHandler struct {
	analysisService service.AnalysisService
	maxUploadBytes  int64
	now             func() time.Time
}

// NewAnalysisHandler creates a new AnalysisHandler. A non-positive
// maxUploadBytes disables the upload size check.
func NewAnalysisHandler(analysisService service.AnalysisService, maxUploadBytes int64) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		maxUploadBytes:  maxUploadBytes,
		now:             time.Now,
	}
}

// Submit handles POST /api/v1/analyses
// @Summary Submit a financial document
// @Description Upload a statement (CSV, TSV, TXT, PDF, PNG, JPG, WEBP or XLSX) and start an analysis run.
// @Description Any run already in flight is superseded.
// @Tags analyses
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Financial document"
// @Success 202 {object} Response{data=SubmitResponse} "Analysis started"
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 429 {object} ErrorResponseBody "Too many submissions"
// @Router /api/v1/analyses [post]
func (h *AnalysisHandler) Submit(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		HandleError(c, domain.ErrFileTooLarge)
		return
	}

	mediaType, err := service.MediaTypeForName(header.Filename)
	if err != nil {
		HandleError(c, err)
		return
	}

	token, err := h.analysisService.Submit(c.Request.Context(), domain.InputDocument{
		Name:      header.Filename,
		MediaType: mediaType,
		Body:      file,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	logger.Get().Info("analysisHandler.Submit: accepted",
		zap.String("request_id", c.GetString(middleware.RequestIDKey)),
		zap.String("filename", header.Filename),
		zap.Int64("size", header.Size),
		zap.Uint64("token", token))
	RespondAccepted(c, SubmitResponse{Token: token})
}

// SubmitObject handles POST /api/v1/analyses/object
// @Summary Analyze a stored document
// @Description Start an analysis run for a document already in object storage.
// @Tags analyses
// @Accept json
// @Produce json
// @Param request body AnalyzeObjectRequest true "Object location"
// @Success 202 {object} Response{data=SubmitResponse} "Analysis started"
// @Failure 400 {object} ErrorResponseBody "Invalid request or unsupported type"
// @Failure 404 {object} ErrorResponseBody "Object not found"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 503 {object} ErrorResponseBody "Object storage not configured"
// @Router /api/v1/analyses/object [post]
func (h *AnalysisHandler) SubmitObject(c *gin.Context) {
	var req AnalyzeObjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	token, err := h.analysisService.AnalyzeObject(c.Request.Context(), req.Bucket, req.Key)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondAccepted(c, SubmitResponse{Token: token})
}

// Current handles GET /api/v1/analyses/current
// @Summary Current analysis state
// @Description Returns the lifecycle state of the latest run, with the analysis once it succeeded.
// @Tags analyses
// @Produce json
// @Success 200 {object} Response{data=StateResponse}
// @Router /api/v1/analyses/current [get]
func (h *AnalysisHandler) Current(c *gin.Context) {
	RespondOK(c, h.analysisService.State())
}

// ExportCSV handles GET /api/v1/analyses/current/export.csv
// @Summary Export the current analysis as CSV
// @Tags analyses
// @Produce text/csv
// @Success 200 {file} file "CSV export"
// @Failure 404 {object} ErrorResponseBody "No analysis available"
// @Router /api/v1/analyses/current/export.csv [get]
func (h *AnalysisHandler) ExportCSV(c *gin.Context) {
	analysis := h.currentAnalysis(c)
	if analysis == nil {
		return
	}

	var buf bytes.Buffer
	// UTF-8 BOM for Excel compatibility
	buf.WriteString("\xEF\xBB\xBF")

	w := csvexport.NewWriter(&buf)
	if err := w.WriteHeader(); err != nil {
		HandleError(c, fmt.Errorf("writing csv header: %w", err))
		return
	}
	if err := w.WriteAnalysis(analysis); err != nil {
		HandleError(c, fmt.Errorf("writing csv rows: %w", err))
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		HandleError(c, fmt.Errorf("flushing csv: %w", err))
		return
	}

	filename := csvexport.BuildFilename(exportBaseName, "csv", h.now())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportXLSX handles GET /api/v1/analyses/current/export.xlsx
// @Summary Export the current analysis as an Excel workbook
// @Tags analyses
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file "Workbook export"
// @Failure 404 {object} ErrorResponseBody "No analysis available"
// @Router /api/v1/analyses/current/export.xlsx [get]
func (h *AnalysisHandler) ExportXLSX(c *gin.Context) {
	analysis := h.currentAnalysis(c)
	if analysis == nil {
		return
	}

	var buf bytes.Buffer
	if err := csvexport.WriteWorkbook(&buf, analysis); err != nil {
		HandleError(c, fmt.Errorf("writing workbook: %w", err))
		return
	}

	filename := csvexport.BuildFilename(exportBaseName, "xlsx", h.now())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, domain.MediaTypeXLSX, buf.Bytes())
}

// currentAnalysis returns the analysis of the latest successful run, or
// writes a 404 and returns nil.
func (h *AnalysisHandler) currentAnalysis(c *gin.Context) *domain.FinancialAnalysis {
	state := h.analysisService.State()
	if state.Status != domain.StatusSuccess || state.Analysis == nil {
		HandleError(c, domain.ErrNoAnalysis)
		return nil
	}
	return state.Analysis
}
