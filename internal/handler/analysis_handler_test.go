package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"spendlens/internal/domain"
	"spendlens/internal/handler"
	"spendlens/internal/lifecycle"
	"spendlens/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func multipartRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/analyses", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) handler.APIResponse {
	t.Helper()
	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func sampleAnalysis() *domain.FinancialAnalysis {
	return &domain.FinancialAnalysis{
		Summary: domain.Summary{TotalSpend: 300, TotalBudget: 400, BurnRate: "$300/mo", TopCategory: "Rent"},
		Charts: domain.Charts{
			CategoryDistribution: []domain.CategoryShare{{Category: "Rent", Percentage: 100}},
		},
		Insights: []string{"Rent dominates spending"},
		Suggestions: []domain.Suggestion{
			{Title: "Renegotiate lease", Description: "Ask for a discount", Impact: domain.ImpactHigh, PotentialSavings: 50},
		},
	}
}

func TestAnalysisHandler_Submit_Success(t *testing.T) {
	mockSvc := new(mocks.MockAnalysisService)
	h := handler.NewAnalysisHandler(mockSvc, 1024)

	mockSvc.On("Submit", mock.Anything, mock.MatchedBy(func(doc domain.InputDocument) bool {
		return doc.Name == "march.csv" && doc.MediaType == "text/csv" && doc.Body != nil
	})).Return(uint64(7), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "march.csv", "date,amount\n2024-03-01,12\n")

	h.Submit(c)

	assert.Equal(t, http.StatusAccepted, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, map[string]interface{}{"token": float64(7)}, resp.Data)
	mockSvc.AssertExpectations(t)
}

func TestAnalysisHandler_Submit_MissingFile(t *testing.T) {
	mockSvc := new(mocks.MockAnalysisService)
	h := handler.NewAnalysisHandler(mockSvc, 1024)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/analyses", strings.NewReader(""))

	h.Submit(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_FILE", decodeResponse(t, w).Error.Code)
	mockSvc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestAnalysisHandler_Submit_UnsupportedType(t *testing.T) {
	mockSvc := new(mocks.MockAnalysisService)
	h := handler.NewAnalysisHandler(mockSvc, 1024)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "statement.docx", "binary")

	h.Submit(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNSUPPORTED_FILE_TYPE", decodeResponse(t, w).Error.Code)
	mockSvc.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestAnalysisHandler_Submit_TooLarge(t *testing.T) {
	mockSvc := new(mocks.MockAnalysisService)
	h := handler.NewAnalysisHandler(mockSvc, 10)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, "march.csv", strings.Repeat("x", 11))

	h.Submit(c)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "FILE_TOO_LARGE", decodeResponse(t, w).Error.Code)
}

func TestAnalysisHandler_SubmitObject(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "accepted", body: `{"bucket":"b","key":"march.pdf"}`, wantStatus: http.StatusAccepted},
		{name: "missing key", body: `{"bucket":"b"}`, wantStatus: http.StatusBadRequest, wantCode: "INVALID_REQUEST"},
		{name: "not found", body: `{"bucket":"b","key":"march.pdf"}`, err: domain.ErrObjectNotFound, wantStatus: http.StatusNotFound, wantCode: "OBJECT_NOT_FOUND"},
		{name: "no storage", body: `{"bucket":"b","key":"march.pdf"}`, err: domain.ErrStorageUnavailable, wantStatus: http.StatusServiceUnavailable, wantCode: "STORAGE_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(mocks.MockAnalysisService)
			h := handler.NewAnalysisHandler(mockSvc, 0)
			mockSvc.On("AnalyzeObject", mock.Anything, "b", "march.pdf").Return(uint64(3), tt.err).Maybe()

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/analyses/object", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			h.SubmitObject(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			if tt.wantCode == "" {
				assert.True(t, resp.Success)
				assert.Equal(t, map[string]interface{}{"token": float64(3)}, resp.Data)
			} else {
				assert.Equal(t, tt.wantCode, resp.Error.Code)
			}
		})
	}
}

func TestAnalysisHandler_Current(t *testing.T) {
	mockSvc := new(mocks.MockAnalysisService)
	h := handler.NewAnalysisHandler(mockSvc, 0)

	mockSvc.On("State").Return(lifecycle.Snapshot{
		Status:     domain.StatusFailed,
		StepLabel:  "Ingesting document data...",
		TotalSteps: 7,
		Error:      domain.GenericFailureMessage,
		ErrorKind:  "schema:malformed_json",
		Token:      2,
	})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/analyses/current", nil)

	h.Current(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "failed", data["status"])
	assert.Equal(t, false, data["loading"])
	assert.Equal(t, domain.GenericFailureMessage, data["error"])
	assert.NotContains(t, w.Body.String(), "malformed_json")
	assert.NotContains(t, data, "analysis")
}

func TestAnalysisHandler_ExportCSV(t *testing.T) {
	mockSvc := new(mocks.MockAnalysisService)
	h := handler.NewAnalysisHandler(mockSvc, 0)

	mockSvc.On("State").Return(lifecycle.Snapshot{Status: domain.StatusSuccess, Analysis: sampleAnalysis()})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/analyses/current/export.csv", nil)

	h.ExportCSV(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `attachment; filename="spend_analysis_`)
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "\xEF\xBB\xBF"))
	assert.Contains(t, body, "Renegotiate lease")
	assert.Contains(t, body, "Rent dominates spending")
}

func TestAnalysisHandler_ExportXLSX(t *testing.T) {
	mockSvc := new(mocks.MockAnalysisService)
	h := handler.NewAnalysisHandler(mockSvc, 0)

	mockSvc.On("State").Return(lifecycle.Snapshot{Status: domain.StatusSuccess, Analysis: sampleAnalysis()})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/analyses/current/export.xlsx", nil)

	h.ExportXLSX(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.MediaTypeXLSX, w.Header().Get("Content-Type"))
	// xlsx files are zip archives
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))
}

func TestAnalysisHandler_Export_NoAnalysis(t *testing.T) {
	for _, status := range []domain.LifecycleStatus{domain.StatusIdle, domain.StatusLoading, domain.StatusFailed} {
		t.Run(string(status), func(t *testing.T) {
			mockSvc := new(mocks.MockAnalysisService)
			h := handler.NewAnalysisHandler(mockSvc, 0)
			mockSvc.On("State").Return(lifecycle.Snapshot{Status: status})

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/analyses/current/export.csv", nil)

			h.ExportCSV(c)

			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, "NO_ANALYSIS", decodeResponse(t, w).Error.Code)
		})
	}
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		ready      bool
		wantStatus int
	}{
		{name: "ready", ready: true, wantStatus: http.StatusOK},
		{name: "not ready", ready: false, wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(mocks.MockAnalysisService)
			mockSvc.On("Ready").Return(tt.ready)
			h := handler.NewHealthHandler(mockSvc)

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request, _ = http.NewRequest(http.MethodGet, "/readyz", nil)
			h.Readiness(c)
			assert.Equal(t, tt.wantStatus, w.Code)

			w = httptest.NewRecorder()
			c, _ = gin.CreateTestContext(w)
			c.Request, _ = http.NewRequest(http.MethodGet, "/healthz", nil)
			h.Liveness(c)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{domain.ErrUnsupportedFileType, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE"},
		{domain.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE"},
		{domain.ErrNoAnalysis, http.StatusNotFound, "NO_ANALYSIS"},
		{domain.NewIngestionError(domain.IngestionEmpty, nil), http.StatusUnprocessableEntity, "ANALYSIS_FAILED"},
		{&domain.SchemaError{Kind: domain.SchemaMalformedJSON}, http.StatusUnprocessableEntity, "ANALYSIS_FAILED"},
		{assert.AnError, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		status, code, _ := handler.MapDomainError(tt.err)
		assert.Equal(t, tt.wantStatus, status, tt.err.Error())
		assert.Equal(t, tt.wantCode, code, tt.err.Error())
	}

	_, _, msg := handler.MapDomainError(domain.NewInferenceError("gemini", domain.InferenceRejected, nil))
	assert.Equal(t, domain.GenericFailureMessage, msg)
}
