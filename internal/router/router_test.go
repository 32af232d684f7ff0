package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"spendlens/internal/config"
	"spendlens/internal/domain"
	"spendlens/internal/handler"
	"spendlens/internal/lifecycle"
	"spendlens/internal/router"
	"spendlens/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setup(svc *mocks.MockAnalysisService, ratePerMinute int) *gin.Engine {
	cfg := &config.Config{
		Upload: config.UploadConfig{MaxFileSizeMB: 1, RatePerMinute: ratePerMinute},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
	return router.Setup(cfg, zap.NewNop(),
		handler.NewAnalysisHandler(svc, cfg.Upload.MaxFileSizeMB<<20),
		handler.NewHealthHandler(svc))
}

func TestRoutes(t *testing.T) {
	svc := new(mocks.MockAnalysisService)
	svc.On("State").Return(lifecycle.Snapshot{Status: domain.StatusIdle, TotalSteps: 7})
	svc.On("Ready").Return(true)
	r := setup(svc, 0)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/readyz", http.StatusOK},
		{http.MethodGet, "/api/v1/analyses/current", http.StatusOK},
		{http.MethodGet, "/api/v1/analyses/current/export.csv", http.StatusNotFound},
		{http.MethodGet, "/api/v1/analyses/current/export.xlsx", http.StatusNotFound},
		{http.MethodPost, "/api/v1/analyses", http.StatusBadRequest},
		{http.MethodGet, "/swagger/doc.json", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestRoutes_SubmitRateLimited(t *testing.T) {
	svc := new(mocks.MockAnalysisService)
	svc.On("Submit", mock.Anything, mock.Anything).Return(uint64(1), nil).Maybe()
	r := setup(svc, 1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/analyses", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/analyses", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
