package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "spendlens/docs" // registers the swagger document
	"spendlens/internal/config"
	"spendlens/internal/handler"
	"spendlens/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	log *zap.Logger,
	analysisH *handler.AnalysisHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// API docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Submissions are rate limited per client
	limiter := middleware.NewRateLimiter(cfg.Upload.RatePerMinute)

	analyses := v1.Group("/analyses")
	analyses.POST("", limiter.Middleware(), analysisH.Submit)
	analyses.POST("/object", limiter.Middleware(), analysisH.SubmitObject)
	analyses.GET("/current", analysisH.Current)
	analyses.GET("/current/export.csv", analysisH.ExportCSV)
	analyses.GET("/current/export.xlsx", analysisH.ExportXLSX)

	return r
}
