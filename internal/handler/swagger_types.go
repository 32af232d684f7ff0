package handler

import (
	"time"

	"spendlens/internal/domain"
)

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// AnalyzeObjectRequest represents the request body for analyzing a stored object.
type AnalyzeObjectRequest struct {
	Bucket string `json:"bucket" binding:"required" example:"statements"`
	Key    string `json:"key" binding:"required" example:"2024/march.csv"`
}

// --- Response Types ---

// SubmitResponse carries the token of an accepted analysis run.
type SubmitResponse struct {
	Token uint64 `json:"token" example:"3"`
}

// StateResponse mirrors the lifecycle snapshot of the current analysis.
type StateResponse struct {
	Status     string                    `json:"status" example:"loading"`
	Loading    bool                      `json:"loading" example:"true"`
	StepIndex  int                       `json:"step_index" example:"2"`
	StepLabel  string                    `json:"step_label" example:"Cross-referencing accounts and loans..."`
	TotalSteps int                       `json:"total_steps" example:"7"`
	Error      string                    `json:"error,omitempty" example:"Analysis failed. Please ensure the file is a clear bank statement."`
	Token      uint64                    `json:"token" example:"3"`
	StartedAt  *time.Time                `json:"started_at,omitempty" example:"2025-01-15T10:30:00Z"`
	FinishedAt *time.Time                `json:"finished_at,omitempty" example:"2025-01-15T10:30:21Z"`
	Analysis   *domain.FinancialAnalysis `json:"analysis,omitempty"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
	Error  string `json:"error,omitempty" example:"no inference provider configured"`
}

// --- Generic Response Wrappers ---

// Response wraps a successful response with data.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}
