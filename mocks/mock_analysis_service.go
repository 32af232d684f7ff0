package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"spendlens/internal/domain"
	"spendlens/internal/lifecycle"
)

// MockAnalysisService is a mock implementation of service.AnalysisService.
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Submit(ctx context.Context, doc domain.InputDocument) (uint64, error) {
	args := m.Called(ctx, doc)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockAnalysisService) Analyze(ctx context.Context, doc domain.InputDocument) (*domain.FinancialAnalysis, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialAnalysis), args.Error(1)
}

func (m *MockAnalysisService) AnalyzeObject(ctx context.Context, bucket, key string) (uint64, error) {
	args := m.Called(ctx, bucket, key)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockAnalysisService) State() lifecycle.Snapshot {
	args := m.Called()
	return args.Get(0).(lifecycle.Snapshot)
}

func (m *MockAnalysisService) Ready() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockAnalysisService) Wait(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
