package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"spendlens/internal/port"
)

// MockObjectSource is a mock implementation of port.ObjectSource.
type MockObjectSource struct {
	mock.Mock
}

func (m *MockObjectSource) Open(ctx context.Context, bucket, key string) (*port.StoredObject, error) {
	args := m.Called(ctx, bucket, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.StoredObject), args.Error(1)
}
