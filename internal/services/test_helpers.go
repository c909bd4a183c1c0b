package services

import (
	"context"

	"github.com/stretchr/testify/mock"

	"globalinsights/internal/dataprocessing"
)

// MockEventPublisher is a mock for the EventPublisher interface
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Broadcast(messageType string, data any) {
	m.Called(messageType, data)
}

// MockDatasetLoader is a mock for the DatasetLoader interface
type MockDatasetLoader struct {
	mock.Mock
}

func (m *MockDatasetLoader) Load(ctx context.Context) (*dataprocessing.Dataset, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dataprocessing.Dataset), args.Error(1)
}
