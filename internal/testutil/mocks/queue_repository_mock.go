package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/srs"
)

// MockQueueRepository is a mock implementation of repository.QueueRepository
type MockQueueRepository struct {
	mock.Mock
}

func (m *MockQueueRepository) Get(ctx context.Context, userID int64, date srs.Date) (*models.DailyQueue, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DailyQueue), args.Error(1)
}

func (m *MockQueueRepository) Replace(ctx context.Context, userID int64, date srs.Date, ids []int64) error {
	args := m.Called(ctx, userID, date, ids)
	return args.Error(0)
}

func (m *MockQueueRepository) MarkDone(ctx context.Context, userID int64, date srs.Date, chunkID int64) (bool, error) {
	args := m.Called(ctx, userID, date, chunkID)
	return args.Bool(0), args.Error(1)
}

func (m *MockQueueRepository) DeleteForUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
