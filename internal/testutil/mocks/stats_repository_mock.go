package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/srs"
)

// MockStatsRepository is a mock implementation of repository.StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) ChunkStats(ctx context.Context, userID int64, today srs.Date) (*models.ChunkStats, error) {
	args := m.Called(ctx, userID, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChunkStats), args.Error(1)
}

func (m *MockStatsRepository) QualityDistribution(ctx context.Context, userID int64) ([]models.QualityCount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.QualityCount), args.Error(1)
}
