package services

import (
	"context"

	"github.com/chunkrecall/trainer/internal/errors"
	"github.com/chunkrecall/trainer/internal/logger"
	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/repository"
)

// StatsService handles statistics-related business logic
type StatsService interface {
	ChunkStats(ctx context.Context, userID int64) (*models.ChunkStats, error)
	QualityDistribution(ctx context.Context, userID int64) ([]models.QualityCount, error)
}

type statsService struct {
	statsRepo repository.StatsRepository
	clock     Clock
}

// NewStatsService creates a new StatsService
func NewStatsService(statsRepo repository.StatsRepository, clock Clock) StatsService {
	return &statsService{statsRepo: statsRepo, clock: clock}
}

func (s *statsService) ChunkStats(ctx context.Context, userID int64) (*models.ChunkStats, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_service")
	log.Debug("getting chunk stats: user_id=%d", userID)

	stats, err := s.statsRepo.ChunkStats(ctx, userID, s.clock.today())
	if err != nil {
		log.Error("failed to get chunk stats: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return stats, nil
}

func (s *statsService) QualityDistribution(ctx context.Context, userID int64) ([]models.QualityCount, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_service")
	log.Debug("getting quality distribution: user_id=%d", userID)

	dist, err := s.statsRepo.QualityDistribution(ctx, userID)
	if err != nil {
		log.Error("failed to get quality distribution: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return dist, nil
}
