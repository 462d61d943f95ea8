package repository

import (
	"context"

	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/srs"
)

// StatsRepository handles statistics data access
type StatsRepository interface {
	ChunkStats(ctx context.Context, userID int64, today srs.Date) (*models.ChunkStats, error)
	QualityDistribution(ctx context.Context, userID int64) ([]models.QualityCount, error)
}
