package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/repository"
	"github.com/chunkrecall/trainer/internal/srs"
)

// MockChunkRepository is a mock implementation of repository.ChunkRepository
type MockChunkRepository struct {
	mock.Mock
}

func (m *MockChunkRepository) Get(ctx context.Context, userID, id int64) (*models.Chunk, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chunk), args.Error(1)
}

func (m *MockChunkRepository) List(ctx context.Context, filter models.ChunkFilter) ([]models.Chunk, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Chunk), args.Error(1)
}

func (m *MockChunkRepository) Count(ctx context.Context, filter models.ChunkFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockChunkRepository) All(ctx context.Context, userID int64) ([]models.Chunk, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Chunk), args.Error(1)
}

func (m *MockChunkRepository) Due(ctx context.Context, userID int64, today srs.Date, limit int) ([]models.Chunk, error) {
	args := m.Called(ctx, userID, today, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Chunk), args.Error(1)
}

func (m *MockChunkRepository) CountDue(ctx context.Context, userID int64, today srs.Date) (int, error) {
	args := m.Called(ctx, userID, today)
	return args.Int(0), args.Error(1)
}

func (m *MockChunkRepository) Insert(ctx context.Context, chunk models.Chunk) (int64, error) {
	args := m.Called(ctx, chunk)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockChunkRepository) InsertBatch(ctx context.Context, chunks []models.Chunk) ([]int64, error) {
	args := m.Called(ctx, chunks)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockChunkRepository) Update(ctx context.Context, chunk models.Chunk) error {
	args := m.Called(ctx, chunk)
	return args.Error(0)
}

func (m *MockChunkRepository) UpdateContent(ctx context.Context, userID int64, edits []models.ChunkEdit) (int, error) {
	args := m.Called(ctx, userID, edits)
	return args.Int(0), args.Error(1)
}

func (m *MockChunkRepository) DeleteMany(ctx context.Context, userID int64, ids []int64) (int, error) {
	args := m.Called(ctx, userID, ids)
	return args.Int(0), args.Error(1)
}

func (m *MockChunkRepository) ResetIntervals(ctx context.Context, userID int64, ids []int64, today srs.Date) (int, error) {
	args := m.Called(ctx, userID, ids, today)
	return args.Int(0), args.Error(1)
}

func (m *MockChunkRepository) DeleteAll(ctx context.Context, userID int64) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockChunkRepository) InsertReviewHistory(ctx context.Context, h models.ReviewHistory) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

// ApplyReview runs fn against the chunk given as the first return value
// when one is set, so tests exercise the real review callback.
func (m *MockChunkRepository) ApplyReview(ctx context.Context, userID, id int64, fn repository.ReviewFunc) (*models.Chunk, error) {
	args := m.Called(ctx, userID, id, fn)
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	current, ok := args.Get(0).(*models.Chunk)
	if !ok || current == nil {
		return nil, repository.ErrNotFound
	}
	next, _, err := fn(*current)
	if err != nil {
		return nil, err
	}
	return &next, nil
}
