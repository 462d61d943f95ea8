package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/chunkrecall/trainer/internal/models"
)

// MockExerciseRepository is a mock implementation of repository.ExerciseRepository
type MockExerciseRepository struct {
	mock.Mock
}

func (m *MockExerciseRepository) Insert(ctx context.Context, e models.Exercise) (int64, error) {
	args := m.Called(ctx, e)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockExerciseRepository) Latest(ctx context.Context, userID, chunkID int64) (*models.Exercise, error) {
	args := m.Called(ctx, userID, chunkID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Exercise), args.Error(1)
}

func (m *MockExerciseRepository) SaveFeedback(ctx context.Context, id int64, userAnswer, feedback string, score *int) error {
	args := m.Called(ctx, id, userAnswer, feedback, score)
	return args.Error(0)
}

// MockImportRepository is a mock implementation of repository.ImportRepository
type MockImportRepository struct {
	mock.Mock
}

func (m *MockImportRepository) Create(ctx context.Context, rec models.ImportRecord) (int64, error) {
	args := m.Called(ctx, rec)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockImportRepository) MarkRunning(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockImportRepository) Finish(ctx context.Context, id int64, imported int, importErr error) error {
	args := m.Called(ctx, id, imported, importErr)
	return args.Error(0)
}

func (m *MockImportRepository) Recent(ctx context.Context, userID int64, limit int) ([]models.ImportRecord, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ImportRecord), args.Error(1)
}
