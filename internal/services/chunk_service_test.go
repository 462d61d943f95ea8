package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chunkrecall/trainer/internal/errors"
	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/repository"
	"github.com/chunkrecall/trainer/internal/services"
	"github.com/chunkrecall/trainer/internal/testutil/mocks"
)

func newChunkService() (services.ChunkService, *mocks.MockChunkRepository, *mocks.MockQueueRepository) {
	chunks := new(mocks.MockChunkRepository)
	queues := new(mocks.MockQueueRepository)
	return services.NewChunkService(chunks, queues, fixedClock()), chunks, queues
}

func TestAddChunk(t *testing.T) {
	svc, chunks, _ := newChunkService()
	ctx := context.Background()

	chunks.On("Insert", ctx, mock.MatchedBy(func(c models.Chunk) bool {
		return c.UserID == 1 && c.JPPrompt == "お願いします" && c.ENAnswer == "please" &&
			c.EaseFactor == 2.5 && c.IntervalDays == 0 && c.ReviewCount == 0 && c.NextDueDate == today
	})).Return(int64(42), nil)
	stored := models.NewChunk(1, "お願いします", "please", today)
	stored.ID = 42
	chunks.On("Get", ctx, int64(1), int64(42)).Return(&stored, nil)

	got, err := svc.AddChunk(ctx, 1, "  お願いします ", "please\n")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.ID)
	chunks.AssertExpectations(t)
}

func TestAddChunk_Validation(t *testing.T) {
	svc, chunks, _ := newChunkService()

	_, err := svc.AddChunk(context.Background(), 1, " ", "please")
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
	_, err = svc.AddChunk(context.Background(), 1, "jp", "")
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
	chunks.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestGetChunk_NotFound(t *testing.T) {
	svc, chunks, _ := newChunkService()
	chunks.On("Get", mock.Anything, int64(1), int64(5)).Return(nil, repository.ErrNotFound)

	_, err := svc.GetChunk(context.Background(), 1, 5)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNotFound))
}

func TestListChunks_FillsTodayForDueFilter(t *testing.T) {
	svc, chunks, _ := newChunkService()
	want := models.ChunkFilter{UserID: 1, DueOnly: true, Today: today, Limit: 20}
	chunks.On("List", mock.Anything, want).Return([]models.Chunk{chunk(1, 2.5, 0, 0, today)}, nil)
	chunks.On("Count", mock.Anything, want).Return(31, nil)

	list, total, err := svc.ListChunks(context.Background(), models.ChunkFilter{UserID: 1, DueOnly: true, Limit: 20})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 31, total)
}

func TestEditChunks_Validation(t *testing.T) {
	tests := []struct {
		name  string
		edit  models.ChunkEdit
		field string
	}{
		{"empty prompt", models.ChunkEdit{ID: 1, JPPrompt: " ", ENAnswer: "a", EaseFactor: 2.5}, "jp_prompt"},
		{"empty answer", models.ChunkEdit{ID: 1, JPPrompt: "a", ENAnswer: "", EaseFactor: 2.5}, "en_answer"},
		{"ef too low", models.ChunkEdit{ID: 1, JPPrompt: "a", ENAnswer: "b", EaseFactor: 1.29}, "ef"},
		{"ef too high", models.ChunkEdit{ID: 1, JPPrompt: "a", ENAnswer: "b", EaseFactor: 5.01}, "ef"},
		{"negative interval", models.ChunkEdit{ID: 1, JPPrompt: "a", ENAnswer: "b", EaseFactor: 2.5, IntervalDays: -1}, "interval"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, chunks, _ := newChunkService()
			_, err := svc.EditChunks(context.Background(), 1, []models.ChunkEdit{tt.edit})

			appErr, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrCodeValidation, appErr.Code)
			assert.Contains(t, appErr.Message, tt.field)
			chunks.AssertNotCalled(t, "UpdateContent", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestEditChunks_TrimsAndSaves(t *testing.T) {
	svc, chunks, _ := newChunkService()
	chunks.On("UpdateContent", mock.Anything, int64(1), []models.ChunkEdit{
		{ID: 3, JPPrompt: "犬", ENAnswer: "dog", EaseFactor: 1.3, IntervalDays: 0},
		{ID: 4, JPPrompt: "猫", ENAnswer: "cat", EaseFactor: 5.0, IntervalDays: 30},
	}).Return(2, nil)

	n, err := svc.EditChunks(context.Background(), 1, []models.ChunkEdit{
		{ID: 3, JPPrompt: " 犬 ", ENAnswer: "dog ", EaseFactor: 1.3},
		{ID: 4, JPPrompt: "猫", ENAnswer: "cat", EaseFactor: 5.0, IntervalDays: 30},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestDeleteAndResetRequireSelection(t *testing.T) {
	svc, _, _ := newChunkService()

	_, err := svc.DeleteChunks(context.Background(), 1, nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
	_, err = svc.ResetIntervals(context.Background(), 1, []int64{})
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
}

func TestResetIntervals_UsesToday(t *testing.T) {
	svc, chunks, _ := newChunkService()
	chunks.On("ResetIntervals", mock.Anything, int64(1), []int64{2, 3}, today).Return(2, nil)

	n, err := svc.ResetIntervals(context.Background(), 1, []int64{2, 3})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestResetAll_ClearsQueue(t *testing.T) {
	svc, chunks, queues := newChunkService()
	chunks.On("DeleteAll", mock.Anything, int64(1)).Return(12, nil)
	queues.On("DeleteForUser", mock.Anything, int64(1)).Return(nil)

	n, err := svc.ResetAll(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	queues.AssertExpectations(t)
}
