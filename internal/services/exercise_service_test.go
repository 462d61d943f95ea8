package services_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/chunkrecall/trainer/internal/errors"
	"github.com/chunkrecall/trainer/internal/exercise"
	"github.com/chunkrecall/trainer/internal/llm"
	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/repository"
	"github.com/chunkrecall/trainer/internal/services"
	"github.com/chunkrecall/trainer/internal/testutil/mocks"
)

type exerciseFixture struct {
	chunks    *mocks.MockChunkRepository
	exercises *mocks.MockExerciseRepository
	llm       *mocks.MockLLMClient
	svc       services.ExerciseService
}

func newExerciseFixture() exerciseFixture {
	f := exerciseFixture{
		chunks:    new(mocks.MockChunkRepository),
		exercises: new(mocks.MockExerciseRepository),
		llm:       new(mocks.MockLLMClient),
	}
	f.svc = services.NewExerciseService(f.chunks, f.exercises, f.llm)
	return f
}

func schema(name string) any {
	return mock.MatchedBy(func(s llm.Schema) bool { return s.Name == name })
}

func TestGenerate(t *testing.T) {
	f := newExerciseFixture()
	c := models.NewChunk(1, "お知らせします", "I'll keep you posted", today)
	c.ID = 5
	f.chunks.On("Get", mock.Anything, int64(1), int64(5)).Return(&c, nil)
	f.llm.On("CompleteJSON", mock.Anything, "sk-user", mock.Anything, schema("exercise"), mock.Anything).
		Run(func(args mock.Arguments) {
			*args.Get(4).(*exercise.Exercise) = exercise.Exercise{Question: "Q?", AnswerKey: "A."}
		}).Return(nil)
	f.exercises.On("Insert", mock.Anything, models.Exercise{UserID: 1, ChunkID: 5, Question: "Q?", AnswerKey: "A."}).Return(int64(77), nil)

	ex, err := f.svc.Generate(context.Background(), 1, 5, "sk-user")
	require.NoError(t, err)
	assert.Equal(t, int64(77), ex.ID)
	assert.Equal(t, "Q?", ex.Question)
}

func TestGenerate_MissingKey(t *testing.T) {
	f := newExerciseFixture()
	c := chunk(5, 2.5, 0, 0, today)
	f.chunks.On("Get", mock.Anything, int64(1), int64(5)).Return(&c, nil)
	f.llm.On("CompleteJSON", mock.Anything, "", mock.Anything, mock.Anything, mock.Anything).Return(llm.ErrNoAPIKey)

	_, err := f.svc.Generate(context.Background(), 1, 5, "")
	assert.True(t, errors.HasCode(err, errors.ErrCodeBadRequest))
	assert.ErrorIs(t, err, llm.ErrNoAPIKey)
}

func TestGenerate_UpstreamFailure(t *testing.T) {
	f := newExerciseFixture()
	c := chunk(5, 2.5, 0, 0, today)
	f.chunks.On("Get", mock.Anything, int64(1), int64(5)).Return(&c, nil)
	f.llm.On("CompleteJSON", mock.Anything, "sk", mock.Anything, mock.Anything, mock.Anything).
		Return(&llm.APIError{Status: 503, Message: "overloaded"})

	_, err := f.svc.Generate(context.Background(), 1, 5, "sk")
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnavailable))
	f.exercises.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestCheck_ReviewsLatestExercise(t *testing.T) {
	f := newExerciseFixture()
	c := chunk(5, 2.5, 0, 0, today)
	f.chunks.On("Get", mock.Anything, int64(1), int64(5)).Return(&c, nil)
	f.exercises.On("Latest", mock.Anything, int64(1), int64(5)).
		Return(&models.Exercise{ID: 3, UserID: 1, ChunkID: 5, Question: "Q?", AnswerKey: "A."}, nil)
	f.llm.On("CompleteJSON", mock.Anything, "sk", mock.Anything, schema("review"), mock.Anything).
		Run(func(args mock.Arguments) {
			*args.Get(4).(*exercise.Review) = exercise.Review{Score: 3, Better: "Better.", Comment: "- 冠詞"}
		}).Return(nil)
	score := 3
	f.exercises.On("SaveFeedback", mock.Anything, int64(3), "my answer", "**Score:** 3/5\n\n**Better:** Better.\n\n- 冠詞", &score).Return(nil)

	res, err := f.svc.Check(context.Background(), 1, 5, " my answer ", "sk")
	require.NoError(t, err)
	assert.Equal(t, 3, res.SuggestedQuality)
	assert.Equal(t, int64(3), res.Exercise.ID)
	assert.True(t, res.Exercise.Answered())
	f.llm.AssertNumberOfCalls(t, "CompleteJSON", 1)
	f.exercises.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestCheck_GeneratesWhenNoExercise(t *testing.T) {
	f := newExerciseFixture()
	c := chunk(5, 2.5, 0, 0, today)
	f.chunks.On("Get", mock.Anything, int64(1), int64(5)).Return(&c, nil)
	f.exercises.On("Latest", mock.Anything, int64(1), int64(5)).Return(nil, repository.ErrNotFound)
	f.llm.On("CompleteJSON", mock.Anything, "sk", mock.Anything, schema("exercise"), mock.Anything).
		Run(func(args mock.Arguments) {
			*args.Get(4).(*exercise.Exercise) = exercise.Exercise{Question: "Q?", AnswerKey: "A."}
		}).Return(nil)
	f.llm.On("CompleteJSON", mock.Anything, "sk", mock.Anything, schema("review"), mock.Anything).
		Run(func(args mock.Arguments) {
			*args.Get(4).(*exercise.Review) = exercise.Review{Score: 5, Comment: "完璧"}
		}).Return(nil)
	f.exercises.On("Insert", mock.Anything, mock.Anything).Return(int64(8), nil)
	f.exercises.On("SaveFeedback", mock.Anything, int64(8), "answer", mock.Anything, mock.Anything).Return(nil)

	res, err := f.svc.Check(context.Background(), 1, 5, "answer", "sk")
	require.NoError(t, err)
	assert.Equal(t, int64(8), res.Exercise.ID)
	assert.Equal(t, "**Score:** 5/5\n\n完璧", res.Exercise.Feedback)
	f.llm.AssertNumberOfCalls(t, "CompleteJSON", 2)
}

func TestCheck_BlankAnswer(t *testing.T) {
	f := newExerciseFixture()
	_, err := f.svc.Check(context.Background(), 1, 5, "  ", "sk")
	assert.True(t, errors.HasCode(err, errors.ErrCodeValidation))
	f.chunks.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestTranscribe(t *testing.T) {
	f := newExerciseFixture()
	audio := strings.NewReader("RIFF")
	f.llm.On("Transcribe", mock.Anything, "sk", "a.wav", audio).Return("hello", nil)

	text, err := f.svc.Transcribe(context.Background(), "sk", "a.wav", audio)
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}
