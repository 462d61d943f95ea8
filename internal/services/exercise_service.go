package services

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"strings"

	"github.com/chunkrecall/trainer/internal/errors"
	"github.com/chunkrecall/trainer/internal/exercise"
	"github.com/chunkrecall/trainer/internal/llm"
	"github.com/chunkrecall/trainer/internal/logger"
	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/repository"
)

// LLMClient is the part of llm.Client the exercise service uses.
type LLMClient interface {
	exercise.Completer
	Transcribe(ctx context.Context, apiKey, filename string, audio io.Reader) (string, error)
}

// CheckResult is a reviewed answer. SuggestedQuality is the model's score,
// offered to the learner as a starting point for the review.
type CheckResult struct {
	Exercise         models.Exercise `json:"exercise"`
	Review           exercise.Review `json:"review"`
	SuggestedQuality int             `json:"suggested_quality"`
}

// ExerciseService handles LLM-generated practice questions
type ExerciseService interface {
	Generate(ctx context.Context, userID, chunkID int64, apiKey string) (*models.Exercise, error)
	Check(ctx context.Context, userID, chunkID int64, answer, apiKey string) (*CheckResult, error)
	Transcribe(ctx context.Context, apiKey, filename string, audio io.Reader) (string, error)
}

type exerciseService struct {
	chunkRepo    repository.ChunkRepository
	exerciseRepo repository.ExerciseRepository
	llm          LLMClient
	generator    *exercise.Generator
}

// NewExerciseService creates a new ExerciseService
func NewExerciseService(chunkRepo repository.ChunkRepository, exerciseRepo repository.ExerciseRepository, client LLMClient) ExerciseService {
	return &exerciseService{
		chunkRepo:    chunkRepo,
		exerciseRepo: exerciseRepo,
		llm:          client,
		generator:    exercise.NewGenerator(client),
	}
}

func (s *exerciseService) loadChunk(ctx context.Context, userID, chunkID int64) (*models.Chunk, error) {
	chunk, err := s.chunkRepo.Get(ctx, userID, chunkID)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("chunk", chunkID)
		}
		return nil, errors.NewInternalError(err)
	}
	return chunk, nil
}

func (s *exerciseService) Generate(ctx context.Context, userID, chunkID int64, apiKey string) (*models.Exercise, error) {
	log := logger.FromContext(ctx).WithPrefix("exercise_service")

	chunk, err := s.loadChunk(ctx, userID, chunkID)
	if err != nil {
		return nil, err
	}
	ex, err := s.generator.Generate(ctx, apiKey, chunk.JPPrompt, chunk.ENAnswer)
	if err != nil {
		log.Error("failed to generate exercise for chunk %d: %v", chunkID, err)
		return nil, llmError(err)
	}
	return s.store(ctx, userID, chunkID, ex)
}

func (s *exerciseService) store(ctx context.Context, userID, chunkID int64, ex exercise.Exercise) (*models.Exercise, error) {
	rec := models.Exercise{UserID: userID, ChunkID: chunkID, Question: ex.Question, AnswerKey: ex.AnswerKey}
	id, err := s.exerciseRepo.Insert(ctx, rec)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("exercise_service").Error("failed to store exercise: %v", err)
		return nil, errors.NewInternalError(err)
	}
	rec.ID = id
	return &rec, nil
}

// Check reviews answer against the chunk's latest exercise, generating one
// first when none exists yet.
func (s *exerciseService) Check(ctx context.Context, userID, chunkID int64, answer, apiKey string) (*CheckResult, error) {
	log := logger.FromContext(ctx).WithPrefix("exercise_service")

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, errors.NewValidationError("answer", "cannot be empty")
	}
	chunk, err := s.loadChunk(ctx, userID, chunkID)
	if err != nil {
		return nil, err
	}

	var current models.Exercise
	latest, err := s.exerciseRepo.Latest(ctx, userID, chunkID)
	switch {
	case err == nil:
		current = *latest
	case !stderrors.Is(err, repository.ErrNotFound):
		log.Error("failed to load latest exercise: %v", err)
		return nil, errors.NewInternalError(err)
	}

	res, err := s.generator.Run(ctx, apiKey, exercise.Input{
		JPPrompt: chunk.JPPrompt,
		ENAnswer: chunk.ENAnswer,
		Exercise: exercise.Exercise{Question: current.Question, AnswerKey: current.AnswerKey},
		Answer:   answer,
	})
	if err != nil {
		log.Error("failed to check answer for chunk %d: %v", chunkID, err)
		return nil, llmError(err)
	}
	if res.Generated {
		stored, err := s.store(ctx, userID, chunkID, res.Exercise)
		if err != nil {
			return nil, err
		}
		current = *stored
	}

	feedback := res.Review.Markdown()
	score := res.Review.Score
	if err := s.exerciseRepo.SaveFeedback(ctx, current.ID, answer, feedback, &score); err != nil {
		log.Error("failed to save feedback: %v", err)
		return nil, errors.NewInternalError(err)
	}
	current.UserAnswer, current.Feedback, current.Score = answer, feedback, &score

	return &CheckResult{Exercise: current, Review: *res.Review, SuggestedQuality: score}, nil
}

func (s *exerciseService) Transcribe(ctx context.Context, apiKey, filename string, audio io.Reader) (string, error) {
	log := logger.FromContext(ctx).WithPrefix("exercise_service")

	text, err := s.llm.Transcribe(ctx, apiKey, filename, audio)
	if err != nil {
		log.Error("failed to transcribe %s: %v", filename, err)
		return "", llmError(err)
	}
	return text, nil
}

// llmError maps LLM failures onto application errors.
func llmError(err error) error {
	var apiErr *llm.APIError
	switch {
	case stderrors.Is(err, llm.ErrNoAPIKey):
		return errors.NewBadRequestError("no OpenAI API key configured; add one in settings").Wrap(err)
	case stderrors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden):
		return errors.NewBadRequestError("OpenAI rejected the API key").Wrap(err)
	case stderrors.Is(err, exercise.ErrEmptyAnswer):
		return errors.NewValidationError("answer", "cannot be empty").Wrap(err)
	}
	return errors.NewUnavailableError("OpenAI", err)
}
