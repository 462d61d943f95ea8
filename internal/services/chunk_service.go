package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/chunkrecall/trainer/internal/errors"
	"github.com/chunkrecall/trainer/internal/logger"
	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/repository"
	"github.com/chunkrecall/trainer/internal/srs"
)

// MaxEaseFactor caps manual edits; the scheduler itself has no upper bound.
const MaxEaseFactor = 5.0

// ChunkService handles chunk management
type ChunkService interface {
	AddChunk(ctx context.Context, userID int64, jp, en string) (*models.Chunk, error)
	ListChunks(ctx context.Context, filter models.ChunkFilter) ([]models.Chunk, int, error)
	GetChunk(ctx context.Context, userID, id int64) (*models.Chunk, error)
	EditChunks(ctx context.Context, userID int64, edits []models.ChunkEdit) (int, error)
	DeleteChunks(ctx context.Context, userID int64, ids []int64) (int, error)
	ResetIntervals(ctx context.Context, userID int64, ids []int64) (int, error)
	ResetAll(ctx context.Context, userID int64) (int, error)
}

type chunkService struct {
	chunkRepo repository.ChunkRepository
	queueRepo repository.QueueRepository
	clock     Clock
}

// NewChunkService creates a new ChunkService
func NewChunkService(chunkRepo repository.ChunkRepository, queueRepo repository.QueueRepository, clock Clock) ChunkService {
	return &chunkService{chunkRepo: chunkRepo, queueRepo: queueRepo, clock: clock}
}

func (s *chunkService) AddChunk(ctx context.Context, userID int64, jp, en string) (*models.Chunk, error) {
	log := logger.FromContext(ctx).WithPrefix("chunk_service")

	jp, en = strings.TrimSpace(jp), strings.TrimSpace(en)
	if jp == "" {
		return nil, errors.NewValidationError("jp_prompt", "cannot be empty")
	}
	if en == "" {
		return nil, errors.NewValidationError("en_answer", "cannot be empty")
	}

	id, err := s.chunkRepo.Insert(ctx, models.NewChunk(userID, jp, en, s.clock.today()))
	if err != nil {
		log.Error("failed to insert chunk: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("added chunk %d for user %d", id, userID)
	return s.GetChunk(ctx, userID, id)
}

func (s *chunkService) ListChunks(ctx context.Context, filter models.ChunkFilter) ([]models.Chunk, int, error) {
	log := logger.FromContext(ctx).WithPrefix("chunk_service")
	if filter.DueOnly && filter.Today.IsZero() {
		filter.Today = s.clock.today()
	}
	log.Debug("listing chunks: user_id=%d, search=%q, limit=%d, offset=%d", filter.UserID, filter.Search, filter.Limit, filter.Offset)

	chunks, err := s.chunkRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list chunks: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	total, err := s.chunkRepo.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count chunks: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	return chunks, total, nil
}

func (s *chunkService) GetChunk(ctx context.Context, userID, id int64) (*models.Chunk, error) {
	log := logger.FromContext(ctx).WithPrefix("chunk_service")

	chunk, err := s.chunkRepo.Get(ctx, userID, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("chunk", id)
		}
		log.Error("failed to get chunk %d: %v", id, err)
		return nil, errors.NewInternalError(err)
	}
	return chunk, nil
}

func (s *chunkService) EditChunks(ctx context.Context, userID int64, edits []models.ChunkEdit) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("chunk_service")

	for i := range edits {
		if err := validateEdit(&edits[i]); err != nil {
			return 0, err
		}
	}
	if len(edits) == 0 {
		return 0, nil
	}

	n, err := s.chunkRepo.UpdateContent(ctx, userID, edits)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return 0, errors.NewNotFoundError("chunk", "one of the edited chunks")
		}
		log.Error("failed to edit chunks: %v", err)
		return 0, errors.NewInternalError(err)
	}
	log.Info("edited %d chunks for user %d", n, userID)
	return n, nil
}

func validateEdit(e *models.ChunkEdit) error {
	e.JPPrompt = strings.TrimSpace(e.JPPrompt)
	e.ENAnswer = strings.TrimSpace(e.ENAnswer)
	field := func(name string) string { return fmt.Sprintf("chunk %d %s", e.ID, name) }

	switch {
	case e.JPPrompt == "":
		return errors.NewValidationError(field("jp_prompt"), "cannot be empty")
	case e.ENAnswer == "":
		return errors.NewValidationError(field("en_answer"), "cannot be empty")
	case e.EaseFactor < srs.MinEasinessFactor || e.EaseFactor > MaxEaseFactor:
		return errors.NewValidationError(field("ef"), fmt.Sprintf("must be between %.1f and %.1f", srs.MinEasinessFactor, MaxEaseFactor))
	case e.IntervalDays < 0:
		return errors.NewValidationError(field("interval"), "cannot be negative")
	}
	return nil
}

func (s *chunkService) DeleteChunks(ctx context.Context, userID int64, ids []int64) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("chunk_service")
	if len(ids) == 0 {
		return 0, errors.NewValidationError("ids", "select at least one chunk")
	}

	n, err := s.chunkRepo.DeleteMany(ctx, userID, ids)
	if err != nil {
		log.Error("failed to delete chunks: %v", err)
		return 0, errors.NewInternalError(err)
	}
	log.Info("deleted %d chunks for user %d", n, userID)
	return n, nil
}

func (s *chunkService) ResetIntervals(ctx context.Context, userID int64, ids []int64) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("chunk_service")
	if len(ids) == 0 {
		return 0, errors.NewValidationError("ids", "select at least one chunk")
	}

	n, err := s.chunkRepo.ResetIntervals(ctx, userID, ids, s.clock.today())
	if err != nil {
		log.Error("failed to reset intervals: %v", err)
		return 0, errors.NewInternalError(err)
	}
	log.Info("reset %d chunks for user %d", n, userID)
	return n, nil
}

// ResetAll deletes every chunk of the user and the practice queue built
// from them.
func (s *chunkService) ResetAll(ctx context.Context, userID int64) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("chunk_service")

	n, err := s.chunkRepo.DeleteAll(ctx, userID)
	if err != nil {
		log.Error("failed to delete all chunks: %v", err)
		return 0, errors.NewInternalError(err)
	}
	if err := s.queueRepo.DeleteForUser(ctx, userID); err != nil {
		log.Error("failed to clear queue: %v", err)
		return n, errors.NewInternalError(err)
	}
	log.Warn("deleted all %d chunks for user %d", n, userID)
	return n, nil
}
