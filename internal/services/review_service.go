package services

import (
	"context"
	stderrors "errors"

	"github.com/chunkrecall/trainer/internal/errors"
	"github.com/chunkrecall/trainer/internal/logger"
	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/repository"
	"github.com/chunkrecall/trainer/internal/srs"
)

// DefaultDailyLimit is the number of chunks picked for a day's practice.
const DefaultDailyLimit = 5

// ReviewService handles practice: picking what is due and applying reviews.
type ReviewService interface {
	DueChunks(ctx context.Context, userID int64, limit int) ([]models.Chunk, error)
	TodayQueue(ctx context.Context, userID int64) (*models.PracticeQueue, error)
	Review(ctx context.Context, userID, chunkID int64, quality int, timeSeconds float64) (*models.Chunk, error)
	BuildQueues(ctx context.Context) (int, error)
}

type reviewService struct {
	chunkRepo  repository.ChunkRepository
	queueRepo  repository.QueueRepository
	userRepo   repository.UserRepository
	dailyLimit int
	clock      Clock
}

// NewReviewService creates a new ReviewService
func NewReviewService(
	chunkRepo repository.ChunkRepository,
	queueRepo repository.QueueRepository,
	userRepo repository.UserRepository,
	dailyLimit int,
	clock Clock,
) ReviewService {
	if dailyLimit <= 0 {
		dailyLimit = DefaultDailyLimit
	}
	return &reviewService{
		chunkRepo:  chunkRepo,
		queueRepo:  queueRepo,
		userRepo:   userRepo,
		dailyLimit: dailyLimit,
		clock:      clock,
	}
}

func (s *reviewService) DueChunks(ctx context.Context, userID int64, limit int) ([]models.Chunk, error) {
	log := logger.FromContext(ctx).WithPrefix("review_service")
	log.Debug("getting due chunks: user_id=%d, limit=%d", userID, limit)

	chunks, err := s.chunkRepo.Due(ctx, userID, s.clock.today(), limit)
	if err != nil {
		log.Error("failed to get due chunks: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return chunks, nil
}

// TodayQueue returns today's queue, building it on first use.
func (s *reviewService) TodayQueue(ctx context.Context, userID int64) (*models.PracticeQueue, error) {
	log := logger.FromContext(ctx).WithPrefix("review_service")
	today := s.clock.today()

	queue, err := s.ensureQueue(ctx, userID, today)
	if err != nil {
		log.Error("failed to load today's queue: %v", err)
		return nil, errors.NewInternalError(err)
	}

	pending := make([]models.Chunk, 0, queue.Total())
	for _, id := range queue.Pending() {
		chunk, err := s.chunkRepo.Get(ctx, userID, id)
		if stderrors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			log.Error("failed to load queued chunk %d: %v", id, err)
			return nil, errors.NewInternalError(err)
		}
		pending = append(pending, *chunk)
	}
	return &models.PracticeQueue{Queue: *queue, Pending: pending}, nil
}

// ensureQueue returns the user's queue for today, building it if the day has
// none yet. An existing queue is never rebuilt, so its done flags survive.
func (s *reviewService) ensureQueue(ctx context.Context, userID int64, today srs.Date) (*models.DailyQueue, error) {
	queue, err := s.queueRepo.Get(ctx, userID, today)
	if !stderrors.Is(err, repository.ErrNotFound) {
		return queue, err
	}
	logger.FromContext(ctx).WithPrefix("review_service").Debug("no queue yet for user %d on %s", userID, today)
	if err := s.buildQueue(ctx, userID, today); err != nil {
		return nil, err
	}
	return s.queueRepo.Get(ctx, userID, today)
}

// buildQueue picks today's practice set from all of the user's chunks.
func (s *reviewService) buildQueue(ctx context.Context, userID int64, today srs.Date) error {
	log := logger.FromContext(ctx).WithPrefix("review_service")

	chunks, err := s.chunkRepo.All(ctx, userID)
	if err != nil {
		return err
	}
	states := make([]srs.State, len(chunks))
	for i, c := range chunks {
		states[i] = c.Schedule()
	}

	selected := srs.SelectDue(states, today, s.dailyLimit)
	ids := make([]int64, len(selected))
	for i, st := range selected {
		ids[i] = st.ID
	}
	if err := s.queueRepo.Replace(ctx, userID, today, ids); err != nil {
		return err
	}
	log.Info("built queue for user %d on %s: %d of %d chunks", userID, today, len(ids), len(chunks))
	return nil
}

func (s *reviewService) Review(ctx context.Context, userID, chunkID int64, quality int, timeSeconds float64) (*models.Chunk, error) {
	log := logger.FromContext(ctx).WithPrefix("review_service")
	log.Debug("reviewing chunk: chunk_id=%d, quality=%d", chunkID, quality)

	if !srs.ValidQuality(quality) {
		return nil, errors.NewValidationError("quality", "must be between 0 and 5").Wrap(srs.ErrInvalidQuality)
	}
	if timeSeconds < 0 {
		timeSeconds = 0
	}
	today := s.clock.today()

	// The queue is selected from pre-review states, so it must exist first.
	if _, err := s.ensureQueue(ctx, userID, today); err != nil {
		log.Warn("failed to prepare today's queue for user %d: %v", userID, err)
	}

	updated, err := s.chunkRepo.ApplyReview(ctx, userID, chunkID, func(current models.Chunk) (models.Chunk, models.ReviewHistory, error) {
		next, err := srs.Update(current.Schedule(), quality, today)
		if err != nil {
			return current, models.ReviewHistory{}, err
		}
		current.ApplySchedule(next)
		return current, models.ReviewHistory{
			ChunkID:      current.ID,
			UserID:       userID,
			Quality:      quality,
			TimeSeconds:  timeSeconds,
			EaseFactor:   next.EasinessFactor,
			IntervalDays: next.Interval,
		}, nil
	})
	if err != nil {
		switch {
		case stderrors.Is(err, repository.ErrNotFound):
			return nil, errors.NewNotFoundError("chunk", chunkID)
		case stderrors.Is(err, srs.ErrInvalidQuality):
			return nil, errors.NewValidationError("quality", "must be between 0 and 5").Wrap(err)
		}
		log.Error("failed to apply review: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Debug("applied review, new interval=%d days, ease_factor=%.2f", updated.IntervalDays, updated.EaseFactor)

	// Chunks reviewed outside the queue have no entry to mark.
	if _, err := s.queueRepo.MarkDone(ctx, userID, today, chunkID); err != nil {
		log.Warn("failed to mark chunk %d done in queue: %v", chunkID, err)
	}
	return updated, nil
}

// BuildQueues makes sure every user has a queue for today. Queues already
// built today, for example by an early review, are left alone. A failure for
// one user does not stop the others.
func (s *reviewService) BuildQueues(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("review_service")
	today := s.clock.today()

	users, err := s.userRepo.List(ctx)
	if err != nil {
		log.Error("failed to list users: %v", err)
		return 0, errors.NewInternalError(err)
	}

	built := 0
	var errs []error
	for _, u := range users {
		if _, err := s.ensureQueue(ctx, u.ID, today); err != nil {
			log.Error("failed to build queue for user %d: %v", u.ID, err)
			errs = append(errs, err)
			continue
		}
		built++
	}
	if len(errs) > 0 {
		return built, errors.NewInternalError(stderrors.Join(errs...))
	}
	log.Info("built %d daily queues for %s", built, today)
	return built, nil
}
