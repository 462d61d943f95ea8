package services

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"strings"

	"github.com/chunkrecall/trainer/internal/errors"
	"github.com/chunkrecall/trainer/internal/jobs"
	"github.com/chunkrecall/trainer/internal/logger"
	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/repository"
	"github.com/chunkrecall/trainer/internal/transfer"
	"github.com/chunkrecall/trainer/internal/worker"
)

// MaxImportSize bounds uploaded spreadsheets.
const MaxImportSize = 10 << 20

// TransferService handles spreadsheet import and export
type TransferService interface {
	ImportCSV(ctx context.Context, userID int64, r io.Reader) (int, error)
	ImportXLSX(ctx context.Context, userID int64, r io.Reader) (int, error)
	ExportCSV(ctx context.Context, userID int64, w io.Writer) error
	ExportXLSX(ctx context.Context, userID int64, w io.Writer) error
	QueueImport(ctx context.Context, userID int64, filename string, data []byte) (*models.ImportRecord, error)
	RecentImports(ctx context.Context, userID int64, limit int) ([]models.ImportRecord, error)
}

type transferService struct {
	chunkRepo  repository.ChunkRepository
	importRepo repository.ImportRepository
	jobQueue   jobs.JobQueue
	clock      Clock
}

// NewTransferService creates a new TransferService
func NewTransferService(
	chunkRepo repository.ChunkRepository,
	importRepo repository.ImportRepository,
	jobQueue jobs.JobQueue,
	clock Clock,
) TransferService {
	return &transferService{
		chunkRepo:  chunkRepo,
		importRepo: importRepo,
		jobQueue:   jobQueue,
		clock:      clock,
	}
}

func (s *transferService) ImportCSV(ctx context.Context, userID int64, r io.Reader) (int, error) {
	return s.importFile(ctx, userID, models.ImportFormatCSV, r)
}

func (s *transferService) ImportXLSX(ctx context.Context, userID int64, r io.Reader) (int, error) {
	return s.importFile(ctx, userID, models.ImportFormatXLSX, r)
}

func (s *transferService) importFile(ctx context.Context, userID int64, format string, r io.Reader) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("transfer_service")

	rows, err := transfer.Read(format, r, s.clock.today())
	if err != nil {
		log.Warn("rejected %s import: %v", format, err)
		return 0, importError(err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	ids, err := s.chunkRepo.InsertBatch(ctx, transfer.Chunks(rows, userID))
	if err != nil {
		log.Error("failed to store imported chunks: %v", err)
		return 0, errors.NewInternalError(err)
	}
	log.Info("imported %d chunks for user %d", len(ids), userID)
	return len(ids), nil
}

// importError turns a parse failure into a validation error naming the file.
func importError(err error) error {
	var rowErr *transfer.RowError
	switch {
	case stderrors.As(err, &rowErr),
		stderrors.Is(err, transfer.ErrMissingColumns),
		stderrors.Is(err, transfer.ErrUnsupportedFormat):
		return errors.NewValidationError("file", err.Error()).Wrap(err)
	}
	return errors.NewBadRequestError("could not read file: " + err.Error()).Wrap(err)
}

func (s *transferService) ExportCSV(ctx context.Context, userID int64, w io.Writer) error {
	return s.export(ctx, userID, models.ImportFormatCSV, w)
}

func (s *transferService) ExportXLSX(ctx context.Context, userID int64, w io.Writer) error {
	return s.export(ctx, userID, models.ImportFormatXLSX, w)
}

func (s *transferService) export(ctx context.Context, userID int64, format string, w io.Writer) error {
	log := logger.FromContext(ctx).WithPrefix("transfer_service")

	chunks, err := s.chunkRepo.All(ctx, userID)
	if err != nil {
		log.Error("failed to load chunks for export: %v", err)
		return errors.NewInternalError(err)
	}
	if err := transfer.Write(format, w, chunks); err != nil {
		log.Error("failed to write %s export: %v", format, err)
		return errors.NewInternalError(err)
	}
	log.Debug("exported %d chunks as %s", len(chunks), format)
	return nil
}

// QueueImport records the upload and hands it to the background workers.
func (s *transferService) QueueImport(ctx context.Context, userID int64, filename string, data []byte) (*models.ImportRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("transfer_service")
	log = log.WithFields(map[string]any{"user_id": userID, "file": filename})

	filename = strings.TrimSpace(filename)
	format, err := transfer.DetectFormat(filename)
	if err != nil {
		return nil, errors.NewValidationError("file", err.Error())
	}
	if len(data) == 0 {
		return nil, errors.NewValidationError("file", "is empty")
	}
	if len(data) > MaxImportSize {
		return nil, errors.NewValidationError("file", "is larger than 10 MB")
	}

	rec := models.ImportRecord{UserID: userID, Filename: filename, Format: format, Status: models.ImportStatusPending}
	id, err := s.importRepo.Create(ctx, rec)
	if err != nil {
		log.Error("failed to record import: %v", err)
		return nil, errors.NewInternalError(err)
	}
	rec.ID = id

	err = s.jobQueue.EnqueueImport(jobs.ImportRequest{
		ImportID: id,
		UserID:   userID,
		Filename: filename,
		Format:   format,
		Data:     bytes.Clone(data),
		Today:    s.clock.today(),
	})
	if err != nil {
		log.Warn("failed to queue import: %v", err)
		if ferr := s.importRepo.Finish(ctx, id, 0, err); ferr != nil {
			log.Error("failed to mark import failed: %v", ferr)
		}
		if stderrors.Is(err, worker.ErrQueueFull) || stderrors.Is(err, worker.ErrPoolStopped) {
			return nil, errors.NewUnavailableError("import queue", err)
		}
		return nil, errors.NewInternalError(err)
	}
	log.Info("queued import %d", id)
	return &rec, nil
}

func (s *transferService) RecentImports(ctx context.Context, userID int64, limit int) ([]models.ImportRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("transfer_service")

	recs, err := s.importRepo.Recent(ctx, userID, limit)
	if err != nil {
		log.Error("failed to list imports: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return recs, nil
}
