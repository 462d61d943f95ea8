package jobs

import (
	"bytes"
	"context"
	"fmt"

	"github.com/chunkrecall/trainer/internal/logger"
	"github.com/chunkrecall/trainer/internal/repository"
	"github.com/chunkrecall/trainer/internal/transfer"
)

// ImportChunksJob parses a queued spreadsheet, inserts its chunks and
// records the outcome on the import row. A file with any bad row imports
// nothing.
type ImportChunksJob struct {
	ChunkRepo  repository.ChunkRepository
	ImportRepo repository.ImportRepository
	Request    ImportRequest
}

func (j *ImportChunksJob) Name() string { return "import_chunks" }

func (j *ImportChunksJob) Run(ctx context.Context) error {
	req := j.Request
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"import_id": req.ImportID,
		"user_id":   req.UserID,
		"file":      req.Filename,
	})
	log.Info("starting background import")

	if err := j.ImportRepo.MarkRunning(ctx, req.ImportID); err != nil {
		log.Error("failed to mark import running: %v", err)
		return err
	}

	imported, importErr := j.importChunks(ctx)
	if err := j.ImportRepo.Finish(context.WithoutCancel(ctx), req.ImportID, imported, importErr); err != nil {
		log.Error("failed to record import result: %v", err)
		return err
	}
	if importErr != nil {
		log.Warn("import failed: %v", importErr)
		return importErr
	}
	log.Info("imported %d chunks", imported)
	return nil
}

func (j *ImportChunksJob) importChunks(ctx context.Context) (int, error) {
	req := j.Request
	rows, err := transfer.Read(req.Format, bytes.NewReader(req.Data), req.Today)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	ids, err := j.ChunkRepo.InsertBatch(ctx, transfer.Chunks(rows, req.UserID))
	if err != nil {
		return 0, fmt.Errorf("storing chunks: %w", err)
	}
	return len(ids), nil
}
