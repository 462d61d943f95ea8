package jobs

import (
	"github.com/chunkrecall/trainer/internal/repository"
	"github.com/chunkrecall/trainer/internal/worker"
)

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	importPool *worker.Pool
	chunkRepo  repository.ChunkRepository
	importRepo repository.ImportRepository
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(
	importPool *worker.Pool,
	chunkRepo repository.ChunkRepository,
	importRepo repository.ImportRepository,
) JobQueue {
	return &WorkerQueue{
		importPool: importPool,
		chunkRepo:  chunkRepo,
		importRepo: importRepo,
	}
}

func (q *WorkerQueue) EnqueueImport(req ImportRequest) error {
	return q.importPool.Submit(&ImportChunksJob{
		ChunkRepo:  q.chunkRepo,
		ImportRepo: q.importRepo,
		Request:    req,
	})
}
