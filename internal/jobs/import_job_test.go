package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chunkrecall/trainer/internal/jobs"
	"github.com/chunkrecall/trainer/internal/models"
	"github.com/chunkrecall/trainer/internal/repository/sqlite"
	"github.com/chunkrecall/trainer/internal/srs"
	"github.com/chunkrecall/trainer/internal/testutil"
	"github.com/chunkrecall/trainer/internal/worker"
)

var today = srs.NewDate(2025, time.March, 14)

func TestImportChunksJob(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)
	ctx := context.Background()

	userID := testutil.CreateUser(t, db, "learner@example.com")
	chunkRepo := sqlite.NewChunkRepository(db)
	importRepo := sqlite.NewImportRepository(db)

	ok, err := importRepo.Create(ctx, models.ImportRecord{UserID: userID, Filename: "deck.csv", Format: models.ImportFormatCSV})
	require.NoError(t, err)
	bad, err := importRepo.Create(ctx, models.ImportRecord{UserID: userID, Filename: "bad.csv", Format: models.ImportFormatCSV})
	require.NoError(t, err)

	good := &jobs.ImportChunksJob{ChunkRepo: chunkRepo, ImportRepo: importRepo, Request: jobs.ImportRequest{
		ImportID: ok, UserID: userID, Filename: "deck.csv", Format: models.ImportFormatCSV, Today: today,
		Data: []byte("jp,en,interval\n犬,dog,3\n猫,cat,\n"),
	}}
	require.NoError(t, good.Run(ctx))

	broken := &jobs.ImportChunksJob{ChunkRepo: chunkRepo, ImportRepo: importRepo, Request: jobs.ImportRequest{
		ImportID: bad, UserID: userID, Filename: "bad.csv", Format: models.ImportFormatCSV, Today: today,
		Data: []byte("jp,en,ef\n鳥,bird,1.0\n"),
	}}
	assert.Error(t, broken.Run(ctx))

	chunks, err := chunkRepo.All(ctx, userID)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 3, chunks[0].IntervalDays)

	recent, err := importRepo.Recent(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, models.ImportStatusFailed, recent[0].Status)
	assert.Contains(t, recent[0].Error, "row 2, column ef")
	assert.Equal(t, models.ImportStatusCompleted, recent[1].Status)
	assert.Equal(t, 2, recent[1].Imported)
}

func TestWorkerQueue_EnqueueImport(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)
	ctx := context.Background()

	userID := testutil.CreateUser(t, db, "learner@example.com")
	chunkRepo := sqlite.NewChunkRepository(db)
	importRepo := sqlite.NewImportRepository(db)
	id, err := importRepo.Create(ctx, models.ImportRecord{UserID: userID, Filename: "deck.csv", Format: models.ImportFormatCSV})
	require.NoError(t, err)

	pool := worker.NewPool(1, 4)
	pool.Start(ctx)
	queue := jobs.NewWorkerQueue(pool, chunkRepo, importRepo)

	require.NoError(t, queue.EnqueueImport(jobs.ImportRequest{
		ImportID: id, UserID: userID, Filename: "deck.csv", Format: models.ImportFormatCSV, Today: today,
		Data: []byte("jp,en\nはい,yes\n"),
	}))
	pool.Stop()

	assert.Equal(t, int64(1), pool.Stats().Completed)
	n, err := chunkRepo.Count(ctx, models.ChunkFilter{UserID: userID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
