package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jackma2003/edubridge-api/internal/models"
)

func TestProgressRepositoryGetOrCreateIsStable(t *testing.T) {
	db := setupTestDB(t, &models.Progress{}, &models.CompletedContent{})
	repo := NewProgressRepository(db)

	first, err := repo.GetOrCreate(context.Background(), 7, 3)
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	second, err := repo.GetOrCreate(context.Background(), 7, 3)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
}

func TestProgressRepositoryAddCompletionIdempotent(t *testing.T) {
	db := setupTestDB(t, &models.Progress{}, &models.CompletedContent{})
	repo := NewProgressRepository(db)

	record, err := repo.GetOrCreate(context.Background(), 1, 1)
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, repo.AddCompletion(context.Background(), record.ID, 42, now))
	require.NoError(t, repo.AddCompletion(context.Background(), record.ID, 42, now.Add(time.Minute)))

	stored, err := repo.Get(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, stored.CompletedContent, 1, "marking twice must not duplicate the entry")
}

func TestProgressRepositoryRemoveCompletionRoundTrip(t *testing.T) {
	db := setupTestDB(t, &models.Progress{}, &models.CompletedContent{})
	repo := NewProgressRepository(db)

	record, err := repo.GetOrCreate(context.Background(), 2, 9)
	require.NoError(t, err)

	require.NoError(t, repo.AddCompletion(context.Background(), record.ID, 5, time.Now()))
	require.NoError(t, repo.RemoveCompletion(context.Background(), record.ID, 5))
	// Removing again is a no-op.
	require.NoError(t, repo.RemoveCompletion(context.Background(), record.ID, 5))

	stored, err := repo.Get(context.Background(), 2, 9)
	require.NoError(t, err)
	require.Empty(t, stored.CompletedContent)
}

func TestProgressRepositoryUpdateOverall(t *testing.T) {
	db := setupTestDB(t, &models.Progress{}, &models.CompletedContent{})
	repo := NewProgressRepository(db)

	record, err := repo.GetOrCreate(context.Background(), 4, 4)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateOverall(context.Background(), record.ID, 67))

	stored, err := repo.Get(context.Background(), 4, 4)
	require.NoError(t, err)
	require.Equal(t, 67, stored.OverallProgress)
}
