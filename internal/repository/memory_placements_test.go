package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"seatplan/internal/catalog"
	"seatplan/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySaveAndGet(t *testing.T) {
	repo := NewMemoryPlacementRepository()
	ctx := context.Background()

	run := sampleRun()
	run.RunID = ""
	require.NoError(t, repo.SaveRun(ctx, run))
	require.NotEmpty(t, run.RunID)

	got, err := repo.GetRun(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, run.Summary, got.Summary)

	// 返回的是副本
	got.Rooms[0].RoomName = "changed"
	again, err := repo.GetRun(ctx, run.RunID)
	require.NoError(t, err)
	assert.Equal(t, "AS3", again.Rooms[0].RoomName)

	assert.Error(t, repo.SaveRun(ctx, run), "duplicate run id")

	_, err = repo.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestMemoryListRuns_NewestFirst(t *testing.T) {
	repo := NewMemoryPlacementRepository()
	ctx := context.Background()
	base := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.SaveRun(ctx, &models.PlacementResult{
			RunID:     fmt.Sprintf("run-%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	items, total, err := repo.ListRuns(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, items, 2)
	assert.Equal(t, "run-4", items[0].RunID)
	assert.Equal(t, "run-3", items[1].RunID)

	items, _, err = repo.ListRuns(ctx, 3, 2)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "run-0", items[0].RunID)

	items, _, err = repo.ListRuns(ctx, 9, 2)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestMemoryRoomLayouts(t *testing.T) {
	layout := catalog.RoomSpec{Name: "LAB", Grid: models.SeatGridSpec{models.SectionLeft: {Rows: 1, Cols: 2}}}
	repo := NewMemoryRoomLayoutRepository(layout)

	specs, err := repo.ListRoomLayouts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []catalog.RoomSpec{layout}, specs)
}
