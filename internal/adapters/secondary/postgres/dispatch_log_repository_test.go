package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munchmtxi/realtime-gateway/internal/core/domain"
)

// newTestRepo is a helper to create the repo for a test.
func newTestRepo(t *testing.T) *DispatchLogRepository {
	require.NotNil(t, testPool, "testPool is nil. TestMain may not have run.")
	return NewDispatchLogRepository(testPool)
}

func TestDispatchLogRepository_RecordAndList(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	// 1. Record a delivered dispatch
	delivered := domain.DispatchRecord{
		ID:         uuid.New(),
		Event:      "ride:updated",
		Rooms:      []string{"ride:7"},
		Recipients: 2,
		Delivered:  true,
		EmittedAt:  time.Now().UTC(),
	}
	require.NoError(t, repo.Record(ctx, delivered), "Failed to record dispatch")

	// 2. Record a failed dispatch
	failed := domain.DispatchRecord{
		ID:        uuid.New(),
		Event:     "wallet:funds_added",
		Rooms:     []string{"customer:42"},
		Delivered: false,
		Reason:    "unknown event",
		EmittedAt: time.Now().UTC().Add(time.Second),
	}
	require.NoError(t, repo.Record(ctx, failed), "Failed to record dispatch")

	// 3. List them back, newest first
	records, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err, "Failed to list dispatch records")
	require.GreaterOrEqual(t, len(records), 2)

	byID := make(map[uuid.UUID]domain.DispatchRecord, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}

	got, ok := byID[delivered.ID]
	require.True(t, ok, "delivered record not returned")
	assert.Equal(t, "ride:updated", got.Event)
	assert.Equal(t, []string{"ride:7"}, got.Rooms)
	assert.Equal(t, 2, got.Recipients)
	assert.True(t, got.Delivered)

	got, ok = byID[failed.ID]
	require.True(t, ok, "failed record not returned")
	assert.False(t, got.Delivered)
	assert.Equal(t, "unknown event", got.Reason)
}

func TestDispatchLogRepository_ListRecent_RespectsLimit(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	for i := 0; i < 3; i++ {
		rec := domain.DispatchRecord{
			ID:        uuid.New(),
			Event:     "chat:message_sent",
			Rooms:     []string{"chat:9"},
			Delivered: true,
			EmittedAt: time.Now().UTC(),
		}
		require.NoError(t, repo.Record(ctx, rec))
	}

	records, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestDispatchLogRepository_CountByEvent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	rec := domain.DispatchRecord{
		ID:        uuid.New(),
		Event:     "booking:updated",
		Rooms:     []string{"booking:3"},
		Delivered: true,
		EmittedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Record(ctx, rec))

	counts, err := repo.CountByEvent(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, counts["booking:updated"], int64(1))
}

func TestDispatchLogRepository_Ping(t *testing.T) {
	repo := newTestRepo(t)
	assert.NoError(t, repo.Ping(context.Background()))
}
