package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/munchmtxi/realtime-gateway/internal/core/domain"
	"github.com/munchmtxi/realtime-gateway/internal/core/ports"
)

// DispatchLogRepository persists dispatch records for post-hoc auditing.
// It is wired into the dispatcher as an optional sink; when no database is
// configured the dispatcher runs with the log sink alone.
type DispatchLogRepository struct {
	pool *pgxpool.Pool
}

var _ ports.DispatchSink = (*DispatchLogRepository)(nil)

// NewDispatchLogRepository creates a new dispatch log repository.
func NewDispatchLogRepository(pool *pgxpool.Pool) *DispatchLogRepository {
	return &DispatchLogRepository{pool: pool}
}

// Record inserts a single dispatch record.
func (r *DispatchLogRepository) Record(ctx context.Context, rec domain.DispatchRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO dispatch_log (id, event, rooms, recipients, delivered, reason, emitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.Event, rec.Rooms, rec.Recipients, rec.Delivered, rec.Reason, rec.EmittedAt,
	)
	return err
}

// ListRecent returns the most recent dispatch records, newest first.
func (r *DispatchLogRepository) ListRecent(ctx context.Context, limit int) ([]domain.DispatchRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, event, rooms, recipients, delivered, reason, emitted_at
		FROM dispatch_log
		ORDER BY emitted_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.DispatchRecord
	for rows.Next() {
		var rec domain.DispatchRecord
		if err := rows.Scan(&rec.ID, &rec.Event, &rec.Rooms, &rec.Recipients, &rec.Delivered, &rec.Reason, &rec.EmittedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// CountByEvent returns dispatch counts per event name, for operator dashboards.
func (r *DispatchLogRepository) CountByEvent(ctx context.Context) (map[string]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT event, COUNT(*)
		FROM dispatch_log
		GROUP BY event`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var event string
		var count int64
		if err := rows.Scan(&event, &count); err != nil {
			return nil, err
		}
		counts[event] = count
	}

	return counts, rows.Err()
}

// Ping verifies database connectivity.
func (r *DispatchLogRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
