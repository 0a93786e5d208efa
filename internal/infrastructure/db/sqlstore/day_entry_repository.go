package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/abhicism/dailyplanner/internal/core/domain"
)

type DayEntryRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewDayEntryRepository(db *sqlx.DB) *DayEntryRepository {
	return &DayEntryRepository{db: db, now: time.Now}
}

type dayEntryRow struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	DateKey   string    `db:"date_key"`
	Payload   string    `db:"payload"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r dayEntryRow) toDomain() domain.DayEntry {
	return domain.DayEntry{
		ID:        r.ID,
		UserID:    r.UserID,
		DateKey:   r.DateKey,
		Payload:   r.Payload,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

const upsertDayEntry = `
INSERT INTO day_entries (user_id, date_key, payload, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (user_id, date_key)
DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`

// Upsert writes the entry in a single statement, so concurrent saves for the
// same key never produce two rows.
func (r *DayEntryRepository) Upsert(ctx context.Context, userID int64, dateKey, payload string) error {
	now := r.now().UTC()
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(upsertDayEntry), userID, dateKey, payload, now, now); err != nil {
		return fmt.Errorf("upsert day entry: %w", err)
	}
	return nil
}

func (r *DayEntryRepository) Get(ctx context.Context, userID int64, dateKey string) (*domain.DayEntry, error) {
	query := r.db.Rebind(`SELECT id, user_id, date_key, payload, created_at, updated_at
		FROM day_entries WHERE user_id = ? AND date_key = ?`)

	var row dayEntryRow
	if err := r.db.GetContext(ctx, &row, query, userID, dateKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDayEntryNotFound
		}
		return nil, fmt.Errorf("get day entry: %w", err)
	}
	entry := row.toDomain()
	return &entry, nil
}

// ListByUser returns the user's entries in the order they were first created.
func (r *DayEntryRepository) ListByUser(ctx context.Context, userID int64) ([]domain.DayEntry, error) {
	query := r.db.Rebind(`SELECT id, user_id, date_key, payload, created_at, updated_at
		FROM day_entries WHERE user_id = ? ORDER BY id`)

	var rows []dayEntryRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list day entries: %w", err)
	}

	entries := make([]domain.DayEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.toDomain())
	}
	return entries, nil
}
