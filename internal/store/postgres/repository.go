// Package postgres is the Postgres record store, for deployments that keep
// entries in a hosted database.
package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodylog/custodylog-server/internal/domain"
	"github.com/custodylog/custodylog-server/internal/store"
)

//go:embed schema.sql
var schemaSQL string

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var _ store.Store = (*Repository)(nil)

// Repository provides Postgres-backed persistence for entries and photos.
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRepository constructs a Repository over an existing pool.
func NewRepository(pool *pgxpool.Pool, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Repository{pool: pool, logger: logger}
}

// Open connects to connStr, applies the schema and returns a Repository that
// owns the pool.
func Open(ctx context.Context, connStr string, logger *slog.Logger) (*Repository, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	r := NewRepository(pool, logger)
	if err := r.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	r.logger.Info("Postgres store opened", "database", pool.Config().ConnConfig.Database)
	return r, nil
}

// Migrate applies the embedded schema. Safe to run repeatedly.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Ping checks the pool can reach the server.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the pool.
func (r *Repository) Close() error {
	r.pool.Close()
	return nil
}

// CreateEntry inserts a daily entry.
func (r *Repository) CreateEntry(ctx context.Context, e *domain.DailyEntry) error {
	if e.ID == "" || e.UserID == "" || e.Date.IsZero() {
		return store.ErrInvalidInput.WithMessage("entry requires id, user and date")
	}

	const insert = `INSERT INTO daily_entries (id, user_id, date, activities, custom_activities, special_events, meals, notes, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`

	_, err := r.pool.Exec(ctx, insert,
		e.ID,
		e.UserID,
		e.Date.Time(),
		nonNil(e.Activities),
		nonNil(e.CustomActivities),
		nonNil(e.SpecialEvents),
		e.Meals,
		e.Notes,
		e.CreatedAt.UTC(),
	)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// CreatePhoto inserts a photo row. The location is stored as JSONB.
func (r *Repository) CreatePhoto(ctx context.Context, p *domain.Photo) error {
	if p.ID == "" || p.EntryID == "" || p.FilePath == "" {
		return store.ErrInvalidInput.WithMessage("photo requires id, entry and file path")
	}

	var location []byte
	if p.Location != nil {
		var err error
		if location, err = json.Marshal(p.Location); err != nil {
			return fmt.Errorf("encode location: %w", err)
		}
	}

	const insert = `INSERT INTO entry_photos (id, entry_id, file_path, location, created_at)
        VALUES ($1,$2,$3,$4::jsonb,$5)`

	_, err := r.pool.Exec(ctx, insert, p.ID, p.EntryID, p.FilePath, nullJSON(location), p.CreatedAt.UTC())
	if err != nil {
		switch pgCode(err) {
		case pgForeignKeyViolation:
			return store.ErrNotFound.WithCause(err)
		case pgUniqueViolation:
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("insert photo: %w", err)
	}
	return nil
}

// ListEntriesInRange returns the user's entries in r with photos, newest date first.
func (r *Repository) ListEntriesInRange(ctx context.Context, userID string, dr domain.DateRange) ([]*domain.DailyEntry, error) {
	if err := dr.Validate(); err != nil {
		return nil, store.ErrInvalidInput.WithCause(err)
	}

	const query = `SELECT id, user_id, date, activities, custom_activities, special_events, meals, notes, created_at
        FROM daily_entries
        WHERE user_id=$1 AND date >= $2 AND date <= $3
        ORDER BY date DESC, created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, userID, dr.Start.Time(), dr.End.Time())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*domain.DailyEntry{}
	byID := make(map[string]*domain.DailyEntry)
	for rows.Next() {
		var (
			e    domain.DailyEntry
			date time.Time
		)
		if err := rows.Scan(&e.ID, &e.UserID, &date, &e.Activities, &e.CustomActivities, &e.SpecialEvents, &e.Meals, &e.Notes, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Date = domain.DateOf(date)
		e.CreatedAt = e.CreatedAt.UTC()
		e.Activities = nonNil(e.Activities)
		e.CustomActivities = nonNil(e.CustomActivities)
		e.SpecialEvents = nonNil(e.SpecialEvents)
		e.Photos = []domain.Photo{}
		entries = append(entries, &e)
		byID[e.ID] = &e
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return entries, nil
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	if err := r.attachPhotos(ctx, ids, byID); err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *Repository) attachPhotos(ctx context.Context, entryIDs []string, byID map[string]*domain.DailyEntry) error {
	const query = `SELECT id, entry_id, file_path, location, created_at
        FROM entry_photos
        WHERE entry_id = ANY($1)
        ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, entryIDs)
	if err != nil {
		return fmt.Errorf("query photos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p        domain.Photo
			location []byte
		)
		if err := rows.Scan(&p.ID, &p.EntryID, &p.FilePath, &location, &p.CreatedAt); err != nil {
			return err
		}
		if len(location) > 0 {
			var loc domain.Location
			if err := json.Unmarshal(location, &loc); err != nil {
				return fmt.Errorf("decode location for photo %s: %w", p.ID, err)
			}
			p.Location = &loc
		}
		p.CreatedAt = p.CreatedAt.UTC()
		if e, ok := byID[p.EntryID]; ok {
			e.Photos = append(e.Photos, p)
		}
	}
	return rows.Err()
}

// RecentCustomActivities returns the custom activity lists of the user's
// newest entries by creation time.
func (r *Repository) RecentCustomActivities(ctx context.Context, userID string, limit int) ([][]string, error) {
	if limit <= 0 {
		limit = store.RecentCustomActivityEntries
	}

	rows, err := r.pool.Query(ctx, `SELECT custom_activities FROM daily_entries
        WHERE user_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}

	lists, err := pgx.CollectRows(rows, pgx.RowTo[[]string])
	if err != nil {
		return nil, err
	}
	out := make([][]string, 0, len(lists))
	for _, l := range lists {
		out = append(out, nonNil(l))
	}
	return out, nil
}

// CountEntriesSince counts the user's entries dated on or after since.
func (r *Repository) CountEntriesSince(ctx context.Context, userID string, since domain.Date) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM daily_entries WHERE user_id=$1 AND date >= $2`,
		userID, since.Time()).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func nullJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
