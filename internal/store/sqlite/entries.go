package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/custodylog/custodylog-server/internal/domain"
	"github.com/custodylog/custodylog-server/internal/store"
)

// entryColumns is the ordered list of columns selected in entry queries.
// Must match the scan order in scanEntry.
const entryColumns = `id, user_id, date, activities, custom_activities, special_events, meals, notes, created_at`

// scanEntry scans a sql.Row (or sql.Rows via its Scan method) into a domain.DailyEntry.
// Photos is initialised empty; callers join photo rows separately.
func scanEntry(scanner interface{ Scan(dest ...any) error }) (*domain.DailyEntry, error) {
	var e domain.DailyEntry

	var (
		date             string
		activities       string
		customActivities string
		specialEvents    string
		createdAt        string
	)

	err := scanner.Scan(
		&e.ID,
		&e.UserID,
		&date,
		&activities,
		&customActivities,
		&specialEvents,
		&e.Meals,
		&e.Notes,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if e.Date, err = domain.ParseDate(date); err != nil {
		return nil, err
	}
	if e.Activities, err = decodeList(activities); err != nil {
		return nil, err
	}
	if e.CustomActivities, err = decodeList(customActivities); err != nil {
		return nil, err
	}
	if e.SpecialEvents, err = decodeList(specialEvents); err != nil {
		return nil, err
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	e.Photos = []domain.Photo{}

	return &e, nil
}

// CreateEntry inserts a new daily entry.
// Returns store.ErrAlreadyExists on a duplicate id.
func (s *Store) CreateEntry(ctx context.Context, e *domain.DailyEntry) error {
	if e.ID == "" || e.UserID == "" || e.Date.IsZero() {
		return store.ErrInvalidInput.WithMessage("entry requires id, user and date")
	}

	activities, err := encodeList(e.Activities)
	if err != nil {
		return err
	}
	customActivities, err := encodeList(e.CustomActivities)
	if err != nil {
		return err
	}
	specialEvents, err := encodeList(e.SpecialEvents)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO daily_entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		e.UserID,
		e.Date.String(),
		activities,
		customActivities,
		specialEvents,
		e.Meals,
		e.Notes,
		formatTime(e.CreatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

// ListEntriesInRange returns the user's entries dated within r, newest first,
// with their photos attached.
func (s *Store) ListEntriesInRange(ctx context.Context, userID string, r domain.DateRange) ([]*domain.DailyEntry, error) {
	if err := r.Validate(); err != nil {
		return nil, store.ErrInvalidInput.WithCause(err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM daily_entries
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date DESC, created_at DESC, id DESC`,
		userID, r.Start.String(), r.End.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*domain.DailyEntry{}
	byID := make(map[string]*domain.DailyEntry)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
		byID[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return entries, nil
	}

	if err := s.attachPhotos(ctx, userID, r, byID); err != nil {
		return nil, err
	}
	return entries, nil
}

// attachPhotos loads the photos for every entry in range with one query.
func (s *Store) attachPhotos(ctx context.Context, userID string, r domain.DateRange, byID map[string]*domain.DailyEntry) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+qualifiedPhotoColumns+`
		FROM entry_photos p
		JOIN daily_entries e ON e.id = p.entry_id
		WHERE e.user_id = ? AND e.date >= ? AND e.date <= ?
		ORDER BY p.created_at ASC, p.rowid ASC`,
		userID, r.Start.String(), r.End.String())
	if err != nil {
		return fmt.Errorf("query photos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return err
		}
		if e, ok := byID[p.EntryID]; ok {
			e.Photos = append(e.Photos, *p)
		}
	}
	return rows.Err()
}

// RecentCustomActivities returns the custom activity lists of the user's
// newest entries by creation time.
func (s *Store) RecentCustomActivities(ctx context.Context, userID string, limit int) ([][]string, error) {
	if limit <= 0 {
		limit = store.RecentCustomActivityEntries
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT custom_activities
		FROM daily_entries
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := [][]string{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		list, err := decodeList(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, list)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountEntriesSince counts the user's entries dated on or after since.
func (s *Store) CountEntriesSince(ctx context.Context, userID string, since domain.Date) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM daily_entries WHERE user_id = ? AND date >= ?`,
		userID, since.String()).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}
