package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/custodylog/custodylog-server/internal/domain"
	"github.com/custodylog/custodylog-server/internal/store"
)

// photoColumns is the ordered list of columns selected in photo queries.
// Must match the scan order in scanPhoto.
const photoColumns = `id, entry_id, file_path, location_lat, location_lng, location_source, created_at`

const qualifiedPhotoColumns = `p.id, p.entry_id, p.file_path, p.location_lat, p.location_lng, p.location_source, p.created_at`

func scanPhoto(scanner interface{ Scan(dest ...any) error }) (*domain.Photo, error) {
	var p domain.Photo

	var (
		lat       sql.NullFloat64
		lng       sql.NullFloat64
		source    sql.NullString
		createdAt string
	)

	err := scanner.Scan(
		&p.ID,
		&p.EntryID,
		&p.FilePath,
		&lat,
		&lng,
		&source,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	if lat.Valid && lng.Valid && source.Valid {
		p.Location = &domain.Location{
			Lat:    lat.Float64,
			Lng:    lng.Float64,
			Source: domain.LocationSource(source.String),
		}
	}

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePhoto inserts a photo row for an existing entry.
// Returns store.ErrNotFound when the entry is missing and
// store.ErrAlreadyExists when the file path is already used.
func (s *Store) CreatePhoto(ctx context.Context, p *domain.Photo) error {
	if p.ID == "" || p.EntryID == "" || p.FilePath == "" {
		return store.ErrInvalidInput.WithMessage("photo requires id, entry and file path")
	}

	var (
		lat    sql.NullFloat64
		lng    sql.NullFloat64
		source sql.NullString
	)
	if p.Location != nil {
		lat = sql.NullFloat64{Float64: p.Location.Lat, Valid: true}
		lng = sql.NullFloat64{Float64: p.Location.Lng, Valid: true}
		source = sql.NullString{String: string(p.Location.Source), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO entry_photos (`+photoColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.EntryID,
		p.FilePath,
		lat,
		lng,
		source,
		formatTime(p.CreatedAt),
	)
	if err != nil {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "FOREIGN KEY constraint failed"):
			return store.ErrNotFound.WithCause(err)
		case strings.Contains(msg, "UNIQUE constraint failed"):
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("insert photo: %w", err)
	}
	return nil
}
