package service

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/custodylog/custodylog-server/internal/domain"
	domainerrors "github.com/custodylog/custodylog-server/internal/errors"
	"github.com/custodylog/custodylog-server/internal/export"
	"github.com/custodylog/custodylog-server/internal/observability"
	"github.com/custodylog/custodylog-server/internal/session"
	"github.com/custodylog/custodylog-server/internal/store"
)

// RecentEntriesShown is how many entries the export summary previews.
const RecentEntriesShown = 5

// Limiter decides whether a key may proceed right now.
type Limiter interface {
	Allow(key string) bool
}

// ExportFile is a rendered export ready for download.
type ExportFile struct {
	FileName    string
	ContentType string
	Data        []byte
	Range       domain.DateRange
	Aggregates  export.Aggregates
}

// ExportSummary backs the export page: totals plus the newest entries.
type ExportSummary struct {
	Range         domain.DateRange
	Aggregates    export.Aggregates
	RecentEntries []*domain.DailyEntry
}

// ExportService reads a user's entries for a date range and renders them.
type ExportService struct {
	session session.Provider
	store   store.EntryStore
	limiter Limiter
	logger  *slog.Logger
	now     func() time.Time
}

// NewExportService creates a new export service. A nil limiter disables throttling.
func NewExportService(sessions session.Provider, st store.EntryStore, limiter Limiter, logger *slog.Logger) *ExportService {
	return &ExportService{
		session: sessions,
		store:   st,
		limiter: limiter,
		logger:  logger,
		now:     time.Now,
	}
}

// ResolveRange fills in missing bounds: end defaults to today and start to
// the same day one month before end.
func (s *ExportService) ResolveRange(r domain.DateRange) (domain.DateRange, error) {
	if r.End.IsZero() {
		r.End = domain.DateOf(s.now())
	}
	if r.Start.IsZero() {
		r.Start = domain.LastMonth(r.End).Start
	}
	if err := r.Validate(); err != nil {
		return domain.DateRange{}, domainerrors.ValidationWithDetails("invalid date range",
			map[string]string{"end": err.Error()})
	}
	return r, nil
}

// Fetch checks the session, resolves the range and loads the entries with
// their photos, newest date first.
func (s *ExportService) Fetch(ctx context.Context, r domain.DateRange) (*export.Document, error) {
	userID, err := currentUser(ctx, s.session)
	if err != nil {
		return nil, err
	}
	return s.fetch(ctx, userID, r)
}

func (s *ExportService) fetch(ctx context.Context, userID string, r domain.DateRange) (*export.Document, error) {
	r, err := s.ResolveRange(r)
	if err != nil {
		return nil, err
	}

	entries, err := s.store.ListEntriesInRange(ctx, userID, r)
	if err != nil {
		s.logger.Error("failed to load entries for export",
			"user_id", userID,
			"start", r.Start.String(),
			"end", r.End.String(),
			"error", err,
		)
		return nil, domainerrors.Unavailable(err, "could not load entries, please try again")
	}
	return export.NewDocument(r, entries), nil
}

// Export renders the range in format f. The whole file is rendered before it
// is returned, so a failure never yields a partial download.
func (s *ExportService) Export(ctx context.Context, f export.Format, r domain.DateRange) (*ExportFile, error) {
	userID, err := currentUser(ctx, s.session)
	if err != nil {
		return nil, err
	}
	if s.limiter != nil && !s.limiter.Allow(userID) {
		return nil, domainerrors.RateLimited("too many exports, please wait a minute")
	}

	doc, err := s.fetch(ctx, userID, r)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := export.Render(&buf, f, doc); err != nil {
		s.logger.Error("failed to render export", "user_id", userID, "format", string(f), "error", err)
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "could not render export")
	}

	observability.RecordExport(string(f))
	s.logger.Info("export rendered",
		"user_id", userID,
		"format", string(f),
		"entries", doc.Aggregates.TotalEntries,
		"bytes", buf.Len(),
	)

	return &ExportFile{
		FileName:    export.FileName(doc.Range, f),
		ContentType: f.ContentType(),
		Data:        buf.Bytes(),
		Range:       doc.Range,
		Aggregates:  doc.Aggregates,
	}, nil
}

// Summary returns the totals for the range and the newest few entries.
func (s *ExportService) Summary(ctx context.Context, r domain.DateRange) (*ExportSummary, error) {
	doc, err := s.Fetch(ctx, r)
	if err != nil {
		return nil, err
	}

	recent := doc.Entries
	if len(recent) > RecentEntriesShown {
		recent = recent[:RecentEntriesShown]
	}
	return &ExportSummary{
		Range:         doc.Range,
		Aggregates:    doc.Aggregates,
		RecentEntries: recent,
	}, nil
}
