package service

import (
	"context"
	"time"

	"github.com/custodylog/custodylog-server/internal/domain"
	domainerrors "github.com/custodylog/custodylog-server/internal/errors"
	"github.com/custodylog/custodylog-server/internal/session"
	"github.com/custodylog/custodylog-server/internal/store"
)

// DashboardWindowDays is the span counted as "this week", today included.
const DashboardWindowDays = 7

// Dashboard is the landing page summary.
type Dashboard struct {
	Since         domain.Date
	EntriesInWeek int
}

// DashboardService computes the landing page summary.
type DashboardService struct {
	session session.Provider
	store   store.EntryStore
	now     func() time.Time
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(sessions session.Provider, st store.EntryStore) *DashboardService {
	return &DashboardService{session: sessions, store: st, now: time.Now}
}

// Summary counts the caller's entries dated within the last seven days.
func (s *DashboardService) Summary(ctx context.Context) (*Dashboard, error) {
	userID, err := currentUser(ctx, s.session)
	if err != nil {
		return nil, err
	}

	since := domain.DateOf(s.now()).AddDays(-(DashboardWindowDays - 1))
	n, err := s.store.CountEntriesSince(ctx, userID, since)
	if err != nil {
		return nil, domainerrors.Unavailable(err, "could not load dashboard")
	}
	return &Dashboard{Since: since, EntriesInWeek: n}, nil
}
