package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodylog/custodylog-server/internal/domain"
	domainerrors "github.com/custodylog/custodylog-server/internal/errors"
	"github.com/custodylog/custodylog-server/internal/session"
	"github.com/custodylog/custodylog-server/internal/store"
)

type failingCountStore struct {
	store.EntryStore
}

func (failingCountStore) CountEntriesSince(context.Context, string, domain.Date) (int, error) {
	return 0, errors.New("disk I/O error")
}

func TestDashboard_CountsLastSevenDays(t *testing.T) {
	st := newTestSQLite(t)
	svc := NewDashboardService(session.Static(testUser), st)
	svc.now = func() time.Time { return testNow }

	seedEntry(t, st, testUser, "2025-01-15", 1, 0)
	seedEntry(t, st, testUser, "2025-01-09", 2, 0) // first day of the window
	seedEntry(t, st, testUser, "2025-01-08", 3, 0) // just outside
	seedEntry(t, st, "usr-other", "2025-01-14", 1, 0)

	d, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-01-09", d.Since.String())
	assert.Equal(t, 2, d.EntriesInWeek)
}

func TestDashboard_Unauthenticated(t *testing.T) {
	svc := NewDashboardService(session.Static(""), newTestSQLite(t))

	_, err := svc.Summary(context.Background())
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnauthenticated))
}

func TestDashboard_StoreFailure(t *testing.T) {
	svc := NewDashboardService(session.Static(testUser), failingCountStore{EntryStore: newTestSQLite(t)})

	_, err := svc.Summary(context.Background())
	assert.True(t, domainerrors.Is(err, domainerrors.ErrUnavailable))
}
