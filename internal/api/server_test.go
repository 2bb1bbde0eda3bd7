package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/custodylog/custodylog-server/internal/auth"
	"github.com/custodylog/custodylog-server/internal/blob"
	"github.com/custodylog/custodylog-server/internal/events"
	"github.com/custodylog/custodylog-server/internal/location"
	"github.com/custodylog/custodylog-server/internal/ratelimit"
	"github.com/custodylog/custodylog-server/internal/service"
	"github.com/custodylog/custodylog-server/internal/session"
	"github.com/custodylog/custodylog-server/internal/store/sqlite"
	"github.com/custodylog/custodylog-server/internal/validation"
)

// testServer wraps the API server for testing.
type testServer struct {
	*Server
	api          humatest.TestAPI
	tokenService *auth.TokenService
	sqlite       *sqlite.Store
	blobs        *flakyBlobs
}

// flakyBlobs fails the puts whose 1-based position is in failOn.
type flakyBlobs struct {
	blob.Store
	mu     sync.Mutex
	calls  int
	failOn map[int]bool
}

func (f *flakyBlobs) Put(ctx context.Context, key string, data []byte, contentType string) error {
	f.mu.Lock()
	f.calls++
	fail := f.failOn[f.calls]
	f.mu.Unlock()
	if fail {
		return errors.New("bucket unavailable")
	}
	return f.Store.Put(ctx, key, data, contentType)
}

type testServerOption func(*testServerConfig)

type testServerConfig struct {
	exportLimiter service.Limiter
}

func withExportLimiter(l service.Limiter) testServerOption {
	return func(c *testServerConfig) { c.exportLimiter = l }
}

// setupTestServer builds a server over a temporary sqlite database and
// filesystem blob store.
func setupTestServer(t *testing.T, options ...testServerOption) *testServer {
	t.Helper()

	var cfg testServerConfig
	for _, o := range options {
		o(&cfg)
	}

	tmpDir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	fs, err := blob.NewFileStore(filepath.Join(tmpDir, "photos"))
	require.NoError(t, err)
	blobs := &flakyBlobs{Store: fs, failOn: map[int]bool{}}

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)
	tokenService, err := auth.NewTokenService(authKey, 15*time.Minute)
	require.NoError(t, err)

	sessions := session.ContextProvider{}
	services := &Services{
		Entries: service.NewEntryService(
			sessions, st, blobs,
			location.NewResolver(logger),
			validation.New(),
			events.Noop{},
			logger,
		),
		Exports:   service.NewExportService(sessions, st, cfg.exportLimiter, logger),
		Dashboard: service.NewDashboardService(sessions, st),
	}

	s := NewServer(st, blobs, services, tokenService, Options{
		Version:        "test",
		CORSOrigins:    []string{"http://localhost:3000"},
		MaxUploadBytes: 5 << 20,
	}, logger)
	t.Cleanup(func() { _ = s.Shutdown() })

	return &testServer{
		Server:       s,
		api:          humatest.Wrap(t, s.api),
		tokenService: tokenService,
		sqlite:       st,
		blobs:        blobs,
	}
}

// token issues an access token for userID.
func (ts *testServer) token(t *testing.T, userID string) string {
	t.Helper()
	tok, _, err := ts.tokenService.GenerateAccessToken(userID)
	require.NoError(t, err)
	return tok
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}

// formFile is one photo part of a multipart submission.
type formFile struct {
	name string
	data []byte
}

// multipartBody encodes fields (repeated keys allowed) and photos.
func multipartBody(t *testing.T, fields [][2]string, files ...formFile) (string, *bytes.Buffer) {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, f := range fields {
		require.NoError(t, mw.WriteField(f[0], f[1]))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="photos"; filename="`+f.name+`"`)
		h.Set("Content-Type", "image/jpeg")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	return "Content-Type: " + mw.FormDataContentType(), body
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

// oneExportPerMinute allows a single export per user per minute.
func oneExportPerMinute(t *testing.T) *ratelimit.KeyedRateLimiter {
	t.Helper()
	l := ratelimit.PerMinute(1)
	t.Cleanup(l.Stop)
	return l
}
