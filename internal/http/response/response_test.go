package response

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/custodylog/custodylog-server/internal/errors"
	"github.com/custodylog/custodylog-server/internal/store"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, map[string]string{"message": "test"}, discard())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var result map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "test", result["message"])
}

func TestJSON_NilLogger(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, []int{1, 2}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[1,2]`, w.Body.String())
}

func TestCreated(t *testing.T) {
	w := httptest.NewRecorder()

	Created(w, map[string]string{"id": "ent-1"}, discard())

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"id":"ent-1"}`, w.Body.String())
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		code   domainerrors.Code
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "invalid input", nil) }, http.StatusBadRequest, domainerrors.CodeValidation},
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "sign in", nil) }, http.StatusUnauthorized, domainerrors.CodeUnauthenticated},
		{"forbidden", func(w http.ResponseWriter) { Forbidden(w, "not yours", nil) }, http.StatusForbidden, domainerrors.CodeForbidden},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "no such photo", nil) }, http.StatusNotFound, domainerrors.CodeNotFound},
		{"too many", func(w http.ResponseWriter) { TooManyRequests(w, "slow down", nil) }, http.StatusTooManyRequests, domainerrors.CodeRateLimited},
		{"internal", func(w http.ResponseWriter) { InternalError(w, "boom", nil) }, http.StatusInternalServerError, domainerrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			assert.Equal(t, tt.status, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, string(tt.code), body.Code)
			assert.NotEmpty(t, body.Message)
			assert.Nil(t, body.Details)
		})
	}
}

func TestHandleError_DomainError(t *testing.T) {
	w := httptest.NewRecorder()
	err := domainerrors.ValidationWithDetails("validation failed", map[string]string{"meals": "must be less than or equal to 10"})

	HandleError(w, err, discard())

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Equal(t, "validation failed", body.Message)
	assert.Equal(t, map[string]any{"meals": "must be less than or equal to 10"}, body.Details)
}

func TestHandleError_Unavailable(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, domainerrors.Unavailable(errors.New("db down"), "could not save entry"), discard())

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "could not save entry", body.Message, "cause stays server side")
	assert.Equal(t, map[string]any{"retryable": true}, body.Details)
}

func TestHandleError_StoreNotFound(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, store.ErrNotFound.WithMessage("photo not found"), discard())

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "photo not found", decodeError(t, w).Message)
}

func TestHandleError_Unknown(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, errors.New("secret connection string leaked"), discard())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "internal server error", body.Message)
	assert.NotContains(t, w.Body.String(), "secret")
}
