package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/custodylog/custodylog-server/internal/api/dto"
	"github.com/custodylog/custodylog-server/internal/blob"
	"github.com/custodylog/custodylog-server/internal/domain"
	domainerrors "github.com/custodylog/custodylog-server/internal/errors"
	"github.com/custodylog/custodylog-server/internal/http/response"
)

// handleGetPhoto streams a stored photo to its owner.
// GET /api/v1/photos/{user}/{entry}/{file}
func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	if userID == "" {
		response.Unauthorized(w, "sign in to continue", s.logger)
		return
	}

	key := strings.TrimPrefix(r.URL.Path, dto.PhotoURLPrefix)

	// Keys of other users look exactly like missing keys.
	if !domain.OwnsPhotoKey(userID, key) {
		response.NotFound(w, "photo not found", s.logger)
		return
	}

	data, err := s.blobs.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) || errors.Is(err, blob.ErrInvalidKey) {
			response.NotFound(w, "photo not found", s.logger)
			return
		}
		s.logger.Error("Failed to read photo", "key", key, "user_id", userID, "error", err)
		response.HandleError(w, domainerrors.Unavailable(err, "could not load photo, please try again"), s.logger)
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", CacheOneDayPrivate)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.logger.Debug("Photo write interrupted", "key", key, "error", err)
	}
}
