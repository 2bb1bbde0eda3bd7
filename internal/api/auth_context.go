package api

import (
	"context"
	"net/http"

	"github.com/custodylog/custodylog-server/internal/session"
)

// authMiddleware validates Bearer tokens and stores the user ID on the context.
// A missing or invalid token continues without a user; the services refuse
// the call through their session provider.
func authMiddleware(verifier session.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || verifier == nil {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := session.Authenticate(verifier, header)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithUser(r.Context(), userID)))
		})
	}
}

// GetUserID returns the authenticated user ID from context, or "".
func GetUserID(ctx context.Context) string {
	userID, _ := session.UserFromContext(ctx)
	return userID
}
