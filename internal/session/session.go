// Package session answers "who is calling?" for the services.
//
// The HTTP layer authenticates the bearer token and stores the user id on the
// request context; services ask a Provider and never see tokens.
package session

import (
	"context"
	"strings"

	"github.com/custodylog/custodylog-server/internal/auth"
	domainerrors "github.com/custodylog/custodylog-server/internal/errors"
)

// Provider returns the current user id, or an UNAUTHENTICATED error.
type Provider interface {
	CurrentUser(ctx context.Context) (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (string, error)

// CurrentUser calls f.
func (f ProviderFunc) CurrentUser(ctx context.Context) (string, error) {
	return f(ctx)
}

type ctxKey struct{}

// WithUser returns a copy of ctx carrying userID.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserFromContext returns the user id stored by WithUser.
func UserFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(ctxKey{}).(string)
	return userID, ok && userID != ""
}

// ContextProvider reads the user id placed on the context by WithUser.
type ContextProvider struct{}

// CurrentUser implements Provider.
func (ContextProvider) CurrentUser(ctx context.Context) (string, error) {
	if userID, ok := UserFromContext(ctx); ok {
		return userID, nil
	}
	return "", domainerrors.Unauthenticated("sign in to continue")
}

// Static always reports the same user. Used by the command line tools.
type Static string

// CurrentUser implements Provider. An empty Static is unauthenticated.
func (s Static) CurrentUser(context.Context) (string, error) {
	if s == "" {
		return "", domainerrors.Unauthenticated("no user configured")
	}
	return string(s), nil
}

// TokenVerifier is the part of auth.TokenService the session layer needs.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.AccessClaims, error)
}

// Authenticate resolves an Authorization header value to a user id.
func Authenticate(verifier TokenVerifier, header string) (string, error) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", domainerrors.Unauthenticated("missing bearer token")
	}

	claims, err := verifier.VerifyAccessToken(strings.TrimSpace(token))
	if err != nil {
		return "", domainerrors.Unauthenticated("invalid or expired token").WithCause(err)
	}
	return claims.UserID, nil
}
