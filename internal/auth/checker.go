package auth

import (
	"context"
	"net/http"
)

var _ Checker = (*Service)(nil)
var _ Checker = (*TestChecker)(nil)

// Checker resolves a session token into the id of the logged in user.
// It returns ErrSessionNotFound for unknown or expired tokens.
type Checker interface {
	UserForToken(ctx context.Context, token string) (string, error)
}

type ctxKey struct{}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserIDFromContext returns the user id put into the request context by the auth middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(ctxKey{}).(string)
	return userID, ok && userID != ""
}

type TestChecker struct {
	// token -> user id
	Sessions map[string]string
}

func NewTestChecker() *TestChecker {
	return &TestChecker{
		Sessions: map[string]string{},
	}
}

func (c *TestChecker) UserForToken(_ context.Context, token string) (string, error) {
	userID, ok := c.Sessions[token]
	if !ok {
		return "", ErrSessionNotFound
	}
	return userID, nil
}

// RequireUserID writes 401 and reports false when the request carries no user.
func RequireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "no can do", http.StatusUnauthorized)
	}
	return userID, ok
}
