// Package middleware resolves the current session and gates routes on it
package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/studentportal/webapp/internal/models"
	"github.com/studentportal/webapp/internal/session"
	"go.uber.org/zap"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionLoader defines methods for resolving the session cookie
type SessionLoader interface {
	// Method Load returns the session attached to the request.
	// Returns models.ErrSessionNotFound when the request carries no live session.
	Load(r *http.Request) (*models.Session, error)

	// Method Clear expires the session cookie on the client.
	Clear(w http.ResponseWriter)
}

// SessionMiddleware attaches the current session, if any, to the request context.
// A cookie that no longer resolves to a live session is cleared.
// Store failures are logged and the request continues anonymously.
func SessionMiddleware(loader SessionLoader, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := loader.Load(r)
			if err != nil {
				if !errors.Is(err, models.ErrSessionNotFound) {
					logger.Error("failed to load session", zap.Error(err))
				} else if _, cerr := r.Cookie(session.CookieName); cerr == nil {
					loader.Clear(w)
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// WithSession returns a copy of ctx carrying the session
func WithSession(ctx context.Context, sess *models.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// GetSession retrieves the session from context
func GetSession(ctx context.Context) (*models.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*models.Session)
	return sess, ok && sess != nil
}
