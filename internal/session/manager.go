// Package session manages server-held login sessions and the signed cookie pointing at them
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/studentportal/webapp/internal/models"
	"go.uber.org/zap"
)

// CookieName is the name of the session cookie
const CookieName = "session"

// Store defines methods for persisting sessions
type Store interface {
	// Method Save stores a session, replacing any session with the same id.
	//
	// "sess" parameter is the session to store.
	Save(ctx context.Context, sess *models.Session) error

	// Method Get returns the session with the given id.
	// Returns models.ErrSessionNotFound when the session is missing or expired.
	Get(ctx context.Context, id string) (*models.Session, error)

	// Method Delete removes the session with the given id.
	Delete(ctx context.Context, id string) error

	// Method DeleteByUser removes every session belonging to a user.
	//
	// "userID" parameter is the id of the user whose sessions are removed.
	DeleteByUser(ctx context.Context, userID int) error
}

// Manager creates, resolves and destroys sessions
type Manager struct {
	store  Store
	tokens *TokenGenerator
	ttl    time.Duration
	secure bool
	logger *zap.Logger
	now    func() time.Time
}

// NewManager creates a new session manager.
//
// "secure" parameter marks the cookie Secure, which should be on whenever the site is served over HTTPS.
func NewManager(store Store, tokens *TokenGenerator, ttl time.Duration, secure bool, logger *zap.Logger) *Manager {
	return &Manager{
		store:  store,
		tokens: tokens,
		ttl:    ttl,
		secure: secure,
		logger: logger,
		now:    time.Now,
	}
}

// Start opens a new session for the user and writes the session cookie.
// Any session already attached to the request is destroyed first.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, r *http.Request, user *models.User) (*models.Session, error) {
	if sid, ok := m.sessionID(r); ok {
		if err := m.store.Delete(ctx, sid); err != nil {
			m.logger.Warn("failed to delete previous session", zap.Error(err))
		}
	}

	now := m.now()
	sess := &models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}

	token, err := m.tokens.Generate(sess.ID, now)
	if err != nil {
		return nil, err
	}

	if err := m.store.Save(ctx, sess); err != nil {
		m.logger.Error("failed to save session", zap.Int("userID", user.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return sess, nil
}

// Load resolves the session attached to the request.
// Returns models.ErrSessionNotFound when there is no cookie or it no longer points at a live session.
func (m *Manager) Load(r *http.Request) (*models.Session, error) {
	sid, ok := m.sessionID(r)
	if !ok {
		return nil, models.ErrSessionNotFound
	}

	sess, err := m.store.Get(r.Context(), sid)
	if err != nil {
		if errors.Is(err, models.ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if sess.Expired(m.now()) {
		return nil, models.ErrSessionNotFound
	}
	return sess, nil
}

// Destroy deletes the session attached to the request and expires the cookie
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	defer m.Clear(w)

	sid, ok := m.sessionID(r)
	if !ok {
		return nil
	}
	if err := m.store.Delete(ctx, sid); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Revoke ends every session of a user, signing them out on all devices
func (m *Manager) Revoke(ctx context.Context, userID int) error {
	if err := m.store.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("failed to revoke sessions of user %d: %w", userID, err)
	}
	return nil
}

// Clear expires the session cookie on the client
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionID extracts and verifies the session id carried by the request cookie
func (m *Manager) sessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	sid, err := m.tokens.Validate(cookie.Value)
	if err != nil {
		m.logger.Debug("rejected session cookie", zap.Error(err))
		return "", false
	}
	return sid, true
}
