package domain

import (
	"context"
	"time"
)

// Session is created at login and cleared at logout. It scopes outbound requests.
type Session struct {
	Token     string    `json:"-"`
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.Token == "" {
		return true
	}
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

type sessionContextKey struct{}

func ContextWithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

func SessionFromContext(ctx context.Context) (*Session, bool) {
	if ctx == nil {
		return nil, false
	}
	session, ok := ctx.Value(sessionContextKey{}).(*Session)
	return session, ok && session != nil
}
