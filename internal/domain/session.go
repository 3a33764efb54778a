package domain

import "time"

// Identity is the authenticated user's profile as returned by the
// OAuth collaborator.
type Identity struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	PictureURL string `json:"picture,omitempty"`
}

// Session is the per-user authentication context. Each session owns its own
// portfolio; nothing is shared across sessions.
type Session struct {
	ID            string    `json:"session_id"`
	Authenticated bool      `json:"authenticated"`
	Identity      *Identity `json:"identity,omitempty"`
	LoginTime     time.Time `json:"login_time"`
	IsAdmin       bool      `json:"is_admin"`
}

// Expired reports whether the session's 24-hour window has elapsed.
func (s *Session) Expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(s.LoginTime) > ttl
}
