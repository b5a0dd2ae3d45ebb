package domain

import "time"

// Session is the durable record of one issued token, keyed by the token's jti.
// It is the source of truth for revocation: a signed token authenticates only
// while its session row exists, is enabled, and has not expired.
type Session struct {
	ID        string
	UserID    string
	Enabled   bool
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Live reports whether the session authenticates at the given instant.
func (s *Session) Live(now time.Time) bool {
	return s != nil && s.Enabled && !now.After(s.ExpiresAt)
}
