// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// Session is a server-side record of an issued access token. The token
// itself is never stored, only its SHA-256 hash.
type Session struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	TokenHash string    `db:"token_hash"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
	UserAgent string    `db:"user_agent"`
	IPAddress string    `db:"ip_address"`
}

func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
