package model

import (
	"time"

	"github.com/google/uuid"
)

// Session is a persisted bearer-token record. The token is the primary
// lookup key; expiry is fixed at creation.
type Session struct {
	ID        uuid.UUID `db:"id"`
	Token     string    `db:"token"`
	UserID    uuid.UUID `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
