package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is the credential record consulted during login.
type User struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is an audit record of an issued token. Tokens remain stateless;
// these rows exist for operator visibility and are purged after expiry.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ExpiresAt time.Time
	IP        string
	UserAgent string
	CreatedAt time.Time
}
