package models

import (
	"time"

	"github.com/google/uuid"
)

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Claims carried by both access and refresh tokens
type TokenClaims struct {
	UserID    uuid.UUID
	Email     string
	Role      string
	ExpiresAt time.Time
}

// Session is what a successful login hands to the client
type Session struct {
	Identity Identity
	Access   IssuedToken
	Refresh  IssuedToken
}
