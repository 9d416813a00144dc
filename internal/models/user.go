package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Upper bound of refresh tokens kept per user. The oldest token is evicted first.
const MaxRefreshTokens = 10

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Email          string
	Name           string
	HashedPassword string
	Role           string
	RefreshTokens  RefreshTokenSet
}

// Identity is the part of the user that is safe to hand to request handlers
type Identity struct {
	ID    uuid.UUID
	Email string
	Name  string
	Role  string
}

func (u User) Identity() Identity {
	return Identity{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// RefreshTokenSet keeps the refresh tokens issued for a user in issuance order.
// Tokens are unique and at most MaxRefreshTokens are kept.
type RefreshTokenSet struct {
	tokens []string
}

func NewRefreshTokenSet(tokens ...string) RefreshTokenSet {
	var s RefreshTokenSet
	for _, t := range tokens {
		s.Add(t)
	}
	return s
}

// Add appends the token. Returns false if the token is already present
func (s *RefreshTokenSet) Add(token string) bool {
	if token == "" || s.Contains(token) {
		return false
	}

	s.tokens = append(s.tokens, token)
	if over := len(s.tokens) - MaxRefreshTokens; over > 0 {
		s.tokens = slices.Clone(s.tokens[over:])
	}
	return true
}

func (s RefreshTokenSet) Contains(token string) bool {
	return token != "" && slices.Contains(s.tokens, token)
}

// Remove deletes the token. Returns false if the token was not in the set
func (s *RefreshTokenSet) Remove(token string) bool {
	i := slices.Index(s.tokens, token)
	if i < 0 {
		return false
	}
	s.tokens = slices.Delete(s.tokens, i, i+1)
	return true
}

func (s *RefreshTokenSet) RemoveAll() {
	s.tokens = nil
}

// First returns the oldest token, the canonical one for the user
func (s RefreshTokenSet) First() (string, bool) {
	if len(s.tokens) == 0 {
		return "", false
	}
	return s.tokens[0], true
}

func (s RefreshTokenSet) Len() int {
	return len(s.tokens)
}

func (s RefreshTokenSet) IsEmpty() bool {
	return len(s.tokens) == 0
}

// Values returns a copy of the tokens in issuance order
func (s RefreshTokenSet) Values() []string {
	return slices.Clone(s.tokens)
}
