package entities

import (
	"time"

	"github.com/google/uuid"
)

// AnonymousUserPrefix marks user ids generated for visitors who never signed in
const AnonymousUserPrefix = "anonymous-"

// User represents a registered client or administrator
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	IsAdmin      bool      `json:"is_admin" db:"is_admin"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// NewAnonymousUserID returns a placeholder owner id for a signed-out visitor
func NewAnonymousUserID() string {
	return AnonymousUserPrefix + uuid.NewString()
}
