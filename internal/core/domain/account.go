package domain

import (
	"time"
)

// Account is a login credential bound to an Identity. The core never sees
// accounts; they exist only so the authentication collaborator can resolve
// a caller to its Identity.
type Account struct {
	Identity     Identity  `json:"identity"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // Argon2id, never expose
	CreatedAt    time.Time `json:"created_at"`
}
