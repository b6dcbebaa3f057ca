package domain

import "time"

// User models an account holder. PasswordHash and TokenVersion never leave the
// service boundary.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	RoleID       string    `json:"role_id"`
	TokenVersion int       `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// InitialTokenVersion is assigned to every newly registered user.
const InitialTokenVersion = 1

// UserWithRole pairs a user with its resolved role for listings. Role is nil
// when the referenced role record no longer exists.
type UserWithRole struct {
	User
	Role *Role `json:"role"`
}
