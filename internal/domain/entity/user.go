package entity

import "time"

// Roles carried on the mirrored user record.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the profile record mirrored into the key-value store. The
// credentials themselves live with the identity store; this record is
// what handlers read for names and role checks.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Identity is the credential record owned by the identity store.
type Identity struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
}
