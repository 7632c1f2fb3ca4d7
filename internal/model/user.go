package model

import "time"

// Roles a user account can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User mirrors a row of the `users` table.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username (unique)
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
}

// Permission returns the permission level the client uses to decide which
// features to show: 7 for admins, 1 for everyone else.
func (u User) Permission() int {
	if u.Role == RoleAdmin {
		return 7
	}
	return 1
}
