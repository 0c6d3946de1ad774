package models

import "time"

const (
	// RoleUser is the default role assigned at signup.
	RoleUser = "user"
	// RoleAdmin may act on any profile's resources.
	RoleAdmin = "admin"
)

// Account is an authentication identity.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Profile holds the user-facing identity created alongside an account.
// The account and its profile are always created in the same transaction.
type Profile struct {
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"`
	AvatarColor string    `json:"avatarColor,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Identity is the verified caller attached to a request after session
// validation.
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the identity may act on other users' resources.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
