package auth

import "time"

// Collection holds user documents.
const Collection = "users"

// User is a dashboard account linked to a Google identity.
type User struct {
	ID          string    `json:"id"`
	GoogleID    string    `json:"googleId"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	IsActive    bool      `json:"isActive"`
	LastLoginAt time.Time `json:"lastLoginAt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Identity is the verified subset of a Google ID token.
type Identity struct {
	Subject string
	Email   string
	Name    string
}
