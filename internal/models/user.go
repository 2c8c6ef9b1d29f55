package models

import "time"

// User represents a registered account in the system.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"` // Never expose this to the client
	FullName     string `json:"fullName,omitempty"`
	// TotalExplanations is a denormalized counter kept in sync with the
	// number of explanation records owned by this user.
	TotalExplanations int       `json:"totalExplanations"`
	IsActive          bool      `json:"isActive"`
	CreatedAt         time.Time `json:"createdAt"`
}
