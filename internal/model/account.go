package model

import "time"

// Account is a registered dashboard user.
type Account struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity is an authenticated session as reported by the identity provider.
type Identity struct {
	AccountID int       `json:"account_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token,omitempty"`
	TokenID   string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CredentialsRequest is the payload for login and registration.
type CredentialsRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}
