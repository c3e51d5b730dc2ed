package dto

import "time"

// StaffLoginRequest is the admin login payload.
type StaffLoginRequest struct {
	Password string `json:"password" form:"password"`
}

// AuthResponse carries an issued admin token.
type AuthResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}
