// Package models defines the client-side representations of the records the
// cloud drive service returns.
package models

import "time"

// User is the public representation of an account.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Credentials is the registration request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Token is the login response body. AccessToken may be empty when the
// service omits it.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
