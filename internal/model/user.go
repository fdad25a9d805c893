package model

import "time"

// User is a restaurant account. Name holds the restaurant name.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoginRequest represents the request payload for signing in.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents the request payload for creating an account.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// RecoverRequest represents the request payload for password recovery.
type RecoverRequest struct {
	Email string `json:"email" validate:"required,email"`
}
