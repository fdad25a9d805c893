package service

import (
	"context"

	"resto-ledger/internal/model"
)

// AuthService defines account operations: sign in, sign up and password
// recovery.
type AuthService interface {
	// Login signs the user in when a user with these credentials exists.
	Login(ctx context.Context, req model.LoginRequest) (*model.User, error)

	// Register creates an account for an unused email and signs it in.
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)

	// EmailExists reports whether an account uses email.
	EmailExists(ctx context.Context, email string) (bool, error)

	// Logout ends the session.
	Logout(ctx context.Context) error

	IsAuthenticated() bool
	CurrentUser() *model.User

	// RequestRecovery sends a recovery link to a registered email. Repeated
	// requests for the same email are refused until the cooldown elapses.
	RequestRecovery(ctx context.Context, email string) error
}

// DishService defines operations for the owner's menu.
type DishService interface {
	List(ctx context.Context) ([]model.Dish, error)
	Get(ctx context.Context, id string) (*model.Dish, error)
	Create(ctx context.Context, dish model.Dish) (*model.Dish, error)
	Update(ctx context.Context, dish model.Dish) (*model.Dish, error)
	Delete(ctx context.Context, id string) error
}

// SessionStore is the slice of the session the services drive.
type SessionStore interface {
	Current() *model.User
	IsAuthenticated() bool
	SetCurrent(ctx context.Context, user model.User) error
	Clear(ctx context.Context) error
}

// Validator checks a request struct against its field rules.
type Validator interface {
	Struct(s interface{}) error
}
