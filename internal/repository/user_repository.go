package repository

import (
	"context"
	"fmt"
	"net/url"

	"resto-ledger/internal/model"

	"github.com/rs/zerolog"
)

type userRepository struct {
	remote Remote
	logger zerolog.Logger
}

// NewUserRepository creates a user repository on the remote store.
func NewUserRepository(remote Remote, logger zerolog.Logger) UserRepository {
	return &userRepository{
		remote: remote,
		logger: logger.With().Str("repository", "user").Logger(),
	}
}

// FindByCredentials asks the store for a user with exactly these
// credentials. The store compares them in plain text.
func (r *userRepository) FindByCredentials(ctx context.Context, email, password string) (*model.User, error) {
	var users []model.User
	query := url.Values{"email": {email}, "password": {password}}
	if err := r.remote.List(ctx, resourceUsers, query, &users); err != nil {
		r.logger.Error().Err(err).Msg("failed to look up credentials")
		return nil, fmt.Errorf("failed to look up credentials: %w", err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var users []model.User
	if err := r.remote.List(ctx, resourceUsers, url.Values{"email": {email}}, &users); err != nil {
		r.logger.Error().Err(err).Msg("failed to look up email")
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

func (r *userRepository) Create(ctx context.Context, user model.User) (*model.User, error) {
	var created model.User
	if err := r.remote.Post(ctx, resourceUsers, user, &created); err != nil {
		r.logger.Error().Err(err).Str("email", user.Email).Msg("failed to create user")
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Info().Str("user_id", created.ID).Msg("user created")
	return &created, nil
}
