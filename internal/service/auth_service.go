package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"resto-ledger/internal/model"
	"resto-ledger/internal/repository"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"
)

// DefaultRecoveryCooldown is the wait between two recovery emails.
const DefaultRecoveryCooldown = 60 * time.Second

const recoveryCacheSize = 1024

// authService implements AuthService.
type authService struct {
	userRepo  repository.UserRepository
	session   SessionStore
	validator Validator
	cooldown  time.Duration
	sentAt    *expirable.LRU[string, time.Time]
	logger    zerolog.Logger
}

// NewAuthService creates a new auth service. A cooldown <= 0 uses
// DefaultRecoveryCooldown.
func NewAuthService(
	userRepo repository.UserRepository,
	session SessionStore,
	validator Validator,
	cooldown time.Duration,
	logger zerolog.Logger,
) AuthService {
	if cooldown <= 0 {
		cooldown = DefaultRecoveryCooldown
	}
	return &authService{
		userRepo:  userRepo,
		session:   session,
		validator: validator,
		cooldown:  cooldown,
		sentAt:    expirable.NewLRU[string, time.Time](recoveryCacheSize, nil, cooldown),
		logger:    logger.With().Str("service", "auth").Logger(),
	}
}

// Login looks the credentials up and stores the first match as the session
// user. The stored copy never carries the password.
func (s *authService) Login(ctx context.Context, req model.LoginRequest) (*model.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByCredentials(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to verify credentials")
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}
	if user == nil {
		s.logger.Info().Msg("sign in rejected")
		return nil, model.ErrInvalidCredentials
	}

	return s.startSession(ctx, *user)
}

// Register creates the account when the email is unused, then signs it in.
func (s *authService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	exists, err := s.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		s.logger.Info().Msg("registration rejected, email in use")
		return nil, model.ErrEmailTaken
	}

	created, err := s.userRepo.Create(ctx, model.User{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register: %w", err)
	}

	s.logger.Info().Str("user_id", created.ID).Msg("account registered")
	return s.startSession(ctx, *created)
}

func (s *authService) EmailExists(ctx context.Context, email string) (bool, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return user != nil, nil
}

func (s *authService) Logout(ctx context.Context) error {
	return s.session.Clear(ctx)
}

func (s *authService) IsAuthenticated() bool {
	return s.session.IsAuthenticated()
}

func (s *authService) CurrentUser() *model.User {
	return s.session.Current()
}

// RequestRecovery checks the email is registered and records a simulated
// send. No mail leaves the process.
func (s *authService) RequestRecovery(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := s.validator.Struct(model.RecoverRequest{Email: email}); err != nil {
		return err
	}

	key := strings.ToLower(email)
	if sent, ok := s.sentAt.Get(key); ok {
		remaining := s.cooldown - time.Since(sent)
		if remaining > 0 {
			return &model.RecoveryCooldownError{RemainingSeconds: int(math.Ceil(remaining.Seconds()))}
		}
	}

	exists, err := s.EmailExists(ctx, email)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to verify recovery email")
		return err
	}
	if !exists {
		return model.ErrEmailNotFound
	}

	s.sentAt.Add(key, time.Now())
	s.logger.Info().Msg("recovery link sent")
	return nil
}

func (s *authService) startSession(ctx context.Context, user model.User) (*model.User, error) {
	user.Password = ""
	if err := s.session.SetCurrent(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	return &user, nil
}
