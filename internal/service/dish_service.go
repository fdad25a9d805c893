package service

import (
	"context"
	"fmt"
	"strings"

	"resto-ledger/internal/model"
	"resto-ledger/internal/repository"

	"github.com/rs/zerolog"
)

// dishService implements DishService.
type dishService struct {
	dishRepo  repository.DishRepository
	validator Validator
	logger    zerolog.Logger
}

// NewDishService creates a new dish service.
func NewDishService(dishRepo repository.DishRepository, validator Validator, logger zerolog.Logger) DishService {
	return &dishService{
		dishRepo:  dishRepo,
		validator: validator,
		logger:    logger.With().Str("service", "dish").Logger(),
	}
}

func (s *dishService) List(ctx context.Context) ([]model.Dish, error) {
	dishes, err := s.dishRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get dishes: %w", err)
	}

	s.logger.Debug().Int("count", len(dishes)).Msg("retrieved dishes")
	return dishes, nil
}

func (s *dishService) Get(ctx context.Context, id string) (*model.Dish, error) {
	if id == "" {
		return nil, model.ErrNotFound
	}
	return s.dishRepo.GetByID(ctx, id)
}

// Create stores a new dish after checking its name is unused.
func (s *dishService) Create(ctx context.Context, dish model.Dish) (*model.Dish, error) {
	dish.Name = strings.TrimSpace(dish.Name)
	if err := s.validator.Struct(dish); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, dish.Name, ""); err != nil {
		return nil, err
	}

	created, err := s.dishRepo.Create(ctx, dish)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update replaces a dish; its name may not collide with another dish.
func (s *dishService) Update(ctx context.Context, dish model.Dish) (*model.Dish, error) {
	if dish.ID == "" {
		return nil, model.ErrNotFound
	}
	dish.Name = strings.TrimSpace(dish.Name)
	if err := s.validator.Struct(dish); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, dish.Name, dish.ID); err != nil {
		return nil, err
	}

	return s.dishRepo.Update(ctx, dish)
}

func (s *dishService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return model.ErrNotFound
	}
	return s.dishRepo.Delete(ctx, id)
}

func (s *dishService) ensureNameFree(ctx context.Context, name, excludeID string) error {
	same, err := s.dishRepo.FindByName(ctx, name, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check dish name: %w", err)
	}
	if len(same) > 0 {
		s.logger.Info().Str("name", name).Msg("dish name already in use")
		return model.ErrDishNameTaken
	}
	return nil
}
