package repository

import (
	"context"
	"fmt"

	"resto-ledger/internal/model"

	"github.com/rs/zerolog"
)

type dishRepository struct {
	remote Remote
	owner  OwnerSource
	logger zerolog.Logger
}

// NewDishRepository creates a dish repository scoped to the signed-in owner.
func NewDishRepository(remote Remote, owner OwnerSource, logger zerolog.Logger) DishRepository {
	return &dishRepository{
		remote: remote,
		owner:  owner,
		logger: logger.With().Str("repository", "dish").Logger(),
	}
}

func (r *dishRepository) List(ctx context.Context) ([]model.Dish, error) {
	query, ownerID, err := ownerQuery(r.owner)
	if err != nil {
		return nil, err
	}

	dishes := []model.Dish{}
	if err := r.remote.List(ctx, resourceDishes, query, &dishes); err != nil {
		r.logger.Error().Err(err).Str("owner_id", ownerID).Msg("failed to list dishes")
		return nil, fmt.Errorf("failed to list dishes: %w", err)
	}
	return dishes, nil
}

func (r *dishRepository) GetByID(ctx context.Context, id string) (*model.Dish, error) {
	var dish model.Dish
	if err := r.remote.Get(ctx, resourceDishes, id, &dish); err != nil {
		r.logger.Error().Err(err).Str("dish_id", id).Msg("failed to get dish")
		return nil, notFound(err, "dish", id)
	}
	return &dish, nil
}

func (r *dishRepository) Create(ctx context.Context, dish model.Dish) (*model.Dish, error) {
	_, ownerID, err := ownerQuery(r.owner)
	if err != nil {
		return nil, err
	}
	dish.ID = ""
	dish.OwnerID = ownerID

	var created model.Dish
	if err := r.remote.Post(ctx, resourceDishes, dish, &created); err != nil {
		r.logger.Error().Err(err).Str("name", dish.Name).Msg("failed to create dish")
		return nil, fmt.Errorf("failed to create dish: %w", err)
	}

	r.logger.Info().Str("dish_id", created.ID).Msg("dish created")
	return &created, nil
}

func (r *dishRepository) Update(ctx context.Context, dish model.Dish) (*model.Dish, error) {
	if dish.OwnerID == "" {
		_, ownerID, err := ownerQuery(r.owner)
		if err != nil {
			return nil, err
		}
		dish.OwnerID = ownerID
	}

	var updated model.Dish
	if err := r.remote.Put(ctx, resourceDishes, dish.ID, dish, &updated); err != nil {
		r.logger.Error().Err(err).Str("dish_id", dish.ID).Msg("failed to update dish")
		return nil, notFound(fmt.Errorf("failed to update dish: %w", err), "dish", dish.ID)
	}
	return &updated, nil
}

func (r *dishRepository) Delete(ctx context.Context, id string) error {
	if err := r.remote.Delete(ctx, resourceDishes, id); err != nil {
		r.logger.Error().Err(err).Str("dish_id", id).Msg("failed to delete dish")
		return notFound(fmt.Errorf("failed to delete dish: %w", err), "dish", id)
	}

	r.logger.Info().Str("dish_id", id).Msg("dish deleted")
	return nil
}

func (r *dishRepository) FindByName(ctx context.Context, name, excludeID string) ([]model.Dish, error) {
	query, _, err := ownerQuery(r.owner)
	if err != nil {
		return nil, err
	}
	query.Set("name", name)
	if excludeID != "" {
		query.Set("id_ne", excludeID)
	}

	var dishes []model.Dish
	if err := r.remote.List(ctx, resourceDishes, query, &dishes); err != nil {
		r.logger.Error().Err(err).Str("name", name).Msg("failed to look up dish name")
		return nil, fmt.Errorf("failed to look up dish name: %w", err)
	}
	return withoutID(dishes, excludeID, func(d model.Dish) string { return d.ID }), nil
}
