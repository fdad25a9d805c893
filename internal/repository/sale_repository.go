package repository

import (
	"context"
	"fmt"

	"resto-ledger/internal/model"

	"github.com/rs/zerolog"
)

type saleRepository struct {
	remote Remote
	owner  OwnerSource
	logger zerolog.Logger
}

// NewSaleRepository creates a sale repository scoped to the signed-in owner.
func NewSaleRepository(remote Remote, owner OwnerSource, logger zerolog.Logger) SaleRepository {
	return &saleRepository{
		remote: remote,
		owner:  owner,
		logger: logger.With().Str("repository", "sale").Logger(),
	}
}

func (r *saleRepository) List(ctx context.Context) ([]model.Sale, error) {
	query, ownerID, err := ownerQuery(r.owner)
	if err != nil {
		return nil, err
	}

	sales := []model.Sale{}
	if err := r.remote.List(ctx, resourceSales, query, &sales); err != nil {
		r.logger.Error().Err(err).Str("owner_id", ownerID).Msg("failed to list sales")
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, nil
}

func (r *saleRepository) ListByDate(ctx context.Context, date string) ([]model.Sale, error) {
	query, ownerID, err := ownerQuery(r.owner)
	if err != nil {
		return nil, err
	}
	query.Set("date", date)

	sales := []model.Sale{}
	if err := r.remote.List(ctx, resourceSales, query, &sales); err != nil {
		r.logger.Error().Err(err).
			Str("owner_id", ownerID).
			Str("date", date).
			Msg("failed to list sales for date")
		return nil, fmt.Errorf("failed to list sales for %s: %w", date, err)
	}
	return sales, nil
}

func (r *saleRepository) GetByID(ctx context.Context, id string) (*model.Sale, error) {
	var sale model.Sale
	if err := r.remote.Get(ctx, resourceSales, id, &sale); err != nil {
		r.logger.Error().Err(err).Str("sale_id", id).Msg("failed to get sale")
		return nil, notFound(err, "sale", id)
	}
	return &sale, nil
}

func (r *saleRepository) Create(ctx context.Context, sale model.Sale) (*model.Sale, error) {
	_, ownerID, err := ownerQuery(r.owner)
	if err != nil {
		return nil, err
	}
	sale.OwnerID = ownerID

	var created model.Sale
	if err := r.remote.Post(ctx, resourceSales, sale, &created); err != nil {
		r.logger.Error().Err(err).Str("sale_id", sale.ID).Msg("failed to create sale")
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	r.logger.Info().
		Str("sale_id", created.ID).
		Str("dish_id", created.DishID).
		Str("date", created.Date).
		Msg("sale created")
	return &created, nil
}

func (r *saleRepository) Update(ctx context.Context, sale model.Sale) (*model.Sale, error) {
	if sale.OwnerID == "" {
		_, ownerID, err := ownerQuery(r.owner)
		if err != nil {
			return nil, err
		}
		sale.OwnerID = ownerID
	}

	var updated model.Sale
	if err := r.remote.Put(ctx, resourceSales, sale.ID, sale, &updated); err != nil {
		r.logger.Error().Err(err).Str("sale_id", sale.ID).Msg("failed to update sale")
		return nil, notFound(fmt.Errorf("failed to update sale: %w", err), "sale", sale.ID)
	}
	return &updated, nil
}

func (r *saleRepository) Delete(ctx context.Context, id string) error {
	if err := r.remote.Delete(ctx, resourceSales, id); err != nil {
		r.logger.Error().Err(err).Str("sale_id", id).Msg("failed to delete sale")
		return notFound(fmt.Errorf("failed to delete sale: %w", err), "sale", id)
	}

	r.logger.Info().Str("sale_id", id).Msg("sale deleted")
	return nil
}

func (r *saleRepository) FindByDishAndDate(ctx context.Context, dishID, date, excludeID string) ([]model.Sale, error) {
	query, _, err := ownerQuery(r.owner)
	if err != nil {
		return nil, err
	}
	query.Set("dishId", dishID)
	query.Set("date", date)
	if excludeID != "" {
		query.Set("id_ne", excludeID)
	}

	var sales []model.Sale
	if err := r.remote.List(ctx, resourceSales, query, &sales); err != nil {
		r.logger.Error().Err(err).
			Str("dish_id", dishID).
			Str("date", date).
			Msg("failed to look up sales of dish")
		return nil, fmt.Errorf("failed to look up sales of dish: %w", err)
	}
	return withoutID(sales, excludeID, func(s model.Sale) string { return s.ID }), nil
}
