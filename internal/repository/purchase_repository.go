package repository

import (
	"context"
	"fmt"

	"resto-ledger/internal/model"

	"github.com/rs/zerolog"
)

type purchaseRepository struct {
	remote Remote
	owner  OwnerSource
	logger zerolog.Logger
}

// NewPurchaseRepository creates a purchase repository scoped to the
// signed-in owner.
func NewPurchaseRepository(remote Remote, owner OwnerSource, logger zerolog.Logger) PurchaseRepository {
	return &purchaseRepository{
		remote: remote,
		owner:  owner,
		logger: logger.With().Str("repository", "purchase").Logger(),
	}
}

func (r *purchaseRepository) List(ctx context.Context) ([]model.Purchase, error) {
	query, ownerID, err := ownerQuery(r.owner)
	if err != nil {
		return nil, err
	}

	purchases := []model.Purchase{}
	if err := r.remote.List(ctx, resourcePurchases, query, &purchases); err != nil {
		r.logger.Error().Err(err).Str("owner_id", ownerID).Msg("failed to list purchases")
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	return purchases, nil
}

func (r *purchaseRepository) ListByDate(ctx context.Context, date string) ([]model.Purchase, error) {
	query, ownerID, err := ownerQuery(r.owner)
	if err != nil {
		return nil, err
	}
	query.Set("date", date)

	purchases := []model.Purchase{}
	if err := r.remote.List(ctx, resourcePurchases, query, &purchases); err != nil {
		r.logger.Error().Err(err).
			Str("owner_id", ownerID).
			Str("date", date).
			Msg("failed to list purchases for date")
		return nil, fmt.Errorf("failed to list purchases for %s: %w", date, err)
	}
	return purchases, nil
}

func (r *purchaseRepository) GetByID(ctx context.Context, id string) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := r.remote.Get(ctx, resourcePurchases, id, &purchase); err != nil {
		r.logger.Error().Err(err).Str("purchase_id", id).Msg("failed to get purchase")
		return nil, notFound(err, "purchase", id)
	}
	return &purchase, nil
}

func (r *purchaseRepository) Create(ctx context.Context, purchase model.Purchase) (*model.Purchase, error) {
	_, ownerID, err := ownerQuery(r.owner)
	if err != nil {
		return nil, err
	}
	purchase.OwnerID = ownerID

	var created model.Purchase
	if err := r.remote.Post(ctx, resourcePurchases, purchase, &created); err != nil {
		r.logger.Error().Err(err).Str("purchase_id", purchase.ID).Msg("failed to create purchase")
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}

	r.logger.Info().
		Str("purchase_id", created.ID).
		Str("date", created.Date).
		Int("ingredients", len(created.Ingredients)).
		Msg("purchase created")
	return &created, nil
}

func (r *purchaseRepository) Update(ctx context.Context, purchase model.Purchase) (*model.Purchase, error) {
	if purchase.OwnerID == "" {
		_, ownerID, err := ownerQuery(r.owner)
		if err != nil {
			return nil, err
		}
		purchase.OwnerID = ownerID
	}

	var updated model.Purchase
	if err := r.remote.Put(ctx, resourcePurchases, purchase.ID, purchase, &updated); err != nil {
		r.logger.Error().Err(err).Str("purchase_id", purchase.ID).Msg("failed to update purchase")
		return nil, notFound(fmt.Errorf("failed to update purchase: %w", err), "purchase", purchase.ID)
	}
	return &updated, nil
}

func (r *purchaseRepository) Delete(ctx context.Context, id string) error {
	if err := r.remote.Delete(ctx, resourcePurchases, id); err != nil {
		r.logger.Error().Err(err).Str("purchase_id", id).Msg("failed to delete purchase")
		return notFound(fmt.Errorf("failed to delete purchase: %w", err), "purchase", id)
	}

	r.logger.Info().Str("purchase_id", id).Msg("purchase deleted")
	return nil
}
