package repository

import (
	"context"
	"net/url"

	"resto-ledger/internal/model"
)

// Collections on the remote store.
const (
	resourceUsers     = "users"
	resourceDishes    = "dishes"
	resourceSales     = "sales"
	resourcePurchases = "purchases"
)

// Remote is the JSON store the repositories talk to.
type Remote interface {
	List(ctx context.Context, resource string, query url.Values, out any) error
	Get(ctx context.Context, resource, id string, out any) error
	Post(ctx context.Context, resource string, body, out any) error
	Put(ctx context.Context, resource, id string, body, out any) error
	Delete(ctx context.Context, resource, id string) error
}

// OwnerSource yields the id of the signed-in user.
type OwnerSource interface {
	CurrentUserID() (string, error)
}

// UserRepository defines the data access operations for accounts.
type UserRepository interface {
	// FindByCredentials returns the first user matching email and password,
	// or nil when none matches.
	FindByCredentials(ctx context.Context, email, password string) (*model.User, error)

	// FindByEmail returns the user registered with email, or nil.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create stores a new account and returns it with its assigned id.
	Create(ctx context.Context, user model.User) (*model.User, error)
}

// DishRepository defines the data access operations for the owner's dishes.
type DishRepository interface {
	List(ctx context.Context) ([]model.Dish, error)
	GetByID(ctx context.Context, id string) (*model.Dish, error)

	// Create stores dish under the signed-in owner; the store assigns the id.
	Create(ctx context.Context, dish model.Dish) (*model.Dish, error)
	Update(ctx context.Context, dish model.Dish) (*model.Dish, error)
	Delete(ctx context.Context, id string) error

	// FindByName lists the owner's dishes called name, skipping excludeID.
	FindByName(ctx context.Context, name, excludeID string) ([]model.Dish, error)
}

// SaleRepository defines the data access operations for the owner's sales.
type SaleRepository interface {
	List(ctx context.Context) ([]model.Sale, error)
	ListByDate(ctx context.Context, date string) ([]model.Sale, error)
	GetByID(ctx context.Context, id string) (*model.Sale, error)
	Create(ctx context.Context, sale model.Sale) (*model.Sale, error)
	Update(ctx context.Context, sale model.Sale) (*model.Sale, error)
	Delete(ctx context.Context, id string) error

	// FindByDishAndDate lists sales of dishID on date, skipping excludeID.
	FindByDishAndDate(ctx context.Context, dishID, date, excludeID string) ([]model.Sale, error)
}

// PurchaseRepository defines the data access operations for the owner's
// purchases. Month filtering happens on the caller's side.
type PurchaseRepository interface {
	List(ctx context.Context) ([]model.Purchase, error)
	ListByDate(ctx context.Context, date string) ([]model.Purchase, error)
	GetByID(ctx context.Context, id string) (*model.Purchase, error)
	Create(ctx context.Context, purchase model.Purchase) (*model.Purchase, error)
	Update(ctx context.Context, purchase model.Purchase) (*model.Purchase, error)
	Delete(ctx context.Context, id string) error
}
