package workflow

import (
	"context"

	"resto-ledger/internal/model"

	"github.com/stretchr/testify/mock"
)

// MockSaleRepository is a mock implementation of repository.SaleRepository.
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) List(ctx context.Context) ([]model.Sale, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Sale), args.Error(1)
}

func (m *MockSaleRepository) ListByDate(ctx context.Context, date string) ([]model.Sale, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Sale), args.Error(1)
}

func (m *MockSaleRepository) GetByID(ctx context.Context, id string) (*model.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Sale), args.Error(1)
}

func (m *MockSaleRepository) Create(ctx context.Context, sale model.Sale) (*model.Sale, error) {
	args := m.Called(ctx, sale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Sale), args.Error(1)
}

func (m *MockSaleRepository) Update(ctx context.Context, sale model.Sale) (*model.Sale, error) {
	args := m.Called(ctx, sale)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Sale), args.Error(1)
}

func (m *MockSaleRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockSaleRepository) FindByDishAndDate(ctx context.Context, dishID, date, excludeID string) ([]model.Sale, error) {
	args := m.Called(ctx, dishID, date, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Sale), args.Error(1)
}

// MockDishRepository is a mock implementation of repository.DishRepository.
type MockDishRepository struct {
	mock.Mock
}

func (m *MockDishRepository) List(ctx context.Context) ([]model.Dish, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Dish), args.Error(1)
}

func (m *MockDishRepository) GetByID(ctx context.Context, id string) (*model.Dish, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dish), args.Error(1)
}

func (m *MockDishRepository) Create(ctx context.Context, dish model.Dish) (*model.Dish, error) {
	args := m.Called(ctx, dish)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dish), args.Error(1)
}

func (m *MockDishRepository) Update(ctx context.Context, dish model.Dish) (*model.Dish, error) {
	args := m.Called(ctx, dish)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dish), args.Error(1)
}

func (m *MockDishRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockDishRepository) FindByName(ctx context.Context, name, excludeID string) ([]model.Dish, error) {
	args := m.Called(ctx, name, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Dish), args.Error(1)
}

// MockPurchaseRepository is a mock implementation of
// repository.PurchaseRepository.
type MockPurchaseRepository struct {
	mock.Mock
}

func (m *MockPurchaseRepository) List(ctx context.Context) ([]model.Purchase, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) ListByDate(ctx context.Context, date string) ([]model.Purchase, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) GetByID(ctx context.Context, id string) (*model.Purchase, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) Create(ctx context.Context, purchase model.Purchase) (*model.Purchase, error) {
	args := m.Called(ctx, purchase)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) Update(ctx context.Context, purchase model.Purchase) (*model.Purchase, error) {
	args := m.Called(ctx, purchase)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
