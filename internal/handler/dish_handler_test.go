package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"resto-ledger/internal/i18n"
	"resto-ledger/internal/model"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockDishService is a mock implementation of DishService.
type MockDishService struct {
	mock.Mock
}

func (m *MockDishService) List(ctx context.Context) ([]model.Dish, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Dish), args.Error(1)
}

func (m *MockDishService) Get(ctx context.Context, id string) (*model.Dish, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dish), args.Error(1)
}

func (m *MockDishService) Create(ctx context.Context, dish model.Dish) (*model.Dish, error) {
	args := m.Called(ctx, dish)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dish), args.Error(1)
}

func (m *MockDishService) Update(ctx context.Context, dish model.Dish) (*model.Dish, error) {
	args := m.Called(ctx, dish)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dish), args.Error(1)
}

func (m *MockDishService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// withURLParam attaches a chi route parameter to req.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestDishHandler_GetAll(t *testing.T) {
	logger := zerolog.Nop()

	tests := []struct {
		name           string
		mockReturn     []model.Dish
		mockError      error
		expectedStatus int
		expectedCount  int
	}{
		{
			name:           "Success",
			mockReturn:     []model.Dish{{ID: "d1", Name: "Ceviche"}, {ID: "d2", Name: "Causa"}},
			expectedStatus: http.StatusOK,
			expectedCount:  2,
		},
		{
			name:           "Not signed in",
			mockError:      fmt.Errorf("failed to get dishes: %w", model.ErrNotAuthenticated),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Store unreachable",
			mockError:      fmt.Errorf("failed to get dishes: %w", &model.NetworkError{Op: "GET dishes", Status: 503}),
			expectedStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDishService)
			svc.On("List", mock.Anything).Return(tt.mockReturn, tt.mockError)

			w := httptest.NewRecorder()
			NewDishHandler(svc, i18n.New("en"), logger).GetAll(w, httptest.NewRequest(http.MethodGet, "/api/dishes", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var dishes []model.Dish
				require.NoError(t, json.NewDecoder(w.Body).Decode(&dishes))
				assert.Len(t, dishes, tt.expectedCount)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestDishHandler_GetByID(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("Found", func(t *testing.T) {
		svc := new(MockDishService)
		svc.On("Get", mock.Anything, "d1").Return(&model.Dish{ID: "d1", Name: "Ceviche"}, nil)

		w := httptest.NewRecorder()
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/dishes/d1", nil), "id", "d1")
		NewDishHandler(svc, i18n.New("en"), logger).GetByID(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Missing", func(t *testing.T) {
		svc := new(MockDishService)
		svc.On("Get", mock.Anything, "zz").Return(nil, fmt.Errorf("dish zz: %w", model.ErrNotFound))

		w := httptest.NewRecorder()
		req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/dishes/zz", nil), "id", "zz")
		NewDishHandler(svc, i18n.New("es"), logger).GetByID(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, model.ErrCodeNotFound, resp.Error)
		assert.Equal(t, "Plato no encontrado", resp.Message)
	})
}

func TestDishHandler_CreateUpdateDelete(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("Create", func(t *testing.T) {
		svc := new(MockDishService)
		svc.On("Create", mock.Anything, model.Dish{Name: "Ceviche", Price: 30}).
			Return(&model.Dish{ID: "d1", OwnerID: "u1", Name: "Ceviche", Price: 30}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/dishes", strings.NewReader(`{"name":"Ceviche","price":30}`))
		NewDishHandler(svc, i18n.New("en"), logger).Create(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("Create with taken name", func(t *testing.T) {
		svc := new(MockDishService)
		svc.On("Create", mock.Anything, mock.Anything).Return(nil, model.ErrDishNameTaken)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/dishes", strings.NewReader(`{"name":"Ceviche","price":30}`))
		NewDishHandler(svc, i18n.New("en"), logger).Create(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, i18n.MsgDishNameTaken, decodeError(t, w).Message)
	})

	t.Run("Update takes the id from the path", func(t *testing.T) {
		svc := new(MockDishService)
		svc.On("Update", mock.Anything, model.Dish{ID: "d1", Name: "Ceviche mixto", Price: 35}).
			Return(&model.Dish{ID: "d1", Name: "Ceviche mixto", Price: 35}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/api/dishes/d1", strings.NewReader(`{"id":"other","name":"Ceviche mixto","price":35}`))
		NewDishHandler(svc, i18n.New("en"), logger).Update(w, withURLParam(req, "id", "d1"))

		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("Delete", func(t *testing.T) {
		svc := new(MockDishService)
		svc.On("Delete", mock.Anything, "d1").Return(nil)

		w := httptest.NewRecorder()
		req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/dishes/d1", nil), "id", "d1")
		NewDishHandler(svc, i18n.New("en"), logger).Delete(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		svc.AssertExpectations(t)
	})
}
