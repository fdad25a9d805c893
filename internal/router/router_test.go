package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"resto-ledger/internal/handler"
	"resto-ledger/internal/i18n"
	"resto-ledger/internal/model"
	"resto-ledger/internal/repository"
	"resto-ledger/internal/restapi"
	"resto-ledger/internal/service"
	"resto-ledger/internal/session"
	"resto-ledger/internal/testing/jsonstore"
	"resto-ledger/internal/validation"
	"resto-ledger/internal/workflow"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	handler http.Handler
	store   *jsonstore.Store
	session *session.Store
	expired *atomic.Int32
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger := zerolog.Nop()

	store, server := jsonstore.NewServer()
	t.Cleanup(server.Close)
	store.Seed("users", model.User{ID: "u1", Name: "La Picantería", Email: "chef@picanteria.pe", Password: "secret123"})
	store.Seed("dishes",
		model.Dish{ID: "d1", OwnerID: "u1", Name: "Ceviche", Price: 30},
		model.Dish{ID: "d2", OwnerID: "u1", Name: "Lomo saltado", Price: 28},
		model.Dish{ID: "d9", OwnerID: "u2", Name: "Pachamanca", Price: 45},
	)

	sess := session.NewStore(session.NewFileBackend(filepath.Join(t.TempDir(), "session.json"), logger), logger)

	expired := new(atomic.Int32)
	interceptor := restapi.NewInterceptor(nil, sess, func() { expired.Add(1) }, logger)
	remote, err := restapi.New(server.URL, restapi.Options{Timeout: 5 * time.Second, Transport: interceptor}, logger)
	require.NoError(t, err)

	v := validation.New()
	tr := i18n.New("en")
	clock := workflow.WithClock(func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) })

	userRepo := repository.NewUserRepository(remote, logger)
	dishRepo := repository.NewDishRepository(remote, sess, logger)
	saleRepo := repository.NewSaleRepository(remote, sess, logger)
	purchaseRepo := repository.NewPurchaseRepository(remote, sess, logger)

	sales := workflow.NewSalesWorkflow(saleRepo, dishRepo, v, tr, logger, clock)
	purchases := workflow.NewPurchasesWorkflow(purchaseRepo, v, tr, logger, clock)
	sess.Subscribe(func(user *model.User) {
		if user == nil {
			sales.Reset()
			purchases.Reset()
		}
	})

	authService := service.NewAuthService(userRepo, sess, v, 0, logger)
	dishService := service.NewDishService(dishRepo, v, logger)

	h := New(Handlers{
		Auth:      handler.NewAuthHandler(authService, tr, logger),
		Dishes:    handler.NewDishHandler(dishService, tr, logger),
		Sales:     handler.NewSalesHandler(sales, logger),
		Purchases: handler.NewPurchasesHandler(purchases, logger),
	}, sess, "", logger)

	return &testApp{handler: h, store: store, session: sess, expired: expired}
}

func (a *testApp) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())
	return v
}

func (a *testApp) login(t *testing.T) {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/auth/login", `{"email":"chef@picanteria.pe","password":"secret123"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRouter_PublicEndpoints(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "healthy"}`, w.Body.String())

	w = app.do(t, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodOptions, "/api/sales", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_SignIn(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/api/sales", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(t, http.MethodPost, "/api/auth/login", `{"email":"chef@picanteria.pe","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, i18n.MsgLoginBadCredentials, decode[model.ErrorResponse](t, w).Message)
	assert.False(t, app.session.IsAuthenticated())

	app.login(t)
	assert.True(t, app.session.IsAuthenticated())

	w = app.do(t, http.MethodGet, "/api/auth/me", "")
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[model.User](t, w)
	assert.Equal(t, "u1", me.ID)
	assert.Empty(t, me.Password)

	w = app.do(t, http.MethodGet, "/api/dishes", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Dish](t, w), 2)

	w = app.do(t, http.MethodPost, "/api/auth/logout", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, app.session.IsAuthenticated())

	w = app.do(t, http.MethodGet, "/api/dishes", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_SalesFlow(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	w := app.do(t, http.MethodGet, "/api/sales", "")
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[workflow.SalesView](t, w)
	assert.Equal(t, "2025-03-10", view.SelectedDate)
	assert.Len(t, view.Dishes, 2)
	assert.Empty(t, view.Sales)
	assert.Equal(t, workflow.Message{Text: i18n.MsgNoSalesForDate, Level: workflow.LevelInfo}, view.Message)

	require.Equal(t, http.StatusOK, app.do(t, http.MethodPost, "/api/sales/form", "").Code)
	require.Equal(t, http.StatusOK, app.do(t, http.MethodPut, "/api/sales/form", `{"dishId":"d1","quantity":0}`).Code)

	w = app.do(t, http.MethodPost, "/api/sales/form/save", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, i18n.MsgQuantityPositive, decode[model.ErrorResponse](t, w).Message)

	require.Equal(t, http.StatusOK, app.do(t, http.MethodPut, "/api/sales/form", `{"dishId":"d1","quantity":3}`).Code)
	w = app.do(t, http.MethodPost, "/api/sales/form/save", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view = decode[workflow.SalesView](t, w)
	require.Len(t, view.Sales, 1)
	assert.Equal(t, "Ceviche", view.Sales[0].DishName)
	assert.Equal(t, 3, view.Sales[0].Quantity)
	assert.Equal(t, "u1", view.Sales[0].OwnerID)
	assert.Nil(t, view.Form)
	assert.Equal(t, workflow.Message{Text: i18n.MsgSaleCreated, Level: workflow.LevelSuccess}, view.Message)
	assert.Len(t, app.store.All("sales"), 1)

	id := view.Sales[0].ID
	w = app.do(t, http.MethodDelete, "/api/sales/"+id, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decode[model.ErrorResponse](t, w)
	assert.Equal(t, model.ErrCodeNotConfirmed, resp.Error)
	assert.Equal(t, "Are you sure you want to delete the sale of Ceviche?", resp.Message)
	assert.Len(t, app.store.All("sales"), 1)

	w = app.do(t, http.MethodDelete, "/api/sales/"+id+"?confirm=true", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, decode[workflow.SalesView](t, w).Sales)
	assert.Empty(t, app.store.All("sales"))

	w = app.do(t, http.MethodDelete, "/api/sales/"+id+"?confirm=true", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_SalesReloadSeesDishChanges(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	w := app.do(t, http.MethodGet, "/api/sales", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode[workflow.SalesView](t, w).AvailableDishes, 2)

	w = app.do(t, http.MethodPost, "/api/dishes", `{"name":"Ají de gallina","price":22}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[model.Dish](t, w)

	w = app.do(t, http.MethodPut, "/api/dishes/d1", `{"name":"Ceviche mixto","price":32}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.do(t, http.MethodGet, "/api/sales?reload=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[workflow.SalesView](t, w)
	require.Len(t, view.AvailableDishes, 3)

	names := make(map[string]string, len(view.AvailableDishes))
	for _, d := range view.AvailableDishes {
		names[d.ID] = d.Name
	}
	assert.Equal(t, "Ají de gallina", names[created.ID])
	assert.Equal(t, "Ceviche mixto", names["d1"])
}

func TestRouter_FormsLoadTheScreenFirst(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	w := app.do(t, http.MethodPost, "/api/purchases/form", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	purchases := decode[workflow.PurchasesView](t, w)
	assert.Equal(t, 3, purchases.Month)
	assert.Equal(t, 2025, purchases.Year)
	require.NotNil(t, purchases.Form)
	assert.Equal(t, "2025-03-10", purchases.Form.Date)

	w = app.do(t, http.MethodPost, "/api/sales/form", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sales := decode[workflow.SalesView](t, w)
	assert.Equal(t, "2025-03-10", sales.SelectedDate)
	assert.Len(t, sales.Dishes, 2)
	require.NotNil(t, sales.Form)
	assert.Equal(t, "2025-03-10", sales.Form.Date)

	// Logging out resets both screens; the next form open loads them again.
	require.Equal(t, http.StatusNoContent, app.do(t, http.MethodPost, "/api/auth/logout", "").Code)
	app.login(t)

	w = app.do(t, http.MethodPost, "/api/sales/form", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[workflow.SalesView](t, w).Dishes, 2)

	w = app.do(t, http.MethodPost, "/api/purchases/form", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "2025-03-10", decode[workflow.PurchasesView](t, w).Form.Date)
}

func TestRouter_PurchasesFlow(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	w := app.do(t, http.MethodGet, "/api/purchases", "")
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[workflow.PurchasesView](t, w)
	assert.Equal(t, 3, view.Month)
	assert.Equal(t, 2025, view.Year)
	assert.Empty(t, view.Groups)

	w = app.do(t, http.MethodPost, "/api/purchases/form", "")
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[workflow.PurchasesView](t, w)
	require.NotNil(t, view.Form)
	assert.Equal(t, "2025-03-10", view.Form.Date)
	assert.Len(t, view.Form.Lines, 1)

	form := `{"date":"2025-03-08","lines":[
		{"name":"Limón","quantity":500,"unit":"g","cost":4.5},
		{"name":"Pescado","quantity":2,"unit":"kg","cost":60}
	]}`
	require.Equal(t, http.StatusOK, app.do(t, http.MethodPut, "/api/purchases/form", form).Code)

	w = app.do(t, http.MethodPost, "/api/purchases/form/save", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view = decode[workflow.PurchasesView](t, w)
	require.Len(t, view.Groups, 1)
	assert.Equal(t, "2025-03-08", view.Groups[0].Date)
	assert.InDelta(t, 64.5, view.Total, 0.001)
	assert.Equal(t, "S/. 64.50", view.DisplayTotal)
	assert.Equal(t, workflow.Message{Text: i18n.MsgPurchaseCreated, Level: workflow.LevelSuccess}, view.Message)

	stored := app.store.All("purchases")
	require.Len(t, stored, 1)
	ingredients := stored[0]["ingredients"].([]any)
	assert.InDelta(t, 0.5, ingredients[0].(map[string]any)["quantity"], 0.0001)

	w = app.do(t, http.MethodPost, "/api/purchases/dates/2025-03-08/toggle", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, handler.ToggleResponse{Date: "2025-03-08", Expanded: true}, decode[handler.ToggleResponse](t, w))

	w = app.do(t, http.MethodPost, "/api/purchases/dates/08-03-2025/toggle", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPut, "/api/purchases/month", `{"month":13,"year":2025}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, i18n.MsgInvalidMonth, decode[model.ErrorResponse](t, w).Message)

	w = app.do(t, http.MethodPut, "/api/purchases/month", `{"month":2,"year":2025}`)
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[workflow.PurchasesView](t, w)
	assert.Empty(t, view.Groups)
	assert.Equal(t, "No purchases recorded for February 2025", view.Message.Text)
}

func TestRouter_PurchaseFormLines(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/purchases", "").Code)

	w := app.do(t, http.MethodPost, "/api/purchases/form/lines", "")
	assert.Equal(t, http.StatusConflict, w.Code)

	require.Equal(t, http.StatusOK, app.do(t, http.MethodPost, "/api/purchases/form", "").Code)
	require.Equal(t, http.StatusOK, app.do(t, http.MethodPost, "/api/purchases/form/lines", "").Code)

	w = app.do(t, http.MethodPut, "/api/purchases/form/lines/1", `{"name":"Huevos","quantity":12,"unit":"unit","cost":6,"approxWeightG":60}`)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[workflow.PurchasesView](t, w)
	require.Len(t, view.Form.Lines, 2)
	assert.Equal(t, 60.0, view.Form.Lines[1].ApproxWeightG)

	w = app.do(t, http.MethodPut, "/api/purchases/form/lines/1/unit", `{"unit":"kg"}`)
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[workflow.PurchasesView](t, w)
	assert.Equal(t, model.UnitKilogram, view.Form.Lines[1].Unit)
	assert.Zero(t, view.Form.Lines[1].ApproxWeightG)

	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodPut, "/api/purchases/form/lines/1/unit", `{"unit":"lb"}`).Code)
	assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodPut, "/api/purchases/form/lines/x", `{}`).Code)

	w = app.do(t, http.MethodDelete, "/api/purchases/form/lines/0", "")
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[workflow.PurchasesView](t, w)
	require.Len(t, view.Form.Lines, 1)
	assert.Equal(t, "Huevos", view.Form.Lines[0].Name)

	w = app.do(t, http.MethodDelete, "/api/purchases/form", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[workflow.PurchasesView](t, w).Form)
}

func TestRouter_ExpiredSession(t *testing.T) {
	app := newTestApp(t)
	app.login(t)

	require.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/sales", "").Code)

	app.store.SetStatus(http.StatusUnauthorized)
	w := app.do(t, http.MethodGet, "/api/sales?reload=true", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, model.ErrCodeSessionExpired, decode[model.ErrorResponse](t, w).Error)
	assert.False(t, app.session.IsAuthenticated())
	assert.Equal(t, int32(1), app.expired.Load())

	app.store.SetStatus(0)
	w = app.do(t, http.MethodGet, "/api/sales", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, model.ErrCodeNotAuthenticated, decode[model.ErrorResponse](t, w).Error)

	// Signing in again starts from a fresh screen.
	app.login(t)
	w = app.do(t, http.MethodGet, "/api/sales", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-03-10", decode[workflow.SalesView](t, w).SelectedDate)
}
