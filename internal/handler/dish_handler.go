package handler

import (
	"errors"
	"net/http"

	"resto-ledger/internal/i18n"
	"resto-ledger/internal/model"
	"resto-ledger/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// DishHandler handles dish-related HTTP requests.
type DishHandler struct {
	service service.DishService
	tr      *i18n.Translator
	logger  zerolog.Logger
}

// NewDishHandler creates a new dish handler.
func NewDishHandler(service service.DishService, tr *i18n.Translator, logger zerolog.Logger) *DishHandler {
	return &DishHandler{
		service: service,
		tr:      tr,
		logger:  logger.With().Str("handler", "dish").Logger(),
	}
}

// GetAll handles GET /api/dishes requests.
func (h *DishHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.service.List(r.Context())
	if err != nil {
		writeFailure(w, err, "", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, dishes)
}

// GetByID handles GET /api/dishes/{id} requests.
func (h *DishHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	dish, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err, h.message(err), h.logger)
		return
	}
	writeJSON(w, http.StatusOK, dish)
}

// Create handles POST /api/dishes requests.
func (h *DishHandler) Create(w http.ResponseWriter, r *http.Request) {
	var dish model.Dish
	if err := decodeJSON(r, &dish); err != nil {
		writeFailure(w, err, "", h.logger)
		return
	}

	created, err := h.service.Create(r.Context(), dish)
	if err != nil {
		writeFailure(w, err, h.message(err), h.logger)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update handles PUT /api/dishes/{id} requests.
func (h *DishHandler) Update(w http.ResponseWriter, r *http.Request) {
	var dish model.Dish
	if err := decodeJSON(r, &dish); err != nil {
		writeFailure(w, err, "", h.logger)
		return
	}
	dish.ID = chi.URLParam(r, "id")

	updated, err := h.service.Update(r.Context(), dish)
	if err != nil {
		writeFailure(w, err, h.message(err), h.logger)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/dishes/{id} requests.
func (h *DishHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeFailure(w, err, h.message(err), h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DishHandler) message(err error) string {
	switch {
	case errors.Is(err, model.ErrDishNameTaken):
		return h.tr.Sprintf(i18n.MsgDishNameTaken)
	case errors.Is(err, model.ErrNotFound):
		return h.tr.Sprintf(i18n.MsgDishNotFound)
	}
	return ""
}
