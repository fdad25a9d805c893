package handler

import (
	"context"
	"net/http"
	"strconv"

	"resto-ledger/internal/model"
	"resto-ledger/internal/workflow"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// SalesWorkflow is the daily sales screen driven by SalesHandler.
type SalesWorkflow interface {
	Init(ctx context.Context) error
	Reload(ctx context.Context) error
	SelectDate(ctx context.Context, date string) error
	OpenCreate() error
	OpenEdit(sale model.Sale)
	SetForm(dishID string, quantity int) error
	Close()
	Save(ctx context.Context) error
	Delete(ctx context.Context, sale model.Sale, confirm workflow.Confirmer) error
	Sale(id string) (model.SaleView, bool)
	View() workflow.SalesView
}

// SelectDateRequest selects the day shown on the sales screen.
type SelectDateRequest struct {
	Date string `json:"date"`
}

// SaleFormRequest carries the editable fields of the open sale form.
type SaleFormRequest struct {
	DishID   string `json:"dishId"`
	Quantity int    `json:"quantity"`
}

// SalesHandler exposes the sales workflow.
type SalesHandler struct {
	workflow SalesWorkflow
	logger   zerolog.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(workflow SalesWorkflow, logger zerolog.Logger) *SalesHandler {
	return &SalesHandler{
		workflow: workflow,
		logger:   logger.With().Str("handler", "sales").Logger(),
	}
}

// View handles GET /api/sales requests. The first call after sign in loads
// today; reload=true fetches the selected day again.
func (h *SalesHandler) View(w http.ResponseWriter, r *http.Request) {
	var err error
	switch {
	case h.workflow.View().SelectedDate == "":
		err = h.workflow.Init(r.Context())
	case r.URL.Query().Get("reload") == "true":
		err = h.workflow.Reload(r.Context())
	}
	h.respond(w, err)
}

// SelectDate handles PUT /api/sales/date requests.
func (h *SalesHandler) SelectDate(w http.ResponseWriter, r *http.Request) {
	var req SelectDateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err, "", h.logger)
		return
	}
	h.respond(w, h.workflow.SelectDate(r.Context(), req.Date))
}

// OpenCreate handles POST /api/sales/form requests. A screen not loaded yet
// is loaded first so the dish list is known.
func (h *SalesHandler) OpenCreate(w http.ResponseWriter, r *http.Request) {
	if h.workflow.View().SelectedDate == "" {
		if err := h.workflow.Init(r.Context()); err != nil {
			h.respond(w, err)
			return
		}
	}
	h.respond(w, h.workflow.OpenCreate())
}

// OpenEdit handles POST /api/sales/form/{id} requests.
func (h *SalesHandler) OpenEdit(w http.ResponseWriter, r *http.Request) {
	sale, ok := h.workflow.Sale(chi.URLParam(r, "id"))
	if !ok {
		writeFailure(w, model.ErrNotFound, "", h.logger)
		return
	}
	h.workflow.OpenEdit(sale.Sale)
	h.respond(w, nil)
}

// SetForm handles PUT /api/sales/form requests.
func (h *SalesHandler) SetForm(w http.ResponseWriter, r *http.Request) {
	var req SaleFormRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err, "", h.logger)
		return
	}
	h.respond(w, h.workflow.SetForm(req.DishID, req.Quantity))
}

// Close handles DELETE /api/sales/form requests.
func (h *SalesHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.workflow.Close()
	h.respond(w, nil)
}

// Save handles POST /api/sales/form/save requests.
func (h *SalesHandler) Save(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.workflow.Save(r.Context()))
}

// Delete handles DELETE /api/sales/{id}?confirm=true requests. Without
// confirm=true the confirmation prompt comes back with a 409.
func (h *SalesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sale, ok := h.workflow.Sale(chi.URLParam(r, "id"))
	if !ok {
		writeFailure(w, model.ErrNotFound, "", h.logger)
		return
	}

	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	var prompt string
	err := h.workflow.Delete(r.Context(), sale.Sale, workflow.ConfirmFunc(func(_ context.Context, p string) bool {
		prompt = p
		return confirmed
	}))
	if !confirmed {
		writeFailure(w, err, prompt, h.logger)
		return
	}
	h.respond(w, err)
}

// respond writes the current view, or err with the view's message.
func (h *SalesHandler) respond(w http.ResponseWriter, err error) {
	view := h.workflow.View()
	if err != nil {
		writeFailure(w, err, failureMessage(err, view.Message), h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
