package handler

import (
	"context"
	"net/http"
	"strconv"

	"resto-ledger/internal/ledger"
	"resto-ledger/internal/model"
	"resto-ledger/internal/workflow"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// PurchasesWorkflow is the monthly purchases screen driven by
// PurchasesHandler.
type PurchasesWorkflow interface {
	Init(ctx context.Context) error
	Reload(ctx context.Context) error
	SelectMonth(ctx context.Context, month, year int) error
	ToggleExpanded(date string) bool
	OpenCreate() error
	OpenEdit(p model.Purchase)
	Close()
	AddLine() error
	RemoveLine(i int) error
	UpdateLine(i int, line model.IngredientLine) error
	OnUnitChange(i int, unit model.Unit) error
	SetForm(date string, lines []model.IngredientLine) error
	Save(ctx context.Context) error
	Delete(ctx context.Context, p model.Purchase, confirm workflow.Confirmer) error
	Purchase(id string) (model.Purchase, bool)
	View() workflow.PurchasesView
}

// SelectMonthRequest selects the month shown on the purchases screen.
type SelectMonthRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// PurchaseFormRequest replaces the content of the open purchase form.
type PurchaseFormRequest struct {
	Date  string                 `json:"date"`
	Lines []model.IngredientLine `json:"lines"`
}

// UnitChangeRequest switches the unit of one ingredient line.
type UnitChangeRequest struct {
	Unit model.Unit `json:"unit"`
}

// ToggleResponse reports whether a date is now expanded.
type ToggleResponse struct {
	Date     string `json:"date"`
	Expanded bool   `json:"expanded"`
}

// PurchasesHandler exposes the purchases workflow.
type PurchasesHandler struct {
	workflow PurchasesWorkflow
	logger   zerolog.Logger
}

// NewPurchasesHandler creates a new purchases handler.
func NewPurchasesHandler(workflow PurchasesWorkflow, logger zerolog.Logger) *PurchasesHandler {
	return &PurchasesHandler{
		workflow: workflow,
		logger:   logger.With().Str("handler", "purchases").Logger(),
	}
}

// View handles GET /api/purchases requests. The first call after sign in
// loads the current month; reload=true fetches it again.
func (h *PurchasesHandler) View(w http.ResponseWriter, r *http.Request) {
	var err error
	switch {
	case h.workflow.View().Month == 0:
		err = h.workflow.Init(r.Context())
	case r.URL.Query().Get("reload") == "true":
		err = h.workflow.Reload(r.Context())
	}
	h.respond(w, err)
}

// SelectMonth handles PUT /api/purchases/month requests.
func (h *PurchasesHandler) SelectMonth(w http.ResponseWriter, r *http.Request) {
	var req SelectMonthRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err, "", h.logger)
		return
	}
	h.respond(w, h.workflow.SelectMonth(r.Context(), req.Month, req.Year))
}

// ToggleDate handles POST /api/purchases/dates/{date}/toggle requests.
func (h *PurchasesHandler) ToggleDate(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if !ledger.ValidDate(date) {
		writeFailure(w, model.NewValidationError("date", "Must be a date formatted YYYY-MM-DD"), "", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, ToggleResponse{Date: date, Expanded: h.workflow.ToggleExpanded(date)})
}

// OpenCreate handles POST /api/purchases/form requests. A screen not loaded
// yet is loaded first so the form is dated inside the current month.
func (h *PurchasesHandler) OpenCreate(w http.ResponseWriter, r *http.Request) {
	if h.workflow.View().Month == 0 {
		if err := h.workflow.Init(r.Context()); err != nil {
			h.respond(w, err)
			return
		}
	}
	h.respond(w, h.workflow.OpenCreate())
}

// OpenEdit handles POST /api/purchases/form/{id} requests.
func (h *PurchasesHandler) OpenEdit(w http.ResponseWriter, r *http.Request) {
	p, ok := h.workflow.Purchase(chi.URLParam(r, "id"))
	if !ok {
		writeFailure(w, model.ErrNotFound, "", h.logger)
		return
	}
	h.workflow.OpenEdit(p)
	h.respond(w, nil)
}

// SetForm handles PUT /api/purchases/form requests.
func (h *PurchasesHandler) SetForm(w http.ResponseWriter, r *http.Request) {
	var req PurchaseFormRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err, "", h.logger)
		return
	}
	h.respond(w, h.workflow.SetForm(req.Date, req.Lines))
}

// Close handles DELETE /api/purchases/form requests.
func (h *PurchasesHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.workflow.Close()
	h.respond(w, nil)
}

// AddLine handles POST /api/purchases/form/lines requests.
func (h *PurchasesHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.workflow.AddLine())
}

// UpdateLine handles PUT /api/purchases/form/lines/{index} requests.
func (h *PurchasesHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	i, err := lineIndex(r)
	if err != nil {
		writeFailure(w, err, "", h.logger)
		return
	}
	var line model.IngredientLine
	if err := decodeJSON(r, &line); err != nil {
		writeFailure(w, err, "", h.logger)
		return
	}
	h.respond(w, h.workflow.UpdateLine(i, line))
}

// ChangeUnit handles PUT /api/purchases/form/lines/{index}/unit requests.
func (h *PurchasesHandler) ChangeUnit(w http.ResponseWriter, r *http.Request) {
	i, err := lineIndex(r)
	if err != nil {
		writeFailure(w, err, "", h.logger)
		return
	}
	var req UnitChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err, "", h.logger)
		return
	}
	if !req.Unit.Valid() {
		writeFailure(w, model.NewValidationError("unit", "Must be one of: kg g unit"), "", h.logger)
		return
	}
	h.respond(w, h.workflow.OnUnitChange(i, req.Unit))
}

// RemoveLine handles DELETE /api/purchases/form/lines/{index} requests.
func (h *PurchasesHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	i, err := lineIndex(r)
	if err != nil {
		writeFailure(w, err, "", h.logger)
		return
	}
	h.respond(w, h.workflow.RemoveLine(i))
}

// Save handles POST /api/purchases/form/save requests.
func (h *PurchasesHandler) Save(w http.ResponseWriter, r *http.Request) {
	h.respond(w, h.workflow.Save(r.Context()))
}

// Delete handles DELETE /api/purchases/{id}?confirm=true requests. Without
// confirm=true the confirmation prompt comes back with a 409.
func (h *PurchasesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.workflow.Purchase(chi.URLParam(r, "id"))
	if !ok {
		writeFailure(w, model.ErrNotFound, "", h.logger)
		return
	}

	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	var prompt string
	err := h.workflow.Delete(r.Context(), p, workflow.ConfirmFunc(func(_ context.Context, msg string) bool {
		prompt = msg
		return confirmed
	}))
	if !confirmed {
		writeFailure(w, err, prompt, h.logger)
		return
	}
	h.respond(w, err)
}

func (h *PurchasesHandler) respond(w http.ResponseWriter, err error) {
	view := h.workflow.View()
	if err != nil {
		writeFailure(w, err, failureMessage(err, view.Message), h.logger)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func lineIndex(r *http.Request) (int, error) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return 0, model.NewValidationError("index", "Must be a line number")
	}
	return i, nil
}
