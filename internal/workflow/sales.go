package workflow

import (
	"context"
	"errors"
	"sync"

	"resto-ledger/internal/i18n"
	"resto-ledger/internal/ledger"
	"resto-ledger/internal/model"
	"resto-ledger/internal/repository"

	"github.com/rs/zerolog"
)

const salesWorkflow = "sales"

// SalesView is a snapshot of the daily sales screen.
type SalesView struct {
	SelectedDate    string           `json:"selectedDate"`
	DisplayDate     string           `json:"displayDate"`
	Sales           []model.SaleView `json:"sales"`
	Dishes          []model.Dish     `json:"dishes"`
	AvailableDishes []model.Dish     `json:"availableDishes"`
	Form            *model.SaleForm  `json:"form,omitempty"`
	Editing         bool             `json:"editing"`
	Loading         bool             `json:"loading"`
	Message         Message          `json:"message"`
}

// SalesWorkflow records how many portions of each dish were sold per day.
type SalesWorkflow struct {
	sales     repository.SaleRepository
	dishes    repository.DishRepository
	validator Validator
	tr        *i18n.Translator
	opts      options
	logger    zerolog.Logger

	mu           sync.Mutex
	selectedDate string
	dishList     []model.Dish
	daySales     []model.SaleView
	available    []model.Dish
	form         *model.SaleForm
	loading      bool
	busy         bool
	generation   uint64
	message      Message
}

// NewSalesWorkflow creates the workflow. Call Init before use.
func NewSalesWorkflow(
	sales repository.SaleRepository,
	dishes repository.DishRepository,
	validator Validator,
	tr *i18n.Translator,
	logger zerolog.Logger,
	opts ...Option,
) *SalesWorkflow {
	return &SalesWorkflow{
		sales:     sales,
		dishes:    dishes,
		validator: validator,
		tr:        tr,
		opts:      buildOptions(opts),
		logger:    logger.With().Str("workflow", salesWorkflow).Logger(),
	}
}

// Init selects today and loads the dishes and the day's sales.
func (w *SalesWorkflow) Init(ctx context.Context) error {
	w.mu.Lock()
	w.selectedDate = w.opts.now().Format(ledger.DateLayout)
	w.form = nil
	w.mu.Unlock()

	return w.Reload(ctx)
}

// SelectDate switches to another day, closing any open form.
func (w *SalesWorkflow) SelectDate(ctx context.Context, date string) error {
	if !ledger.ValidDate(date) {
		return model.NewValidationError("date", "Must be a date formatted YYYY-MM-DD")
	}

	w.mu.Lock()
	w.selectedDate = date
	w.form = nil
	w.mu.Unlock()

	return w.Reload(ctx)
}

// Reload fetches the owner's dishes, then the sales of the selected date.
// When reloads overlap, only the most recently issued one updates the view.
func (w *SalesWorkflow) Reload(ctx context.Context) error {
	w.mu.Lock()
	if w.selectedDate == "" {
		w.mu.Unlock()
		return nil
	}
	w.generation++
	gen := w.generation
	date := w.selectedDate
	w.loading = true
	w.mu.Unlock()

	dishes, dishErr := w.dishes.List(ctx)
	var (
		sales    []model.Sale
		salesErr error
	)
	if dishErr == nil {
		sales, salesErr = w.sales.ListByDate(ctx, date)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if gen != w.generation {
		w.logger.Debug().Str("date", date).Msg("discarding superseded sales reload")
		return errors.Join(dishErr, salesErr)
	}
	w.loading = false

	if dishErr != nil {
		w.logger.Error().Err(dishErr).Msg("failed to load dishes")
		w.message = Message{Text: failureText(w.tr, dishErr, i18n.MsgDishesLoadFailed), Level: LevelError}
		return dishErr
	}
	w.dishList = dishes

	if salesErr != nil {
		w.logger.Error().Err(salesErr).Str("date", date).Msg("failed to load sales")
		w.daySales = w.joinNames(salesOf(w.daySales))
		w.available = w.availableDishes()
		w.message = Message{Text: failureText(w.tr, salesErr, i18n.MsgSalesLoadFailed), Level: LevelError}
		return salesErr
	}

	w.daySales = w.joinNames(sales)
	w.available = w.availableDishes()
	if len(w.daySales) == 0 {
		w.message = Message{Text: w.tr.Sprintf(i18n.MsgNoSalesForDate), Level: LevelInfo}
	} else {
		w.message = Message{}
	}
	return nil
}

// OpenCreate opens an empty form for the selected date.
func (w *SalesWorkflow) OpenCreate() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.selectedDate == "" {
		return model.ErrScreenNotLoaded
	}
	if len(w.dishList) == 0 {
		w.message = Message{Text: w.tr.Sprintf(i18n.MsgNoDishes), Level: LevelInfo}
		return model.ErrNoDishes
	}

	w.form = &model.SaleForm{Date: w.selectedDate, Quantity: 1}
	return nil
}

// OpenEdit opens the form on an existing sale.
func (w *SalesWorkflow) OpenEdit(sale model.Sale) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.form = &model.SaleForm{
		ID:       sale.ID,
		DishID:   sale.DishID,
		Date:     sale.Date,
		Quantity: sale.Quantity,
	}
}

// SetForm updates the dish and quantity of the open form.
func (w *SalesWorkflow) SetForm(dishID string, quantity int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.form == nil {
		return model.ErrFormClosed
	}
	w.form.DishID = dishID
	w.form.Quantity = quantity
	return nil
}

// Close discards the open form.
func (w *SalesWorkflow) Close() {
	w.mu.Lock()
	w.form = nil
	w.mu.Unlock()
}

// Save validates the open form and creates or updates the sale. On failure
// the form stays open with a message; on success the day is reloaded and
// the form closed.
func (w *SalesWorkflow) Save(ctx context.Context) (err error) {
	defer func() { record(salesWorkflow, "save", err) }()

	w.mu.Lock()
	if w.form == nil {
		w.mu.Unlock()
		return model.ErrFormClosed
	}
	if w.busy {
		w.message = Message{Text: w.tr.Sprintf(i18n.MsgBusy), Level: LevelError}
		w.mu.Unlock()
		return model.ErrOperationInFlight
	}
	submitted := w.form
	form := *w.form
	if err := w.validator.Struct(form); err != nil {
		w.message = Message{Text: w.validationText(err), Level: LevelError}
		w.mu.Unlock()
		return err
	}
	w.busy = true
	w.loading = true
	w.mu.Unlock()

	creating := form.ID == ""
	submitErr := w.submit(ctx, form)

	w.mu.Lock()
	w.busy = false
	w.loading = false
	if submitErr != nil {
		fallback := i18n.MsgSaleUpdateFailed
		if creating {
			fallback = i18n.MsgSaleCreateFailed
		}
		if errors.Is(submitErr, model.ErrDishAlreadySold) {
			w.message = Message{Text: w.tr.Sprintf(i18n.MsgDishAlreadySold), Level: LevelError}
		} else {
			w.message = Message{Text: failureText(w.tr, submitErr, fallback), Level: LevelError}
		}
		w.mu.Unlock()
		return submitErr
	}
	if w.form == submitted {
		w.form = nil
	}
	w.mu.Unlock()

	// A failed reload keeps its own message; the sale itself was stored.
	if reloadErr := w.Reload(ctx); reloadErr == nil {
		success := i18n.MsgSaleUpdated
		if creating {
			success = i18n.MsgSaleCreated
		}
		w.setMessage(success, LevelSuccess)
	}
	return nil
}

func (w *SalesWorkflow) submit(ctx context.Context, form model.SaleForm) error {
	same, err := w.sales.FindByDishAndDate(ctx, form.DishID, form.Date, form.ID)
	if err != nil {
		return err
	}
	if len(same) > 0 {
		w.logger.Info().
			Str("dish_id", form.DishID).
			Str("date", form.Date).
			Msg("dish already has a sale on this date")
		return model.ErrDishAlreadySold
	}

	sale := model.Sale{
		ID:       form.ID,
		DishID:   form.DishID,
		Date:     form.Date,
		Quantity: form.Quantity,
	}
	if sale.ID == "" {
		sale.ID = w.opts.newID()
		_, err = w.sales.Create(ctx, sale)
	} else {
		_, err = w.sales.Update(ctx, sale)
	}
	return err
}

// Delete removes sale once confirm agrees, then reloads the day.
func (w *SalesWorkflow) Delete(ctx context.Context, sale model.Sale, confirm Confirmer) (err error) {
	w.mu.Lock()
	prompt := w.tr.Sprintf(i18n.MsgConfirmDeleteSale, w.dishName(sale.DishID))
	w.mu.Unlock()

	if confirm == nil || !confirm.Confirm(ctx, prompt) {
		return model.ErrNotConfirmed
	}
	defer func() { record(salesWorkflow, "delete", err) }()

	w.mu.Lock()
	if w.busy {
		w.message = Message{Text: w.tr.Sprintf(i18n.MsgBusy), Level: LevelError}
		w.mu.Unlock()
		return model.ErrOperationInFlight
	}
	w.busy = true
	w.mu.Unlock()

	deleteErr := w.sales.Delete(ctx, sale.ID)

	w.mu.Lock()
	w.busy = false
	if deleteErr != nil {
		w.message = Message{Text: failureText(w.tr, deleteErr, i18n.MsgSaleDeleteFailed), Level: LevelError}
		w.mu.Unlock()
		return deleteErr
	}
	w.mu.Unlock()

	if reloadErr := w.Reload(ctx); reloadErr == nil {
		w.setMessage(i18n.MsgSaleDeleted, LevelSuccess)
	}
	return nil
}

// Reset forgets everything loaded for the previous user. Reloads still in
// flight are discarded.
func (w *SalesWorkflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.generation++
	w.selectedDate = ""
	w.dishList = nil
	w.daySales = nil
	w.available = nil
	w.form = nil
	w.loading = false
	w.message = Message{}
}

// Sale returns the loaded sale with id.
func (w *SalesWorkflow) Sale(id string) (model.SaleView, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, s := range w.daySales {
		if s.ID == id {
			return s, true
		}
	}
	return model.SaleView{}, false
}

// View returns a copy of the current state.
func (w *SalesWorkflow) View() SalesView {
	w.mu.Lock()
	defer w.mu.Unlock()

	v := SalesView{
		SelectedDate:    w.selectedDate,
		DisplayDate:     ledger.FormatDate(w.selectedDate),
		Sales:           append([]model.SaleView{}, w.daySales...),
		Dishes:          append([]model.Dish{}, w.dishList...),
		AvailableDishes: append([]model.Dish{}, w.available...),
		Loading:         w.loading,
		Message:         w.message,
	}
	if w.form != nil {
		f := *w.form
		v.Form = &f
		v.Editing = f.ID != ""
	}
	return v
}

func (w *SalesWorkflow) setMessage(key i18n.Key, level Level) {
	w.mu.Lock()
	w.message = Message{Text: w.tr.Sprintf(key), Level: level}
	w.mu.Unlock()
}

func (w *SalesWorkflow) validationText(err error) string {
	var vErr *model.ValidationError
	if errors.As(err, &vErr) {
		if _, ok := vErr.Fields["dishId"]; ok {
			return w.tr.Sprintf(i18n.MsgSelectDish)
		}
		if _, ok := vErr.Fields["quantity"]; ok {
			return w.tr.Sprintf(i18n.MsgQuantityPositive)
		}
	}
	return w.tr.Sprintf(i18n.MsgFormInvalid)
}

// joinNames attaches dish names; must be called with mu held.
func (w *SalesWorkflow) joinNames(sales []model.Sale) []model.SaleView {
	views := make([]model.SaleView, 0, len(sales))
	for _, s := range sales {
		views = append(views, model.SaleView{Sale: s, DishName: w.dishName(s.DishID)})
	}
	return views
}

func (w *SalesWorkflow) dishName(id string) string {
	for _, d := range w.dishList {
		if d.ID == id {
			return d.Name
		}
	}
	return w.tr.Sprintf(i18n.MsgDishNotFound)
}

// availableDishes lists dishes without a sale on the selected date.
func (w *SalesWorkflow) availableDishes() []model.Dish {
	sold := make(map[string]bool, len(w.daySales))
	for _, s := range w.daySales {
		sold[s.DishID] = true
	}

	out := make([]model.Dish, 0, len(w.dishList))
	for _, d := range w.dishList {
		if !sold[d.ID] {
			out = append(out, d)
		}
	}
	return out
}

func salesOf(views []model.SaleView) []model.Sale {
	out := make([]model.Sale, 0, len(views))
	for _, v := range views {
		out = append(out, v.Sale)
	}
	return out
}
