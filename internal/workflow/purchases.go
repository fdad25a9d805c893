package workflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"resto-ledger/internal/i18n"
	"resto-ledger/internal/ledger"
	"resto-ledger/internal/model"
	"resto-ledger/internal/repository"

	"github.com/rs/zerolog"
)

const purchasesWorkflow = "purchases"

// DateGroup is the purchases of one day within the selected month.
type DateGroup struct {
	Date         string           `json:"date"`
	DisplayDate  string           `json:"displayDate"`
	Purchases    []model.Purchase `json:"purchases"`
	Total        float64          `json:"total"`
	DisplayTotal string           `json:"displayTotal"`
	Expanded     bool             `json:"expanded"`
}

// PurchasesView is a snapshot of the monthly purchases screen.
type PurchasesView struct {
	Month           int                     `json:"month"`
	Year            int                     `json:"year"`
	MonthName       string                  `json:"monthName"`
	Groups          []DateGroup             `json:"groups"`
	Total           float64                 `json:"total"`
	DisplayTotal    string                  `json:"displayTotal"`
	Form            *model.PurchaseForm     `json:"form,omitempty"`
	Editing         bool                    `json:"editing"`
	Units           []model.Unit            `json:"units"`
	QuantityPresets []ledger.QuantityPreset `json:"quantityPresets"`
	Loading         bool                    `json:"loading"`
	Message         Message                 `json:"message"`
}

// PurchasesWorkflow records ingredient purchases and totals them per month.
type PurchasesWorkflow struct {
	purchases repository.PurchaseRepository
	validator Validator
	tr        *i18n.Translator
	opts      options
	logger    zerolog.Logger

	mu         sync.Mutex
	month      int
	year       int
	monthList  []model.Purchase
	expanded   map[string]bool
	form       *model.PurchaseForm
	loading    bool
	busy       bool
	generation uint64
	message    Message
}

// NewPurchasesWorkflow creates the workflow. Call Init before use.
func NewPurchasesWorkflow(
	purchases repository.PurchaseRepository,
	validator Validator,
	tr *i18n.Translator,
	logger zerolog.Logger,
	opts ...Option,
) *PurchasesWorkflow {
	return &PurchasesWorkflow{
		purchases: purchases,
		validator: validator,
		tr:        tr,
		opts:      buildOptions(opts),
		expanded:  make(map[string]bool),
		logger:    logger.With().Str("workflow", purchasesWorkflow).Logger(),
	}
}

// Init selects the current month and loads it.
func (w *PurchasesWorkflow) Init(ctx context.Context) error {
	today := w.opts.now()
	return w.SelectMonth(ctx, int(today.Month()), today.Year())
}

// SelectMonth switches to month (1-12) of year. The expanded dates are reset
// and any open form is closed.
func (w *PurchasesWorkflow) SelectMonth(ctx context.Context, month, year int) error {
	if month < 1 || month > 12 {
		w.mu.Lock()
		w.message = Message{Text: w.tr.Sprintf(i18n.MsgInvalidMonth), Level: LevelError}
		w.mu.Unlock()
		return model.NewValidationError("month", "Must be between 1 and 12")
	}
	if year < 1 {
		return model.NewValidationError("year", "Must be a positive year")
	}

	w.mu.Lock()
	w.month = month
	w.year = year
	w.expanded = make(map[string]bool)
	w.form = nil
	w.mu.Unlock()

	return w.Reload(ctx)
}

// Reload fetches every purchase of the owner and keeps those of the
// selected month, newest first. Only the most recently issued reload
// updates the view.
func (w *PurchasesWorkflow) Reload(ctx context.Context) error {
	w.mu.Lock()
	if w.month == 0 {
		w.mu.Unlock()
		return nil
	}
	w.generation++
	gen := w.generation
	month, year := w.month, w.year
	w.loading = true
	w.mu.Unlock()

	all, err := w.purchases.List(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()

	if gen != w.generation {
		w.logger.Debug().Int("month", month).Int("year", year).Msg("discarding superseded purchases reload")
		return err
	}
	w.loading = false

	if err != nil {
		w.logger.Error().Err(err).Int("month", month).Int("year", year).Msg("failed to load purchases")
		w.message = Message{Text: failureText(w.tr, err, i18n.MsgPurchasesLoadFailed), Level: LevelError}
		return err
	}

	w.monthList = ledger.FilterByMonth(all, month, year)
	w.logger.Debug().
		Int("month", month).
		Int("year", year).
		Int("total", len(all)).
		Int("in_month", len(w.monthList)).
		Msg("purchases loaded")

	if len(w.monthList) == 0 {
		w.message = Message{
			Text:  w.tr.Sprintf(i18n.MsgNoPurchasesForMonth, w.tr.MonthName(month), strconv.Itoa(year)),
			Level: LevelInfo,
		}
	} else {
		w.message = Message{}
	}
	return nil
}

// GroupByDate returns the month's purchases grouped per day, newest first.
func (w *PurchasesWorkflow) GroupByDate() []DateGroup {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.groups()
}

func (w *PurchasesWorkflow) groups() []DateGroup {
	dates := ledger.DistinctDates(w.monthList)
	groups := make([]DateGroup, 0, len(dates))
	for _, d := range dates {
		total := ledger.TotalForDate(w.monthList, d)
		groups = append(groups, DateGroup{
			Date:         d,
			DisplayDate:  ledger.FormatDate(d),
			Purchases:    ledger.PurchasesOnDate(w.monthList, d),
			Total:        total,
			DisplayTotal: ledger.FormatMoney(total),
			Expanded:     w.expanded[d],
		})
	}
	return groups
}

// PurchasesOn returns the month's purchases dated date.
func (w *PurchasesWorkflow) PurchasesOn(date string) []model.Purchase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return ledger.PurchasesOnDate(w.monthList, date)
}

// TotalForDate sums the cost of the purchases dated date.
func (w *PurchasesWorkflow) TotalForDate(date string) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return ledger.TotalForDate(w.monthList, date)
}

// TotalForMonth sums the cost of the month's purchases.
func (w *PurchasesWorkflow) TotalForMonth() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return ledger.TotalForMonth(w.monthList)
}

// ToggleExpanded flips whether the purchases of date are shown in detail.
func (w *PurchasesWorkflow) ToggleExpanded(date string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.expanded[date] {
		delete(w.expanded, date)
		return false
	}
	w.expanded[date] = true
	return true
}

func (w *PurchasesWorkflow) IsExpanded(date string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.expanded[date]
}

// OpenCreate opens a form with one blank line dated inside the selected
// month.
func (w *PurchasesWorkflow) OpenCreate() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.month == 0 {
		return model.ErrScreenNotLoaded
	}
	w.form = &model.PurchaseForm{
		Date:  ledger.DefaultPurchaseDate(w.opts.now(), w.month, w.year),
		Lines: []model.IngredientLine{blankLine()},
	}
	return nil
}

// OpenEdit opens the form on an existing purchase, converting quantities
// back to the units they were entered in.
func (w *PurchasesWorkflow) OpenEdit(p model.Purchase) {
	w.mu.Lock()
	defer w.mu.Unlock()

	lines := make([]model.IngredientLine, 0, len(p.Ingredients))
	for _, ing := range p.Ingredients {
		lines = append(lines, ledger.ToLine(ing))
	}
	if len(lines) == 0 {
		lines = append(lines, blankLine())
	}

	w.form = &model.PurchaseForm{ID: p.ID, Date: p.Date, Lines: lines}
}

// Close discards the open form.
func (w *PurchasesWorkflow) Close() {
	w.mu.Lock()
	w.form = nil
	w.mu.Unlock()
}

// AddLine appends a blank ingredient line.
func (w *PurchasesWorkflow) AddLine() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.form == nil {
		return model.ErrFormClosed
	}
	w.form.Lines = append(w.form.Lines, blankLine())
	return nil
}

// RemoveLine drops line i. The last remaining line is never removed and an
// out of range index is ignored.
func (w *PurchasesWorkflow) RemoveLine(i int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.form == nil {
		return model.ErrFormClosed
	}
	if len(w.form.Lines) <= 1 || i < 0 || i >= len(w.form.Lines) {
		return nil
	}
	w.form.Lines = append(w.form.Lines[:i], w.form.Lines[i+1:]...)
	return nil
}

// UpdateLine replaces line i. The per-unit weight is dropped unless the line
// counts items.
func (w *PurchasesWorkflow) UpdateLine(i int, line model.IngredientLine) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.form == nil {
		return model.ErrFormClosed
	}
	if i < 0 || i >= len(w.form.Lines) {
		return model.NewValidationError(fmt.Sprintf("lines[%d]", i), "No such line")
	}
	w.form.Lines[i] = normaliseLine(line)
	return nil
}

// OnUnitChange switches the unit of line i and clears its per-unit weight.
func (w *PurchasesWorkflow) OnUnitChange(i int, unit model.Unit) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.form == nil {
		return model.ErrFormClosed
	}
	if i < 0 || i >= len(w.form.Lines) {
		return model.NewValidationError(fmt.Sprintf("lines[%d]", i), "No such line")
	}
	w.form.Lines[i].Unit = unit
	w.form.Lines[i].ApproxWeightG = 0
	return nil
}

// SetDate changes the date of the open form.
func (w *PurchasesWorkflow) SetDate(date string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.form == nil {
		return model.ErrFormClosed
	}
	w.form.Date = date
	return nil
}

// SetForm replaces the date and every line of the open form at once.
func (w *PurchasesWorkflow) SetForm(date string, lines []model.IngredientLine) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.form == nil {
		return model.ErrFormClosed
	}

	next := make([]model.IngredientLine, 0, len(lines))
	for _, line := range lines {
		next = append(next, normaliseLine(line))
	}
	if len(next) == 0 {
		next = append(next, blankLine())
	}

	w.form.Date = date
	w.form.Lines = next
	return nil
}

// Save validates the open form, converts every line to kilograms and
// creates or updates the purchase. On success the month of the saved date
// is selected and reloaded.
func (w *PurchasesWorkflow) Save(ctx context.Context) (err error) {
	defer func() { record(purchasesWorkflow, "save", err) }()

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
	form.Lines = append([]model.IngredientLine(nil), w.form.Lines...)

	if err := w.validator.Struct(form); err != nil {
		w.message = Message{Text: w.tr.Sprintf(i18n.MsgFormInvalid), Level: LevelError}
		w.mu.Unlock()
		return err
	}

	purchase, err := w.toPurchase(form)
	if err != nil {
		key := i18n.MsgFormInvalid
		if errors.Is(err, model.ErrNoIngredients) {
			key = i18n.MsgNoValidIngredient
		}
		w.message = Message{Text: w.tr.Sprintf(key), Level: LevelError}
		w.mu.Unlock()
		return err
	}
	w.busy = true
	w.loading = true
	w.mu.Unlock()

	creating := form.ID == ""
	if creating {
		_, err = w.purchases.Create(ctx, purchase)
	} else {
		_, err = w.purchases.Update(ctx, purchase)
	}

	w.mu.Lock()
	w.busy = false
	w.loading = false
	if err != nil {
		fallback := i18n.MsgPurchaseUpdateFailed
		if creating {
			fallback = i18n.MsgPurchaseCreateFailed
		}
		w.logger.Error().Err(err).Str("purchase_id", purchase.ID).Msg("failed to save purchase")
		w.message = Message{Text: failureText(w.tr, err, fallback), Level: LevelError}
		w.mu.Unlock()
		return err
	}

	// Follow the purchase to its month.
	if saved, parseErr := time.Parse(ledger.DateLayout, purchase.Date); parseErr == nil {
		w.month = int(saved.Month())
		w.year = saved.Year()
	}
	w.expanded = make(map[string]bool)
	if w.form == submitted {
		w.form = nil
	}
	w.mu.Unlock()

	if reloadErr := w.Reload(ctx); reloadErr == nil {
		success := i18n.MsgPurchaseUpdated
		if creating {
			success = i18n.MsgPurchaseCreated
		}
		w.setMessage(success, LevelSuccess)
	}
	return nil
}

// toPurchase converts the form; lines with a blank name are dropped.
func (w *PurchasesWorkflow) toPurchase(form model.PurchaseForm) (model.Purchase, error) {
	ingredients := make([]model.Ingredient, 0, len(form.Lines))
	for _, line := range form.Lines {
		line.Name = strings.TrimSpace(line.Name)
		if line.Name == "" {
			continue
		}
		ing, err := ledger.ToIngredient(line)
		if err != nil {
			return model.Purchase{}, err
		}
		ingredients = append(ingredients, ing)
	}
	if len(ingredients) == 0 {
		return model.Purchase{}, model.ErrNoIngredients
	}

	id := form.ID
	if id == "" {
		id = w.opts.newID()
	}
	return model.Purchase{ID: id, Date: form.Date, Ingredients: ingredients}, nil
}

// Delete removes p once confirm agrees, then reloads the month.
func (w *PurchasesWorkflow) Delete(ctx context.Context, p model.Purchase, confirm Confirmer) (err error) {
	if confirm == nil || !confirm.Confirm(ctx, w.tr.Sprintf(i18n.MsgConfirmDeletePurchase)) {
		return model.ErrNotConfirmed
	}
	defer func() { record(purchasesWorkflow, "delete", err) }()

	w.mu.Lock()
	if w.busy {
		w.message = Message{Text: w.tr.Sprintf(i18n.MsgBusy), Level: LevelError}
		w.mu.Unlock()
		return model.ErrOperationInFlight
	}
	w.busy = true
	w.mu.Unlock()

	deleteErr := w.purchases.Delete(ctx, p.ID)

	w.mu.Lock()
	w.busy = false
	if deleteErr != nil {
		w.message = Message{Text: failureText(w.tr, deleteErr, i18n.MsgPurchaseDeleteFailed), Level: LevelError}
		w.mu.Unlock()
		return deleteErr
	}
	w.mu.Unlock()

	if reloadErr := w.Reload(ctx); reloadErr == nil {
		w.setMessage(i18n.MsgPurchaseDeleted, LevelSuccess)
	}
	return nil
}

// Reset forgets everything loaded for the previous user.
func (w *PurchasesWorkflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.generation++
	w.month, w.year = 0, 0
	w.monthList = nil
	w.expanded = make(map[string]bool)
	w.form = nil
	w.loading = false
	w.message = Message{}
}

// Purchase returns the loaded purchase with id.
func (w *PurchasesWorkflow) Purchase(id string) (model.Purchase, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, p := range w.monthList {
		if p.ID == id {
			return p, true
		}
	}
	return model.Purchase{}, false
}

// View returns a copy of the current state.
func (w *PurchasesWorkflow) View() PurchasesView {
	w.mu.Lock()
	defer w.mu.Unlock()

	total := ledger.TotalForMonth(w.monthList)
	v := PurchasesView{
		Month:           w.month,
		Year:            w.year,
		MonthName:       w.tr.MonthName(w.month),
		Groups:          w.groups(),
		Total:           total,
		DisplayTotal:    ledger.FormatMoney(total),
		Units:           model.Units,
		QuantityPresets: ledger.QuantityPresets,
		Loading:         w.loading,
		Message:         w.message,
	}
	if w.form != nil {
		f := *w.form
		f.Lines = append([]model.IngredientLine(nil), w.form.Lines...)
		v.Form = &f
		v.Editing = f.ID != ""
	}
	return v
}

func (w *PurchasesWorkflow) setMessage(key i18n.Key, level Level) {
	w.mu.Lock()
	w.message = Message{Text: w.tr.Sprintf(key), Level: level}
	w.mu.Unlock()
}

func blankLine() model.IngredientLine {
	return model.IngredientLine{Unit: model.UnitKilogram}
}

// normaliseLine keeps a per-unit weight only on counted items.
func normaliseLine(line model.IngredientLine) model.IngredientLine {
	if line.Unit != model.UnitCount {
		line.ApproxWeightG = 0
	}
	return line
}
