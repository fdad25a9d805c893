// Package workflow drives the daily sales and monthly purchases screens:
// it holds what the user is looking at, validates forms and sends the
// resulting records to the store.
//
// Every method is safe for concurrent use. Reads and writes of the view
// state are serialised by a mutex held only around state changes, never
// across a remote call.
package workflow

import (
	"context"
	"errors"
	"time"

	"resto-ledger/internal/i18n"
	"resto-ledger/internal/metrics"
	"resto-ledger/internal/model"

	"github.com/google/uuid"
)

// Level classifies a user-facing message.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Message is the status line shown above a screen.
type Message struct {
	Text  string `json:"text"`
	Level Level  `json:"level"`
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// Validator checks a form against its field rules.
type Validator interface {
	Struct(s interface{}) error
}

// Option customises a workflow.
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides how ids of new records are made.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

func buildOptions(opts []Option) options {
	o := options{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// failureText picks the message for a failed remote call.
func failureText(tr *i18n.Translator, err error, fallback i18n.Key) string {
	switch {
	case errors.Is(err, model.ErrNotAuthenticated):
		return tr.Sprintf(i18n.MsgNoCurrentUser)
	case model.KindOf(err) == model.KindAuth:
		return tr.Sprintf(i18n.MsgSessionExpired)
	default:
		return tr.Sprintf(fallback)
	}
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	return string(model.KindOf(err))
}

func record(workflow, operation string, err error) {
	metrics.WorkflowOperations.WithLabelValues(workflow, operation, outcome(err)).Inc()
}
