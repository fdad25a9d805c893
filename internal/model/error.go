package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeValidation         = "VALIDATION_FAILED"
	ErrCodeNoDishes           = "NO_DISHES"
	ErrCodeNoIngredients      = "NO_INGREDIENTS"
	ErrCodeDishNameTaken      = "DISH_NAME_TAKEN"
	ErrCodeDishAlreadySold    = "DISH_ALREADY_SOLD"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeEmailNotFound      = "EMAIL_NOT_FOUND"
	ErrCodeRecoveryCooldown   = "RECOVERY_COOLDOWN"
	ErrCodeOperationInFlight  = "OPERATION_IN_FLIGHT"
	ErrCodeNotConfirmed       = "NOT_CONFIRMED"
	ErrCodeFormClosed         = "FORM_CLOSED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeScreenNotLoaded    = "SCREEN_NOT_LOADED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeNotAuthenticated   = "NOT_AUTHENTICATED"
	ErrCodeSessionExpired     = "SESSION_EXPIRED"
	ErrCodeRemote             = "REMOTE_ERROR"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// ValidationError carries field-level failures. It never leaves the process.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError creates a validation error for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// AuthError reports invalid credentials or a session that is gone.
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// NetworkError wraps a failed call to the remote store.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: remote responded with status %d", e.Op, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op + ": request failed"
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Common domain errors
var (
	ErrNoDishes          = NewDomainError(ErrCodeNoDishes, "no dishes registered")
	ErrNoIngredients     = NewDomainError(ErrCodeNoIngredients, "must include at least one valid ingredient")
	ErrDishNameTaken     = NewDomainError(ErrCodeDishNameTaken, "a dish with this name already exists")
	ErrDishAlreadySold   = NewDomainError(ErrCodeDishAlreadySold, "a sale for this dish is already recorded on this date")
	ErrEmailTaken        = NewDomainError(ErrCodeEmailTaken, "an account with this email already exists")
	ErrEmailNotFound     = NewDomainError(ErrCodeEmailNotFound, "no account is associated with this email")
	ErrOperationInFlight = NewDomainError(ErrCodeOperationInFlight, "another operation is still in progress")
	ErrNotConfirmed      = NewDomainError(ErrCodeNotConfirmed, "operation was not confirmed")
	ErrFormClosed        = NewDomainError(ErrCodeFormClosed, "no form is open")
	ErrNotFound          = NewDomainError(ErrCodeNotFound, "record not found")
	ErrScreenNotLoaded   = NewDomainError(ErrCodeScreenNotLoaded, "nothing is loaded yet")

	ErrInvalidCredentials = &AuthError{Code: ErrCodeInvalidCredentials, Message: "invalid email or password"}
	ErrNotAuthenticated   = &AuthError{Code: ErrCodeNotAuthenticated, Message: "user is not authenticated"}
	ErrSessionExpired     = &AuthError{Code: ErrCodeSessionExpired, Message: "session expired"}
)

// RecoveryCooldownError is returned while a recovery email cannot be resent yet.
type RecoveryCooldownError struct {
	RemainingSeconds int
}

func (e *RecoveryCooldownError) Error() string {
	return fmt.Sprintf("recovery email already sent, retry in %d seconds", e.RemainingSeconds)
}

// Kind classifies an error into the client error taxonomy.
type Kind string

const (
	KindNone       Kind = ""
	KindValidation Kind = "validation"
	KindDomain     Kind = "domain"
	KindNetwork    Kind = "network"
	KindAuth       Kind = "auth"
	KindInternal   Kind = "internal"
)

// KindOf returns the taxonomy class of err.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}

	var (
		vErr  *ValidationError
		dErr  *DomainError
		cdErr *RecoveryCooldownError
		aErr  *AuthError
		nErr  *NetworkError
	)

	switch {
	case errors.As(err, &vErr):
		return KindValidation
	case errors.As(err, &dErr), errors.As(err, &cdErr):
		return KindDomain
	case errors.As(err, &aErr):
		return KindAuth
	case errors.As(err, &nErr):
		return KindNetwork
	default:
		return KindInternal
	}
}
