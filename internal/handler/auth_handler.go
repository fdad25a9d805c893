package handler

import (
	"errors"
	"net/http"
	"strings"

	"resto-ledger/internal/i18n"
	"resto-ledger/internal/model"
	"resto-ledger/internal/service"

	"github.com/rs/zerolog"
)

// MessageResponse carries a translated confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// AuthHandler handles sign in, sign up and password recovery.
type AuthHandler struct {
	service service.AuthService
	tr      *i18n.Translator
	logger  zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service service.AuthService, tr *i18n.Translator, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		tr:      tr,
		logger:  logger.With().Str("handler", "auth").Logger(),
	}
}

// Login handles POST /api/auth/login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err, h.tr.Sprintf(i18n.MsgLoginInvalidForm), h.logger)
		return
	}

	user, err := h.service.Login(r.Context(), req)
	if err != nil {
		var message string
		switch model.KindOf(err) {
		case model.KindValidation:
			message = h.tr.Sprintf(i18n.MsgLoginInvalidForm)
		case model.KindAuth:
			message = h.tr.Sprintf(i18n.MsgLoginBadCredentials)
		default:
			message = h.tr.Sprintf(i18n.MsgLoginFailed)
		}
		writeFailure(w, err, message, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Register handles POST /api/auth/register requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err, h.tr.Sprintf(i18n.MsgLoginInvalidForm), h.logger)
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		var message string
		switch {
		case errors.Is(err, model.ErrEmailTaken):
			message = h.tr.Sprintf(i18n.MsgRegisterEmailTaken)
		case model.KindOf(err) == model.KindValidation:
			message = h.tr.Sprintf(i18n.MsgLoginInvalidForm)
		default:
			message = h.tr.Sprintf(i18n.MsgRegisterFailed)
		}
		writeFailure(w, err, message, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Logout handles POST /api/auth/logout requests.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context()); err != nil {
		// The in-memory session is gone either way.
		h.logger.Warn().Err(err).Msg("session storage not fully cleared on logout")
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me requests.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := h.service.CurrentUser()
	if user == nil {
		writeFailure(w, model.ErrNotAuthenticated, "", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Recover handles POST /api/auth/recover requests.
func (h *AuthHandler) Recover(w http.ResponseWriter, r *http.Request) {
	var req model.RecoverRequest
	if err := decodeJSON(r, &req); err != nil {
		writeFailure(w, err, "", h.logger)
		return
	}

	email := strings.TrimSpace(req.Email)
	err := h.service.RequestRecovery(r.Context(), email)
	if err != nil {
		var (
			cdErr   *model.RecoveryCooldownError
			message string
		)
		switch {
		case errors.As(err, &cdErr):
			message = h.tr.Sprintf(i18n.MsgRecoveryCooldown, cdErr.RemainingSeconds)
		case errors.Is(err, model.ErrEmailNotFound):
			message = h.tr.Sprintf(i18n.MsgRecoveryUnknown)
		case model.KindOf(err) == model.KindValidation:
			message = ""
		default:
			message = h.tr.Sprintf(i18n.MsgRecoveryFailed)
		}
		writeFailure(w, err, message, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: h.tr.Sprintf(i18n.MsgRecoverySent, email)})
}
