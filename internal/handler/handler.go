package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"resto-ledger/internal/model"
	"resto-ledger/internal/workflow"

	"github.com/rs/zerolog"
)

// maxBodyBytes caps request bodies read by the front API.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but don't expose it to the client
		return
	}
}

// writeError writes an error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	logger.Error().Str("error", message).Str("code", code).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeFailure maps err onto a status code and writes it. message, when set,
// replaces the error text shown to the user.
func writeFailure(w http.ResponseWriter, err error, message string, logger zerolog.Logger) {
	status, resp := errorResponse(err)
	if message != "" {
		resp.Message = message
	}

	var cdErr *model.RecoveryCooldownError
	if errors.As(err, &cdErr) {
		w.Header().Set("Retry-After", strconv.Itoa(cdErr.RemainingSeconds))
	}

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).Str("code", resp.Error).Int("status", status).Msg("request failed")

	writeJSON(w, status, resp)
}

// failureMessage picks the workflow message to show next to err. Errors the
// workflow leaves no message for keep their own text.
func failureMessage(err error, m workflow.Message) string {
	if errors.Is(err, model.ErrFormClosed) || errors.Is(err, model.ErrNotFound) ||
		errors.Is(err, model.ErrScreenNotLoaded) || m.Level == workflow.LevelSuccess {
		return ""
	}
	return m.Text
}

// errorResponse classifies err for the front API.
func errorResponse(err error) (int, model.ErrorResponse) {
	var (
		vErr  *model.ValidationError
		dErr  *model.DomainError
		cdErr *model.RecoveryCooldownError
		aErr  *model.AuthError
	)

	switch model.KindOf(err) {
	case model.KindValidation:
		errors.As(err, &vErr)
		return http.StatusBadRequest, model.ErrorResponse{
			Error:   model.ErrCodeValidation,
			Message: "validation failed",
			Fields:  vErr.Fields,
		}
	case model.KindDomain:
		if errors.As(err, &cdErr) {
			return http.StatusConflict, model.ErrorResponse{Error: model.ErrCodeRecoveryCooldown, Message: cdErr.Error()}
		}
		errors.As(err, &dErr)
		status := http.StatusConflict
		if dErr.Code == model.ErrCodeNotFound {
			status = http.StatusNotFound
		}
		return status, model.ErrorResponse{Error: dErr.Code, Message: dErr.Message}
	case model.KindAuth:
		errors.As(err, &aErr)
		return http.StatusUnauthorized, model.ErrorResponse{Error: aErr.Code, Message: aErr.Message}
	case model.KindNetwork:
		return http.StatusBadGateway, model.ErrorResponse{Error: model.ErrCodeRemote, Message: "remote store request failed"}
	default:
		return http.StatusInternalServerError, model.ErrorResponse{Error: model.ErrCodeInternalError, Message: "internal server error"}
	}
}

// decodeJSON reads the request body into dst. A body that is not JSON is
// reported as a validation failure of the whole body.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return model.NewValidationError("body", "Invalid request format")
	}
	return nil
}
