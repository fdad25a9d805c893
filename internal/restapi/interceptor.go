package restapi

import (
	"context"
	"net/http"

	"resto-ledger/internal/metrics"

	"github.com/rs/zerolog"
)

// SessionClearer drops the signed-in user.
type SessionClearer interface {
	Clear(ctx context.Context) error
}

// Interceptor watches every response from the store for authorization
// failures. A 401 ends the session and calls the unauthorized hook; a 403 is
// only logged. Either way the response is handed back unchanged.
type Interceptor struct {
	next           http.RoundTripper
	session        SessionClearer
	onUnauthorized func()
	logger         zerolog.Logger
}

// NewInterceptor wraps next. onUnauthorized may be nil.
func NewInterceptor(next http.RoundTripper, session SessionClearer, onUnauthorized func(), logger zerolog.Logger) *Interceptor {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Interceptor{
		next:           next,
		session:        session,
		onUnauthorized: onUnauthorized,
		logger:         logger.With().Str("component", "auth-interceptor").Logger(),
	}
}

// RoundTrip implements http.RoundTripper.
func (i *Interceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := i.next.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		i.logger.Warn().
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Msg("remote store reported an expired session, signing out")

		metrics.SessionEvents.WithLabelValues("expired").Inc()
		if i.session != nil {
			// Detached from the request so a cancelled call still clears the session.
			if clearErr := i.session.Clear(context.WithoutCancel(req.Context())); clearErr != nil {
				i.logger.Error().Err(clearErr).Msg("failed to clear expired session")
			}
		}
		if i.onUnauthorized != nil {
			i.onUnauthorized()
		}
	case http.StatusForbidden:
		i.logger.Warn().
			Str("method", req.Method).
			Str("url", req.URL.String()).
			Msg("access denied by remote store")
	}

	return resp, nil
}
