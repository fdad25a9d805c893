// Package restapi talks JSON to the remote record store.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"resto-ledger/internal/metrics"
	"resto-ledger/internal/model"

	"github.com/rs/zerolog"
)

// Options tunes the underlying HTTP client.
type Options struct {
	// Timeout bounds a whole request. Zero means no client-side timeout.
	Timeout time.Duration

	// Transport defaults to http.DefaultTransport.
	Transport http.RoundTripper
}

// Client sends JSON requests to resource collections under a base URL.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  zerolog.Logger
}

// New creates a client for the store at baseURL.
func New(baseURL string, opts Options, logger zerolog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid remote base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid remote base URL %q: scheme and host are required", baseURL)
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &Client{
		baseURL: u,
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		logger: logger.With().Str("component", "restapi").Logger(),
	}, nil
}

// List fetches resource filtered by query into out.
func (c *Client) List(ctx context.Context, resource string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, resource, "", query, nil, out)
}

// Get fetches one record of resource into out.
func (c *Client) Get(ctx context.Context, resource, id string, out any) error {
	return c.do(ctx, http.MethodGet, resource, id, nil, nil, out)
}

// Post creates a record and decodes the stored record into out.
func (c *Client) Post(ctx context.Context, resource string, body, out any) error {
	return c.do(ctx, http.MethodPost, resource, "", nil, body, out)
}

// Put replaces the record id and decodes the stored record into out.
func (c *Client) Put(ctx context.Context, resource, id string, body, out any) error {
	return c.do(ctx, http.MethodPut, resource, id, nil, body, out)
}

// Delete removes the record id.
func (c *Client) Delete(ctx context.Context, resource, id string) error {
	return c.do(ctx, http.MethodDelete, resource, id, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, resource, id string, query url.Values, body, out any) error {
	op := method + " " + resource
	target := c.endpoint(resource, id, query)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s body: %w", resource, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.RemoteRequestDuration.WithLabelValues(resource, method).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RemoteRequestsTotal.WithLabelValues(resource, method, "error").Inc()
		c.logger.Error().Err(err).Str("method", method).Str("url", target).Msg("remote request failed")
		return &model.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	metrics.RemoteRequestsTotal.WithLabelValues(resource, method, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode >= http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.logger.Warn().
			Str("method", method).
			Str("url", target).
			Int("status", resp.StatusCode).
			Msg("remote store rejected request")

		netErr := &model.NetworkError{Op: op, Status: resp.StatusCode}
		if resp.StatusCode == http.StatusUnauthorized {
			netErr.Err = model.ErrSessionExpired
		}
		return netErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		c.logger.Error().Err(err).Str("method", method).Str("url", target).Msg("failed to decode remote response")
		return &model.NetworkError{Op: op, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	c.logger.Debug().
		Str("method", method).
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("remote request completed")

	return nil
}

// endpoint joins the base URL, the collection, an optional escaped id and
// the encoded query.
func (c *Client) endpoint(resource, id string, query url.Values) string {
	u := *c.baseURL
	u.Path = u.Path + "/" + resource
	if id != "" {
		u.Path += "/" + id
		u.RawPath = c.baseURL.EscapedPath() + "/" + resource + "/" + url.PathEscape(id)
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}
