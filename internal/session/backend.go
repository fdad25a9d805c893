package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// Backend persists session values by key.
type Backend interface {
	// Get returns the value stored under key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// fileBackend stores every key in one JSON object on local disk.
type fileBackend struct {
	mu     sync.Mutex
	path   string
	logger zerolog.Logger
}

// NewFileBackend creates a backend persisting to the JSON file at path.
func NewFileBackend(path string, logger zerolog.Logger) Backend {
	return &fileBackend{
		path:   path,
		logger: logger.With().Str("component", "session-file-backend").Logger(),
	}
}

func (b *fileBackend) Get(ctx context.Context, key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	values, err := b.read()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (b *fileBackend) Set(ctx context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	values, err := b.read()
	if err != nil {
		return err
	}
	values[key] = value
	return b.write(values)
}

func (b *fileBackend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	values, err := b.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return b.write(values)
}

// read loads the file; a missing file is an empty store.
func (b *fileBackend) read() (map[string]string, error) {
	values := make(map[string]string)

	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return values, nil
		}
		b.logger.Error().Err(err).Str("file", b.path).Msg("failed to read session file")
		return nil, fmt.Errorf("failed to read session file %s: %w", b.path, err)
	}
	if len(data) == 0 {
		return values, nil
	}

	if err := json.Unmarshal(data, &values); err != nil {
		b.logger.Warn().Err(err).Str("file", b.path).Msg("session file is corrupt, starting empty")
		return make(map[string]string), nil
	}
	return values, nil
}

// write replaces the file atomically through a temporary sibling.
func (b *fileBackend) write(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session file: %w", err)
	}

	if dir := filepath.Dir(b.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create session directory: %w", err)
		}
	}

	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		b.logger.Error().Err(err).Str("file", tmp).Msg("failed to write session file")
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, b.path); err != nil {
		b.logger.Error().Err(err).Str("file", b.path).Msg("failed to replace session file")
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// fallbackBackend reads from a primary backend and falls back to a local one
// when the primary is unavailable. Writes are mirrored to the local backend.
type fallbackBackend struct {
	primary Backend
	local   Backend
	logger  zerolog.Logger
}

// NewFallbackBackend creates a backend that prefers primary and keeps local
// as a mirror. If primary is nil, only local is used.
func NewFallbackBackend(primary, local Backend, logger zerolog.Logger) Backend {
	return &fallbackBackend{
		primary: primary,
		local:   local,
		logger:  logger.With().Str("component", "session-fallback-backend").Logger(),
	}
}

func (b *fallbackBackend) Get(ctx context.Context, key string) (string, bool, error) {
	if b.primary != nil {
		v, ok, err := b.primary.Get(ctx, key)
		if err == nil {
			return v, ok, nil
		}
		b.logger.Warn().Err(err).Str("key", key).Msg("primary session backend failed, reading local copy")
	}
	return b.local.Get(ctx, key)
}

func (b *fallbackBackend) Set(ctx context.Context, key, value string) error {
	var primaryErr error
	if b.primary != nil {
		primaryErr = b.primary.Set(ctx, key, value)
		if primaryErr != nil {
			b.logger.Warn().Err(primaryErr).Str("key", key).Msg("primary session backend failed, writing local copy only")
		}
	}

	if err := b.local.Set(ctx, key, value); err != nil {
		if b.primary == nil || primaryErr != nil {
			return errors.Join(primaryErr, err)
		}
		b.logger.Warn().Err(err).Str("key", key).Msg("failed to mirror session value locally")
	}
	return nil
}

func (b *fallbackBackend) Delete(ctx context.Context, key string) error {
	var primaryErr error
	if b.primary != nil {
		primaryErr = b.primary.Delete(ctx, key)
		if primaryErr != nil {
			b.logger.Warn().Err(primaryErr).Str("key", key).Msg("failed to delete session value from primary backend")
		}
	}

	if err := b.local.Delete(ctx, key); err != nil {
		if b.primary == nil || primaryErr != nil {
			return errors.Join(primaryErr, err)
		}
		b.logger.Warn().Err(err).Str("key", key).Msg("failed to delete local session copy")
	}
	return nil
}
