// Package chain composes secret stores so reads consult a primary store and
// fall back to a secondary, while writes and deletes go to a single writable
// store.
package chain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnema/tablemind/internal/adapters/secrets/env"
	"github.com/bnema/tablemind/internal/adapters/secrets/file"
	"github.com/bnema/tablemind/internal/domain"
	"github.com/bnema/tablemind/internal/ports"
)

type Store struct {
	primary  ports.SecretStore
	fallback ports.SecretStore
	writable ports.SecretStore
}

var _ ports.SecretStore = (*Store)(nil)

// NewStore reads from primary first, then fallback. Writes go to writable,
// which is normally one of the two read stores.
func NewStore(primary, fallback, writable ports.SecretStore) (*Store, error) {
	if primary == nil || fallback == nil {
		return nil, errors.New("chain store requires primary and fallback stores")
	}
	if writable == nil {
		return nil, errors.New("chain store requires a writable store")
	}
	return &Store{primary: primary, fallback: fallback, writable: writable}, nil
}

// NewEnvFirstWithFileFallback builds the default chain: environment variables
// first, then plain files under fileRoot. Writes land in the file store.
func NewEnvFirstWithFileFallback(fileRoot string) (*Store, error) {
	files := file.NewStore(fileRoot)
	return NewStore(env.NewStore(), files, files)
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, primaryErr := s.primary.Get(ctx, key)
	if primaryErr == nil {
		return value, nil
	}
	if shouldSkipFallback(primaryErr) {
		return "", primaryErr
	}

	value, fallbackErr := s.fallback.Get(ctx, key)
	if fallbackErr == nil {
		return value, nil
	}

	if errors.Is(primaryErr, domain.ErrSecretNotFound) && errors.Is(fallbackErr, domain.ErrSecretNotFound) {
		return "", fmt.Errorf("%w: %q", domain.ErrSecretNotFound, key)
	}

	return "", errors.Join(primaryErr, fallbackErr)
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	return s.writable.Put(ctx, key, value)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.writable.Delete(ctx, key)
}

// shouldSkipFallback reports whether the primary failure makes trying the
// fallback pointless.
func shouldSkipFallback(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
