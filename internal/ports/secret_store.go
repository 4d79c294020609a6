package ports

import "context"

// SecretStore holds API credentials outside the roster file. Get returns an
// error wrapping domain.ErrSecretNotFound when the key has no value.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
