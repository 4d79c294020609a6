// Package env resolves secrets from process environment variables. The store
// is read-only; Put and Delete always fail.
package env

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bnema/tablemind/internal/domain"
	"github.com/bnema/tablemind/internal/ports"
)

// Store maps a secret key like "tablemind/api_key" to the environment
// variable TM_API_KEY: the leading "tablemind/" segment becomes the TM_
// prefix and every remaining non-alphanumeric rune becomes an underscore.
type Store struct{}

var _ ports.SecretStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name, err := VarName(key)
	if err != nil {
		return "", err
	}

	value, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: %q (env %s)", domain.ErrSecretNotFound, key, name)
	}

	return strings.TrimSpace(value), nil
}

func (s *Store) Put(_ context.Context, _ string, _ string) error {
	return errors.New("env secret store is read-only")
}

func (s *Store) Delete(_ context.Context, _ string) error {
	return errors.New("env secret store is read-only")
}

// VarName returns the environment variable consulted for key.
func VarName(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "", errors.New("secret key is empty")
	}

	rest := strings.TrimPrefix(trimmed, "tablemind/")
	var b strings.Builder
	b.WriteString("TM_")
	for _, r := range strings.ToUpper(rest) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	return b.String(), nil
}
