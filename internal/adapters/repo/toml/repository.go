// Package toml persists the table roster (the configured AI seats) as a TOML
// file under the user's config directory. Runtime session and cache state is
// never written here; only seat configuration is.
package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/tablemind/internal/domain"
	"github.com/bnema/tablemind/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	configName       = "config"
	configType       = "toml"
	rosterPathKey    = "roster.path"
	rosterFileMode   = 0o644
	rosterDirMode    = 0o755
	rosterConfigDir  = ".tablemind"
	rosterConfigFile = "table.toml"
	tempFilePattern  = ".table-*.toml.tmp"
)

type Repository struct {
	rosterPath string
	mu         *sync.RWMutex
}

// Same-process writers to the same roster path share one lock.
var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.RosterRepository = (*Repository)(nil)

func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	defaultPath := filepath.Join(homeDir, rosterConfigDir, rosterConfigFile)

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, rosterConfigDir))
	cfg.SetDefault(rosterPathKey, defaultPath)

	err = cfg.ReadInConfig()
	if err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	rosterPath := cfg.GetString(rosterPathKey)
	if rosterPath == "" {
		return nil, errors.New("roster path is empty")
	}
	rosterPath, err = normalizeRosterPath(rosterPath)
	if err != nil {
		return nil, err
	}

	return &Repository{rosterPath: rosterPath, mu: lockForPath(rosterPath)}, nil
}

func (r *Repository) Load(ctx context.Context) (domain.Roster, error) {
	if err := ctx.Err(); err != nil {
		return domain.Roster{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.rosterPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.Roster{}, fmt.Errorf("%w: %s", domain.ErrRosterNotFound, r.rosterPath)
		}
		return domain.Roster{}, fmt.Errorf("read roster file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return domain.Roster{}, fmt.Errorf("decode roster file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return domain.Roster{}, err
	}

	roster := fromSchema(file)
	roster.NormalizeSeats()
	if err := roster.Validate(); err != nil {
		return domain.Roster{}, fmt.Errorf("validate roster: %w", err)
	}

	return roster, nil
}

func (r *Repository) Save(ctx context.Context, roster domain.Roster) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	roster.NormalizeSeats()
	if err := roster.Validate(); err != nil {
		return fmt.Errorf("validate roster: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.writeSchema(toSchema(roster))
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.rosterPath), rosterDirMode); err != nil {
		return fmt.Errorf("create roster directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode roster file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.rosterPath), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp roster file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp roster file: %w", err)
	}
	if err := tempFile.Chmod(rosterFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp roster file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp roster file: %w", err)
	}

	if err := os.Rename(tempName, r.rosterPath); err != nil {
		return fmt.Errorf("replace roster file: %w", err)
	}
	cleanup = false

	return nil
}

func normalizeRosterPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve roster path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}
