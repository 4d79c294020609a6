package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/bnema/tablemind/internal/adapters/completion/openai"
	tableadapter "github.com/bnema/tablemind/internal/adapters/render/table"
	tomlrepo "github.com/bnema/tablemind/internal/adapters/repo/toml"
	chainstore "github.com/bnema/tablemind/internal/adapters/secrets/chain"
	"github.com/bnema/tablemind/internal/application"
	"github.com/bnema/tablemind/internal/cache"
	"github.com/bnema/tablemind/internal/domain"
	"github.com/bnema/tablemind/internal/ports"
	"github.com/spf13/viper"
)

const apiKeySecret = "tablemind/api_key"

type app struct {
	sessions      *application.SessionService
	router        *application.DecisionRouter
	tiers         *cache.MultiTier
	rosters       ports.RosterRepository
	secretStore   ports.SecretStore
	tableRenderer func(tableadapter.Report, tableadapter.RenderOptions) (string, error)
	now           func() time.Time
}

func wireApp() (*app, error) {
	rosters, err := tomlrepo.NewRepository(viper.New())
	if err != nil {
		return nil, fmt.Errorf("wire roster repository: %w", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	secretStore, err := chainstore.NewEnvFirstWithFileFallback(filepath.Join(homeDir, ".tablemind", "secrets"))
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	apiKey, err := secretStore.Get(context.Background(), apiKeySecret)
	if err != nil && !errors.Is(err, domain.ErrSecretNotFound) {
		return nil, fmt.Errorf("load api key: %w", err)
	}

	client := openai.NewClient(openai.Config{
		BaseURL:    envOrDefault("TM_API_BASE", "https://api.openai.com/v1"),
		APIKey:     apiKey,
		HTTPClient: http.DefaultClient,
	})

	clock := ports.SystemClock{}
	tiers := cache.NewMultiTier(clock)
	sessions := application.NewSessionService(client, application.Config{
		Model: os.Getenv("TM_MODEL"),
	}, clock)

	return &app{
		sessions:      sessions,
		router:        application.NewDecisionRouter(sessions, tiers),
		tiers:         tiers,
		rosters:       rosters,
		secretStore:   secretStore,
		tableRenderer: tableadapter.Render,
		now:           time.Now,
	}, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
