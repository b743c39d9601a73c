package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polyglot-ai/mocktransport/internal/config"
	"github.com/polyglot-ai/mocktransport/internal/domain"
	"github.com/polyglot-ai/mocktransport/internal/extract"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8001, cfg.Server.Port)
	assert.Equal(t, "success", cfg.Scenario.Preset)
	assert.Equal(t, []string{"openai", "google", "openrouter"}, cfg.Scenario.Providers)
	assert.Empty(t, cfg.Storage.Path)
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
scenario:
  preset: error
  providers: [openai]
  error_class: rate_limit
internal:
  hosts: [gateway.test]
  suffixes: [".svc"]
storage:
  path: traffic.db
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "error", cfg.Scenario.Preset)
	assert.Equal(t, []string{"openai"}, cfg.Scenario.Providers)
	assert.Equal(t, "rate_limit", cfg.Scenario.ErrorClass)
	assert.Equal(t, []string{"gateway.test"}, cfg.Internal.Hosts)
	assert.Equal(t, []string{".svc"}, cfg.Internal.Suffixes)
	assert.Equal(t, "traffic.db", cfg.Storage.Path)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
scenario:
  preset: success
`)
	t.Setenv("MOCKT_SERVER_PORT", "7070")
	t.Setenv("MOCKT_SCENARIO_PRESET", "slow")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "slow", cfg.Scenario.Preset)
}

func TestBuildProviders(t *testing.T) {
	t.Run("known tags parse case-insensitively", func(t *testing.T) {
		c := config.ScenarioConfig{Providers: []string{"OpenAI", "google"}}
		providers, err := c.BuildProviders()
		require.NoError(t, err)
		assert.Equal(t, []domain.Provider{domain.ProviderOpenAI, domain.ProviderGoogle}, providers)
	})

	t.Run("unknown tag fails", func(t *testing.T) {
		c := config.ScenarioConfig{Providers: []string{"anthropic"}}
		_, err := c.BuildProviders()
		assert.Error(t, err)
	})
}

func externalOpenAI(t *testing.T) domain.RequestMetadata {
	t.Helper()
	return domain.RequestMetadata{
		Provider:    domain.ProviderOpenAI,
		Endpoint:    "/chat/completions",
		ExternalAPI: true,
	}
}

func TestBuildPresets(t *testing.T) {
	rc, err := extract.FromURL("https://api.openai.com/v1/chat/completions", &extract.RequestInit{Method: "POST"})
	require.NoError(t, err)
	md := externalOpenAI(t)

	t.Run("empty preset means success", func(t *testing.T) {
		s, err := config.ScenarioConfig{Providers: []string{"openai"}}.Build()
		require.NoError(t, err)
		assert.True(t, s.RequestExpected(rc, md))
	})

	t.Run("error preset defaults to server class", func(t *testing.T) {
		s, err := config.ScenarioConfig{Preset: "error", Providers: []string{"openai"}}.Build()
		require.NoError(t, err)
		resp, err := s.GenerateResponse(rc, md)
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)
	})

	t.Run("error preset rejects unknown class", func(t *testing.T) {
		_, err := config.ScenarioConfig{Preset: "error", ErrorClass: "timeout", Providers: []string{"openai"}}.Build()
		assert.Error(t, err)
	})

	t.Run("slow preset converts delay", func(t *testing.T) {
		s, err := config.ScenarioConfig{Preset: "slow", DelayMs: 250, Providers: []string{"openai"}}.Build()
		require.NoError(t, err)
		resp, err := s.GenerateResponse(rc, md)
		require.NoError(t, err)
		assert.Equal(t, 250*time.Millisecond, resp.Delay)
	})

	t.Run("reject-external admits nothing", func(t *testing.T) {
		s, err := config.ScenarioConfig{Preset: "reject-external"}.Build()
		require.NoError(t, err)
		assert.False(t, s.RequestExpected(rc, md))
	})

	t.Run("unknown preset fails", func(t *testing.T) {
		_, err := config.ScenarioConfig{Preset: "chaos"}.Build()
		assert.Error(t, err)
	})
}
