// Package config loads mockd configuration from a YAML file and MOCKT_
// environment variables, environment taking precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/polyglot-ai/mocktransport/internal/domain"
	"github.com/polyglot-ai/mocktransport/internal/scenario"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Scenario ScenarioConfig `koanf:"scenario"`
	Internal InternalConfig `koanf:"internal"`
	Storage  StorageConfig  `koanf:"storage"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

// ScenarioConfig selects and parameterizes a scenario preset.
type ScenarioConfig struct {
	// Preset is one of: success, error, slow, reject-external.
	Preset string `koanf:"preset" json:"preset"`

	// Providers is the admitted provider set for success/error/slow.
	Providers []string `koanf:"providers" json:"providers"`

	// ErrorClass parameterizes the error preset.
	ErrorClass string `koanf:"error_class" json:"error_class"`

	// DelayMs parameterizes the slow preset.
	DelayMs int `koanf:"delay_ms" json:"delay_ms"`

	// Content maps provider tags to assistant-text overrides.
	Content map[string]string `koanf:"content" json:"content"`
}

// InternalConfig extends the analyzer's internal-host allow-list.
type InternalConfig struct {
	Hosts    []string `koanf:"hosts"`
	Suffixes []string `koanf:"suffixes"`
}

type StorageConfig struct {
	// Path is the SQLite file for the traffic audit log; empty disables
	// persistence.
	Path string `koanf:"path"`
}

// Load reads configuration from path (skipped when the file does not
// exist) and then from MOCKT_ environment variables.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	if err := k.Load(env.Provider("MOCKT_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "MOCKT_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	// Default values
	if !k.Exists("server.port") {
		k.Set("server.port", 8001)
	}
	if !k.Exists("scenario.preset") {
		k.Set("scenario.preset", "success")
	}
	if !k.Exists("scenario.providers") {
		k.Set("scenario.providers", []string{"openai", "google", "openrouter"})
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Watch re-reads the file on change and invokes onChange with the freshly
// loaded configuration. Load errors after a change are reported through
// onErr.
func Watch(path string, onChange func(*Config), onErr func(error)) error {
	f := file.Provider(path)
	return f.Watch(func(event any, err error) {
		if err != nil {
			onErr(err)
			return
		}
		cfg, err := Load(path)
		if err != nil {
			onErr(err)
			return
		}
		onChange(cfg)
	})
}

// BuildProviders parses the configured provider tags.
func (c ScenarioConfig) BuildProviders() ([]domain.Provider, error) {
	providers := make([]domain.Provider, 0, len(c.Providers))
	for _, raw := range c.Providers {
		switch p := domain.Provider(strings.ToLower(raw)); p {
		case domain.ProviderOpenAI, domain.ProviderGoogle, domain.ProviderOpenRouter:
			providers = append(providers, p)
		default:
			return nil, fmt.Errorf("unknown provider %q", raw)
		}
	}
	return providers, nil
}

// Build constructs the scenario described by the preset.
func (c ScenarioConfig) Build() (scenario.Scenario, error) {
	providers, err := c.BuildProviders()
	if err != nil {
		return nil, err
	}

	overrides := make(map[domain.Provider]string, len(c.Content))
	for raw, text := range c.Content {
		overrides[domain.Provider(strings.ToLower(raw))] = text
	}

	switch c.Preset {
	case "", "success":
		return scenario.SuccessForProviders(providers, overrides), nil
	case "error":
		class := domain.ErrorClass(c.ErrorClass)
		if class == "" {
			class = domain.ErrorClassServer
		}
		if !class.Valid() {
			return nil, fmt.Errorf("unknown error class %q", c.ErrorClass)
		}
		return scenario.ErrorForProviders(class, providers), nil
	case "slow":
		return scenario.SlowResponse(time.Duration(c.DelayMs)*time.Millisecond, providers, overrides), nil
	case "reject-external":
		return scenario.RejectAllExternal(), nil
	default:
		return nil, fmt.Errorf("unknown scenario preset %q", c.Preset)
	}
}
