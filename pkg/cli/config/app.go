package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
	"github.com/pelletier/go-toml/v2"
)

// AppConfig is the TOML application configuration. It carries the
// tunables that change per deployment but not per process restart:
// completion defaults, query service wiring and per-task-kind
// instructions injected into prompts.
type AppConfig struct {
	LLM          LLMConfig             `toml:"llm"`
	QueryService QueryServiceConfig    `toml:"query_service"`
	Tasks        map[string]TaskConfig `toml:"tasks"`
}

type LLMConfig struct {
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float64 `toml:"temperature"`
}

type QueryServiceConfig struct {
	URL string `toml:"url"`
}

type TaskConfig struct {
	Instructions string `toml:"instructions"`
}

// Validate checks the configuration for consistency.
func (c *AppConfig) Validate() error {
	for key := range c.Tasks {
		if _, err := types.ParseTaskKind(key); err != nil {
			return goerr.Wrap(err, "invalid task kind in [tasks] section", goerr.V("key", key))
		}
	}
	if c.LLM.MaxTokens < 0 {
		return goerr.New("llm.max_tokens must not be negative", goerr.V("max_tokens", c.LLM.MaxTokens))
	}
	return nil
}

// Instructions returns the per-kind prompt instructions map.
func (c *AppConfig) Instructions() map[types.TaskKind]string {
	out := make(map[types.TaskKind]string, len(c.Tasks))
	for key, task := range c.Tasks {
		if task.Instructions == "" {
			continue
		}
		kind, err := types.ParseTaskKind(key)
		if err != nil {
			continue // rejected by Validate already
		}
		out[kind] = task.Instructions
	}
	return out
}

// LoadAppConfiguration reads and validates the TOML application
// configuration from the given path. An empty path yields defaults.
func LoadAppConfiguration(path string) (*AppConfig, error) {
	cfg := &AppConfig{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from CLI flag
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read app configuration", goerr.V("path", path))
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse app configuration", goerr.V("path", path))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
