package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailored-agentic-units/relay/instructions"
	"github.com/tailored-agentic-units/relay/provider/openai"
	"github.com/tailored-agentic-units/relay/server"
)

const defaultMaxRounds = 10

// Config holds initialization parameters for all relayd subsystems.
// Each subsystem section delegates to that subsystem's config-driven
// constructor.
type Config struct {
	Server       server.Config       `json:"server"`
	Provider     openai.Config       `json:"provider"`
	Instructions instructions.Config `json:"instructions"`
	MaxRounds    int                 `json:"max_rounds,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Server:       server.DefaultConfig(),
		Provider:     openai.DefaultConfig(),
		Instructions: instructions.DefaultConfig(),
		MaxRounds:    defaultMaxRounds,
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Server.Merge(&source.Server)
	c.Provider.Merge(&source.Provider)
	c.Instructions.Merge(&source.Instructions)

	if source.MaxRounds > 0 {
		c.MaxRounds = source.MaxRounds
	}
}

// LoadConfig reads a JSON config file, merges it with defaults, and returns
// the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
