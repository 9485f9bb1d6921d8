package instructions

// Config holds instruction storage parameters. When Path is empty the store
// is in-memory only and updates are lost on restart.
type Config struct {
	Path    string `json:"path,omitempty"`
	Default string `json:"default,omitempty"`
}

// DefaultConfig returns the default instruction storage configuration.
func DefaultConfig() Config {
	return Config{}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Path != "" {
		c.Path = source.Path
	}
	if source.Default != "" {
		c.Default = source.Default
	}
}

// New creates a Store from configuration.
func New(cfg *Config) (Store, error) {
	if cfg.Path != "" {
		return NewFileStore(cfg.Path, cfg.Default), nil
	}
	return NewMemoryStore(cfg.Default), nil
}
