package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Addr == "" {
		t.Error("default server addr is empty")
	}
	if cfg.Provider.Model == "" {
		t.Error("default provider model is empty")
	}
	if cfg.MaxRounds != defaultMaxRounds {
		t.Errorf("max rounds = %d, want %d", cfg.MaxRounds, defaultMaxRounds)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relayd.json")
	data := `{
		"server": {"addr": ":9090"},
		"provider": {"model": "gpt-5", "base_url": "http://127.0.0.1:11434/v1"},
		"instructions": {"default": "You are a cat expert."},
		"max_rounds": 5
	}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("server addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.ReadHeaderTimeoutSeconds == 0 {
		t.Error("unset timeout did not keep its default")
	}
	if cfg.Provider.Model != "gpt-5" {
		t.Errorf("provider model = %q", cfg.Provider.Model)
	}
	if cfg.Provider.TimeoutSeconds == 0 || cfg.Provider.MaxRetries == 0 {
		t.Errorf("provider defaults lost: %+v", cfg.Provider)
	}
	if cfg.Instructions.Default != "You are a cat expert." {
		t.Errorf("instructions default = %q", cfg.Instructions.Default)
	}
	if cfg.MaxRounds != 5 {
		t.Errorf("max rounds = %d", cfg.MaxRounds)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("missing file did not fail")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("malformed file did not fail")
	}
}
