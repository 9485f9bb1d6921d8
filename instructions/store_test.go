package instructions_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tailored-agentic-units/relay/instructions"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := instructions.NewMemoryStore("be helpful")
	ctx := context.Background()

	text, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if text != "be helpful" {
		t.Errorf("got %q, want seed text", text)
	}

	if err := store.Save(ctx, "be helpful\nand concise"); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	text, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() after Save() failed: %v", err)
	}
	if text != "be helpful\nand concise" {
		t.Errorf("got %q, want updated text", text)
	}
}

func TestFileStore_FallbackBeforeFirstSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instructions.txt")
	store := instructions.NewFileStore(path, "default text")

	text, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if text != "default text" {
		t.Errorf("got %q, want fallback", text)
	}
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "instructions.txt")
	ctx := context.Background()

	first := instructions.NewFileStore(path, "")
	if err := first.Save(ctx, "persisted instructions"); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	second := instructions.NewFileStore(path, "")
	text, err := second.Load(ctx)
	if err != nil {
		t.Fatalf("Load() from second instance failed: %v", err)
	}
	if text != "persisted instructions" {
		t.Errorf("got %q, want persisted text", text)
	}
}

func TestNew_FromConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  instructions.Config
		want string
	}{
		{
			name: "memory store",
			cfg:  instructions.Config{Default: "in memory"},
			want: "in memory",
		},
		{
			name: "file store",
			cfg: instructions.Config{
				Path:    filepath.Join(t.TempDir(), "i.txt"),
				Default: "on disk",
			},
			want: "on disk",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := instructions.New(&tt.cfg)
			if err != nil {
				t.Fatalf("New() failed: %v", err)
			}
			text, err := store.Load(context.Background())
			if err != nil {
				t.Fatalf("Load() failed: %v", err)
			}
			if text != tt.want {
				t.Errorf("got %q, want %q", text, tt.want)
			}
		})
	}
}
