package models

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltinCatalogHasDefault(t *testing.T) {
	cat := Builtin()

	mod, ok := cat.Get(DefaultModelID())
	if !ok {
		t.Fatalf("default model %q missing from catalog", DefaultModelID())
	}
	if mod.Filename == "" || mod.URL == "" {
		t.Fatalf("default model incomplete: %+v", mod)
	}
	if len(cat.All()) == 0 {
		t.Fatalf("empty builtin catalog")
	}
}

func TestLoadMergesOverlay(t *testing.T) {
	overlay := `
models:
  - id: whisper-tiny-q5
    name: Tiny Q5 (mirror)
    filename: ggml-tiny-q5_1.bin
    url: https://mirror.example.com/ggml-tiny-q5_1.bin
    size_bytes: 33554432
  - id: custom-model
    name: Custom
    filename: custom.bin
    url: https://example.com/custom.bin
`
	path := filepath.Join(t.TempDir(), "models.yaml")
	if err := os.WriteFile(path, []byte(overlay), 0o600); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	mod, ok := cat.Get("whisper-tiny-q5")
	if !ok {
		t.Fatalf("overridden model missing")
	}
	if mod.URL != "https://mirror.example.com/ggml-tiny-q5_1.bin" {
		t.Fatalf("overlay did not win: %+v", mod)
	}

	if _, ok := cat.Get("custom-model"); !ok {
		t.Fatalf("overlay-only model missing")
	}
	if len(cat.All()) != len(Builtin().All())+1 {
		t.Fatalf("merged catalog has %d models", len(cat.All()))
	}
}

func TestLoadRejectsIncompleteModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	if err := os.WriteFile(path, []byte("models:\n  - id: broken\n"), 0o600); err != nil {
		t.Fatalf("write overlay: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadEmptyPathIsBuiltin(t *testing.T) {
	cat, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cat.All()) != len(Builtin().All()) {
		t.Fatalf("expected builtin catalog")
	}
}
