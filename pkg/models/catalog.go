// Package models maintains the catalog of downloadable speech-recognition
// model files and manages their local copies.
package models

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Model describes one downloadable model file.
type Model struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Filename string `yaml:"filename"`
	URL      string `yaml:"url"`
	Size     int64  `yaml:"size_bytes"`
}

// builtin lists the ggml Whisper models the tool knows out of the box.
// Sizes are approximate and only used for progress reporting.
var builtin = []Model{
	{
		ID:       "whisper-tiny-q5",
		Name:     "Tiny Q5",
		Filename: "ggml-tiny-q5_1.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-tiny-q5_1.bin",
		Size:     32 * 1024 * 1024,
	},
	{
		ID:       "whisper-tiny",
		Name:     "Tiny",
		Filename: "ggml-tiny.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-tiny.bin",
		Size:     75 * 1024 * 1024,
	},
	{
		ID:       "whisper-base-q5",
		Name:     "Base Q5",
		Filename: "ggml-base-q5_1.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-base-q5_1.bin",
		Size:     60 * 1024 * 1024,
	},
	{
		ID:       "whisper-base",
		Name:     "Base",
		Filename: "ggml-base.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-base.bin",
		Size:     142 * 1024 * 1024,
	},
	{
		ID:       "whisper-small-q5",
		Name:     "Small Q5",
		Filename: "ggml-small-q5_1.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-small-q5_1.bin",
		Size:     190 * 1024 * 1024,
	},
	{
		ID:       "whisper-small",
		Name:     "Small",
		Filename: "ggml-small.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-small.bin",
		Size:     466 * 1024 * 1024,
	},
	{
		ID:       "whisper-turbo",
		Name:     "Large v3 Turbo Q5",
		Filename: "ggml-large-v3-turbo-q5_0.bin",
		URL:      "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-large-v3-turbo-q5_0.bin",
		Size:     574 * 1024 * 1024,
	},
}

// DefaultModelID is the model used when the caller names none.
func DefaultModelID() string { return "whisper-tiny-q5" }

// Catalog is an immutable, id-indexed set of models.
type Catalog struct {
	models []Model
	index  map[string]Model
}

// Builtin returns the catalog of built-in models.
func Builtin() *Catalog {
	return newCatalog(builtin)
}

// Load returns the built-in catalog merged with the overlay file at path.
// Overlay entries with a known id replace the built-in definition. An empty
// path yields the built-ins unchanged.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Builtin(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var overlay struct {
		Models []Model `yaml:"models"`
	}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("decode catalog file: %w", err)
	}

	merged := append([]Model(nil), builtin...)
	seen := make(map[string]int, len(merged))
	for i, m := range merged {
		seen[m.ID] = i
	}

	for i, m := range overlay.Models {
		m = sanitizeModel(m)
		if err := validateModel(m); err != nil {
			return nil, fmt.Errorf("catalog model[%d]: %w", i, err)
		}
		if at, exists := seen[m.ID]; exists {
			merged[at] = m
			continue
		}
		seen[m.ID] = len(merged)
		merged = append(merged, m)
	}

	return newCatalog(merged), nil
}

func newCatalog(models []Model) *Catalog {
	c := &Catalog{
		models: append([]Model(nil), models...),
		index:  make(map[string]Model, len(models)),
	}
	for _, m := range c.models {
		c.index[m.ID] = m
	}
	return c
}

// All returns the catalog's models in declaration order.
func (c *Catalog) All() []Model {
	return append([]Model(nil), c.models...)
}

// Get returns the model with the given id.
func (c *Catalog) Get(id string) (Model, bool) {
	m, ok := c.index[strings.TrimSpace(id)]
	return m, ok
}

func sanitizeModel(m Model) Model {
	m.ID = strings.TrimSpace(m.ID)
	m.Name = strings.TrimSpace(m.Name)
	m.Filename = strings.TrimSpace(m.Filename)
	m.URL = strings.TrimSpace(m.URL)
	return m
}

func validateModel(m Model) error {
	if m.ID == "" {
		return fmt.Errorf("missing id")
	}
	if m.Filename == "" {
		return fmt.Errorf("model %q missing filename", m.ID)
	}
	if m.URL == "" {
		return fmt.Errorf("model %q missing url", m.ID)
	}
	return nil
}
