package models

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/voxfetch/voxfetch/internal/manifest"
	"github.com/voxfetch/voxfetch/pkg/webclient"
)

// Progress reports download advancement. Total comes from the catalog's
// approximate size when the server does not say better.
type Progress struct {
	ModelID    string
	Downloaded int64
	Total      int64
}

// Manager downloads catalog models into a local directory and keeps the
// manifest in sync.
type Manager struct {
	dir      string
	client   *webclient.Client
	manifest manifest.Store
	catalog  *Catalog
}

// NewManager builds a manager. An empty dir falls back to DefaultDir; a nil
// client, store or catalog gets a default.
func NewManager(dir string, client *webclient.Client, store manifest.Store, catalog *Catalog) (*Manager, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if client == nil {
		c, err := webclient.New()
		if err != nil {
			return nil, fmt.Errorf("create download client: %w", err)
		}
		client = c
	}
	if store == nil {
		s, err := manifest.NewStore("none", "")
		if err != nil {
			return nil, err
		}
		store = s
	}
	if catalog == nil {
		catalog = Builtin()
	}
	return &Manager{dir: dir, client: client, manifest: store, catalog: catalog}, nil
}

// DefaultDir is the per-user model directory.
func DefaultDir() string {
	if cache, err := os.UserCacheDir(); err == nil {
		return filepath.Join(cache, "voxfetch", "models")
	}
	return filepath.Join(".", "models")
}

// Dir returns the directory models are downloaded into.
func (m *Manager) Dir() string { return m.dir }

// Path returns the local path a model lives at once downloaded.
func (m *Manager) Path(mod Model) string {
	return filepath.Join(m.dir, mod.Filename)
}

// IsDownloaded reports whether the model's file exists locally.
func (m *Manager) IsDownloaded(mod Model) bool {
	info, err := os.Stat(m.Path(mod))
	return err == nil && !info.IsDir() && info.Size() > 0
}

// Download fetches the model with the given id into the model directory and
// returns its local path. Already-present models are not re-fetched. The
// transfer streams to a temporary file that is renamed into place only on
// success, so a failed download never leaves a partial model behind.
func (m *Manager) Download(ctx context.Context, id string, progress func(Progress)) (string, error) {
	mod, ok := m.catalog.Get(id)
	if !ok {
		return "", fmt.Errorf("unknown model %q", id)
	}

	dest := m.Path(mod)
	if m.IsDownloaded(mod) {
		return dest, nil
	}

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("create model directory: %w", err)
	}

	tmp := dest + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	var sink io.Writer = f
	if progress != nil {
		sink = &countingWriter{
			inner: f,
			report: func(n int64) {
				progress(Progress{ModelID: mod.ID, Downloaded: n, Total: mod.Size})
			},
		}
	}

	status, err := m.client.FetchTo(ctx, mod.URL, sink, nil)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("download model %q: %w", mod.ID, err)
	}
	if status != http.StatusOK {
		os.Remove(tmp)
		return "", fmt.Errorf("download model %q: unexpected status %d", mod.ID, status)
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("finalize model %q: %w", mod.ID, err)
	}

	info, err := os.Stat(dest)
	if err != nil {
		return "", fmt.Errorf("stat downloaded model: %w", err)
	}
	if err := m.manifest.Record(manifest.Entry{
		ID:           mod.ID,
		Filename:     mod.Filename,
		Size:         info.Size(),
		DownloadedAt: time.Now().UTC(),
	}); err != nil {
		return "", fmt.Errorf("record download: %w", err)
	}

	return dest, nil
}

// Delete removes a model's local file and its manifest entry.
func (m *Manager) Delete(id string) error {
	mod, ok := m.catalog.Get(id)
	if !ok {
		return fmt.Errorf("unknown model %q", id)
	}
	if err := os.RemoveAll(m.Path(mod)); err != nil {
		return fmt.Errorf("delete model %q: %w", id, err)
	}
	return m.manifest.Remove(id)
}

// Downloaded lists manifest entries for completed downloads.
func (m *Manager) Downloaded() ([]manifest.Entry, error) {
	return m.manifest.List()
}

// DownloadModel fetches a catalog model by name using defaults for
// everything: built-in catalog, default directory, no manifest.
func DownloadModel(ctx context.Context, name string) (string, error) {
	client, err := webclient.New()
	if err != nil {
		return "", err
	}
	defer client.Close()

	mgr, err := NewManager("", client, nil, nil)
	if err != nil {
		return "", err
	}
	return mgr.Download(ctx, name, nil)
}

// countingWriter forwards writes and reports the running byte total.
type countingWriter struct {
	inner  io.Writer
	total  int64
	report func(int64)
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.inner.Write(p)
	c.total += int64(n)
	if n > 0 {
		c.report(c.total)
	}
	return n, err
}
