package manifest

import (
	"fmt"
	"strings"
	"time"
)

// Package manifest tracks which model files have been downloaded locally.

// Entry records one completed model download.
type Entry struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	Size         int64     `json:"size"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

// Store persists download records.
type Store interface {
	Close() error
	Record(e Entry) error
	Get(id string) (Entry, bool, error)
	List() ([]Entry, error)
	Remove(id string) error
}

// NewStore creates the configured manifest backend.
func NewStore(typ, path string) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt manifest requires a path")
		}
		return openBolt(path)
	default:
		return nil, fmt.Errorf("unsupported manifest type %q", typ)
	}
}

type noopStore struct{}

func (noopStore) Close() error                    { return nil }
func (noopStore) Record(Entry) error              { return nil }
func (noopStore) Get(string) (Entry, bool, error) { return Entry{}, false, nil }
func (noopStore) List() ([]Entry, error)          { return nil, nil }
func (noopStore) Remove(string) error             { return nil }
