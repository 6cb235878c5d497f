package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

const modelBucket = "models"

// boltStore implements a Store backed by BoltDB.
type boltStore struct {
	db *bolt.DB
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create manifest directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(modelBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltStore{db: db}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Record stores or replaces the entry for e.ID.
func (b *boltStore) Record(e Entry) error {
	if b == nil || b.db == nil {
		return nil
	}
	if e.ID == "" {
		return fmt.Errorf("manifest entry missing id")
	}

	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode manifest entry: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(modelBucket))
		if bucket == nil {
			return fmt.Errorf("model bucket missing")
		}
		return bucket.Put([]byte(e.ID), value)
	})
}

// Get fetches the entry for id, reporting whether one exists.
func (b *boltStore) Get(id string) (Entry, bool, error) {
	if b == nil || b.db == nil {
		return Entry{}, false, nil
	}

	var entry Entry
	var found bool
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(modelBucket))
		if bucket == nil {
			return fmt.Errorf("model bucket missing")
		}
		value := bucket.Get([]byte(id))
		if value == nil {
			return nil
		}
		if err := json.Unmarshal(value, &entry); err != nil {
			return fmt.Errorf("decode manifest entry %q: %w", id, err)
		}
		found = true
		return nil
	})
	return entry, found, err
}

// List returns all recorded entries sorted by id.
func (b *boltStore) List() ([]Entry, error) {
	if b == nil || b.db == nil {
		return nil, nil
	}

	var entries []Entry
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(modelBucket))
		if bucket == nil {
			return fmt.Errorf("model bucket missing")
		}
		return bucket.ForEach(func(k, v []byte) error {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				return fmt.Errorf("decode manifest entry %q: %w", string(k), err)
			}
			entries = append(entries, e)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

// Remove deletes the entry for id if present.
func (b *boltStore) Remove(id string) error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(modelBucket))
		if bucket == nil {
			return fmt.Errorf("model bucket missing")
		}
		return bucket.Delete([]byte(id))
	})
}
