package boltstore

import (
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Store is a thin JSON-over-BoltDB persistence layer shared by every native
// module's engineState implementation, mirroring the identity gateway's
// bolt-backed store: one bucket per entity, values JSON-encoded, reads and
// writes wrapped in a single transaction each.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) a BoltDB file at path and ensures every
// named bucket exists.
func Open(path string, buckets ...string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying BoltDB file handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// getJSON reads key from bucket into out, reporting whether it was present.
func (s *Store) getJSON(bucket, key string, out interface{}) (bool, error) {
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket([]byte(bucket)).Get([]byte(key))
		if raw == nil {
			return nil
		}
		found = true
		return json.Unmarshal(raw, out)
	})
	return found, err
}

// putJSON writes value into bucket under key.
func (s *Store) putJSON(bucket, key string, value interface{}) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put([]byte(key), encoded)
	})
}
