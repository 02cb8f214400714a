package localstore

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/Outstandr/lovable-fit-sub000/internal/pedometer"
)

var bucketScalars = []byte("scalars")

const keyStepState = "step_counter_state"

// Store is a single-file bbolt store for device-local scalars. Values are
// JSON-serialized under string keys; there is no schema versioning.
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the store at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketScalars)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init local store bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database file.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Put JSON-serializes value under key.
func (s *Store) Put(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %q: %w", key, err)
	}
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketScalars).Put([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

// Get unmarshals the value stored under key into out. A missing key is
// reported as found=false with no error.
func (s *Store) Get(key string, out any) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketScalars).Get([]byte(key))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, out)
	})
	if err != nil {
		return false, fmt.Errorf("get %q: %w", key, err)
	}
	return found, nil
}

// Delete removes key. Deleting a missing key is a no-op.
func (s *Store) Delete(key string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketScalars).Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// LoadState implements pedometer.Store.
func (s *Store) LoadState() (pedometer.State, bool, error) {
	var state pedometer.State
	found, err := s.Get(keyStepState, &state)
	return state, found, err
}

// SaveState implements pedometer.Store.
func (s *Store) SaveState(state pedometer.State) error {
	return s.Put(keyStepState, state)
}
