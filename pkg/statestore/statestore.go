// Package statestore keeps the durable mirror of the current sessions.
//
// The desktop shell expects the operator's identity to survive a process
// restart without a fresh login, so the session store writes the live
// session token and tenant id here and reads them back during startup
// restoration. The mirror is a small bbolt file with a single bucket;
// entries are cleared only by explicit logout.
package statestore

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

// Keys used by the session store. Client and admin keys are disjoint so
// clearing one session kind can never clobber the other.
const (
	KeyClientSession   = "client_session"
	KeyCurrentClientID = "current_client_id"
	KeyAdminSession    = "admin_session"
	KeyCurrentAdminID  = "current_admin_id"
)

var bucketSessionState = []byte("session_state")

// StateStore is a key/value mirror backed by bbolt.
type StateStore struct {
	db *bbolt.DB
}

// Open opens (creating if needed) the state file at path.
func Open(path string) (*StateStore, error) {
	if path == "" {
		return nil, fmt.Errorf("state store path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create state store directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSessionState)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create session state bucket: %w", err)
	}

	return &StateStore{db: db}, nil
}

// Get retrieves a value by key. Returns "" when the key is absent.
func (s *StateStore) Get(key string) (string, error) {
	var value string
	err := s.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(bucketSessionState).Get([]byte(key)); v != nil {
			value = string(v)
		}
		return nil
	})
	return value, err
}

// Put stores a value by key.
func (s *StateStore) Put(key, value string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSessionState).Put([]byte(key), []byte(value))
	})
}

// Delete removes a key. Deleting an absent key is not an error.
func (s *StateStore) Delete(keys ...string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSessionState)
		for _, key := range keys {
			if err := b.Delete([]byte(key)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Path returns the storage location for display purposes.
func (s *StateStore) Path() string {
	return s.db.Path()
}

// Close closes the underlying database.
func (s *StateStore) Close() error {
	return s.db.Close()
}
