// ABOUTME: Device-local durable store for streaks, achievements, pins, and session.
// ABOUTME: Badger-backed key/value pairs; malformed values decode to defaults.
package localstore

import (
	"encoding/json"
	"fmt"
	"os"

	badger "github.com/dgraph-io/badger/v3"

	"github.com/harperreed/haul/internal/models"
)

const (
	keyStreak       = "streak"
	keyAchievements = "achievements"
	keyPinnedFields = "pinned_fields"
	keySession      = "session"
)

// Store holds the device-owned best-effort caches. Entries here are not
// authoritative; the remote store is the durable source of truth across
// devices.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the local store at the given directory.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create local store directory: %w", err)
	}

	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// get decodes the JSON value at key into out. A missing or malformed
// value leaves out at its zero value and is not an error.
func (s *Store) get(key string, out any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			// Corrupted values are treated as absent rather than fatal.
			_ = json.Unmarshal(val, out)
			return nil
		})
	})
}

// set stores v as JSON at key.
func (s *Store) set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// Streak returns the stored streak state, zero-valued if absent.
func (s *Store) Streak() (models.Streak, error) {
	var st models.Streak
	err := s.get(keyStreak, &st)
	return st, err
}

// SetStreak persists the streak state.
func (s *Store) SetStreak(st models.Streak) error {
	return s.set(keyStreak, st)
}

// Achievements returns the set of earned achievement IDs.
func (s *Store) Achievements() ([]string, error) {
	var ids []string
	err := s.get(keyAchievements, &ids)
	return ids, err
}

// SetAchievements persists the earned achievement IDs.
func (s *Store) SetAchievements(ids []string) error {
	return s.set(keyAchievements, ids)
}

// PinnedFields returns the pinned field IDs.
func (s *Store) PinnedFields() ([]string, error) {
	var ids []string
	err := s.get(keyPinnedFields, &ids)
	return ids, err
}

// SetPinnedFields persists the pinned field IDs.
func (s *Store) SetPinnedFields(ids []string) error {
	return s.set(keyPinnedFields, ids)
}

// Session returns the active session, or nil when logged out.
func (s *Store) Session() (*models.Session, error) {
	var sess models.Session
	if err := s.get(keySession, &sess); err != nil {
		return nil, err
	}
	if sess.Driver == "" {
		return nil, nil
	}
	return &sess, nil
}

// SetSession persists the active session.
func (s *Store) SetSession(sess models.Session) error {
	return s.set(keySession, sess)
}

// ClearSession removes the active session.
func (s *Store) ClearSession() error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(keySession))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
}
