// Package flagstore persists the small boolean flags that must survive
// process restarts, backed by a local badger database.
package flagstore

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/goccy/go-json"

	"github.com/fleetward/fleetward/internal/domain"
)

const keyPrefix = "flag:"

type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
}

// Open creates or opens the store under dir.
func Open(dir string, logger *slog.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, domain.NewStorageError("open", dir, err)
	}
	return &BadgerStore{
		db:     db,
		logger: logger.With("component", "flag-store"),
	}, nil
}

// NewWithDB wraps an existing database, used by callers that share one
// badger instance.
func NewWithDB(db *badger.DB, logger *slog.Logger) *BadgerStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &BadgerStore{
		db:     db,
		logger: logger.With("component", "flag-store"),
	}
}

func (s *BadgerStore) GetBool(key string) (bool, bool, error) {
	if err := s.guard(); err != nil {
		return false, false, domain.NewStorageError("get", key, err)
	}

	var (
		value bool
		found bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + key))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &value); err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return false, false, domain.NewStorageError("get", key, err)
	}
	return value, found, nil
}

func (s *BadgerStore) SetBool(key string, value bool) error {
	if err := s.guard(); err != nil {
		return domain.NewStorageError("set", key, err)
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return domain.NewStorageError("set", key, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+key), raw)
	})
	if err != nil {
		return domain.NewStorageError("set", key, err)
	}
	s.logger.Debug("persisted flag", "key", key, "value", value)
	return nil
}

func (s *BadgerStore) Delete(key string) error {
	if err := s.guard(); err != nil {
		return domain.NewStorageError("delete", key, err)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + key))
	})
	if err != nil {
		return domain.NewStorageError("delete", key, err)
	}
	return nil
}

func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *BadgerStore) guard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return domain.ErrClosed
	}
	return nil
}
