// Package auth persists issued credentials. Token issuance and
// validation belong to the directory service; this side only stores one
// bearer token per role across restarts and drops it on logout.
package auth

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

const tokenPrefix = "token:"

// Store keeps one credential per role in BadgerDB, keyed distinctly so
// an agent and a player session on the same machine never clobber each
// other.
type Store struct {
	db  *badger.DB
	log *slog.Logger
}

func NewStore(db *badger.DB, log *slog.Logger) *Store {
	return &Store{db: db, log: log}
}

// Save persists the credential for a role.
func (s *Store) Save(role, token string) error {
	key := []byte(tokenPrefix + role)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, []byte(token))
	})
	if err != nil {
		return fmt.Errorf("save %s credential: %w", role, err)
	}
	return nil
}

// Load returns the stored credential for a role, or "" when none was
// persisted.
func (s *Store) Load(role string) (string, error) {
	var token string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(tokenPrefix + role))
		if err != nil {
			return err
		}
		return item.Value(func(value []byte) error {
			token = string(value)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load %s credential: %w", role, err)
	}
	return token, nil
}

// Clear removes the credential for a role, called on logout.
func (s *Store) Clear(role string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(tokenPrefix + role))
	})
	if err != nil {
		return fmt.Errorf("clear %s credential: %w", role, err)
	}
	return nil
}
