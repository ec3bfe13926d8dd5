// Package credentials holds the session credential: one opaque bearer token
// stored under a single well-known key. Its presence is the only signal that
// the user is authenticated.
package credentials

import (
	"context"
	"database/sql"
	"sync"

	"github.com/dmitrijs2005/clouddrive/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/clouddrive/internal/common"
	"github.com/dmitrijs2005/clouddrive/internal/dbx"
)

// Store is the credential lifecycle: read, replace, delete.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the stored credential; ok is false when none is stored.
	Get(ctx context.Context) (token string, ok bool, err error)
	// Set replaces any stored credential with token.
	Set(ctx context.Context, token string) error
	// Clear removes the credential. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// MemoryStore keeps the credential in process memory. Used by tests and as a
// fallback when no database is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
	ok    bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Get(ctx context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.ok = token, true
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.ok = "", false
	return nil
}

// SQLiteStore persists the credential in the metadata table so it survives
// restarts of the client.
type SQLiteStore struct {
	db  *sql.DB
	key string
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, key: common.CredentialKey}
}

func (s *SQLiteStore) Get(ctx context.Context) (string, bool, error) {
	v, found, err := metadata.NewSQLiteRepository(s.db).Get(ctx, s.key)
	if err != nil || !found {
		return "", false, err
	}
	return string(v), true, nil
}

// Set deletes the old row and inserts the new one in a single transaction.
func (s *SQLiteStore) Set(ctx context.Context, token string) error {
	return dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, s.key); err != nil {
			return err
		}
		return repo.Set(ctx, s.key, []byte(token))
	})
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return metadata.NewSQLiteRepository(s.db).Delete(ctx, s.key)
}
