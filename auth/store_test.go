package auth

import (
	"io"
	"log/slog"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"support-desk/domain"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestStore_SaveAndLoad(t *testing.T) {
	req := require.New(t)
	store := setupStore(t)

	req.NoError(store.Save(domain.RoleAgent, "agent-token"))

	token, err := store.Load(domain.RoleAgent)
	req.NoError(err)
	req.Equal("agent-token", token)
}

func TestStore_RolesAreIsolated(t *testing.T) {
	req := require.New(t)
	store := setupStore(t)

	req.NoError(store.Save(domain.RoleAgent, "agent-token"))
	req.NoError(store.Save(domain.RolePlayer, "player-token"))

	token, err := store.Load(domain.RoleAgent)
	req.NoError(err)
	req.Equal("agent-token", token)

	token, err = store.Load(domain.RolePlayer)
	req.NoError(err)
	req.Equal("player-token", token)

	// Logging out one role leaves the other untouched.
	req.NoError(store.Clear(domain.RoleAgent))
	token, err = store.Load(domain.RoleAgent)
	req.NoError(err)
	req.Empty(token)
	token, err = store.Load(domain.RolePlayer)
	req.NoError(err)
	req.Equal("player-token", token)
}

func TestStore_LoadMissingIsNotAnError(t *testing.T) {
	req := require.New(t)
	store := setupStore(t)

	token, err := store.Load(domain.RoleAgent)
	req.NoError(err)
	req.Empty(token)

	// Clearing an absent credential is harmless too.
	req.NoError(store.Clear(domain.RoleAgent))
}
