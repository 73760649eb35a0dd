package flagstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetward/fleetward/internal/domain"
)

func openTestStore(t *testing.T) *BadgerStore {
	t.Helper()
	store, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreRoundtrip(t *testing.T) {
	store := openTestStore(t)

	_, found, err := store.GetBool("missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.SetBool("clean", true))
	value, found, err := store.GetBool("clean")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, value)

	require.NoError(t, store.SetBool("clean", false))
	value, found, err = store.GetBool("clean")
	require.NoError(t, err)
	assert.True(t, found)
	assert.False(t, value)
}

func TestStoreDelete(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SetBool("clean", true))
	require.NoError(t, store.Delete("clean"))

	_, found, err := store.GetBool("clean")
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting an absent key is not an error.
	require.NoError(t, store.Delete("clean"))
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir, nil)
	require.NoError(t, err)
	require.NoError(t, store.SetBool("clean", true))
	require.NoError(t, store.Close())

	store, err = Open(dir, nil)
	require.NoError(t, err)
	defer store.Close()

	value, found, err := store.GetBool("clean")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, value)
}

func TestStoreRejectsUseAfterClose(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Close())

	err := store.SetBool("clean", true)
	assert.ErrorIs(t, err, domain.ErrClosed)

	_, _, err = store.GetBool("clean")
	assert.ErrorIs(t, err, domain.ErrClosed)

	// Close is idempotent.
	assert.NoError(t, store.Close())
}
