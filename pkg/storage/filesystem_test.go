package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveAndRead(t *testing.T) {
	store, err := NewLocalStorage(filepath.Join(t.TempDir(), "nested"))
	require.NoError(t, err)

	name, err := store.Save("students.json", []byte(`[]`))
	require.NoError(t, err)
	assert.Equal(t, "students.json", name)

	_, err = store.Save("students.json", []byte(`[{"id":"a"}]`))
	require.NoError(t, err)

	data, err := store.Read("students.json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a"}]`, string(data))

	entries, err := os.ReadDir(filepath.Dir(store.Path("students.json")))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not linger")
}

func TestLocalStorageReadMissing(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Read("absent.json")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLocalStorageRejectsEscapingNames(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("../outside.json", []byte(`x`))
	assert.Error(t, err)
}

func TestLocalStorageDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Delete("never-written.csv"))
	_, err = store.Save("roster.csv", []byte("id\n"))
	require.NoError(t, err)
	require.NoError(t, store.Delete("roster.csv"))
	_, err = store.Read("roster.csv")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
