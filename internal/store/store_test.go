package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()

	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestStoreImplementations(t *testing.T) {
	stores := map[string]Store{
		"memory": NewMemory(),
		"sqlite": openTestSQLite(t),
	}

	for name, s := range stores {
		t.Run(name, func(t *testing.T) {
			_, err := s.Load(WalletKey)
			assert.True(t, errors.Is(err, ErrNotFound))

			require.NoError(t, s.Save(WalletKey, []byte(`{"balance":1}`)))
			data, err := s.Load(WalletKey)
			require.NoError(t, err)
			assert.Equal(t, `{"balance":1}`, string(data))

			// Overwrite keeps a single record
			require.NoError(t, s.Save(WalletKey, []byte(`{"balance":2}`)))
			data, err = s.Load(WalletKey)
			require.NoError(t, err)
			assert.Equal(t, `{"balance":2}`, string(data))

			require.NoError(t, s.Save(ProgressKey("first_steps"), []byte("0.5")))
			require.NoError(t, s.Save(CurrentValueKey("first_steps"), []byte("500")))
			require.NoError(t, s.Save("achievementXprogressXbogus", []byte("1")))

			keys, err := s.Keys("achievement_progress_")
			require.NoError(t, err)
			assert.Equal(t, []string{"achievement_progress_first_steps"}, keys)

			require.NoError(t, s.Delete(WalletKey))
			_, err = s.Load(WalletKey)
			assert.True(t, errors.Is(err, ErrNotFound))

			// Deleting a missing key is not an error
			assert.NoError(t, s.Delete("missing"))
		})
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger.db")

	s, err := Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, s.Save(LevelProgressKey, []byte("[]")))
	require.NoError(t, s.Close())

	reopened, err := Open(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	data, err := reopened.Load(LevelProgressKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestMemoryReturnsCopies(t *testing.T) {
	s := NewMemory()
	payload := []byte("abc")
	require.NoError(t, s.Save("k", payload))
	payload[0] = 'z'

	data, err := s.Load("k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))

	data[1] = 'z'
	again, _ := s.Load("k")
	assert.Equal(t, "abc", string(again))
}
