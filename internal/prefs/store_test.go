package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prefs.json")
	s, err := Open(path)
	require.NoError(t, err)
	return s, path
}

func TestSessionLifecycle(t *testing.T) {
	s, _ := tempStore(t)

	assert.False(t, s.IsLoggedIn())
	assert.Empty(t, s.CurrentUserID())

	require.NoError(t, s.SetSession("user-123"))
	assert.True(t, s.IsLoggedIn())
	assert.Equal(t, "user-123", s.CurrentUserID())

	require.NoError(t, s.ClearSession())
	assert.False(t, s.IsLoggedIn())
	assert.Empty(t, s.CurrentUserID())
}

func TestPersistsAcrossReopen(t *testing.T) {
	s, path := tempStore(t)
	require.NoError(t, s.SetSession("user-42"))
	require.NoError(t, s.SetTheme("dark"))
	require.NoError(t, s.SetCurrency("EUR"))
	require.NoError(t, s.SetLanguage("de"))

	reopened, err := Open(path)
	require.NoError(t, err)

	assert.True(t, reopened.IsLoggedIn())
	assert.Equal(t, "user-42", reopened.CurrentUserID())
	assert.Equal(t, "dark", reopened.Theme())
	assert.Equal(t, "EUR", reopened.Currency())
	assert.Equal(t, "de", reopened.Language())
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "nope", "prefs.json"))
	require.NoError(t, err)
	assert.Empty(t, s.Theme())
}

func TestOpenCorruptFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := Open(path)
	assert.Error(t, err)
}
