package settings_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bekzodm/omborscan/internal/settings"
)

func TestStore_Load_MissingFileReturnsDefaults(t *testing.T) {
	store := settings.NewStore(filepath.Join(t.TempDir(), "settings.yaml"))

	got, err := store.Load()
	require.NoError(t, err)
	assert.False(t, got.Turbo)
	assert.True(t, got.Sound, "sound defaults to on")
	assert.False(t, got.IgnoreStock)
}

func TestStore_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	store := settings.NewStore(path)

	want := settings.Settings{Turbo: true, Sound: false, IgnoreStock: true}
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// No temp file left behind.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestStore_Load_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("turbo: true\n"), 0o644))

	got, err := settings.NewStore(path).Load()
	require.NoError(t, err)
	assert.True(t, got.Turbo)
	assert.True(t, got.Sound, "unset keys fall back to defaults")
}
