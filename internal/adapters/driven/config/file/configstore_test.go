package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_EnvOverride(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "custom")
	t.Setenv(ConfigDirEnv, dir)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}

func TestDefaultConfigDir_Home(t *testing.T) {
	t.Setenv(ConfigDirEnv, "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	dir, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".factsheets"), dir)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("sources.combos.url", "http://example.org/combos.json"))
	require.NoError(t, store.Set("http.timeout_seconds", int64(10)))
	require.NoError(t, store.Set("scheduler.enabled", true))
	require.NoError(t, store.Set("glossary.extra", []string{"a", "b"}))

	assert.Equal(t, "http://example.org/combos.json", store.GetString("sources.combos.url"))
	assert.Equal(t, 10, store.GetInt("http.timeout_seconds"))
	assert.True(t, store.GetBool("scheduler.enabled"))
	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("glossary.extra"))

	// wrong types fall back to zero values
	assert.Equal(t, "", store.GetString("http.timeout_seconds"))
	assert.Equal(t, 0, store.GetInt("sources.combos.url"))
	assert.False(t, store.GetBool("sources.combos.url"))
	assert.Nil(t, store.GetStringSlice("scheduler.enabled"))
}

func TestConfigStore_Get_NotFound(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	_, ok := store.Get("nonexistent")
	assert.False(t, ok)
	assert.Equal(t, 0, store.GetInt("nonexistent"))
}

func TestConfigStore_SavesNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("sources.tripsit.base_url", "http://localhost:8080"))
	require.NoError(t, store.Set("memo.max_entries", int64(500)))

	content, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(content), "base_url")
	assert.NotContains(t, string(content), "sources.tripsit.base_url")

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", reloaded.GetString("sources.tripsit.base_url"))
	assert.Equal(t, 500, reloaded.GetInt("memo.max_entries"))
	assert.Equal(t, []string{"memo.max_entries", "sources.tripsit.base_url"}, reloaded.Keys())
}

func TestConfigStore_LoadHandWritten(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[scheduler]
enabled = false
erowid_interval_seconds = 7200.0

[http]
requests_per_second = 2.5
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	enabled, ok := store.Get("scheduler.enabled")
	assert.True(t, ok)
	assert.Equal(t, false, enabled)
	assert.Equal(t, 7200, store.GetInt("scheduler.erowid_interval_seconds"))

	rate, ok := store.Get("http.requests_per_second")
	assert.True(t, ok)
	assert.Equal(t, 2.5, rate)
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not [valid toml"), 0600))

	_, err := NewConfigStore(tmpDir)
	assert.Error(t, err)
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), nil, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, store.Keys())
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Save())

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Set("memo.max_entries", int64(i))
			_ = store.GetInt("memo.max_entries")
		}()
	}
	wg.Wait()
}

func TestNestMap(t *testing.T) {
	flat := map[string]any{
		"a":     1,
		"a.b":   2,
		"x.y.z": "deep",
		"x.w":   true,
	}

	nested := nestMap(flat)

	assert.Equal(t, 1, nested["a"])
	x, ok := nested["x"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, x["w"])
	y, ok := x["y"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "deep", y["z"])
}
