package persistence

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hue-panel/internal/domain/model"
)

func TestJSONConfigRepository_MissingFileUsesEnv(t *testing.T) {
	t.Setenv(EnvBridgeIP, "192.168.1.20")
	t.Setenv(EnvUsername, "envuser")
	path := filepath.Join(t.TempDir(), "nested", ConfigFileName)

	cfg := NewJSONConfigRepository(path, nil).Load(context.Background())

	assert.Equal(t, &model.BridgeConfig{BridgeIP: "192.168.1.20", Username: "envuser"}, cfg)
	assert.DirExists(t, filepath.Dir(path))
}

func TestJSONConfigRepository_MissingFileNoEnv(t *testing.T) {
	t.Setenv(EnvBridgeIP, "")
	t.Setenv(EnvUsername, "")

	cfg := NewJSONConfigRepository(filepath.Join(t.TempDir(), ConfigFileName), nil).Load(context.Background())

	require.NotNil(t, cfg)
	assert.Empty(t, cfg.BridgeIP)
	assert.Empty(t, cfg.Username)
	assert.False(t, cfg.IsPaired())
}

func TestJSONConfigRepository_CorruptFileUsesEnv(t *testing.T) {
	t.Setenv(EnvBridgeIP, "10.0.0.2")
	t.Setenv(EnvUsername, "")
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"bridge_ip": `), 0o644))

	cfg := NewJSONConfigRepository(path, nil).Load(context.Background())

	assert.Equal(t, "10.0.0.2", cfg.BridgeIP)
	assert.Empty(t, cfg.Username)
}

func TestJSONConfigRepository_NonObjectFileUsesEnv(t *testing.T) {
	t.Setenv(EnvBridgeIP, "10.0.0.2")
	t.Setenv(EnvUsername, "envuser")

	for _, content := range []string{"null", "[]", `"192.168.1.2"`, "42", ""} {
		path := filepath.Join(t.TempDir(), ConfigFileName)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg := NewJSONConfigRepository(path, nil).Load(context.Background())

		assert.Equal(t, &model.BridgeConfig{BridgeIP: "10.0.0.2", Username: "envuser"}, cfg, "content %q", content)
	}
}

func TestJSONConfigRepository_FileWinsOverEnv(t *testing.T) {
	t.Setenv(EnvBridgeIP, "10.0.0.2")
	t.Setenv(EnvUsername, "envuser")
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(`{"bridge_ip":"192.168.0.7"}`), 0o644))

	cfg := NewJSONConfigRepository(path, nil).Load(context.Background())

	assert.Equal(t, "192.168.0.7", cfg.BridgeIP)
	assert.Empty(t, cfg.Username, "fields absent from the file are not filled from the environment")
}

func TestJSONConfigRepository_SaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", ConfigFileName)
	repo := NewJSONConfigRepository(path, nil)

	require.NoError(t, repo.Save(context.Background(), &model.BridgeConfig{BridgeIP: "192.168.1.20", Username: "abc"}))
	require.NoError(t, repo.Save(context.Background(), &model.BridgeConfig{BridgeIP: "192.168.1.21", Username: "def"}))

	loaded := repo.Load(context.Background())
	assert.Equal(t, &model.BridgeConfig{BridgeIP: "192.168.1.21", Username: "def"}, loaded)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"bridge_ip":"192.168.1.21","username":"def"}`, string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestJSONConfigRepository_ConcurrentSaves(t *testing.T) {
	repo := NewJSONConfigRepository(filepath.Join(t.TempDir(), ConfigFileName), nil)

	var wg sync.WaitGroup
	for _, user := range []string{"one", "two", "three", "four"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Save(context.Background(), &model.BridgeConfig{BridgeIP: "10.0.0.1", Username: user}))
		}()
	}
	wg.Wait()

	cfg := repo.Load(context.Background())
	assert.Equal(t, "10.0.0.1", cfg.BridgeIP)
	assert.Contains(t, []string{"one", "two", "three", "four"}, cfg.Username)
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	t.Setenv("HOME", "/tmp/home")
	t.Setenv("AppData", `C:\Users\me\AppData\Roaming`)

	path := DefaultConfigPath()

	assert.Equal(t, ConfigFileName, filepath.Base(path))
	assert.Equal(t, AppDirName, filepath.Base(filepath.Dir(path)))
}
