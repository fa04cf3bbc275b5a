package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.toml")
	raw := `
[world]
map_name = "islands"

[world.generate]
enabled = true
seed = 42

[tick]
rate = "100ms"
save_retries = 5

[logging]
format = "json"
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "islands", cfg.World.MapName)
	assert.True(t, cfg.World.Generate.Enabled)
	assert.Equal(t, int64(42), cfg.World.Generate.Seed)
	assert.Equal(t, uint16(256), cfg.World.Generate.Width, "untouched keys keep defaults")
	assert.Equal(t, 100*time.Millisecond, cfg.Tick.Rate)
	assert.Equal(t, 5, cfg.Tick.SaveRetries)
	assert.Equal(t, 1, cfg.Tick.SpectatorClearTicks)
	assert.Equal(t, 200*time.Millisecond, cfg.Database.SlowQuery)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NotZero(t, cfg.Server.StartTime)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[tick\nrate="), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestPath(t *testing.T) {
	t.Setenv(EnvPath, "")
	assert.Equal(t, DefaultPath, Path())

	t.Setenv(EnvPath, "/etc/worldcore.toml")
	assert.Equal(t, "/etc/worldcore.toml", Path())
}
