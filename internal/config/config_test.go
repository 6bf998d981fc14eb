package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func envFrom(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(envFrom(map[string]string{EnvDataDir: dir}))
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, "ledger.db"), cfg.DatabaseFile)
	assert.Equal(t, filepath.Join(dir, "fitglide.log"), cfg.LogFile)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.BannerDuration)
	assert.Equal(t, 10, cfg.RecentLimit)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
database_file: custom.db
log_level: debug
banner_duration: 1500ms
recent_limit: 25
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))

	cfg, err := Load(envFrom(map[string]string{EnvDataDir: dir}))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "custom.db"), cfg.DatabaseFile)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 1500*time.Millisecond, cfg.BannerDuration)
	assert.Equal(t, 25, cfg.RecentLimit)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, level.Level())
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log_level: debug\n"), 0644))

	cfg, err := Load(envFrom(map[string]string{
		EnvDataDir:       dir,
		EnvLogLevel:      "warn",
		EnvBannerSeconds: "0.5",
	}))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 500*time.Millisecond, cfg.BannerDuration)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{"bad yaml", "log_level: [unterminated", nil},
		{"bad level", "log_level: loud\n", nil},
		{"bad banner seconds", "", map[string]string{EnvBannerSeconds: "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.file != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(tt.file), 0644))
			}
			env := map[string]string{EnvDataDir: dir}
			for k, v := range tt.env {
				env[k] = v
			}

			_, err := Load(envFrom(env))
			assert.Error(t, err)
		})
	}
}

func TestAbsolutePathsAreKept(t *testing.T) {
	dir := t.TempDir()
	other := filepath.Join(t.TempDir(), "elsewhere.db")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("database_file: "+other+"\n"), 0644))

	cfg, err := Load(envFrom(map[string]string{EnvDataDir: dir}))
	require.NoError(t, err)
	assert.Equal(t, other, cfg.DatabaseFile)
}
