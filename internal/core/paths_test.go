package core

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathsIn(t *testing.T) {
	dir := t.TempDir()
	p := PathsIn(dir)

	assert.Equal(t, dir, p.DataDir)
	assert.Equal(t, filepath.Join(dir, "fitglide.log"), p.LogFile)
	assert.Equal(t, filepath.Join(dir, "ledger.db"), p.LedgerFile)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), p.ConfigFile)
}

func TestDataDirUsesHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	defaultDataDir = ""
	t.Cleanup(func() { defaultDataDir = "" })

	assert.Equal(t, filepath.Join(home, ".local", "share", "fitglide"), DataDir())
	assert.DirExists(t, DataDir())
}
