package core

import (
	"os"
	"path/filepath"
)

// Paths locates the files FitGlide keeps in its data directory.
type Paths struct {
	DataDir    string
	LogFile    string
	LedgerFile string
	ConfigFile string
}

var defaultDataDir string

// PathsIn lays out the FitGlide files under dataDir.
func PathsIn(dataDir string) Paths {
	return Paths{
		DataDir:    dataDir,
		LogFile:    filepath.Join(dataDir, "fitglide.log"),
		LedgerFile: filepath.Join(dataDir, "ledger.db"),
		ConfigFile: filepath.Join(dataDir, "config.yaml"),
	}
}

// DataDir returns ~/.local/share/fitglide, creating it on first use.
func DataDir() string {
	if defaultDataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}

		dir := filepath.Join(homeDir, ".local", "share", "fitglide")
		if err := os.MkdirAll(dir, 0755); err != nil {
			panic(err)
		}
		defaultDataDir = dir
	}
	return defaultDataDir
}
