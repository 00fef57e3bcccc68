package internal

import (
	"fmt"
	"os"
	"path/filepath"
)

// DataDirEnv overrides the data directory
const DataDirEnv = "MIROVA_HOME"

// StoragePaths holds the resolved on-disk locations
type StoragePaths struct {
	DataDir  string // ~/.mirova
	Database string // SQLite store
	Config   string // optional TOML config
	FileKV   string // directory of the file store
}

// DetectStoragePaths resolves the data directory from $MIROVA_HOME or the home directory
func DetectStoragePaths() (StoragePaths, error) {
	dir := os.Getenv(DataDirEnv)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return StoragePaths{}, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".mirova")
	}
	return StoragePathsAt(dir), nil
}

// StoragePathsAt lays the storage files out under dir
func StoragePathsAt(dir string) StoragePaths {
	return StoragePaths{
		DataDir:  dir,
		Database: filepath.Join(dir, "mirova.db"),
		Config:   filepath.Join(dir, "config.toml"),
		FileKV:   filepath.Join(dir, "store"),
	}
}

// DatabaseExists checks if the SQLite store has been created
func (sp StoragePaths) DatabaseExists() bool {
	_, err := os.Stat(sp.Database)
	return err == nil
}

// ConfigExists checks if a config file is present
func (sp StoragePaths) ConfigExists() bool {
	info, err := os.Stat(sp.Config)
	return err == nil && !info.IsDir()
}

// FileKVExists checks if the file store directory exists
func (sp StoragePaths) FileKVExists() bool {
	info, err := os.Stat(sp.FileKV)
	return err == nil && info.IsDir()
}
