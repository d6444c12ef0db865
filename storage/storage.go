// Package storage locates mango's data directories and reads and writes its
// configuration file.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/kirsle/configdir"
)

const appName = "mango"

var baseDir string

const (
	configFile    = "config.toml"
	metadataDir   = "metadata"
	savesDir      = "saves"
	screenshotDir = "screenshots"
	systemDir     = "system"
	rdbFile       = "snes.rdb"
)

// SetBaseDir overrides the data directory. An empty dir restores the
// per-user configuration directory.
func SetBaseDir(dir string) {
	baseDir = dir
}

// GetBaseDir returns the base directory for application data, e.g.
// ~/.config/mango on Linux or ~/Library/Application Support/mango on macOS.
func GetBaseDir() string {
	if baseDir != "" {
		return baseDir
	}
	return configdir.LocalConfig(appName)
}

// EnsureDirectories creates every directory used by the application.
func EnsureDirectories() error {
	base := GetBaseDir()
	dirs := []string{
		base,
		filepath.Join(base, metadataDir),
		filepath.Join(base, savesDir),
		filepath.Join(base, screenshotDir),
		filepath.Join(base, systemDir),
	}
	if err := configdir.MakePath(dirs...); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	return nil
}

// GetConfigPath returns the full path to config.toml.
func GetConfigPath() string {
	return filepath.Join(GetBaseDir(), configFile)
}

// GetRDBPath returns the default location of the game database.
func GetRDBPath() string {
	return filepath.Join(GetBaseDir(), metadataDir, rdbFile)
}

// GetSystemDir returns the directory handed to cores for BIOS files.
func GetSystemDir() string {
	return filepath.Join(GetBaseDir(), systemDir)
}

// GetSavesDir returns the directory holding per-game save directories.
func GetSavesDir() string {
	return filepath.Join(GetBaseDir(), savesDir)
}

// GetScreenshotDir returns the full path to the screenshots directory.
func GetScreenshotDir() string {
	return filepath.Join(GetBaseDir(), screenshotDir)
}

// GetGameSaveDir returns the save directory for a game, keyed by the hex
// CRC32 of its cartridge image.
func GetGameSaveDir(gameCRC string) string {
	return filepath.Join(GetSavesDir(), gameCRC)
}

// AtomicWriteFile writes data to a temporary file next to path and renames
// it over path, so path is never left partially written.
func AtomicWriteFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// AtomicWriteTOML encodes v as TOML and writes it with AtomicWriteFile.
func AtomicWriteTOML(path string, v any) error {
	buf, err := toml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal TOML: %w", err)
	}
	return AtomicWriteFile(path, buf)
}
