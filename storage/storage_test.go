package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func useTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	SetBaseDir(dir)
	t.Cleanup(func() { SetBaseDir("") })
	return dir
}

func TestPaths(t *testing.T) {
	dir := useTempDir(t)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"config", GetConfigPath(), filepath.Join(dir, "config.toml")},
		{"rdb", GetRDBPath(), filepath.Join(dir, "metadata", "snes.rdb")},
		{"system", GetSystemDir(), filepath.Join(dir, "system")},
		{"game saves", GetGameSaveDir("1a2b3c4d"), filepath.Join(dir, "saves", "1a2b3c4d")},
		{"screenshots", GetScreenshotDir(), filepath.Join(dir, "screenshots")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := useTempDir(t)
	if err := EnsureDirectories(); err != nil {
		t.Fatal(err)
	}
	for _, sub := range []string{"metadata", "saves", "screenshots", "system"} {
		if fi, err := os.Stat(filepath.Join(dir, sub)); err != nil || !fi.IsDir() {
			t.Errorf("%s not created: %v", sub, err)
		}
	}
}

func TestAtomicWriteFile(t *testing.T) {
	dir := useTempDir(t)
	path := filepath.Join(dir, "nested", "file.bin")

	if err := AtomicWriteFile(path, []byte("first")); err != nil {
		t.Fatal(err)
	}
	if err := AtomicWriteFile(path, []byte("second")); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Errorf("content = %q", got)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}
}

func TestLoadConfigMissing(t *testing.T) {
	dir := useTempDir(t)
	cfg, err := LoadConfig(filepath.Join(dir, "config.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("missing config differs from defaults (-want +got):\n%s", diff)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	useTempDir(t)
	path := GetConfigPath()

	want := DefaultConfig()
	want.Core.Path = "/usr/lib/libretro/snes9x_libretro.so"
	want.Core.Options = map[string]string{"snes9x_region": "auto"}
	want.Input.Keyboard = map[string]string{"A": "L"}
	want.Remote.Addr = "localhost:7654"
	want.Audio.Volume = 0.5

	if err := SaveConfig(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigPartialAndInvalid(t *testing.T) {
	dir := useTempDir(t)
	path := filepath.Join(dir, "config.toml")

	partial := "[audio]\nvolume = 7.0\n[video]\nfullscreen = true\n"
	if err := os.WriteFile(path, []byte(partial), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Audio.Volume != 1.0 {
		t.Errorf("out of range volume not reset: %v", cfg.Audio.Volume)
	}
	if !cfg.Video.Fullscreen || cfg.Video.Scale != 3 {
		t.Errorf("video = %+v", cfg.Video)
	}
	if cfg.Rewind.BufferSizeMB != 40 {
		t.Errorf("absent key lost its default: %+v", cfg.Rewind)
	}

	if err := os.WriteFile(path, []byte("[audio\nvolume="), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("corrupt config accepted")
	}
}
