package storage

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the application configuration stored in config.toml.
type Config struct {
	Version int          `toml:"version"`
	Core    CoreConfig   `toml:"core"`
	Audio   AudioConfig  `toml:"audio"`
	Video   VideoConfig  `toml:"video"`
	Input   InputConfig  `toml:"input"`
	Rewind  RewindConfig `toml:"rewind"`
	Remote  RemoteConfig `toml:"remote"`
}

// CoreConfig selects the native core and its options.
type CoreConfig struct {
	Path    string            `toml:"path"`               // libretro SNES core shared library
	RDBPath string            `toml:"rdb_path,omitempty"` // empty means GetRDBPath()
	Options map[string]string `toml:"options,omitempty"`  // core variable -> value
}

type AudioConfig struct {
	Volume float64 `toml:"volume"`
	Muted  bool    `toml:"muted"`
}

type VideoConfig struct {
	Scale      int  `toml:"scale"` // initial window scale
	Fullscreen bool `toml:"fullscreen"`
}

// InputConfig holds player 1 binding overrides. Empty maps mean the
// defaults from emucore.SNES() apply.
type InputConfig struct {
	Keyboard map[string]string `toml:"keyboard,omitempty"` // button name -> key name
	Gamepad  map[string]string `toml:"gamepad,omitempty"`  // button name -> pad button name
}

type RewindConfig struct {
	Enabled      bool `toml:"enabled"`
	BufferSizeMB int  `toml:"buffer_size_mb"`
	FrameStep    int  `toml:"frame_step"`
}

type RemoteConfig struct {
	Addr string `toml:"addr,omitempty"` // empty disables the remote server
}

// DefaultConfig returns a new Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Audio: AudioConfig{
			Volume: 1.0,
		},
		Video: VideoConfig{
			Scale: 3,
		},
		Rewind: RewindConfig{
			Enabled:      false,
			BufferSizeMB: 40,
			FrameStep:    1,
		},
	}
}

// LoadConfig reads the configuration at path. A missing file yields the
// defaults, a corrupt one an error. Keys absent from the file keep their
// default value.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	validate(cfg)
	return cfg, nil
}

// SaveConfig writes cfg to path atomically.
func SaveConfig(path string, cfg *Config) error {
	return AtomicWriteTOML(path, cfg)
}

// validate clamps out of range values back to usable ones.
func validate(cfg *Config) {
	def := DefaultConfig()
	if cfg.Audio.Volume < 0 || cfg.Audio.Volume > 2 {
		cfg.Audio.Volume = def.Audio.Volume
	}
	if cfg.Video.Scale < 1 || cfg.Video.Scale > 8 {
		cfg.Video.Scale = def.Video.Scale
	}
	if cfg.Rewind.BufferSizeMB <= 0 {
		cfg.Rewind.BufferSizeMB = def.Rewind.BufferSizeMB
	}
	if cfg.Rewind.FrameStep <= 0 {
		cfg.Rewind.FrameStep = def.Rewind.FrameStep
	}
}
