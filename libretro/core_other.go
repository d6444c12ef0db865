//go:build !darwin && !linux

package libretro

import (
	"errors"

	emucore "github.com/folium-app/mango/api"
)

// Core is unavailable on this platform.
type Core struct {
	emucore.Core
}

// Open always fails: loading shared libraries needs dlopen.
func Open(path string, opts Options) (*Core, error) {
	return nil, errors.New("libretro: core loading is not supported on this platform")
}

func (c *Core) Name() (name, version string)      { return "", "" }
func (c *Core) FPS() float64                      { return 0 }
func (c *Core) FrameSize() (int, int)             { return 0, 0 }
func (c *Core) Frame() ([]byte, int, int)         { return nil, 0, 0 }
func (c *Core) CoreOptions() []emucore.CoreOption { return nil }
func (c *Core) SetOption(key, value string)       {}
