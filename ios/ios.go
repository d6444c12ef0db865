// Package ios is the gomobile binding surface. It keeps one Bridge for the
// process and exposes it as flat functions using only types gomobile can
// bind.
package ios

import (
	"errors"
	"sync"

	emucore "github.com/folium-app/mango/api"
	"github.com/folium-app/mango/audio"
	"github.com/folium-app/mango/catalog"
	"github.com/folium-app/mango/libretro"
	"github.com/folium-app/mango/mango"
)

var errNotInitialized = errors.New("mango: not initialized")

var (
	mu     sync.Mutex
	handle *mango.Handle
	bridge *mango.Bridge
)

// openCore loads a native core. Only one may be open per process.
var openCore = func(path string, opts libretro.Options) (emucore.Core, error) {
	c, err := libretro.Open(path, opts)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Init opens the libretro core at corePath, replacing the current core.
// rdbPath may be empty; saveDir and systemDir are handed to the core. The
// current core is closed first since a process holds one native core at
// a time; when opening fails no core remains installed.
func Init(corePath, rdbPath, systemDir, saveDir string) error {
	cat, err := catalog.Open(rdbPath)
	if err != nil {
		return err
	}

	Close()
	core, err := openCore(corePath, libretro.Options{
		SystemDir: systemDir,
		SaveDir:   saveDir,
		Catalog:   cat,
	})
	if err != nil {
		return err
	}
	Register(core)
	return nil
}

// Register installs core as the process core, closing any previous one.
func Register(core emucore.Core) {
	h := mango.New(core)

	mu.Lock()
	old := handle
	handle, bridge = h, h.Bridge()
	mu.Unlock()

	if old != nil {
		old.Close()
	}
}

// Close releases the core.
func Close() {
	mu.Lock()
	h := handle
	handle, bridge = nil, nil
	mu.Unlock()

	if h != nil {
		h.Close()
	}
}

func current() *mango.Bridge {
	mu.Lock()
	defer mu.Unlock()
	return bridge
}

func Insert(path string) error {
	b := current()
	if b == nil {
		return errNotInitialized
	}
	return b.InsertCartridge(path)
}

func Start() {
	if b := current(); b != nil {
		b.Start()
	}
}

func Stop() {
	if b := current(); b != nil {
		b.Stop()
	}
}

func Reset() {
	if b := current(); b != nil {
		b.Reset()
	}
}

func Step() {
	if b := current(); b != nil {
		b.Step()
	}
}

func Pause(paused bool) {
	if b := current(); b != nil {
		b.Pause(paused)
	}
}

func IsPaused() bool {
	if b := current(); b != nil {
		return b.Paused()
	}
	return false
}

func TogglePaused() {
	if b := current(); b != nil {
		b.TogglePaused()
	}
}

func Running() bool {
	if b := current(); b != nil {
		return b.Running()
	}
	return false
}

// Type returns 0 for PAL and 1 for NTSC.
func Type() int {
	if b := current(); b != nil {
		return int(b.Type())
	}
	return int(emucore.RomTypeNTSC)
}

func Region(path string) string {
	if b := current(); b != nil {
		return b.RegionForCartridge(path)
	}
	return ""
}

func Title(path string) string {
	if b := current(); b != nil {
		return b.TitleForCartridge(path)
	}
	return ""
}

// Button takes the controller button code (B=0 ... R=11).
func Button(button, player int, pressed bool) {
	if b := current(); b != nil {
		b.Button(emucore.Button(button), player, pressed)
	}
}

// VideoBuffer returns the last frame in RGBA. Use VideoFrame when the
// dimensions are needed too.
func VideoBuffer() []byte {
	if b := current(); b != nil {
		return b.VideoBuffer()
	}
	return nil
}

// Frame is a copy of the last frame. Pixels holds Width*Height RGBA
// pixels.
type Frame struct {
	Pixels []byte
	Width  int
	Height int
}

// VideoFrame returns the last frame together with its dimensions, taken
// from one snapshot. It returns nil without a core.
func VideoFrame() *Frame {
	b := current()
	if b == nil {
		return nil
	}
	f := b.Frame()
	return &Frame{Pixels: f.Pixels, Width: f.Width, Height: f.Height}
}

// AudioBuffer returns the last frame of 48 kHz stereo samples as signed
// 16-bit little-endian bytes.
func AudioBuffer() []byte {
	b := current()
	if b == nil {
		return nil
	}
	samples := b.AudioBuffer()
	return audio.SamplesToBytes(make([]byte, 0, len(samples)*2), samples)
}

func SaveState() ([]byte, error) {
	b := current()
	if b == nil {
		return nil, errNotInitialized
	}
	return b.SaveState()
}

func LoadState(data []byte) error {
	b := current()
	if b == nil {
		return errNotInitialized
	}
	return b.LoadState(data)
}

func Battery() ([]byte, error) {
	b := current()
	if b == nil {
		return nil, errNotInitialized
	}
	return b.Battery()
}

func LoadBattery(data []byte) error {
	b := current()
	if b == nil {
		return errNotInitialized
	}
	return b.LoadBattery(data)
}
