package emucore

import "errors"

var (
	// ErrNoCartridge is returned by operations that need a loaded cartridge.
	ErrNoCartridge = errors.New("no cartridge inserted")

	// ErrUnsupported is returned when the core lacks an optional capability.
	ErrUnsupported = errors.New("operation not supported by core")
)

// FramebufferFunc receives a finished frame as RGBA pixel data together with
// its dimensions, so len(pixels) == width*height*4. The slice is only valid
// for the duration of the call.
type FramebufferFunc func(pixels []byte, width, height int)

// AudioFunc receives the interleaved stereo samples produced by one frame.
// The slice is only valid for the duration of the call.
type AudioFunc func(samples []int16)

// Core is the handle to a native emulator. Implementations are not required
// to be safe for concurrent use; callers serialize access.
type Core interface {
	// Insert loads the cartridge stored at path.
	Insert(path string) error

	// Start begins free-running emulation on the core's own loop.
	Start()

	// Stop halts the emulation loop.
	Stop()

	// Reset performs a soft reset of the loaded cartridge.
	Reset()

	// Step runs exactly one frame.
	Step()

	// Pause suspends or resumes the emulation loop.
	Pause(paused bool)

	// IsPaused reports whether the emulation loop is paused.
	IsPaused() bool

	// Running reports whether the emulation loop is started.
	Running() bool

	// Type returns the video standard of the loaded cartridge.
	Type() RomType

	// Region returns the region name of the cartridge at path.
	Region(path string) string

	// Title returns the title of the cartridge at path.
	Title(path string) string

	// Button injects a single press or release for a player.
	Button(b Button, player int, pressed bool)

	// SetFramebufferCallback installs the per-frame video callback.
	SetFramebufferCallback(fn FramebufferFunc)

	// SetAudioCallback installs the per-frame audio callback.
	SetAudioCallback(fn AudioFunc)

	// VideoBuffer returns a copy of the last completed frame (RGBA).
	VideoBuffer() []byte

	// AudioBuffer returns a copy of the last frame's stereo samples.
	AudioBuffer() []int16
}

// SaveStater enables save states and rewind.
type SaveStater interface {
	// SaveState captures the complete emulator state.
	SaveState() ([]byte, error)

	// LoadState restores emulator state from previously captured data.
	LoadState(data []byte) error
}

// BatterySaver enables persistence of battery-backed cartridge RAM.
type BatterySaver interface {
	// HasBattery reports whether the loaded cartridge has battery RAM.
	HasBattery() bool

	// Battery returns a copy of the battery RAM contents.
	Battery() []byte

	// LoadBattery copies data into battery RAM.
	LoadBattery(data []byte) error
}

// FrameSizer reports the dimensions of the frame returned by VideoBuffer and
// passed to the framebuffer callback. It must not block on the execution
// loop.
type FrameSizer interface {
	FrameSize() (width, height int)
}

// FrameReader returns the last frame and its dimensions from one snapshot,
// so the size always describes the pixels even while the execution loop
// publishes new frames.
type FrameReader interface {
	Frame() (pixels []byte, width, height int)
}

// CoreFactory opens cores and provides system metadata.
type CoreFactory interface {
	// SystemInfo returns system metadata for frontends.
	SystemInfo() SystemInfo

	// Open creates a new core handle.
	Open() (Core, error)
}
