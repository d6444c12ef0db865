package mango

import (
	"context"

	emucore "github.com/folium-app/mango/api"
)

// Mango is the context aware facade. Every method forwards to exactly one
// core operation, apart from TogglePaused, and returns the core's answer
// unmodified. Methods fail with ErrClosed once the handle is closed and
// with ctx.Err() when ctx ends before the call completes.
type Mango struct {
	h *Handle
}

// Insert loads the cartridge at path.
func (m *Mango) Insert(ctx context.Context, path string) error {
	var err error
	if cerr := m.h.do(ctx, func(c emucore.Core) { err = c.Insert(path) }); cerr != nil {
		return cerr
	}
	return err
}

// Start begins free-running emulation.
func (m *Mango) Start(ctx context.Context) error {
	return m.h.do(ctx, func(c emucore.Core) { c.Start() })
}

// Stop halts emulation.
func (m *Mango) Stop(ctx context.Context) error {
	return m.h.do(ctx, func(c emucore.Core) { c.Stop() })
}

// Reset soft resets the cartridge.
func (m *Mango) Reset(ctx context.Context) error {
	return m.h.do(ctx, func(c emucore.Core) { c.Reset() })
}

// Step runs one frame.
func (m *Mango) Step(ctx context.Context) error {
	return m.h.do(ctx, func(c emucore.Core) { c.Step() })
}

// Pause suspends or resumes emulation.
func (m *Mango) Pause(ctx context.Context, paused bool) error {
	return m.h.do(ctx, func(c emucore.Core) { c.Pause(paused) })
}

// IsPaused asks the core whether it is paused.
func (m *Mango) IsPaused(ctx context.Context) (bool, error) {
	return call(ctx, m.h, func(c emucore.Core) bool {
		return c.IsPaused()
	})
}

// TogglePaused inverts the pause state in one turn of the owner goroutine,
// so no other call can run between the query and the change.
func (m *Mango) TogglePaused(ctx context.Context) error {
	return m.h.do(ctx, func(c emucore.Core) {
		c.Pause(!c.IsPaused())
	})
}

// Running asks the core whether emulation is running.
func (m *Mango) Running(ctx context.Context) (bool, error) {
	return call(ctx, m.h, func(c emucore.Core) bool {
		return c.Running()
	})
}

// Type returns the video standard of the loaded cartridge.
func (m *Mango) Type(ctx context.Context) (emucore.RomType, error) {
	return call(ctx, m.h, func(c emucore.Core) emucore.RomType {
		return c.Type()
	})
}

// Region returns the region of the cartridge at path.
func (m *Mango) Region(ctx context.Context, path string) (string, error) {
	return call(ctx, m.h, func(c emucore.Core) string {
		return c.Region(path)
	})
}

// Title returns the title of the cartridge at path.
func (m *Mango) Title(ctx context.Context, path string) (string, error) {
	return call(ctx, m.h, func(c emucore.Core) string {
		return c.Title(path)
	})
}

// Button forwards one press or release. The player index is not checked.
func (m *Mango) Button(ctx context.Context, b emucore.Button, player int, pressed bool) error {
	return m.h.do(ctx, func(c emucore.Core) { c.Button(b, player, pressed) })
}

// Framebuffer installs the frame callback. fn runs on the goroutine
// producing the frame and the slice is only valid during the call.
func (m *Mango) Framebuffer(ctx context.Context, fn emucore.FramebufferFunc) error {
	return m.h.do(ctx, func(c emucore.Core) { c.SetFramebufferCallback(fn) })
}

// Audio installs the audio callback.
func (m *Mango) Audio(ctx context.Context, fn emucore.AudioFunc) error {
	return m.h.do(ctx, func(c emucore.Core) { c.SetAudioCallback(fn) })
}

// VideoBuffer returns the core's last frame.
func (m *Mango) VideoBuffer(ctx context.Context) ([]byte, error) {
	return call(ctx, m.h, func(c emucore.Core) []byte {
		return c.VideoBuffer()
	})
}

// AudioBuffer returns the core's last frame of samples.
func (m *Mango) AudioBuffer(ctx context.Context) ([]int16, error) {
	return call(ctx, m.h, func(c emucore.Core) []int16 {
		return c.AudioBuffer()
	})
}

type size struct{ w, h int }

// FrameSize returns the dimensions of the last frame.
func (m *Mango) FrameSize(ctx context.Context) (width, height int, err error) {
	s, err := call(ctx, m.h, func(c emucore.Core) size {
		fs, ok := c.(emucore.FrameSizer)
		if !ok {
			return size{}
		}
		w, h := fs.FrameSize()
		return size{w, h}
	})
	return s.w, s.h, err
}

// Frame is a copy of the last frame with the dimensions it was drawn at.
type Frame struct {
	Pixels []byte // RGBA, Width*Height*4 bytes
	Width  int
	Height int
}

// Frame returns the last frame and its size from one snapshot, so the
// size matches the pixels even while the core's loop keeps publishing.
// Cores that cannot snapshot both are read in a single turn instead.
func (m *Mango) Frame(ctx context.Context) (Frame, error) {
	return call(ctx, m.h, func(c emucore.Core) Frame {
		if fr, ok := c.(emucore.FrameReader); ok {
			pixels, w, h := fr.Frame()
			return Frame{Pixels: pixels, Width: w, Height: h}
		}
		f := Frame{Pixels: c.VideoBuffer()}
		if fs, ok := c.(emucore.FrameSizer); ok {
			f.Width, f.Height = fs.FrameSize()
		}
		return f
	})
}

type result[T any] struct {
	v   T
	err error
}

// SaveState captures the core state.
func (m *Mango) SaveState(ctx context.Context) ([]byte, error) {
	r, err := call(ctx, m.h, func(c emucore.Core) result[[]byte] {
		ss, ok := c.(emucore.SaveStater)
		if !ok {
			return result[[]byte]{err: emucore.ErrUnsupported}
		}
		data, err := ss.SaveState()
		return result[[]byte]{data, err}
	})
	if err != nil {
		return nil, err
	}
	return r.v, r.err
}

// LoadState restores a captured state.
func (m *Mango) LoadState(ctx context.Context, data []byte) error {
	err, cerr := call(ctx, m.h, func(c emucore.Core) error {
		ss, ok := c.(emucore.SaveStater)
		if !ok {
			return emucore.ErrUnsupported
		}
		return ss.LoadState(data)
	})
	if cerr != nil {
		return cerr
	}
	return err
}

// Battery returns battery RAM, or nil when the cartridge has none.
func (m *Mango) Battery(ctx context.Context) ([]byte, error) {
	r, err := call(ctx, m.h, func(c emucore.Core) result[[]byte] {
		bs, ok := c.(emucore.BatterySaver)
		if !ok {
			return result[[]byte]{err: emucore.ErrUnsupported}
		}
		if !bs.HasBattery() {
			return result[[]byte]{}
		}
		return result[[]byte]{v: bs.Battery()}
	})
	if err != nil {
		return nil, err
	}
	return r.v, r.err
}

// LoadBattery restores battery RAM.
func (m *Mango) LoadBattery(ctx context.Context, data []byte) error {
	err, cerr := call(ctx, m.h, func(c emucore.Core) error {
		bs, ok := c.(emucore.BatterySaver)
		if !ok {
			return emucore.ErrUnsupported
		}
		return bs.LoadBattery(data)
	})
	if cerr != nil {
		return cerr
	}
	return err
}
