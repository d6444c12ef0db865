package mango

import (
	"context"

	emucore "github.com/folium-app/mango/api"
)

// Bridge is the synchronous facade for callers without a context, such as
// mobile bindings. It shares the owner goroutine with every other facade of
// the handle. After Close, queries return zero values.
type Bridge struct {
	h *Handle
}

func (b *Bridge) m() *Mango {
	return &Mango{h: b.h}
}

// InsertCartridge loads the cartridge at path.
func (b *Bridge) InsertCartridge(path string) error {
	return b.m().Insert(context.Background(), path)
}

// Start begins free-running emulation.
func (b *Bridge) Start() {
	b.m().Start(context.Background())
}

// Stop halts emulation.
func (b *Bridge) Stop() {
	b.m().Stop(context.Background())
}

// Reset soft resets the cartridge.
func (b *Bridge) Reset() {
	b.m().Reset(context.Background())
}

// Step runs one frame.
func (b *Bridge) Step() {
	b.m().Step(context.Background())
}

// Pause suspends or resumes emulation.
func (b *Bridge) Pause(paused bool) {
	b.m().Pause(context.Background(), paused)
}

// Paused reports whether emulation is paused.
func (b *Bridge) Paused() bool {
	p, _ := b.m().IsPaused(context.Background())
	return p
}

// TogglePaused inverts the pause state.
func (b *Bridge) TogglePaused() {
	b.m().TogglePaused(context.Background())
}

// Running reports whether emulation is running.
func (b *Bridge) Running() bool {
	r, _ := b.m().Running(context.Background())
	return r
}

// Type returns the video standard of the loaded cartridge.
func (b *Bridge) Type() emucore.RomType {
	t, _ := b.m().Type(context.Background())
	return t
}

// RegionForCartridge returns the region of the cartridge at path.
func (b *Bridge) RegionForCartridge(path string) string {
	r, _ := b.m().Region(context.Background(), path)
	return r
}

// TitleForCartridge returns the title of the cartridge at path.
func (b *Bridge) TitleForCartridge(path string) string {
	t, _ := b.m().Title(context.Background(), path)
	return t
}

// Button forwards one press or release.
func (b *Bridge) Button(button emucore.Button, player int, pressed bool) {
	b.m().Button(context.Background(), button, player, pressed)
}

// Framebuffer installs the frame callback.
func (b *Bridge) Framebuffer(fn emucore.FramebufferFunc) {
	b.m().Framebuffer(context.Background(), fn)
}

// Audio installs the audio callback.
func (b *Bridge) Audio(fn emucore.AudioFunc) {
	b.m().Audio(context.Background(), fn)
}

// VideoBuffer returns the last frame in RGBA.
func (b *Bridge) VideoBuffer() []byte {
	v, _ := b.m().VideoBuffer(context.Background())
	return v
}

// AudioBuffer returns the last frame of interleaved stereo samples.
func (b *Bridge) AudioBuffer() []int16 {
	a, _ := b.m().AudioBuffer(context.Background())
	return a
}

// FrameSize returns the dimensions of the last frame.
func (b *Bridge) FrameSize() (width, height int) {
	width, height, _ = b.m().FrameSize(context.Background())
	return width, height
}

// Frame returns the last frame and its size from one snapshot.
func (b *Bridge) Frame() Frame {
	f, _ := b.m().Frame(context.Background())
	return f
}

// SaveState captures the core state.
func (b *Bridge) SaveState() ([]byte, error) {
	return b.m().SaveState(context.Background())
}

// LoadState restores a captured state.
func (b *Bridge) LoadState(data []byte) error {
	return b.m().LoadState(context.Background(), data)
}

// Battery returns battery RAM.
func (b *Bridge) Battery() ([]byte, error) {
	return b.m().Battery(context.Background())
}

// LoadBattery restores battery RAM.
func (b *Bridge) LoadBattery(data []byte) error {
	return b.m().LoadBattery(context.Background(), data)
}
