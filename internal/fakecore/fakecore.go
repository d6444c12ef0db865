// Package fakecore provides an emucore.Core that records every call, for
// testing the layers above a native core.
package fakecore

import (
	"sync"

	emucore "github.com/folium-app/mango/api"
)

// Call is one recorded method invocation.
type Call struct {
	Method string
	Args   []any
}

// Core records calls and answers from its exported fields. Set the fields
// before handing the core out.
type Core struct {
	InsertErr  error
	RomType    emucore.RomType
	RegionName string
	TitleName  string
	Video      []byte
	Audio      []int16
	Width      int
	Height     int
	State      []byte
	StateErr   error
	SaveRAM    []byte

	mu      sync.Mutex
	calls   []Call
	paused  bool
	running bool
	onFrame emucore.FramebufferFunc
	onAudio emucore.AudioFunc
	closed  bool
	loaded  []byte
	battery []byte
}

// New returns a core answering NTSC with empty buffers.
func New() *Core {
	return &Core{RomType: emucore.RomTypeNTSC}
}

func (c *Core) record(method string, args ...any) {
	c.mu.Lock()
	c.calls = append(c.calls, Call{Method: method, Args: args})
	c.mu.Unlock()
}

// Calls returns the calls recorded so far.
func (c *Core) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// ClearCalls forgets recorded calls.
func (c *Core) ClearCalls() {
	c.mu.Lock()
	c.calls = nil
	c.mu.Unlock()
}

// Closed reports whether Close was called.
func (c *Core) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// LoadedState returns the data passed to the last LoadState.
func (c *Core) LoadedState() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// LoadedBattery returns the data passed to the last LoadBattery.
func (c *Core) LoadedBattery() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.battery
}

// EmitFrame delivers Video and Audio to the installed callbacks, the way a
// core does at the end of a frame.
func (c *Core) EmitFrame() {
	c.mu.Lock()
	onFrame, onAudio := c.onFrame, c.onAudio
	c.mu.Unlock()

	if onFrame != nil {
		onFrame(c.Video, c.Width, c.Height)
	}
	if onAudio != nil {
		onAudio(c.Audio)
	}
}

func (c *Core) Insert(path string) error {
	c.record("Insert", path)
	return c.InsertErr
}

func (c *Core) Start() {
	c.record("Start")
	c.mu.Lock()
	c.running = true
	c.mu.Unlock()
}

func (c *Core) Stop() {
	c.record("Stop")
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
}

func (c *Core) Reset() { c.record("Reset") }

// Step records the call and emits a frame.
func (c *Core) Step() {
	c.record("Step")
	c.EmitFrame()
}

func (c *Core) Pause(paused bool) {
	c.record("Pause", paused)
	c.mu.Lock()
	c.paused = paused
	c.mu.Unlock()
}

func (c *Core) IsPaused() bool {
	c.record("IsPaused")
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

func (c *Core) Running() bool {
	c.record("Running")
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Core) Type() emucore.RomType {
	c.record("Type")
	return c.RomType
}

func (c *Core) Region(path string) string {
	c.record("Region", path)
	return c.RegionName
}

func (c *Core) Title(path string) string {
	c.record("Title", path)
	return c.TitleName
}

func (c *Core) Button(b emucore.Button, player int, pressed bool) {
	c.record("Button", b, player, pressed)
}

func (c *Core) SetFramebufferCallback(fn emucore.FramebufferFunc) {
	c.record("SetFramebufferCallback")
	c.mu.Lock()
	c.onFrame = fn
	c.mu.Unlock()
}

func (c *Core) SetAudioCallback(fn emucore.AudioFunc) {
	c.record("SetAudioCallback")
	c.mu.Lock()
	c.onAudio = fn
	c.mu.Unlock()
}

func (c *Core) VideoBuffer() []byte {
	c.record("VideoBuffer")
	return c.Video
}

func (c *Core) AudioBuffer() []int16 {
	c.record("AudioBuffer")
	return c.Audio
}

func (c *Core) FrameSize() (int, int) {
	c.record("FrameSize")
	return c.Width, c.Height
}

func (c *Core) Frame() ([]byte, int, int) {
	c.record("Frame")
	return c.Video, c.Width, c.Height
}

func (c *Core) SaveState() ([]byte, error) {
	c.record("SaveState")
	return c.State, c.StateErr
}

func (c *Core) LoadState(data []byte) error {
	c.record("LoadState", data)
	c.mu.Lock()
	c.loaded = data
	c.mu.Unlock()
	return c.StateErr
}

func (c *Core) HasBattery() bool {
	c.record("HasBattery")
	return c.SaveRAM != nil
}

func (c *Core) Battery() []byte {
	c.record("Battery")
	return c.SaveRAM
}

func (c *Core) LoadBattery(data []byte) error {
	c.record("LoadBattery", data)
	c.mu.Lock()
	c.battery = data
	c.mu.Unlock()
	return nil
}

func (c *Core) Close() error {
	c.record("Close")
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}
