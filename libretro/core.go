//go:build darwin || linux

// Package libretro drives a libretro SNES core loaded from a shared library
// at run time and exposes it as an emucore.Core.
package libretro

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unsafe"

	"github.com/ebitengine/purego"

	emucore "github.com/folium-app/mango/api"
	"github.com/folium-app/mango/audio"
	"github.com/folium-app/mango/catalog"
	"github.com/folium-app/mango/emuthread"
	"github.com/folium-app/mango/internal/log"
	"github.com/folium-app/mango/romloader"
)

// maxLag is how far the execution loop may fall behind before it stops
// trying to catch up.
const maxLag = 4

// Core is a loaded libretro core. Only one Core can be open per process.
type Core struct {
	mu  sync.Mutex // serializes retro_* calls
	lib uintptr
	api api

	name         string
	version      string
	needFullpath bool

	catalog   *catalog.Catalog
	vars      *variables
	systemDir []byte
	saveDir   []byte

	loaded      bool
	gameData    []byte
	gamePath    []byte
	tempPath    string
	av          systemAVInfo
	romType     emucore.RomType
	pixelFormat uint32
	pending     []int16

	input     emuthread.SharedInput
	fb        *emuthread.SharedFramebuffer
	sound     emuthread.SharedAudio
	ctl       *emuthread.EmuControl
	resampler *audio.Resampler

	cbMu    sync.Mutex
	onFrame emucore.FramebufferFunc
	onAudio emucore.AudioFunc

	closed bool
}

// newCore builds a Core without binding a library.
func newCore(opts Options) *Core {
	sys := emucore.SNES()
	c := &Core{
		catalog:     opts.Catalog,
		vars:        newVariables(opts.Variables),
		pixelFormat: pixelFormat0RGB1555,
		romType:     emucore.RomTypeNTSC,
		fb:          emuthread.NewSharedFramebuffer(sys.ScreenWidth, sys.MaxScreenHeight),
		ctl:         emuthread.NewEmuControl(),
		resampler:   audio.NewResampler(audio.OutputRate),
	}
	if c.catalog == nil {
		c.catalog = catalog.New(nil)
	}
	if opts.SystemDir != "" {
		c.systemDir = cString(opts.SystemDir)
	}
	if opts.SaveDir != "" {
		c.saveDir = cString(opts.SaveDir)
	}
	return c
}

// Open loads the core library at path and initializes it.
func Open(path string, opts Options) (*Core, error) {
	c := newCore(opts)
	if !active.CompareAndSwap(nil, c) {
		return nil, ErrBusy
	}

	lib, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		active.Store(nil)
		return nil, fmt.Errorf("failed to open core %s: %w", path, err)
	}
	c.lib = lib

	if err := c.api.bind(lib); err != nil {
		c.release()
		return nil, err
	}
	if v := c.api.apiVersion(); v != apiVersion {
		c.release()
		return nil, fmt.Errorf("%w: %d", ErrIncompatible, v)
	}

	registerCallbacks()

	c.mu.Lock()
	c.api.setEnvironment(cbEnvironment)
	c.api.setVideoRefresh(cbVideoRefresh)
	c.api.setAudioSample(cbAudioSample)
	c.api.setAudioSampleBatch(cbAudioSampleBatch)
	c.api.setInputPoll(cbInputPoll)
	c.api.setInputState(cbInputState)
	c.api.init()

	var info systemInfo
	c.api.getSystemInfo(&info)
	c.name = goString(info.libraryName)
	c.version = goString(info.libraryVersion)
	c.needFullpath = info.needFullpath
	c.mu.Unlock()

	log.ModCore.WithFields(log.Fields{
		"name":     c.name,
		"version":  c.version,
		"fullpath": c.needFullpath,
	}).Info("core loaded")

	return c, nil
}

// release drops the library and the process-wide slot.
func (c *Core) release() {
	if c.lib != 0 {
		if err := purego.Dlclose(c.lib); err != nil {
			log.ModCore.WithError(err).Warn("dlclose failed")
		}
		c.lib = 0
	}
	active.CompareAndSwap(c, nil)
}

// Name returns the library name and version reported by the core.
func (c *Core) Name() (name, version string) {
	return c.name, c.version
}

// Insert loads the cartridge at path, replacing any loaded one. Archives
// are extracted and copier headers removed before the core sees the data.
func (c *Core) Insert(path string) error {
	rom, err := romloader.LoadROM(path)
	if err != nil {
		return err
	}

	c.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.unloadLocked()

	gamePath := path
	if c.needFullpath && (rom.CopierHeader || filepath.Base(path) != rom.Name) {
		gamePath, err = writeTemp(rom)
		if err != nil {
			return err
		}
		c.tempPath = gamePath
	}

	c.gameData = rom.Data
	c.gamePath = cString(gamePath)
	gi := gameInfo{
		path: &c.gamePath[0],
		size: uintptr(len(c.gameData)),
	}
	if len(c.gameData) > 0 {
		gi.data = unsafe.Pointer(&c.gameData[0])
	}

	if !c.api.loadGame(&gi) {
		c.dropGame()
		return fmt.Errorf("%w: %s", ErrLoadFailed, rom.Name)
	}

	c.api.getSystemAVInfo(&c.av)
	c.romType = emucore.RomTypeNTSC
	if c.api.getRegion() == regionPAL {
		c.romType = emucore.RomTypePAL
	}
	for port := uint32(0); port < emuthread.MaxPlayers; port++ {
		c.api.setControllerPortDev(port, deviceJoypad)
	}

	maxW, maxH := int(c.av.geometry.maxWidth), int(c.av.geometry.maxHeight)
	if maxW > 0 && maxH > 0 {
		c.fb = emuthread.NewSharedFramebuffer(maxW, maxH)
	}
	c.resampler.SetInputRate(c.av.timing.sampleRate)
	c.pending = c.pending[:0]
	c.input.Clear()
	c.loaded = true

	log.ModCore.WithFields(log.Fields{
		"rom":  rom.Name,
		"crc":  fmt.Sprintf("%08x", rom.CRC32),
		"type": c.romType,
		"fps":  c.av.timing.fps,
		"rate": c.av.timing.sampleRate,
	}).Info("cartridge inserted")

	return nil
}

func writeTemp(rom *romloader.ROM) (string, error) {
	f, err := os.CreateTemp("", "mango-*-"+rom.Name)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := f.Write(rom.Data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// unloadLocked unloads the current cartridge. c.mu must be held.
func (c *Core) unloadLocked() {
	if !c.loaded {
		return
	}
	c.api.unloadGame()
	c.loaded = false
	c.dropGame()
}

func (c *Core) dropGame() {
	c.gameData = nil
	c.gamePath = nil
	if c.tempPath != "" {
		os.Remove(c.tempPath)
		c.tempPath = ""
	}
}

func (c *Core) isLoaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Start launches the execution loop. It does nothing without a cartridge
// or while the loop already runs.
func (c *Core) Start() {
	if !c.isLoaded() {
		log.ModEmu.Warnf("start without cartridge")
		return
	}
	if c.ctl.Active() {
		return
	}
	c.ctl.Begin()
	go c.loop()
}

// Stop halts the execution loop and waits for it to return.
func (c *Core) Stop() {
	c.ctl.Stop()
	c.ctl.Wait()
}

// Reset performs a soft reset.
func (c *Core) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		c.api.reset()
	}
}

// Step runs a single frame on the calling goroutine.
func (c *Core) Step() {
	c.runFrame()
}

// Pause suspends or resumes the execution loop.
func (c *Core) Pause(paused bool) {
	if paused {
		c.ctl.RequestPause()
	} else {
		c.ctl.RequestResume()
	}
}

// IsPaused reports whether a pause is in effect.
func (c *Core) IsPaused() bool {
	return c.ctl.IsPaused()
}

// Running reports whether the execution loop is active.
func (c *Core) Running() bool {
	return c.ctl.Active() && c.ctl.ShouldRun()
}

// Type returns the video standard reported by the core.
func (c *Core) Type() emucore.RomType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.romType
}

// Region returns the region of the cartridge at path.
func (c *Core) Region(path string) string {
	return c.catalog.Region(path)
}

// Title returns the title of the cartridge at path.
func (c *Core) Title(path string) string {
	return c.catalog.Title(path)
}

// Button presses or releases b for player.
func (c *Core) Button(b emucore.Button, player int, pressed bool) {
	c.input.Set(player, b, pressed)
}

// SetFramebufferCallback installs the function receiving each frame. It
// runs on the goroutine executing the frame and must not call back into
// the core.
func (c *Core) SetFramebufferCallback(fn emucore.FramebufferFunc) {
	c.cbMu.Lock()
	c.onFrame = fn
	c.cbMu.Unlock()
}

// SetAudioCallback installs the function receiving each frame's samples.
func (c *Core) SetAudioCallback(fn emucore.AudioFunc) {
	c.cbMu.Lock()
	c.onAudio = fn
	c.cbMu.Unlock()
}

// VideoBuffer returns a copy of the last frame in RGBA.
func (c *Core) VideoBuffer() []byte {
	return c.framebuffer().Read().Pixels
}

// AudioBuffer returns a copy of the last frame's samples at 48 kHz.
func (c *Core) AudioBuffer() []int16 {
	return c.sound.Read()
}

// FrameSize returns the dimensions of the last frame.
func (c *Core) FrameSize() (int, int) {
	return c.framebuffer().Size()
}

// Frame returns a copy of the last frame with its dimensions.
func (c *Core) Frame() ([]byte, int, int) {
	f := c.framebuffer().Read()
	return f.Pixels, f.Width, f.Height
}

func (c *Core) framebuffer() *emuthread.SharedFramebuffer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fb
}

// FPS returns the frame rate of the loaded cartridge.
func (c *Core) FPS() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.av.timing.fps > 0 {
		return c.av.timing.fps
	}
	return float64(c.romType.Timing().FPS)
}

// CoreOptions returns the options declared by the core.
func (c *Core) CoreOptions() []emucore.CoreOption {
	return c.vars.options()
}

// SetOption changes a core option. The core picks it up on its next frame.
func (c *Core) SetOption(key, value string) {
	c.vars.set(key, value)
}

// SaveState serializes the complete core state.
func (c *Core) SaveState() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		return nil, emucore.ErrNoCartridge
	}

	size := c.api.serializeSize()
	if size == 0 {
		return nil, emucore.ErrUnsupported
	}
	buf := make([]byte, size)
	if !c.api.serialize(unsafe.Pointer(&buf[0]), size) {
		return nil, errors.New("libretro: serialize failed")
	}
	return buf, nil
}

// LoadState restores state captured by SaveState.
func (c *Core) LoadState(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		return emucore.ErrNoCartridge
	}
	if len(data) == 0 {
		return errors.New("libretro: empty state")
	}
	if !c.api.unserialize(unsafe.Pointer(&data[0]), uintptr(len(data))) {
		return errors.New("libretro: unserialize failed")
	}
	c.pending = c.pending[:0]
	c.resampler.Clear()
	return nil
}

// saveRAM returns the core's battery RAM. c.mu must be held.
func (c *Core) saveRAM() []byte {
	if !c.loaded {
		return nil
	}
	size := c.api.getMemorySize(memorySaveRAM)
	ptr := c.api.getMemoryData(memorySaveRAM)
	if size == 0 || ptr == nil {
		return nil
	}
	return unsafe.Slice((*byte)(ptr), size)
}

// HasBattery reports whether the cartridge has battery backed RAM.
func (c *Core) HasBattery() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.saveRAM()) > 0
}

// Battery returns a copy of battery RAM.
func (c *Core) Battery() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.saveRAM()...)
}

// LoadBattery copies data into battery RAM.
func (c *Core) LoadBattery(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		return emucore.ErrNoCartridge
	}
	ram := c.saveRAM()
	if ram == nil {
		return emucore.ErrUnsupported
	}
	if len(data) != len(ram) {
		log.ModState.Warnf("battery size mismatch: have %d bytes, core expects %d", len(data), len(ram))
	}
	copy(ram, data)
	return nil
}

// Close stops emulation, unloads the cartridge and releases the library.
func (c *Core) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.Stop()

	c.mu.Lock()
	c.unloadLocked()
	c.api.deinit()
	c.mu.Unlock()

	c.release()
	return nil
}

// loop runs frames at the cartridge frame rate until stopped.
func (c *Core) loop() {
	defer c.ctl.End()

	frameTime := time.Duration(float64(time.Second) / c.FPS())
	next := time.Now()

	for {
		if !c.ctl.CheckPause() {
			return
		}

		c.runFrame()

		next = next.Add(frameTime)
		sleepTime := time.Until(next)
		if sleepTime > time.Millisecond {
			time.Sleep(sleepTime)
		} else if sleepTime < -maxLag*frameTime {
			next = time.Now()
		}
	}
}

// runFrame runs one frame and delivers its picture and samples.
func (c *Core) runFrame() {
	c.mu.Lock()
	if !c.loaded {
		c.mu.Unlock()
		return
	}
	c.api.run()
	c.sound.Publish(c.resampler.Process(c.pending))
	c.pending = c.pending[:0]
	fb := c.fb
	c.mu.Unlock()

	c.cbMu.Lock()
	onFrame, onAudio := c.onFrame, c.onAudio
	c.cbMu.Unlock()

	if onFrame != nil {
		fb.View(onFrame)
	}
	if onAudio != nil {
		c.sound.View(onAudio)
	}
}

// The methods below run inside retro_* calls with c.mu held.

func (c *Core) environment(cmd uint32, data unsafe.Pointer) bool {
	switch cmd {
	case envGetCanDupe:
		if data != nil {
			*(*bool)(data) = true
		}
		return true

	case envGetOverscan:
		if data != nil {
			*(*bool)(data) = false
		}
		return true

	case envSetPixelFormat:
		format := *(*uint32)(data)
		if format > pixelFormatRGB565 {
			log.ModVideo.Warnf("unsupported pixel format %d", format)
			return false
		}
		c.pixelFormat = format
		log.ModVideo.Debugf("pixel format %d", format)
		return true

	case envGetSystemDirectory:
		return setDirectory(data, c.systemDir)

	case envGetSaveDirectory:
		return setDirectory(data, c.saveDir)

	case envGetVariable:
		v := (*variable)(data)
		val := c.vars.get(goString(v.key))
		if val == nil {
			v.value = nil
			return false
		}
		v.value = &val[0]
		return true

	case envSetVariables:
		for v := (*variable)(data); v.key != nil; v = (*variable)(unsafe.Add(unsafe.Pointer(v), unsafe.Sizeof(variable{}))) {
			c.vars.declare(goString(v.key), goString(v.value))
		}
		return true

	case envGetVariableUpdate:
		*(*bool)(data) = c.vars.takeUpdate()
		return true

	case envSetMessage:
		if m := (*messageInfo)(data); m != nil {
			log.ModCore.Infof("%s", goString(m.msg))
		}
		return true

	case envSetGeometry:
		if g := (*gameGeometry)(data); g != nil {
			c.av.geometry.baseWidth = g.baseWidth
			c.av.geometry.baseHeight = g.baseHeight
			c.av.geometry.aspectRatio = g.aspectRatio
		}
		return true

	case envSetInputDescriptors, envSetPerformanceLevel, envSetSupportNoGame:
		return true
	}

	log.ModCore.Debugf("unhandled environment command %d", cmd)
	return false
}

func setDirectory(data unsafe.Pointer, dir []byte) bool {
	if data == nil || len(dir) == 0 {
		return false
	}
	*(**byte)(data) = &dir[0]
	return true
}

func (c *Core) videoRefresh(data unsafe.Pointer, width, height uint32, pitch uintptr) {
	// A nil frame is a dupe: the previous frame stays published.
	if data == nil || width == 0 || height == 0 {
		return
	}

	w, h, p := int(width), int(height), int(pitch)
	src := unsafe.Slice((*byte)(data), p*(h-1)+w*bytesPerPixel(c.pixelFormat))
	c.fb.Draw(func(back []byte) (int, int) {
		if w*h*4 > len(back) {
			log.ModVideo.Warnf("frame %dx%d exceeds framebuffer", w, h)
			return 0, 0
		}
		convertFrame(back, src, w, h, p, c.pixelFormat)
		return w, h
	})
}

func (c *Core) audioSample(left, right int16) {
	c.pending = append(c.pending, left, right)
}

func (c *Core) audioSampleBatch(data *int16, frames uintptr) uintptr {
	if data == nil || frames == 0 {
		return 0
	}
	c.pending = append(c.pending, unsafe.Slice(data, int(frames)*2)...)
	return frames
}

func (c *Core) inputState(port, device, index, id uint32) int16 {
	if device != deviceJoypad || port >= emuthread.MaxPlayers {
		return 0
	}
	if c.input.Pressed(int(port), emucore.Button(id)) {
		return 1
	}
	return 0
}
