//go:build darwin || linux

package libretro

import (
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
	"unsafe"

	"github.com/google/go-cmp/cmp"

	emucore "github.com/folium-app/mango/api"
)

// retroStub stands in for a core library: it answers the entry points
// with Go functions and draws a frame of the requested size on each run.
type retroStub struct {
	loadOK  bool
	runs    atomic.Int32
	unloads atomic.Int32
	resets  atomic.Int32
	deinits atomic.Int32
	width   atomic.Int32
	height  atomic.Int32
	ports   []uint32
	frame   []uint16
}

func newStubCore(t *testing.T) (*Core, *retroStub) {
	t.Helper()

	r := &retroStub{loadOK: true, frame: make([]uint16, 512*478)}
	r.width.Store(256)
	r.height.Store(224)

	c := newCore(Options{})
	c.api = api{
		deinit: func() { r.deinits.Add(1) },
		getSystemAVInfo: func(av *systemAVInfo) {
			av.geometry = gameGeometry{baseWidth: 256, baseHeight: 224, maxWidth: 512, maxHeight: 478}
			av.timing = systemTiming{fps: 240, sampleRate: 32040}
		},
		setControllerPortDev: func(port, device uint32) { r.ports = append(r.ports, port) },
		reset:                func() { r.resets.Add(1) },
		run: func() {
			r.runs.Add(1)
			w, h := r.width.Load(), r.height.Load()
			c.videoRefresh(unsafe.Pointer(&r.frame[0]), uint32(w), uint32(h), uintptr(w)*2)
			c.audioSample(1, -1)
		},
		loadGame:   func(*gameInfo) bool { return r.loadOK },
		unloadGame: func() { r.unloads.Add(1) },
		getRegion:  func() uint32 { return regionPAL },
	}
	t.Cleanup(func() { c.Close() })
	return c, r
}

func writeROM(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game.sfc")
	if err := os.WriteFile(path, make([]byte, 1024), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestInsert(t *testing.T) {
	c, r := newStubCore(t)

	if err := c.Insert(writeROM(t)); err != nil {
		t.Fatal(err)
	}
	if got := c.Type(); got != emucore.RomTypePAL {
		t.Errorf("Type = %v, want PAL", got)
	}
	if got := c.FPS(); got != 240 {
		t.Errorf("FPS = %v, want 240", got)
	}
	if diff := cmp.Diff([]uint32{0, 1}, r.ports); diff != "" {
		t.Errorf("controller ports mismatch (-want +got):\n%s", diff)
	}

	// A second cartridge replaces the first.
	if err := c.Insert(writeROM(t)); err != nil {
		t.Fatal(err)
	}
	if n := r.unloads.Load(); n != 1 {
		t.Errorf("unloads = %d, want 1", n)
	}
}

func TestInsertRejected(t *testing.T) {
	c, r := newStubCore(t)
	r.loadOK = false

	if err := c.Insert(writeROM(t)); !errors.Is(err, ErrLoadFailed) {
		t.Fatalf("Insert err = %v, want ErrLoadFailed", err)
	}
	c.Start()
	if c.Running() {
		t.Error("Running after a rejected cartridge")
	}
	c.Step()
	if n := r.runs.Load(); n != 0 {
		t.Errorf("runs = %d, want 0", n)
	}
}

func TestStepDeliversFrameSize(t *testing.T) {
	c, r := newStubCore(t)
	if err := c.Insert(writeROM(t)); err != nil {
		t.Fatal(err)
	}

	type frame struct{ W, H, N int }
	var got []frame
	c.SetFramebufferCallback(func(pixels []byte, w, h int) {
		got = append(got, frame{w, h, len(pixels)})
	})
	var samples int
	c.SetAudioCallback(func(s []int16) { samples += len(s) })

	sizes := [][2]int32{{256, 224}, {512, 224}, {512, 448}, {256, 239}}
	for _, s := range sizes {
		r.width.Store(s[0])
		r.height.Store(s[1])
		c.Step()
	}

	want := []frame{
		{256, 224, 256 * 224 * 4},
		{512, 224, 512 * 224 * 4},
		{512, 448, 512 * 448 * 4},
		{256, 239, 256 * 239 * 4},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("frames mismatch (-want +got):\n%s", diff)
	}

	pixels, w, h := c.Frame()
	if w != 256 || h != 239 || len(pixels) != w*h*4 {
		t.Errorf("Frame = %dx%d with %d bytes", w, h, len(pixels))
	}
	if samples == 0 {
		t.Error("no audio delivered")
	}
}

func TestStartPauseStop(t *testing.T) {
	c, r := newStubCore(t)
	if err := c.Insert(writeROM(t)); err != nil {
		t.Fatal(err)
	}

	c.Start()
	if !c.Running() {
		t.Fatal("Running = false after Start")
	}
	waitFor(t, "frames", func() bool { return r.runs.Load() > 2 })

	c.Pause(true)
	if !c.IsPaused() {
		t.Error("IsPaused = false after Pause(true)")
	}
	n := r.runs.Load()
	time.Sleep(20 * time.Millisecond)
	if got := r.runs.Load(); got != n {
		t.Errorf("%d frames ran while paused", got-n)
	}

	c.Pause(false)
	waitFor(t, "resume", func() bool { return r.runs.Load() > n })

	c.Stop()
	if c.Running() {
		t.Error("Running = true after Stop")
	}
	n = r.runs.Load()
	time.Sleep(20 * time.Millisecond)
	if got := r.runs.Load(); got != n {
		t.Errorf("%d frames ran after Stop", got-n)
	}
}

func TestInsertStopsLoop(t *testing.T) {
	c, r := newStubCore(t)
	if err := c.Insert(writeROM(t)); err != nil {
		t.Fatal(err)
	}
	c.Start()
	waitFor(t, "frames", func() bool { return r.runs.Load() > 0 })

	if err := c.Insert(writeROM(t)); err != nil {
		t.Fatal(err)
	}
	if c.Running() {
		t.Error("loop still running after Insert")
	}

	c.Start()
	if !c.Running() {
		t.Error("Start after Insert did not restart the loop")
	}
}

func TestResetAndClose(t *testing.T) {
	c, r := newStubCore(t)

	c.Reset()
	if n := r.resets.Load(); n != 0 {
		t.Errorf("resets = %d without cartridge, want 0", n)
	}

	if err := c.Insert(writeROM(t)); err != nil {
		t.Fatal(err)
	}
	c.Reset()
	if n := r.resets.Load(); n != 1 {
		t.Errorf("resets = %d, want 1", n)
	}

	c.Start()
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if c.Running() {
		t.Error("Running after Close")
	}
	if r.unloads.Load() != 1 || r.deinits.Load() != 1 {
		t.Errorf("unloads = %d, deinits = %d, want 1 and 1", r.unloads.Load(), r.deinits.Load())
	}
}
