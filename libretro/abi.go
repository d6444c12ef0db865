//go:build darwin || linux

package libretro

import (
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"
)

const apiVersion = 1

// Environment commands understood by the frontend.
const (
	envGetOverscan         = 2
	envGetCanDupe          = 3
	envSetMessage          = 6
	envSetPerformanceLevel = 8
	envGetSystemDirectory  = 9
	envSetPixelFormat      = 10
	envSetInputDescriptors = 11
	envGetVariable         = 15
	envSetVariables        = 16
	envGetVariableUpdate   = 17
	envSetSupportNoGame    = 18
	envGetSaveDirectory    = 31
	envSetGeometry         = 37
)

const (
	deviceJoypad  = 1
	memorySaveRAM = 0
)

// Values returned by retro_get_region.
const (
	regionNTSC = 0
	regionPAL  = 1
)

type systemInfo struct {
	libraryName     *byte
	libraryVersion  *byte
	validExtensions *byte
	needFullpath    bool
	blockExtract    bool
}

type gameGeometry struct {
	baseWidth   uint32
	baseHeight  uint32
	maxWidth    uint32
	maxHeight   uint32
	aspectRatio float32
}

type systemTiming struct {
	fps        float64
	sampleRate float64
}

type systemAVInfo struct {
	geometry gameGeometry
	timing   systemTiming
}

type gameInfo struct {
	path *byte
	data unsafe.Pointer
	size uintptr
	meta *byte
}

type variable struct {
	key   *byte
	value *byte
}

type messageInfo struct {
	msg    *byte
	frames uint32
}

// api is the table of entry points exported by a libretro core.
type api struct {
	init                 func()
	deinit               func()
	apiVersion           func() uint32
	getSystemInfo        func(*systemInfo)
	getSystemAVInfo      func(*systemAVInfo)
	setEnvironment       func(uintptr)
	setVideoRefresh      func(uintptr)
	setAudioSample       func(uintptr)
	setAudioSampleBatch  func(uintptr)
	setInputPoll         func(uintptr)
	setInputState        func(uintptr)
	setControllerPortDev func(port, device uint32)
	reset                func()
	run                  func()
	serializeSize        func() uintptr
	serialize            func(data unsafe.Pointer, size uintptr) bool
	unserialize          func(data unsafe.Pointer, size uintptr) bool
	loadGame             func(*gameInfo) bool
	unloadGame           func()
	getRegion            func() uint32
	getMemoryData        func(id uint32) unsafe.Pointer
	getMemorySize        func(id uint32) uintptr
}

// bind resolves every entry point of the library behind handle.
func (a *api) bind(handle uintptr) error {
	symbols := []struct {
		name string
		fn   any
	}{
		{"retro_init", &a.init},
		{"retro_deinit", &a.deinit},
		{"retro_api_version", &a.apiVersion},
		{"retro_get_system_info", &a.getSystemInfo},
		{"retro_get_system_av_info", &a.getSystemAVInfo},
		{"retro_set_environment", &a.setEnvironment},
		{"retro_set_video_refresh", &a.setVideoRefresh},
		{"retro_set_audio_sample", &a.setAudioSample},
		{"retro_set_audio_sample_batch", &a.setAudioSampleBatch},
		{"retro_set_input_poll", &a.setInputPoll},
		{"retro_set_input_state", &a.setInputState},
		{"retro_set_controller_port_device", &a.setControllerPortDev},
		{"retro_reset", &a.reset},
		{"retro_run", &a.run},
		{"retro_serialize_size", &a.serializeSize},
		{"retro_serialize", &a.serialize},
		{"retro_unserialize", &a.unserialize},
		{"retro_load_game", &a.loadGame},
		{"retro_unload_game", &a.unloadGame},
		{"retro_get_region", &a.getRegion},
		{"retro_get_memory_data", &a.getMemoryData},
		{"retro_get_memory_size", &a.getMemorySize},
	}

	for _, sym := range symbols {
		addr, err := purego.Dlsym(handle, sym.name)
		if err != nil {
			return fmt.Errorf("missing symbol %s: %w", sym.name, err)
		}
		purego.RegisterFunc(sym.fn, addr)
	}
	return nil
}

// goString copies a NUL terminated string owned by the core.
func goString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}
