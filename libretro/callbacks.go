//go:build darwin || linux

package libretro

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"
)

// active is the open core. libretro callbacks carry no user data, so the
// trampolines below route every call to it.
var active atomic.Pointer[Core]

var (
	callbacksOnce sync.Once

	cbEnvironment      uintptr
	cbVideoRefresh     uintptr
	cbAudioSample      uintptr
	cbAudioSampleBatch uintptr
	cbInputPoll        uintptr
	cbInputState       uintptr
)

// registerCallbacks creates the C callable trampolines. purego never frees
// callbacks, so they are created once per process.
func registerCallbacks() {
	callbacksOnce.Do(func() {
		cbEnvironment = purego.NewCallback(environmentCallback)
		cbVideoRefresh = purego.NewCallback(videoRefreshCallback)
		cbAudioSample = purego.NewCallback(audioSampleCallback)
		cbAudioSampleBatch = purego.NewCallback(audioSampleBatchCallback)
		cbInputPoll = purego.NewCallback(inputPollCallback)
		cbInputState = purego.NewCallback(inputStateCallback)
	})
}

func environmentCallback(cmd uint32, data unsafe.Pointer) bool {
	if c := active.Load(); c != nil {
		return c.environment(cmd, data)
	}
	return false
}

func videoRefreshCallback(data unsafe.Pointer, width, height uint32, pitch uintptr) {
	if c := active.Load(); c != nil {
		c.videoRefresh(data, width, height, pitch)
	}
}

func audioSampleCallback(left, right int16) {
	if c := active.Load(); c != nil {
		c.audioSample(left, right)
	}
}

func audioSampleBatchCallback(data *int16, frames uintptr) uintptr {
	if c := active.Load(); c != nil {
		return c.audioSampleBatch(data, frames)
	}
	return frames
}

func inputPollCallback() {}

func inputStateCallback(port, device, index, id uint32) int16 {
	if c := active.Load(); c != nil {
		return c.inputState(port, device, index, id)
	}
	return 0
}
