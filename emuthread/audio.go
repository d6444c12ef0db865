package emuthread

import "sync"

// SharedAudio holds the interleaved stereo samples of the last frame.
type SharedAudio struct {
	mu    sync.Mutex
	front []int16
	back  []int16
}

// Publish replaces the last frame's samples with a copy of samples.
func (sa *SharedAudio) Publish(samples []int16) {
	back := append(sa.back[:0], samples...)

	sa.mu.Lock()
	sa.front, sa.back = back, sa.front
	sa.mu.Unlock()
}

// View calls fn with the last frame's samples. The slice must not be
// retained.
func (sa *SharedAudio) View(fn func(samples []int16)) {
	sa.mu.Lock()
	defer sa.mu.Unlock()
	fn(sa.front)
}

// Read returns a copy of the last frame's samples.
func (sa *SharedAudio) Read() []int16 {
	sa.mu.Lock()
	defer sa.mu.Unlock()
	return append([]int16(nil), sa.front...)
}
