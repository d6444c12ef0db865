package emuthread

import "sync"

// Frame is a snapshot of a published picture in RGBA.
type Frame struct {
	Pixels []byte
	Width  int
	Height int
	Seq    uint64 // increases by one per published frame
}

// SharedFramebuffer is a double buffer between the execution loop, which
// draws into the back buffer, and readers, which only ever see the front
// buffer. A publish swaps the two and signals Ready.
type SharedFramebuffer struct {
	mu    sync.RWMutex
	front []byte
	back  []byte
	w, h  int
	seq   uint64
	ready chan struct{}
}

// NewSharedFramebuffer allocates both buffers for pictures of at most
// width x maxHeight pixels.
func NewSharedFramebuffer(width, maxHeight int) *SharedFramebuffer {
	size := width * maxHeight * 4
	return &SharedFramebuffer{
		front: make([]byte, size),
		back:  make([]byte, size),
		ready: make(chan struct{}, 1),
	}
}

// Draw lets fill render into the back buffer, then publishes it. fill
// returns the picture dimensions; a zero size discards the frame. Draw is
// only called from the execution loop.
func (sf *SharedFramebuffer) Draw(fill func(back []byte) (width, height int)) {
	w, h := fill(sf.back)
	if w <= 0 || h <= 0 || w*h*4 > len(sf.back) {
		return
	}

	sf.mu.Lock()
	sf.front, sf.back = sf.back, sf.front
	sf.w, sf.h = w, h
	sf.seq++
	sf.mu.Unlock()

	select {
	case sf.ready <- struct{}{}:
	default:
	}
}

// Publish copies an RGBA picture into the back buffer and publishes it.
func (sf *SharedFramebuffer) Publish(pixels []byte, width, height int) {
	sf.Draw(func(back []byte) (int, int) {
		n := width * height * 4
		if n > len(pixels) || n > len(back) {
			return 0, 0
		}
		copy(back, pixels[:n])
		return width, height
	})
}

// Ready is signaled after each publish. Signals coalesce: a reader that
// falls behind sees one pending signal, not one per frame.
func (sf *SharedFramebuffer) Ready() <-chan struct{} {
	return sf.ready
}

// View calls fn with the front buffer. The slice must not be retained.
func (sf *SharedFramebuffer) View(fn func(pixels []byte, width, height int)) {
	sf.mu.RLock()
	defer sf.mu.RUnlock()
	fn(sf.front[:sf.w*sf.h*4], sf.w, sf.h)
}

// Read returns a copy of the front buffer.
func (sf *SharedFramebuffer) Read() Frame {
	sf.mu.RLock()
	defer sf.mu.RUnlock()
	return Frame{
		Pixels: append([]byte(nil), sf.front[:sf.w*sf.h*4]...),
		Width:  sf.w,
		Height: sf.h,
		Seq:    sf.seq,
	}
}

// Seq returns the number of frames published so far.
func (sf *SharedFramebuffer) Seq() uint64 {
	sf.mu.RLock()
	defer sf.mu.RUnlock()
	return sf.seq
}

// Size returns the dimensions of the front buffer.
func (sf *SharedFramebuffer) Size() (width, height int) {
	sf.mu.RLock()
	defer sf.mu.RUnlock()
	return sf.w, sf.h
}
