package emuthread

import "sync"

// EmuControl coordinates pause, resume and stop between the goroutines
// driving a core and its execution loop.
type EmuControl struct {
	mu      sync.Mutex
	cond    *sync.Cond
	active  bool // execution loop is running
	pauseRq bool
	paused  bool // loop acknowledged the pause
	stopRq  bool
}

// NewEmuControl creates a new emulation control.
func NewEmuControl() *EmuControl {
	ec := &EmuControl{}
	ec.cond = sync.NewCond(&ec.mu)
	return ec
}

// Begin marks the execution loop as started. It must be called before the
// loop goroutine is spawned. A pending pause request is kept.
func (ec *EmuControl) Begin() {
	ec.mu.Lock()
	ec.active = true
	ec.stopRq = false
	ec.paused = false
	ec.mu.Unlock()
}

// End is called by the execution loop when it returns.
func (ec *EmuControl) End() {
	ec.mu.Lock()
	ec.active = false
	ec.paused = false
	ec.cond.Broadcast()
	ec.mu.Unlock()
}

// RequestPause asks the execution loop to pause and, while the loop runs,
// blocks until it acknowledged.
func (ec *EmuControl) RequestPause() {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	ec.pauseRq = true
	for ec.active && !ec.paused && !ec.stopRq {
		ec.cond.Wait()
	}
}

// RequestResume releases a paused execution loop.
func (ec *EmuControl) RequestResume() {
	ec.mu.Lock()
	ec.pauseRq = false
	ec.cond.Broadcast()
	ec.mu.Unlock()
}

// CheckPause is called by the execution loop between frames. It parks the
// loop while a pause is requested and returns false once the loop must
// exit.
func (ec *EmuControl) CheckPause() bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	for ec.pauseRq && !ec.stopRq {
		if !ec.paused {
			ec.paused = true
			ec.cond.Broadcast()
		}
		ec.cond.Wait()
	}
	ec.paused = false
	return !ec.stopRq
}

// Stop signals the execution loop to exit. It does not wait.
func (ec *EmuControl) Stop() {
	ec.mu.Lock()
	ec.stopRq = true
	ec.cond.Broadcast()
	ec.mu.Unlock()
}

// Wait blocks until the execution loop has returned.
func (ec *EmuControl) Wait() {
	ec.mu.Lock()
	for ec.active {
		ec.cond.Wait()
	}
	ec.mu.Unlock()
}

// ShouldRun reports whether the execution loop should keep going.
func (ec *EmuControl) ShouldRun() bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return !ec.stopRq
}

// Active reports whether the execution loop is running.
func (ec *EmuControl) Active() bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return ec.active
}

// IsPaused reports whether a pause is in effect.
func (ec *EmuControl) IsPaused() bool {
	ec.mu.Lock()
	defer ec.mu.Unlock()
	return ec.pauseRq
}
