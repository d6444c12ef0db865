package savestate

import (
	"context"
	"fmt"
)

// Stepper runs a single frame, such as mango.Mango.
type Stepper interface {
	Step(ctx context.Context) error
}

// RewindBuffer stores serialized states in a ring buffer. States are
// captured every frameStep frames and popped newest first.
type RewindBuffer struct {
	buffer    [][]byte
	head      int // next write position
	count     int
	capacity  int
	frameStep int
	frameTick int
	rewinding bool
}

// NewRewindBuffer allocates a ring buffer sized to fit bufferSizeMB worth
// of states of stateSize bytes. It returns nil when any argument is not
// positive.
func NewRewindBuffer(bufferSizeMB, frameStep, stateSize int) *RewindBuffer {
	if stateSize <= 0 || bufferSizeMB <= 0 || frameStep <= 0 {
		return nil
	}
	capacity := (bufferSizeMB * 1024 * 1024) / stateSize
	if capacity == 0 {
		return nil
	}
	return &RewindBuffer{
		buffer:    make([][]byte, capacity),
		capacity:  capacity,
		frameStep: frameStep,
	}
}

// Capture stores the current state every frameStep calls. Call it once per
// displayed frame.
func (rb *RewindBuffer) Capture(ctx context.Context, s Stater) error {
	rb.frameTick++
	if rb.frameTick < rb.frameStep {
		return nil
	}
	rb.frameTick = 0

	state, err := s.SaveState(ctx)
	if err != nil {
		return fmt.Errorf("rewind capture: %w", err)
	}

	rb.buffer[rb.head] = state
	rb.head = (rb.head + 1) % rb.capacity
	if rb.count < rb.capacity {
		rb.count++
	}
	return nil
}

// Rewind drops count states and restores the newest remaining one, then
// steps one frame so the framebuffer shows it. It returns false when the
// buffer is empty or the restore fails.
func (rb *RewindBuffer) Rewind(ctx context.Context, s Stater, step Stepper, count int) bool {
	if rb.count == 0 || count <= 0 {
		return false
	}
	if count > rb.count {
		count = rb.count
	}

	rb.head = (rb.head - count + rb.capacity) % rb.capacity
	rb.count -= count

	// head-1 holds the newest entry; with count at zero the last popped
	// entry is still in place and is restored instead.
	idx := (rb.head - 1 + rb.capacity) % rb.capacity
	if rb.count == 0 {
		idx = rb.head
	}
	state := rb.buffer[idx]
	if state == nil {
		return false
	}

	if err := s.LoadState(ctx, state); err != nil {
		return false
	}
	if err := step.Step(ctx); err != nil {
		return false
	}
	return true
}

// Reset clears the buffer. Call it on game launch and after loading a state.
func (rb *RewindBuffer) Reset() {
	rb.head = 0
	rb.count = 0
	rb.frameTick = 0
	for i := range rb.buffer {
		rb.buffer[i] = nil
	}
}

func (rb *RewindBuffer) IsRewinding() bool {
	return rb.rewinding
}

func (rb *RewindBuffer) SetRewinding(v bool) {
	rb.rewinding = v
}

// Count returns the number of stored states.
func (rb *RewindBuffer) Count() int {
	return rb.count
}

// Capacity returns the maximum number of stored states.
func (rb *RewindBuffer) Capacity() int {
	return rb.capacity
}

// StepsForHold returns how many states to rewind on a frame where the
// rewind key has been held for holdFrames frames. Rewinding starts slow and
// speeds up the longer the key is held:
//
//	1       single step
//	2-15    every 4th frame
//	16-30   every 2nd frame
//	31-60   every frame
//	61+     two per frame
func StepsForHold(holdFrames int) int {
	switch {
	case holdFrames <= 0:
		return 0
	case holdFrames == 1:
		return 1
	case holdFrames <= 15:
		if holdFrames%4 == 0 {
			return 1
		}
		return 0
	case holdFrames <= 30:
		if holdFrames%2 == 0 {
			return 1
		}
		return 0
	case holdFrames <= 60:
		return 1
	default:
		return 2
	}
}
