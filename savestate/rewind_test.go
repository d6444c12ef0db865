package savestate

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewRewindBuffer(t *testing.T) {
	rb := NewRewindBuffer(1, 1, 100)
	if rb == nil {
		t.Fatal("expected non-nil buffer")
	}
	if rb.Capacity() != (1*1024*1024)/100 {
		t.Errorf("capacity = %d, want %d", rb.Capacity(), (1*1024*1024)/100)
	}
	if rb.Count() != 0 {
		t.Errorf("count = %d, want 0", rb.Count())
	}
}

func TestNewRewindBufferInvalidArgs(t *testing.T) {
	tests := []struct {
		name      string
		sizeMB    int
		frameStep int
		stateSize int
	}{
		{"zero state size", 1, 1, 0},
		{"negative state size", 1, 1, -1},
		{"zero buffer size", 0, 1, 100},
		{"zero frame step", 1, 0, 100},
		{"state larger than buffer", 1, 1, 2 * 1024 * 1024},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rb := NewRewindBuffer(tt.sizeMB, tt.frameStep, tt.stateSize); rb != nil {
				t.Error("expected nil buffer for invalid args")
			}
		})
	}
}

func TestRewindEmpty(t *testing.T) {
	rb := NewRewindBuffer(1, 1, 100)
	if rb.Rewind(context.Background(), nil, nil, 1) {
		t.Error("expected Rewind on empty buffer to return false")
	}
}

func TestCaptureFrameStep(t *testing.T) {
	ctx := context.Background()
	rb := NewRewindBuffer(1, 3, 100)
	core := &memCore{state: []byte{0}}

	for i := 0; i < 7; i++ {
		if err := rb.Capture(ctx, core); err != nil {
			t.Fatal(err)
		}
	}
	if rb.Count() != 2 {
		t.Errorf("count = %d, want 2", rb.Count())
	}
}

func TestCaptureWraps(t *testing.T) {
	ctx := context.Background()
	// 1MB of 512KB states holds two entries.
	rb := NewRewindBuffer(1, 1, 512*1024)
	core := &memCore{}

	for i := byte(1); i <= 3; i++ {
		core.state = []byte{i}
		if err := rb.Capture(ctx, core); err != nil {
			t.Fatal(err)
		}
	}
	if rb.Count() != 2 {
		t.Fatalf("count = %d, want 2", rb.Count())
	}

	if !rb.Rewind(ctx, core, core, 1) {
		t.Fatal("rewind failed")
	}
	if diff := cmp.Diff([]byte{2}, core.state); diff != "" {
		t.Errorf("restored state mismatch (-want +got):\n%s", diff)
	}
}

func TestRewindOrder(t *testing.T) {
	ctx := context.Background()
	rb := NewRewindBuffer(1, 1, 100)
	core := &memCore{}

	for i := byte(1); i <= 5; i++ {
		core.state = []byte{i}
		if err := rb.Capture(ctx, core); err != nil {
			t.Fatal(err)
		}
	}

	for _, step := range []struct {
		count int
		want  byte
		left  int
	}{
		{1, 4, 4},
		{2, 2, 2},
		{5, 1, 0},
	} {
		if !rb.Rewind(ctx, core, core, step.count) {
			t.Fatalf("rewind %d failed", step.count)
		}
		if core.state[0] != step.want {
			t.Errorf("after rewinding %d: state = %d, want %d", step.count, core.state[0], step.want)
		}
		if rb.Count() != step.left {
			t.Errorf("after rewinding %d: count = %d, want %d", step.count, rb.Count(), step.left)
		}
	}
	if core.steps != 3 {
		t.Errorf("steps = %d, want 3", core.steps)
	}
	if rb.Rewind(ctx, core, core, 1) {
		t.Error("rewind past the oldest state should fail")
	}
}

func TestRewindBufferReset(t *testing.T) {
	rb := NewRewindBuffer(1, 1, 100)
	rb.head = 5
	rb.count = 5
	rb.frameTick = 3
	rb.buffer[0] = []byte{1, 2, 3}

	rb.Reset()

	if rb.head != 0 || rb.count != 0 || rb.frameTick != 0 {
		t.Errorf("reset left head=%d count=%d tick=%d", rb.head, rb.count, rb.frameTick)
	}
	if rb.buffer[0] != nil {
		t.Error("reset should drop stored states")
	}
}

func TestStepsForHold(t *testing.T) {
	tests := []struct {
		hold int
		want int
	}{
		{0, 0},
		{1, 1},
		{2, 0},
		{4, 1},
		{15, 0},
		{16, 1},
		{17, 0},
		{31, 1},
		{60, 1},
		{61, 2},
	}
	for _, tt := range tests {
		if got := StepsForHold(tt.hold); got != tt.want {
			t.Errorf("StepsForHold(%d) = %d, want %d", tt.hold, got, tt.want)
		}
	}
}
