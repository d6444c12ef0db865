package savestate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	emucore "github.com/folium-app/mango/api"
	"github.com/folium-app/mango/storage"
)

// memCore keeps a state and battery RAM in memory.
type memCore struct {
	state   []byte
	loaded  [][]byte
	battery []byte
	steps   int
	err     error
}

func (c *memCore) SaveState(ctx context.Context) ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}
	return append([]byte(nil), c.state...), nil
}

func (c *memCore) LoadState(ctx context.Context, data []byte) error {
	if c.err != nil {
		return c.err
	}
	c.loaded = append(c.loaded, data)
	c.state = data
	return nil
}

func (c *memCore) Battery(ctx context.Context) ([]byte, error) {
	if c.battery == nil {
		return nil, emucore.ErrUnsupported
	}
	return c.battery, nil
}

func (c *memCore) LoadBattery(ctx context.Context, data []byte) error {
	if c.battery == nil {
		return emucore.ErrUnsupported
	}
	c.battery = data
	return nil
}

func (c *memCore) Step(ctx context.Context) error {
	c.steps++
	return nil
}

func useTempStorage(t *testing.T) {
	t.Helper()
	storage.SetBaseDir(t.TempDir())
	t.Cleanup(func() { storage.SetBaseDir("") })
}

func TestNewManager(t *testing.T) {
	m := NewManager(nil)
	if m.Slot() != 0 {
		t.Errorf("initial slot should be 0, got %d", m.Slot())
	}
	if m.HasResumeState() {
		t.Error("should not have resume state with no game set")
	}
}

func TestNextSlot(t *testing.T) {
	m := NewManager(nil)
	for i := 1; i <= 10; i++ {
		m.NextSlot()
		if want := i % 10; m.Slot() != want {
			t.Errorf("after %d NextSlot calls, expected slot %d, got %d", i, want, m.Slot())
		}
	}
}

func TestPreviousSlot(t *testing.T) {
	m := NewManager(nil)

	m.PreviousSlot()
	if m.Slot() != 9 {
		t.Errorf("expected slot 9, got %d", m.Slot())
	}

	expected := []int{8, 7, 6, 5, 4, 3, 2, 1, 0}
	for i, exp := range expected {
		m.PreviousSlot()
		if m.Slot() != exp {
			t.Errorf("step %d: expected slot %d, got %d", i, exp, m.Slot())
		}
	}
}

func TestSetGameResetsSlot(t *testing.T) {
	m := NewManager(nil)
	for i := 0; i < 3; i++ {
		m.NextSlot()
	}
	m.SetGame("aabbccdd")
	if m.Slot() != 0 {
		t.Errorf("expected slot 0 after SetGame, got %d", m.Slot())
	}
}

func TestNotifications(t *testing.T) {
	useTempStorage(t)

	var got []string
	m := NewManager(func(msg string) { got = append(got, msg) })
	m.SetGame("aabbccdd")
	core := &memCore{state: []byte("state")}

	m.NextSlot()
	if err := m.Save(context.Background(), core); err != nil {
		t.Fatal(err)
	}
	m.NextSlot()
	if err := m.Load(context.Background(), core); err == nil {
		t.Error("expected error loading an empty slot")
	}

	want := []string{"Slot 1", "State saved to slot 1", "Slot 2", "No save in slot 2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveLoadSlot(t *testing.T) {
	useTempStorage(t)
	ctx := context.Background()

	m := NewManager(nil)
	m.SetGame("12345678")
	core := &memCore{state: []byte{1, 2, 3}}

	if err := m.Save(ctx, core); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(storage.GetGameSaveDir("12345678"), "state-0.state")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("state file missing: %v", err)
	}

	core.state = []byte{9}
	if err := m.Load(ctx, core); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{1, 2, 3}, core.state); diff != "" {
		t.Errorf("restored state mismatch (-want +got):\n%s", diff)
	}
}

func TestNoGame(t *testing.T) {
	ctx := context.Background()
	m := NewManager(nil)
	core := &memCore{}

	if err := m.Save(ctx, core); !errors.Is(err, ErrNoGame) {
		t.Errorf("Save err = %v, want ErrNoGame", err)
	}
	if err := m.Load(ctx, core); !errors.Is(err, ErrNoGame) {
		t.Errorf("Load err = %v, want ErrNoGame", err)
	}
	if err := m.SaveBattery(ctx, core); !errors.Is(err, ErrNoGame) {
		t.Errorf("SaveBattery err = %v, want ErrNoGame", err)
	}
	if err := m.LoadBattery(ctx, core); err != nil {
		t.Errorf("LoadBattery err = %v, want nil", err)
	}
}

func TestSaveFailure(t *testing.T) {
	useTempStorage(t)

	m := NewManager(nil)
	m.SetGame("aabbccdd")
	boom := errors.New("boom")

	if err := m.Save(context.Background(), &memCore{err: boom}); !errors.Is(err, boom) {
		t.Errorf("Save err = %v, want wrapped boom", err)
	}
}

func TestResume(t *testing.T) {
	useTempStorage(t)
	ctx := context.Background()

	m := NewManager(nil)
	m.SetGame("aabbccdd")
	if m.HasResumeState() {
		t.Fatal("resume state should not exist yet")
	}

	core := &memCore{state: []byte("resume")}
	if err := m.SaveResume(ctx, core); err != nil {
		t.Fatal(err)
	}
	if !m.HasResumeState() {
		t.Fatal("resume state should exist")
	}

	core.state = nil
	if err := m.LoadResume(ctx, core); err != nil {
		t.Fatal(err)
	}
	if string(core.state) != "resume" {
		t.Errorf("state = %q, want %q", core.state, "resume")
	}
}

func TestBattery(t *testing.T) {
	useTempStorage(t)
	ctx := context.Background()

	m := NewManager(nil)
	m.SetGame("aabbccdd")

	t.Run("no battery", func(t *testing.T) {
		core := &memCore{}
		if err := m.SaveBattery(ctx, core); err != nil {
			t.Fatal(err)
		}
		path := filepath.Join(storage.GetGameSaveDir("aabbccdd"), "cart.srm")
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("cart.srm should not be written, stat err = %v", err)
		}
		if err := m.LoadBattery(ctx, core); err != nil {
			t.Errorf("LoadBattery err = %v", err)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		core := &memCore{battery: []byte{0xAA, 0x55}}
		if err := m.SaveBattery(ctx, core); err != nil {
			t.Fatal(err)
		}
		core.battery = []byte{0}
		if err := m.LoadBattery(ctx, core); err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]byte{0xAA, 0x55}, core.battery); diff != "" {
			t.Errorf("battery mismatch (-want +got):\n%s", diff)
		}
	})
}
