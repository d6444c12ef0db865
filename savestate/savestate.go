// Package savestate stores save states and battery RAM on disk, one
// directory per game, and keeps an in-memory rewind history.
package savestate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	emucore "github.com/folium-app/mango/api"
	"github.com/folium-app/mango/internal/log"
	"github.com/folium-app/mango/storage"
)

// NumSlots is the number of save slots per game.
const NumSlots = 10

const (
	resumeFile  = "resume.state"
	batteryFile = "cart.srm"
)

// ErrNoGame is returned when no game has been set on the manager.
var ErrNoGame = errors.New("no game set")

// Stater is the save state surface of a facade such as mango.Mango.
type Stater interface {
	SaveState(ctx context.Context) ([]byte, error)
	LoadState(ctx context.Context, data []byte) error
}

// BatteryBacked is the battery RAM surface of a facade such as mango.Mango.
type BatteryBacked interface {
	Battery(ctx context.Context) ([]byte, error)
	LoadBattery(ctx context.Context, data []byte) error
}

// Manager handles save state slots for the current game.
type Manager struct {
	currentSlot int
	gameCRC     string
	notify      func(msg string)
}

// NewManager creates a manager. notify, if not nil, receives short
// messages for the user.
func NewManager(notify func(msg string)) *Manager {
	return &Manager{notify: notify}
}

func (m *Manager) show(msg string) {
	if m.notify != nil {
		m.notify(msg)
	}
}

// SetGame selects the game, by the hex CRC32 of its image, and resets the
// slot to 0.
func (m *Manager) SetGame(gameCRC string) {
	m.gameCRC = gameCRC
	m.currentSlot = 0
}

// Slot returns the current save slot.
func (m *Manager) Slot() int {
	return m.currentSlot
}

// NextSlot cycles to the next save slot.
func (m *Manager) NextSlot() {
	m.currentSlot = (m.currentSlot + 1) % NumSlots
	m.show(fmt.Sprintf("Slot %d", m.currentSlot))
}

// PreviousSlot cycles to the previous save slot.
func (m *Manager) PreviousSlot() {
	m.currentSlot--
	if m.currentSlot < 0 {
		m.currentSlot = NumSlots - 1
	}
	m.show(fmt.Sprintf("Slot %d", m.currentSlot))
}

func (m *Manager) path(name string) (string, error) {
	if m.gameCRC == "" {
		return "", ErrNoGame
	}
	return filepath.Join(storage.GetGameSaveDir(m.gameCRC), name), nil
}

func slotFile(slot int) string {
	return fmt.Sprintf("state-%d.state", slot)
}

// Save writes the current state to the current slot.
func (m *Manager) Save(ctx context.Context, s Stater) error {
	statePath, err := m.path(slotFile(m.currentSlot))
	if err != nil {
		return err
	}

	state, err := s.SaveState(ctx)
	if err != nil {
		return fmt.Errorf("failed to serialize state: %w", err)
	}
	if err := storage.AtomicWriteFile(statePath, state); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	log.ModState.Debugf("saved %d bytes to %s", len(state), statePath)
	m.show(fmt.Sprintf("State saved to slot %d", m.currentSlot))
	return nil
}

// Load restores the state in the current slot.
func (m *Manager) Load(ctx context.Context, s Stater) error {
	statePath, err := m.path(slotFile(m.currentSlot))
	if err != nil {
		return err
	}

	state, err := os.ReadFile(statePath)
	if errors.Is(err, os.ErrNotExist) {
		m.show(fmt.Sprintf("No save in slot %d", m.currentSlot))
		return fmt.Errorf("no save in slot %d", m.currentSlot)
	}
	if err != nil {
		return fmt.Errorf("failed to read state file: %w", err)
	}

	if err := s.LoadState(ctx, state); err != nil {
		return fmt.Errorf("failed to deserialize state: %w", err)
	}

	m.show("State loaded")
	return nil
}

// SaveResume writes the state restored by LoadResume on the next launch.
func (m *Manager) SaveResume(ctx context.Context, s Stater) error {
	statePath, err := m.path(resumeFile)
	if err != nil {
		return err
	}

	state, err := s.SaveState(ctx)
	if err != nil {
		return fmt.Errorf("failed to serialize state: %w", err)
	}
	return storage.AtomicWriteFile(statePath, state)
}

// LoadResume restores the resume state.
func (m *Manager) LoadResume(ctx context.Context, s Stater) error {
	statePath, err := m.path(resumeFile)
	if err != nil {
		return err
	}

	state, err := os.ReadFile(statePath)
	if err != nil {
		return err
	}
	return s.LoadState(ctx, state)
}

// HasResumeState reports whether a resume state exists for the game.
func (m *Manager) HasResumeState() bool {
	statePath, err := m.path(resumeFile)
	if err != nil {
		return false
	}
	_, err = os.Stat(statePath)
	return err == nil
}

// SaveBattery writes the cartridge battery RAM. Cartridges without a
// battery are skipped.
func (m *Manager) SaveBattery(ctx context.Context, b BatteryBacked) error {
	sramPath, err := m.path(batteryFile)
	if err != nil {
		return err
	}

	data, err := b.Battery(ctx)
	if errors.Is(err, emucore.ErrUnsupported) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return storage.AtomicWriteFile(sramPath, data)
}

// LoadBattery restores the cartridge battery RAM. A missing file is not an
// error.
func (m *Manager) LoadBattery(ctx context.Context, b BatteryBacked) error {
	sramPath, err := m.path(batteryFile)
	if err != nil {
		return nil
	}

	data, err := os.ReadFile(sramPath)
	if err != nil {
		return nil
	}

	err = b.LoadBattery(ctx, data)
	if errors.Is(err, emucore.ErrUnsupported) {
		return nil
	}
	return err
}
