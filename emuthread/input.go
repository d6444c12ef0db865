// Package emuthread holds the state exchanged between a core's execution
// loop and the goroutines driving it: controller input, finished frames and
// audio, and the pause/stop handshake.
package emuthread

import (
	"sync/atomic"

	emucore "github.com/folium-app/mango/api"
)

// MaxPlayers is the number of controller ports.
const MaxPlayers = 2

// SharedInput holds one button bitmask per player. It is written by input
// producers and read by the execution loop once per poll.
type SharedInput struct {
	buttons [MaxPlayers]atomic.Uint32
}

// Set presses or releases one button. Players outside the controller ports
// are ignored.
func (si *SharedInput) Set(player int, b emucore.Button, pressed bool) {
	if player < 0 || player >= MaxPlayers || !b.Valid() {
		return
	}
	if pressed {
		si.buttons[player].Or(b.Mask())
	} else {
		si.buttons[player].And(^b.Mask())
	}
}

// SetMask replaces the whole button state of a player.
func (si *SharedInput) SetMask(player int, mask uint32) {
	if player < 0 || player >= MaxPlayers {
		return
	}
	si.buttons[player].Store(mask)
}

// Pressed reports whether b is held by player.
func (si *SharedInput) Pressed(player int, b emucore.Button) bool {
	if player < 0 || player >= MaxPlayers || !b.Valid() {
		return false
	}
	return si.buttons[player].Load()&b.Mask() != 0
}

// Read returns the current button bitmasks for all players.
func (si *SharedInput) Read() [MaxPlayers]uint32 {
	var out [MaxPlayers]uint32
	for i := range out {
		out[i] = si.buttons[i].Load()
	}
	return out
}

// Clear releases every button.
func (si *SharedInput) Clear() {
	for i := range si.buttons {
		si.buttons[i].Store(0)
	}
}
