package emucore

import (
	"fmt"
	"strings"
)

// Button identifies one of the twelve SNES controller buttons. The values
// match the libretro joypad IDs.
type Button int32

const (
	ButtonB Button = iota
	ButtonY
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonA
	ButtonX
	ButtonL
	ButtonR

	numButtons
)

var buttonNames = [numButtons]string{
	"B", "Y", "Select", "Start", "Up", "Down", "Left", "Right", "A", "X", "L", "R",
}

// Buttons returns every button in code order.
func Buttons() []Button {
	all := make([]Button, numButtons)
	for i := range all {
		all[i] = Button(i)
	}
	return all
}

// Valid reports whether b is one of the twelve known buttons.
func (b Button) Valid() bool {
	return b >= 0 && b < numButtons
}

// Mask returns the bit for b in a button bitmask.
func (b Button) Mask() uint32 {
	return 1 << uint32(b)
}

func (b Button) String() string {
	if !b.Valid() {
		return fmt.Sprintf("Button(%d)", int32(b))
	}
	return buttonNames[b]
}

// ParseButton returns the button with the given name, ignoring case.
func ParseButton(name string) (Button, error) {
	for i, n := range buttonNames {
		if strings.EqualFold(n, name) {
			return Button(i), nil
		}
	}
	return 0, fmt.Errorf("unknown button %q", name)
}
