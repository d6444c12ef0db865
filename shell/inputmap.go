package shell

import (
	"github.com/hajimehoshi/ebiten/v2"

	emucore "github.com/folium-app/mango/api"
)

// InputMapping maps controller buttons to keyboard keys and gamepad buttons.
type InputMapping struct {
	Keys    map[emucore.Button]ebiten.Key
	Gamepad map[emucore.Button]ebiten.StandardGamepadButton
}

var keyNameMap = map[string]ebiten.Key{
	"A":          ebiten.KeyA,
	"B":          ebiten.KeyB,
	"C":          ebiten.KeyC,
	"D":          ebiten.KeyD,
	"E":          ebiten.KeyE,
	"F":          ebiten.KeyF,
	"G":          ebiten.KeyG,
	"H":          ebiten.KeyH,
	"I":          ebiten.KeyI,
	"J":          ebiten.KeyJ,
	"K":          ebiten.KeyK,
	"L":          ebiten.KeyL,
	"M":          ebiten.KeyM,
	"N":          ebiten.KeyN,
	"O":          ebiten.KeyO,
	"P":          ebiten.KeyP,
	"Q":          ebiten.KeyQ,
	"R":          ebiten.KeyR,
	"S":          ebiten.KeyS,
	"T":          ebiten.KeyT,
	"U":          ebiten.KeyU,
	"V":          ebiten.KeyV,
	"W":          ebiten.KeyW,
	"X":          ebiten.KeyX,
	"Y":          ebiten.KeyY,
	"Z":          ebiten.KeyZ,
	"0":          ebiten.Key0,
	"1":          ebiten.Key1,
	"2":          ebiten.Key2,
	"3":          ebiten.Key3,
	"4":          ebiten.Key4,
	"5":          ebiten.Key5,
	"6":          ebiten.Key6,
	"7":          ebiten.Key7,
	"8":          ebiten.Key8,
	"9":          ebiten.Key9,
	"Enter":      ebiten.KeyEnter,
	"Backspace":  ebiten.KeyBackspace,
	"Space":      ebiten.KeySpace,
	"Semicolon":  ebiten.KeySemicolon,
	"Comma":      ebiten.KeyComma,
	"Period":     ebiten.KeyPeriod,
	"Slash":      ebiten.KeySlash,
	"Tab":        ebiten.KeyTab,
	"Escape":     ebiten.KeyEscape,
	"Shift":      ebiten.KeyShift,
	"RightShift": ebiten.KeyShiftRight,
	"ArrowUp":    ebiten.KeyArrowUp,
	"ArrowDown":  ebiten.KeyArrowDown,
	"ArrowLeft":  ebiten.KeyArrowLeft,
	"ArrowRight": ebiten.KeyArrowRight,
	"[":          ebiten.KeyLeftBracket,
	"]":          ebiten.KeyRightBracket,
	"-":          ebiten.KeyMinus,
	"=":          ebiten.KeyEqual,
	"'":          ebiten.KeyApostrophe,
	"F1":         ebiten.KeyF1,
	"F2":         ebiten.KeyF2,
	"F3":         ebiten.KeyF3,
	"F4":         ebiten.KeyF4,
	"F5":         ebiten.KeyF5,
	"F6":         ebiten.KeyF6,
	"F7":         ebiten.KeyF7,
	"F8":         ebiten.KeyF8,
	"F9":         ebiten.KeyF9,
	"F10":        ebiten.KeyF10,
	"F11":        ebiten.KeyF11,
	"F12":        ebiten.KeyF12,
}

// Pad names follow the Xbox layout.
var padNameMap = map[string]ebiten.StandardGamepadButton{
	"A":         ebiten.StandardGamepadButtonRightBottom,
	"B":         ebiten.StandardGamepadButtonRightRight,
	"X":         ebiten.StandardGamepadButtonRightLeft,
	"Y":         ebiten.StandardGamepadButtonRightTop,
	"LB":        ebiten.StandardGamepadButtonFrontTopLeft,
	"RB":        ebiten.StandardGamepadButtonFrontTopRight,
	"LT":        ebiten.StandardGamepadButtonFrontBottomLeft,
	"RT":        ebiten.StandardGamepadButtonFrontBottomRight,
	"Start":     ebiten.StandardGamepadButtonCenterRight,
	"Back":      ebiten.StandardGamepadButtonCenterLeft,
	"DpadUp":    ebiten.StandardGamepadButtonLeftTop,
	"DpadDown":  ebiten.StandardGamepadButtonLeftBottom,
	"DpadLeft":  ebiten.StandardGamepadButtonLeftLeft,
	"DpadRight": ebiten.StandardGamepadButtonLeftRight,
}

// reservedKeys drive the shell itself and cannot be bound to buttons.
var reservedKeys = map[ebiten.Key]bool{
	ebiten.KeyEscape:    true, // pause
	ebiten.KeyBackspace: true, // rewind
	ebiten.KeyF1:        true, // save state
	ebiten.KeyF2:        true, // next slot
	ebiten.KeyF3:        true, // load state
	ebiten.KeyF4:        true,
	ebiten.KeyF5:        true, // reset
	ebiten.KeyF6:        true,
	ebiten.KeyF7:        true,
	ebiten.KeyF8:        true,
	ebiten.KeyF9:        true,
	ebiten.KeyF10:       true,
	ebiten.KeyF11:       true, // fullscreen
	ebiten.KeyF12:       true, // screenshot
}

// ParseKey converts a key name to an ebiten.Key.
func ParseKey(name string) (ebiten.Key, bool) {
	k, ok := keyNameMap[name]
	return k, ok
}

// ParsePad converts a gamepad button name to an ebiten.StandardGamepadButton.
func ParsePad(name string) (ebiten.StandardGamepadButton, bool) {
	b, ok := padNameMap[name]
	return b, ok
}

// IsReservedKey reports whether k is used by the shell.
func IsReservedKey(k ebiten.Key) bool {
	return reservedKeys[k]
}

var dpadButtons = []emucore.ButtonInfo{
	{Name: "Up", ID: emucore.ButtonUp, DefaultKey: "W", DefaultPad: "DpadUp"},
	{Name: "Down", ID: emucore.ButtonDown, DefaultKey: "S", DefaultPad: "DpadDown"},
	{Name: "Left", ID: emucore.ButtonLeft, DefaultKey: "A", DefaultPad: "DpadLeft"},
	{Name: "Right", ID: emucore.ButtonRight, DefaultKey: "D", DefaultPad: "DpadRight"},
}

// BuildMapping creates a mapping from the button defaults, the D-pad on WASD
// and the gamepad D-pad. Overrides are keyed by button name; an invalid or
// reserved override unbinds the button.
func BuildMapping(buttons []emucore.ButtonInfo, kbOverrides, padOverrides map[string]string) InputMapping {
	m := InputMapping{
		Keys:    make(map[emucore.Button]ebiten.Key),
		Gamepad: make(map[emucore.Button]ebiten.StandardGamepadButton),
	}

	all := append(append([]emucore.ButtonInfo(nil), dpadButtons...), buttons...)
	for _, btn := range all {
		keyName := btn.DefaultKey
		if override, ok := kbOverrides[btn.Name]; ok {
			keyName = override
		}
		if k, ok := ParseKey(keyName); ok && !reservedKeys[k] {
			m.Keys[btn.ID] = k
		}

		padName := btn.DefaultPad
		if override, ok := padOverrides[btn.Name]; ok {
			padName = override
		}
		if b, ok := ParsePad(padName); ok {
			m.Gamepad[btn.ID] = b
		}
	}

	return m
}

// PollKeyboard returns the mask of buttons whose keys are held.
func PollKeyboard(mapping InputMapping) uint32 {
	var buttons uint32
	for b, key := range mapping.Keys {
		if ebiten.IsKeyPressed(key) {
			buttons |= b.Mask()
		}
	}
	return buttons
}

// PollGamepad returns the mask of buttons held on a gamepad, with the left
// stick following the D-pad bindings.
func PollGamepad(mapping InputMapping, id ebiten.GamepadID) uint32 {
	var buttons uint32
	for b, padBtn := range mapping.Gamepad {
		if ebiten.IsStandardGamepadButtonPressed(id, padBtn) {
			buttons |= b.Mask()
		}
	}

	axisX := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
	axisY := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
	return buttons | stickButtons(mapping, axisX, axisY)
}

const stickDeadzone = 0.25

func stickButtons(mapping InputMapping, axisX, axisY float64) uint32 {
	var buttons uint32
	for b, padBtn := range mapping.Gamepad {
		switch {
		case padBtn == ebiten.StandardGamepadButtonLeftLeft && axisX < -stickDeadzone,
			padBtn == ebiten.StandardGamepadButtonLeftRight && axisX > stickDeadzone,
			padBtn == ebiten.StandardGamepadButtonLeftTop && axisY < -stickDeadzone,
			padBtn == ebiten.StandardGamepadButtonLeftBottom && axisY > stickDeadzone:
			buttons |= b.Mask()
		}
	}
	return buttons
}

// changedButtons calls fn for every button whose state differs between the
// masks, in button code order.
func changedButtons(prev, cur uint32, fn func(b emucore.Button, pressed bool)) {
	diff := prev ^ cur
	if diff == 0 {
		return
	}
	for _, b := range emucore.Buttons() {
		if diff&b.Mask() != 0 {
			fn(b, cur&b.Mask() != 0)
		}
	}
}
