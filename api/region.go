package emucore

// RomType is the video standard of a cartridge.
type RomType uint

const (
	RomTypePAL RomType = iota
	RomTypeNTSC
)

// String returns the display name of the video standard.
func (t RomType) String() string {
	switch t {
	case RomTypeNTSC:
		return "NTSC"
	case RomTypePAL:
		return "PAL"
	default:
		return "Unknown"
	}
}

// Timing returns the frame rate and scanline count for the video standard.
func (t RomType) Timing() Timing {
	if t == RomTypePAL {
		return Timing{FPS: 50, Scanlines: 312}
	}
	return Timing{FPS: 60, Scanlines: 262}
}

// Timing holds the frame rate and scanline count for a video standard.
// CPU clocks are core-internal and not exposed here.
type Timing struct {
	FPS       int
	Scanlines int
}
