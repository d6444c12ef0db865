package emucore

// ButtonInfo describes a controller button for frontends.
type ButtonInfo struct {
	Name       string
	ID         Button
	DefaultKey string // Default keyboard key (e.g., "J", "Enter")
	DefaultPad string // Default gamepad button (e.g., "A", "Start")
}

// CoreOption describes a configurable setting declared by the native core.
type CoreOption struct {
	Key     string
	Label   string
	Default string
	Values  []string
}

// SystemInfo describes the emulated system for frontend configuration.
type SystemInfo struct {
	Name            string
	ConsoleName     string
	Extensions      []string
	ScreenWidth     int
	MaxScreenHeight int
	PixelAspect     float64
	SampleRate      int
	Buttons         []ButtonInfo
	Players         int
	RDBName         string
	DataDirName     string
}

// SNES returns the system description shared by every frontend.
func SNES() SystemInfo {
	return SystemInfo{
		Name:            "mango",
		ConsoleName:     "Super Nintendo Entertainment System",
		Extensions:      []string{".sfc", ".smc", ".swc", ".fig"},
		ScreenWidth:     256,
		MaxScreenHeight: 478,
		PixelAspect:     8.0 / 7.0,
		SampleRate:      48000,
		Buttons: []ButtonInfo{
			{Name: "B", ID: ButtonB, DefaultKey: "J", DefaultPad: "A"},
			{Name: "Y", ID: ButtonY, DefaultKey: "U", DefaultPad: "X"},
			{Name: "Select", ID: ButtonSelect, DefaultKey: "RightShift", DefaultPad: "Back"},
			{Name: "Start", ID: ButtonStart, DefaultKey: "Enter", DefaultPad: "Start"},
			{Name: "A", ID: ButtonA, DefaultKey: "K", DefaultPad: "B"},
			{Name: "X", ID: ButtonX, DefaultKey: "I", DefaultPad: "Y"},
			{Name: "L", ID: ButtonL, DefaultKey: "Q", DefaultPad: "LB"},
			{Name: "R", ID: ButtonR, DefaultKey: "E", DefaultPad: "RB"},
		},
		Players:     2,
		RDBName:     "Nintendo - Super Nintendo Entertainment System",
		DataDirName: "mango",
	}
}

// DisplayAspectRatio returns the aspect ratio of a width x height picture
// whose pixels have the given pixel aspect ratio.
func DisplayAspectRatio(width, height int, par float64) float64 {
	if height == 0 {
		return 0
	}
	return float64(width) / float64(height) * par
}
