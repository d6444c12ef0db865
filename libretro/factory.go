package libretro

import emucore "github.com/folium-app/mango/api"

// Factory opens the core library at Path.
type Factory struct {
	Path    string
	Options Options
}

// SystemInfo returns the SNES system description.
func (f Factory) SystemInfo() emucore.SystemInfo {
	return emucore.SNES()
}

// Open loads the core.
func (f Factory) Open() (emucore.Core, error) {
	c, err := Open(f.Path, f.Options)
	if err != nil {
		return nil, err
	}
	return c, nil
}
