package libretro

import (
	"errors"
	"strings"
	"sync"

	emucore "github.com/folium-app/mango/api"
	"github.com/folium-app/mango/catalog"
)

var (
	// ErrBusy is returned by Open while another core is open. Frontend
	// callbacks are process-global, so only one core can be driven at a time.
	ErrBusy = errors.New("libretro: a core is already open")

	// ErrLoadFailed is returned when the core rejects a cartridge.
	ErrLoadFailed = errors.New("libretro: core failed to load cartridge")

	// ErrIncompatible is returned for cores built against another API.
	ErrIncompatible = errors.New("libretro: incompatible core API version")
)

// Options configures a core at Open.
type Options struct {
	SystemDir string
	SaveDir   string

	// Variables overrides core option values by key.
	Variables map[string]string

	// Catalog answers Title and Region. A nil catalog uses file names only.
	Catalog *catalog.Catalog
}

// variables holds the options declared by the core and the values handed
// back to it. Values are kept as NUL terminated strings so the pointers
// given to the core stay valid until the next update.
type variables struct {
	mu        sync.Mutex
	declared  []emucore.CoreOption
	overrides map[string]string
	values    map[string][]byte
	updated   bool
}

func newVariables(overrides map[string]string) *variables {
	v := &variables{
		overrides: make(map[string]string, len(overrides)),
		values:    make(map[string][]byte),
	}
	for k, val := range overrides {
		v.overrides[k] = val
	}
	return v
}

// declare records an option from its libretro description
// "Label; default|other|...".
func (v *variables) declare(key, desc string) {
	opt := parseVariable(key, desc)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.declared = append(v.declared, opt)
	v.updated = true
}

// get returns the NUL terminated value for key, or nil when unknown.
func (v *variables) get(key string) []byte {
	v.mu.Lock()
	defer v.mu.Unlock()

	if b, ok := v.values[key]; ok {
		return b
	}

	val, ok := v.overrides[key]
	if !ok {
		for _, opt := range v.declared {
			if opt.Key == key {
				val, ok = opt.Default, true
				break
			}
		}
	}
	if !ok {
		return nil
	}
	b := cString(val)
	v.values[key] = b
	return b
}

// set changes a value and flags the update for the core.
func (v *variables) set(key, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.overrides[key] = value
	delete(v.values, key)
	v.updated = true
}

// takeUpdate reports and clears a pending update.
func (v *variables) takeUpdate() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	u := v.updated
	v.updated = false
	return u
}

func (v *variables) options() []emucore.CoreOption {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]emucore.CoreOption(nil), v.declared...)
}

// parseVariable splits a libretro option description. The first listed
// value is the default.
func parseVariable(key, desc string) emucore.CoreOption {
	opt := emucore.CoreOption{Key: key}

	label, values, found := strings.Cut(desc, ";")
	opt.Label = strings.TrimSpace(label)
	if !found {
		return opt
	}

	for _, val := range strings.Split(strings.TrimSpace(values), "|") {
		if val != "" {
			opt.Values = append(opt.Values, val)
		}
	}
	if len(opt.Values) > 0 {
		opt.Default = opt.Values[0]
	}
	return opt
}

// cString returns a NUL terminated copy of s. The caller keeps the slice
// alive for as long as the core may read it.
func cString(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}
