package shell

import (
	"errors"
	"strings"

	"github.com/sqweek/dialog"
)

// ErrCancelled is returned by PickROM when the user dismisses the dialog.
var ErrCancelled = errors.New("no ROM selected")

// PickROM asks the user for a ROM file with a native dialog. Archives are
// offered next to the given extensions.
func PickROM(extensions []string) (string, error) {
	exts := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		exts = append(exts, strings.TrimPrefix(ext, "."))
	}

	path, err := dialog.File().
		Title("Open ROM").
		Filter("SNES ROMs", exts...).
		Filter("Archives", "zip", "7z", "rar", "gz").
		Load()
	if errors.Is(err, dialog.ErrCancelled) {
		return "", ErrCancelled
	}
	return path, err
}
