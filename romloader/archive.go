package romloader

import (
	"fmt"
	"io"
	"path/filepath"
)

// archive walks the regular files of a compressed container in order.
type archive interface {
	// next returns the name and content of the next regular file, or
	// io.EOF once the archive is exhausted. The reader is only valid
	// until the following call.
	next() (string, io.Reader, error)
	Close() error
}

var openers = map[formatType]func(path string) (archive, error){
	formatZIP:  openZIP,
	format7z:   open7z,
	formatGzip: openGzip,
	formatRAR:  openRAR,
}

func firstROM(a archive, extensions []string) ([]byte, string, error) {
	for {
		name, r, err := a.next()
		if err == io.EOF {
			return nil, "", ErrNoROMFile
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to read archive entry: %w", err)
		}
		if !isROMFile(name, extensions) {
			continue
		}

		data, err := limitedRead(r)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", name, err)
		}
		return data, filepath.Base(name), nil
	}
}
