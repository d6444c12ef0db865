// Package romloader reads SNES cartridge images from disk, either as plain
// files or as the first matching member of a ZIP, 7z, gzip, tar.gz or RAR
// archive.
package romloader

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	magicZIP    = []byte{0x50, 0x4B, 0x03, 0x04}
	magicZIPEnd = []byte{0x50, 0x4B, 0x05, 0x06} // empty zip
	magic7z     = []byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}
	magicGzip   = []byte{0x1F, 0x8B}
	magicRAR    = []byte{0x52, 0x61, 0x72, 0x21} // "Rar!"
)

// Largest SNES board (ExHiROM, 64 Mbit) plus a copier header.
const maxROMSize = 8*1024*1024 + copierHeaderSize

const copierHeaderSize = 512

// Extensions lists the file extensions recognized as SNES cartridges.
var Extensions = []string{".sfc", ".smc", ".swc", ".fig"}

var (
	ErrNoROMFile         = errors.New("no ROM file found in archive")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrFileTooLarge      = errors.New("file exceeds maximum size limit")
)

type formatType int

const (
	formatUnknown formatType = iota
	formatRaw
	formatZIP
	format7z
	formatGzip
	formatRAR
)

func (f formatType) String() string {
	switch f {
	case formatRaw:
		return "raw"
	case formatZIP:
		return "zip"
	case format7z:
		return "7z"
	case formatGzip:
		return "gzip"
	case formatRAR:
		return "rar"
	}
	return "unknown"
}

// ROM is a cartridge image ready to hand to a core.
type ROM struct {
	Data         []byte
	Name         string // base name of the file or archive member
	CRC32        uint32 // checksum of Data, copier header excluded
	CopierHeader bool   // a 512 byte copier header was removed
}

// LoadROM loads the SNES cartridge at path, removes any copier header and
// computes its checksum.
func LoadROM(path string) (*ROM, error) {
	data, name, err := Load(path, Extensions)
	if err != nil {
		return nil, err
	}
	data, stripped := StripCopierHeader(data)
	return &ROM{
		Data:         data,
		Name:         name,
		CRC32:        Checksum(data),
		CopierHeader: stripped,
	}, nil
}

// Load reads a ROM from a file path. Archives are detected from their magic
// bytes first and their extension second; the first member matching one of
// extensions is returned. Any other file must itself carry one of
// extensions.
//
// Returns the ROM data and the base name of the file or archive member.
func Load(path string, extensions []string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	header := make([]byte, 16)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, "", fmt.Errorf("failed to read file header: %w", err)
	}
	header = header[:n]

	format := detectFormat(header, path, extensions)
	if format == formatRaw {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, "", fmt.Errorf("failed to seek file: %w", err)
		}
		data, err := limitedRead(f)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read ROM: %w", err)
		}
		return data, filepath.Base(path), nil
	}

	open, ok := openers[format]
	if !ok {
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	a, err := open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open %s: %w", format, err)
	}
	defer a.Close()
	return firstROM(a, extensions)
}

// StripCopierHeader removes the 512 byte header that backup units prepend
// to dumps. Such images are detected by their size modulo 1024.
func StripCopierHeader(data []byte) ([]byte, bool) {
	if len(data) > copierHeaderSize && len(data)%1024 == copierHeaderSize {
		return data[copierHeaderSize:], true
	}
	return data, false
}

// Checksum returns the CRC32 (IEEE) used to identify games in databases.
func Checksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

func detectFormat(header []byte, path string, extensions []string) formatType {
	switch {
	case bytes.HasPrefix(header, magicZIP), bytes.HasPrefix(header, magicZIPEnd):
		return formatZIP
	case bytes.HasPrefix(header, magicRAR):
		return formatRAR
	case bytes.HasPrefix(header, magic7z):
		return format7z
	case bytes.HasPrefix(header, magicGzip):
		return formatGzip
	}

	lower := strings.ToLower(path)
	switch filepath.Ext(lower) {
	case ".zip":
		return formatZIP
	case ".7z":
		return format7z
	case ".gz", ".tgz":
		return formatGzip
	case ".rar":
		return formatRAR
	}

	if isROMFile(lower, extensions) {
		return formatRaw
	}
	return formatUnknown
}

func isROMFile(name string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

func limitedRead(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxROMSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxROMSize {
		return nil, ErrFileTooLarge
	}
	return data, nil
}
