// Package rdb reads libretro game databases (RDB files): a 16 byte header
// followed by one MessagePack map per game and a nil terminator.
package rdb

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Game is one database entry.
type Game struct {
	Name         string // Full No-Intro name, e.g. "Super Metroid (Japan, USA) (En,Ja)"
	Description  string
	Genre        string
	Developer    string
	Publisher    string
	Region       string
	ROMName      string
	Serial       string
	ReleaseMonth uint
	ReleaseYear  uint
	Size         uint64
	CRC32        uint32
	MD5          string // lower case hex
}

// RDB is an indexed, read-only game database.
type RDB struct {
	games   []Game
	byCRC32 map[uint32]*Game
	byMD5   map[string]*Game
}

const headerSize = 0x10

var errTruncated = errors.New("truncated entry")

// LoadRDB loads and parses an RDB file from disk.
func LoadRDB(path string) (*RDB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read RDB file: %w", err)
	}
	return Parse(data), nil
}

// Parse decodes every complete entry of data. Decoding stops at the nil
// terminator or at the first malformed entry.
func Parse(data []byte) *RDB {
	return New(parseGames(data))
}

// New indexes games.
func New(games []Game) *RDB {
	rdb := &RDB{
		games:   games,
		byCRC32: make(map[uint32]*Game, len(games)),
		byMD5:   make(map[string]*Game, len(games)),
	}
	for i := range rdb.games {
		g := &rdb.games[i]
		if g.CRC32 != 0 {
			rdb.byCRC32[g.CRC32] = g
		}
		if g.MD5 != "" {
			rdb.byMD5[g.MD5] = g
		}
	}
	return rdb
}

// FindByCRC32 returns the game with the given checksum, or nil.
func (rdb *RDB) FindByCRC32(crc32 uint32) *Game {
	return rdb.byCRC32[crc32]
}

// FindByMD5 returns the game with the given hex MD5, or nil.
func (rdb *RDB) FindByMD5(md5 string) *Game {
	return rdb.byMD5[strings.ToLower(md5)]
}

// GameCount returns the number of games in the database.
func (rdb *RDB) GameCount() int {
	return len(rdb.games)
}

// GetDisplayName strips the parenthesized tags from a No-Intro name.
func GetDisplayName(name string) string {
	if idx := strings.Index(name, " ("); idx > 0 {
		return strings.TrimSpace(name[:idx])
	}
	return name
}

// RegionFromName returns "USA", "Europe" or "Japan" from the tags of a
// No-Intro name, or "" when none is present. Multi-region names resolve to
// the first region listed.
func RegionFromName(name string) string {
	for _, tag := range tags(name) {
		for _, part := range strings.Split(tag, ",") {
			switch strings.ToLower(strings.TrimSpace(part)) {
			case "usa", "us", "world", "canada":
				return "USA"
			case "europe", "eu", "germany", "france", "spain", "italy", "uk", "australia":
				return "Europe"
			case "japan", "jp":
				return "Japan"
			}
		}
	}
	return ""
}

// tags returns the content of every parenthesized group in name.
func tags(name string) []string {
	var out []string
	for {
		open := strings.IndexByte(name, '(')
		if open < 0 {
			return out
		}
		end := strings.IndexByte(name[open:], ')')
		if end < 0 {
			return out
		}
		out = append(out, name[open+1:open+end])
		name = name[open+end+1:]
	}
}

func parseGames(data []byte) []Game {
	if len(data) <= headerSize {
		return nil
	}
	d := decoder{buf: data, pos: headerSize}
	var games []Game
	for !d.atNil() {
		g, err := d.game()
		if err != nil {
			break
		}
		if g.Name != "" || g.CRC32 != 0 {
			games = append(games, g)
		}
	}
	return games
}

// MessagePack type bytes used by RDB files
const (
	mpfFixMap   = 0x80
	mpfFixArray = 0x90
	mpfFixStr   = 0xa0
	mpfNil      = 0xc0
	mpfBin8     = 0xc4
	mpfBin16    = 0xc5
	mpfBin32    = 0xc6
	mpfUint8    = 0xcc
	mpfUint16   = 0xcd
	mpfUint32   = 0xce
	mpfUint64   = 0xcf
	mpfStr8     = 0xd9
	mpfStr16    = 0xda
	mpfStr32    = 0xdb
	mpfMap16    = 0xde
	mpfMap32    = 0xdf
)

type decoder struct {
	buf []byte
	pos int
}

func (d *decoder) atNil() bool {
	return d.pos >= len(d.buf) || d.buf[d.pos] == mpfNil
}

func (d *decoder) take(n int) ([]byte, error) {
	if n < 0 || d.pos+n > len(d.buf) {
		return nil, errTruncated
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

func (d *decoder) length(size int) (int, error) {
	b, err := d.take(size)
	if err != nil {
		return 0, err
	}
	switch size {
	case 1:
		return int(b[0]), nil
	case 2:
		return int(binary.BigEndian.Uint16(b)), nil
	default:
		return int(binary.BigEndian.Uint32(b)), nil
	}
}

func (d *decoder) game() (Game, error) {
	var g Game
	typ, err := d.take(1)
	if err != nil {
		return g, err
	}

	var fields int
	switch t := typ[0]; {
	case t >= mpfFixMap && t < mpfFixArray:
		fields = int(t - mpfFixMap)
	case t == mpfMap16:
		fields, err = d.length(2)
	case t == mpfMap32:
		fields, err = d.length(4)
	default:
		return g, fmt.Errorf("unexpected type 0x%02x at %d", t, d.pos-1)
	}
	if err != nil {
		return g, err
	}

	for range fields {
		key, err := d.value()
		if err != nil {
			return g, err
		}
		val, err := d.value()
		if err != nil {
			return g, err
		}
		setGameField(&g, string(key), val)
	}
	return g, nil
}

// value returns the raw bytes of a string, binary or unsigned integer.
// Integers are returned big-endian in their encoded width.
func (d *decoder) value() ([]byte, error) {
	typ, err := d.take(1)
	if err != nil {
		return nil, err
	}

	t := typ[0]
	switch {
	case t < mpfFixMap:
		return typ, nil
	case t >= mpfFixStr && t < mpfNil:
		return d.take(int(t - mpfFixStr))
	}

	var n int
	switch t {
	case mpfStr8, mpfBin8:
		n, err = d.length(1)
	case mpfStr16, mpfBin16:
		n, err = d.length(2)
	case mpfStr32, mpfBin32:
		n, err = d.length(4)
	case mpfUint8:
		n = 1
	case mpfUint16:
		n = 2
	case mpfUint32:
		n = 4
	case mpfUint64:
		n = 8
	case mpfNil:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported type 0x%02x at %d", t, d.pos-1)
	}
	if err != nil {
		return nil, err
	}
	return d.take(n)
}

func uintValue(b []byte) uint64 {
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v
}

func setGameField(g *Game, key string, value []byte) {
	switch key {
	case "name":
		g.Name = string(value)
	case "description":
		g.Description = string(value)
	case "genre":
		g.Genre = string(value)
	case "developer":
		g.Developer = string(value)
	case "publisher":
		g.Publisher = string(value)
	case "region":
		g.Region = string(value)
	case "serial":
		g.Serial = string(value)
	case "rom_name":
		g.ROMName = string(value)
	case "size":
		g.Size = uintValue(value)
	case "releasemonth":
		g.ReleaseMonth = uint(uintValue(value))
	case "releaseyear":
		g.ReleaseYear = uint(uintValue(value))
	case "crc":
		// stored as 4 raw bytes, big-endian
		g.CRC32 = uint32(uintValue(value))
	case "md5":
		g.MD5 = hex.EncodeToString(value)
	}
}
