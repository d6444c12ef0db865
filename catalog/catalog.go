// Package catalog identifies SNES cartridges by checksum against a libretro
// game database, falling back to the No-Intro tags of the file name.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/folium-app/mango/rdb"
	"github.com/folium-app/mango/romloader"
)

// Info describes one cartridge file.
type Info struct {
	Path   string
	Name   string // file or archive member name
	CRC32  uint32
	Title  string
	Region string
	Game   *rdb.Game // nil when the cartridge is not in the database
}

// CRC returns the checksum as the 8 digit hex string used for save paths.
func (i *Info) CRC() string {
	return fmt.Sprintf("%08x", i.CRC32)
}

// Catalog looks up cartridge metadata. It is safe for concurrent use.
type Catalog struct {
	db *rdb.RDB
}

// New returns a catalog over db. A nil db only uses file names.
func New(db *rdb.RDB) *Catalog {
	if db == nil {
		db = rdb.New(nil)
	}
	return &Catalog{db: db}
}

// Open loads the database at path. A missing file gives an empty catalog.
func Open(path string) (*Catalog, error) {
	if path == "" {
		return New(nil), nil
	}
	db, err := rdb.LoadRDB(path)
	if errors.Is(err, os.ErrNotExist) {
		return New(nil), nil
	}
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

// GameCount returns the number of games in the underlying database.
func (c *Catalog) GameCount() int {
	return c.db.GameCount()
}

// Lookup reads the cartridge at path and resolves its metadata.
func (c *Catalog) Lookup(path string) (*Info, error) {
	rom, err := romloader.LoadROM(path)
	if err != nil {
		return nil, err
	}

	info := &Info{
		Path:  path,
		Name:  rom.Name,
		CRC32: rom.CRC32,
	}
	if g := c.db.FindByCRC32(rom.CRC32); g != nil {
		info.Game = g
		info.Title = rdb.GetDisplayName(g.Name)
		info.Region = rdb.RegionFromName(g.Name)
	}
	if info.Title == "" {
		info.Title = cleanDisplayName(rom.Name)
	}
	if info.Region == "" {
		info.Region = rdb.RegionFromName(rom.Name)
	}
	return info, nil
}

// Title returns the display title of the cartridge at path. Unreadable
// files are named after the file itself.
func (c *Catalog) Title(path string) string {
	info, err := c.Lookup(path)
	if err != nil {
		return cleanDisplayName(filepath.Base(path))
	}
	return info.Title
}

// Region returns "USA", "Europe", "Japan" or "" for the cartridge at path.
func (c *Catalog) Region(path string) string {
	info, err := c.Lookup(path)
	if err != nil {
		return rdb.RegionFromName(filepath.Base(path))
	}
	return info.Region
}

// LookupAll resolves every path concurrently and returns results in the
// order of paths. The first failure cancels the remaining lookups.
func (c *Catalog) LookupAll(ctx context.Context, paths []string) ([]*Info, error) {
	infos := make([]*Info, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			info, err := c.Lookup(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			infos[i] = info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return infos, nil
}

// cleanDisplayName removes the file extension and parenthesized tags.
func cleanDisplayName(filename string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	return rdb.GetDisplayName(name)
}
