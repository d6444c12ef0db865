package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/folium-app/mango/rdb"
	"github.com/folium-app/mango/romloader"
)

func writeROM(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLookup(t *testing.T) {
	dir := t.TempDir()
	known := []byte("known cartridge image")
	headered := append(make([]byte, 512), make([]byte, 1024)...)

	db := rdb.New([]rdb.Game{
		{Name: "Super Mario World (USA)", CRC32: romloader.Checksum(known)},
		{Name: "Super Metroid (Japan, USA) (En,Ja)", CRC32: romloader.Checksum(headered[512:])},
	})
	c := New(db)

	tests := []struct {
		name   string
		file   string
		data   []byte
		title  string
		region string
		inDB   bool
	}{
		{"database hit", "smw.sfc", known, "Super Mario World", "USA", true},
		{"copier header stripped before lookup", "metroid.smc", headered, "Super Metroid", "Japan", true},
		{"file name fallback", "Star Fox (Europe) (Rev 1).sfc", []byte("unknown"), "Star Fox", "Europe", false},
		{"no tags", "homebrew.sfc", []byte("homebrew"), "homebrew", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeROM(t, dir, tt.file, tt.data)
			info, err := c.Lookup(path)
			if err != nil {
				t.Fatalf("Lookup: %v", err)
			}
			if info.Title != tt.title || info.Region != tt.region {
				t.Errorf("got %q/%q, want %q/%q", info.Title, info.Region, tt.title, tt.region)
			}
			if (info.Game != nil) != tt.inDB {
				t.Errorf("Game = %+v, want in database %v", info.Game, tt.inDB)
			}
			if got := c.Title(path); got != tt.title {
				t.Errorf("Title() = %q", got)
			}
			if got := c.Region(path); got != tt.region {
				t.Errorf("Region() = %q", got)
			}
		})
	}
}

func TestUnreadableFileFallsBackToName(t *testing.T) {
	c := New(nil)
	path := "/nonexistent/Pilotwings (Japan).smc"
	if got := c.Title(path); got != "Pilotwings" {
		t.Errorf("Title() = %q", got)
	}
	if got := c.Region(path); got != "Japan" {
		t.Errorf("Region() = %q", got)
	}
	if _, err := c.Lookup(path); err == nil {
		t.Error("Lookup of missing file succeeded")
	}
}

func TestLookupAll(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	var want []string
	for _, name := range []string{"A (USA).sfc", "B (Japan).sfc", "C (Europe).sfc", "D.sfc"} {
		paths = append(paths, writeROM(t, dir, name, []byte(name)))
		want = append(want, name)
	}

	c := New(nil)
	infos, err := c.LookupAll(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, info := range infos {
		got = append(got, info.Name)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if len(infos[0].CRC()) != 8 {
		t.Errorf("CRC() = %q", infos[0].CRC())
	}

	paths = append(paths, filepath.Join(dir, "missing.sfc"))
	if _, err := c.LookupAll(context.Background(), paths); err == nil {
		t.Error("LookupAll with a missing file succeeded")
	}
}

func TestOpenMissingDatabase(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "none.rdb"))
	if err != nil {
		t.Fatal(err)
	}
	if c.GameCount() != 0 {
		t.Errorf("GameCount() = %d", c.GameCount())
	}
}

func TestDownloadRDB(t *testing.T) {
	const name = "Nintendo - Super Nintendo Entertainment System"
	body := []byte("RARCHDB\x00 test payload")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rdb/"+name+".rdb" {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "metadata", "snes.rdb")
	if err := DownloadRDB(context.Background(), srv.URL+"/rdb", name, dest); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(body) {
		t.Errorf("content = %q", got)
	}

	if err := DownloadRDB(context.Background(), srv.URL+"/rdb", "Unknown", dest); err == nil {
		t.Error("404 accepted")
	}
}
