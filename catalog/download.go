package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/folium-app/mango/storage"
)

// DefaultRDBURL is the libretro-database folder holding RDB files.
const DefaultRDBURL = "https://github.com/libretro/libretro-database/raw/refs/heads/master/rdb"

// Largest accepted database, the SNES one is about 1 MiB.
const maxRDBSize = 64 * 1024 * 1024

var httpClient = &http.Client{
	Timeout: 60 * time.Second,
}

// DownloadRDB fetches <baseURL>/<rdbName>.rdb into dest. The file at dest is
// replaced only once the download completed.
func DownloadRDB(ctx context.Context, baseURL, rdbName, dest string) error {
	rdbURL := fmt.Sprintf("%s/%s.rdb", baseURL, url.PathEscape(rdbName))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rdbURL, nil)
	if err != nil {
		return err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download RDB: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("RDB download failed with status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRDBSize))
	if err != nil {
		return fmt.Errorf("failed to read RDB data: %w", err)
	}
	return storage.AtomicWriteFile(dest, data)
}
