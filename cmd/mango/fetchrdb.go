package main

import (
	"context"
	"fmt"

	emucore "github.com/folium-app/mango/api"
	"github.com/folium-app/mango/catalog"
	"github.com/folium-app/mango/storage"
)

func fetchRDB(ctx context.Context, args *FetchRDB, cfg *storage.Config) error {
	dest := cfg.Core.RDBPath
	if err := catalog.DownloadRDB(ctx, args.URL, emucore.SNES().RDBName, dest); err != nil {
		return fmt.Errorf("failed to download game database: %w", err)
	}

	cat, err := catalog.Open(dest)
	if err != nil {
		return err
	}
	fmt.Printf("%d games written to %s\n", cat.GameCount(), dest)
	return nil
}
