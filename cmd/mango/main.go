package main

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"os/signal"

	emucore "github.com/folium-app/mango/api"
	"github.com/folium-app/mango/catalog"
	"github.com/folium-app/mango/internal/log"
	"github.com/folium-app/mango/libretro"
	"github.com/folium-app/mango/storage"
)

var version = "dev"

func main() {
	cli := parseArgs(os.Args[1:])

	if cli.mode == versionMode {
		fmt.Println("mango", version)
		return
	}

	checkf(storage.EnsureDirectories(), "failed to create data directories")
	if cli.Config == "" {
		cli.Config = storage.GetConfigPath()
	}
	log.ModEmu.Debugf("using configuration %s", cli.Config)
	cfg, err := storage.LoadConfig(cli.Config)
	checkf(err, "failed to load configuration")
	if cli.Core != "" {
		cfg.Core.Path = cli.Core
	}
	if cli.RDB != "" {
		cfg.Core.RDBPath = cli.RDB
	}
	if cfg.Core.RDBPath == "" {
		cfg.Core.RDBPath = storage.GetRDBPath()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cli.mode {
	case runMode:
		err = runROM(ctx, &cli.Run, cfg)
	case infoMode:
		err = romInfos(ctx, &cli.Info, cfg, os.Stdout)
	case dumpMode:
		err = dump(ctx, &cli.Dump, cfg)
	case fetchRDBMode:
		err = fetchRDB(ctx, &cli.FetchRDB, cfg)
	}
	if err != nil {
		stop()
		fatalf("%s", err)
	}
}

var errNoCore = errors.New("no core configured: set core.path in the configuration file or use --core")

// openCore loads the configured libretro core. options override the core
// options of the configuration file.
func openCore(cfg *storage.Config, cat *catalog.Catalog, options map[string]string) (emucore.Core, error) {
	if cfg.Core.Path == "" {
		return nil, errNoCore
	}

	vars := maps.Clone(cfg.Core.Options)
	if vars == nil {
		vars = make(map[string]string)
	}
	maps.Copy(vars, options)

	factory := libretro.Factory{
		Path: cfg.Core.Path,
		Options: libretro.Options{
			SystemDir: storage.GetSystemDir(),
			SaveDir:   storage.GetSavesDir(),
			Variables: vars,
			Catalog:   cat,
		},
	}
	core, err := factory.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open core: %w", err)
	}
	return core, nil
}
