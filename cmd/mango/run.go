package main

import (
	"context"
	"errors"
	"fmt"

	emucore "github.com/folium-app/mango/api"
	"github.com/folium-app/mango/catalog"
	"github.com/folium-app/mango/internal/log"
	"github.com/folium-app/mango/mango"
	"github.com/folium-app/mango/remote"
	"github.com/folium-app/mango/shell"
	"github.com/folium-app/mango/storage"
)

func runROM(ctx context.Context, args *Run, cfg *storage.Config) error {
	path := args.RomPath
	if path == "" {
		var err error
		path, err = shell.PickROM(emucore.SNES().Extensions)
		if errors.Is(err, shell.ErrCancelled) {
			return nil
		}
		if err != nil {
			return err
		}
	}

	cat, err := catalog.Open(cfg.Core.RDBPath)
	if err != nil {
		return fmt.Errorf("failed to open game database: %w", err)
	}
	info, err := cat.Lookup(path)
	if err != nil {
		return fmt.Errorf("failed to read ROM: %w", err)
	}

	core, err := openCore(cfg, cat, args.Option)
	if err != nil {
		return err
	}
	h := mango.New(core)
	defer h.Close()
	m := h.Mango()

	if err := m.Insert(ctx, path); err != nil {
		return fmt.Errorf("failed to insert cartridge: %w", err)
	}
	log.ModEmu.WithFields(log.Fields{
		"title":  info.Title,
		"region": info.Region,
		"crc32":  info.CRC(),
	}).Info("cartridge inserted")

	if args.Stats {
		launchStatsview()
	}

	addr := cfg.Remote.Addr
	if args.Remote != "" {
		addr = args.Remote
	}
	if addr != "" {
		if _, err := remote.NewServer(m).Start(ctx, addr); err != nil {
			return fmt.Errorf("failed to start remote control: %w", err)
		}
	}

	return shell.Run(ctx, m, shell.Options{
		Title:   info.Title,
		GameCRC: info.CRC(),
		Resume:  args.Resume,
		Config:  cfg,
	})
}
