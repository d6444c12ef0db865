package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/go-faster/jx"

	emucore "github.com/folium-app/mango/api"
	"github.com/folium-app/mango/catalog"
	"github.com/folium-app/mango/storage"
)

// coreOptioner is implemented by cores declaring configurable options.
type coreOptioner interface {
	CoreOptions() []emucore.CoreOption
}

func romInfos(ctx context.Context, args *Info, cfg *storage.Config, w io.Writer) error {
	cat, err := catalog.Open(cfg.Core.RDBPath)
	if err != nil {
		return fmt.Errorf("failed to open game database: %w", err)
	}
	infos, err := cat.LookupAll(ctx, args.RomPaths)
	if err != nil {
		return err
	}

	var options []emucore.CoreOption
	if args.Options {
		core, err := openCore(cfg, cat, nil)
		if err != nil {
			return err
		}
		defer closeCore(core)
		if co, ok := core.(coreOptioner); ok {
			options = co.CoreOptions()
		}
	}

	if args.JSON {
		_, err := w.Write(encodeInfos(infos, options))
		return err
	}
	printInfos(w, infos, options)
	return nil
}

func closeCore(core emucore.Core) {
	if c, ok := core.(io.Closer); ok {
		c.Close()
	}
}

func printInfos(w io.Writer, infos []*catalog.Info, options []emucore.CoreOption) {
	for _, info := range infos {
		known := "no"
		if info.Game != nil {
			known = "yes"
		}
		fmt.Fprintf(w, "%s\n", info.Path)
		fmt.Fprintf(w, "  title:    %s\n", info.Title)
		fmt.Fprintf(w, "  region:   %s\n", info.Region)
		fmt.Fprintf(w, "  crc32:    %s\n", info.CRC())
		fmt.Fprintf(w, "  database: %s\n", known)
	}

	if len(options) == 0 {
		return
	}
	fmt.Fprintln(w, "core options:")
	for _, opt := range options {
		fmt.Fprintf(w, "  %s (%s) = %s [%s]\n", opt.Key, opt.Label, opt.Default, strings.Join(opt.Values, "|"))
	}
}

func encodeInfos(infos []*catalog.Info, options []emucore.CoreOption) []byte {
	var e jx.Encoder
	e.ObjStart()

	e.FieldStart("roms")
	e.ArrStart()
	for _, info := range infos {
		e.ObjStart()
		e.FieldStart("path")
		e.Str(info.Path)
		e.FieldStart("name")
		e.Str(info.Name)
		e.FieldStart("crc32")
		e.Str(info.CRC())
		e.FieldStart("title")
		e.Str(info.Title)
		e.FieldStart("region")
		e.Str(info.Region)
		e.FieldStart("known")
		e.Bool(info.Game != nil)
		e.ObjEnd()
	}
	e.ArrEnd()

	if options != nil {
		e.FieldStart("options")
		e.ArrStart()
		for _, opt := range options {
			e.ObjStart()
			e.FieldStart("key")
			e.Str(opt.Key)
			e.FieldStart("label")
			e.Str(opt.Label)
			e.FieldStart("default")
			e.Str(opt.Default)
			e.FieldStart("values")
			e.ArrStart()
			for _, v := range opt.Values {
				e.Str(v)
			}
			e.ArrEnd()
			e.ObjEnd()
		}
		e.ArrEnd()
	}

	e.ObjEnd()
	return append(e.Bytes(), '\n')
}
