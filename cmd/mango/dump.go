package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/folium-app/mango/audio"
	"github.com/folium-app/mango/catalog"
	"github.com/folium-app/mango/internal/log"
	"github.com/folium-app/mango/mango"
	"github.com/folium-app/mango/storage"
)

// dump runs the cartridge for a number of frames without a window, then
// writes the last frame and everything the core played.
func dump(ctx context.Context, args *Dump, cfg *storage.Config) error {
	if args.Frames <= 0 {
		return fmt.Errorf("--frames must be positive")
	}
	if args.Scale <= 0 {
		return fmt.Errorf("--scale must be positive")
	}

	cat, err := catalog.Open(cfg.Core.RDBPath)
	if err != nil {
		return fmt.Errorf("failed to open game database: %w", err)
	}
	core, err := openCore(cfg, cat, args.Option)
	if err != nil {
		return err
	}
	h := mango.New(core)
	defer h.Close()
	b := h.Bridge()

	if err := b.InsertCartridge(args.RomPath); err != nil {
		return fmt.Errorf("failed to insert cartridge: %w", err)
	}

	var samples []int16
	if args.WAV != "" {
		b.Audio(func(s []int16) {
			samples = append(samples, s...)
		})
	}

	for i := 0; i < args.Frames; i++ {
		if ctx.Err() != nil {
			break
		}
		b.Step()
	}
	b.Audio(nil)

	frame := b.Frame()
	log.ModEmu.Debugf("ran %d frames, last frame %dx%d, %d audio samples", args.Frames, frame.Width, frame.Height, len(samples))

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		return writePNG(args.PNG, frame.Pixels, frame.Width, frame.Height, args.Scale)
	})
	if args.WAV != "" {
		g.Go(func() error {
			return writeWAV(args.WAV, samples)
		})
	}
	return g.Wait()
}

// scaleFrame wraps an RGBA frame in an image, scaled by an integer factor
// with nearest neighbour sampling.
func scaleFrame(pixels []byte, width, height, scale int) (image.Image, error) {
	if width <= 0 || height <= 0 || len(pixels) < width*height*4 {
		return nil, fmt.Errorf("no frame produced")
	}
	src := &image.RGBA{
		Pix:    pixels[:width*height*4],
		Stride: width * 4,
		Rect:   image.Rect(0, 0, width, height),
	}
	if scale == 1 {
		return src, nil
	}

	dst := image.NewRGBA(image.Rect(0, 0, width*scale, height*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst, nil
}

func writePNG(path string, pixels []byte, width, height, scale int) error {
	img, err := scaleFrame(pixels, width, height, scale)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return f.Close()
}

func writeWAV(path string, samples []int16) error {
	w, err := audio.CreateWAV(path, audio.OutputRate)
	if err != nil {
		return err
	}
	if err := w.Write(samples); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
