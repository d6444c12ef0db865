package shell

import (
	"bytes"
	"image/color"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/folium-app/mango/internal/log"
)

var (
	dimColor     = color.RGBA{0, 0, 0, 128}
	overlayColor = color.RGBA{0x20, 0x20, 0x20, 153}
	textColor    = color.RGBA{0xF0, 0xF0, 0xF0, 0xFF}
)

const (
	overlayPadding = 8
	overlayMargin  = 16
	fontSize       = 18
)

var (
	fontOnce   sync.Once
	fontSource *text.GoTextFaceSource
)

// fontFace returns the shell font, or nil if it could not be loaded.
func fontFace(size float64) text.Face {
	fontOnce.Do(func() {
		src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
		if err != nil {
			log.ModShell.WithError(err).Warn("failed to load font")
			return
		}
		fontSource = src
	})
	if fontSource == nil {
		return nil
	}
	return &text.GoTextFace{Source: fontSource, Size: size}
}

// notification shows one short message in the bottom right corner.
type notification struct {
	mu      sync.Mutex
	message string
	until   time.Time
	bg      *ebiten.Image
}

func (n *notification) show(message string, d time.Duration) {
	n.mu.Lock()
	n.message = message
	n.until = time.Now().Add(d)
	n.mu.Unlock()
}

func (n *notification) current(now time.Time) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if now.After(n.until) {
		return ""
	}
	return n.message
}

func (n *notification) draw(screen *ebiten.Image) {
	message := n.current(time.Now())
	face := fontFace(fontSize)
	if message == "" || face == nil {
		return
	}

	tw, th := text.Measure(message, face, 0)
	bgW := int(tw) + overlayPadding*2
	bgH := int(th) + overlayPadding*2
	b := screen.Bounds()
	x := b.Dx() - bgW - overlayMargin
	y := b.Dy() - bgH - overlayMargin

	if n.bg == nil || n.bg.Bounds().Dx() != bgW || n.bg.Bounds().Dy() != bgH {
		if n.bg != nil {
			n.bg.Deallocate()
		}
		n.bg = ebiten.NewImage(bgW, bgH)
		n.bg.Fill(overlayColor)
	}

	opts := &ebiten.DrawImageOptions{}
	opts.GeoM.Translate(float64(x), float64(y))
	screen.DrawImage(n.bg, opts)

	textOpts := &text.DrawOptions{}
	textOpts.GeoM.Translate(float64(x+overlayPadding), float64(y+overlayPadding))
	textOpts.ColorScale.ScaleWithColor(textColor)
	text.Draw(screen, message, face, textOpts)
}

// pauseOverlay dims the screen and lists the hotkeys while paused.
type pauseOverlay struct {
	dim *ebiten.Image
}

var pauseLines = []string{
	"Paused",
	"",
	"Esc  resume",
	"F1  save state    F2  next slot    F3  load state",
	"F5  reset    F11  fullscreen    F12  screenshot",
	"Backspace  rewind",
}

func (p *pauseOverlay) draw(screen *ebiten.Image, slot int) {
	b := screen.Bounds()
	if p.dim == nil || p.dim.Bounds() != b {
		if p.dim != nil {
			p.dim.Deallocate()
		}
		p.dim = ebiten.NewImage(b.Dx(), b.Dy())
		p.dim.Fill(dimColor)
	}
	screen.DrawImage(p.dim, nil)

	face := fontFace(fontSize)
	if face == nil {
		return
	}

	lines := append(append([]string(nil), pauseLines...), "", slotLabel(slot))
	lineH := fontSize * 1.5
	y := float64(b.Dy())/2 - lineH*float64(len(lines))/2
	for _, line := range lines {
		opts := &text.DrawOptions{}
		opts.GeoM.Translate(float64(b.Dx())/2, y)
		opts.PrimaryAlign = text.AlignCenter
		opts.ColorScale.ScaleWithColor(textColor)
		text.Draw(screen, line, face, opts)
		y += lineH
	}
}
