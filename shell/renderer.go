package shell

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// renderer owns the offscreen image frames are uploaded to and scales it
// onto the screen.
type renderer struct {
	aspect    float64 // display aspect ratio of a frame
	offscreen *ebiten.Image
	drawOpts  ebiten.DrawImageOptions
}

func newRenderer(aspect float64) *renderer {
	return &renderer{aspect: aspect}
}

// draw renders an RGBA frame centered on screen at the display aspect
// ratio with nearest neighbour scaling.
func (r *renderer) draw(screen *ebiten.Image, pixels []byte, width, height int) {
	if width <= 0 || height <= 0 || len(pixels) < width*height*4 {
		return
	}

	if r.offscreen == nil || r.offscreen.Bounds().Dx() != width || r.offscreen.Bounds().Dy() != height {
		if r.offscreen != nil {
			r.offscreen.Deallocate()
		}
		r.offscreen = ebiten.NewImage(width, height)
	}
	r.offscreen.WritePixels(pixels[:width*height*4])

	b := screen.Bounds()
	x, y, w, h := fitRect(b.Dx(), b.Dy(), r.aspect)

	r.drawOpts = ebiten.DrawImageOptions{}
	r.drawOpts.GeoM.Scale(w/float64(width), h/float64(height))
	r.drawOpts.GeoM.Translate(x, y)
	r.drawOpts.Filter = ebiten.FilterNearest
	screen.DrawImage(r.offscreen, &r.drawOpts)
}

// fitRect returns the largest rectangle of the given aspect ratio centered
// in a screenW x screenH area.
func fitRect(screenW, screenH int, aspect float64) (x, y, w, h float64) {
	sw, sh := float64(screenW), float64(screenH)
	if aspect <= 0 || sw <= 0 || sh <= 0 {
		return 0, 0, sw, sh
	}

	w, h = sw, sw/aspect
	if h > sh {
		w, h = sh*aspect, sh
	}
	return (sw - w) / 2, (sh - h) / 2, w, h
}
