package shell

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"path/filepath"
	"sync"
	"time"

	"golang.design/x/clipboard"

	"github.com/folium-app/mango/emuthread"
	"github.com/folium-app/mango/internal/log"
	"github.com/folium-app/mango/storage"
)

var (
	clipboardOnce sync.Once
	clipboardErr  error
)

// encodeFrame encodes an RGBA frame as PNG.
func encodeFrame(frame emuthread.Frame) ([]byte, error) {
	if frame.Width <= 0 || frame.Height <= 0 {
		return nil, fmt.Errorf("no frame to capture")
	}
	img := &image.RGBA{
		Pix:    frame.Pixels,
		Stride: frame.Width * 4,
		Rect:   image.Rect(0, 0, frame.Width, frame.Height),
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode screenshot: %w", err)
	}
	return buf.Bytes(), nil
}

// saveScreenshot writes frame as a PNG under the screenshot directory, in a
// subdirectory per game, and returns its path.
func saveScreenshot(frame emuthread.Frame, gameCRC string, now time.Time) (string, []byte, error) {
	data, err := encodeFrame(frame)
	if err != nil {
		return "", nil, err
	}

	dir := storage.GetScreenshotDir()
	if gameCRC != "" {
		dir = filepath.Join(dir, gameCRC)
	}
	path := filepath.Join(dir, fmt.Sprintf("%d.png", now.Unix()))
	if err := storage.AtomicWriteFile(path, data); err != nil {
		return "", nil, err
	}
	return path, data, nil
}

// copyToClipboard places a PNG on the system clipboard. Failures are logged
// since not every session has a clipboard.
func copyToClipboard(png []byte) {
	clipboardOnce.Do(func() {
		clipboardErr = clipboard.Init()
	})
	if clipboardErr != nil {
		log.ModShell.WithError(clipboardErr).Debug("clipboard unavailable")
		return
	}
	clipboard.Write(clipboard.FmtImage, png)
}
