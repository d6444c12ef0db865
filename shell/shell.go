// Package shell is a desktop window around a core: it shows the frames,
// plays the audio and turns keyboard and gamepad input into button events.
// Everything goes through a mango.Mango facade.
package shell

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	emucore "github.com/folium-app/mango/api"
	"github.com/folium-app/mango/emuthread"
	"github.com/folium-app/mango/internal/log"
	"github.com/folium-app/mango/mango"
	"github.com/folium-app/mango/savestate"
	"github.com/folium-app/mango/storage"
)

const notifyDuration = 2 * time.Second

// Options configures the shell.
type Options struct {
	Title   string
	GameCRC string // hex CRC32 of the cartridge, keys the save directory
	Resume  bool   // restore the resume state saved on the last exit
	Config  *storage.Config
}

// game implements ebiten.Game.
type game struct {
	ctx    context.Context
	m      *mango.Mango
	opts   Options
	system emucore.SystemInfo

	mapping  InputMapping
	renderer *renderer
	fb       *emuthread.SharedFramebuffer
	player   *audioPlayer

	saves  *savestate.Manager
	rewind *savestate.RewindBuffer

	notify notification
	pause  pauseOverlay

	held               [emuthread.MaxPlayers]uint32
	paused             bool
	pausedBeforeRewind bool
}

// Run starts the inserted cartridge and shows it in a window until the
// window is closed or ctx is done. The cartridge is stopped on return.
func Run(ctx context.Context, m *mango.Mango, opts Options) error {
	if opts.Config == nil {
		opts.Config = storage.DefaultConfig()
	}
	cfg := opts.Config
	system := emucore.SNES()
	aspect := emucore.DisplayAspectRatio(system.ScreenWidth, 224, system.PixelAspect)

	title := system.ConsoleName
	if opts.Title != "" {
		title = opts.Title
	}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	windowW := system.ScreenWidth * cfg.Video.Scale
	minW := system.ScreenWidth * 2
	ebiten.SetWindowSize(windowW, int(float64(windowW)/aspect))
	ebiten.SetWindowSizeLimits(minW, int(float64(minW)/aspect), -1, -1)
	ebiten.SetFullscreen(cfg.Video.Fullscreen)

	g := &game{
		ctx:      ctx,
		m:        m,
		opts:     opts,
		system:   system,
		mapping:  BuildMapping(system.Buttons, cfg.Input.Keyboard, cfg.Input.Gamepad),
		renderer: newRenderer(aspect),
		fb:       emuthread.NewSharedFramebuffer(system.ScreenWidth*2, system.MaxScreenHeight),
	}
	g.saves = savestate.NewManager(func(msg string) { g.notify.show(msg, notifyDuration) })
	g.saves.SetGame(opts.GameCRC)

	player, err := newAudioPlayer(cfg.Audio.Volume, cfg.Audio.Muted)
	if err != nil {
		log.ModShell.WithError(err).Warn("audio initialization failed")
	}
	g.player = player

	if err := g.attach(); err != nil {
		g.detach()
		return err
	}

	err = ebiten.RunGame(g)
	g.detach()
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// attach installs the callbacks, restores saved data and starts the core.
func (g *game) attach() error {
	if err := g.m.Framebuffer(g.ctx, g.onFrame); err != nil {
		return err
	}
	if g.player != nil {
		if err := g.m.Audio(g.ctx, g.player.queue); err != nil {
			return err
		}
	}

	if g.opts.GameCRC != "" {
		if err := g.saves.LoadBattery(g.ctx, g.m); err != nil {
			log.ModShell.WithError(err).Warn("failed to load battery RAM")
		}
		if g.opts.Resume && g.saves.HasResumeState() {
			if err := g.saves.LoadResume(g.ctx, g.m); err != nil {
				log.ModShell.WithError(err).Warn("failed to load resume state")
			}
		}
	}

	if rw := g.opts.Config.Rewind; rw.Enabled {
		state, err := g.m.SaveState(g.ctx)
		if err != nil {
			log.ModShell.WithError(err).Warn("rewind disabled")
		} else {
			g.rewind = savestate.NewRewindBuffer(rw.BufferSizeMB, rw.FrameStep, len(state))
		}
	}

	return g.m.Start(g.ctx)
}

// detach stops the core and writes battery RAM and the resume state. It
// runs after ctx may already be done, so it does not use it.
func (g *game) detach() {
	ctx := context.Background()

	if err := g.m.Stop(ctx); err != nil {
		log.ModShell.WithError(err).Warn("failed to stop core")
	}
	if g.opts.GameCRC != "" {
		if err := g.saves.SaveBattery(ctx, g.m); err != nil {
			log.ModShell.WithError(err).Warn("failed to save battery RAM")
		}
		if err := g.saves.SaveResume(ctx, g.m); err != nil && !errors.Is(err, emucore.ErrUnsupported) {
			log.ModShell.WithError(err).Warn("failed to save resume state")
		}
	}

	g.m.Framebuffer(ctx, nil)
	g.m.Audio(ctx, nil)
	if g.player != nil {
		g.player.close()
	}
}

// onFrame is the framebuffer callback. It runs on the core's goroutine.
func (g *game) onFrame(pixels []byte, width, height int) {
	g.fb.Publish(pixels, width, height)
}

// Update implements ebiten.Game.
func (g *game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}

	if _, err := g.m.Running(g.ctx); err != nil {
		if errors.Is(err, mango.ErrClosed) || g.ctx.Err() != nil {
			return ebiten.Termination
		}
		return err
	}

	g.handleHotkeys()
	if g.handleRewind() {
		return nil
	}
	g.pollInput()

	if g.rewind != nil && !g.paused {
		if err := g.rewind.Capture(g.ctx, g.m); err != nil {
			log.ModState.WithError(err).Debug("rewind capture failed")
		}
	}
	return nil
}

func (g *game) handleHotkeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		if err := g.m.TogglePaused(g.ctx); err != nil {
			log.ModShell.WithError(err).Warn("pause failed")
		}
		g.paused, _ = g.m.IsPaused(g.ctx)

	case inpututil.IsKeyJustPressed(ebiten.KeyF1):
		if err := g.saves.Save(g.ctx, g.m); err != nil {
			g.notify.show(err.Error(), notifyDuration)
		}

	case inpututil.IsKeyJustPressed(ebiten.KeyF2):
		g.saves.NextSlot()

	case inpututil.IsKeyJustPressed(ebiten.KeyF3):
		if err := g.saves.Load(g.ctx, g.m); err != nil {
			log.ModState.WithError(err).Debug("load state failed")
		} else if g.rewind != nil {
			g.rewind.Reset()
		}

	case inpututil.IsKeyJustPressed(ebiten.KeyF5):
		if err := g.m.Reset(g.ctx); err == nil {
			g.notify.show("Reset", notifyDuration)
		}

	case inpututil.IsKeyJustPressed(ebiten.KeyF11):
		ebiten.SetFullscreen(!ebiten.IsFullscreen())

	case inpututil.IsKeyJustPressed(ebiten.KeyF12):
		g.screenshot()
	}
}

func (g *game) screenshot() {
	path, data, err := saveScreenshot(g.fb.Read(), g.opts.GameCRC, time.Now())
	if err != nil {
		log.ModShell.WithError(err).Warn("screenshot failed")
		return
	}
	copyToClipboard(data)
	log.ModShell.Infof("screenshot saved to %s", path)
	g.notify.show("Screenshot saved", notifyDuration)
}

// handleRewind steps back through the rewind buffer while Backspace is
// held. The core stays paused for the duration. It reports whether the
// frame was spent rewinding.
func (g *game) handleRewind() bool {
	if g.rewind == nil {
		return false
	}

	hold := inpututil.KeyPressDuration(ebiten.KeyBackspace)
	if hold == 0 {
		if g.rewind.IsRewinding() {
			g.rewind.SetRewinding(false)
			if !g.pausedBeforeRewind {
				g.m.Pause(g.ctx, false)
			}
		}
		return false
	}

	if !g.rewind.IsRewinding() {
		g.rewind.SetRewinding(true)
		g.pausedBeforeRewind = g.paused
		g.m.Pause(g.ctx, true)
		if g.player != nil {
			g.player.clear()
		}
	}
	if n := savestate.StepsForHold(hold); n > 0 {
		g.rewind.Rewind(g.ctx, g.m, g.m, n)
	}
	return true
}

// pollInput forwards button presses and releases. Player 1 uses the
// keyboard and the first gamepad, player 2 the second gamepad.
func (g *game) pollInput() {
	var cur [emuthread.MaxPlayers]uint32
	cur[0] = PollKeyboard(g.mapping)

	pads := ebiten.AppendGamepadIDs(nil)
	for i, id := range pads {
		if i >= len(cur) {
			break
		}
		cur[i] |= PollGamepad(g.mapping, id)
	}

	for player := range cur {
		changedButtons(g.held[player], cur[player], func(b emucore.Button, pressed bool) {
			if err := g.m.Button(g.ctx, b, player, pressed); err != nil {
				log.ModInput.WithError(err).Debug("button dropped")
			}
		})
		g.held[player] = cur[player]
	}
}

// Draw implements ebiten.Game.
func (g *game) Draw(screen *ebiten.Image) {
	g.fb.View(func(pixels []byte, width, height int) {
		g.renderer.draw(screen, pixels, width, height)
	})
	if g.paused && (g.rewind == nil || !g.rewind.IsRewinding()) {
		g.pause.draw(screen, g.saves.Slot())
	}
	g.notify.draw(screen)
}

// Layout implements ebiten.Game.
func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := 1.0
	if m := ebiten.Monitor(); m != nil {
		s = m.DeviceScaleFactor()
	}
	return int(float64(outsideWidth) * s), int(float64(outsideHeight) * s)
}

func slotLabel(slot int) string {
	return fmt.Sprintf("Slot %d", slot)
}
