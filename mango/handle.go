// Package mango exposes an emulator core through facades that all share
// one owner goroutine. Every call into the core, whatever facade it comes
// from, runs on that goroutine, so the core never sees concurrent calls
// from facade users.
package mango

import (
	"context"
	"errors"
	"io"
	"sync"

	emucore "github.com/folium-app/mango/api"
	"github.com/folium-app/mango/internal/log"
)

// ErrClosed is returned by calls made after the handle was closed.
var ErrClosed = errors.New("mango: handle closed")

// Handle owns a core. Create one with New and obtain facades from it.
//
// Callbacks installed through a facade may run on the owner goroutine
// (during Step) and must not call back into any facade.
type Handle struct {
	core  emucore.Core
	calls chan func()
	quit  chan struct{}
	done  chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// New starts the owner goroutine for core.
func New(core emucore.Core) *Handle {
	h := &Handle{
		core:  core,
		calls: make(chan func()),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Handle) run() {
	defer close(h.done)
	for {
		select {
		case fn := <-h.calls:
			fn()
		case <-h.quit:
			return
		}
	}
}

// do runs fn with the core on the owner goroutine and waits for it to
// finish. When ctx ends first, fn may still run but its results must be
// ignored by the caller.
func (h *Handle) do(ctx context.Context, fn func(emucore.Core)) error {
	finished := make(chan struct{})
	call := func() {
		defer close(finished)
		fn(h.core)
	}

	select {
	case h.calls <- call:
	case <-h.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// call runs fn on the owner goroutine and returns its result.
func call[T any](ctx context.Context, h *Handle, fn func(emucore.Core) T) (T, error) {
	var v T
	if err := h.do(ctx, func(c emucore.Core) { v = fn(c) }); err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}

// Mango returns the context aware facade.
func (h *Handle) Mango() *Mango {
	return &Mango{h: h}
}

// Bridge returns the synchronous facade.
func (h *Handle) Bridge() *Bridge {
	return &Bridge{h: h}
}

// Close stops the owner goroutine and the core, then closes the core when
// it implements io.Closer. Calls already accepted finish first. Close is
// idempotent.
func (h *Handle) Close() error {
	h.closeOnce.Do(func() {
		close(h.quit)
		<-h.done

		h.core.Stop()
		if c, ok := h.core.(io.Closer); ok {
			h.closeErr = c.Close()
		}
		log.ModEmu.Debugf("handle closed")
	})
	return h.closeErr
}
