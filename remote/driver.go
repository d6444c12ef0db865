package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-faster/jx"
	"github.com/gorilla/websocket"

	"github.com/folium-app/mango/audio"
	"github.com/folium-app/mango/internal/log"
	"github.com/folium-app/mango/mango"
)

var errMissingData = errors.New("malformed request: missing data")

type handlerFunc func(ctx context.Context, req request) reply

// driver serves one client connection.
type driver struct {
	m  *mango.Mango
	ws *websocket.Conn

	handlers map[string]handlerFunc
}

func newDriver(m *mango.Mango, ws *websocket.Conn) *driver {
	d := &driver{
		m:  m,
		ws: ws,
	}
	d.handlers = map[string]handlerFunc{
		"insert":  d.handleInsert,
		"start":   d.handleStart,
		"stop":    d.handleStop,
		"reset":   d.handleReset,
		"step":    d.handleStep,
		"pause":   d.handlePause,
		"toggle":  d.handleToggle,
		"paused":  d.handlePaused,
		"running": d.handleRunning,
		"type":    d.handleType,
		"title":   d.handleTitle,
		"region":  d.handleRegion,
		"button":  d.handleButton,
		"video":   d.handleVideo,
		"audio":   d.handleAudio,
		"save":    d.handleSave,
		"load":    d.handleLoad,
	}
	return d
}

// drive answers requests until the connection fails.
func (d *driver) drive(ctx context.Context) error {
	for {
		kind, data, err := d.ws.ReadMessage()
		if err != nil {
			return err
		}
		if kind != websocket.TextMessage {
			continue
		}

		var resp reply
		req, err := decodeRequest(data)
		if err != nil {
			resp = reply{err: err}
		} else {
			log.ModRemote.WithField("op", req.Op).Debug("request")
			resp = d.dispatch(ctx, req)
		}

		if err := d.ws.WriteMessage(websocket.TextMessage, resp.encode()); err != nil {
			return err
		}
	}
}

func (d *driver) dispatch(ctx context.Context, req request) reply {
	handler, ok := d.handlers[req.Op]
	if !ok {
		log.ModRemote.WithField("op", req.Op).Warn("unknown op")
		return reply{id: req.ID, err: fmt.Errorf("unknown op %q", req.Op)}
	}
	resp := handler(ctx, req)
	resp.id = req.ID
	return resp
}

func (d *driver) handleInsert(ctx context.Context, req request) reply {
	return reply{err: d.m.Insert(ctx, req.Path)}
}

func (d *driver) handleStart(ctx context.Context, req request) reply {
	return reply{err: d.m.Start(ctx)}
}

func (d *driver) handleStop(ctx context.Context, req request) reply {
	return reply{err: d.m.Stop(ctx)}
}

func (d *driver) handleReset(ctx context.Context, req request) reply {
	return reply{err: d.m.Reset(ctx)}
}

func (d *driver) handleStep(ctx context.Context, req request) reply {
	return reply{err: d.m.Step(ctx)}
}

func (d *driver) handlePause(ctx context.Context, req request) reply {
	return reply{err: d.m.Pause(ctx, req.Paused)}
}

func (d *driver) handleToggle(ctx context.Context, req request) reply {
	return reply{err: d.m.TogglePaused(ctx)}
}

func (d *driver) handlePaused(ctx context.Context, req request) reply {
	v, err := d.m.IsPaused(ctx)
	return reply{err: err, value: boolValue(v)}
}

func (d *driver) handleRunning(ctx context.Context, req request) reply {
	v, err := d.m.Running(ctx)
	return reply{err: err, value: boolValue(v)}
}

func (d *driver) handleType(ctx context.Context, req request) reply {
	t, err := d.m.Type(ctx)
	return reply{err: err, value: strValue(t.String())}
}

func (d *driver) handleTitle(ctx context.Context, req request) reply {
	v, err := d.m.Title(ctx, req.Path)
	return reply{err: err, value: strValue(v)}
}

func (d *driver) handleRegion(ctx context.Context, req request) reply {
	v, err := d.m.Region(ctx, req.Path)
	return reply{err: err, value: strValue(v)}
}

func (d *driver) handleButton(ctx context.Context, req request) reply {
	return reply{err: d.m.Button(ctx, req.Button, req.Player, req.Pressed)}
}

// handleVideo returns the last frame as base64 RGBA with its size.
func (d *driver) handleVideo(ctx context.Context, req request) reply {
	f, err := d.m.Frame(ctx)
	if err != nil {
		return reply{err: err}
	}
	return reply{value: func(e *jx.Encoder) {
		e.FieldStart("value")
		e.Base64(f.Pixels)
		e.FieldStart("width")
		e.Int(f.Width)
		e.FieldStart("height")
		e.Int(f.Height)
	}}
}

// handleAudio returns the last frame of samples as base64 s16le stereo.
func (d *driver) handleAudio(ctx context.Context, req request) reply {
	samples, err := d.m.AudioBuffer(ctx)
	if err != nil {
		return reply{err: err}
	}
	pcm := audio.SamplesToBytes(make([]byte, 0, len(samples)*2), samples)
	return reply{value: func(e *jx.Encoder) {
		e.FieldStart("value")
		e.Base64(pcm)
		e.FieldStart("rate")
		e.Int(audio.OutputRate)
	}}
}

func (d *driver) handleSave(ctx context.Context, req request) reply {
	state, err := d.m.SaveState(ctx)
	return reply{err: err, value: bytesValue(state)}
}

func (d *driver) handleLoad(ctx context.Context, req request) reply {
	if len(req.Data) == 0 {
		return reply{err: errMissingData}
	}
	return reply{err: d.m.LoadState(ctx, req.Data)}
}
