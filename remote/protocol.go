package remote

import (
	"fmt"

	"github.com/go-faster/jx"

	emucore "github.com/folium-app/mango/api"
)

// The remote control protocol is one JSON object per websocket text message.
// Each request carries an "op" and the fields that op needs:
//
//	{"id":1,"op":"button","button":"A","player":0,"pressed":true}
//
// and every request gets exactly one reply echoing its id:
//
//	{"id":1,"ok":true}
//	{"id":2,"ok":true,"value":"Super Metroid"}
//	{"id":3,"ok":false,"error":"no cartridge inserted"}

// request is a decoded client request.
type request struct {
	ID      int64
	Op      string
	Path    string
	Button  emucore.Button
	Player  int
	Pressed bool
	Paused  bool
	Data    []byte
}

func decodeRequest(data []byte) (request, error) {
	var req request
	d := jx.DecodeBytes(data)
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "id":
			req.ID, err = d.Int64()
		case "op":
			req.Op, err = d.Str()
		case "path":
			req.Path, err = d.Str()
		case "button":
			req.Button, err = decodeButton(d)
		case "player":
			req.Player, err = d.Int()
		case "pressed":
			req.Pressed, err = d.Bool()
		case "paused":
			req.Paused, err = d.Bool()
		case "data":
			req.Data, err = d.Base64()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return request{}, fmt.Errorf("malformed request: %w", err)
	}
	if req.Op == "" {
		return request{}, fmt.Errorf("malformed request: missing op")
	}
	return req, nil
}

// decodeButton accepts a button name ("Start") or its numeric code.
func decodeButton(d *jx.Decoder) (emucore.Button, error) {
	if d.Next() == jx.String {
		name, err := d.Str()
		if err != nil {
			return 0, err
		}
		return emucore.ParseButton(name)
	}
	code, err := d.Int32()
	if err != nil {
		return 0, err
	}
	return emucore.Button(code), nil
}

// reply is the response to one request. value, when set, writes the
// "value" field and may add sibling fields.
type reply struct {
	id    int64
	err   error
	value func(e *jx.Encoder)
}

func (r reply) encode() []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(r.id)
	e.FieldStart("ok")
	e.Bool(r.err == nil)
	if r.err != nil {
		e.FieldStart("error")
		e.Str(r.err.Error())
	} else if r.value != nil {
		r.value(&e)
	}
	e.ObjEnd()
	return e.Bytes()
}

func boolValue(v bool) func(e *jx.Encoder) {
	return func(e *jx.Encoder) {
		e.FieldStart("value")
		e.Bool(v)
	}
}

func strValue(v string) func(e *jx.Encoder) {
	return func(e *jx.Encoder) {
		e.FieldStart("value")
		e.Str(v)
	}
}

func bytesValue(v []byte) func(e *jx.Encoder) {
	return func(e *jx.Encoder) {
		e.FieldStart("value")
		e.Base64(v)
	}
}
