// Package remote lets clients drive a core over a websocket. Every request
// is forwarded through a mango.Mango facade, so remote calls are serialized
// with those of every other facade.
package remote

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/folium-app/mango/internal/log"
	"github.com/folium-app/mango/mango"
)

// Server serves the remote control protocol on /ws.
type Server struct {
	m *mango.Mango
}

// NewServer returns a server forwarding to m.
func NewServer(m *mango.Mango) *Server {
	return &Server{m: m}
}

// Handler returns the HTTP handler serving the websocket endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebsocket)
	return mux
}

// Start listens on hostport and serves until ctx is done. It returns the
// address actually listened on.
func (s *Server) Start(ctx context.Context, hostport string) (net.Addr, error) {
	ln, err := net.Listen("tcp", hostport)
	if err != nil {
		return nil, err
	}

	server := &http.Server{Handler: s.Handler()}

	go func() {
		log.ModRemote.Infof("remote control listening on %s", ln.Addr())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.ModRemote.WithError(err).Error("remote server stopped")
		}
	}()
	go func() {
		<-ctx.Done()
		server.Close()
	}()

	return ln.Addr(), nil
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.ModRemote.WithError(err).Warn("websocket handshake failed")
		return
	}
	defer ws.Close()

	log.ModRemote.Debugf("client connected from %s", r.RemoteAddr)

	if err := newDriver(s.m, ws).drive(r.Context()); err != nil {
		log.ModRemote.WithError(err).Debug("client connection ended")
	}
}
