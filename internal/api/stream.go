package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/talgya/ecosphere/internal/eco"
)

// handleStream upgrades to a websocket and subscribes the client to per-tick
// updates. The first frame is the current state so late joiners render
// immediately.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("websocket upgrade failed", "error", err)
		return
	}

	// Send the initial frame before registering the conn. Once registered,
	// broadcast may write from the driver goroutine, and gorilla websockets
	// forbid concurrent writers on one conn.
	if err := conn.WriteJSON(map[string]any{"type": "state", "state": s.currentState()}); err != nil {
		conn.Close()
		return
	}

	s.streamMu.Lock()
	s.streams[conn] = struct{}{}
	s.streamMu.Unlock()

	// Reader loop exists only to detect disconnects; clients never send.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.dropStream(conn)
				return
			}
		}
	}()
}

// publishTick fans one tick result out to all stream subscribers. Wired as
// the driver's OnTick callback.
func (s *Server) publishTick(res eco.TickResult) {
	s.broadcast(map[string]any{"type": "tick", "tick": res})
}

func (s *Server) broadcast(msg any) {
	s.streamMu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.streams))
	for c := range s.streams {
		conns = append(conns, c)
	}
	s.streamMu.Unlock()

	for _, c := range conns {
		if err := c.WriteJSON(msg); err != nil {
			s.dropStream(c)
		}
	}
}

func (s *Server) dropStream(conn *websocket.Conn) {
	s.streamMu.Lock()
	delete(s.streams, conn)
	s.streamMu.Unlock()
	conn.Close()
}
