package chat

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/blackhat-coder/TcpChat/internal/wire"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWS upgrades an HTTP request and runs the same session state machine
// over the WebSocket transport. The handshake, registration and room
// semantics are identical to the framed TCP path.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	s.logger.Info("peer connected", "addr", conn.RemoteAddr().String(), "transport", "websocket")
	go NewSession(wire.NewWebSocketConn(conn), s.names, s.nodes, s.rooms, s.logger).Run()
}
