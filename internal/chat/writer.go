package chat

import (
	"log/slog"

	"github.com/blackhat-coder/TcpChat/internal/wire"
)

// startWriter drains a node's outbox onto its connection. Broadcasters and
// the command dispatcher enqueue; this goroutine is the only writer once the
// session is active. It stops when the outbox closes or the connection
// breaks; senders keep dropping into the full buffer either way.
func startWriter(conn wire.Conn, out <-chan *wire.Envelope, logger *slog.Logger) {
	go func() {
		for env := range out {
			if err := conn.WriteMessage(env); err != nil {
				logger.Debug("outbound writer stopped", "error", err)
				return
			}
		}
	}()
}
