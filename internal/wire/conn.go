package wire

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is one message-framed peer connection. ReadMessage returns raw
// payloads; WriteMessage serializes v to JSON and frames it. Writes are safe
// for concurrent use; reads are not.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(v any) error
	Close() error
	RemoteAddr() net.Addr
}

type frameConn struct {
	conn net.Conn
	r    *bufio.Reader

	mu sync.Mutex // guards w
	w  *bufio.Writer
}

// NewFrameConn wraps a stream connection with the length-prefix codec.
func NewFrameConn(conn net.Conn) Conn {
	return &frameConn{
		conn: conn,
		r:    bufio.NewReader(conn),
		w:    bufio.NewWriter(conn),
	}
}

func (c *frameConn) ReadMessage() ([]byte, error) {
	return ReadFrame(c.r)
}

func (c *frameConn) WriteMessage(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("wire: encode message: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := WriteFrame(c.w, payload); err != nil {
		return err
	}
	return c.w.Flush()
}

func (c *frameConn) Close() error {
	return c.conn.Close()
}

func (c *frameConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

const wsMaxMsgSize = 1 << 20 // 1MB

// Keepalive timing; vars so tests can shrink the periods.
var (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn

	done      chan struct{}
	closeOnce sync.Once
}

// NewWebSocketConn adapts a WebSocket connection to Conn. WebSocket frames
// already delimit messages, so no length prefix is used: one envelope per
// text message. Unlike the framed TCP path, the connection is kept alive
// with pings: a peer that stops answering pongs fails its next read once
// the deadline lapses, so dead WS peers cannot hold a session open.
func NewWebSocketConn(conn *websocket.Conn) Conn {
	conn.SetReadLimit(wsMaxMsgSize)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	c := &wsConn{conn: conn, done: make(chan struct{})}
	go c.pingLoop()
	return c
}

func (c *wsConn) pingLoop() {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.mu.Unlock()
			if err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	_, payload, err := c.conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *wsConn) WriteMessage(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("wire: encode message: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *wsConn) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	return c.conn.Close()
}

func (c *wsConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
