package chat

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/blackhat-coder/TcpChat/internal/wire"
)

func dialWSPeer(t *testing.T, srv *Server) *testPeer {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(srv.handleWS))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	wc, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	wc.UnderlyingConn().SetDeadline(time.Now().Add(5 * time.Second))
	t.Cleanup(func() { wc.Close() })
	return &testPeer{t: t, conn: wire.NewWebSocketConn(wc)}
}

// A WebSocket peer and a framed TCP peer share rooms and broadcasts; the
// session semantics are transport-independent.
func TestServer_WebSocketInterop(t *testing.T) {
	srv := startTestServer(t)

	alice := dialPeer(t, srv)
	alice.handshake("alice")
	if result := roomResult(t, alice.command(wire.CommandCreateChatRoom, "general")); !result.Success {
		t.Fatalf("create failed: %+v", result)
	}

	wanda := dialWSPeer(t, srv)
	listing := wanda.handshake("wanda")
	if len(listing.ChatRooms) != 1 || listing.ChatRooms[0].Name != "general" {
		t.Fatalf("unexpected listing over websocket: %+v", listing.ChatRooms)
	}

	if result := roomResult(t, wanda.command(wire.CommandJoinChatRoom, "general")); !result.Success {
		t.Fatalf("join failed: %+v", result)
	}

	alice.send(wire.NewChatMessage("hello from tcp", "alice"))
	env := wanda.readEnvelope()
	if env.Type != wire.TypeMessage || env.Data == nil || env.Data.Message != "hello from tcp" {
		t.Fatalf("websocket peer received %+v", env)
	}

	wanda.send(wire.NewChatMessage("hello from ws", "wanda"))
	env = alice.readEnvelope()
	if env.Type != wire.TypeMessage || env.Data == nil ||
		env.Data.Message != "hello from ws" || env.Data.SentBy != "wanda" {
		t.Fatalf("tcp peer received %+v", env)
	}
}
