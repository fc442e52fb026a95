package wire

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"net"
	"testing"
)

func TestFrame_RoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		[]byte("x"),
		[]byte(`{"type":"MESSAGE"}`),
		bytes.Repeat([]byte("chat payload "), 1024), // ~13KB
	}

	for _, want := range payloads {
		var buf bytes.Buffer
		if err := WriteFrame(&buf, want); err != nil {
			t.Fatalf("WriteFrame(%d bytes) error: %v", len(want), err)
		}
		got, err := ReadFrame(&buf)
		if err != nil {
			t.Fatalf("ReadFrame(%d bytes) error: %v", len(want), err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("round trip mismatch for %d byte payload", len(want))
		}
	}
}

func TestReadFrame_CleanCloseBeforePrefix(t *testing.T) {
	if _, err := ReadFrame(bytes.NewReader(nil)); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
}

func TestReadFrame_PartialPrefix(t *testing.T) {
	if _, err := ReadFrame(bytes.NewReader([]byte{0x05, 0x00})); !errors.Is(err, ErrShortRead) {
		t.Fatalf("expected ErrShortRead, got %v", err)
	}
}

func TestReadFrame_TruncatedPayload(t *testing.T) {
	// Prefix declares 100 bytes but the stream closes after 10.
	var buf bytes.Buffer
	var prefix [4]byte
	binary.LittleEndian.PutUint32(prefix[:], 100)
	buf.Write(prefix[:])
	buf.Write(bytes.Repeat([]byte("a"), 10))

	got, err := ReadFrame(&buf)
	if !errors.Is(err, ErrShortRead) {
		t.Fatalf("expected ErrShortRead, got %v", err)
	}
	if got != nil {
		t.Fatalf("partial payload surfaced: %d bytes", len(got))
	}
}

func TestEnvelope_RoundTripThroughCodec(t *testing.T) {
	want := NewChatMessage("hello room", "alice")

	var buf bytes.Buffer
	payload, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if err := WriteFrame(&buf, payload); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}
	raw, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	got, err := DecodeEnvelope(raw)
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	if got.Type != want.Type || got.Data == nil ||
		got.Data.Message != want.Data.Message || got.Data.SentBy != want.Data.SentBy {
		t.Fatalf("envelope round trip mismatch: %+v", got)
	}
}

func TestDecodeEnvelope_Malformed(t *testing.T) {
	for _, raw := range [][]byte{[]byte("{not json"), []byte(`{"data":{"message":"hi"}}`)} {
		if _, err := DecodeEnvelope(raw); !errors.Is(err, ErrMalformed) {
			t.Fatalf("DecodeEnvelope(%q): expected ErrMalformed, got %v", raw, err)
		}
	}
}

func TestFrameConn_RoundTripOverPipe(t *testing.T) {
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	src := NewFrameConn(a)
	dst := NewFrameConn(b)

	go func() {
		_ = src.WriteMessage(NewCommand(CommandJoinChatRoom, "general"))
	}()

	payload, err := dst.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	env, err := DecodeEnvelope(payload)
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	if env.Type != TypeCommand || env.CommandRequest == nil ||
		env.CommandRequest.Command != CommandJoinChatRoom || env.CommandRequest.Value != "general" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}
