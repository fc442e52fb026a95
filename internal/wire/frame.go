// Package wire implements the framed message protocol shared by the server
// and the client: a 4-byte little-endian length prefix followed by a UTF-8
// JSON payload, one envelope per frame.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const lengthPrefixSize = 4

// ErrShortRead reports a connection that closed mid-prefix or mid-payload.
// Callers treat it the same as a clean disconnect; no partial payload is
// ever returned.
var ErrShortRead = errors.New("wire: short read")

// WriteFrame writes the length prefix followed by the raw payload.
func WriteFrame(w io.Writer, payload []byte) error {
	var prefix [lengthPrefixSize]byte
	binary.LittleEndian.PutUint32(prefix[:], uint32(len(payload)))
	if _, err := w.Write(prefix[:]); err != nil {
		return fmt.Errorf("wire: write prefix: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("wire: write payload: %w", err)
	}
	return nil
}

// ReadFrame blocks until one complete frame is available and returns its
// payload with the prefix stripped. A clean close before any bytes yields
// io.EOF; a close after partial bytes yields ErrShortRead.
//
// No maximum payload size is enforced here; a hostile peer can declare an
// arbitrarily large frame.
func ReadFrame(r io.Reader) ([]byte, error) {
	var prefix [lengthPrefixSize]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrShortRead
		}
		return nil, fmt.Errorf("wire: read prefix: %w", err)
	}

	length := binary.LittleEndian.Uint32(prefix[:])
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrShortRead
		}
		return nil, fmt.Errorf("wire: read payload: %w", err)
	}
	return payload, nil
}
