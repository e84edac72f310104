package nativemsg

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxMessageSize is the largest frame accepted or sent, matching the
// browser's limit for messages from the host.
const MaxMessageSize = 1 << 20

// ErrMessageTooLarge is returned for frames above MaxMessageSize.
var ErrMessageTooLarge = errors.New("native message exceeds 1 MiB")

// ReadMessage reads one frame: a 4-byte little-endian length followed by
// that many bytes of UTF-8 JSON. It returns io.EOF when the browser closed
// the pipe between frames.
func ReadMessage(r io.Reader) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("reading frame header: %w", err)
		}
		return nil, err
	}
	n := binary.LittleEndian.Uint32(hdr[:])
	if n > MaxMessageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("reading frame body: %w", err)
	}
	return buf, nil
}

// WriteMessage writes data as one frame.
func WriteMessage(w io.Writer, data []byte) error {
	if len(data) > MaxMessageSize {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, len(data))
	}
	frame := make([]byte, 4+len(data))
	binary.LittleEndian.PutUint32(frame, uint32(len(data)))
	copy(frame[4:], data)
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}
