package protocol

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize is the maximum allowed frame payload (1 MiB).
const MaxFrameSize = 1 << 20

// ErrFrameTooLarge is returned when a frame's length prefix exceeds MaxFrameSize.
var ErrFrameTooLarge = errors.New("frame too large")

// WriteFrame writes a length-prefixed JSON message to w.
// The frame format is: 4-byte big-endian length prefix followed by the JSON payload.
func WriteFrame(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	if len(data) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(data))
	}

	buf := make([]byte, 4+len(data))
	binary.BigEndian.PutUint32(buf, uint32(len(data)))
	copy(buf[4:], data)

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed payload from r without decoding it,
// so callers can tell framing errors from content errors.
func ReadFrame(r io.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return nil, fmt.Errorf("read length prefix: %w", err)
	}

	if length > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d exceeds maximum %d", ErrFrameTooLarge, length, MaxFrameSize)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return data, nil
}

// ReadMessage reads a frame from r and decodes it into v.
func ReadMessage(r io.Reader, v any) error {
	data, err := ReadFrame(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal frame: %w", err)
	}
	return nil
}
