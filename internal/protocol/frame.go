package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// WebSocket frame opcodes
const (
	OpcodeContinuation = 0x0
	OpcodeText         = 0x1
	OpcodeBinary       = 0x2
	OpcodeClose        = 0x8
	OpcodePing         = 0x9
	OpcodePong         = 0xA
)

// Header bits and length markers
const (
	finBit      = 0x80
	maskBit     = 0x80
	len16Marker = 126
	len64Marker = 127
)

// DefaultMaxPayloadSize bounds a single frame payload read by Decode.
const DefaultMaxPayloadSize = 16 << 20

var (
	// ErrConnectionClosed is returned for a close frame, a short read, an
	// oversized frame or any other read failure. Callers tear down the session.
	ErrConnectionClosed = errors.New("websocket connection closed")

	// ErrNotText is returned by Decode for complete frames that are not text
	// (binary, ping, pong, continuation). The connection is still usable.
	ErrNotText = errors.New("websocket frame is not text")
)

// Frame represents a WebSocket frame
type Frame struct {
	FIN     bool
	RSV1    bool
	RSV2    bool
	RSV3    bool
	Opcode  byte
	Masked  bool
	Length  uint64
	MaskKey [4]byte
	Payload []byte
}

// ReadFrame reads a WebSocket frame from the reader.
// maxPayload of zero disables the payload bound.
func ReadFrame(r io.Reader, maxPayload uint64) (*Frame, error) {
	frame := &Frame{}

	header := make([]byte, 2)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("failed to read frame header: %w", err)
	}

	frame.FIN = (header[0] & finBit) != 0
	frame.RSV1 = (header[0] & 0x40) != 0
	frame.RSV2 = (header[0] & 0x20) != 0
	frame.RSV3 = (header[0] & 0x10) != 0
	frame.Opcode = header[0] & 0x0F

	frame.Masked = (header[1] & maskBit) != 0
	payloadLen := uint64(header[1] & 0x7F)

	switch payloadLen {
	case len16Marker:
		extLen := make([]byte, 2)
		if _, err := io.ReadFull(r, extLen); err != nil {
			return nil, fmt.Errorf("failed to read extended length: %w", err)
		}
		frame.Length = uint64(binary.BigEndian.Uint16(extLen))
	case len64Marker:
		extLen := make([]byte, 8)
		if _, err := io.ReadFull(r, extLen); err != nil {
			return nil, fmt.Errorf("failed to read extended length: %w", err)
		}
		frame.Length = binary.BigEndian.Uint64(extLen)
	default:
		frame.Length = payloadLen
	}

	if maxPayload > 0 && frame.Length > maxPayload {
		return nil, fmt.Errorf("frame payload %d exceeds limit %d", frame.Length, maxPayload)
	}

	// Client-to-server frames carry a mask key
	if frame.Masked {
		if _, err := io.ReadFull(r, frame.MaskKey[:]); err != nil {
			return nil, fmt.Errorf("failed to read mask key: %w", err)
		}
	}

	frame.Payload = []byte{}
	if frame.Length > 0 {
		payload := make([]byte, frame.Length)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, fmt.Errorf("failed to read payload: %w", err)
		}

		if frame.Masked {
			maskPayload(payload, frame.MaskKey)
		}
		frame.Payload = payload
	}

	return frame, nil
}

// Decode reads one frame and returns its text.
//
// A close frame and every read failure map to ErrConnectionClosed; the codec
// does not distinguish a protocol violation from an orderly close.
func Decode(r io.Reader, maxPayload uint64) (string, error) {
	frame, err := ReadFrame(r, maxPayload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrConnectionClosed, err)
	}

	switch frame.Opcode {
	case OpcodeText:
		return string(frame.Payload), nil
	case OpcodeClose:
		return "", ErrConnectionClosed
	default:
		return "", fmt.Errorf("%w: %s", ErrNotText, frame.OpcodeString())
	}
}

// EncodeText builds an unmasked, final text frame.
func EncodeText(text string) []byte {
	return EncodeFrame(OpcodeText, []byte(text))
}

// EncodeClose builds an unmasked close frame with an empty body.
func EncodeClose() []byte {
	return EncodeFrame(OpcodeClose, nil)
}

// EncodeFrame wraps payload in a final, unmasked (server-to-client) frame.
func EncodeFrame(opcode byte, payload []byte) []byte {
	frame := appendHeader(make([]byte, 0, len(payload)+10), opcode, false, len(payload))
	return append(frame, payload...)
}

// EncodeMaskedFrame wraps payload in a final frame masked with key, the way
// a client must send it.
func EncodeMaskedFrame(opcode byte, payload []byte, key [4]byte) []byte {
	frame := appendHeader(make([]byte, 0, len(payload)+14), opcode, true, len(payload))
	frame = append(frame, key[:]...)

	start := len(frame)
	frame = append(frame, payload...)
	maskPayload(frame[start:], key)
	return frame
}

// appendHeader writes the FIN/opcode byte and the 7, 16 or 64-bit length.
func appendHeader(dst []byte, opcode byte, masked bool, payloadLen int) []byte {
	dst = append(dst, finBit|(opcode&0x0F))

	var mask byte
	if masked {
		mask = maskBit
	}

	switch {
	case payloadLen < len16Marker:
		dst = append(dst, mask|byte(payloadLen))
	case payloadLen < 1<<16:
		dst = append(dst, mask|len16Marker)
		dst = binary.BigEndian.AppendUint16(dst, uint16(payloadLen))
	default:
		dst = append(dst, mask|len64Marker)
		dst = binary.BigEndian.AppendUint64(dst, uint64(payloadLen))
	}
	return dst
}

// maskPayload XORs payload in place with the 4-byte key. Masking and
// unmasking are the same operation.
func maskPayload(payload []byte, maskKey [4]byte) {
	for i := range payload {
		payload[i] ^= maskKey[i%4]
	}
}

// OpcodeString returns a human-readable opcode name
func (f *Frame) OpcodeString() string {
	return OpcodeName(f.Opcode)
}

// OpcodeName returns a human-readable name for an opcode
func OpcodeName(op byte) string {
	switch op {
	case OpcodeContinuation:
		return "continuation"
	case OpcodeText:
		return "text"
	case OpcodeBinary:
		return "binary"
	case OpcodeClose:
		return "close"
	case OpcodePing:
		return "ping"
	case OpcodePong:
		return "pong"
	default:
		return fmt.Sprintf("unknown(0x%X)", op)
	}
}

// String returns a debug representation of the frame
func (f *Frame) String() string {
	return fmt.Sprintf("Frame{FIN=%v, Opcode=%s, Masked=%v, Length=%d}",
		f.FIN, f.OpcodeString(), f.Masked, f.Length)
}
