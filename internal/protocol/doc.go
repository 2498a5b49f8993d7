// Package protocol implements the WebSocket wire format used by scenebridge.
//
// The transport is deliberately small: one text-message codec and the HTTP
// upgrade exchange, written against a raw net.Conn rather than an HTTP server.
//
// # Frame Format
//
//	byte 0: FIN(1) RSV1-3(3) opcode(4)
//	byte 1: MASK(1) length(7)
//	length == 126: 2-byte big-endian extended length follows
//	length == 127: 8-byte big-endian extended length follows
//	MASK set: 4-byte masking key follows
//	payload
//
// Server frames are sent unmasked with a first byte of 0x81 (FIN + text).
// Client frames are masked; ReadFrame XORs each payload byte with
// key[i%4] before returning it.
//
// # Closed Signal
//
// Decode folds every failure into ErrConnectionClosed: a close frame, a read
// that returns fewer bytes than the header promised, an oversized payload or
// an I/O error. The session reacts to all of them the same way, by tearing the
// connection down and returning to accept. Complete frames with other opcodes
// yield ErrNotText and leave the stream aligned on the next frame.
//
// # Handshake
//
//	HTTP/1.1 101 Switching Protocols\r\n
//	Upgrade: websocket\r\n
//	Connection: Upgrade\r\n
//	Sec-WebSocket-Accept: base64(SHA-1(key + 258EAFA5-E914-47DA-95CA-C5AB0DC85B11))\r\n
//	\r\n
//
// Two read strategies exist. HandshakeSingleRead performs one bounded read and
// is kept for compatibility with controllers tested against that behaviour;
// HandshakeBuffered accumulates until the header terminator and is the default.
package protocol
