package protocol

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"strings"
)

// AcceptGUID is the RFC 6455 constant appended to the client key.
const AcceptGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// HandshakeMode selects how the upgrade request is read off the socket.
type HandshakeMode string

const (
	// HandshakeSingleRead reads the request with exactly one bounded Read and
	// assumes the whole header arrived in one segment. TCP gives no such
	// guarantee; keep it for compatibility with existing controllers.
	HandshakeSingleRead HandshakeMode = "single"

	// HandshakeBuffered accumulates reads until the blank line that ends the
	// header, or until MaxHandshakeSize is exceeded.
	HandshakeBuffered HandshakeMode = "buffered"
)

const (
	// SingleReadSize is the read size used by HandshakeSingleRead.
	SingleReadSize = 1024

	// MaxHandshakeSize bounds the header accumulated by HandshakeBuffered.
	MaxHandshakeSize = 8 << 10
)

var (
	// ErrMissingKey means the request carried no Sec-WebSocket-Key header.
	ErrMissingKey = errors.New("missing Sec-WebSocket-Key header")

	// ErrHeaderTooLarge means no header terminator was seen within MaxHandshakeSize.
	ErrHeaderTooLarge = errors.New("upgrade request header too large")
)

// ParseHandshakeMode validates a mode name. Empty selects HandshakeBuffered.
func ParseHandshakeMode(s string) (HandshakeMode, error) {
	switch HandshakeMode(strings.ToLower(s)) {
	case "", HandshakeBuffered:
		return HandshakeBuffered, nil
	case HandshakeSingleRead:
		return HandshakeSingleRead, nil
	default:
		return "", fmt.Errorf("invalid handshake mode %q (expected %q or %q)", s, HandshakeSingleRead, HandshakeBuffered)
	}
}

// UpgradeRequest is the parsed client side of the opening handshake.
type UpgradeRequest struct {
	Method  string
	Path    string
	Proto   string
	Header  textproto.MIMEHeader
	Key     string
	Request []byte // raw bytes as read

	// Rest holds bytes read past the end of the header. A client that sends
	// its first frame without waiting for the 101 response puts it here.
	Rest []byte
}

// HandshakeError wraps a handshake failure with the bytes that were read.
type HandshakeError struct {
	Mode HandshakeMode
	Raw  []byte
	Err  error
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("websocket handshake failed (%s read, %d bytes): %v", e.Mode, len(e.Raw), e.Err)
}

func (e *HandshakeError) Unwrap() error {
	return e.Err
}

// ComputeAccept returns base64(SHA-1(key + AcceptGUID)).
func ComputeAccept(key string) string {
	sum := sha1.Sum([]byte(key + AcceptGUID))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// ReadUpgradeRequest reads and parses the client's HTTP upgrade request.
func ReadUpgradeRequest(r io.Reader, mode HandshakeMode) (*UpgradeRequest, error) {
	var (
		raw []byte
		err error
	)

	switch mode {
	case HandshakeSingleRead:
		raw, err = readOnce(r)
	default:
		mode = HandshakeBuffered
		raw, err = readUntilBlankLine(r)
	}
	if err != nil {
		return nil, &HandshakeError{Mode: mode, Raw: raw, Err: err}
	}

	req, err := parseUpgradeRequest(raw)
	if err != nil {
		return nil, &HandshakeError{Mode: mode, Raw: raw, Err: err}
	}
	return req, nil
}

func readOnce(r io.Reader) ([]byte, error) {
	buf := make([]byte, SingleReadSize)
	n, err := r.Read(buf)
	if n == 0 {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("failed to read upgrade request: %w", err)
	}
	return buf[:n], nil
}

func readUntilBlankLine(r io.Reader) ([]byte, error) {
	var raw []byte
	buf := make([]byte, 1024)
	for {
		n, err := r.Read(buf)
		raw = append(raw, buf[:n]...)
		if bytes.Contains(raw, []byte("\r\n\r\n")) {
			return raw, nil
		}
		if len(raw) > MaxHandshakeSize {
			return raw, ErrHeaderTooLarge
		}
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return raw, fmt.Errorf("failed to read upgrade request: %w", err)
		}
	}
}

// parseUpgradeRequest tolerates a truncated header: a single read may stop
// mid-header, and the key is all we need.
func parseUpgradeRequest(raw []byte) (*UpgradeRequest, error) {
	var rest []byte
	if end := bytes.Index(raw, []byte("\r\n\r\n")); end >= 0 {
		rest = raw[end+4:]
		raw = raw[:end+4]
	} else {
		raw = append(bytes.TrimRight(raw, "\r\n"), "\r\n\r\n"...)
	}

	tp := textproto.NewReader(bufio.NewReader(bytes.NewReader(raw)))

	line, err := tp.ReadLine()
	if err != nil {
		return nil, fmt.Errorf("failed to read request line: %w", err)
	}

	req := &UpgradeRequest{Request: raw, Rest: rest}
	parts := strings.SplitN(line, " ", 3)
	if len(parts) == 3 {
		req.Method, req.Path, req.Proto = parts[0], parts[1], parts[2]
	}

	header, err := tp.ReadMIMEHeader()
	if err != nil && len(header) == 0 {
		return nil, fmt.Errorf("failed to read request headers: %w", err)
	}
	req.Header = header

	req.Key = strings.TrimSpace(header.Get("Sec-WebSocket-Key"))
	if req.Key == "" {
		return nil, ErrMissingKey
	}
	return req, nil
}

// UpgradeResponse returns the exact 101 response for a client key.
func UpgradeResponse(key string) []byte {
	return []byte("HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + ComputeAccept(key) + "\r\n" +
		"\r\n")
}

// WriteUpgradeResponse writes the 101 response that completes the handshake.
func WriteUpgradeResponse(w io.Writer, key string) error {
	if _, err := w.Write(UpgradeResponse(key)); err != nil {
		return fmt.Errorf("failed to write HTTP 101 response: %w", err)
	}
	return nil
}

// HeaderMap flattens the request headers for logging.
func (r *UpgradeRequest) HeaderMap() map[string]string {
	headers := make(map[string]string, len(r.Header))
	for key, values := range r.Header {
		headers[key] = strings.Join(values, ", ")
	}
	return headers
}
