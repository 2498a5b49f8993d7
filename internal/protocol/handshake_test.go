package protocol

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

const sampleRequest = "GET /chat HTTP/1.1\r\n" +
	"Host: 127.0.0.1:8765\r\n" +
	"Upgrade: websocket\r\n" +
	"Connection: Upgrade\r\n" +
	"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n" +
	"Sec-WebSocket-Version: 13\r\n" +
	"\r\n"

// chunkReader returns at most n bytes per Read, like a TCP stream that
// delivers the header in several segments.
type chunkReader struct {
	data []byte
	n    int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	n := c.n
	if n > len(p) {
		n = len(p)
	}
	if n > len(c.data) {
		n = len(c.data)
	}
	copy(p, c.data[:n])
	c.data = c.data[n:]
	return n, nil
}

func TestComputeAccept(t *testing.T) {
	got := ComputeAccept("dGhlIHNhbXBsZSBub25jZQ==")
	if got != "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=" {
		t.Errorf("ComputeAccept() = %q, want %q", got, "s3pPLMBiTxaQ9kYGzzhZRbK+xOo=")
	}
}

func TestReadUpgradeRequest(t *testing.T) {
	tests := []struct {
		name    string
		reader  func() io.Reader
		mode    HandshakeMode
		wantKey string
		wantErr error
	}{
		{
			name:    "single read, whole header",
			reader:  func() io.Reader { return strings.NewReader(sampleRequest) },
			mode:    HandshakeSingleRead,
			wantKey: "dGhlIHNhbXBsZSBub25jZQ==",
		},
		{
			name:    "buffered, whole header",
			reader:  func() io.Reader { return strings.NewReader(sampleRequest) },
			mode:    HandshakeBuffered,
			wantKey: "dGhlIHNhbXBsZSBub25jZQ==",
		},
		{
			name:    "buffered, header split over segments",
			reader:  func() io.Reader { return &chunkReader{data: []byte(sampleRequest), n: 7} },
			mode:    HandshakeBuffered,
			wantKey: "dGhlIHNhbXBsZSBub25jZQ==",
		},
		{
			name:    "single read misses key in later segment",
			reader:  func() io.Reader { return &chunkReader{data: []byte(sampleRequest), n: 40} },
			mode:    HandshakeSingleRead,
			wantErr: ErrMissingKey,
		},
		{
			name: "missing key",
			reader: func() io.Reader {
				return strings.NewReader("GET / HTTP/1.1\r\nHost: x\r\nUpgrade: websocket\r\n\r\n")
			},
			mode:    HandshakeBuffered,
			wantErr: ErrMissingKey,
		},
		{
			name: "header too large",
			reader: func() io.Reader {
				return strings.NewReader("GET / HTTP/1.1\r\nX-Pad: " + strings.Repeat("a", MaxHandshakeSize+10))
			},
			mode:    HandshakeBuffered,
			wantErr: ErrHeaderTooLarge,
		},
		{
			name:    "connection closed before header",
			reader:  func() io.Reader { return strings.NewReader("GET / HTTP/1.1\r\n") },
			mode:    HandshakeBuffered,
			wantErr: io.ErrUnexpectedEOF,
		},
		{
			name:    "single read on empty stream",
			reader:  func() io.Reader { return strings.NewReader("") },
			mode:    HandshakeSingleRead,
			wantErr: io.EOF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ReadUpgradeRequest(tt.reader(), tt.mode)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ReadUpgradeRequest() error = %v, want %v", err, tt.wantErr)
				}
				var hsErr *HandshakeError
				if !errors.As(err, &hsErr) {
					t.Errorf("error should be a *HandshakeError, got %T", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("ReadUpgradeRequest() error = %v", err)
			}
			if req.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", req.Key, tt.wantKey)
			}
			if req.Method != "GET" || req.Path != "/chat" {
				t.Errorf("request line = %q %q, want GET /chat", req.Method, req.Path)
			}
		})
	}
}

func TestWriteUpgradeResponse(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteUpgradeResponse(&buf, "dGhlIHNhbXBsZSBub25jZQ=="); err != nil {
		t.Fatalf("WriteUpgradeResponse() error = %v", err)
	}

	want := "HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: s3pPLMBiTxaQ9kYGzzhZRbK+xOo=\r\n" +
		"\r\n"
	if buf.String() != want {
		t.Errorf("response = %q, want %q", buf.String(), want)
	}
}

func TestParseHandshakeMode(t *testing.T) {
	tests := []struct {
		in      string
		want    HandshakeMode
		wantErr bool
	}{
		{"", HandshakeBuffered, false},
		{"buffered", HandshakeBuffered, false},
		{"SINGLE", HandshakeSingleRead, false},
		{"streaming", "", true},
	}

	for _, tt := range tests {
		got, err := ParseHandshakeMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHandshakeMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHandshakeMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUpgradeRequestHeaderMap(t *testing.T) {
	req, err := ReadUpgradeRequest(strings.NewReader(sampleRequest), HandshakeBuffered)
	if err != nil {
		t.Fatalf("ReadUpgradeRequest() error = %v", err)
	}
	headers := req.HeaderMap()
	if headers["Upgrade"] != "websocket" {
		t.Errorf("Upgrade header = %q, want websocket", headers["Upgrade"])
	}
}

func TestReadUpgradeRequestKeepsTrailingBytes(t *testing.T) {
	frame := EncodeMaskedFrame(OpcodeText, []byte(`{"type":"ping"}`), [4]byte{9, 8, 7, 6})
	req, err := ReadUpgradeRequest(strings.NewReader(sampleRequest+string(frame)), HandshakeBuffered)
	if err != nil {
		t.Fatalf("ReadUpgradeRequest() error = %v", err)
	}
	if !bytes.Equal(req.Rest, frame) {
		t.Fatalf("Rest = %x, want %x", req.Rest, frame)
	}

	got, err := Decode(bytes.NewReader(req.Rest), 0)
	if err != nil || got != `{"type":"ping"}` {
		t.Errorf("Decode(Rest) = %q, %v", got, err)
	}
}
