package server

import (
	"bufio"
	"net"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/muurk/scenebridge/internal/protocol"
	"github.com/muurk/scenebridge/internal/queue"
)

const handshakeRequest = "GET / HTTP/1.1\r\n" +
	"Host: 127.0.0.1\r\n" +
	"Upgrade: websocket\r\n" +
	"Connection: Upgrade\r\n" +
	"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n" +
	"Sec-WebSocket-Version: 13\r\n" +
	"\r\n"

func startServer(t *testing.T, config Config) (*Server, *queue.Queue) {
	t.Helper()

	config.Host = "127.0.0.1"
	config.Port = 0
	inbound := queue.New()
	srv := New(config, inbound)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { _ = srv.Stop(time.Second) })
	return srv, inbound
}

func wsURL(srv *Server) string {
	return "ws://" + srv.Addr().String() + "/"
}

func dial(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestGorillaClientInterop(t *testing.T) {
	srv, inbound := startServer(t, Config{})
	conn := dial(t, srv)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("WriteMessage() error = %v", err)
	}
	waitFor(t, "inbound message", func() bool { return inbound.Len() == 1 })
	if msgs := inbound.Drain(); msgs[0] != `{"type":"ping"}` {
		t.Errorf("inbound = %q", msgs[0])
	}

	waitFor(t, "OPEN state", srv.Connected)
	if err := srv.Send(`{"type":"pong","ok":true}`); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	kind, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	if kind != websocket.TextMessage || string(data) != `{"type":"pong","ok":true}` {
		t.Errorf("got (%d, %q)", kind, data)
	}
}

func TestLargeMessages(t *testing.T) {
	srv, inbound := startServer(t, Config{})
	conn := dial(t, srv)

	for _, size := range []int{125, 126, 65535, 65536, 200000} {
		msg := strings.Repeat("m", size)
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			t.Fatalf("size %d: WriteMessage() error = %v", size, err)
		}
		waitFor(t, "inbound message", func() bool { return inbound.Len() == 1 })
		if got := inbound.Drain()[0]; len(got) != size {
			t.Errorf("size %d: received %d bytes", size, len(got))
		}
	}
}

func TestNonTextFramesIgnored(t *testing.T) {
	srv, inbound := startServer(t, Config{})
	conn := dial(t, srv)

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte{0x01, 0x02}); err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second)); err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte("after")); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "text message", func() bool { return inbound.Len() >= 1 })
	msgs := inbound.Drain()
	if len(msgs) != 1 || msgs[0] != "after" {
		t.Errorf("inbound = %q, want [after]", msgs)
	}
	if !srv.Connected() {
		t.Error("non-text frames must not close the session")
	}
}

func TestSecondClientWaitsForFirst(t *testing.T) {
	srv, _ := startServer(t, Config{})
	first := dial(t, srv)
	waitFor(t, "OPEN state", srv.Connected)

	second, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("second Dial() error = %v", err)
	}
	defer func() { _ = second.Close() }()
	if _, err := second.Write([]byte(handshakeRequest)); err != nil {
		t.Fatal(err)
	}

	reader := bufio.NewReader(second)
	_ = second.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, err := reader.ReadString('\n'); err == nil {
		t.Fatal("second client was serviced while the first was open")
	}

	_ = first.Close()

	_ = second.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("second client not serviced after first closed: %v", err)
	}
	if line != "HTTP/1.1 101 Switching Protocols\r\n" {
		t.Errorf("status line = %q", line)
	}
}

func TestHandshakeFailureResumesListening(t *testing.T) {
	srv, _ := startServer(t, Config{})

	bad, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := bad.Write([]byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n")); err != nil {
		t.Fatal(err)
	}

	// The server closes the socket without a response
	_ = bad.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 64)
	if n, err := bad.Read(buf); err == nil {
		t.Errorf("expected closed socket, read %q", buf[:n])
	}
	_ = bad.Close()

	dial(t, srv)
	waitFor(t, "OPEN state", srv.Connected)
}

func TestSilentClientTimesOut(t *testing.T) {
	srv, _ := startServer(t, Config{HandshakeWait: 100 * time.Millisecond})

	silent, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer silent.Close()
	waitFor(t, "HANDSHAKING state", func() bool { return srv.State() == StateHandshaking })

	// Nothing is written, so the server gives up and closes the socket
	_ = silent.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 64)
	if n, err := silent.Read(buf); err == nil {
		t.Errorf("expected closed socket, read %q", buf[:n])
	}

	dial(t, srv)
	waitFor(t, "OPEN state", srv.Connected)
}

func TestHandshakeDeadlineClearedWhenOpen(t *testing.T) {
	srv, inbound := startServer(t, Config{HandshakeWait: 50 * time.Millisecond})
	conn := dial(t, srv)

	time.Sleep(150 * time.Millisecond)
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "message after handshake wait", func() bool { return inbound.Len() == 1 })
	if !srv.Connected() {
		t.Error("session closed after the handshake wait elapsed")
	}
}

func TestRawMaskedFrames(t *testing.T) {
	srv, inbound := startServer(t, Config{HandshakeMode: protocol.HandshakeSingleRead})

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.Write([]byte(handshakeRequest)); err != nil {
		t.Fatal(err)
	}
	reader := bufio.NewReader(conn)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	sawAccept := false
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("reading 101 response: %v", err)
		}
		if line == "Sec-WebSocket-Accept: s3pPLMBiTxaQ9kYGzzhZRbK+xOo=\r\n" {
			sawAccept = true
		}
		if line == "\r\n" {
			break
		}
	}
	if !sawAccept {
		t.Fatal("101 response missing the expected Sec-WebSocket-Accept")
	}

	frame := protocol.EncodeMaskedFrame(protocol.OpcodeText, []byte("hello"), [4]byte{0x37, 0xFA, 0x21, 0x3D})
	if _, err := conn.Write(frame); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "inbound message", func() bool { return inbound.Len() == 1 })
	if got := inbound.Drain()[0]; got != "hello" {
		t.Errorf("inbound = %q, want hello", got)
	}

	if err := srv.Send("reply"); err != nil {
		t.Fatal(err)
	}
	got, err := protocol.Decode(reader, 0)
	if err != nil || got != "reply" {
		t.Errorf("Decode() = %q, %v", got, err)
	}
}

func TestCloseFrameReturnsToListening(t *testing.T) {
	srv, _ := startServer(t, Config{})
	conn := dial(t, srv)
	waitFor(t, "OPEN state", srv.Connected)

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
	if err := conn.WriteMessage(websocket.CloseMessage, msg); err != nil {
		t.Fatal(err)
	}

	waitFor(t, "LISTENING state", func() bool { return srv.State() == StateListening })
	if err := srv.Send("late"); err != ErrNotConnected {
		t.Errorf("Send() after close error = %v, want ErrNotConnected", err)
	}
}

func TestStateTransitions(t *testing.T) {
	inbound := queue.New()
	srv := New(Config{Host: "127.0.0.1", Port: 0}, inbound)

	var (
		mu      sync.Mutex
		changes []StateChange
	)
	srv.OnStateChange(func(c StateChange) {
		mu.Lock()
		changes = append(changes, c)
		mu.Unlock()
	})

	if err := srv.Start(); err != nil {
		t.Fatal(err)
	}
	defer func() { _ = srv.Stop(time.Second) }()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	if err != nil {
		t.Fatal(err)
	}
	waitFor(t, "OPEN state", srv.Connected)
	_ = conn.Close()

	want := []State{StateListening, StateHandshaking, StateOpen, StateClosed, StateListening}
	waitFor(t, "transitions", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(changes) >= len(want)
	})

	mu.Lock()
	defer mu.Unlock()

	if len(changes) != len(want) {
		t.Fatalf("got %d transitions %v, want %v", len(changes), changes, want)
	}
	for i, c := range changes {
		if c.To != want[i] {
			t.Errorf("transition %d = %s, want %s", i, c.To, want[i])
		}
	}
	if changes[1].Session == "" || changes[1].Session != changes[2].Session {
		t.Errorf("session IDs = %q / %q, want one non-empty ID per session", changes[1].Session, changes[2].Session)
	}
}

func TestSendWithoutClient(t *testing.T) {
	srv, _ := startServer(t, Config{})
	if err := srv.Send("nobody"); err != ErrNotConnected {
		t.Errorf("Send() error = %v, want ErrNotConnected", err)
	}
}

func TestStop(t *testing.T) {
	srv, _ := startServer(t, Config{})
	conn := dial(t, srv)
	waitFor(t, "OPEN state", srv.Connected)
	addr := srv.Addr().String()

	if err := srv.Stop(time.Second); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if srv.State() != StateClosed {
		t.Errorf("State() = %s, want CLOSED", srv.State())
	}
	if srv.Addr() != nil {
		t.Error("Addr() should be nil after Stop")
	}

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("client should observe the closed connection")
	}
	if c, err := net.DialTimeout("tcp", addr, 200*time.Millisecond); err == nil {
		_ = c.Close()
		t.Error("listener still accepting after Stop")
	}

	// Stop is idempotent
	if err := srv.Stop(time.Second); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestStartTwice(t *testing.T) {
	srv, _ := startServer(t, Config{})
	if err := srv.Start(); err != ErrAlreadyStarted {
		t.Errorf("Start() error = %v, want ErrAlreadyStarted", err)
	}
}

func TestCaptureRecordsBothDirections(t *testing.T) {
	dir := t.TempDir()
	srv, inbound := startServer(t, Config{CaptureDir: dir})
	conn := dial(t, srv)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "inbound message", func() bool { return inbound.Len() == 1 })
	if err := srv.Send(`{"type":"pong","ok":true}`); err != nil {
		t.Fatal(err)
	}
	if err := srv.Stop(time.Second); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("capture dir entries = %v, %v", entries, err)
	}
	f, err := os.Open(dir + "/" + entries[0].Name())
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	records, err := ReadCapture(f, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Direction != DirectionInbound || records[0].Payload != `{"type":"ping"}` {
		t.Errorf("record 0 = %+v", records[0])
	}
	if records[1].Direction != DirectionOutbound || records[1].MessageNum != 2 {
		t.Errorf("record 1 = %+v", records[1])
	}
	if records[0].Session == "" || records[0].Session != records[1].Session {
		t.Errorf("sessions = %q, %q", records[0].Session, records[1].Session)
	}
}
