package server

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/muurk/scenebridge/internal/logging"
	"github.com/muurk/scenebridge/internal/protocol"
)

// Defaults for Config fields left at their zero value
const (
	DefaultHost          = "127.0.0.1"
	DefaultPort          = 8765
	DefaultAcceptBackoff = 100 * time.Millisecond
	DefaultHandshakeWait = 5 * time.Second
	DefaultStopTimeout   = time.Second

	// Time allowed to write a message to the peer
	writeWait      = 10 * time.Second
	closeWriteWait = 100 * time.Millisecond
)

var (
	// ErrNotConnected is returned by Send when no session is open.
	ErrNotConnected = errors.New("no client connected")

	// ErrAlreadyStarted is returned by Start on a running server.
	ErrAlreadyStarted = errors.New("server already started")

	// ErrStopTimeout means the session goroutine did not exit in time.
	ErrStopTimeout = errors.New("timed out waiting for server goroutine")
)

// Config holds the server configuration
type Config struct {
	Host          string
	Port          int
	HandshakeMode protocol.HandshakeMode
	MaxPayload    uint64        // per-frame bound, 0 selects protocol.DefaultMaxPayloadSize
	AcceptBackoff time.Duration // pause after a failed Accept
	HandshakeWait time.Duration // bound on reading the upgrade request
	CaptureDir    string        // directory for JSONL message capture (empty = disabled)
}

// DefaultConfig returns the configuration used when no file or flags are given.
func DefaultConfig() Config {
	return Config{
		Host:          DefaultHost,
		Port:          DefaultPort,
		HandshakeMode: protocol.HandshakeBuffered,
		MaxPayload:    protocol.DefaultMaxPayloadSize,
		AcceptBackoff: DefaultAcceptBackoff,
		HandshakeWait: DefaultHandshakeWait,
	}
}

// Address returns host:port for net.Listen.
func (c Config) Address() string {
	return net.JoinHostPort(c.Host, fmt.Sprint(c.Port))
}

// Sink receives every text message decoded from the client.
type Sink interface {
	Push(msg string)
}

// StateChange describes one transition of the connection state machine.
type StateChange struct {
	From       State
	To         State
	RemoteAddr string
	Session    string
}

// Server accepts one WebSocket client at a time on a background goroutine
// and pushes its text messages to a Sink.
type Server struct {
	config  Config
	sink    Sink
	capture *Capture

	listener net.Listener
	quit     chan struct{}
	done     chan struct{}
	stopping atomic.Bool

	// mu guards the connection handle. Send on the host goroutine and teardown
	// on the session goroutine both hold it.
	mu            sync.Mutex
	state         State
	conn          net.Conn
	remoteAddr    string
	session       string
	onStateChange func(StateChange)
}

// New creates a server. Nothing is bound until Start.
func New(config Config, sink Sink) *Server {
	if config.Host == "" {
		config.Host = DefaultHost
	}
	if config.HandshakeMode == "" {
		config.HandshakeMode = protocol.HandshakeBuffered
	}
	if config.MaxPayload == 0 {
		config.MaxPayload = protocol.DefaultMaxPayloadSize
	}
	if config.AcceptBackoff <= 0 {
		config.AcceptBackoff = DefaultAcceptBackoff
	}
	if config.HandshakeWait <= 0 {
		config.HandshakeWait = DefaultHandshakeWait
	}

	return &Server{
		config: config,
		sink:   sink,
		state:  StateClosed,
	}
}

// OnStateChange registers a hook called after every state transition. It
// runs on the server goroutine and must not block.
func (s *Server) OnStateChange(fn func(StateChange)) {
	s.mu.Lock()
	s.onStateChange = fn
	s.mu.Unlock()
}

// Start binds the listener and launches the accept loop. It returns once
// the socket is bound.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.listener != nil {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.mu.Unlock()

	if s.config.CaptureDir != "" {
		capture, err := OpenCapture(s.config.CaptureDir)
		if err != nil {
			return err
		}
		s.capture = capture
		logging.Info("Capturing messages", zap.String("file", capture.Path()))
	}

	listener, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		_ = s.capture.Close()
		return fmt.Errorf("failed to listen on %s: %w", s.config.Address(), err)
	}

	s.mu.Lock()
	s.listener = listener
	s.quit = make(chan struct{})
	s.done = make(chan struct{})
	s.mu.Unlock()
	s.stopping.Store(false)

	logging.Info("Server listening for connections",
		zap.String("addr", listener.Addr().String()),
		zap.String("handshake", string(s.config.HandshakeMode)),
	)
	s.setState(StateListening, "", "")

	go s.acceptConnections()
	return nil
}

// acceptConnections runs the state machine until Stop. Accept is only
// called from LISTENING, so a second client waits in the kernel backlog
// until the current session ends.
func (s *Server) acceptConnections() {
	defer close(s.done)

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.stopping.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			logging.Error("Failed to accept connection",
				zap.Error(err),
				zap.Duration("retry_in", s.config.AcceptBackoff),
			)
			select {
			case <-s.quit:
				return
			case <-time.After(s.config.AcceptBackoff):
			}
			continue
		}

		s.handleConnection(conn)

		if s.stopping.Load() {
			return
		}
		s.setState(StateListening, "", "")
	}
}

// Stop closes the listener and the client socket and waits up to timeout
// for the server goroutine. Messages in flight may be lost.
func (s *Server) Stop(timeout time.Duration) error {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener == nil {
		return nil
	}
	if !s.stopping.CompareAndSwap(false, true) {
		return nil
	}
	if timeout <= 0 {
		timeout = DefaultStopTimeout
	}

	logging.Info("Shutting down server...")
	close(s.quit)
	if err := listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		logging.Error("Error closing listener", zap.Error(err))
	}

	s.mu.Lock()
	if s.conn != nil {
		logging.Info("Closing active connection", zap.String("remote_addr", s.remoteAddr))
		_ = s.conn.SetWriteDeadline(time.Now().Add(closeWriteWait))
		if s.state == StateOpen {
			_, _ = s.conn.Write(protocol.EncodeClose())
		}
		_ = s.conn.Close()
	}
	s.mu.Unlock()

	var err error
	select {
	case <-s.done:
	case <-time.After(timeout):
		logging.Warn("Shutdown timeout, abandoning server goroutine", zap.Duration("timeout", timeout))
		err = ErrStopTimeout
	}

	if cerr := s.capture.Close(); cerr != nil {
		logging.Error("Error closing capture file", zap.Error(cerr))
	}

	s.mu.Lock()
	s.listener = nil
	s.mu.Unlock()
	s.setState(StateClosed, "", "")

	logging.Sync()
	return err
}

// Send writes one text frame to the open client.
func (s *Server) Send(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateOpen || s.conn == nil {
		return ErrNotConnected
	}

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	if _, err := s.conn.Write(protocol.EncodeText(text)); err != nil {
		// The receive loop sees the closed socket and tears the session down
		_ = s.conn.Close()
		return fmt.Errorf("write failed: %w", err)
	}

	logging.LogWebSocketMessage(s.remoteAddr, "sent", protocol.OpcodeText, []byte(text))
	s.capture.Record(s.session, s.remoteAddr, DirectionOutbound, text)
	return nil
}

// State returns the current connection state.
func (s *Server) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connected reports whether a session is OPEN.
func (s *Server) Connected() bool {
	return s.State() == StateOpen
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Session returns the ID and remote address of the current session.
func (s *Server) Session() (id, remoteAddr string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, s.remoteAddr
}

// handleConnection runs one session from HANDSHAKING to CLOSED.
func (s *Server) handleConnection(conn net.Conn) {
	remoteAddr := conn.RemoteAddr().String()
	session := uuid.NewString()

	s.mu.Lock()
	s.conn = conn
	s.remoteAddr = remoteAddr
	s.session = session
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		_ = conn.Close()
		s.conn = nil
		s.mu.Unlock()
		s.setState(StateClosed, remoteAddr, session)
	}()

	logging.LogConnection(remoteAddr, "connection_accepted")
	s.setState(StateHandshaking, remoteAddr, session)

	req, err := s.upgrade(conn, remoteAddr)
	if err != nil {
		logging.Error("WebSocket handshake failed",
			zap.String("remote_addr", remoteAddr),
			zap.String("session", session),
			zap.Error(err),
		)
		return
	}

	s.setState(StateOpen, remoteAddr, session)
	s.receive(session, remoteAddr, req.Rest, conn)
}

// setState records a transition and notifies the hook outside the lock.
func (s *Server) setState(to State, remoteAddr, session string) {
	s.mu.Lock()
	from := s.state
	s.state = to
	hook := s.onStateChange
	s.mu.Unlock()

	if from == to {
		return
	}
	logging.LogStateChange(remoteAddr, from.String(), to.String())
	if hook != nil {
		hook(StateChange{From: from, To: to, RemoteAddr: remoteAddr, Session: session})
	}
}
