package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/scenebridge/internal/command"
	"github.com/muurk/scenebridge/internal/logging"
	"github.com/muurk/scenebridge/internal/scene"
)

const (
	// DefaultURL is the address a host listens on out of the box.
	DefaultURL = "ws://127.0.0.1:8765"

	// DefaultDialTimeout bounds one connection attempt.
	DefaultDialTimeout = 5 * time.Second

	// Time allowed to write a message to the host
	writeWait = 5 * time.Second
)

// ErrNotConnected is returned by ReadReply before any message was sent.
var ErrNotConnected = errors.New("not connected")

// Option configures a Client.
type Option func(*Client)

// WithDialer replaces the default gorilla dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) {
		c.dialer = d
	}
}

// WithCamera sets the object the camera operations address.
func WithCamera(name string) Option {
	return func(c *Client) {
		c.camera = name
	}
}

// Client is the controller side of scenebridge. Every operation sends one
// envelope and returns once it is written; the host does not acknowledge
// mutating commands. The connection is opened on first use and reopened on
// the next send after a failure.
type Client struct {
	url    string
	camera string
	dialer *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
}

// New creates a client for url without connecting.
func New(url string, opts ...Option) *Client {
	if url == "" {
		url = DefaultURL
	}
	c := &Client{
		url:    url,
		camera: scene.DefaultCameraName,
		dialer: &websocket.Dialer{HandshakeTimeout: DefaultDialTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dial creates a client and connects immediately.
func Dial(ctx context.Context, url string, opts ...Option) (*Client, error) {
	c := New(url, opts...)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.connectLocked(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// URL returns the host address.
func (c *Client) URL() string { return c.url }

// Connected reports whether a connection is currently open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

func (c *Client) connectLocked(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultDialTimeout)
		defer cancel()
	}

	logging.Debug("Connecting to host", zap.String("url", c.url))
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.url, err)
	}
	c.conn = conn
	logging.Info("Connected to host", zap.String("url", c.url))
	return nil
}

// dropLocked closes and forgets the current connection.
func (c *Client) dropLocked() {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// Send marshals env and writes it as one text frame.
func (c *Client) Send(ctx context.Context, env command.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", env.Type, err)
	}
	return c.SendRaw(ctx, string(data))
}

// SendRaw writes text as one frame without inspecting it. A write on a
// connection that went stale is retried once on a fresh connection.
func (c *Client) SendRaw(ctx context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for attempt := 0; ; attempt++ {
		reused := c.conn != nil
		if err := c.connectLocked(ctx); err != nil {
			return err
		}

		err := c.writeLocked(text)
		if err == nil {
			logging.Debug("Sent command", zap.String("message", text))
			return nil
		}

		c.dropLocked()
		if !reused || attempt > 0 {
			return err
		}
		logging.Debug("Connection went stale, reconnecting", zap.Error(err))
	}
}

func (c *Client) writeLocked(text string) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	return nil
}

// ReadReply waits for the next message from the host, a pong or an object
// list. It returns when ctx is done. A failed or timed out read closes the
// connection; the next send reconnects.
func (c *Client) ReadReply(ctx context.Context) (command.Reply, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return command.Reply{}, ErrNotConnected
	}

	deadline, hasDeadline := ctx.Deadline()
	if err := conn.SetReadDeadline(deadline); err != nil {
		return command.Reply{}, fmt.Errorf("failed to set read deadline: %w", err)
	}

	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	_, data, err := conn.ReadMessage()
	if err != nil {
		// A failed read leaves the gorilla connection unusable
		c.mu.Lock()
		if c.conn == conn {
			c.dropLocked()
		}
		c.mu.Unlock()

		if ctxErr := ctx.Err(); ctxErr != nil {
			return command.Reply{}, ctxErr
		}
		if hasDeadline && !time.Now().Before(deadline) {
			return command.Reply{}, context.DeadlineExceeded
		}
		return command.Reply{}, fmt.Errorf("read failed: %w", err)
	}

	reply, err := command.ParseReply(data)
	if err != nil {
		return command.Reply{}, err
	}
	return reply, nil
}

// Close sends a close frame and closes the connection. A later send
// reconnects.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	err := c.conn.Close()
	c.conn = nil
	logging.Info("Disconnected from host", zap.String("url", c.url))
	return err
}
