package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/scenebridge/internal/command"
	"github.com/muurk/scenebridge/internal/config"
	"github.com/muurk/scenebridge/internal/logging"
	"github.com/muurk/scenebridge/internal/protocol"
	"github.com/muurk/scenebridge/internal/ui"
)

func init() {
	rootCmd.AddCommand(probeCmd)
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check a host with a raw socket instead of a WebSocket library",
	Long: `Open a plain TCP connection, perform the upgrade handshake by hand, send a
masked ping frame and wait for the pong. Each stage is reported separately,
which helps tell a handshake problem from a framing problem.`,
	RunE: runProbe,
}

// probeConn is one raw connection to a host.
type probeConn struct {
	conn net.Conn
	r    *bufio.Reader
	wire *ui.WireOutput
}

// handshake sends an upgrade request and checks the accept value.
func (p *probeConn) handshake(u *url.URL) error {
	var nonce [16]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return err
	}
	key := base64.StdEncoding.EncodeToString(nonce[:])

	path := u.RequestURI()
	req := "GET " + path + " HTTP/1.1\r\n" +
		"Host: " + u.Host + "\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Key: " + key + "\r\n" +
		"Sec-WebSocket-Version: 13\r\n\r\n"
	if _, err := p.conn.Write([]byte(req)); err != nil {
		return fmt.Errorf("failed to send upgrade request: %w", err)
	}
	p.wire.Sent("GET " + path + " (Sec-WebSocket-Key: " + key + ")")

	resp, err := http.ReadResponse(p.r, nil)
	if err != nil {
		return fmt.Errorf("failed to read upgrade response: %w", err)
	}
	_ = resp.Body.Close()
	p.wire.Received(resp.Status + " (Sec-WebSocket-Accept: " + resp.Header.Get("Sec-WebSocket-Accept") + ")")

	if resp.StatusCode != http.StatusSwitchingProtocols {
		return fmt.Errorf("unexpected status %q", resp.Status)
	}
	if got, want := resp.Header.Get("Sec-WebSocket-Accept"), protocol.ComputeAccept(key); got != want {
		return fmt.Errorf("accept value %q does not match %q", got, want)
	}
	return nil
}

// send writes one masked frame.
func (p *probeConn) send(opcode byte, payload []byte) error {
	var key [4]byte
	if _, err := rand.Read(key[:]); err != nil {
		return err
	}
	frame := protocol.EncodeMaskedFrame(opcode, payload, key)
	logging.LogRawBytes("probe", frame)
	if _, err := p.conn.Write(frame); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	if opcode == protocol.OpcodeText {
		p.wire.Sent(string(payload))
	} else {
		p.wire.Sent(protocol.OpcodeName(opcode) + " frame")
	}
	return nil
}

// awaitReply reads frames until a text frame carrying the wanted reply type.
func (p *probeConn) awaitReply(want string) error {
	for {
		frame, err := protocol.ReadFrame(p.r, protocol.DefaultMaxPayloadSize)
		if err != nil {
			return err
		}
		logging.Debug("Probe frame received", zap.String("frame", frame.String()))
		if frame.Opcode == protocol.OpcodeClose {
			p.wire.Received("close frame")
			return protocol.ErrConnectionClosed
		}
		if frame.Opcode != protocol.OpcodeText {
			p.wire.Received(frame.OpcodeString() + " frame")
			continue
		}
		p.wire.Received(string(frame.Payload))
		if frame.Masked {
			return fmt.Errorf("server frame is masked")
		}
		reply, err := command.ParseReply(frame.Payload)
		if err == nil && reply.Type == want {
			return nil
		}
	}
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	raw, err := resolveURL(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid host URL %q: %w", raw, err)
	}
	if u.Scheme != "ws" {
		return fmt.Errorf("probe only supports ws:// URLs, got %q", u.Scheme)
	}
	if u.Port() == "" {
		u.Host = net.JoinHostPort(u.Hostname(), "80")
	}

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:           "Raw probe",
		Command:         "scenebridge-ctl probe",
		Params:          []ui.Param{{Key: "Host", Value: u.Host}},
		StepNames:       []string{"Connect", "Handshake", "Send ping", "Await pong", "Close"},
		Troubleshooting: connectTips,
		Verbose:         verbose,
	})

	return runner.Run(cmd.Context(), func(ctx context.Context, onStep ui.StepCallback) ([]ui.Param, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		fail := func(step int, err error) ([]ui.Param, error) {
			onStep(step, ui.Failed(err))
			return nil, err
		}

		onStep(1, ui.Running())
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", u.Host)
		if err != nil {
			return fail(1, err)
		}
		defer conn.Close()
		if deadline, ok := ctx.Deadline(); ok {
			_ = conn.SetDeadline(deadline)
		}
		onStep(1, ui.Done(conn.RemoteAddr().String()))

		p := &probeConn{conn: conn, r: bufio.NewReader(conn), wire: runner.Wire()}

		onStep(2, ui.Running())
		if err := p.handshake(u); err != nil {
			return fail(2, err)
		}
		onStep(2, ui.Done("101 Switching Protocols"))

		onStep(3, ui.Running())
		ping, err := json.Marshal(command.Ping())
		if err != nil {
			return fail(3, err)
		}
		start := time.Now()
		if err := p.send(protocol.OpcodeText, ping); err != nil {
			return fail(3, err)
		}
		onStep(3, ui.Done(""))

		onStep(4, ui.Running())
		if err := p.awaitReply(command.ReplyPong); err != nil {
			return fail(4, err)
		}
		rtt := time.Since(start).Round(time.Microsecond)
		onStep(4, ui.Done(rtt.String()))

		onStep(5, ui.Running())
		if err := p.send(protocol.OpcodeClose, nil); err != nil {
			return fail(5, err)
		}
		onStep(5, ui.Done(""))

		return []ui.Param{{Key: "Round trip", Value: rtt.String()}}, nil
	})
}
