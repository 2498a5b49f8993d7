package server

import (
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/scenebridge/internal/logging"
	"github.com/muurk/scenebridge/internal/protocol"
)

// upgrade reads the client's HTTP upgrade request and answers with 101.
// Only a missing Sec-WebSocket-Key fails the handshake; other header
// problems are logged. A client that sends no complete request within
// HandshakeWait is dropped so the listener can accept the next one.
func (s *Server) upgrade(conn net.Conn, remoteAddr string) (*protocol.UpgradeRequest, error) {
	if err := conn.SetReadDeadline(time.Now().Add(s.config.HandshakeWait)); err != nil {
		return nil, fmt.Errorf("failed to set handshake deadline: %w", err)
	}
	req, err := protocol.ReadUpgradeRequest(conn, s.config.HandshakeMode)
	if err != nil {
		return nil, err
	}
	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		return nil, fmt.Errorf("failed to clear handshake deadline: %w", err)
	}

	logUpgradeRequest(req, remoteAddr)
	checkUpgradeHeaders(req, remoteAddr)

	response := protocol.UpgradeResponse(req.Key)
	logging.LogRawBytes("HTTP 101 Response", response)

	// The session is not yet OPEN, so Send cannot write concurrently
	n, err := conn.Write(response)
	if err != nil {
		return nil, fmt.Errorf("failed to write HTTP 101 response: %w", err)
	}

	logging.Info("Sent HTTP 101 Switching Protocols response",
		zap.String("remote_addr", remoteAddr),
		zap.Int("bytes_written", n),
	)
	return req, nil
}

// checkUpgradeHeaders warns about requests a strict server would reject.
func checkUpgradeHeaders(req *protocol.UpgradeRequest, remoteAddr string) {
	var problems []string

	if req.Method != "GET" {
		problems = append(problems, fmt.Sprintf("method %q (expected GET)", req.Method))
	}
	if upgrade := strings.ToLower(req.Header.Get("Upgrade")); upgrade != "websocket" {
		problems = append(problems, fmt.Sprintf("Upgrade header %q", upgrade))
	}
	if connection := strings.ToLower(req.Header.Get("Connection")); !strings.Contains(connection, "upgrade") {
		problems = append(problems, fmt.Sprintf("Connection header %q", connection))
	}
	if version := req.Header.Get("Sec-WebSocket-Version"); version != "" && version != "13" {
		problems = append(problems, fmt.Sprintf("Sec-WebSocket-Version %q", version))
	}

	if len(problems) > 0 {
		logging.Warn("Accepting non-conforming upgrade request",
			zap.String("remote_addr", remoteAddr),
			zap.Strings("problems", problems),
		)
	}
}

// logUpgradeRequest logs all details of an upgrade request
func logUpgradeRequest(req *protocol.UpgradeRequest, remoteAddr string) {
	logging.LogHTTPRequest(remoteAddr, req.Method, req.Path, req.HeaderMap())

	logging.Debug("WebSocket upgrade request details",
		zap.String("remote_addr", remoteAddr),
		zap.String("host", req.Header.Get("Host")),
		zap.String("origin", req.Header.Get("Origin")),
		zap.String("sec_websocket_key", req.Key),
		zap.String("sec_websocket_version", req.Header.Get("Sec-WebSocket-Version")),
		zap.String("user_agent", req.Header.Get("User-Agent")),
		zap.Int("early_bytes", len(req.Rest)),
	)
}
