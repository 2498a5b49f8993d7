package server

import (
	"bytes"
	"errors"
	"io"
	"net"

	"go.uber.org/zap"

	"github.com/muurk/scenebridge/internal/logging"
	"github.com/muurk/scenebridge/internal/protocol"
)

// receive decodes frames until the closed signal and pushes every text
// payload to the sink. early holds bytes that arrived with the handshake.
func (s *Server) receive(session, remoteAddr string, early []byte, conn net.Conn) {
	logging.LogConnection(remoteAddr, "websocket_upgraded")

	var r io.Reader = conn
	if len(early) > 0 {
		r = io.MultiReader(bytes.NewReader(early), conn)
	}

	messageNum := 0
	for {
		text, err := protocol.Decode(r, s.config.MaxPayload)
		if errors.Is(err, protocol.ErrNotText) {
			logging.Debug("Ignoring non-text frame",
				zap.String("remote_addr", remoteAddr),
				zap.Error(err),
			)
			continue
		}
		if err != nil {
			if s.stopping.Load() {
				logging.Debug("Session closed by shutdown", zap.String("remote_addr", remoteAddr))
			} else {
				logging.Info("Connection closed",
					zap.String("remote_addr", remoteAddr),
					zap.String("session", session),
					zap.Int("messages", messageNum),
					zap.Error(err),
				)
			}
			return
		}

		messageNum++
		logging.LogWebSocketMessage(remoteAddr, "received", protocol.OpcodeText, []byte(text))
		s.capture.Record(session, remoteAddr, DirectionInbound, text)
		s.sink.Push(text)
	}
}
