// Package logging provides structured logging for scenebridge.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used by the transport and the command dispatcher.
//
// # Log Levels
//
//   - Debug: frame hex dumps, state transitions, applied commands
//   - Info: listener start/stop, connections accepted and closed
//   - Warn: dropped messages, failed commands, handshake rejections
//   - Error: accept loop failures, send failures
//
// # Specialized Logging
//
//	logging.LogConnection(remoteAddr, "connection_accepted")
//	logging.LogConnection(remoteAddr, "websocket_upgraded")
//	logging.LogWebSocketMessage(remoteAddr, "received", 1, payload)
//	logging.LogCommand("set_property", false, "target_not_found", "Cube")
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// When no level is passed and SCENEBRIDGE_LOG_LEVEL is unset the logger is a
// no-op. The level of an initialized logger can be changed at runtime with
// SetLevel, which the server uses when its config file is reloaded.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use.
package logging
