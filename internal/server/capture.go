package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/scenebridge/internal/logging"
)

// Capture directions
const (
	DirectionInbound  = "controller->host"
	DirectionOutbound = "host->controller"
)

// maxCaptureLine bounds a single record read back by ReadCapture.
const maxCaptureLine = 32 << 20

// CaptureRecord is one captured text message
type CaptureRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	Session    string    `json:"session"`
	MessageNum int       `json:"message_num"`
	RemoteAddr string    `json:"remote_addr"`
	Direction  string    `json:"direction"`
	PayloadLen int       `json:"payload_length"`
	Payload    string    `json:"payload"`
}

// Capture appends every message of every session to one JSONL file.
// A nil *Capture discards records.
type Capture struct {
	mu         sync.Mutex
	path       string
	f          *os.File
	messageNum int
}

// OpenCapture creates dir if needed and opens capture-<timestamp>.jsonl in it.
func OpenCapture(dir string) (*Capture, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create capture directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("capture-%s.jsonl", time.Now().Format("20060102-150405")))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file: %w", err)
	}
	return &Capture{path: path, f: f}, nil
}

// Path returns the capture file path.
func (c *Capture) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Record appends one message. Write failures are logged, never returned.
func (c *Capture) Record(session, remoteAddr, direction, payload string) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.f == nil {
		return
	}

	c.messageNum++
	record := CaptureRecord{
		Timestamp:  time.Now(),
		Session:    session,
		MessageNum: c.messageNum,
		RemoteAddr: remoteAddr,
		Direction:  direction,
		PayloadLen: len(payload),
		Payload:    payload,
	}

	data, err := json.Marshal(record)
	if err != nil {
		logging.Error("Failed to marshal capture record", zap.Error(err))
		return
	}
	if _, err := c.f.Write(append(data, '\n')); err != nil {
		logging.Error("Failed to write to capture file",
			zap.String("filename", c.path),
			zap.Error(err),
		)
	}
}

// Close flushes and closes the file.
func (c *Capture) Close() error {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.f == nil {
		return nil
	}
	err := c.f.Close()
	c.f = nil
	return err
}

// ReadCapture parses a capture file. A non-empty direction keeps only the
// records sent that way.
func ReadCapture(r io.Reader, direction string) ([]CaptureRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxCaptureLine)

	var records []CaptureRecord
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var record CaptureRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			return nil, fmt.Errorf("capture line %d: %w", line, err)
		}
		if direction != "" && record.Direction != direction {
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read capture: %w", err)
	}
	return records, nil
}
