package scene

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// glbMagic is "glTF" read as a little-endian uint32.
const glbMagic = 0x46546C67

// Import implements Scene. It checks the file exists and starts with a binary
// glTF header, then adds an empty object named after the file.
func (m *Memory) Import(path string) (string, error) {
	if err := checkGLB(path); err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return m.addEmpty(base, path), nil
}

func checkGLB(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty filename", ErrFileNotFound)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	// magic, version, total length
	var header [12]byte
	if _, err := io.ReadFull(f, header[:]); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidAsset, path, err)
	}
	if binary.LittleEndian.Uint32(header[0:4]) != glbMagic {
		return fmt.Errorf("%w: %s: bad magic", ErrInvalidAsset, path)
	}
	if version := binary.LittleEndian.Uint32(header[4:8]); version != 2 {
		return fmt.Errorf("%w: %s: unsupported version %d", ErrInvalidAsset, path, version)
	}
	return nil
}
