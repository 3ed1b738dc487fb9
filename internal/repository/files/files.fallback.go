// FilePath: internal/repository/files/files.fallback.go
package files

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	apierrors "github.com/itsatony/w4b_v3/server/sensorbridge/internal/errors"
	"github.com/itsatony/w4b_v3/server/sensorbridge/internal/repository"
	nuts "github.com/vaudience/go-nuts"
)

const (
	defaultDirPermissions  = 0755
	defaultFilePermissions = 0644
)

// FallbackRepo appends JSON payloads, one per line, to a single file.
// Writes are not synchronized; one writer at a time is assumed.
type FallbackRepo struct {
	path string
}

var _ repository.FallbackRepository = (*FallbackRepo)(nil)

// NewFallbackRepository creates a fallback store writing to path
func NewFallbackRepository(path string) *FallbackRepo {
	return &FallbackRepo{path: path}
}

// Path is the file the payloads are appended to
func (r *FallbackRepo) Path() string {
	return r.path
}

// Append writes payload as one line at the end of the file, creating the file if needed.
func (r *FallbackRepo) Append(ctx context.Context, payload []byte) error {
	line, err := EncodeLine(payload)
	if err != nil {
		return err
	}

	if err := createDirectoryIfNotExists(filepath.Dir(r.path)); err != nil {
		return err
	}

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, defaultFilePermissions)
	if err != nil {
		return apierrors.NewIOError("failed to open fallback file", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(line); err != nil {
		return apierrors.NewIOError("failed to write fallback file", err)
	}

	nuts.L.Debugf("[FallbackRepo] Appended %d bytes to %s", len(line), r.path)
	return nil
}

// EncodeLine validates payload as JSON and compacts it into a single newline-terminated line.
func EncodeLine(payload []byte) ([]byte, error) {
	if !json.Valid(payload) {
		return nil, apierrors.NewValidationError("payload is not valid JSON", nil)
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, payload); err != nil {
		return nil, apierrors.NewValidationError("payload is not valid JSON", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func createDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		err := os.MkdirAll(path, defaultDirPermissions)
		if err != nil {
			return apierrors.NewIOError("failed to create directory", err)
		}
	}
	return nil
}
