package embedded

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	cerrors "github.com/Aman-CERP/conductorboot/internal/errors"
)

const lockFileName = ".engine.lock"

// dataDirLock holds an exclusive lock on <dir>/.engine.lock.
type dataDirLock struct {
	path  string
	flock *flock.Flock
}

// acquireDataDir takes the data directory lock without blocking. A lock
// held elsewhere yields an ErrDataDirLocked error.
func acquireDataDir(dir string) (*dataDirLock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(dir, lockFileName)
	fl := flock.New(path)
	acquired, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire data directory lock: %w", err)
	}
	if !acquired {
		return nil, cerrors.New(cerrors.ErrCodeDataDirLocked,
			fmt.Sprintf("data directory %s is in use by another engine", dir), nil).
			WithDetail("lock", path).
			WithSuggestion("Stop the other conductorboot process or set embedded.data_dir to a different directory")
	}

	return &dataDirLock{path: path, flock: fl}, nil
}

func (l *dataDirLock) release() error {
	if l == nil {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release data directory lock: %w", err)
	}
	return nil
}
