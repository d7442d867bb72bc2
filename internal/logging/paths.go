package logging

import (
	"os"
	"path/filepath"
)

// LogFileName is the name of the debug log file.
const LogFileName = "conductorboot.log"

// DefaultLogDir returns ~/.conductor/logs, falling back to the temp
// directory when the home directory is unavailable.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".conductor", "logs")
	}
	return filepath.Join(home, ".conductor", "logs")
}

// DefaultLogPath returns the debug log path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), LogFileName)
}
