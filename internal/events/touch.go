package events

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Touch rewrites the marker file so watchers see a completed write. It is the
// package-manager hook entry point.
func Touch(markerPath string) error {
	if err := os.MkdirAll(filepath.Dir(markerPath), 0o755); err != nil {
		return fmt.Errorf("create signal directory: %w", err)
	}
	file, err := os.OpenFile(markerPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open marker: %w", err)
	}
	if _, err := fmt.Fprintln(file, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = file.Close()
		return fmt.Errorf("write marker: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close marker: %w", err)
	}
	return nil
}
