//go:build !linux

package events

import "fmt"

func openInotify(string) (watchBackend, error) {
	return nil, fmt.Errorf("inotify: %w; use the fsnotify backend", ErrUnsupportedBackend)
}
