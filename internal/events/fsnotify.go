package events

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// fsnotifyBackend is the portable backend. fsnotify does not expose
// close-write, so create and write events stand in for it.
type fsnotifyBackend struct {
	watcher *fsnotify.Watcher
	once    sync.Once
}

func openFsnotify(dir string) (watchBackend, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	return &fsnotifyBackend{watcher: watcher}, nil
}

func (b *fsnotifyBackend) run(emit func(name string)) error {
	for {
		select {
		case event, ok := <-b.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				emit(filepath.Base(event.Name))
			}
		case err, ok := <-b.watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				emit("")
				continue
			}
			return fmt.Errorf("fsnotify: %w", err)
		}
	}
}

func (b *fsnotifyBackend) Close() error {
	var err error
	b.once.Do(func() { err = b.watcher.Close() })
	return err
}
