package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"audittray/internal/logging"
)

// Signal watcher backends.
const (
	BackendInotify  = "inotify"
	BackendFsnotify = "fsnotify"
)

// ErrUnsupportedBackend is returned when a backend cannot run on this platform.
var ErrUnsupportedBackend = errors.New("signal backend not supported on this platform")

// watchBackend blocks in run until Close is called, calling emit once per
// write-complete notification.
type watchBackend interface {
	run(emit func(name string)) error
	Close() error
}

type backendOpener func(backend, dir string) (watchBackend, error)

func openBackend(backend, dir string) (watchBackend, error) {
	switch backend {
	case BackendInotify:
		return openInotify(dir)
	case BackendFsnotify:
		return openFsnotify(dir)
	default:
		return nil, fmt.Errorf("unknown signal backend %q", backend)
	}
}

// WatcherOptions configure a SignalWatcher.
type WatcherOptions struct {
	Dir     string
	Backend string
	Logger  *slog.Logger
	// Observer, when set, is called with the file name of every notification
	// before the event is queued.
	Observer func(name string)
}

// SignalWatcher pushes ExternalSignal into a queue for every write-complete
// notification in a directory.
type SignalWatcher struct {
	dir      string
	backend  string
	logger   *slog.Logger
	sink     *Queue[WakeEvent]
	observer func(name string)
	open     backendOpener

	mu       sync.Mutex
	impl     watchBackend
	done     chan struct{}
	running  bool
	setupErr error
}

// NewSignalWatcher builds a watcher that feeds sink.
func NewSignalWatcher(opts WatcherOptions, sink *Queue[WakeEvent]) *SignalWatcher {
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	if backend == "" {
		backend = BackendInotify
	}
	return &SignalWatcher{
		dir:      opts.Dir,
		backend:  backend,
		logger:   logging.NewComponentLogger(opts.Logger, "signal-watcher"),
		sink:     sink,
		observer: opts.Observer,
		open:     openBackend,
	}
}

// Start installs the watch. A setup failure is logged once and swallowed;
// the watcher then stays idle for the rest of its life.
func (w *SignalWatcher) Start(ctx context.Context) error {
	if w == nil {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running || w.setupErr != nil {
		return nil
	}

	impl, err := w.open(w.backend, w.dir)
	if err != nil {
		w.setupErr = err
		logging.WarnWithContext(w.logger, "failed to watch signal directory; checks will rely on the timer and manual triggers",
			"signal_watch_failed",
			logging.Error(err),
			logging.String("dir", w.dir),
			logging.String("backend", w.backend),
			logging.String(logging.FieldErrorHint, "create the directory or run `audittray notify` once as root"),
			logging.String(logging.FieldImpact, "package-manager signals are ignored"),
		)
		return nil
	}

	w.impl = impl
	w.done = make(chan struct{})
	w.running = true

	done := w.done
	go w.loop(ctx, impl, done)

	w.logger.Info("signal watcher started",
		logging.String(logging.FieldEventType, "signal_watch_started"),
		logging.String("dir", w.dir),
		logging.String("backend", w.backend),
	)
	return nil
}

// Stop closes the watch and waits for the reader to exit.
func (w *SignalWatcher) Stop() {
	if w == nil {
		return
	}

	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	impl, done := w.impl, w.done
	w.impl = nil
	w.running = false
	w.mu.Unlock()

	_ = impl.Close()
	<-done

	w.logger.Info("signal watcher stopped",
		logging.String(logging.FieldEventType, "signal_watch_stopped"),
	)
}

// Running reports whether the watch is installed.
func (w *SignalWatcher) Running() bool {
	if w == nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// SetupError returns the error that prevented the watch from being installed.
func (w *SignalWatcher) SetupError() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.setupErr
}

func (w *SignalWatcher) loop(ctx context.Context, impl watchBackend, done chan struct{}) {
	defer close(done)

	stopOnCancel := make(chan struct{})
	defer close(stopOnCancel)
	go func() {
		select {
		case <-ctx.Done():
			_ = impl.Close()
		case <-stopOnCancel:
		}
	}()

	err := impl.run(func(name string) {
		w.logger.Debug("signal received",
			logging.String(logging.FieldEventType, "signal_received"),
			logging.String("file", name),
		)
		if w.observer != nil {
			w.observer(name)
		}
		w.sink.Push(ExternalSignal)
	})
	if err != nil && ctx.Err() == nil {
		logging.WarnWithContext(w.logger, "signal watcher stopped unexpectedly",
			"signal_watch_lost",
			logging.Error(err),
			logging.String("dir", w.dir),
			logging.String(logging.FieldImpact, "package-manager signals are ignored until restart"),
		)
	}

	w.mu.Lock()
	if w.impl == impl {
		w.impl = nil
		w.running = false
	}
	w.mu.Unlock()
}
