package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"audittray/internal/audit"
	"audittray/internal/config"
	"audittray/internal/events"
	"audittray/internal/ipc"
	"audittray/internal/logging"
	"audittray/internal/notifications"
	"audittray/internal/scheduler"
	"audittray/internal/status"
)

// ErrAlreadyRunning is returned when another daemon holds the lock.
var ErrAlreadyRunning = errors.New("another audittray daemon instance is already running")

// Daemon runs the check loop together with its event sources and outputs.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger

	lockPath string
	lock     *flock.Flock

	wake      *events.Queue[events.WakeEvent]
	results   *events.Queue[status.Status]
	trigger   *events.Trigger
	watcher   *events.SignalWatcher
	checker   scheduler.Checker
	scheduler *scheduler.Scheduler
	board     *Board
	notifier  notifications.Service
	iconDir   string

	running   atomic.Bool
	closeOnce sync.Once
}

// Option customizes a Daemon.
type Option func(*daemonOptions)

type daemonOptions struct {
	checker  scheduler.Checker
	notifier notifications.Service
}

// WithChecker replaces the audit invoker (used in tests).
func WithChecker(c scheduler.Checker) Option {
	return func(o *daemonOptions) { o.checker = c }
}

// WithNotifier replaces the configured notification service.
func WithNotifier(n notifications.Service) Option {
	return func(o *daemonOptions) { o.notifier = n }
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	var o daemonOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.checker == nil {
		o.checker = audit.NewInvoker(audit.Options{
			Binary:          cfg.Audit.Binary,
			AdvisoryBaseURL: cfg.Audit.AdvisoryBaseURL,
			Timeout:         cfg.AuditTimeout(),
			Logger:          logger,
		})
	}
	if o.notifier == nil {
		o.notifier = notifications.NewService(cfg)
	}

	wake := events.NewQueue[events.WakeEvent]()
	results := events.NewQueue[status.Status]()
	sched, err := scheduler.New(o.checker, wake.Out(), results, scheduler.Options{
		Interval: cfg.CheckInterval(),
		Jitter:   cfg.CheckJitter(),
		Logger:   logger,
	})
	if err != nil {
		wake.Close()
		results.Close()
		return nil, err
	}

	iconDir, _ := status.ResolveIconDir(cfg.Design.IconTheme, status.DefaultIconRoots)
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		wake:     wake,
		results:  results,
		trigger:  events.NewTrigger(wake),
		watcher: events.NewSignalWatcher(events.WatcherOptions{
			Dir:     cfg.Signal.Dir,
			Backend: cfg.Signal.Backend,
			Logger:  logger,
		}, wake),
		checker:   o.checker,
		scheduler: sched,
		board:     NewBoard(o.notifier, logger),
		notifier:  o.notifier,
		iconDir:   iconDir,
	}, nil
}

// Run acquires the lock, starts the signal watcher and IPC server, and runs
// the scheduler and status board until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.cfg.EnsureDirectories(); err != nil {
		return err
	}
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return ErrAlreadyRunning
	}
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			logging.WarnWithContext(d.logger, "failed to release daemon lock", "daemon_unlock_failed",
				logging.Error(err),
				logging.String("lock", d.lockPath))
		}
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	_ = d.watcher.Start(runCtx)
	defer d.watcher.Stop()

	server, err := ipc.NewServer(runCtx, d.cfg.SocketPath(), d, d.logger)
	if err != nil {
		return fmt.Errorf("start ipc server: %w", err)
	}
	server.Serve()
	defer server.Close()

	d.running.Store(true)
	defer d.running.Store(false)

	d.logger.Info("audittray daemon started",
		logging.String(logging.FieldEventType, "daemon_started"),
		logging.String("lock", d.lockPath),
		logging.String("socket", d.cfg.SocketPath()),
		logging.Duration("interval", d.cfg.CheckInterval()),
		logging.Duration("jitter", d.cfg.CheckJitter()),
	)

	group, groupCtx := errgroup.WithContext(runCtx)
	group.Go(func() error { return d.scheduler.Run(groupCtx) })
	group.Go(func() error { return d.board.Run(groupCtx, d.results.Out()) })

	err = group.Wait()
	d.logger.Info("audittray daemon stopped",
		logging.String(logging.FieldEventType, "daemon_stopped"))
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Running reports whether Run is active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// CheckNow queues a user click.
func (d *Daemon) CheckNow() bool {
	return d.trigger.Click()
}

// Status returns the latest status plus scheduler and watcher state.
func (d *Daemon) Status() ipc.StatusResponse {
	resp := ipc.StatusResponse{
		PID:            os.Getpid(),
		LockPath:       d.lockPath,
		IconTheme:      d.cfg.Design.IconTheme,
		IconDir:        d.iconDir,
		Checks:         d.scheduler.Checks(),
		NextCheck:      d.scheduler.NextCheck(),
		WatcherRunning: d.watcher.Running(),
	}
	if inv, ok := d.checker.(*audit.Invoker); ok {
		resp.AuditBinary = inv.Binary()
	}
	if err := d.watcher.SetupError(); err != nil {
		resp.WatcherError = err.Error()
	}
	if st, ok := d.board.Latest(); ok {
		resp.Checked = true
		resp.CheckID = st.CheckID
		resp.CheckedAt = st.CheckedAt
		resp.Text = st.Text
		resp.Icon = st.Icon.String()
		resp.Updates = st.Result.Updates
		resp.Error = st.Result.Err
		resp.NeedsUpdates = st.NeedsUpdates()
	}
	return resp
}

// TestNotification sends a test notification through the configured transports.
func (d *Daemon) TestNotification(ctx context.Context) error {
	return d.notifier.TestNotification(ctx)
}

// Close releases resources held by the daemon. Call it after Run returns.
func (d *Daemon) Close() error {
	var result *multierror.Error
	d.closeOnce.Do(func() {
		d.watcher.Stop()
		d.wake.Close()
		d.results.Close()
		if err := d.notifier.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close notifier: %w", err))
		}
		if err := d.lock.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("close lock: %w", err))
		}
	})
	return result.ErrorOrNil()
}
