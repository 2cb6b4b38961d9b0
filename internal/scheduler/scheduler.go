package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"audittray/internal/audit"
	"audittray/internal/events"
	"audittray/internal/logging"
	"audittray/internal/status"
)

// Checker runs one audit check. It must always return a Result.
type Checker interface {
	Check(ctx context.Context) audit.Result
}

// ResultSink receives one Status per completed check, in completion order.
type ResultSink interface {
	Push(status.Status) bool
}

// Options configure a Scheduler.
type Options struct {
	Interval time.Duration
	// Jitter is the exclusive upper bound of the random addition to Interval.
	Jitter time.Duration
	Clock  Clock
	// Int64N returns a value in [0, n). Defaults to math/rand/v2.
	Int64N func(n int64) int64
	Logger *slog.Logger
}

// Scheduler owns the check loop. The pending-updates flag is private to the
// goroutine running Run.
type Scheduler struct {
	checker  Checker
	wake     <-chan events.WakeEvent
	results  ResultSink
	interval time.Duration
	jitter   time.Duration
	clock    Clock
	int64N   func(n int64) int64
	logger   *slog.Logger

	mu        sync.Mutex
	nextCheck time.Time
	checks    uint64
}

// New constructs a Scheduler reading wake events from wake and publishing to results.
func New(checker Checker, wake <-chan events.WakeEvent, results ResultSink, opts Options) (*Scheduler, error) {
	if checker == nil {
		return nil, errors.New("scheduler: checker is required")
	}
	if results == nil {
		return nil, errors.New("scheduler: result sink is required")
	}
	if opts.Interval <= 0 {
		return nil, errors.New("scheduler: interval must be positive")
	}
	if opts.Jitter < 0 {
		return nil, errors.New("scheduler: jitter must not be negative")
	}
	clock := opts.Clock
	if clock == nil {
		clock = realClock{}
	}
	int64N := opts.Int64N
	if int64N == nil {
		int64N = rand.Int64N
	}
	return &Scheduler{
		checker:  checker,
		wake:     wake,
		results:  results,
		interval: opts.Interval,
		jitter:   opts.Jitter,
		clock:    clock,
		int64N:   int64N,
		logger:   logging.NewComponentLogger(opts.Logger, "scheduler"),
	}, nil
}

// WaitDuration returns interval plus a jitter drawn from [0, jitter). A nil
// int64N uses math/rand/v2.
func WaitDuration(interval, jitter time.Duration, int64N func(n int64) int64) time.Duration {
	if jitter <= 0 {
		return interval
	}
	if int64N == nil {
		int64N = rand.Int64N
	}
	return interval + time.Duration(int64N(int64(jitter)))
}

// Run loops until ctx is cancelled. A failed check never ends the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		needsUpdates := s.check(ctx)

		delay := WaitDuration(s.interval, s.jitter, s.int64N)
		if err := s.wait(ctx, delay, needsUpdates); err != nil {
			return err
		}
	}
}

// NextCheck returns when the current wait expires, or zero while checking.
func (s *Scheduler) NextCheck() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextCheck
}

// Checks returns the number of completed checks.
func (s *Scheduler) Checks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checks
}

func (s *Scheduler) check(ctx context.Context) bool {
	checkID := uuid.NewString()
	ctx = logging.WithCheckID(ctx, checkID)
	logger := logging.WithContext(ctx, s.logger)

	s.setNextCheck(time.Time{})
	logger.Info("checking for security updates",
		logging.String(logging.FieldEventType, "check_started"),
	)

	started := s.clock.Now()
	result := s.checker.Check(ctx)
	finished := s.clock.Now()
	if ctx.Err() != nil {
		logger.Debug("check abandoned on shutdown",
			logging.String(logging.FieldEventType, "check_abandoned"),
		)
		return false
	}
	st := status.New(checkID, finished, result)
	s.results.Push(st)

	s.mu.Lock()
	s.checks++
	s.mu.Unlock()

	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "check_completed"),
		logging.String("status", st.Text),
		logging.String("icon", st.Icon.String()),
		logging.Int("updates", len(result.Updates)),
		logging.Duration("elapsed", finished.Sub(started)),
	}
	if result.Failed() {
		logger.Info("finished checking for security updates with an error", logging.Args(attrs...)...)
	} else {
		logger.Info("finished checking for security updates", logging.Args(attrs...)...)
	}
	return result.NeedsUpdates()
}

// wait blocks for delay, recomputing the remaining budget after every event.
func (s *Scheduler) wait(ctx context.Context, delay time.Duration, needsUpdates bool) error {
	start := s.clock.Now()
	s.setNextCheck(start.Add(delay))
	wake := s.wake

	for {
		remaining := delay - s.clock.Now().Sub(start)
		if remaining <= 0 {
			return nil
		}
		s.logger.Info("sleeping until next check",
			logging.String(logging.FieldEventType, "wait_started"),
			logging.Duration("remaining", remaining),
			logging.Time("next_check", start.Add(delay)),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(remaining):
			return nil
		case event, ok := <-wake:
			if !ok {
				wake = nil
				continue
			}
			action := decide(event, needsUpdates)
			s.logger.Debug("received wake event",
				logging.String(logging.FieldEventType, "wake_event"),
				logging.String("event", event.String()),
				logging.String("action", action.String()),
			)
			if action == checkNow {
				return nil
			}
			s.logger.Info("there are no missing security updates; ignoring external signal",
				logging.String(logging.FieldEventType, "signal_suppressed"),
			)
		}
	}
}

func (s *Scheduler) setNextCheck(at time.Time) {
	s.mu.Lock()
	s.nextCheck = at
	s.mu.Unlock()
}
