package daemon

import (
	"context"
	"log/slog"
	"sync"

	"audittray/internal/logging"
	"audittray/internal/notifications"
	"audittray/internal/status"
)

// Board consumes statuses in completion order and keeps the latest one.
// Consecutive statuses with the same outcome are coalesced: only the check
// metadata is refreshed and no notification is sent.
type Board struct {
	notifier notifications.Service
	logger   *slog.Logger

	mu      sync.RWMutex
	latest  status.Status
	has     bool
	changes uint64
}

// NewBoard builds a board that forwards changes to notifier.
func NewBoard(notifier notifications.Service, logger *slog.Logger) *Board {
	if notifier == nil {
		notifier = notifications.NewNoop()
	}
	return &Board{
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "status-board"),
	}
}

// Run applies statuses from in until it is closed or ctx is cancelled.
func (b *Board) Run(ctx context.Context, in <-chan status.Status) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case st, ok := <-in:
			if !ok {
				return nil
			}
			b.Apply(ctx, st)
		}
	}
}

// Apply records st and reports whether the rendered outcome changed.
func (b *Board) Apply(ctx context.Context, st status.Status) bool {
	b.mu.Lock()
	previous, had := b.latest, b.has
	changed := !had || !previous.SameOutcome(st)
	b.latest, b.has = st, true
	if changed {
		b.changes++
	}
	b.mu.Unlock()

	logger := b.logger.With(logging.String(logging.FieldCheckID, st.CheckID))
	if !changed {
		logger.Debug("status unchanged",
			logging.String(logging.FieldEventType, "status_unchanged"),
			logging.String("status", st.Text),
		)
		return false
	}

	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "status_changed"),
		logging.String("status", st.Text),
		logging.String("icon", st.Icon.String()),
	}
	if had {
		attrs = append(attrs, logging.String("previous", previous.Text))
	}
	logger.Info("status changed", logging.Args(attrs...)...)

	// A clean first status is not worth a notification.
	if !had && st.Icon == status.IconCheck {
		return true
	}
	if err := b.notifier.NotifyStatus(ctx, st); err != nil {
		logging.WarnWithContext(logger, "failed to send status notification", "notification_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the ntfy topic and the desktop notification service"),
			logging.String(logging.FieldImpact, "status change was not announced"),
		)
	}
	return true
}

// Latest returns the most recent status, if any check has completed.
func (b *Board) Latest() (status.Status, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.latest, b.has
}

// Changes returns how many distinct outcomes have been recorded.
func (b *Board) Changes() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.changes
}
