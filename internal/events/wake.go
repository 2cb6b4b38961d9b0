package events

import "fmt"

// WakeEvent can end the scheduler's wait early.
type WakeEvent int

const (
	// UserClick requests an immediate check.
	UserClick WakeEvent = iota + 1
	// ExternalSignal reports that another process finished writing into the
	// watched directory.
	ExternalSignal
)

func (e WakeEvent) String() string {
	switch e {
	case UserClick:
		return "user_click"
	case ExternalSignal:
		return "external_signal"
	default:
		return fmt.Sprintf("WakeEvent(%d)", int(e))
	}
}

// Trigger is the manual producer. Every call pushes one UserClick; the
// scheduler is responsible for collapsing bursts.
type Trigger struct {
	queue *Queue[WakeEvent]
}

// NewTrigger returns a Trigger feeding queue.
func NewTrigger(queue *Queue[WakeEvent]) *Trigger {
	return &Trigger{queue: queue}
}

// Click requests an immediate check. It never blocks and reports false once
// the queue has been closed.
func (t *Trigger) Click() bool {
	if t == nil || t.queue == nil {
		return false
	}
	return t.queue.Push(UserClick)
}
