package scheduler

import "audittray/internal/events"

type wakeAction int

const (
	keepWaiting wakeAction = iota
	checkNow
)

func (a wakeAction) String() string {
	if a == checkNow {
		return "check_now"
	}
	return "keep_waiting"
}

// decide applies the wake rules to one event received while waiting.
func decide(event events.WakeEvent, needsUpdates bool) wakeAction {
	switch event {
	case events.UserClick:
		return checkNow
	case events.ExternalSignal:
		if needsUpdates {
			return checkNow
		}
		return keepWaiting
	default:
		return keepWaiting
	}
}
