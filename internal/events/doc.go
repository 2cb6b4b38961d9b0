// Package events feeds wake events to the scheduler.
//
// Two producers push into one unbounded Queue: a Trigger for user requested
// checks and a SignalWatcher that turns write-complete notifications in a
// watched directory into ExternalSignal events. The watcher is optional
// infrastructure. When it cannot be installed it logs one warning and never
// produces events, leaving the scheduler on its timer and manual triggers.
package events
