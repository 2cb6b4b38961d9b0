// Package notifications announces audit status changes.
//
// Two transports are available: ntfy, configured by topic URL, and
// freedesktop desktop notifications sent over the session bus. NewService
// combines whichever are enabled and degrades to a no-op when none are.
// Callers depend only on the Service interface.
package notifications
