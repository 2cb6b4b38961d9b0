// Package audit runs the external security audit command and turns its JSON
// report into a sorted list of pending updates.
//
// One advisory record covering N packages expands into N Update values. The
// list is ordered by severity (most severe first) and then by package name.
// Launch, exit and parse failures are reported as typed errors and folded into
// a failed Result by Invoker.Check; none of them panic or stop the caller.
package audit
