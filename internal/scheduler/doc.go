// Package scheduler drives periodic audit checks.
//
// The loop alternates between Checking, which runs the checker to
// completion, and Waiting, which lasts the base interval plus a random jitter.
// A wait ends early on a user click, or on an external signal when the last
// check reported missing updates (or failed). Other signals are ignored and the
// wait resumes with whatever budget remains. The budget is never restarted.
package scheduler
