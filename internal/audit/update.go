package audit

import (
	"cmp"
	"slices"
)

// Update is one pending security update for one installed package.
type Update struct {
	Severity Severity `json:"severity"`
	Package  string   `json:"package"`
	Advisory string   `json:"advisory"`
	Kind     string   `json:"kind"`
	Text     string   `json:"text"`
	Link     string   `json:"link"`
}

// Result is the outcome of one check: either a list of updates (possibly
// empty) or an error description.
type Result struct {
	Updates []Update `json:"updates,omitempty"`
	Err     string   `json:"error,omitempty"`
}

// Success wraps a sorted update list.
func Success(updates []Update) Result {
	if updates == nil {
		updates = []Update{}
	}
	return Result{Updates: updates}
}

// Failure converts an invoker error into a failed result.
func Failure(err error) Result {
	msg := "unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return Result{Err: msg}
}

// Failed reports whether the check produced an error instead of a list.
func (r Result) Failed() bool {
	return r.Err != ""
}

// NeedsUpdates reports whether the system should be treated as missing updates.
// A failed check counts as missing updates so that external signals keep
// triggering checks until one succeeds.
func (r Result) NeedsUpdates() bool {
	return r.Failed() || len(r.Updates) > 0
}

// Equal reports whether two results carry the same outcome.
func (r Result) Equal(other Result) bool {
	return r.Err == other.Err && slices.Equal(r.Updates, other.Updates)
}

// SortUpdates orders updates by severity descending, then package ascending,
// then advisory name. The sort is stable so exact duplicates keep their order.
func SortUpdates(updates []Update) {
	slices.SortStableFunc(updates, compareUpdates)
}

func compareUpdates(a, b Update) int {
	if c := cmp.Compare(b.Severity, a.Severity); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Package, b.Package); c != 0 {
		return c
	}
	return cmp.Compare(a.Advisory, b.Advisory)
}
