package audit

import (
	"fmt"
)

// LaunchError reports that the audit command could not be started.
type LaunchError struct {
	Binary string
	Err    error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to run %s: %v", e.Binary, e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// ExitError reports that the audit command ran but did not succeed. Its
// message is the command's trimmed error stream when there is one.
type ExitError struct {
	Binary string
	Code   int
	Stderr string
	Err    error
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	return fmt.Sprintf("%s failed: %v", e.Binary, e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }

// ParseError reports that the command succeeded but its output did not match
// the advisory schema.
type ParseError struct {
	Binary string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s json output: %v", e.Binary, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
