package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"audittray/internal/logging"
)

// DefaultArgs request an update-only report in JSON.
var DefaultArgs = []string{"-u", "--json"}

// commandWaitDelay bounds how long output pipes may stay open after the
// command is killed.
const commandWaitDelay = 5 * time.Second

type commandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execCommandRunner struct{}

func (execCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = commandWaitDelay
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Options configure an Invoker.
type Options struct {
	Binary          string
	AdvisoryBaseURL string
	// Timeout bounds a single run. Zero waits for the command to exit.
	Timeout time.Duration
	Logger  *slog.Logger
}

// Invoker runs the audit command. It holds no state between runs.
type Invoker struct {
	binary  string
	baseURL string
	timeout time.Duration
	logger  *slog.Logger
	runner  commandRunner
}

// InvokerOption customizes an Invoker.
type InvokerOption func(*Invoker)

// WithCommandRunner injects a custom command runner (used in tests).
func WithCommandRunner(r commandRunner) InvokerOption {
	return func(i *Invoker) {
		if r != nil {
			i.runner = r
		}
	}
}

// NewInvoker constructs an Invoker. Empty options fall back to arch-audit and
// the Arch Linux security tracker.
func NewInvoker(opts Options, options ...InvokerOption) *Invoker {
	binary := strings.TrimSpace(opts.Binary)
	if binary == "" {
		binary = "arch-audit"
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.AdvisoryBaseURL), "/")
	if baseURL == "" {
		baseURL = "https://security.archlinux.org"
	}
	inv := &Invoker{
		binary:  binary,
		baseURL: baseURL,
		timeout: opts.Timeout,
		logger:  logging.NewComponentLogger(opts.Logger, "audit"),
		runner:  execCommandRunner{},
	}
	for _, opt := range options {
		opt(inv)
	}
	return inv
}

// Binary returns the command the invoker runs.
func (i *Invoker) Binary() string {
	return i.binary
}

// Check runs the audit command and folds any failure into the Result.
func (i *Invoker) Check(ctx context.Context) Result {
	updates, err := i.Run(ctx)
	if err != nil {
		return Failure(err)
	}
	return Success(updates)
}

// Run executes the audit command and returns the sorted updates. Errors are
// *LaunchError, *ExitError or *ParseError.
func (i *Invoker) Run(ctx context.Context) ([]Update, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.WithContext(ctx, i.logger)

	runCtx := ctx
	if i.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	started := time.Now()
	stdout, stderr, err := i.runner.Run(runCtx, i.binary, DefaultArgs...)
	elapsed := time.Since(started)
	if err != nil {
		classified := i.classify(runCtx, stderr, err)
		logger.Info("audit command failed",
			logging.String(logging.FieldEventType, "audit_failed"),
			logging.String("binary", i.binary),
			logging.Duration("elapsed", elapsed),
			logging.Error(classified),
		)
		return nil, classified
	}

	updates, err := parseAdvisories(stdout, i.baseURL)
	if err != nil {
		logger.Info("audit output rejected",
			logging.String(logging.FieldEventType, "audit_parse_failed"),
			logging.Int("output_bytes", len(stdout)),
			logging.Error(err),
		)
		return nil, &ParseError{Binary: i.binary, Err: err}
	}

	logger.Info("audit command exited",
		logging.String(logging.FieldEventType, "audit_completed"),
		logging.Duration("elapsed", elapsed),
		logging.Int("updates", len(updates)),
	)
	for _, update := range updates {
		logger.Debug("missing security update",
			logging.String("package", update.Package),
			logging.String("severity", update.Severity.String()),
			logging.String("advisory", update.Advisory),
		)
	}
	return updates, nil
}

func (i *Invoker) classify(runCtx context.Context, stderr []byte, err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if ctxErr := runCtx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return &ExitError{
			Binary: i.binary,
			Code:   exitErr.ExitCode(),
			Stderr: strings.TrimSpace(string(stderr)),
			Err:    err,
		}
	}
	return &LaunchError{Binary: i.binary, Err: err}
}
