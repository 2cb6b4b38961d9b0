package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"audittray/internal/config"
	"audittray/internal/ipc"
	"audittray/internal/logging"
)

type commandContext struct {
	socketFlag *string
	configFlag *string
	verbose    *int

	configOnce sync.Once
	config     *config.Config
	applied    []string
	configErr  error
}

func newCommandContext(socketFlag, configFlag *string, verbose *int) *commandContext {
	return &commandContext{
		socketFlag: socketFlag,
		configFlag: configFlag,
		verbose:    verbose,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, applied, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.applied = applied
	})
	return c.config, c.configErr
}

func (c *commandContext) verbosity() int {
	if c.verbose == nil {
		return 0
	}
	return *c.verbose
}

// logger builds a logger for short-lived commands that honours -v.
func (c *commandContext) logger(cfg *config.Config, outputs ...string) (*slog.Logger, error) {
	fallback := "warn"
	format := "console"
	if cfg != nil {
		fallback = cfg.Logging.Level
		format = cfg.Logging.Format
	}
	return logging.New(logging.Options{
		Level:       logging.LevelForVerbosity(c.verbosity(), fallback),
		Format:      format,
		OutputPaths: outputs,
	})
}

func (c *commandContext) socketPath() string {
	if c.socketFlag == nil {
		return defaultSocketPath()
	}
	if strings.TrimSpace(*c.socketFlag) == "" {
		if cfg, err := c.ensureConfig(); err == nil {
			*c.socketFlag = cfg.SocketPath()
		} else {
			*c.socketFlag = defaultSocketPath()
		}
	}
	return *c.socketFlag
}

func (c *commandContext) withClient(fn func(*ipc.Client) error) error {
	client, err := c.dialClient()
	if err != nil {
		return err
	}
	defer client.Close()
	return fn(client)
}

func (c *commandContext) dialClient() (*ipc.Client, error) {
	socket := c.socketPath()
	client, err := ipc.Dial(socket)
	if err != nil {
		return nil, wrapDialError(err, socket)
	}
	return client, nil
}

func wrapDialError(err error, socket string) error {
	switch {
	case errors.Is(err, syscall.ENOENT) || os.IsNotExist(err):
		return fmt.Errorf("connect to daemon: socket %s not found; start the daemon with `audittray run`", socket)
	case errors.Is(err, syscall.ECONNREFUSED):
		return fmt.Errorf("connect to daemon: socket %s refused the connection; verify the daemon is running", socket)
	default:
		return fmt.Errorf("connect to daemon: %w", err)
	}
}

func defaultSocketPath() string {
	cfg, _, err := config.Load("")
	if err == nil {
		return cfg.SocketPath()
	}
	stateDir, err := config.ExpandPath("~/.local/state/audittray")
	if err != nil {
		return filepath.Join(os.TempDir(), "audittray.sock")
	}
	return filepath.Join(stateDir, "audittray.sock")
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
