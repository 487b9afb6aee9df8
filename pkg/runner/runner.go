package runner

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/arthur-debert/bcforge/pkg/errors"
	"github.com/arthur-debert/bcforge/pkg/logging"
	"github.com/rs/zerolog"
)

// Command describes a single subprocess invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env is appended to the inherited environment.
	Env map[string]string
}

// String renders the command line for logs and error messages.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result is the captured outcome of a command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes commands. A non-nil error means the command could not be
// started or exited with a non-zero status.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// Exec runs commands with os/exec.
type Exec struct {
	logger zerolog.Logger
}

// NewExec creates a runner backed by os/exec.
func NewExec() *Exec {
	return &Exec{logger: logging.GetLogger("runner")}
}

// Run starts cmd and waits for it. Cancelling ctx kills the process.
func (e *Exec) Run(ctx context.Context, cmd Command) (Result, error) {
	logging.LogCommand(e.logger, cmd.Name, cmd.Args)

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = os.Environ()
		for key, value := range cmd.Env {
			c.Env = append(c.Env, fmt.Sprintf("%s=%s", key, value))
		}
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()

	result := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if c.ProcessState != nil {
		result.ExitCode = c.ProcessState.ExitCode()
	}

	if result.Stdout != "" {
		e.logger.Trace().
			Str("command", cmd.Name).
			Str("output", result.Stdout).
			Msg("Command stdout")
	}
	if result.Stderr != "" {
		e.logger.Warn().
			Str("command", cmd.Name).
			Str("output", result.Stderr).
			Msg("Command stderr")
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !stderrors.As(err, &exitErr) {
			result.ExitCode = -1
		}
		return result, errors.Wrapf(err, errors.ErrCommand, "command failed: %s", cmd).
			WithDetail("dir", cmd.Dir).
			WithDetail("exitCode", result.ExitCode)
	}
	return result, nil
}
