// Package executor runs external build tools with output capture,
// environment variable management, and context support for cancellation
// and timeouts.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Result holds the output and exit code from a command execution.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner abstracts command execution so consumers can be tested with a
// stub instead of spawning processes.
type Runner interface {
	// Run executes program with args and returns the captured result. A
	// non-zero exit code is returned as an error alongside the Result.
	Run(ctx context.Context, program string, args []string, opts ...Option) (*Result, error)
}

// Options configures command execution behavior.
type Options struct {
	// WorkingDir is the directory the command runs in. Empty means the
	// process working directory.
	WorkingDir string

	// Env holds environment variables appended to the current environment.
	Env map[string]string

	// RedirectToConsole mirrors the command's output to the console while
	// it is captured.
	RedirectToConsole bool

	// StdoutWriter and StderrWriter receive the command's output in
	// addition to capture.
	StdoutWriter io.Writer
	StderrWriter io.Writer
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithWorkingDir sets the working directory.
func WithWorkingDir(dir string) Option {
	return func(o *Options) {
		o.WorkingDir = dir
	}
}

// WithEnv adds environment variables.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string)
		}
		for k, v := range env {
			o.Env[k] = v
		}
	}
}

// WithEnvVar adds a single environment variable.
func WithEnvVar(key, value string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string)
		}
		o.Env[key] = value
	}
}

// WithConsoleRedirect mirrors command output to the console.
func WithConsoleRedirect(redirect bool) Option {
	return func(o *Options) {
		o.RedirectToConsole = redirect
	}
}

// WithStdoutWriter sets an additional stdout writer.
func WithStdoutWriter(w io.Writer) Option {
	return func(o *Options) {
		o.StdoutWriter = w
	}
}

// WithStderrWriter sets an additional stderr writer.
func WithStderrWriter(w io.Writer) Option {
	return func(o *Options) {
		o.StderrWriter = w
	}
}

// CommandRunner is the Runner backed by os/exec.
type CommandRunner struct{}

// New returns a CommandRunner.
func New() *CommandRunner {
	return &CommandRunner{}
}

// Run implements the Runner interface.
func (c *CommandRunner) Run(ctx context.Context, program string, args []string, opts ...Option) (*Result, error) {
	var options Options
	for _, opt := range opts {
		opt(&options)
	}

	cmd := exec.CommandContext(ctx, program, args...)

	if options.WorkingDir != "" {
		cmd.Dir = options.WorkingDir
	}
	if len(options.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range options.Env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = buildWriter(&stdoutBuf, os.Stdout, options.StdoutWriter, options.RedirectToConsole)
	cmd.Stderr = buildWriter(&stderrBuf, os.Stderr, options.StderrWriter, options.RedirectToConsole)

	err := cmd.Run()

	result := &Result{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return result, nil
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		result.ExitCode = -1
	}

	return result, fmt.Errorf("%s failed: %w", program, err)
}

func buildWriter(capture *bytes.Buffer, console io.Writer, extra io.Writer, redirect bool) io.Writer {
	writers := []io.Writer{capture}
	if redirect {
		writers = append(writers, console)
	}
	if extra != nil {
		writers = append(writers, extra)
	}
	if len(writers) == 1 {
		return capture
	}
	return io.MultiWriter(writers...)
}
