// Package builder implements the build-tool collaborator for Maven
// projects. The project version lives in the POM; it is read through the
// help plugin and rewritten through the versions plugin, so the POM is
// never parsed or edited directly.
package builder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/forgeflow/gitflow/executor"
)

// DefaultCommand is the Maven executable used when Options leaves Command
// unset.
const DefaultCommand = "mvn"

const (
	helpEvaluateGoal = "org.apache.maven.plugins:maven-help-plugin:3.4.0:evaluate"
	versionsSetGoal  = "versions:set"
	dependencyList   = "dependency:list"
)

// ErrNoVersion is returned when the project version cannot be read from the
// build output.
var ErrNoVersion = errors.New("cannot determine project version")

// ErrBlankGoal is returned when an empty goal is requested.
var ErrBlankGoal = errors.New("goal is blank")

// Options configures how Maven is invoked.
type Options struct {
	// Command is the Maven executable. Defaults to DefaultCommand.
	Command string

	// WorkingDir is the project root the build runs in.
	WorkingDir string

	// ExtraArgs are appended to every Maven invocation, e.g. a settings
	// file or profile selection.
	ExtraArgs []string

	// Verbose mirrors Maven output to the console.
	Verbose bool
}

func (o *Options) applyDefaults() {
	if o.Command == "" {
		o.Command = DefaultCommand
	}
}

// Maven runs Maven goals through an executor.Runner. It implements the
// flow.Builder interface.
type Maven struct {
	runner executor.Runner
	opts   Options
	log    *zap.Logger
}

// New builds a Maven collaborator. A nil logger disables logging.
func New(runner executor.Runner, opts Options, log *zap.Logger) *Maven {
	if log == nil {
		log = zap.NewNop()
	}
	opts.applyDefaults()

	return &Maven{
		runner: runner,
		opts:   opts,
		log:    log,
	}
}

// CurrentVersion returns the project version as declared in the POM.
func (m *Maven) CurrentVersion(ctx context.Context) (string, error) {
	args := []string{
		"-q", "-N",
		helpEvaluateGoal,
		"-Dexpression=project.version",
		"-DforceStdout",
	}

	result, err := m.run(ctx, args, false)
	if err != nil {
		return "", WrapError(err, "failed to evaluate project version")
	}

	version := lastNonEmptyLine(result.Stdout)
	if version == "" || strings.HasPrefix(version, "[") {
		return "", WrapErrorf(ErrNoVersion, "unexpected output %q", result.Stdout)
	}
	return version, nil
}

// SetVersion rewrites the project version in the POM.
func (m *Maven) SetVersion(ctx context.Context, version string) error {
	if strings.TrimSpace(version) == "" {
		return WrapError(ErrNoVersion, "version to set is blank")
	}

	args := []string{
		"-B",
		versionsSetGoal,
		"-DnewVersion=" + version,
		"-DgenerateBackupPoms=false",
	}

	if _, err := m.run(ctx, args, m.opts.Verbose); err != nil {
		return WrapErrorf(err, "failed to set project version to %q", version)
	}

	m.log.Info("project version updated", zap.String("version", version))
	return nil
}

// RunGoals executes arbitrary build goals.
func (m *Maven) RunGoals(ctx context.Context, goals []string) error {
	for _, goal := range goals {
		if strings.TrimSpace(goal) == "" {
			return ErrBlankGoal
		}
	}

	args := append([]string{"-B"}, goals...)
	if _, err := m.run(ctx, args, m.opts.Verbose); err != nil {
		return WrapErrorf(err, "goals %v failed", goals)
	}
	return nil
}

// CleanTest runs a clean test cycle.
func (m *Maven) CleanTest(ctx context.Context) error {
	if _, err := m.run(ctx, []string{"-B", "clean", "test"}, m.opts.Verbose); err != nil {
		return WrapError(err, "clean test failed")
	}
	return nil
}

// CleanInstall runs a clean install cycle.
func (m *Maven) CleanInstall(ctx context.Context) error {
	if _, err := m.run(ctx, []string{"-B", "clean", "install"}, m.opts.Verbose); err != nil {
		return WrapError(err, "clean install failed")
	}
	return nil
}

// HasSnapshotDependency reports whether any resolved dependency is a
// snapshot version.
func (m *Maven) HasSnapshotDependency(ctx context.Context) (bool, error) {
	result, err := m.run(ctx, []string{"-B", dependencyList}, false)
	if err != nil {
		return false, WrapError(err, "failed to list dependencies")
	}
	return containsSnapshotDependency(result.Stdout), nil
}

func (m *Maven) run(ctx context.Context, args []string, verbose bool) (*executor.Result, error) {
	args = append(args, m.opts.ExtraArgs...)

	m.log.Debug("running maven",
		zap.String("command", m.opts.Command),
		zap.Strings("args", args))

	opts := []executor.Option{
		executor.WithConsoleRedirect(verbose),
	}
	if m.opts.WorkingDir != "" {
		opts = append(opts, executor.WithWorkingDir(m.opts.WorkingDir))
	}

	return m.runner.Run(ctx, m.opts.Command, args, opts...)
}

// containsSnapshotDependency scans dependency:list output for coordinate
// lines carrying a snapshot version.
func containsSnapshotDependency(out string) bool {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "[INFO]"))
		if strings.Count(line, ":") < 3 {
			continue
		}
		if strings.Contains(line, "-SNAPSHOT") {
			return true
		}
	}
	return false
}

func lastNonEmptyLine(out string) string {
	lines := strings.Split(out, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

// WrapError wraps an error with additional context while preserving
// the ability to check against sentinel errors using errors.Is().
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapErrorf wraps an error with formatted additional context while
// preserving the ability to check against sentinel errors using errors.Is().
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
