// Package flow drives git-flow lifecycles: ordered, guarded step sequences
// over a version-control collaborator and a build-tool collaborator, with
// milestone versions derived by the version package. Every lifecycle is a
// linear state machine - one forward transition per step, an absorbing
// failure state reachable from every step, no retries and no rollback.
// Durable state lives entirely in the collaborators; the orchestrator is
// stateless between invocations.
package flow

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// Lifecycle names, used in step failures and log output.
const (
	LifecycleReleaseStart  = "release-start"
	LifecycleReleaseUpdate = "release-update"
	LifecycleSupportStart  = "support-start"
	LifecycleSupportFinish = "support-finish"
	LifecycleHotfixStart   = "hotfix-start"
)

// Orchestrator executes lifecycle recipes. One instance serves any number
// of sequential invocations; concurrent invocations against the same
// working copy are undefined behavior and not guarded against.
type Orchestrator struct {
	cfg      Config
	vcs      VCS
	builder  Builder
	versions VersionSource
	log      *zap.Logger
}

// New builds an Orchestrator. The VersionSource selects interactive or
// non-interactive version acquisition once for all invocations; nil means
// non-interactive. A nil logger disables logging.
func New(cfg Config, vcs VCS, builder Builder, versions VersionSource, log *zap.Logger) (*Orchestrator, error) {
	if vcs == nil {
		return nil, WrapError(ErrInvalidOptions, "VCS collaborator is required")
	}
	if builder == nil {
		return nil, WrapError(ErrInvalidOptions, "builder collaborator is required")
	}
	if versions == nil {
		versions = NoPrompt{}
	}
	if log == nil {
		log = zap.NewNop()
	}

	cfg.applyDefaults()

	return &Orchestrator{
		cfg:     cfg,
		vcs:     vcs,
		builder: builder,

		versions: versions,
		log:      log,
	}, nil
}

// step is one gate of a lifecycle recipe. Steps are assembled in their
// fixed order; optional steps are simply not appended.
type step struct {
	name string
	run  func(ctx context.Context) error
}

// execute runs the steps in order, stopping at the first failure. The
// failure carries the lifecycle and step names; completed mutations are
// left in place.
func (o *Orchestrator) execute(ctx context.Context, lifecycle string, steps []step) error {
	for _, s := range steps {
		o.log.Debug("executing step",
			zap.String("lifecycle", lifecycle),
			zap.String("step", s.name))

		if err := s.run(ctx); err != nil {
			o.log.Error("step failed",
				zap.String("lifecycle", lifecycle),
				zap.String("step", s.name),
				zap.Error(err))
			return &StepError{Lifecycle: lifecycle, Step: s.name, Err: err}
		}
	}

	o.log.Info("lifecycle completed", zap.String("lifecycle", lifecycle))
	return nil
}

// checkUncommittedChanges is the shared first gate of every lifecycle.
func (o *Orchestrator) checkUncommittedChanges(ctx context.Context) error {
	dirty, err := o.vcs.HasUncommittedChanges(ctx)
	if err != nil {
		return WrapError(err, "failed to inspect working copy")
	}
	if dirty {
		return ErrUncommittedChanges
	}
	return nil
}

// resolveUniqueBranch finds the single branch matching prefix. Local
// branches are searched first. When none exists and remote fetching is
// enabled, remote branches are searched, the remote-name prefix is
// stripped, and a local tracking branch is materialized. No remote call is
// made when fetching is disabled. More than one candidate is an ambiguity
// failure in either namespace.
func (o *Orchestrator) resolveUniqueBranch(ctx context.Context, prefix string, fetchRemote bool) (string, error) {
	local, err := o.vcs.FindLocalBranches(ctx, prefix)
	if err != nil {
		return "", WrapErrorf(err, "failed to list local %q branches", prefix)
	}

	switch {
	case len(local) == 1:
		return local[0], nil
	case len(local) > 1:
		return "", WrapErrorf(ErrAmbiguousBranch, "%d local branches match prefix %q", len(local), prefix)
	}

	if !fetchRemote {
		return "", WrapErrorf(ErrNoBranch, "there is no local %q branch", prefix)
	}

	remote, err := o.vcs.FindRemoteBranches(ctx, o.cfg.Origin, prefix)
	if err != nil {
		return "", WrapErrorf(err, "failed to list remote %q branches", prefix)
	}

	switch {
	case len(remote) == 0:
		return "", WrapErrorf(ErrNoBranch, "there is no remote or local %q branch", prefix)
	case len(remote) > 1:
		return "", WrapErrorf(ErrAmbiguousBranch, "%d remote branches match prefix %q", len(remote), prefix)
	}

	name := strings.TrimPrefix(remote[0], o.cfg.Origin+"/")
	if err := o.vcs.CreateAndCheckout(ctx, name, o.cfg.Origin+"/"+name); err != nil {
		return "", WrapErrorf(err, "failed to materialize remote branch %q", name)
	}

	return name, nil
}

// checkSnapshotDependencies fails when the project resolves snapshot
// dependencies.
func (o *Orchestrator) checkSnapshotDependencies(ctx context.Context) error {
	has, err := o.builder.HasSnapshotDependency(ctx)
	if err != nil {
		return WrapError(err, "failed to inspect dependencies")
	}
	if has {
		return ErrSnapshotDependencies
	}
	return nil
}

// resolveMilestoneVersion settles the version applied at the current
// milestone: an explicit override wins, otherwise the computed default is
// offered to the version source. A blank answer falls back to the default;
// anything else must be a valid, branch-safe version.
func (o *Orchestrator) resolveMilestoneVersion(ctx context.Context, override, defaultVersion string) (string, error) {
	if override != "" {
		return override, nil
	}
	if defaultVersion == "" {
		return "", WrapError(ErrBlankVersion, "cannot compute default project version")
	}

	v, err := o.versions.ReleaseVersion(ctx, defaultVersion)
	if err != nil {
		return "", WrapError(err, "failed to acquire version")
	}
	if strings.TrimSpace(v) == "" {
		o.log.Info("version is blank, using default", zap.String("default", defaultVersion))
		return defaultVersion, nil
	}
	if v != defaultVersion {
		if err := ValidateVersionValue(v); err != nil {
			return "", err
		}
	}

	return v, nil
}

// commitVersion commits the staged version change with the rendered
// message template.
func (o *Orchestrator) commitVersion(ctx context.Context, messageTemplate, ver string) error {
	props := map[string]string{"version": ver}
	if err := o.vcs.Commit(ctx, messageTemplate, props); err != nil {
		return WrapErrorf(err, "failed to commit version %q", ver)
	}
	return nil
}

// runGoals validates and executes a user-specified goal list.
func (o *Orchestrator) runGoals(ctx context.Context, goals []string) error {
	if err := o.builder.RunGoals(ctx, goals); err != nil {
		return WrapErrorf(err, "failed to run goals %v", goals)
	}
	return nil
}

// IsStepFailure reports whether err is a lifecycle step failure and, if so,
// returns it.
func IsStepFailure(err error) (*StepError, bool) {
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr, true
	}
	return nil, false
}
