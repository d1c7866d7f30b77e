package flow

import (
	"context"

	"github.com/forgeflow/gitflow/version"
)

// ReleaseStart cuts a release branch from the development branch and moves
// the project onto the release version.
func (o *Orchestrator) ReleaseStart(ctx context.Context, opts Options) error {
	var relVer, branch, currentVersion string

	steps := []step{
		{"validate options", func(ctx context.Context) error {
			return opts.Validate()
		}},
		{"check uncommitted changes", o.checkUncommittedChanges},
		{"check for existing release branch", func(ctx context.Context) error {
			local, err := o.vcs.FindLocalBranches(ctx, o.cfg.ReleaseBranchPrefix)
			if err != nil {
				return WrapErrorf(err, "failed to list local %q branches", o.cfg.ReleaseBranchPrefix)
			}
			if len(local) > 0 {
				return WrapErrorf(ErrBranchExists, "release branch %q already exists", local[0])
			}
			return nil
		}},
	}

	if opts.FetchRemote {
		steps = append(steps, step{"compare development with remote", func(ctx context.Context) error {
			return o.vcs.FetchAndCompare(ctx, o.cfg.DevelopmentBranch)
		}})
	}

	steps = append(steps,
		step{"checkout development branch", func(ctx context.Context) error {
			return o.vcs.Checkout(ctx, o.cfg.DevelopmentBranch)
		}},
		step{"compute release version", func(ctx context.Context) error {
			var err error
			currentVersion, err = o.builder.CurrentVersion(ctx)
			if err != nil {
				return WrapError(err, "failed to read project version")
			}
			info, err := version.Parse(currentVersion)
			if err != nil {
				return WrapErrorf(err, "project version %q", currentVersion)
			}

			v, err := o.resolveMilestoneVersion(ctx, opts.ReleaseVersion, info.ReleaseVersionString())
			if err != nil {
				return err
			}
			if !SafeBranchName(v) {
				return WrapErrorf(ErrInvalidOptions, "version %q is not safe to use in a branch name", v)
			}

			relVer = v
			branch = o.cfg.ReleaseBranchPrefix + v
			return nil
		}},
		step{"check release branch", func(ctx context.Context) error {
			exists, err := o.vcs.BranchExists(ctx, branch)
			if err != nil {
				return WrapErrorf(err, "failed to look up branch %q", branch)
			}
			if exists {
				return WrapErrorf(ErrBranchExists, "release branch %q already exists", branch)
			}
			return nil
		}},
		step{"create release branch", func(ctx context.Context) error {
			return o.vcs.CreateAndCheckout(ctx, branch, o.cfg.DevelopmentBranch)
		}},
		step{"update project version", func(ctx context.Context) error {
			v := relVer
			if opts.UseSnapshot && !version.IsSnapshot(v) {
				v += version.SnapshotQualifier
			}
			if v == currentVersion {
				return nil
			}
			if err := o.builder.SetVersion(ctx, v); err != nil {
				return WrapErrorf(err, "failed to set version %q", v)
			}
			return o.commitVersion(ctx, o.cfg.Messages.ReleaseStart, v)
		}},
	)

	if opts.InstallProject {
		steps = append(steps, step{"clean install", func(ctx context.Context) error {
			return WrapError(o.builder.CleanInstall(ctx), "clean install failed")
		}})
	}
	if opts.PushRemote {
		steps = append(steps, step{"push release branch", func(ctx context.Context) error {
			return o.vcs.Push(ctx, branch, false)
		}})
	}

	return o.execute(ctx, LifecycleReleaseStart, steps)
}

// ReleaseUpdate finalizes the version on the release branch, tags the
// release, and bumps the branch to the next development iteration. The
// branch itself stays in place; merging it is out of scope.
func (o *Orchestrator) ReleaseUpdate(ctx context.Context, opts Options) error {
	var branch string

	steps := []step{
		{"validate options", func(ctx context.Context) error {
			return opts.Validate()
		}},
		{"check uncommitted changes", o.checkUncommittedChanges},
		{"resolve release branch", func(ctx context.Context) error {
			var err error
			branch, err = o.resolveUniqueBranch(ctx, o.cfg.ReleaseBranchPrefix, opts.FetchRemote)
			return err
		}},
		{"checkout release branch", func(ctx context.Context) error {
			return o.vcs.Checkout(ctx, branch)
		}},
	}

	if !opts.AllowSnapshots {
		steps = append(steps, step{"check snapshot dependencies", o.checkSnapshotDependencies})
	}
	if opts.FetchRemote {
		steps = append(steps, step{"compare with remote", func(ctx context.Context) error {
			if err := o.vcs.FetchAndCompare(ctx, branch); err != nil {
				return err
			}
			if o.cfg.notSameProdDevName() {
				if err := o.vcs.FetchAndCreate(ctx, o.cfg.ProductionBranch); err != nil {
					return err
				}
				return o.vcs.FetchAndCompare(ctx, o.cfg.ProductionBranch)
			}
			return nil
		}})
	}
	if !opts.SkipTestProject {
		steps = append(steps, step{"clean test", func(ctx context.Context) error {
			return WrapError(o.builder.CleanTest(ctx), "clean test failed")
		}})
	}
	if len(opts.PreGoals) > 0 {
		steps = append(steps, step{"pre goals", func(ctx context.Context) error {
			return o.runGoals(ctx, opts.PreGoals)
		}})
	}

	steps = append(steps, step{"update release version", func(ctx context.Context) error {
		current, err := o.builder.CurrentVersion(ctx)
		if err != nil {
			return WrapError(err, "failed to read project version")
		}
		info, err := version.Parse(current)
		if err != nil {
			return WrapErrorf(err, "project version %q", current)
		}

		v, err := o.resolveMilestoneVersion(ctx, opts.ReleaseVersion, info.ReleaseVersionString())
		if err != nil {
			return err
		}
		v = version.StripSnapshot(v)
		if v == current {
			return nil
		}
		if err := o.builder.SetVersion(ctx, v); err != nil {
			return WrapErrorf(err, "failed to set version %q", v)
		}
		return o.commitVersion(ctx, o.cfg.Messages.ReleaseFinish, v)
	}})

	if !opts.SkipTag {
		steps = append(steps, step{"tag release", func(ctx context.Context) error {
			current, err := o.builder.CurrentVersion(ctx)
			if err != nil {
				return WrapError(err, "failed to read project version")
			}

			tagVersion := current
			if opts.UseSnapshot && version.IsSnapshot(current) {
				tagVersion = version.StripSnapshot(current)
			}

			name := o.cfg.VersionTagPrefix + tagVersion
			props := map[string]string{"version": tagVersion}
			return o.vcs.Tag(ctx, name, o.cfg.Messages.TagRelease, opts.GPGSignTag, props)
		}})
	}
	if len(opts.PostGoals) > 0 {
		steps = append(steps, step{"post goals", func(ctx context.Context) error {
			return o.runGoals(ctx, opts.PostGoals)
		}})
	}
	steps = append(steps, step{"bump development version", func(ctx context.Context) error {
		next := opts.DevelopmentVersion
		if next == "" {
			current, err := o.builder.CurrentVersion(ctx)
			if err != nil {
				return WrapError(err, "failed to read project version")
			}
			info, err := version.Parse(current)
			if err != nil {
				return WrapErrorf(err, "project version %q", current)
			}
			if opts.DigitsOnlyDevVersion {
				info = info.DigitsInfo()
			}

			if opts.VersionDigitToIncrement != nil {
				next = info.NextSnapshotVersionAt(*opts.VersionDigitToIncrement)
			} else {
				next = info.NextSnapshotVersion()
			}
		}
		if next == "" {
			return WrapError(ErrBlankVersion, "next development version is blank")
		}

		if err := o.builder.SetVersion(ctx, next); err != nil {
			return WrapErrorf(err, "failed to set version %q", next)
		}
		return o.commitVersion(ctx, o.cfg.Messages.ReleaseVersionBump, next)
	}})

	if opts.InstallProject {
		steps = append(steps, step{"clean install", func(ctx context.Context) error {
			return WrapError(o.builder.CleanInstall(ctx), "clean install failed")
		}})
	}
	if opts.PushRemote {
		steps = append(steps, step{"push release branch", func(ctx context.Context) error {
			return o.vcs.Push(ctx, branch, !opts.SkipTag)
		}})
	}

	return o.execute(ctx, LifecycleReleaseUpdate, steps)
}
