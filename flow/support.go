package flow

import (
	"context"
	"strings"

	"github.com/forgeflow/gitflow/version"
)

// defaultSupportDigitCount is the digit count support versions are padded
// to before the final digit is incremented, e.g. a 1.0 tag yields the
// 1.0.1 support line.
const defaultSupportDigitCount = 3

// SupportStart cuts a long-lived support branch from an existing tag and
// moves the project onto the support line's version.
func (o *Orchestrator) SupportStart(ctx context.Context, opts Options) error {
	var tag, supVer, branch string

	steps := []step{
		{"validate options", func(ctx context.Context) error {
			return opts.Validate()
		}},
		{"check uncommitted changes", o.checkUncommittedChanges},
		{"select source tag", func(ctx context.Context) error {
			tag = opts.SourceTag
			if tag == "" {
				tags, err := o.vcs.Tags(ctx)
				if err != nil {
					return WrapError(err, "failed to list tags")
				}
				if len(tags) == 0 {
					return WrapError(ErrNoTag, "there are no tags")
				}
				tag, err = o.versions.ChooseTag(ctx, tags)
				if err != nil {
					return WrapError(err, "failed to select source tag")
				}
			}
			if strings.TrimSpace(tag) == "" {
				return WrapError(ErrNoTag, "tag is blank")
			}

			exists, err := o.vcs.TagExists(ctx, tag)
			if err != nil {
				return WrapErrorf(err, "failed to look up tag %q", tag)
			}
			if !exists {
				return WrapErrorf(ErrNoTag, "tag %q does not exist", tag)
			}
			return nil
		}},
		{"checkout source tag", func(ctx context.Context) error {
			return o.vcs.Checkout(ctx, tag)
		}},
		{"compute support version", func(ctx context.Context) error {
			var def string
			if opts.ReleaseVersion == "" {
				current, err := o.builder.CurrentVersion(ctx)
				if err != nil {
					return WrapError(err, "failed to read project version")
				}
				info, err := version.Parse(current)
				if err != nil {
					return WrapErrorf(err, "project version %q", current)
				}

				padCount := defaultSupportDigitCount
				if opts.VersionDigitToIncrement != nil {
					padCount = *opts.VersionDigitToIncrement
				}
				padded, err := version.Parse(info.DigitsInfo().Padded(padCount))
				if err != nil {
					return WrapError(err, "failed to re-parse padded version")
				}
				def = padded.NextVersion().ReleaseVersionString()
			}

			v, err := o.resolveMilestoneVersion(ctx, opts.ReleaseVersion, def)
			if err != nil {
				return err
			}
			if !SafeBranchName(v) {
				return WrapErrorf(ErrInvalidOptions, "version %q is not safe to use in a branch name", v)
			}

			supVer = v
			branch = o.cfg.SupportBranchPrefix + v
			return nil
		}},
		{"check support branch", func(ctx context.Context) error {
			exists, err := o.vcs.BranchExists(ctx, branch)
			if err != nil {
				return WrapErrorf(err, "failed to look up branch %q", branch)
			}
			if exists {
				return WrapErrorf(ErrBranchExists, "support branch %q already exists", branch)
			}
			return nil
		}},
		{"create support branch", func(ctx context.Context) error {
			return o.vcs.CreateAndCheckout(ctx, branch, tag)
		}},
		{"update project version", func(ctx context.Context) error {
			v := supVer
			if opts.UseSnapshot && !version.IsSnapshot(v) {
				v += version.SnapshotQualifier
			}
			if err := o.builder.SetVersion(ctx, v); err != nil {
				return WrapErrorf(err, "failed to set version %q", v)
			}
			return o.commitVersion(ctx, o.cfg.Messages.SupportStart, v)
		}},
	}

	if opts.InstallProject {
		steps = append(steps, step{"clean install", func(ctx context.Context) error {
			return WrapError(o.builder.CleanInstall(ctx), "clean install failed")
		}})
	}
	if opts.PushRemote {
		steps = append(steps, step{"push support branch", func(ctx context.Context) error {
			return o.vcs.Push(ctx, branch, false)
		}})
	}

	return o.execute(ctx, LifecycleSupportStart, steps)
}

// SupportFinish publishes the tip of the support branch: it strips the
// snapshot marker when present, tags the release, and re-synchronizes the
// production branch. The support branch is deleted afterwards unless
// KeepBranch is set.
func (o *Orchestrator) SupportFinish(ctx context.Context, opts Options) error {
	var branch string

	steps := []step{
		{"validate options", func(ctx context.Context) error {
			return opts.Validate()
		}},
		{"check uncommitted changes", o.checkUncommittedChanges},
		{"resolve support branch", func(ctx context.Context) error {
			var err error
			branch, err = o.resolveUniqueBranch(ctx, o.cfg.SupportBranchPrefix, opts.FetchRemote)
			return err
		}},
		{"checkout support branch", func(ctx context.Context) error {
			return o.vcs.Checkout(ctx, branch)
		}},
	}

	if !opts.AllowSnapshots {
		steps = append(steps, step{"check snapshot dependencies", o.checkSnapshotDependencies})
	}
	if opts.FetchRemote {
		steps = append(steps, step{"compare with remote", func(ctx context.Context) error {
			return o.vcs.FetchAndCompare(ctx, branch)
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
	if opts.UseSnapshot {
		steps = append(steps, step{"commit release version", func(ctx context.Context) error {
			current, err := o.builder.CurrentVersion(ctx)
			if err != nil {
				return WrapError(err, "failed to read project version")
			}
			if !version.IsSnapshot(current) {
				return nil
			}

			v := version.StripSnapshot(current)
			if err := o.builder.SetVersion(ctx, v); err != nil {
				return WrapErrorf(err, "failed to set version %q", v)
			}
			return o.commitVersion(ctx, o.cfg.Messages.SupportFinish, v)
		}})
	}
	if !opts.SkipTag {
		steps = append(steps, step{"tag support release", func(ctx context.Context) error {
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
			return o.vcs.Tag(ctx, name, o.cfg.Messages.TagSupport, opts.GPGSignTag, props)
		}})
	}
	if len(opts.PostGoals) > 0 {
		steps = append(steps, step{"post goals", func(ctx context.Context) error {
			return o.runGoals(ctx, opts.PostGoals)
		}})
	}
	if opts.InstallProject {
		steps = append(steps, step{"clean install", func(ctx context.Context) error {
			return WrapError(o.builder.CleanInstall(ctx), "clean install failed")
		}})
	}
	if opts.PushRemote {
		steps = append(steps, step{"push support branch", func(ctx context.Context) error {
			return o.vcs.Push(ctx, branch, !opts.SkipTag)
		}})
	}

	steps = append(steps, step{"checkout production branch", func(ctx context.Context) error {
		if err := o.vcs.FetchAndCreate(ctx, o.cfg.ProductionBranch); err != nil {
			return err
		}
		return o.vcs.Checkout(ctx, o.cfg.ProductionBranch)
	}})

	if !opts.KeepBranch {
		steps = append(steps, step{"delete support branch", func(ctx context.Context) error {
			return o.vcs.DeleteBranch(ctx, branch)
		}})
	}

	return o.execute(ctx, LifecycleSupportFinish, steps)
}
