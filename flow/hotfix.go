package flow

import (
	"context"

	"github.com/forgeflow/gitflow/version"
)

// defaultHotfixDigitIndex is the digit position incremented when deriving
// the hotfix version, the patch digit of a three-digit version.
const defaultHotfixDigitIndex = 2

// HotfixStart cuts a hotfix branch from the production branch and moves the
// project onto the hotfix version.
func (o *Orchestrator) HotfixStart(ctx context.Context, opts Options) error {
	var hotVer, branch string

	steps := []step{
		{"validate options", func(ctx context.Context) error {
			return opts.Validate()
		}},
		{"check uncommitted changes", o.checkUncommittedChanges},
	}

	if opts.FetchRemote {
		steps = append(steps, step{"compare production with remote", func(ctx context.Context) error {
			return o.vcs.FetchAndCompare(ctx, o.cfg.ProductionBranch)
		}})
	}

	steps = append(steps,
		step{"checkout production branch", func(ctx context.Context) error {
			return o.vcs.Checkout(ctx, o.cfg.ProductionBranch)
		}},
		step{"compute hotfix version", func(ctx context.Context) error {
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

				digit := defaultHotfixDigitIndex
				if opts.VersionDigitToIncrement != nil {
					digit = *opts.VersionDigitToIncrement
				}
				def = version.StripSnapshot(info.NextSnapshotVersionAt(digit))
			}

			v, err := o.resolveMilestoneVersion(ctx, opts.ReleaseVersion, def)
			if err != nil {
				return err
			}
			if !SafeBranchName(v) {
				return WrapErrorf(ErrInvalidOptions, "version %q is not safe to use in a branch name", v)
			}

			hotVer = v
			branch = o.cfg.HotfixBranchPrefix + v
			return nil
		}},
		step{"check hotfix branch", func(ctx context.Context) error {
			exists, err := o.vcs.BranchExists(ctx, branch)
			if err != nil {
				return WrapErrorf(err, "failed to look up branch %q", branch)
			}
			if exists {
				return WrapErrorf(ErrBranchExists, "hotfix branch %q already exists", branch)
			}
			return nil
		}},
		step{"create hotfix branch", func(ctx context.Context) error {
			return o.vcs.CreateAndCheckout(ctx, branch, o.cfg.ProductionBranch)
		}},
		step{"update project version", func(ctx context.Context) error {
			v := hotVer
			if opts.UseSnapshot && !version.IsSnapshot(v) {
				v += version.SnapshotQualifier
			}
			if err := o.builder.SetVersion(ctx, v); err != nil {
				return WrapErrorf(err, "failed to set version %q", v)
			}
			return o.commitVersion(ctx, o.cfg.Messages.HotfixStart, v)
		}},
	)

	if opts.InstallProject {
		steps = append(steps, step{"clean install", func(ctx context.Context) error {
			return WrapError(o.builder.CleanInstall(ctx), "clean install failed")
		}})
	}
	if opts.PushRemote {
		steps = append(steps, step{"push hotfix branch", func(ctx context.Context) error {
			return o.vcs.Push(ctx, branch, false)
		}})
	}

	return o.execute(ctx, LifecycleHotfixStart, steps)
}
