package cli

import (
	"github.com/spf13/cobra"

	"github.com/forgeflow/gitflow/flow"
)

// optionFlags is the flag surface shared by the lifecycle commands. Each
// command registers only the subset that applies to it.
type optionFlags struct {
	releaseVersion     string
	developmentVersion string
	sourceTag          string

	skipTag         bool
	keepBranch      bool
	skipTest        bool
	allowSnapshots  bool
	push            bool
	fetch           bool
	install         bool
	signTag         bool
	useSnapshot     bool
	digitsOnlyDev   bool
	versionDigit    int

	preGoals  []string
	postGoals []string
}

func (f *optionFlags) registerVersion(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.releaseVersion, "version", "", "version to use instead of the computed default")
	cmd.Flags().IntVar(&f.versionDigit, "version-digit", -1, "which version digit to increment (0-based)")
}

// registerVersionCount is the support-start variant: the digit flag is a
// minimum digit count to pad to, not an index.
func (f *optionFlags) registerVersionCount(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.releaseVersion, "version", "", "version to use instead of the computed default")
	cmd.Flags().IntVar(&f.versionDigit, "version-digit", -1,
		"pad the version to this many digits before incrementing the last one")
}

func (f *optionFlags) registerRemote(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.push, "push", false, "push the result to the remote")
	cmd.Flags().BoolVar(&f.fetch, "fetch", false, "fetch the remote and compare branches before mutating")
}

func (f *optionFlags) registerBuild(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.install, "install", false, "run a clean install after the version change")
}

func (f *optionFlags) registerSnapshot(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.useSnapshot, "use-snapshot", false, "keep the branch on a snapshot-suffixed version")
}

func (f *optionFlags) registerFinish(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.skipTag, "skip-tag", false, "do not tag the release")
	cmd.Flags().BoolVar(&f.keepBranch, "keep-branch", false, "keep the source branch after finishing")
	cmd.Flags().BoolVar(&f.skipTest, "skip-test", false, "skip the clean test cycle")
	cmd.Flags().BoolVar(&f.allowSnapshots, "allow-snapshots", false, "allow snapshot dependencies")
	cmd.Flags().BoolVar(&f.signTag, "sign-tag", false, "GPG-sign the created tag")
	cmd.Flags().StringSliceVar(&f.preGoals, "pre-goals", nil, "build goals to run before the version change")
	cmd.Flags().StringSliceVar(&f.postGoals, "post-goals", nil, "build goals to run after the version change")
}

func (f *optionFlags) toOptions() flow.Options {
	opts := flow.Options{
		SkipTag:              f.skipTag,
		KeepBranch:           f.keepBranch,
		SkipTestProject:      f.skipTest,
		AllowSnapshots:       f.allowSnapshots,
		PushRemote:           f.push,
		GPGSignTag:           f.signTag,
		FetchRemote:          f.fetch,
		InstallProject:       f.install,
		PreGoals:             f.preGoals,
		PostGoals:            f.postGoals,
		ReleaseVersion:       f.releaseVersion,
		DevelopmentVersion:   f.developmentVersion,
		SourceTag:            f.sourceTag,
		UseSnapshot:          f.useSnapshot,
		DigitsOnlyDevVersion: f.digitsOnlyDev,
	}
	if f.versionDigit >= 0 {
		digit := f.versionDigit
		opts.VersionDigitToIncrement = &digit
	}
	return opts
}
