package cli

import (
	"github.com/spf13/cobra"
)

func newReleaseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release",
		Short: "Manage release branches",
	}

	cmd.AddCommand(newReleaseStartCmd(a))
	cmd.AddCommand(newReleaseUpdateCmd(a))
	return cmd
}

func newReleaseStartCmd(a *app) *cobra.Command {
	var flags optionFlags

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Cut a release branch from the development branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.orchestrator(cmd)
			if err != nil {
				return err
			}
			return o.ReleaseStart(cmd.Context(), flags.toOptions())
		},
	}

	flags.registerVersion(cmd)
	flags.registerRemote(cmd)
	flags.registerBuild(cmd)
	flags.registerSnapshot(cmd)
	return cmd
}

func newReleaseUpdateCmd(a *app) *cobra.Command {
	var flags optionFlags

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Finalize the release version, tag it, and bump to the next development iteration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.orchestrator(cmd)
			if err != nil {
				return err
			}
			return o.ReleaseUpdate(cmd.Context(), flags.toOptions())
		},
	}

	flags.registerVersion(cmd)
	flags.registerRemote(cmd)
	flags.registerBuild(cmd)
	flags.registerSnapshot(cmd)
	flags.registerFinish(cmd)
	cmd.Flags().StringVar(&flags.developmentVersion, "development-version", "",
		"next development version to use instead of the computed default")
	cmd.Flags().BoolVar(&flags.digitsOnlyDev, "digits-only-dev-version", false,
		"drop non-numeric qualifiers when deriving the next development version")
	return cmd
}
