package cli

import (
	"github.com/spf13/cobra"
)

func newHotfixCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hotfix",
		Short: "Manage hotfix branches",
	}

	cmd.AddCommand(newHotfixStartCmd(a))
	return cmd
}

func newHotfixStartCmd(a *app) *cobra.Command {
	var flags optionFlags

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Cut a hotfix branch from the production branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.orchestrator(cmd)
			if err != nil {
				return err
			}
			return o.HotfixStart(cmd.Context(), flags.toOptions())
		},
	}

	flags.registerVersion(cmd)
	flags.registerRemote(cmd)
	flags.registerBuild(cmd)
	flags.registerSnapshot(cmd)
	return cmd
}
