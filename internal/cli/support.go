package cli

import (
	"github.com/spf13/cobra"
)

func newSupportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "support",
		Short: "Manage long-lived support branches",
	}

	cmd.AddCommand(newSupportStartCmd(a))
	cmd.AddCommand(newSupportFinishCmd(a))
	return cmd
}

func newSupportStartCmd(a *app) *cobra.Command {
	var flags optionFlags

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Cut a support branch from an existing tag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.orchestrator(cmd)
			if err != nil {
				return err
			}
			return o.SupportStart(cmd.Context(), flags.toOptions())
		},
	}

	flags.registerVersionCount(cmd)
	flags.registerRemote(cmd)
	flags.registerBuild(cmd)
	flags.registerSnapshot(cmd)
	cmd.Flags().StringVar(&flags.sourceTag, "tag", "", "tag the support branch starts from")
	return cmd
}

func newSupportFinishCmd(a *app) *cobra.Command {
	var flags optionFlags

	cmd := &cobra.Command{
		Use:   "finish",
		Short: "Publish the support branch tip as a support release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := a.orchestrator(cmd)
			if err != nil {
				return err
			}
			return o.SupportFinish(cmd.Context(), flags.toOptions())
		},
	}

	flags.registerRemote(cmd)
	flags.registerBuild(cmd)
	flags.registerSnapshot(cmd)
	flags.registerFinish(cmd)
	return cmd
}
