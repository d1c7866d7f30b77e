// Package cli wires the lifecycle orchestrator behind a cobra command
// tree. Each leaf command builds its collaborators from the loaded
// settings, translates flags into lifecycle options, and runs exactly one
// lifecycle.
package cli

import (
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/forgeflow/gitflow/builder"
	"github.com/forgeflow/gitflow/executor"
	"github.com/forgeflow/gitflow/flow"
	"github.com/forgeflow/gitflow/gitrepo"
	"github.com/forgeflow/gitflow/internal/config"
	"github.com/forgeflow/gitflow/internal/logging"
	"github.com/forgeflow/gitflow/prompt"
)

// app carries the state shared by all commands after the root
// PersistentPreRunE has run.
type app struct {
	settings *config.Settings
	log      *zap.Logger

	dir         string
	interactive bool
	verbose     bool
}

// NewRootCmd builds the gitflow command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	var cfgFile string

	root := &cobra.Command{
		Use:   "gitflow",
		Short: "git-flow release automation for Maven projects",
		Long: `gitflow drives git-flow release, hotfix, and support lifecycles for
Maven projects: it derives milestone versions from the POM, cuts and
publishes the corresponding branches and tags, and keeps the project
version in step with the branch it lives on.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(cfgFile)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("debug") {
				settings.Debug, _ = cmd.Flags().GetBool("debug")
			}
			if cmd.Flags().Changed("log-format") {
				settings.LogFormat, _ = cmd.Flags().GetString("log-format")
			}

			log, err := logging.New(logging.Options{
				Debug:  settings.Debug,
				Format: settings.LogFormat,
			})
			if err != nil {
				return err
			}

			a.settings = settings
			a.log = log
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .gitflow.yaml in standard locations)")
	root.PersistentFlags().StringVarP(&a.dir, "dir", "C", ".", "project directory")
	root.PersistentFlags().Bool("debug", false, "enable debug logging")
	root.PersistentFlags().String("log-format", "console", "log format: console or json")
	root.PersistentFlags().BoolVarP(&a.interactive, "interactive", "i", false, "prompt for versions and tags")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "mirror build output to the console")

	root.AddCommand(newReleaseCmd(a))
	root.AddCommand(newSupportCmd(a))
	root.AddCommand(newHotfixCmd(a))

	return root
}

// orchestrator assembles the collaborators for one lifecycle invocation.
func (a *app) orchestrator(cmd *cobra.Command) (*flow.Orchestrator, error) {
	repo, err := gitrepo.Open(cmd.Context(), &gitrepo.Options{
		FS:     osfs.New(a.dir),
		Remote: a.settings.Git.Origin,
		Committer: gitrepo.Signature{
			Name:  a.settings.Git.CommitterName,
			Email: a.settings.Git.CommitterEmail,
		},
		SigningKeyPath:       a.settings.Git.SigningKey,
		SigningKeyPassphrase: a.settings.Git.SigningKeyPassphrase,
	})
	if err != nil {
		return nil, err
	}

	maven := builder.New(executor.New(), builder.Options{
		Command:    a.settings.Maven.Command,
		WorkingDir: a.dir,
		ExtraArgs:  a.settings.Maven.ExtraArgs,
		Verbose:    a.verbose,
	}, a.log)

	var versions flow.VersionSource
	if a.interactive {
		versions = prompt.New()
	}

	return flow.New(a.settings.FlowConfig(), repo, maven, versions, a.log)
}
