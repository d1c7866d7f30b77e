// Package config loads CLI settings from a config file, environment
// variables, and defaults. A project-local .gitflow.yaml takes precedence
// over the user's XDG config directory; environment variables prefixed
// GITFLOW_ override both.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/forgeflow/gitflow/flow"
)

const (
	// AppName is used for config files and directories.
	AppName = "gitflow"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "GITFLOW"
)

// Settings is the file- and environment-backed configuration surface.
type Settings struct {
	Debug     bool   `mapstructure:"debug"`
	LogFormat string `mapstructure:"log_format"`

	Git struct {
		Origin            string `mapstructure:"origin"`
		ProductionBranch  string `mapstructure:"production_branch"`
		DevelopmentBranch string `mapstructure:"development_branch"`

		ReleaseBranchPrefix string `mapstructure:"release_branch_prefix"`
		SupportBranchPrefix string `mapstructure:"support_branch_prefix"`
		HotfixBranchPrefix  string `mapstructure:"hotfix_branch_prefix"`

		VersionTagPrefix string `mapstructure:"version_tag_prefix"`

		CommitterName  string `mapstructure:"committer_name"`
		CommitterEmail string `mapstructure:"committer_email"`

		SigningKey           string `mapstructure:"signing_key"`
		SigningKeyPassphrase string `mapstructure:"signing_key_passphrase"`
	} `mapstructure:"git"`

	Maven struct {
		Command   string   `mapstructure:"command"`
		ExtraArgs []string `mapstructure:"extra_args"`
	} `mapstructure:"maven"`

	Messages struct {
		ReleaseStart       string `mapstructure:"release_start"`
		ReleaseFinish      string `mapstructure:"release_finish"`
		ReleaseVersionBump string `mapstructure:"release_version_bump"`
		TagRelease         string `mapstructure:"tag_release"`
		SupportStart       string `mapstructure:"support_start"`
		SupportFinish      string `mapstructure:"support_finish"`
		TagSupport         string `mapstructure:"tag_support"`
		HotfixStart        string `mapstructure:"hotfix_start"`
	} `mapstructure:"messages"`
}

// Load reads settings from cfgFile when given, otherwise from .gitflow.yaml
// in the working directory or the user's config directory. A missing file
// is not an error; defaults and environment variables still apply.
func Load(cfgFile string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("." + AppName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, AppName))
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return &settings, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("log_format", "console")

	def := flow.DefaultConfig()
	v.SetDefault("git.origin", def.Origin)
	v.SetDefault("git.production_branch", def.ProductionBranch)
	v.SetDefault("git.development_branch", def.DevelopmentBranch)
	v.SetDefault("git.release_branch_prefix", def.ReleaseBranchPrefix)
	v.SetDefault("git.support_branch_prefix", def.SupportBranchPrefix)
	v.SetDefault("git.hotfix_branch_prefix", def.HotfixBranchPrefix)
	v.SetDefault("git.version_tag_prefix", def.VersionTagPrefix)
	v.SetDefault("git.committer_name", AppName)
	v.SetDefault("git.committer_email", AppName+"@localhost")

	v.SetDefault("maven.command", "mvn")

	msg := flow.DefaultMessages()
	v.SetDefault("messages.release_start", msg.ReleaseStart)
	v.SetDefault("messages.release_finish", msg.ReleaseFinish)
	v.SetDefault("messages.release_version_bump", msg.ReleaseVersionBump)
	v.SetDefault("messages.tag_release", msg.TagRelease)
	v.SetDefault("messages.support_start", msg.SupportStart)
	v.SetDefault("messages.support_finish", msg.SupportFinish)
	v.SetDefault("messages.tag_support", msg.TagSupport)
	v.SetDefault("messages.hotfix_start", msg.HotfixStart)
}

// FlowConfig maps the settings onto the lifecycle configuration.
func (s *Settings) FlowConfig() flow.Config {
	return flow.Config{
		Origin:              s.Git.Origin,
		ProductionBranch:    s.Git.ProductionBranch,
		DevelopmentBranch:   s.Git.DevelopmentBranch,
		ReleaseBranchPrefix: s.Git.ReleaseBranchPrefix,
		SupportBranchPrefix: s.Git.SupportBranchPrefix,
		HotfixBranchPrefix:  s.Git.HotfixBranchPrefix,
		VersionTagPrefix:    s.Git.VersionTagPrefix,
		Messages: flow.Messages{
			ReleaseStart:       s.Messages.ReleaseStart,
			ReleaseFinish:      s.Messages.ReleaseFinish,
			ReleaseVersionBump: s.Messages.ReleaseVersionBump,
			TagRelease:         s.Messages.TagRelease,
			SupportStart:       s.Messages.SupportStart,
			SupportFinish:      s.Messages.SupportFinish,
			TagSupport:         s.Messages.TagSupport,
			HotfixStart:        s.Messages.HotfixStart,
		},
	}
}
