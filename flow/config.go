package flow

import (
	"strings"

	"github.com/forgeflow/gitflow/version"
)

// Default branch layout. These match the conventional git-flow namespaces
// and can all be overridden through configuration.
const (
	DefaultOrigin            = "origin"
	DefaultProductionBranch  = "master"
	DefaultDevelopmentBranch = "develop"

	DefaultReleaseBranchPrefix = "release/"
	DefaultSupportBranchPrefix = "support/"
	DefaultHotfixBranchPrefix  = "hotfix/"
)

// Messages holds the commit and tag message templates. Templates are
// text/template bodies rendered over the message properties mapping;
// {{.version}} is the property every lifecycle provides.
type Messages struct {
	ReleaseStart       string
	ReleaseFinish      string
	ReleaseVersionBump string
	TagRelease         string
	SupportStart       string
	SupportFinish      string
	TagSupport         string
	HotfixStart        string
}

// DefaultMessages returns the stock message templates.
func DefaultMessages() Messages {
	return Messages{
		ReleaseStart:       "update versions for release branch {{.version}}",
		ReleaseFinish:      "update versions for release {{.version}}",
		ReleaseVersionBump: "update versions for next development iteration {{.version}}",
		TagRelease:         "tag release {{.version}}",
		SupportStart:       "update versions for support branch {{.version}}",
		SupportFinish:      "update versions for support release {{.version}}",
		TagSupport:         "tag support release {{.version}}",
		HotfixStart:        "update versions for hotfix branch {{.version}}",
	}
}

// Config is the per-repository git-flow layout: remote name, long-lived
// branch pair, lifecycle branch prefixes, the version tag prefix, and the
// message templates.
type Config struct {
	Origin            string
	ProductionBranch  string
	DevelopmentBranch string

	ReleaseBranchPrefix string
	SupportBranchPrefix string
	HotfixBranchPrefix  string

	// VersionTagPrefix is prepended to the version when naming tags, e.g.
	// "v" produces v1.2.0. Empty by default.
	VersionTagPrefix string

	Messages Messages
}

// DefaultConfig returns a Config with the conventional git-flow layout.
func DefaultConfig() Config {
	return Config{
		Origin:              DefaultOrigin,
		ProductionBranch:    DefaultProductionBranch,
		DevelopmentBranch:   DefaultDevelopmentBranch,
		ReleaseBranchPrefix: DefaultReleaseBranchPrefix,
		SupportBranchPrefix: DefaultSupportBranchPrefix,
		HotfixBranchPrefix:  DefaultHotfixBranchPrefix,
		Messages:            DefaultMessages(),
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()

	if c.Origin == "" {
		c.Origin = def.Origin
	}
	if c.ProductionBranch == "" {
		c.ProductionBranch = def.ProductionBranch
	}
	if c.DevelopmentBranch == "" {
		c.DevelopmentBranch = def.DevelopmentBranch
	}
	if c.ReleaseBranchPrefix == "" {
		c.ReleaseBranchPrefix = def.ReleaseBranchPrefix
	}
	if c.SupportBranchPrefix == "" {
		c.SupportBranchPrefix = def.SupportBranchPrefix
	}
	if c.HotfixBranchPrefix == "" {
		c.HotfixBranchPrefix = def.HotfixBranchPrefix
	}

	defMsg := DefaultMessages()
	if c.Messages.ReleaseStart == "" {
		c.Messages.ReleaseStart = defMsg.ReleaseStart
	}
	if c.Messages.ReleaseFinish == "" {
		c.Messages.ReleaseFinish = defMsg.ReleaseFinish
	}
	if c.Messages.ReleaseVersionBump == "" {
		c.Messages.ReleaseVersionBump = defMsg.ReleaseVersionBump
	}
	if c.Messages.TagRelease == "" {
		c.Messages.TagRelease = defMsg.TagRelease
	}
	if c.Messages.SupportStart == "" {
		c.Messages.SupportStart = defMsg.SupportStart
	}
	if c.Messages.SupportFinish == "" {
		c.Messages.SupportFinish = defMsg.SupportFinish
	}
	if c.Messages.TagSupport == "" {
		c.Messages.TagSupport = defMsg.TagSupport
	}
	if c.Messages.HotfixStart == "" {
		c.Messages.HotfixStart = defMsg.HotfixStart
	}
}

// notSameProdDevName reports whether production and development are distinct
// branches. Some repositories run a single-branch flow where both names
// point at the same branch; companion-branch synchronization is skipped
// there.
func (c *Config) notSameProdDevName() bool {
	return c.ProductionBranch != c.DevelopmentBranch
}

// Options is the per-invocation configuration surface shared by all
// lifecycles. A lifecycle reads only the fields that apply to it.
type Options struct {
	// SkipTag omits the tagging step.
	SkipTag bool

	// KeepBranch skips deleting the source branch during cleanup.
	KeepBranch bool

	// SkipTestProject omits the pre-mutation clean test cycle.
	SkipTestProject bool

	// AllowSnapshots disables the snapshot-dependency guard.
	AllowSnapshots bool

	// PushRemote enables the push step.
	PushRemote bool

	// GPGSignTag signs the created tag.
	GPGSignTag bool

	// FetchRemote enables remote branch search, divergence checks, and
	// companion-branch materialization.
	FetchRemote bool

	// InstallProject runs a clean install after the version mutation.
	InstallProject bool

	// PreGoals and PostGoals are arbitrary build goal lists executed before
	// and after the version mutation.
	PreGoals  []string
	PostGoals []string

	// ReleaseVersion overrides the computed milestone version.
	ReleaseVersion string

	// DevelopmentVersion overrides the computed next development version.
	DevelopmentVersion string

	// SourceTag names the tag a support branch starts from. Without it,
	// tag selection is delegated to the VersionSource.
	SourceTag string

	// UseSnapshot keeps the branch on a snapshot-suffixed version.
	UseSnapshot bool

	// DigitsOnlyDevVersion removes non-numeric qualifiers before deriving
	// the next development version.
	DigitsOnlyDevVersion bool

	// VersionDigitToIncrement selects which digit the padding/increment
	// logic targets. Nil selects the lifecycle's default.
	VersionDigitToIncrement *int
}

// Validate detects invalid or contradictory options. It is called before
// the first step of every lifecycle; a failure here is a configuration
// error and nothing has been mutated yet.
func (o *Options) Validate() error {
	for _, goal := range o.PreGoals {
		if strings.TrimSpace(goal) == "" {
			return WrapError(ErrInvalidOptions, "pre goals contain a blank goal")
		}
	}
	for _, goal := range o.PostGoals {
		if strings.TrimSpace(goal) == "" {
			return WrapError(ErrInvalidOptions, "post goals contain a blank goal")
		}
	}

	if o.VersionDigitToIncrement != nil && *o.VersionDigitToIncrement < 0 {
		return WrapError(ErrInvalidOptions, "version digit to increment cannot be negative")
	}

	if o.ReleaseVersion != "" && !version.IsValid(o.ReleaseVersion) {
		return WrapErrorf(ErrInvalidOptions, "release version %q is not a valid version", o.ReleaseVersion)
	}
	if o.DevelopmentVersion != "" && !version.IsValid(o.DevelopmentVersion) {
		return WrapErrorf(ErrInvalidOptions, "development version %q is not a valid version", o.DevelopmentVersion)
	}

	return nil
}

// ValidateVersionValue checks a human-supplied version: it must parse as a
// version identifier and be safe to embed in a branch name. Interactive
// sources call this before accepting input.
func ValidateVersionValue(v string) error {
	if strings.TrimSpace(v) == "" {
		return ErrBlankVersion
	}
	if !version.IsValid(v) {
		return WrapErrorf(version.ErrInvalidVersion, "%q", v)
	}
	if !SafeBranchName(v) {
		return WrapErrorf(ErrInvalidOptions, "%q is not safe to use in a branch name", v)
	}
	return nil
}

// SafeBranchName reports whether name satisfies git's reference naming
// rules closely enough to be used as a branch name component. The check is
// static; it does not shell out to git check-ref-format.
func SafeBranchName(name string) bool {
	if name == "" || name == "@" {
		return false
	}
	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") ||
		strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		return false
	}
	if strings.HasSuffix(name, ".lock") {
		return false
	}
	if strings.Contains(name, "..") || strings.Contains(name, "//") ||
		strings.Contains(name, "@{") {
		return false
	}

	for _, r := range name {
		switch {
		case r <= 0x20 || r == 0x7f:
			return false
		case strings.ContainsRune("~^:?*[\\", r):
			return false
		}
	}

	return true
}
