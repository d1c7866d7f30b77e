package flow

import "context"

// VCS is the version-control collaborator. Every operation is blocking; the
// orchestrator suspends until the call returns. Implementations must keep
// durable state (refs, worktree) consistent on their own - the orchestrator
// never compensates for partially applied steps.
type VCS interface {
	// HasUncommittedChanges reports whether the working copy is dirty.
	HasUncommittedChanges(ctx context.Context) (bool, error)

	// FindLocalBranches returns the local branch names starting with
	// prefix, sorted alphabetically.
	FindLocalBranches(ctx context.Context, prefix string) ([]string, error)

	// FindRemoteBranches fetches the remote and returns the remote branch
	// names (remote-name qualified, e.g. "origin/release/1.2.0") starting
	// with prefix, sorted alphabetically.
	FindRemoteBranches(ctx context.Context, remote, prefix string) ([]string, error)

	// BranchExists reports whether a local branch with the given name exists.
	BranchExists(ctx context.Context, name string) (bool, error)

	// TagExists reports whether a tag with the given name exists.
	TagExists(ctx context.Context, name string) (bool, error)

	// Tags returns all tag names, sorted alphabetically.
	Tags(ctx context.Context) ([]string, error)

	// Checkout switches the working copy to the given ref.
	Checkout(ctx context.Context, ref string) error

	// CreateAndCheckout creates a branch at startPoint and switches to it.
	CreateAndCheckout(ctx context.Context, name, startPoint string) error

	// Commit stages all changes and commits them with the rendered message
	// template. Properties are substituted into the template.
	Commit(ctx context.Context, messageTemplate string, props map[string]string) error

	// Tag creates an annotated tag, optionally GPG-signed, with the
	// rendered message template.
	Tag(ctx context.Context, name, messageTemplate string, sign bool, props map[string]string) error

	// Push pushes the branch ref to the configured remote, including the
	// tag refs when includeTags is true.
	Push(ctx context.Context, ref string, includeTags bool) error

	// FetchAndCompare fetches the remote and fails when the local and
	// remote tips of the branch diverge.
	FetchAndCompare(ctx context.Context, branch string) error

	// FetchAndCreate ensures the branch exists locally, fetching the remote
	// and creating the branch from its remote tip when absent.
	FetchAndCreate(ctx context.Context, branch string) error

	// DeleteBranch deletes the local branch.
	DeleteBranch(ctx context.Context, name string) error
}

// Builder is the build-tool collaborator. It owns the version-declaration
// file; the orchestrator reads and rewrites project versions exclusively
// through it.
type Builder interface {
	// CurrentVersion returns the project version as declared in the build
	// file.
	CurrentVersion(ctx context.Context) (string, error)

	// SetVersion rewrites the project version in the build file.
	SetVersion(ctx context.Context, version string) error

	// RunGoals executes arbitrary user-specified build goals.
	RunGoals(ctx context.Context, goals []string) error

	// CleanTest runs a clean test cycle.
	CleanTest(ctx context.Context) error

	// CleanInstall runs a clean install cycle.
	CleanInstall(ctx context.Context) error

	// HasSnapshotDependency reports whether any dependency resolves to a
	// snapshot version.
	HasSnapshotDependency(ctx context.Context) (bool, error)
}

// VersionSource supplies milestone versions and tag selections. It is
// chosen once at workflow start: NoPrompt for non-interactive runs,
// prompt.Interactive for human input. Explicit option overrides bypass the
// source entirely.
type VersionSource interface {
	// ReleaseVersion returns the version to apply at the current milestone,
	// given the computed default. Implementations must only return values
	// accepted by ValidateVersionValue.
	ReleaseVersion(ctx context.Context, defaultVersion string) (string, error)

	// ChooseTag selects the tag to start from among the existing tags.
	ChooseTag(ctx context.Context, tags []string) (string, error)
}

// NoPrompt is the non-interactive VersionSource: computed defaults are
// accepted as-is and tag selection requires an explicit option.
type NoPrompt struct{}

// ReleaseVersion accepts the computed default.
func (NoPrompt) ReleaseVersion(_ context.Context, defaultVersion string) (string, error) {
	return defaultVersion, nil
}

// ChooseTag fails: without a prompt there is no way to pick a tag.
func (NoPrompt) ChooseTag(_ context.Context, _ []string) (string, error) {
	return "", WrapError(ErrNoTag, "no source tag configured and prompting is disabled")
}
