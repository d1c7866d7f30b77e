package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/forgeflow/gitflow/flow"
)

// HasUncommittedChanges reports whether the working copy is dirty.
func (r *Repo) HasUncommittedChanges(ctx context.Context) (bool, error) {
	status, err := r.worktree.Status()
	if err != nil {
		return false, WrapError(err, "failed to get worktree status")
	}
	return !status.IsClean(), nil
}

// FindLocalBranches returns the local branch names starting with prefix,
// sorted alphabetically.
func (r *Repo) FindLocalBranches(ctx context.Context, prefix string) ([]string, error) {
	iter, err := r.repo.Branches()
	if err != nil {
		return nil, WrapError(err, "failed to list branches")
	}

	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, WrapError(err, "failed to iterate branches")
	}

	sort.Strings(names)
	return names, nil
}

// FindRemoteBranches fetches the remote and returns the remote-qualified
// branch names starting with prefix, sorted alphabetically.
func (r *Repo) FindRemoteBranches(ctx context.Context, remote, prefix string) ([]string, error) {
	if remote == "" {
		remote = r.options.Remote
	}
	if err := r.fetch(ctx); err != nil {
		return nil, err
	}

	refs, err := r.repo.References()
	if err != nil {
		return nil, WrapError(err, "failed to get references")
	}

	qualified := remote + "/" + prefix
	var names []string
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if !ref.Name().IsRemote() || ref.Type() != plumbing.HashReference {
			return nil
		}
		name := ref.Name().Short()
		if strings.HasPrefix(name, qualified) {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, WrapError(err, "failed to iterate references")
	}

	sort.Strings(names)
	return names, nil
}

// BranchExists reports whether a local branch with the given name exists.
func (r *Repo) BranchExists(ctx context.Context, name string) (bool, error) {
	_, err := r.repo.Reference(plumbing.NewBranchReferenceName(name), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return false, nil
		}
		return false, WrapErrorf(err, "failed to look up branch %q", name)
	}
	return true, nil
}

// TagExists reports whether a tag with the given name exists.
func (r *Repo) TagExists(ctx context.Context, name string) (bool, error) {
	_, err := r.repo.Reference(plumbing.NewTagReferenceName(name), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return false, nil
		}
		return false, WrapErrorf(err, "failed to look up tag %q", name)
	}
	return true, nil
}

// Tags returns all tag names, sorted alphabetically.
func (r *Repo) Tags(ctx context.Context) ([]string, error) {
	refs, err := r.repo.References()
	if err != nil {
		return nil, WrapError(err, "failed to get references")
	}

	var tags []string
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if ref.Name().IsTag() {
			tags = append(tags, ref.Name().Short())
		}
		return nil
	})
	if err != nil {
		return nil, WrapError(err, "failed to iterate references")
	}

	sort.Strings(tags)
	return tags, nil
}

// Checkout switches the working copy to the given ref. Branch names are
// checked out attached; tags and commit hashes leave HEAD detached.
func (r *Repo) Checkout(ctx context.Context, ref string) error {
	if ref == "" {
		return WrapError(ErrInvalidRef, "ref cannot be empty")
	}

	branchRef := plumbing.NewBranchReferenceName(ref)
	if _, err := r.repo.Reference(branchRef, true); err == nil {
		if err := r.worktree.Checkout(&git.CheckoutOptions{Branch: branchRef}); err != nil {
			return WrapErrorf(err, "failed to checkout branch %q", ref)
		}
		return nil
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return WrapErrorf(ErrResolveFailed, "failed to resolve %q", ref)
	}
	if err := r.worktree.Checkout(&git.CheckoutOptions{Hash: *hash}); err != nil {
		return WrapErrorf(err, "failed to checkout %q", ref)
	}
	return nil
}

// CreateAndCheckout creates a branch at startPoint and switches to it.
func (r *Repo) CreateAndCheckout(ctx context.Context, name, startPoint string) error {
	if name == "" {
		return WrapError(ErrInvalidRef, "branch name cannot be empty")
	}
	if startPoint == "" {
		return WrapError(ErrInvalidRef, "start point cannot be empty")
	}

	branchRef := plumbing.NewBranchReferenceName(name)
	if _, err := r.repo.Reference(branchRef, true); err == nil {
		return WrapErrorf(ErrBranchExists, "branch %q", name)
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(startPoint))
	if err != nil {
		return WrapErrorf(ErrResolveFailed, "failed to resolve start point %q", startPoint)
	}

	if err := r.repo.Storer.SetReference(plumbing.NewHashReference(branchRef, *hash)); err != nil {
		return WrapErrorf(err, "failed to create branch %q", name)
	}

	if err := r.worktree.Checkout(&git.CheckoutOptions{Branch: branchRef}); err != nil {
		return WrapErrorf(err, "failed to checkout branch %q", name)
	}
	return nil
}

// Commit stages all changes and commits them with the rendered message.
func (r *Repo) Commit(ctx context.Context, messageTemplate string, props map[string]string) error {
	msg, err := flow.RenderMessage(messageTemplate, props)
	if err != nil {
		return err
	}

	if err := r.worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return WrapError(err, "failed to stage changes")
	}

	if _, err := r.worktree.Commit(msg, &git.CommitOptions{Author: r.signature()}); err != nil {
		return WrapError(err, "failed to commit")
	}
	return nil
}

// Tag creates an annotated tag at HEAD with the rendered message, optionally
// signed with the configured OpenPGP key.
func (r *Repo) Tag(ctx context.Context, name, messageTemplate string, sign bool, props map[string]string) error {
	if name == "" {
		return WrapError(ErrInvalidRef, "tag name cannot be empty")
	}

	msg, err := flow.RenderMessage(messageTemplate, props)
	if err != nil {
		return err
	}

	if _, err := r.repo.Reference(plumbing.NewTagReferenceName(name), true); err == nil {
		return WrapErrorf(ErrTagExists, "tag %q", name)
	}

	head, err := r.repo.Head()
	if err != nil {
		return WrapError(err, "failed to get HEAD reference")
	}

	tagOpts := &git.CreateTagOptions{
		Tagger:  r.signature(),
		Message: msg,
	}
	if sign {
		entity, keyErr := r.signingEntity()
		if keyErr != nil {
			return keyErr
		}
		tagOpts.SignKey = entity
	}

	if _, err := r.repo.CreateTag(name, head.Hash(), tagOpts); err != nil {
		return WrapErrorf(err, "failed to create tag %q", name)
	}
	return nil
}

// Push pushes the branch to the configured remote, including all tag refs
// when includeTags is true.
func (r *Repo) Push(ctx context.Context, ref string, includeTags bool) error {
	refSpecs := []config.RefSpec{
		config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", ref, ref)),
	}
	if includeTags {
		refSpecs = append(refSpecs, config.RefSpec("refs/tags/*:refs/tags/*"))
	}

	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: r.options.Remote,
		RefSpecs:   refSpecs,
		Auth:       r.options.Auth,
	})
	if err != nil {
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			return nil
		}
		if errors.Is(err, git.ErrNonFastForwardUpdate) {
			return WrapErrorf(ErrDiverged, "push of %q rejected", ref)
		}
		return WrapErrorf(err, "failed to push %q", ref)
	}
	return nil
}

// FetchAndCompare fetches the remote and fails when the remote tip of the
// branch is not reachable from the local tip. A branch that has no remote
// counterpart compares clean.
func (r *Repo) FetchAndCompare(ctx context.Context, branch string) error {
	if err := r.fetch(ctx); err != nil {
		return err
	}
	return r.compareWithRemote(branch)
}

// FetchAndCreate ensures the branch exists locally, fetching the remote and
// creating the branch from its remote tip when absent.
func (r *Repo) FetchAndCreate(ctx context.Context, branch string) error {
	branchRef := plumbing.NewBranchReferenceName(branch)
	if _, err := r.repo.Reference(branchRef, true); err == nil {
		return nil
	}

	if err := r.fetch(ctx); err != nil {
		return err
	}

	remoteRef, err := r.repo.Reference(plumbing.NewRemoteReferenceName(r.options.Remote, branch), true)
	if err != nil {
		return WrapErrorf(ErrBranchMissing, "branch %q does not exist locally or remotely", branch)
	}

	if err := r.repo.Storer.SetReference(plumbing.NewHashReference(branchRef, remoteRef.Hash())); err != nil {
		return WrapErrorf(err, "failed to create branch %q", branch)
	}
	return nil
}

// DeleteBranch deletes the local branch. The currently checked out branch
// cannot be deleted.
func (r *Repo) DeleteBranch(ctx context.Context, name string) error {
	branchRef := plumbing.NewBranchReferenceName(name)
	if _, err := r.repo.Reference(branchRef, true); err != nil {
		return WrapErrorf(ErrBranchMissing, "branch %q", name)
	}

	head, err := r.repo.Head()
	if err == nil && head.Name() == branchRef {
		return WrapErrorf(ErrInvalidRef, "cannot delete the currently checked out branch %q", name)
	}

	if err := r.repo.Storer.RemoveReference(branchRef); err != nil {
		return WrapErrorf(err, "failed to delete branch %q", name)
	}
	return nil
}

func (r *Repo) fetch(ctx context.Context) error {
	err := r.repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: r.options.Remote,
		Auth:       r.options.Auth,
		Tags:       git.AllTags,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return WrapErrorf(err, "failed to fetch remote %q", r.options.Remote)
	}
	return nil
}

// compareWithRemote checks that the remote tip of branch is an ancestor of
// (or equal to) the local tip.
func (r *Repo) compareWithRemote(branch string) error {
	localRef, err := r.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return WrapErrorf(ErrBranchMissing, "branch %q", branch)
	}

	remoteRef, err := r.repo.Reference(plumbing.NewRemoteReferenceName(r.options.Remote, branch), true)
	if err != nil {
		// Nothing on the remote to diverge from.
		return nil
	}

	if localRef.Hash() == remoteRef.Hash() {
		return nil
	}

	localCommit, err := r.repo.CommitObject(localRef.Hash())
	if err != nil {
		return WrapError(err, "failed to load local commit")
	}
	remoteCommit, err := r.repo.CommitObject(remoteRef.Hash())
	if err != nil {
		return WrapError(err, "failed to load remote commit")
	}

	ancestor, err := remoteCommit.IsAncestor(localCommit)
	if err != nil {
		return WrapError(err, "failed to compare commits")
	}
	if !ancestor {
		return WrapErrorf(ErrDiverged, "branch %q", branch)
	}
	return nil
}
