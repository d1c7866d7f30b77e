// Package gitrepo implements the version-control collaborator over go-git.
// It operates exclusively through an injected billy filesystem, so the same
// code serves an on-disk working copy and an in-memory test repository.
package gitrepo

import (
	"context"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// DefaultRemoteName is the remote used when Options leaves Remote unset.
const DefaultRemoteName = "origin"

// Signature identifies the author of commits and tags created by the
// repository.
type Signature struct {
	Name  string
	Email string
}

// Options configures repository discovery and the identity used for writes.
type Options struct {
	// FS is the REQUIRED filesystem root holding the working copy. All
	// repository state lives within this filesystem.
	FS billy.Filesystem

	// Workdir is the path within FS for the worktree root. Defaults to ".".
	Workdir string

	// Remote is the remote name used for fetch and push. Defaults to
	// DefaultRemoteName.
	Remote string

	// Committer signs commits and annotated tags.
	Committer Signature

	// Auth is an optional authentication method for network operations.
	Auth transport.AuthMethod

	// SigningKeyPath points at an armored OpenPGP private key used for
	// signed tags. Only consulted when a signed tag is requested.
	SigningKeyPath string

	// SigningKeyPassphrase decrypts the signing key when it is protected.
	SigningKeyPassphrase string
}

// Validate checks that the Options are properly configured.
func (o *Options) Validate() error {
	if o.FS == nil {
		return WrapError(ErrInvalidRef, "FS is required")
	}
	if o.Committer.Name == "" || o.Committer.Email == "" {
		return WrapError(ErrInvalidRef, "committer name and email are required")
	}
	return nil
}

func (o *Options) applyDefaults() {
	if o.Workdir == "" {
		o.Workdir = "."
	}
	if o.Remote == "" {
		o.Remote = DefaultRemoteName
	}
}

// Repo is a working copy opened for lifecycle execution. It implements the
// flow.VCS interface.
type Repo struct {
	repo     *git.Repository
	worktree *git.Worktree
	options  Options
}

// Open opens an existing non-bare repository at Workdir within FS.
func Open(ctx context.Context, opts *Options) (*Repo, error) {
	if err := opts.Validate(); err != nil {
		return nil, WrapError(err, "invalid options")
	}
	opts.applyDefaults()

	storage, worktreeFS, err := storageFor(opts)
	if err != nil {
		return nil, err
	}

	repo, err := git.Open(storage, worktreeFS)
	if err != nil {
		return nil, WrapError(err, "failed to open repository")
	}

	return wrap(repo, opts)
}

// Init creates a new non-bare repository at Workdir within FS. It exists
// mainly for building test fixtures; production use opens a repository the
// build already lives in.
func Init(ctx context.Context, opts *Options) (*Repo, error) {
	if err := opts.Validate(); err != nil {
		return nil, WrapError(err, "invalid options")
	}
	opts.applyDefaults()

	storage, worktreeFS, err := storageFor(opts)
	if err != nil {
		return nil, err
	}

	repo, err := git.Init(storage, worktreeFS)
	if err != nil {
		return nil, WrapError(err, "failed to initialize repository")
	}

	return wrap(repo, opts)
}

func storageFor(opts *Options) (*filesystem.Storage, billy.Filesystem, error) {
	scopedFS, err := opts.FS.Chroot(opts.Workdir)
	if err != nil {
		return nil, nil, WrapErrorf(err, "failed to chroot to workdir %q", opts.Workdir)
	}

	dotGitFS, err := scopedFS.Chroot(git.GitDirName)
	if err != nil {
		return nil, nil, WrapError(err, "failed to access .git directory")
	}

	storage := filesystem.NewStorage(dotGitFS, cache.NewObjectLRUDefault())
	return storage, scopedFS, nil
}

func wrap(repo *git.Repository, opts *Options) (*Repo, error) {
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, WrapError(err, "failed to get worktree")
	}

	return &Repo{
		repo:     repo,
		worktree: worktree,
		options:  *opts,
	}, nil
}

func (r *Repo) signature() *object.Signature {
	return &object.Signature{
		Name:  r.options.Committer.Name,
		Email: r.options.Committer.Email,
		When:  time.Now(),
	}
}
