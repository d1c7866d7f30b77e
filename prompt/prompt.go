// Package prompt implements the interactive version source. It asks for
// milestone versions and source tags through terminal forms; validation
// mirrors what the lifecycles accept, so a value entered here never fails
// later in the run.
package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/forgeflow/gitflow/flow"
)

// Interactive asks the user through terminal forms. It implements the
// flow.VersionSource interface.
type Interactive struct{}

// New returns an Interactive version source.
func New() *Interactive {
	return &Interactive{}
}

// ReleaseVersion prompts for the version to apply at the current milestone.
// An empty answer accepts the computed default; anything else must be a
// valid, branch-safe version.
func (i *Interactive) ReleaseVersion(ctx context.Context, defaultVersion string) (string, error) {
	var value string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("What is the release version? [%s]", defaultVersion)).
				Value(&value).
				Validate(func(v string) error {
					if strings.TrimSpace(v) == "" {
						return nil
					}
					return flow.ValidateVersionValue(v)
				}),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return "", fmt.Errorf("version prompt failed: %w", err)
	}

	if strings.TrimSpace(value) == "" {
		return defaultVersion, nil
	}
	return value, nil
}

// ChooseTag prompts for the tag to start from among the existing tags.
func (i *Interactive) ChooseTag(ctx context.Context, tags []string) (string, error) {
	if len(tags) == 0 {
		return "", flow.WrapError(flow.ErrNoTag, "there are no tags to choose from")
	}

	opts := make([]huh.Option[string], len(tags))
	for idx, tag := range tags {
		opts[idx] = huh.NewOption(tag, tag)
	}

	var value string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which tag should the support branch start from?").
				Options(opts...).
				Value(&value),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return "", fmt.Errorf("tag prompt failed: %w", err)
	}
	return value, nil
}
