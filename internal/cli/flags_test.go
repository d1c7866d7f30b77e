package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionDigitHelpMatchesLifecycle(t *testing.T) {
	a := &app{}

	// support start pads to a digit count; the other lifecycles take a
	// digit index.
	start := newSupportStartCmd(a)
	flag := start.Flags().Lookup("version-digit")
	require.NotNil(t, flag)
	assert.Contains(t, flag.Usage, "pad the version")

	update := newReleaseUpdateCmd(a)
	flag = update.Flags().Lookup("version-digit")
	require.NotNil(t, flag)
	assert.Contains(t, flag.Usage, "0-based")
}
