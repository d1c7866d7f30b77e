package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		wantErr       bool
		wantDigits    []int
		wantQualifier string
	}{
		{
			name:       "plain three digits",
			raw:        "1.2.3",
			wantDigits: []int{1, 2, 3},
		},
		{
			name:          "snapshot qualifier",
			raw:           "1.2.3-SNAPSHOT",
			wantDigits:    []int{1, 2, 3},
			wantQualifier: "-SNAPSHOT",
		},
		{
			name:          "release candidate qualifier",
			raw:           "1.0.0-RC1",
			wantDigits:    []int{1, 0, 0},
			wantQualifier: "-RC1",
		},
		{
			name:          "alpha qualifier",
			raw:           "1.0-alpha",
			wantDigits:    []int{1, 0},
			wantQualifier: "-alpha",
		},
		{
			name:       "trailing zeros preserved",
			raw:        "1.0.0",
			wantDigits: []int{1, 0, 0},
		},
		{
			name:    "empty string",
			raw:     "",
			wantErr: true,
		},
		{
			name:    "qualifier only",
			raw:     "abc",
			wantErr: true,
		},
		{
			name:    "empty component",
			raw:     "1..2",
			wantErr: true,
		},
		{
			name:    "trailing dot",
			raw:     "1.2.",
			wantErr: true,
		},
		{
			name:    "leading dot",
			raw:     ".1.2",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := Parse(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidVersion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDigits, info.Digits())
			assert.Equal(t, tt.wantQualifier, info.Qualifier())
		})
	}
}

func TestParseIsIdempotentUpToRendering(t *testing.T) {
	for _, raw := range []string{"1", "1.2", "1.2.3", "1.0.0", "2.10.4-SNAPSHOT", "1.0-RC3"} {
		first, err := Parse(raw)
		require.NoError(t, err)

		second, err := Parse(first.String())
		require.NoError(t, err)

		assert.Equal(t, first, second, "re-parsing the rendering of %q must yield the same identifier", raw)
	}
}

func TestIsValid(t *testing.T) {
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("abc"))
	assert.True(t, IsValid("1.0.0"))
	assert.True(t, IsValid("1.0.0-RC1"))
}

func TestReleaseVersionString(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"1.2.3-SNAPSHOT", "1.2.3"},
		{"1.2.3", "1.2.3"},
		{"1.0.0-RC1", "1.0.0"},
		{"1.0", "1.0"},
	}

	for _, tt := range tests {
		info, err := Parse(tt.raw)
		require.NoError(t, err)
		assert.Equal(t, tt.want, info.ReleaseVersionString())
	}
}

func TestNextSnapshotVersion(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		digit int // -1 selects the default (last) digit
		want  string
	}{
		{
			name:  "default increments last digit",
			raw:   "1.2.3",
			digit: -1,
			want:  "1.2.4-SNAPSHOT",
		},
		{
			name:  "qualifier replaced by snapshot",
			raw:   "1.2.3-SNAPSHOT",
			digit: -1,
			want:  "1.2.4-SNAPSHOT",
		},
		{
			name:  "middle digit zero-fills the rest",
			raw:   "1.2.3",
			digit: 1,
			want:  "1.3.0-SNAPSHOT",
		},
		{
			name:  "first digit zero-fills the rest",
			raw:   "2.5.9",
			digit: 0,
			want:  "3.0.0-SNAPSHOT",
		},
		{
			// Index beyond the current length pads to exactly index+1
			// digits before incrementing.
			name:  "padding beyond current length",
			raw:   "1.2",
			digit: 2,
			want:  "1.2.1-SNAPSHOT",
		},
		{
			name:  "padding far beyond current length",
			raw:   "1",
			digit: 3,
			want:  "1.0.0.1-SNAPSHOT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := Parse(tt.raw)
			require.NoError(t, err)

			got := info.NextSnapshotVersionAt(tt.digit)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextSnapshotVersionDefault(t *testing.T) {
	info, err := Parse("1.2.3")
	require.NoError(t, err)
	assert.Equal(t, "1.2.4-SNAPSHOT", info.NextSnapshotVersion())
}

func TestPadded(t *testing.T) {
	tests := []struct {
		raw  string
		min  int
		want string
	}{
		{"1.0", 3, "1.0.0"},
		{"1.0.0.0", 2, "1.0.0.0"},
		{"1", 1, "1"},
		{"1.2-SNAPSHOT", 4, "1.2.0.0-SNAPSHOT"},
	}

	for _, tt := range tests {
		info, err := Parse(tt.raw)
		require.NoError(t, err)
		assert.Equal(t, tt.want, info.Padded(tt.min))
	}
}

func TestNextVersion(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "increments final digit",
			raw:  "1.2.3",
			want: "1.2.4",
		},
		{
			name: "qualifier without revision unchanged",
			raw:  "1.2.3-SNAPSHOT",
			want: "1.2.4-SNAPSHOT",
		},
		{
			name: "release candidate counter incremented",
			raw:  "1.0-RC1",
			want: "1.0-RC2",
		},
		{
			name: "multi-digit counter incremented",
			raw:  "1.0-RC19",
			want: "1.0-RC20",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, info.NextVersion().String())
		})
	}
}

func TestDigitsInfo(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"1.0-alpha1", "1.0-1"},
		{"1.0-alpha", "1.0"},
		{"1.0-SNAPSHOT", "1.0"},
		{"1.0", "1.0"},
	}

	for _, tt := range tests {
		info, err := Parse(tt.raw)
		require.NoError(t, err)
		assert.Equal(t, tt.want, info.DigitsInfo().String())
	}
}

func TestDerivationsDoNotMutateReceiver(t *testing.T) {
	info, err := Parse("1.2.3-RC1")
	require.NoError(t, err)

	_ = info.NextVersion()
	_ = info.NextSnapshotVersionAt(5)
	_ = info.DigitsInfo()
	_ = info.Padded(6)

	assert.Equal(t, "1.2.3-RC1", info.String())
}

func TestSnapshotHelpers(t *testing.T) {
	assert.True(t, IsSnapshot("1.0-SNAPSHOT"))
	assert.False(t, IsSnapshot("1.0"))
	assert.Equal(t, "1.0", StripSnapshot("1.0-SNAPSHOT"))
	assert.Equal(t, "1.0-RC1", StripSnapshot("1.0-RC1"))
}
