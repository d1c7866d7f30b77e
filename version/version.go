// Package version parses dotted version identifiers and derives the
// versions applied at git-flow lifecycle milestones: release versions,
// next development snapshots, padded digit sequences, and incremented
// release-candidate annotations. The package is pure computation over
// strings; it performs no I/O and no semantic-precedence comparison.
package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// SnapshotQualifier marks a development-in-progress version.
const SnapshotQualifier = "-SNAPSHOT"

// ErrInvalidVersion is returned when a raw version string has no numeric
// prefix or its numeric prefix is malformed. It can be checked with
// errors.Is().
var ErrInvalidVersion = errors.New("invalid version")

// Info is a parsed version identifier. It is immutable once constructed;
// derivation methods return new values rather than mutating the receiver.
type Info struct {
	digits             []int
	qualifier          string
	annotationRevision string
}

// Parse splits raw into a numeric dotted prefix and a trailing qualifier.
// The prefix ends at the first character that is neither a digit nor a dot;
// everything from that character on (separator included) is the qualifier.
// A trailing run of digits in the qualifier is kept separately as the
// annotation revision so counters like RC1 can be incremented.
func Parse(raw string) (*Info, error) {
	if raw == "" {
		return nil, WrapError(ErrInvalidVersion, "version string is empty")
	}

	cut := len(raw)
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if (c < '0' || c > '9') && c != '.' {
			cut = i
			break
		}
	}

	numeric := raw[:cut]
	qualifier := raw[cut:]

	if numeric == "" {
		return nil, WrapErrorf(ErrInvalidVersion, "no numeric prefix in %q", raw)
	}

	parts := strings.Split(numeric, ".")
	digits := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, WrapErrorf(ErrInvalidVersion, "malformed numeric component in %q", raw)
		}
		digits = append(digits, n)
	}

	return &Info{
		digits:             digits,
		qualifier:          qualifier,
		annotationRevision: trailingDigits(qualifier),
	}, nil
}

// IsValid reports whether raw parses as a version identifier.
func IsValid(raw string) bool {
	_, err := Parse(raw)
	return err == nil
}

// Digits returns a copy of the numeric components.
func (i *Info) Digits() []int {
	out := make([]int, len(i.digits))
	copy(out, i.digits)
	return out
}

// Qualifier returns the raw trailing qualifier, separator included.
func (i *Info) Qualifier() string {
	return i.qualifier
}

// String renders the identifier back to its dotted form. Rendering is
// byte-exact with the parsed input unless padding was applied.
func (i *Info) String() string {
	return joinDigits(i.digits) + i.qualifier
}

// ReleaseVersionString returns the digits joined by dots with any
// qualifier stripped. Trailing zero components are preserved.
func (i *Info) ReleaseVersionString() string {
	return joinDigits(i.digits)
}

// NextVersion returns the incremented identifier. When the qualifier
// carries a numeric annotation revision the revision is incremented
// (1.0-RC1 becomes 1.0-RC2); otherwise the final digit is incremented
// and the qualifier is left unchanged.
func (i *Info) NextVersion() *Info {
	next := i.clone()

	if i.annotationRevision != "" {
		rev, err := strconv.Atoi(i.annotationRevision)
		if err == nil {
			incremented := strconv.Itoa(rev + 1)
			next.qualifier = strings.TrimSuffix(i.qualifier, i.annotationRevision) + incremented
			next.annotationRevision = incremented
			return next
		}
	}

	next.digits[len(next.digits)-1]++
	return next
}

// NextSnapshotVersion increments the final digit, zeroes nothing (there is
// nothing to its right), and appends the snapshot qualifier.
func (i *Info) NextSnapshotVersion() string {
	return i.NextSnapshotVersionAt(len(i.digits) - 1)
}

// NextSnapshotVersionAt increments the digit at the given zero-based index,
// zero-fills every digit to its right, and appends the snapshot qualifier.
// An index beyond the current digit count first extends the sequence with
// zeros to exactly index+1 digits.
func (i *Info) NextSnapshotVersionAt(digitToIncrement int) string {
	if digitToIncrement < 0 {
		digitToIncrement = len(i.digits) - 1
	}

	digits := make([]int, len(i.digits))
	copy(digits, i.digits)

	for len(digits) <= digitToIncrement {
		digits = append(digits, 0)
	}

	digits[digitToIncrement]++
	for j := digitToIncrement + 1; j < len(digits); j++ {
		digits[j] = 0
	}

	return joinDigits(digits) + SnapshotQualifier
}

// DigitsInfo returns a variant of the identifier whose qualifier is reduced
// to the numeric annotation revision alone: 1.0-alpha1 becomes 1.0-1 and
// 1.0-alpha becomes 1.0. Used when a digits-only policy is requested before
// digit arithmetic.
func (i *Info) DigitsInfo() *Info {
	out := i.clone()
	if i.annotationRevision != "" {
		out.qualifier = "-" + i.annotationRevision
	} else {
		out.qualifier = ""
	}
	return out
}

// Padded right-pads the digit sequence with zeros until it holds at least
// minDigitCount components and renders the result with the qualifier
// untouched. Identifiers that are already long enough are returned as-is;
// digits are never truncated.
func (i *Info) Padded(minDigitCount int) string {
	digits := make([]int, len(i.digits))
	copy(digits, i.digits)

	for len(digits) < minDigitCount {
		digits = append(digits, 0)
	}

	return joinDigits(digits) + i.qualifier
}

// IsSnapshot reports whether raw ends with the snapshot qualifier.
func IsSnapshot(raw string) bool {
	return strings.HasSuffix(raw, SnapshotQualifier)
}

// StripSnapshot removes a trailing snapshot qualifier, if present.
func StripSnapshot(raw string) string {
	return strings.TrimSuffix(raw, SnapshotQualifier)
}

// WrapError wraps an error with additional context while preserving the
// ability to check against sentinel errors using errors.Is().
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapErrorf wraps an error with formatted additional context while
// preserving the ability to check against sentinel errors using errors.Is().
func WrapErrorf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

func (i *Info) clone() *Info {
	digits := make([]int, len(i.digits))
	copy(digits, i.digits)
	return &Info{
		digits:             digits,
		qualifier:          i.qualifier,
		annotationRevision: i.annotationRevision,
	}
}

func joinDigits(digits []int) string {
	parts := make([]string, len(digits))
	for i, d := range digits {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ".")
}

func trailingDigits(s string) string {
	start := len(s)
	for start > 0 && s[start-1] >= '0' && s[start-1] <= '9' {
		start--
	}
	return s[start:]
}
