package version

import (
	"fmt"
	"strconv"
	"strings"

	mm "github.com/Masterminds/semver/v3"
)

// Floor returns the lowest concrete version selected by v, with absent
// components filled with zero and the appendix kept as a pre-release. It
// returns false for wildcards.
func (v Version) Floor() (string, bool) {
	if v.IsWildcard() {
		return "", false
	}
	parts := make([]string, 0, 3)
	for _, c := range []component{v.major, v.minor, v.patch} {
		parts = append(parts, strconv.FormatUint(uint64(c.n), 10))
	}
	return strings.Join(parts, ".") + v.appendix, true
}

// Admits reports whether the floor of v satisfies the raw npm constraint.
// It is used to spot rewrites that move a manifest outside the range it
// declared, e.g. "~1.2.0" rewritten to "^1.4.0". Wildcards on either side
// admit trivially.
func Admits(constraint string, v Version) (bool, error) {
	floor, ok := v.Floor()
	if !ok || strings.TrimSpace(constraint) == "*" || constraint == "x" {
		return true, nil
	}
	c, err := mm.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("version: parse constraint %q: %w", constraint, err)
	}
	sv, err := mm.NewVersion(floor)
	if err != nil {
		return false, fmt.Errorf("version: parse version %q: %w", floor, err)
	}
	return c.Check(sv), nil
}
