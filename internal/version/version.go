package version

import (
	"strconv"
	"strings"
)

// Strategy describes how loose a range is. The zero value is an exact version.
type Strategy uint8

const (
	StrategyNone  Strategy = iota // exact: 1.2.3
	StrategyPatch                 // tilde: ~1.2.3, 1.2.x
	StrategyMinor                 // caret: ^1.2.3, 1.x
	StrategyMajor                 // wildcard: *, x
)

func (s Strategy) String() string {
	switch s {
	case StrategyNone:
		return "none"
	case StrategyPatch:
		return "patch"
	case StrategyMinor:
		return "minor"
	case StrategyMajor:
		return "major"
	default:
		return "strategy(" + strconv.Itoa(int(s)) + ")"
	}
}

// component is an optional numeric part of a version.
type component struct {
	n  uint32
	ok bool
}

func some(n uint32) component { return component{n: n, ok: true} }

// cmpComponent orders components with absent before present.
func cmpComponent(a, b component) int {
	switch {
	case !a.ok && !b.ok:
		return 0
	case !a.ok:
		return -1
	case !b.ok:
		return 1
	case a.n < b.n:
		return -1
	case a.n > b.n:
		return 1
	}
	return 0
}

// Version is one parsed range expression. It is comparable with ==, which
// is structural equality over every field including the appendix.
type Version struct {
	major    component
	minor    component
	patch    component
	appendix string
	strategy Strategy
}

// New builds a non-wildcard version from up to three numeric parts.
// It panics when the arguments violate the model, which only happens with
// programmer error; use Parse for untrusted input.
func New(strategy Strategy, appendix string, parts ...uint32) Version {
	if strategy == StrategyMajor {
		panic("version: New called with StrategyMajor; use Wildcard")
	}
	if len(parts) == 0 || len(parts) > 3 {
		panic("version: New needs 1 to 3 numeric parts")
	}
	if appendix != "" && !strings.HasPrefix(appendix, "-") {
		panic("version: appendix must start with '-'")
	}
	v := Version{appendix: appendix, strategy: strategy}
	v.major = some(parts[0])
	if len(parts) > 1 {
		v.minor = some(parts[1])
	}
	if len(parts) > 2 {
		v.patch = some(parts[2])
	}
	return v
}

// Wildcard returns the "*" range with an optional appendix.
func Wildcard(appendix string) Version {
	return Version{appendix: appendix, strategy: StrategyMajor}
}

// Major returns the major component and whether it is present.
func (v Version) Major() (uint32, bool) { return v.major.n, v.major.ok }

// Minor returns the minor component and whether it is present.
func (v Version) Minor() (uint32, bool) { return v.minor.n, v.minor.ok }

// Patch returns the patch component and whether it is present.
func (v Version) Patch() (uint32, bool) { return v.patch.n, v.patch.ok }

// Appendix returns the verbatim suffix starting at the first '-', or "".
func (v Version) Appendix() string { return v.appendix }

// Strategy returns how loose the range is.
func (v Version) Strategy() Strategy { return v.strategy }

// IsWildcard reports whether v matches any version.
func (v Version) IsWildcard() bool { return v.strategy == StrategyMajor }

// Equal reports structural equality.
func (v Version) Equal(o Version) bool { return v == o }

// String renders the canonical range string. Parse(v.String()) == v for any
// v produced by Parse; x-ranges come back in caret or tilde form.
func (v Version) String() string {
	if v.strategy == StrategyMajor {
		return "*" + v.appendix
	}
	var b strings.Builder
	switch v.strategy {
	case StrategyPatch:
		b.WriteByte('~')
	case StrategyMinor:
		b.WriteByte('^')
	}
	for i, c := range []component{v.major, v.minor, v.patch} {
		if !c.ok {
			break
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.FormatUint(uint64(c.n), 10))
	}
	b.WriteString(v.appendix)
	return b.String()
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
