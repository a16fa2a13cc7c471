package version

import (
	"errors"
	"strconv"
	"strings"
)

// Parse parses a range string such as "1.2.3", "^1.2", "~0.4.1-beta.2",
// "1.x", "2.3.x" or "*".
func Parse(s string) (Version, error) {
	if s == "" {
		return Version{}, &ParseError{Kind: KindEmpty, Input: s}
	}

	prefix, appendix := s, ""
	if i := strings.IndexByte(s, '-'); i >= 0 {
		prefix, appendix = s[:i], s[i:]
	}
	if prefix == "" {
		return Version{}, invalid(s, "missing version before appendix")
	}

	switch c := prefix[0]; {
	case c == '~' || c == '^':
		return parseRange(s, prefix[1:], appendix, c)
	case c >= '0' && c <= '9':
		return parseDotted(s, prefix, appendix)
	case c == '*' || c == 'x' || c == 'X':
		// A leading wildcard covers the whole range: "x.x.x" is "*".
		return Wildcard(appendix), nil
	default:
		return Version{}, invalid(s, "unexpected leading character "+strconv.QuoteRune(rune(c)))
	}
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// parseRange handles the body of a caret or tilde range. Every component
// present must be numeric.
func parseRange(input, body, appendix string, op byte) (Version, error) {
	if body == "" {
		return Version{}, invalid(input, "range operator without version")
	}
	parts := strings.Split(body, ".")
	if len(parts) > 3 {
		return Version{}, invalid(input, "more than 3 components")
	}
	v := Version{appendix: appendix, strategy: StrategyMinor}
	if op == '~' {
		v.strategy = StrategyPatch
	}
	for i, p := range parts {
		n, err := parseComponent(input, p)
		if err != nil {
			return Version{}, err
		}
		v.set(i, n)
	}
	return v, nil
}

// parseDotted handles versions starting with a digit, including x-ranges
// like "1.x" and "1.2.x". Anything after an "x" component is ignored.
func parseDotted(input, body, appendix string) (Version, error) {
	parts := strings.Split(body, ".")
	v := Version{appendix: appendix, strategy: StrategyNone}
	for i, p := range parts {
		if i > 0 && p == "x" {
			if i == 1 {
				v.strategy = StrategyMinor
			} else {
				v.strategy = StrategyPatch
			}
			break
		}
		if i == 3 {
			return Version{}, invalid(input, "more than 3 components")
		}
		n, err := parseComponent(input, p)
		if err != nil {
			return Version{}, err
		}
		v.set(i, n)
	}
	return v, nil
}

func (v *Version) set(i int, n uint32) {
	switch i {
	case 0:
		v.major = some(n)
	case 1:
		v.minor = some(n)
	case 2:
		v.patch = some(n)
	}
}

func parseComponent(input, p string) (uint32, error) {
	if p == "" {
		return 0, invalid(input, "empty component")
	}
	n, err := strconv.ParseUint(p, 10, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, &ParseError{Kind: KindComponentOverflow, Input: input, Detail: p, Err: err}
		}
		return 0, &ParseError{Kind: KindInvalidFormat, Input: input, Detail: "non-numeric component " + strconv.Quote(p), Err: err}
	}
	return uint32(n), nil
}
