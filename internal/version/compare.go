package version

// Compare returns -1, 0 or +1 as a is less than, equal to, or greater than b.
//
// Wildcards rank above everything else and are equal to one another.
// Otherwise majors decide; within a major the strategy and minor are weighed
// together so that a looser range at a lower minor still outranks a narrower
// one (^1.1.0 > ~1.5.0 > 1.9.9), and patch only breaks ties. The appendix is
// ignored.
func Compare(a, b Version) int {
	if a == b {
		return 0
	}
	aw, bw := a.IsWildcard(), b.IsWildcard()
	switch {
	case aw && bw:
		return 0
	case aw:
		return 1
	case bw:
		return -1
	}
	if c := cmpComponent(a.major, b.major); c != 0 {
		return c
	}

	minor := cmpComponent(a.minor, b.minor)
	strategy := cmpStrategy(a.strategy, b.strategy)
	switch {
	case minor == 0 && strategy == 0:
		return cmpComponent(a.patch, b.patch)
	case strategy < 0:
		return -1
	case strategy == 0 && minor < 0:
		return -1
	default:
		return 1
	}
}

func cmpStrategy(a, b Strategy) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Less reports whether v orders before o.
func (v Version) Less(o Version) bool { return Compare(v, o) < 0 }

// Greater reports whether v orders after o.
func (v Version) Greater(o Version) bool { return Compare(v, o) > 0 }

// Max returns the greater of a and b. When the two order equally but differ
// structurally (different appendix, or two distinct wildcards) the one with the
// lexicographically greater String wins, so a fold gives the same answer in
// any input order.
func Max(a, b Version) Version {
	switch c := Compare(a, b); {
	case c > 0:
		return a
	case c < 0:
		return b
	}
	if b.String() > a.String() {
		return b
	}
	return a
}
