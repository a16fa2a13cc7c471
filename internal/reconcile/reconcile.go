package reconcile

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fbkclanna/monows/internal/version"
)

// Section names a dependency block of a manifest.
type Section string

const (
	SectionDependencies    Section = "dependencies"
	SectionDevDependencies Section = "devDependencies"
)

// Manifest is the dependency view of one package.json.
type Manifest struct {
	ID              string // stable identifier used in errors, e.g. the package directory
	Name            string
	Version         string
	Dependencies    map[string]string
	DevDependencies map[string]string
}

// Options controls the merge policy.
type Options struct {
	// Merge rewrites every dependency to its reconciled version instead of
	// only internal ones.
	Merge bool
	// HoistDependencies applies the dev dependency hoisting threshold to
	// regular dependencies as well.
	HoistDependencies bool
	// InternalScopes lists name prefixes (e.g. "@nmshd/") of workspace
	// packages. Names of the reconciled manifests are always internal.
	InternalScopes []string
}

// Root holds the maps for the workspace root manifest.
type Root struct {
	Dependencies    map[string]string
	DevDependencies map[string]string
}

// Change records one rewritten or hoisted entry.
type Change struct {
	Manifest string  `json:"manifest"`
	Section  Section `json:"section"`
	Name     string  `json:"name"`
	From     string  `json:"from"`
	To       string  `json:"to"`
	Hoisted  bool    `json:"hoisted,omitempty"`
	// Outside is set when the new range no longer admits the floor of the
	// range the manifest declared.
	Outside bool `json:"outside,omitempty"`
}

// Update is the reconciled state of one input manifest.
type Update struct {
	ID              string
	Name            string
	Dependencies    map[string]string
	DevDependencies map[string]string
	Changes         []Change
}

// Result is the outcome of a successful reconciliation.
type Result struct {
	Total           int
	Dependencies    Tally
	DevDependencies Tally
	Root            Root
	Manifests       []Update // same order as the input
}

// Changes returns every change across manifests sorted by manifest id,
// section and name.
func (r *Result) Changes() []Change {
	var out []Change
	for _, u := range r.Manifests {
		out = append(out, u.Changes...)
	}
	sortChanges(out)
	return out
}

func sortChanges(cs []Change) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.Manifest != b.Manifest {
			return a.Manifest < b.Manifest
		}
		if a.Section != b.Section {
			return a.Section < b.Section
		}
		return a.Name < b.Name
	})
}

// Hoisted reports whether name was moved to the root in the given section.
func (r *Result) Hoisted(section Section, name string) bool {
	switch section {
	case SectionDependencies:
		_, ok := r.Root.Dependencies[name]
		return ok
	case SectionDevDependencies:
		_, ok := r.Root.DevDependencies[name]
		return ok
	}
	return false
}

// parsed holds the parsed ranges of one manifest.
type parsed struct {
	deps map[string]version.Version
	dev  map[string]version.Version
}

// Reconcile parses every range of every manifest, folds them into per-name
// tallies and applies the hoisting and merge policy. The first malformed
// range aborts the run with an *Error and no Result.
func Reconcile(manifests []Manifest, opts Options) (*Result, error) {
	all := make([]parsed, len(manifests))
	for i, m := range manifests {
		deps, err := parseSection(m, SectionDependencies, m.Dependencies)
		if err != nil {
			return nil, err
		}
		dev, err := parseSection(m, SectionDevDependencies, m.DevDependencies)
		if err != nil {
			return nil, err
		}
		all[i] = parsed{deps: deps, dev: dev}
	}

	res := &Result{
		Total:           len(manifests),
		Dependencies:    make(Tally),
		DevDependencies: make(Tally),
		Root: Root{
			Dependencies:    map[string]string{},
			DevDependencies: map[string]string{},
		},
		Manifests: make([]Update, len(manifests)),
	}
	for _, p := range all {
		res.Dependencies.Merge(tallyOf(p.deps))
		res.DevDependencies.Merge(tallyOf(p.dev))
	}

	hoistDev := hoistable(res.DevDependencies, res.Total)
	for name := range hoistDev {
		res.Root.DevDependencies[name] = res.DevDependencies[name].Best.String()
	}
	hoistDeps := map[string]bool{}
	if opts.HoistDependencies {
		hoistDeps = hoistable(res.Dependencies, res.Total)
		for name := range hoistDeps {
			res.Root.Dependencies[name] = res.Dependencies[name].Best.String()
		}
	}

	internal := newInternalMatcher(manifests, opts.InternalScopes)
	for i, m := range manifests {
		u := Update{ID: m.ID, Name: m.Name}
		u.Dependencies = rewrite(&u, SectionDependencies, m.Dependencies, res.Dependencies, hoistDeps,
			func(name string) bool { return opts.Merge || internal(name) })
		u.DevDependencies = rewrite(&u, SectionDevDependencies, m.DevDependencies, res.DevDependencies, hoistDev,
			func(string) bool { return true })
		sortChanges(u.Changes)
		res.Manifests[i] = u
	}
	return res, nil
}

func parseSection(m Manifest, section Section, raw map[string]string) (map[string]version.Version, error) {
	out := make(map[string]version.Version, len(raw))
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		v, err := version.Parse(raw[name])
		if err != nil {
			return nil, newError(m, section, name, raw[name], err)
		}
		out[name] = v
	}
	return out, nil
}

// hoistable returns the names that occur in every manifest.
// tallyOf builds the partial tally of one manifest section.
func tallyOf(section map[string]version.Version) Tally {
	t := make(Tally, len(section))
	for name, v := range section {
		t.Add(name, v)
	}
	return t
}

func hoistable(t Tally, total int) map[string]bool {
	out := map[string]bool{}
	if total == 0 {
		return out
	}
	for name, e := range t {
		if e.Count == total {
			out[name] = true
		}
	}
	return out
}

// rewrite produces the new map for one section of one manifest and records
// the changes on u. Hoisted names are dropped; names accepted by align are
// set to the reconciled version; everything else is copied as is.
func rewrite(u *Update, section Section, raw map[string]string, t Tally, hoisted map[string]bool, align func(string) bool) map[string]string {
	if raw == nil {
		return nil
	}
	out := make(map[string]string, len(raw))
	for name, from := range raw {
		to := t[name].Best.String()
		switch {
		case hoisted[name]:
			u.Changes = append(u.Changes, Change{
				Manifest: u.ID, Section: section, Name: name, From: from, To: to,
				Hoisted: true, Outside: outside(from, t[name].Best),
			})
		case align(name):
			out[name] = to
			if to != from {
				u.Changes = append(u.Changes, Change{
					Manifest: u.ID, Section: section, Name: name, From: from, To: to,
					Outside: outside(from, t[name].Best),
				})
			}
		default:
			out[name] = from
		}
	}
	return out
}

// outside reports whether best has left the range the manifest declared.
// Constraints the checker cannot read are not reported.
func outside(declared string, best version.Version) bool {
	ok, err := version.Admits(declared, best)
	return err == nil && !ok
}

func newInternalMatcher(manifests []Manifest, scopes []string) func(string) bool {
	names := make(map[string]bool, len(manifests))
	for _, m := range manifests {
		if m.Name != "" {
			names[m.Name] = true
		}
	}
	return func(dep string) bool {
		if names[dep] {
			return true
		}
		for _, s := range scopes {
			if s != "" && strings.HasPrefix(dep, s) {
				return true
			}
		}
		return false
	}
}

// Error reports a range that could not be parsed, with enough context to
// point the user at the offending manifest entry.
type Error struct {
	Manifest   string
	Section    Section
	Dependency string
	Raw        string
	Err        error
}

func newError(m Manifest, section Section, name, raw string, err error) *Error {
	id := m.ID
	if id == "" {
		id = m.Name
	}
	return &Error{Manifest: id, Section: section, Dependency: name, Raw: raw, Err: err}
}

func (e *Error) Error() string {
	kind := "invalid"
	var pe *version.ParseError
	if errors.As(e.Err, &pe) {
		kind = pe.Kind.String()
	}
	return fmt.Sprintf("reconcile: %s: %s.%s: parse %q: %s", e.Manifest, e.Section, e.Dependency, e.Raw, kind)
}

func (e *Error) Unwrap() error { return e.Err }
