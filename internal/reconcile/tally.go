package reconcile

import (
	"sort"

	"github.com/fbkclanna/monows/internal/version"
)

// Entry is the running state for one dependency name.
type Entry struct {
	Name  string
	Count int
	Best  version.Version
}

// Tally maps a dependency name to its entry.
type Tally map[string]*Entry

// Add records one occurrence of name at v.
func (t Tally) Add(name string, v version.Version) {
	e, ok := t[name]
	if !ok {
		t[name] = &Entry{Name: name, Count: 1, Best: v}
		return
	}
	e.Count++
	e.Best = version.Max(e.Best, v)
}

// Names returns the tallied names in sorted order.
func (t Tally) Names() []string {
	names := make([]string, 0, len(t))
	for n := range t {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Entries returns the entries sorted by name.
func (t Tally) Entries() []*Entry {
	out := make([]*Entry, 0, len(t))
	for _, n := range t.Names() {
		out = append(out, t[n])
	}
	return out
}

// Merge folds o into t. Counts add up and the best versions combine with
// version.Max, so merging partial tallies in any order gives the same
// result as one sequential fold.
func (t Tally) Merge(o Tally) {
	for name, e := range o {
		cur, ok := t[name]
		if !ok {
			t[name] = &Entry{Name: name, Count: e.Count, Best: e.Best}
			continue
		}
		cur.Count += e.Count
		cur.Best = version.Max(cur.Best, e.Best)
	}
}

// Strings returns name → canonical range for every entry.
func (t Tally) Strings() map[string]string {
	m := make(map[string]string, len(t))
	for n, e := range t {
		m[n] = e.Best.String()
	}
	return m
}
