package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fbkclanna/monows/internal/version"
)

func TestTally_Add(t *testing.T) {
	tl := Tally{}
	tl.Add("typescript", version.MustParse("^5.0.0"))
	tl.Add("typescript", version.MustParse("^5.1.2"))
	tl.Add("typescript", version.MustParse("~5.0.3"))
	tl.Add("mocha", version.MustParse("10.2.0"))

	assert.Equal(t, []string{"mocha", "typescript"}, tl.Names())
	assert.Equal(t, 3, tl["typescript"].Count)
	assert.Equal(t, "^5.1.2", tl["typescript"].Best.String())
	assert.Equal(t, map[string]string{"mocha": "10.2.0", "typescript": "^5.1.2"}, tl.Strings())
}

func TestTally_Merge(t *testing.T) {
	vs := []string{"^1.0.0", "1.5.0", "~1.9.0", "*", "^1.2.0"}

	seq := Tally{}
	for _, s := range vs {
		seq.Add("dep", version.MustParse(s))
	}

	left, right := Tally{}, Tally{}
	for i, s := range vs {
		if i%2 == 0 {
			left.Add("dep", version.MustParse(s))
		} else {
			right.Add("dep", version.MustParse(s))
		}
	}
	right.Merge(left)

	assert.Equal(t, seq["dep"].Count, right["dep"].Count)
	assert.Equal(t, seq["dep"].Best, right["dep"].Best)
	assert.Equal(t, "*", right["dep"].Best.String())
}

func TestTally_Entries(t *testing.T) {
	tl := Tally{}
	tl.Add("b", version.MustParse("1.0.0"))
	tl.Add("a", version.MustParse("2.0.0"))
	es := tl.Entries()
	if assert.Len(t, es, 2) {
		assert.Equal(t, "a", es[0].Name)
		assert.Equal(t, "b", es[1].Name)
	}
}
