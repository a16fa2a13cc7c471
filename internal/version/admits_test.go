package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloor(t *testing.T) {
	tests := map[string]string{
		"^1":           "1.0.0",
		"~1.2":         "1.2.0",
		"1.2.3":        "1.2.3",
		"^1.4.5-lts.1": "1.4.5-lts.1",
	}
	for in, want := range tests {
		got, ok := MustParse(in).Floor()
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := MustParse("*").Floor()
	assert.False(t, ok)
}

func TestAdmits(t *testing.T) {
	tests := []struct {
		constraint string
		v          string
		want       bool
	}{
		{"^5.0.0", "^5.1.2", true},
		{"~5.0.3", "^5.1.2", false},
		{"^4.17.15", "^4.17.21", true},
		{"1.2.3", "^1.2.3", true},
		{"1.2.3", "^1.3.0", false},
		{"^1.0.0", "^2.0.0", false},
		{"*", "^9", true},
		{"^1.0.0", "*", true},
	}
	for _, tt := range tests {
		t.Run(tt.constraint+" admits "+tt.v, func(t *testing.T) {
			got, err := Admits(tt.constraint, MustParse(tt.v))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdmits_badConstraint(t *testing.T) {
	_, err := Admits("not a range", MustParse("1.0.0"))
	require.Error(t, err)
}
