package resolver

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roster() []Entry {
	names := [][2]string{
		{"Nicole", "Smith"},
		{"Nicole", "Jones"},
		{"Marcus", "Lee"},
		{"Priya", "Patel"},
		{"Jonathan", "Smithers"},
	}
	out := make([]Entry, 0, len(names))
	for _, n := range names {
		out = append(out, Entry{ID: uuid.New(), FirstName: n[0], LastName: n[1]})
	}
	return out
}

func TestResolve(t *testing.T) {
	r := NewFuzzyResolver()
	people := roster()

	cases := []struct {
		name   string
		query  string
		status Status
		want   string
		n      int
	}{
		{name: "exact_full", query: "Nicole Smith", status: StatusResolved, want: "Nicole Smith"},
		{name: "possessive", query: "nicole smith's", status: StatusResolved, want: "Nicole Smith"},
		{name: "shared_first_name", query: "Nicole", status: StatusAmbiguous, n: 2},
		{name: "exact_last", query: "Smith", status: StatusResolved, want: "Nicole Smith"},
		{name: "title", query: "Ms. Patel", status: StatusResolved, want: "Priya Patel"},
		{name: "substring", query: "pat", status: StatusResolved, want: "Priya Patel"},
		{name: "typo", query: "Nicol Smth", status: StatusResolved, want: "Nicole Smith"},
		{name: "typo_first_and_last", query: "Marcos Le", status: StatusResolved, want: "Marcus Lee"},
		{name: "typo_shared_first", query: "Nicola", status: StatusAmbiguous, n: 2},
		{name: "unknown", query: "Zebediah", status: StatusNotFound},
		{name: "blank", query: "  ", status: StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := r.Resolve(tc.query, people)
			require.Equal(t, tc.status, res.Status)
			switch tc.status {
			case StatusResolved:
				require.NotNil(t, res.Match)
				assert.Equal(t, tc.want, res.Match.Entry.FullName())
			case StatusAmbiguous:
				assert.Nil(t, res.Match)
				assert.Len(t, res.Candidates, tc.n)
			case StatusNotFound:
				assert.Nil(t, res.Match)
				assert.Empty(t, res.Candidates)
			}
		})
	}
}

func TestResolveCapsCandidates(t *testing.T) {
	var people []Entry
	for i := 0; i < 8; i++ {
		people = append(people, Entry{ID: uuid.New(), FirstName: "Sam", LastName: fmt.Sprintf("Student%d", i)})
	}
	res := NewFuzzyResolver().Resolve("sam", people)
	assert.Equal(t, StatusAmbiguous, res.Status)
	assert.Len(t, res.Candidates, DefaultMaxCandidates)
}

func TestResolveEmptyRoster(t *testing.T) {
	res := NewFuzzyResolver().Resolve("Nicole", nil)
	assert.Equal(t, StatusNotFound, res.Status)
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("abc", "abc"))
	assert.Equal(t, 0.0, Ratio("abc", "xyz"))
	assert.InDelta(t, 0.75, Ratio("abcd", "bcde"), 1e-9)
	assert.InDelta(t, 10.0/11.0, Ratio("nicol smth", "nicole smith"), 1e-9)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "nicole smith", NormalizeName("  Ms. Nicole  Smith's "))
	assert.Equal(t, "o'brien", NormalizeName("O’Brien"))
	assert.Equal(t, "anne-marie", NormalizeName("Anne-Marie!"))
}
