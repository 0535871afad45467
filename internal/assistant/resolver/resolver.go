// Package resolver matches free-text student references against a roster.
package resolver

import (
	"sort"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"
)

type Status string

const (
	StatusResolved  Status = "resolved"
	StatusAmbiguous Status = "ambiguous"
	StatusNotFound  Status = "not_found"
)

const (
	DefaultThreshold     = 0.72
	DefaultTieMargin     = 0.05
	DefaultMaxCandidates = 5
	// tokenThreshold gates the per-name-token heuristic.
	tokenThreshold = 0.8
	substringScore = 0.9
)

// Entry is one roster member.
type Entry struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
}

func (e Entry) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

type Match struct {
	Entry Entry
	Score float64
}

type Resolution struct {
	Status     Status
	Match      *Match
	Candidates []Match
}

type EntityResolver interface {
	Resolve(query string, roster []Entry) Resolution
}

// FuzzyResolver tries exact full name, exact first or last name, substring,
// then a SequenceMatcher ratio, stopping at the first stage with a hit.
type FuzzyResolver struct {
	Threshold     float64
	TieMargin     float64
	MaxCandidates int
}

func NewFuzzyResolver() *FuzzyResolver {
	return &FuzzyResolver{
		Threshold:     DefaultThreshold,
		TieMargin:     DefaultTieMargin,
		MaxCandidates: DefaultMaxCandidates,
	}
}

type normEntry struct {
	entry             Entry
	full, first, last string
}

func (r *FuzzyResolver) Resolve(query string, roster []Entry) Resolution {
	q := NormalizeName(query)
	if q == "" || len(roster) == 0 {
		return Resolution{Status: StatusNotFound}
	}
	entries := make([]normEntry, 0, len(roster))
	for _, e := range roster {
		entries = append(entries, normEntry{
			entry: e,
			full:  NormalizeName(e.FullName()),
			first: NormalizeName(e.FirstName),
			last:  NormalizeName(e.LastName),
		})
	}

	if hits := r.collect(entries, func(n normEntry) (float64, bool) { return 1, n.full == q }); len(hits) > 0 {
		return r.decide(hits, false)
	}
	if hits := r.collect(entries, func(n normEntry) (float64, bool) { return 1, n.first == q || n.last == q }); len(hits) > 0 {
		return r.decide(hits, false)
	}
	if len(q) >= 2 {
		if hits := r.collect(entries, func(n normEntry) (float64, bool) {
			return substringScore, strings.Contains(n.full, q)
		}); len(hits) > 0 {
			return r.decide(hits, false)
		}
	}
	hits := r.collect(entries, func(n normEntry) (float64, bool) {
		s := fuzzyScore(q, n)
		return s, s >= r.Threshold
	})
	if len(hits) == 0 {
		return Resolution{Status: StatusNotFound}
	}
	return r.decide(hits, true)
}

func (r *FuzzyResolver) collect(entries []normEntry, score func(normEntry) (float64, bool)) []Match {
	var out []Match
	for _, n := range entries {
		if s, ok := score(n); ok {
			out = append(out, Match{Entry: n.entry, Score: s})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Entry.FullName() < out[j].Entry.FullName()
	})
	return out
}

// decide resolves a single hit. With tieBand, hits scoring within TieMargin
// of the best compete; otherwise every hit of the stage competes.
func (r *FuzzyResolver) decide(hits []Match, tieBand bool) Resolution {
	if tieBand {
		best := hits[0].Score
		n := 0
		for n < len(hits) && best-hits[n].Score <= r.TieMargin {
			n++
		}
		hits = hits[:n]
	}
	if len(hits) == 1 {
		m := hits[0]
		return Resolution{Status: StatusResolved, Match: &m, Candidates: hits}
	}
	if r.MaxCandidates > 0 && len(hits) > r.MaxCandidates {
		hits = hits[:r.MaxCandidates]
	}
	return Resolution{Status: StatusAmbiguous, Candidates: hits}
}

// fuzzyScore is the full-name ratio, raised to a token's ratio against the
// first or last name when that token ratio reaches tokenThreshold.
func fuzzyScore(q string, n normEntry) float64 {
	score := Ratio(q, n.full)
	tokens := strings.Fields(q)
	if len(tokens) == 0 {
		return score
	}
	if n.last != "" {
		if lr := Ratio(tokens[len(tokens)-1], n.last); lr >= tokenThreshold && lr > score {
			score = lr
		}
	}
	if n.first != "" && len(tokens) == 1 {
		if fr := Ratio(tokens[0], n.first); fr >= tokenThreshold && fr > score {
			score = fr
		}
	}
	return score
}

// Ratio is difflib's SequenceMatcher ratio over the characters of a and b.
func Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	m := difflib.NewMatcherWithJunk(chars(a), chars(b), false, nil)
	return m.Ratio()
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

var titles = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "miss": true, "dr": true,
	"student": true, "my": true, "the": true,
}

// NormalizeName lowercases, drops possessives, punctuation and titles.
func NormalizeName(s string) string {
	s = strings.ToLower(strings.NewReplacer("’", "'", "‘", "'").Replace(s))
	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	var words []string
	for _, w := range strings.Fields(b.String()) {
		w = strings.TrimSuffix(w, "'s")
		w = strings.Trim(w, "'-")
		if w == "" || titles[w] {
			continue
		}
		words = append(words, w)
	}
	return strings.Join(words, " ")
}
