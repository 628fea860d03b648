package unitgraph

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// minFuzzyLen is the rune length a query must exceed before edit-distance
// matching is attempted. Abbreviations and short tokens only match exactly.
const minFuzzyLen = 3

// Match is the outcome of a successful Resolve.
type Match struct {
	Unit *Unit

	// Distance is the edit distance between the query and the matched name
	// or abbreviation; 0 for an exact match.
	Distance int
}

// Exact reports whether the query matched without any edits.
func (m Match) Exact() bool { return m.Distance == 0 }

// Resolve maps query to exactly one unit.
//
// A single unit whose name or abbreviation equals query is returned
// immediately. With no exact hit, a query longer than three runes is
// compared by Levenshtein distance against every name and abbreviation, and
// the closest unit is returned if its distance is within maxDistance. Ties
// go to the unit that appeared first in the table. Two or more exact hits
// are reported as ambiguous.
func (g *Graph) Resolve(query string, maxDistance int) (Match, error) {
	var exact []*Unit
	for _, u := range g.units {
		if u.matches(query) {
			exact = append(exact, u)
		}
	}

	switch {
	case len(exact) == 1:
		return Match{Unit: exact[0]}, nil
	case len(exact) > 1:
		names := make([]string, len(exact))
		for i, u := range exact {
			names[i] = u.String()
		}
		return Match{}, &UnresolvedError{Query: query, Reason: ReasonAmbiguous, Candidates: names}
	}

	if maxDistance <= 0 || utf8.RuneCountInString(query) <= minFuzzyLen {
		return Match{}, &UnresolvedError{Query: query, Reason: ReasonUnknown}
	}

	var best *Unit
	bestDist := -1
	for _, u := range g.units {
		d := levenshtein.ComputeDistance(query, u.name)
		if u.hasAbbrev {
			if ad := levenshtein.ComputeDistance(query, u.abbrev); ad < d {
				d = ad
			}
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = u, d
		}
	}
	if best == nil || bestDist > maxDistance {
		return Match{}, &UnresolvedError{Query: query, Reason: ReasonUnknown}
	}
	return Match{Unit: best, Distance: bestDist}, nil
}

// lookupAbbrev returns the unit carrying exactly this abbreviation.
func (g *Graph) lookupAbbrev(abbrev string) *Unit {
	for _, u := range g.units {
		if u.hasAbbrev && u.abbrev == abbrev {
			return u
		}
	}
	return nil
}
