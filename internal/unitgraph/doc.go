// Package unitgraph builds and queries the directed graph of unit equivalences.
//
// Build(r, opts) parses an equivalence table, one line per entry:
//
//	12 inches(in) = 1 foot(ft)
//	1 mile = 5280 feet
//
// Each line adds one weighted edge from the left unit to the right unit. The
// weight is the number of right-hand units in one left-hand unit
// (value2/value1), so converting a quantity is always a multiplication. After
// the whole table is read, every edge without an authored reverse gets a
// synthesized reverse edge weighted 1/factor.
//
// Unit names are lower-cased and singularized (one trailing "s" removed,
// except for the bare name "s"). Abbreviations are optional; a unit without
// one reports ok == false from Unit.Abbrev.
//
// Graph.Resolve(query, maxDistance) maps a free-text token to one unit:
// exact name/abbreviation match first, then Levenshtein fuzzy match for
// tokens longer than three runes. Two or more exact hits are ambiguous and
// never guessed between.
//
// A built Graph is never mutated. It may be shared by any number of readers;
// picking up table changes means building a new Graph.
package unitgraph
