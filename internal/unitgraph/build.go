package unitgraph

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// DefaultMatchDistance is the edit distance tolerated when a unit mentioned
// without an abbreviation is matched against units already in the table.
const DefaultMatchDistance = 2

// Options controls how a table is turned into a Graph.
type Options struct {
	// Strict aborts the build on the first malformed line. Otherwise the
	// line is logged, counted in Graph.Skipped and ignored.
	Strict bool

	// MatchDistance is the fuzzy tolerance used to recognise repeated
	// mentions of the same unit. 0 requires exact names.
	MatchDistance int
}

// DefaultOptions returns lenient options with DefaultMatchDistance.
func DefaultOptions() Options {
	return Options{MatchDistance: DefaultMatchDistance}
}

// sideRe matches one side of an equivalence: a value, a name, and an
// optional parenthesised abbreviation.
var sideRe = regexp.MustCompile(`^\s*([^\s()]+)\s+([^\s()]+)\s*(?:\(\s*([^\s()]*)\s*\))?\s*$`)

// side is one parsed half of a table line.
type side struct {
	value     float64
	name      string
	abbrev    string
	hasAbbrev bool
}

// BuildString is Build over an in-memory table.
func BuildString(text string, opts Options) (*Graph, error) {
	return Build(strings.NewReader(text), opts)
}

// Build reads an equivalence table from r and returns the finished Graph.
//
// Blank lines and lines starting with '#' are ignored. In strict mode the
// first malformed line is returned as a *LineError and no Graph is
// produced; read errors are always fatal.
func Build(r io.Reader, opts Options) (*Graph, error) {
	b := &builder{g: newGraph(), opts: opts}

	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		text := sc.Text()
		if err := b.addLine(text); err != nil {
			lerr := &LineError{Line: n, Text: text, Err: err}
			if opts.Strict {
				return nil, lerr
			}
			slog.Warn("unitgraph: skipping malformed line", "line", n, "text", text, "err", err)
			b.g.skipped++
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("unitgraph: read table: %w", err)
	}

	added := b.g.addReverseEdges()
	slog.Debug("unitgraph: graph built",
		"units", b.g.Len(),
		"edges", b.g.EdgeCount(),
		"reverse_edges", added,
		"skipped", b.g.skipped,
	)
	return b.g, nil
}

type builder struct {
	g    *Graph
	opts Options
}

// addLine parses one table line and records its edge. Blank and comment
// lines are accepted without effect.
func (b *builder) addLine(text string) error {
	line := strings.TrimSpace(text)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	left, right, ok := strings.Cut(line, "=")
	if !ok {
		return errors.New("missing '='")
	}
	if strings.Contains(right, "=") {
		return errors.New("more than one '='")
	}

	l, err := parseSide(left)
	if err != nil {
		return fmt.Errorf("left side: %w", err)
	}
	r, err := parseSide(right)
	if err != nil {
		return fmt.Errorf("right side: %w", err)
	}

	from, err := b.unitFor(l)
	if err != nil {
		return err
	}
	to, err := b.unitFor(r)
	if err != nil {
		return err
	}
	if from == to {
		slog.Debug("unitgraph: ignoring self-equivalence", "unit", from.name)
		return nil
	}

	if !b.g.addEdge(from, to, r.value/l.value) {
		slog.Debug("unitgraph: duplicate equivalence, keeping first",
			"from", from.name, "to", to.name)
	}
	return nil
}

// unitFor finds the unit a side refers to, creating it on first mention.
func (b *builder) unitFor(s side) (*Unit, error) {
	if s.hasAbbrev {
		if u := b.g.lookupAbbrev(s.abbrev); u != nil {
			return u, nil
		}
	}

	m, err := b.g.Resolve(s.name, b.opts.MatchDistance)
	if err != nil {
		var ue *UnresolvedError
		if errors.As(err, &ue) && ue.Reason == ReasonAmbiguous {
			return nil, err
		}
		return b.g.addUnit(s.name, s.abbrev, s.hasAbbrev), nil
	}

	u := m.Unit
	if !s.hasAbbrev {
		return u, nil
	}
	// An abbreviated side only joins an earlier unit on an exact name.
	if !m.Exact() {
		return b.g.addUnit(s.name, s.abbrev, true), nil
	}
	if cur, ok := u.Abbrev(); ok {
		// The abbreviation lookup above already failed, so cur differs.
		return nil, fmt.Errorf("unit %q already has abbreviation %q, got %q", u.name, cur, s.abbrev)
	}
	u.abbrev, u.hasAbbrev = s.abbrev, true
	return u, nil
}

func parseSide(s string) (side, error) {
	m := sideRe.FindStringSubmatch(s)
	if m == nil {
		return side{}, fmt.Errorf("want \"<value> <name>[(<abbrev>)]\", got %q", strings.TrimSpace(s))
	}

	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return side{}, fmt.Errorf("value %q is not numeric", m[1])
	}
	if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return side{}, fmt.Errorf("value %q must be a positive number", m[1])
	}

	out := side{value: v, name: Normalize(m[2])}
	if ab := Lower(m[3]); ab != "" {
		out.abbrev, out.hasAbbrev = ab, true
	}
	return out, nil
}
