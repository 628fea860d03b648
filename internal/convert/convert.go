package convert

import (
	"errors"
	"fmt"
	"math"

	"github.com/ameliorater/unit-converter/internal/unitgraph"
)

// ErrNoPath is matched by every *NoPathError.
var ErrNoPath = errors.New("convert: no conversion path")

// NoPathError reports two resolved units with no connecting path.
type NoPathError struct {
	From string
	To   string
}

func (e *NoPathError) Error() string {
	return fmt.Sprintf("convert: %s cannot be converted to %s", e.From, e.To)
}

// Is makes errors.Is(err, ErrNoPath) true for any NoPathError.
func (e *NoPathError) Is(err error) bool { return err == ErrNoPath }

// Factor returns how many to-units make up one from-unit.
//
// The same unit converts with factor 1. A direct edge is used as-is;
// otherwise the weights along the shortest path (by hop count) are
// multiplied in traversal order.
func Factor(g *unitgraph.Graph, from, to *unitgraph.Unit) (float64, error) {
	if from == to {
		return 1, nil
	}
	if f, ok := g.Edge(from, to); ok {
		return f, nil
	}

	path, err := shortestPath(g, from, to)
	if err != nil {
		return 0, err
	}
	factor := 1.0
	for _, e := range path {
		factor *= e.Factor
	}
	return factor, nil
}

// Path returns the units visited by Factor, both endpoints included.
func Path(g *unitgraph.Graph, from, to *unitgraph.Unit) ([]*unitgraph.Unit, error) {
	if from == to {
		return []*unitgraph.Unit{from}, nil
	}
	if _, ok := g.Edge(from, to); ok {
		return []*unitgraph.Unit{from, to}, nil
	}
	edges, err := shortestPath(g, from, to)
	if err != nil {
		return nil, err
	}
	units := make([]*unitgraph.Unit, 0, len(edges)+1)
	units = append(units, from)
	for _, e := range edges {
		units = append(units, e.To)
	}
	return units, nil
}

// shortestPath runs a breadth-first search from -> to and returns the edges
// of the first shortest path found. Neighbours are visited in table order,
// so the result is deterministic.
func shortestPath(g *unitgraph.Graph, from, to *unitgraph.Unit) ([]unitgraph.Edge, error) {
	if from == nil || to == nil || g.Unit(from.ID()) != from || g.Unit(to.ID()) != to {
		return nil, fmt.Errorf("convert: unit does not belong to graph")
	}

	via := make(map[int]unitgraph.Edge, g.Len())
	seen := map[int]bool{from.ID(): true}
	queue := []*unitgraph.Unit{from}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == to {
			break
		}
		for _, e := range g.Neighbors(cur) {
			if seen[e.To.ID()] {
				continue
			}
			seen[e.To.ID()] = true
			via[e.To.ID()] = e
			queue = append(queue, e.To)
		}
	}

	if !seen[to.ID()] {
		return nil, &NoPathError{From: from.Name(), To: to.Name()}
	}

	var path []unitgraph.Edge
	for id := to.ID(); id != from.ID(); {
		e := via[id]
		path = append(path, e)
		id = e.From.ID()
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// Convert applies a factor obtained from Factor to a quantity.
func Convert(value, factor float64) float64 {
	return value * factor
}

// Compound converts a ratio quantity such as miles/hour. numFactor converts
// the numerator units and denFactor the denominator units; the denominator
// contributes inversely.
func Compound(value, numFactor, denFactor float64) float64 {
	return value * numFactor / denFactor
}

// roundThreshold is the magnitude above which results are rounded.
const roundThreshold = 1e-5

// Round rounds v to five decimal places when |v| exceeds 1e-5. Smaller
// magnitudes are returned unchanged so they do not collapse to zero.
func Round(v float64) float64 {
	if math.Abs(v) <= roundThreshold {
		return v
	}
	return math.Round(v*1e5) / 1e5
}
