package unitgraph

// Edge is a directed conversion: one From unit equals Factor To units.
type Edge struct {
	From   *Unit
	To     *Unit
	Factor float64
}

// Graph is an immutable set of units and conversion edges. Only Build
// creates one; every exported method is a read.
type Graph struct {
	units []*Unit

	// out holds outgoing edges per unit ID in insertion order so traversals
	// are deterministic.
	out [][]Edge

	// index maps from-ID -> to-ID -> position in out[from].
	index []map[int]int

	edges   int
	skipped int
}

func newGraph() *Graph {
	return &Graph{}
}

// Len returns the number of units.
func (g *Graph) Len() int { return len(g.units) }

// EdgeCount returns the number of directed edges, synthesized reverses
// included.
func (g *Graph) EdgeCount() int { return g.edges }

// Skipped returns the number of malformed table lines ignored during a
// non-strict build.
func (g *Graph) Skipped() int { return g.skipped }

// Units returns every unit in table order. The slice is a copy; the units
// themselves are shared.
func (g *Graph) Units() []*Unit {
	out := make([]*Unit, len(g.units))
	copy(out, g.units)
	return out
}

// Unit returns the unit with the given ID, or nil if the ID is out of range.
func (g *Graph) Unit(id int) *Unit {
	if id < 0 || id >= len(g.units) {
		return nil
	}
	return g.units[id]
}

// Edge returns the factor of the direct edge from -> to.
func (g *Graph) Edge(from, to *Unit) (float64, bool) {
	if !g.owns(from) || !g.owns(to) {
		return 0, false
	}
	i, ok := g.index[from.id][to.id]
	if !ok {
		return 0, false
	}
	return g.out[from.id][i].Factor, true
}

// Neighbors returns the outgoing edges of u in insertion order.
func (g *Graph) Neighbors(u *Unit) []Edge {
	if !g.owns(u) {
		return nil
	}
	out := make([]Edge, len(g.out[u.id]))
	copy(out, g.out[u.id])
	return out
}

// owns reports whether u is a node of g rather than of another graph.
func (g *Graph) owns(u *Unit) bool {
	return u != nil && u.id >= 0 && u.id < len(g.units) && g.units[u.id] == u
}

// --- construction (package-private, used by Builder only) -------------------

func (g *Graph) addUnit(name, abbrev string, hasAbbrev bool) *Unit {
	u := &Unit{id: len(g.units), name: name, abbrev: abbrev, hasAbbrev: hasAbbrev}
	g.units = append(g.units, u)
	g.out = append(g.out, nil)
	g.index = append(g.index, make(map[int]int))
	return u
}

// addEdge inserts from -> to unless that directed edge already exists.
// It reports whether an edge was added.
func (g *Graph) addEdge(from, to *Unit, factor float64) bool {
	if _, ok := g.index[from.id][to.id]; ok {
		return false
	}
	g.index[from.id][to.id] = len(g.out[from.id])
	g.out[from.id] = append(g.out[from.id], Edge{From: from, To: to, Factor: factor})
	g.edges++
	return true
}

// addReverseEdges gives every edge lacking an authored inverse a
// synthesized one weighted 1/factor.
func (g *Graph) addReverseEdges() int {
	var forward []Edge
	for _, edges := range g.out {
		forward = append(forward, edges...)
	}
	added := 0
	for _, e := range forward {
		if g.addEdge(e.To, e.From, 1/e.Factor) {
			added++
		}
	}
	return added
}
