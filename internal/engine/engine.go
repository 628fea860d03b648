package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ameliorater/unit-converter/internal/convert"
	"github.com/ameliorater/unit-converter/internal/query"
	"github.com/ameliorater/unit-converter/internal/unitgraph"
)

// DefaultMaxDistance is the fuzzy tolerance applied to query tokens.
const DefaultMaxDistance = 2

// Outcomes reported to a Recorder.
const (
	OutcomeOK              = "ok"
	OutcomeInvalidQuantity = "invalid_quantity"
	OutcomeSyntax          = "syntax"
	OutcomeUnresolvedUnit  = "unresolved_unit"
	OutcomeNoPath          = "no_path"
	OutcomeError           = "error"
)

// Recorder observes the outcome of every conversion.
type Recorder interface {
	ObserveConversion(outcome string)
}

// Options configures an Engine.
type Options struct {
	// MaxDistance is the edit distance tolerated when a query token has no
	// exact match. 0 disables fuzzy matching.
	MaxDistance int

	// Recorder, when set, is told the outcome of every conversion.
	Recorder Recorder
}

// Result is a completed conversion.
type Result struct {
	Input    float64  `json:"input"`
	Value    float64  `json:"value"` // rounded for display
	Raw      float64  `json:"raw"`
	Factor   float64  `json:"factor"`
	From     string   `json:"from"`
	To       string   `json:"to"`
	Path     []string `json:"path,omitempty"`
	Compound bool     `json:"compound"`
}

// String renders the result the way the prompt prints it: "2 foot".
func (r *Result) String() string {
	return fmt.Sprintf("%v %s", r.Value, r.To)
}

// Engine answers conversion queries against the current unit graph.
// The graph itself is immutable; Swap replaces it wholesale after a table
// rebuild. All methods are safe for concurrent use.
type Engine struct {
	mu       sync.RWMutex
	graph    *unitgraph.Graph
	loadedAt time.Time

	maxDistance int
	recorder    Recorder
	now         func() time.Time // injectable for deterministic tests
}

// New creates an Engine serving g.
func New(g *unitgraph.Graph, opts Options) *Engine {
	e := &Engine{
		maxDistance: opts.MaxDistance,
		recorder:    opts.Recorder,
		now:         time.Now,
	}
	e.Swap(g)
	return e
}

// Swap installs a freshly built graph.
func (e *Engine) Swap(g *unitgraph.Graph) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.graph = g
	e.loadedAt = e.now()
}

// Graph returns the graph currently in service.
func (e *Engine) Graph() *unitgraph.Graph {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.graph
}

// LoadedAt returns when the current graph was installed.
func (e *Engine) LoadedAt() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loadedAt
}

// Units lists every unit of the current graph in table order.
func (e *Engine) Units() []*unitgraph.Unit {
	return e.Graph().Units()
}

// Lookup resolves a single unit word the way query tokens are resolved.
func (e *Engine) Lookup(word string) (*unitgraph.Unit, error) {
	return e.LookupIn(e.Graph(), word)
}

// LookupIn is Lookup against a graph snapshot the caller already holds, so
// the unit it returns belongs to g even if a reload swaps the table.
func (e *Engine) LookupIn(g *unitgraph.Graph, word string) (*unitgraph.Unit, error) {
	return e.resolve(g, query.NewToken(word))
}

// Convert parses input and answers it.
func (e *Engine) Convert(input string) (*Result, error) {
	q, err := query.Parse(input)
	if err != nil {
		e.observe(err)
		return nil, err
	}
	return e.Do(q)
}

// Do answers a parsed query. The graph is read once, so a concurrent Swap
// never mixes two tables within one answer.
func (e *Engine) Do(q query.Query) (*Result, error) {
	res, err := e.do(e.Graph(), q)
	e.observe(err)
	return res, err
}

func (e *Engine) do(g *unitgraph.Graph, q query.Query) (*Result, error) {
	if !q.Compound() {
		from, to, err := e.resolvePair(g, q.From.Num, q.To.Num)
		if err != nil {
			return nil, err
		}
		f, err := convert.Factor(g, from, to)
		if err != nil {
			return nil, err
		}
		path, err := convert.Path(g, from, to)
		if err != nil {
			return nil, err
		}
		names := make([]string, len(path))
		for i, u := range path {
			names[i] = u.Name()
		}
		raw := convert.Convert(q.Value, f)
		return &Result{
			Input:  q.Value,
			Value:  convert.Round(raw),
			Raw:    raw,
			Factor: f,
			From:   from.Name(),
			To:     to.Name(),
			Path:   names,
		}, nil
	}

	numFrom, numTo, err := e.resolvePair(g, q.From.Num, q.To.Num)
	if err != nil {
		return nil, err
	}
	denFrom, denTo, err := e.resolvePair(g, q.From.Den, q.To.Den)
	if err != nil {
		return nil, err
	}
	num, err := convert.Factor(g, numFrom, numTo)
	if err != nil {
		return nil, err
	}
	den, err := convert.Factor(g, denFrom, denTo)
	if err != nil {
		return nil, err
	}
	raw := convert.Compound(q.Value, num, den)
	return &Result{
		Input:    q.Value,
		Value:    convert.Round(raw),
		Raw:      raw,
		Factor:   num / den,
		From:     numFrom.Name() + "/" + denFrom.Name(),
		To:       numTo.Name() + "/" + denTo.Name(),
		Compound: true,
	}, nil
}

// resolvePair resolves both tokens. Each failing token is reported, so a
// query with two bad units names both.
func (e *Engine) resolvePair(g *unitgraph.Graph, a, b query.Token) (*unitgraph.Unit, *unitgraph.Unit, error) {
	ua, errA := e.resolve(g, a)
	ub, errB := e.resolve(g, b)
	if err := errors.Join(errA, errB); err != nil {
		return nil, nil, err
	}
	return ua, ub, nil
}

// resolve tries the token exactly as typed first, so abbreviations that end
// in "s" (ms, hrs) are not mangled by singularization, then the singular
// form with fuzzy matching. Errors name the token as typed.
func (e *Engine) resolve(g *unitgraph.Graph, t query.Token) (*unitgraph.Unit, error) {
	if t.Raw != t.Name {
		if m, err := g.Resolve(t.Raw, 0); err == nil {
			return m.Unit, nil
		}
	}
	m, err := g.Resolve(t.Name, e.maxDistance)
	if err != nil {
		var ue *unitgraph.UnresolvedError
		if errors.As(err, &ue) {
			return nil, &unitgraph.UnresolvedError{Query: t.Raw, Reason: ue.Reason, Candidates: ue.Candidates}
		}
		return nil, err
	}
	return m.Unit, nil
}

func (e *Engine) observe(err error) {
	if e.recorder != nil {
		e.recorder.ObserveConversion(Outcome(err))
	}
}

// Outcome classifies a conversion error for metrics and status codes.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, query.ErrInvalidQuantity):
		return OutcomeInvalidQuantity
	case errors.Is(err, query.ErrSyntax):
		return OutcomeSyntax
	case errors.Is(err, unitgraph.ErrUnresolvedUnit):
		return OutcomeUnresolvedUnit
	case errors.Is(err, convert.ErrNoPath):
		return OutcomeNoPath
	default:
		return OutcomeError
	}
}
