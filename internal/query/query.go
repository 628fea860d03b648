package query

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/ameliorater/unit-converter/internal/unitgraph"
)

var (
	// ErrInvalidQuantity is matched by every *QuantityError.
	ErrInvalidQuantity = errors.New("query: invalid quantity")

	// ErrSyntax is matched by every *SyntaxError.
	ErrSyntax = errors.New("query: syntax error")
)

// QuantityError reports a leading value that is not a finite number.
type QuantityError struct {
	Text string
}

func (e *QuantityError) Error() string {
	return fmt.Sprintf("query: %q is not a valid quantity", e.Text)
}

// Is makes errors.Is(err, ErrInvalidQuantity) true for any QuantityError.
func (e *QuantityError) Is(err error) bool { return err == ErrInvalidQuantity }

// SyntaxError reports input that does not follow the query grammar.
type SyntaxError struct {
	Input string
	Pos   int
	Msg   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("query: %s at offset %d in %q", e.Msg, e.Pos, e.Input)
}

// Is makes errors.Is(err, ErrSyntax) true for any SyntaxError.
func (e *SyntaxError) Is(err error) bool { return err == ErrSyntax }

// Token is one unit word of a query.
type Token struct {
	// Raw is the word lower-cased but otherwise as typed.
	Raw string

	// Name is Raw singularized the way table names are stored.
	Name string
}

// NewToken lower-cases word and derives its singular form.
func NewToken(word string) Token {
	raw := unitgraph.Lower(word)
	return Token{Raw: raw, Name: unitgraph.Singular(raw)}
}

// Expr is a single unit or a ratio of two units.
type Expr struct {
	Num   Token
	Den   Token
	Ratio bool
}

func (e Expr) String() string {
	if e.Ratio {
		return e.Num.Raw + "/" + e.Den.Raw
	}
	return e.Num.Raw
}

// Query is a parsed conversion request.
type Query struct {
	Value float64
	From  Expr
	To    Expr
}

// Compound reports whether both sides are ratios.
func (q Query) Compound() bool { return q.From.Ratio }

// separators introduce the target unit.
var separators = map[string]bool{
	"to": true,
	"in": true,
	"=":  true,
}

// Parse reads a conversion request:
//
//	query    = number unitexpr [ sep unitexpr ]
//	unitexpr = word [ ("/" | "per") word ]
//	sep      = "to" | "in" | "->" | "="
//
// Without a separator, "<n> a per b" and "<n> a/b" convert a to b.
// With one, both sides must be single units or both ratios.
func Parse(input string) (Query, error) {
	p := &parser{input: input, toks: lex(input)}

	first := p.next()
	if first.kind != tokWord {
		return Query{}, p.errorf(first, "expected a quantity, got %s", first)
	}
	v, err := strconv.ParseFloat(first.text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Query{}, &QuantityError{Text: first.text}
	}

	from, err := p.expr()
	if err != nil {
		return Query{}, err
	}

	sep := p.next()
	switch {
	case sep.kind == tokEOF:
		if !from.Ratio {
			return Query{}, p.errorf(sep, "missing target unit")
		}
		return Query{
			Value: v,
			From:  Expr{Num: from.Num},
			To:    Expr{Num: from.Den},
		}, nil
	case sep.kind == tokArrow, sep.kind == tokWord && separators[unitgraph.Lower(sep.text)]:
	default:
		return Query{}, p.errorf(sep, "expected to, in or -> but got %s", sep)
	}

	to, err := p.expr()
	if err != nil {
		return Query{}, err
	}
	if end := p.next(); end.kind != tokEOF {
		return Query{}, p.errorf(end, "unexpected %s", end)
	}
	if from.Ratio != to.Ratio {
		return Query{}, p.errorf(sep, "cannot convert %s to %s", from, to)
	}
	return Query{Value: v, From: from, To: to}, nil
}

type parser struct {
	input string
	toks  []token
	i     int
}

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) expr() (Expr, error) {
	num := p.next()
	if num.kind != tokWord {
		return Expr{}, p.errorf(num, "expected a unit, got %s", num)
	}
	e := Expr{Num: NewToken(num.text)}

	if t := p.peek(); t.kind == tokSlash || (t.kind == tokWord && unitgraph.Lower(t.text) == "per") {
		p.next()
		den := p.next()
		if den.kind != tokWord {
			return Expr{}, p.errorf(den, "expected a unit after %s, got %s", t, den)
		}
		e.Den, e.Ratio = NewToken(den.text), true
	}
	return e, nil
}

func (p *parser) errorf(at token, format string, args ...any) error {
	return &SyntaxError{Input: p.input, Pos: at.pos, Msg: fmt.Sprintf(format, args...)}
}
