// Package expr implements the formula language for derived columns.
//
// The grammar is deliberately tiny: numeric literals, named column
// references, the four arithmetic operators, and parentheses. Anything
// else (function calls, comparisons, indexing, attribute access) is
// rejected when the configuration is loaded, not when a row is evaluated.
// Formulas are parsed once into an expression tree and evaluated per row
// against that row's own columns only.
package expr

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"unicode"
)

// Expr is a parsed formula ready for per-row evaluation.
type Expr struct {
	root node
	src  string
	refs []string
}

// Lookup resolves a column reference to its numeric value.
// The second return is false when the row has no such column.
type Lookup func(column string) (float64, bool)

// Parse compiles a formula. A token outside the grammar is a parse error,
// so malformed configuration fails at load time rather than mid-ingestion.
func Parse(src string) (*Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, src: src}
	root, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		return nil, fmt.Errorf("formula %q: unexpected %q", src, p.toks[p.pos].text)
	}
	e := &Expr{root: root, src: src}
	collectRefs(root, &e.refs)
	slices.Sort(e.refs)
	e.refs = slices.Compact(e.refs)
	return e, nil
}

// String returns the formula source text.
func (e *Expr) String() string { return e.src }

// Columns returns the column names the formula references, sorted.
func (e *Expr) Columns() []string { return e.refs }

// Eval computes the formula for one row. It fails when a referenced column
// is absent or the result is not a finite number.
func (e *Expr) Eval(lookup Lookup) (float64, error) {
	v, err := e.root.eval(lookup)
	if err != nil {
		return 0, fmt.Errorf("formula %q: %w", e.src, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("formula %q: non-finite result", e.src)
	}
	return v, nil
}

type node interface {
	eval(Lookup) (float64, error)
}

type literal float64

func (l literal) eval(Lookup) (float64, error) { return float64(l), nil }

type ref string

func (r ref) eval(lookup Lookup) (float64, error) {
	v, ok := lookup(string(r))
	if !ok {
		return 0, fmt.Errorf("column %q not present", string(r))
	}
	return v, nil
}

type binop struct {
	op          byte
	left, right node
}

func (b binop) eval(lookup Lookup) (float64, error) {
	l, err := b.left.eval(lookup)
	if err != nil {
		return 0, err
	}
	r, err := b.right.eval(lookup)
	if err != nil {
		return 0, err
	}
	switch b.op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	default:
		return l / r, nil
	}
}

func collectRefs(n node, out *[]string) {
	switch x := n.(type) {
	case ref:
		*out = append(*out, string(x))
	case binop:
		collectRefs(x.left, out)
		collectRefs(x.right, out)
	}
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

func lex(src string) ([]token, error) {
	var toks []token
	runes := []rune(src)
	for i := 0; i < len(runes); {
		c := runes[i]
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '+' || c == '-' || c == '*' || c == '/':
			toks = append(toks, token{tokOp, string(c)})
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case c >= '0' && c <= '9' || c == '.':
			j := i
			for j < len(runes) && (runes[j] >= '0' && runes[j] <= '9' || runes[j] == '.') {
				j++
			}
			toks = append(toks, token{tokNumber, string(runes[i:j])})
			i = j
		case unicode.IsLetter(c) || c == '_':
			j := i
			for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j]) || runes[j] == '_') {
				j++
			}
			toks = append(toks, token{tokIdent, string(runes[i:j])})
			i = j
		default:
			return nil, fmt.Errorf("formula %q: illegal character %q", src, string(c))
		}
	}
	if len(toks) == 0 {
		return nil, fmt.Errorf("empty formula")
	}
	return toks, nil
}

type parser struct {
	toks []token
	pos  int
	src  string
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

// parseSum handles + and - (lowest precedence).
func (p *parser) parseSum() (node, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokOp || (t.text != "+" && t.text != "-") {
			return left, nil
		}
		p.pos++
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = binop{op: t.text[0], left: left, right: right}
	}
}

// parseProduct handles * and /.
func (p *parser) parseProduct() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokOp || (t.text != "*" && t.text != "/") {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binop{op: t.text[0], left: left, right: right}
	}
}

func (p *parser) parseUnary() (node, error) {
	t, ok := p.peek()
	if ok && t.kind == tokOp && t.text == "-" {
		p.pos++
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return binop{op: '-', left: literal(0), right: operand}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	t, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("formula %q: unexpected end", p.src)
	}
	switch t.kind {
	case tokNumber:
		v, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, fmt.Errorf("formula %q: bad number %q", p.src, t.text)
		}
		p.pos++
		return literal(v), nil
	case tokIdent:
		p.pos++
		return ref(t.text), nil
	case tokLParen:
		p.pos++
		inner, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		t, ok := p.peek()
		if !ok || t.kind != tokRParen {
			return nil, fmt.Errorf("formula %q: missing closing parenthesis", p.src)
		}
		p.pos++
		return inner, nil
	default:
		return nil, fmt.Errorf("formula %q: unexpected %q", p.src, t.text)
	}
}
