// Package filter implements the boolean expression language used to select
// intervals, plus the simplified per-field search syntax of the filter form.
package filter

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/ftahirops/xtimeline/model"
)

// Expr is a compiled filter expression. The zero Expr matches everything.
type Expr struct {
	src  string
	root node
}

// Parse compiles src. An empty or blank expression matches every interval.
// Malformed input returns a *SyntaxError.
func Parse(src string) (*Expr, error) {
	if strings.TrimSpace(src) == "" {
		return &Expr{src: src}, nil
	}
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, toks: toks, fold: cases.Fold()}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf(t, "unexpected %s %q", t.kind, t.text)
	}
	return &Expr{src: src, root: root}, nil
}

// String returns the source text.
func (e *Expr) String() string {
	if e == nil {
		return ""
	}
	return e.src
}

// Empty reports whether the expression selects everything.
func (e *Expr) Empty() bool {
	return e == nil || e.root == nil
}

// Match evaluates the expression against one interval.
func (e *Expr) Match(iv *model.Interval) bool {
	if e.Empty() {
		return true
	}
	return e.root.eval(iv, &evalCtx{fold: cases.Fold()})
}

// Filter returns the matching intervals in input order.
func (e *Expr) Filter(ivs []*model.Interval) []*model.Interval {
	if e.Empty() {
		out := make([]*model.Interval, len(ivs))
		copy(out, ivs)
		return out
	}
	ctx := &evalCtx{fold: cases.Fold()}
	out := make([]*model.Interval, 0, len(ivs))
	for _, iv := range ivs {
		if e.root.eval(iv, ctx) {
			out = append(out, iv)
		}
	}
	return out
}

type parser struct {
	src  string
	toks []token
	pos  int
	fold cases.Caser
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf(format, args...), Expr: p.src}
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, p.errorf(t, "expected %s, got %s", kind, t.kind)
	}
	return t, nil
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orNode{left, right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andNode{left, right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.peek().kind == tokNot {
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	t := p.peek()
	switch t.kind {
	case tokLParen:
		p.next()
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return n, nil
	case tokWord:
		lower := strings.ToLower(t.text)
		if (lower == "isnull" || lower == "notnull") && p.toks[p.pos+1].kind == tokLParen {
			return p.parseNullCall(lower == "isnull")
		}
		return p.parsePredicate()
	}
	return nil, p.errorf(t, "expected field or '(', got %s", t.kind)
}

// parseNullCall handles isnull(field) and notnull(field).
func (p *parser) parseNullCall(wantNull bool) (node, error) {
	p.next()
	p.next()
	f, err := p.parseFieldToken()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRParen); err != nil {
		return nil, err
	}
	return nullNode{f: f, wantNull: wantNull}, nil
}

func (p *parser) parseFieldToken() (field, error) {
	t := p.next()
	if t.kind != tokWord {
		return field{}, p.errorf(t, "expected field name, got %s", t.kind)
	}
	f, ok := parseField(t.text)
	if !ok {
		return field{}, p.errorf(t, "unknown field %q", t.text)
	}
	return f, nil
}

func (p *parser) parsePredicate() (node, error) {
	f, err := p.parseFieldToken()
	if err != nil {
		return nil, err
	}
	t := p.next()
	switch {
	case t.kind == tokWord && strings.EqualFold(t.text, "contains"):
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return containsNode{f: f, needle: p.fold.String(v)}, nil

	case t.kind == tokWord && strings.EqualFold(t.text, "is"):
		wantNull := true
		if p.peek().kind == tokNot {
			p.next()
			wantNull = false
		}
		n := p.next()
		if n.kind != tokWord || !strings.EqualFold(n.text, "null") {
			return nil, p.errorf(n, "expected 'null' after 'is'")
		}
		return nullNode{f: f, wantNull: wantNull}, nil

	case t.kind == tokOp && (t.text == "==" || t.text == "!="):
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return equalNode{f: f, want: v, negate: t.text == "!="}, nil

	case t.kind == tokOp:
		if f.kind != fieldDuration {
			return nil, p.errorf(t, "operator %s only applies to duration", t.text)
		}
		vt := p.peek()
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		num, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, p.errorf(vt, "expected number, got %q", v)
		}
		return compareNode{op: t.text, want: num}, nil
	}
	return nil, p.errorf(t, "expected operator after field, got %s %q", t.kind, t.text)
}

func (p *parser) parseValue() (string, error) {
	t := p.next()
	if t.kind != tokString && t.kind != tokWord {
		return "", p.errorf(t, "expected value, got %s", t.kind)
	}
	return t.text, nil
}
