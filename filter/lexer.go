package filter

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLParen
	tokRParen
	tokAnd
	tokOr
	tokNot
	tokOp
	tokString
	tokWord
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of expression"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	case tokAnd:
		return "'and'"
	case tokOr:
		return "'or'"
	case tokNot:
		return "'not'"
	case tokOp:
		return "operator"
	case tokString:
		return "string"
	}
	return "word"
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

// SyntaxError reports a malformed filter expression.
type SyntaxError struct {
	Pos  int
	Msg  string
	Expr string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("filter syntax error at position %d: %s (in %q)", e.Pos, e.Msg, e.Expr)
}

const delimiters = "()&|!=<>\"'"

func isWordRune(r rune) bool {
	return !unicode.IsSpace(r) && !strings.ContainsRune(delimiters, r)
}

func lex(src string) ([]token, error) {
	var toks []token
	rs := []rune(src)
	errAt := func(pos int, format string, args ...any) error {
		return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...), Expr: src}
	}

	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case r == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case r == '&' || r == '|':
			kind := tokAnd
			if r == '|' {
				kind = tokOr
			}
			n := 1
			if i+1 < len(rs) && rs[i+1] == r {
				n = 2
			}
			toks = append(toks, token{kind, string(rs[i : i+n]), i})
			i += n
		case r == '!' || r == '=' || r == '<' || r == '>':
			if i+1 < len(rs) && rs[i+1] == '=' {
				toks = append(toks, token{tokOp, string(rs[i : i+2]), i})
				i += 2
				continue
			}
			switch r {
			case '!':
				toks = append(toks, token{tokNot, "!", i})
			case '=':
				toks = append(toks, token{tokOp, "==", i})
			default:
				toks = append(toks, token{tokOp, string(r), i})
			}
			i++
		case r == '"' || r == '\'':
			start := i
			var sb strings.Builder
			i++
			closed := false
			for i < len(rs) {
				c := rs[i]
				if c == '\\' && i+1 < len(rs) {
					sb.WriteRune(rs[i+1])
					i += 2
					continue
				}
				i++
				if c == r {
					closed = true
					break
				}
				sb.WriteRune(c)
			}
			if !closed {
				return nil, errAt(start, "unterminated string")
			}
			toks = append(toks, token{tokString, sb.String(), start})
		default:
			start := i
			for i < len(rs) && isWordRune(rs[i]) {
				i++
			}
			word := string(rs[start:i])
			switch strings.ToLower(word) {
			case "and":
				toks = append(toks, token{tokAnd, word, start})
			case "or":
				toks = append(toks, token{tokOr, word, start})
			case "not":
				toks = append(toks, token{tokNot, word, start})
			default:
				toks = append(toks, token{tokWord, word, start})
			}
		}
	}
	return append(toks, token{tokEOF, "", len(rs)}), nil
}
