package filter

import (
	"strconv"
	"strings"
)

// Placeholder stands for the field in a full-grammar fragment typed into a
// form field, e.g. `@ == "Pod" | @ contains etcd`.
const Placeholder = "@"

// Simple translates the search text typed for one field into the full
// grammar. Text free of '=', quotes, '.' and Placeholder is the simplified
// syntax: words joined by &, |, not and parentheses, each word phrase
// becoming a case-insensitive contains. Anything else is a full-grammar
// fragment in which Placeholder names the field. Fragments using contains
// are guarded by a not-null check on the field. Blank text yields "".
func Simple(fieldName, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	var expr string
	if strings.ContainsAny(text, "=\"'."+Placeholder) {
		expr = strings.ReplaceAll(text, Placeholder, fieldName)
	} else {
		expr = translateSimple(fieldName, text)
	}
	lower := strings.ToLower(expr)
	if strings.Contains(lower, "contains") && !strings.Contains(lower, "null") {
		expr = "(" + fieldName + " is not null) & (" + expr + ")"
	}
	return expr
}

func translateSimple(fieldName, text string) string {
	var out []string
	var phrase []string
	flush := func() {
		if len(phrase) == 0 {
			return
		}
		out = append(out, fieldName+" contains "+strconv.Quote(strings.Join(phrase, " ")))
		phrase = nil
	}

	for _, w := range splitSimple(text) {
		switch strings.ToLower(w) {
		case "&", "|":
			flush()
			// "&&" and "||" arrive as two runes.
			if len(out) > 0 && out[len(out)-1] == w {
				continue
			}
			out = append(out, w)
		case "not", "!":
			// Inside a phrase, "not" is just a word.
			if len(phrase) > 0 || !operandNext(out) {
				phrase = append(phrase, w)
				continue
			}
			out = append(out, w)
		case "(", ")":
			flush()
			out = append(out, w)
		default:
			phrase = append(phrase, w)
		}
	}
	flush()
	return strings.Join(out, " ")
}

// operandNext reports whether the translated tokens so far end where an
// operand must follow.
func operandNext(out []string) bool {
	if len(out) == 0 {
		return true
	}
	switch out[len(out)-1] {
	case "&", "|", "(", "not", "!":
		return true
	}
	return false
}

// splitSimple breaks text into words and the single-rune operators
// & | ( ) !, dropping whitespace.
func splitSimple(text string) []string {
	var parts []string
	var cur strings.Builder
	emit := func() {
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
	}
	for _, r := range text {
		switch {
		case strings.ContainsRune("&|()!", r):
			emit()
			parts = append(parts, string(r))
		case r == ' ' || r == '\t':
			emit()
		default:
			cur.WriteRune(r)
		}
	}
	emit()
	return parts
}
