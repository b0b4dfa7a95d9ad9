package filter

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/ftahirops/xtimeline/model"
)

type fieldKind int

const (
	fieldCategory fieldKind = iota
	fieldClassification
	fieldSource
	fieldLocator
	fieldTimeline
	fieldMessage
	fieldReason
	fieldCause
	fieldType
	fieldDuration
	fieldKey
	fieldAnnotation
)

var namedFields = map[string]fieldKind{
	"category":       fieldCategory,
	"classification": fieldClassification,
	"source":         fieldSource,
	"locator":        fieldLocator,
	"timeline":       fieldTimeline,
	"message":        fieldMessage,
	"reason":         fieldReason,
	"cause":          fieldCause,
	"type":           fieldType,
	"duration":       fieldDuration,
}

// field names an interval attribute. name is set for locator keys and
// annotations.
type field struct {
	kind fieldKind
	name string
}

func parseField(word string) (field, bool) {
	lower := strings.ToLower(word)
	if k, ok := namedFields[lower]; ok {
		return field{kind: k}, true
	}
	for _, p := range []struct {
		prefix string
		kind   fieldKind
	}{
		{"keys.", fieldKey},
		{"key.", fieldKey},
		{"annotations.", fieldAnnotation},
		{"annotation.", fieldAnnotation},
	} {
		if strings.HasPrefix(lower, p.prefix) && len(word) > len(p.prefix) {
			return field{kind: p.kind, name: word[len(p.prefix):]}, true
		}
	}
	if strings.Contains(word, ".") {
		return field{}, false
	}
	// Bare identifiers name locator keys.
	return field{kind: fieldKey, name: lower}, true
}

// value returns the field's string value; ok is false when the value is
// null (absent or empty).
func (f field) value(iv *model.Interval) (string, bool) {
	var s string
	switch f.kind {
	case fieldCategory:
		s = string(iv.Category)
	case fieldClassification:
		s = iv.Classification.Name
	case fieldSource:
		s = iv.Source
	case fieldLocator:
		s = iv.Locator.String()
	case fieldTimeline:
		s = iv.TimelineKey
	case fieldMessage:
		s = iv.MessageText()
	case fieldReason:
		s = iv.Message.Reason
	case fieldCause:
		s = iv.Message.Cause
	case fieldType:
		s = iv.Locator.Type
	case fieldDuration:
		return strconv.FormatFloat(iv.Duration, 'f', -1, 64), true
	case fieldKey:
		s, _ = iv.Locator.Key(f.name)
	case fieldAnnotation:
		s, _ = iv.Message.Annotation(f.name)
	}
	return s, s != ""
}

type evalCtx struct {
	fold cases.Caser
}

type node interface {
	eval(iv *model.Interval, ctx *evalCtx) bool
}

type orNode struct{ left, right node }

func (n orNode) eval(iv *model.Interval, ctx *evalCtx) bool {
	return n.left.eval(iv, ctx) || n.right.eval(iv, ctx)
}

type andNode struct{ left, right node }

func (n andNode) eval(iv *model.Interval, ctx *evalCtx) bool {
	return n.left.eval(iv, ctx) && n.right.eval(iv, ctx)
}

type notNode struct{ inner node }

func (n notNode) eval(iv *model.Interval, ctx *evalCtx) bool {
	return !n.inner.eval(iv, ctx)
}

// containsNode holds the needle already case-folded.
type containsNode struct {
	f      field
	needle string
}

func (n containsNode) eval(iv *model.Interval, ctx *evalCtx) bool {
	v, ok := n.f.value(iv)
	if !ok {
		return false
	}
	return strings.Contains(ctx.fold.String(v), n.needle)
}

type equalNode struct {
	f      field
	want   string
	negate bool
}

func (n equalNode) eval(iv *model.Interval, _ *evalCtx) bool {
	v, ok := n.f.value(iv)
	if !ok {
		return false
	}
	if n.f.kind == fieldDuration {
		want, err := strconv.ParseFloat(n.want, 64)
		if err == nil {
			return (iv.Duration == want) != n.negate
		}
	}
	return (v == n.want) != n.negate
}

type compareNode struct {
	op   string
	want float64
}

func (n compareNode) eval(iv *model.Interval, _ *evalCtx) bool {
	d := iv.Duration
	switch n.op {
	case "<":
		return d < n.want
	case "<=":
		return d <= n.want
	case ">":
		return d > n.want
	case ">=":
		return d >= n.want
	}
	return false
}

type nullNode struct {
	f        field
	wantNull bool
}

func (n nullNode) eval(iv *model.Interval, _ *evalCtx) bool {
	_, ok := n.f.value(iv)
	return ok != n.wantNull
}
