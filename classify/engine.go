// Package classify assigns a category and display classification to
// intervals using an ordered table of attribute matchers.
package classify

import (
	"fmt"
	"log/slog"

	"github.com/ftahirops/xtimeline/model"
)

// Rule pairs a classification with the matcher that selects it.
type Rule struct {
	Classification model.Classification
	Matcher        Matcher
}

// ClassificationWarning reports a rule that reads attributes the batch's
// record type does not carry. The rule is skipped for that batch.
type ClassificationWarning struct {
	Rule    string
	Missing model.Attr
}

func (w ClassificationWarning) Error() string {
	return fmt.Sprintf("rule %s references attributes absent from batch: %s", w.Rule, w.Missing)
}

// Engine evaluates rules in declared order; the first match wins.
type Engine struct {
	rules []Rule
	log   *slog.Logger
}

// New builds an engine from rules. If the table does not already end in a
// catch-all, Unknown is appended so every interval gets a classification.
func New(rules ...Rule) *Engine {
	rs := make([]Rule, len(rules), len(rules)+1)
	copy(rs, rules)
	if len(rs) == 0 || rs[len(rs)-1].Matcher.Requires() != 0 {
		rs = append(rs, Unknown)
	}
	return &Engine{rules: rs, log: slog.Default()}
}

// Default returns an engine over DefaultRules, with extra rules evaluated
// first.
func Default(extra ...Rule) *Engine {
	rules := append([]Rule(nil), extra...)
	return New(append(rules, DefaultRules()...)...)
}

// WithLogger sets the logger used for batch warnings.
func (e *Engine) WithLogger(l *slog.Logger) *Engine {
	e.log = l
	return e
}

// Rules returns the rule table in evaluation order.
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Classify returns the classification of the first matching rule. It does
// not modify iv.
func (e *Engine) Classify(iv *model.Interval) model.Classification {
	return e.classify(iv, nil)
}

func (e *Engine) classify(iv *model.Interval, skip []bool) model.Classification {
	for i := range e.rules {
		if skip != nil && skip[i] {
			continue
		}
		if e.rules[i].Matcher.Match(iv) {
			return e.rules[i].Classification
		}
	}
	return Unknown.Classification
}

// ClassifyBatch classifies every interval in place. Rules that read
// attributes outside schema never match in this batch; each produces one
// warning, which is logged and returned.
func (e *Engine) ClassifyBatch(batch string, ivs []*model.Interval, schema model.Schema) []ClassificationWarning {
	var warnings []ClassificationWarning
	skip := make([]bool, len(e.rules))
	for i := range e.rules {
		req := e.rules[i].Matcher.Requires()
		if schema.Has(req) {
			continue
		}
		missing := schema.Missing(req)
		skip[i] = true
		w := ClassificationWarning{Rule: e.rules[i].Classification.Name, Missing: missing}
		warnings = append(warnings, w)
		e.log.Warn("classification rule skipped",
			"batch", batch,
			"rule", w.Rule,
			"missing", w.Missing.String(),
		)
	}
	for _, iv := range ivs {
		iv.Classify(e.classify(iv, skip))
	}
	return warnings
}

// Classifications returns the distinct classifications of the table, in
// rule order.
func (e *Engine) Classifications() []model.Classification {
	seen := make(map[string]bool, len(e.rules))
	out := make([]model.Classification, 0, len(e.rules))
	for _, r := range e.rules {
		if seen[r.Classification.Name] {
			continue
		}
		seen[r.Classification.Name] = true
		out = append(out, r.Classification)
	}
	return out
}
