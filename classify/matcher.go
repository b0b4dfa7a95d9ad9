package classify

import (
	"slices"
	"strings"

	"github.com/ftahirops/xtimeline/model"
)

// Matcher lists the attribute constraints an interval must satisfy. Every
// non-empty constraint must hold; a zero Matcher matches everything.
// Set memberships are exact, map matches compare values case-insensitively
// and require every pair to match.
type Matcher struct {
	Source           []string          `yaml:"source"`
	LocatorType      []string          `yaml:"locator_type"`
	LocatorKeysExist []string          `yaml:"locator_keys_exist"`
	LocatorKeysMatch map[string]string `yaml:"locator_keys_match"`
	Reason           []string          `yaml:"reason"`
	Cause            []string          `yaml:"cause"`
	AnnotationsExist []string          `yaml:"annotations_exist"`
	AnnotationsMatch map[string]string `yaml:"annotations_match"`
	MessageContains  string            `yaml:"message_contains"`
}

// Requires returns the attributes the matcher reads.
func (m *Matcher) Requires() model.Attr {
	var a model.Attr
	if len(m.Source) > 0 {
		a |= model.AttrSource
	}
	if len(m.LocatorType) > 0 {
		a |= model.AttrLocatorType
	}
	if len(m.LocatorKeysExist) > 0 || len(m.LocatorKeysMatch) > 0 {
		a |= model.AttrLocatorKeys
	}
	if len(m.Reason) > 0 {
		a |= model.AttrReason
	}
	if len(m.Cause) > 0 {
		a |= model.AttrCause
	}
	if len(m.AnnotationsExist) > 0 || len(m.AnnotationsMatch) > 0 {
		a |= model.AttrAnnotations
	}
	if m.MessageContains != "" {
		a |= model.AttrMessage
	}
	return a
}

// Match reports whether iv satisfies every constraint.
func (m *Matcher) Match(iv *model.Interval) bool {
	if len(m.Source) > 0 && !slices.Contains(m.Source, iv.Source) {
		return false
	}
	if len(m.LocatorType) > 0 && !slices.Contains(m.LocatorType, iv.Locator.Type) {
		return false
	}
	if len(m.Reason) > 0 && !slices.Contains(m.Reason, iv.Message.Reason) {
		return false
	}
	if len(m.Cause) > 0 && !slices.Contains(m.Cause, iv.Message.Cause) {
		return false
	}
	for _, k := range m.LocatorKeysExist {
		if _, ok := iv.Locator.Key(k); !ok {
			return false
		}
	}
	if m.MessageContains != "" &&
		!strings.Contains(iv.Text, m.MessageContains) &&
		!strings.Contains(iv.Message.HumanMessage, m.MessageContains) {
		return false
	}
	if !allEqualFold(iv.Locator.Keys, m.LocatorKeysMatch) {
		return false
	}
	for _, k := range m.AnnotationsExist {
		if _, ok := iv.Message.Annotation(k); !ok {
			return false
		}
	}
	return allEqualFold(iv.Message.Annotations, m.AnnotationsMatch)
}

func allEqualFold(have, want map[string]string) bool {
	for k, v := range want {
		got, ok := have[k]
		if !ok || !strings.EqualFold(got, v) {
			return false
		}
	}
	return true
}
