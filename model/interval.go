package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/ftahirops/xtimeline/util"
)

// Locator identifies the subject of an interval (a pod, a node, a test...).
type Locator struct {
	// Raw is the locator string as delivered by the producer, if any.
	Raw  string            `json:"raw,omitempty"`
	Type string            `json:"type,omitempty"`
	Keys map[string]string `json:"keys,omitempty"`
}

// String returns Raw when set, otherwise "k/v" pairs with namespace, pod
// and container first and the remaining keys sorted.
func (l Locator) String() string {
	if l.Raw != "" {
		return l.Raw
	}
	if len(l.Keys) == 0 {
		return ""
	}
	names := util.PrioritizedKeys(l.Keys)
	parts := make([]string, 0, len(names))
	for _, k := range names {
		parts = append(parts, k+"/"+l.Keys[k])
	}
	return strings.Join(parts, " ")
}

// Key returns the locator key value and whether it is present.
func (l Locator) Key(name string) (string, bool) {
	v, ok := l.Keys[name]
	return v, ok
}

// Message is the structured message of an interval.
type Message struct {
	Reason       string            `json:"reason,omitempty"`
	Cause        string            `json:"cause,omitempty"`
	HumanMessage string            `json:"humanMessage,omitempty"`
	Annotations  map[string]string `json:"annotations,omitempty"`
}

// Annotation returns the annotation value and whether it is present.
func (m Message) Annotation(name string) (string, bool) {
	v, ok := m.Annotations[name]
	return v, ok
}

// Interval is one classified event or state duration.
type Interval struct {
	Source  string    `json:"source"`
	Locator Locator   `json:"locator"`
	Message Message   `json:"message"`
	// Text is the flat free-text message, when the producer sent one.
	Text    string    `json:"text,omitempty"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`

	// Duration is seconds(To-From), never negative.
	Duration       float64        `json:"duration"`
	Category       Category       `json:"category"`
	Classification Classification `json:"classification"`
	TimelineKey    string         `json:"timeline_key"`
}

// MalformedRecordError reports a raw record that could not become an
// interval. The record is dropped; the batch continues.
type MalformedRecordError struct {
	Index  int
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("record %d: %s", e.Index, e.Reason)
}

// Classify stamps the classification and category on the interval.
func (iv *Interval) Classify(c Classification) {
	iv.Classification = c
	iv.Category = c.Category
}

// Derive computes Duration and TimelineKey. To defaults to From.
func (iv *Interval) Derive() {
	if iv.To.IsZero() {
		iv.To = iv.From
	}
	d := iv.To.Sub(iv.From)
	if d < 0 {
		d = 0
	}
	iv.Duration = d.Seconds()
	iv.TimelineKey = TimelineKey(iv.Locator.String(), iv.Classification.TimelineDifferentiator)
}

// TimelineKey joins a locator and an optional differentiator.
func TimelineKey(locator, differentiator string) string {
	if differentiator == "" {
		return locator
	}
	if locator == "" {
		return differentiator
	}
	return locator + " " + differentiator
}

// Key returns the interval's timeline row.
func (iv *Interval) Key() GroupKey {
	return GroupKey{Category: iv.Category, TimelineKey: iv.TimelineKey}
}

// MessageText prefers the human message over the flat text.
func (iv *Interval) MessageText() string {
	if iv.Message.HumanMessage != "" {
		return iv.Message.HumanMessage
	}
	return iv.Text
}

// Overlaps reports whether the interval intersects [start, stop].
func (iv *Interval) Overlaps(start, stop time.Time) bool {
	return !iv.To.Before(start) && !iv.From.After(stop)
}

// Covers reports whether t falls within [From, To].
func (iv *Interval) Covers(t time.Time) bool {
	return !t.Before(iv.From) && !t.After(iv.To)
}

// Compare orders intervals by (category, timeline key, from).
func Compare(a, b *Interval) int {
	switch {
	case a.Category < b.Category:
		return -1
	case a.Category > b.Category:
		return 1
	}
	switch {
	case a.TimelineKey < b.TimelineKey:
		return -1
	case a.TimelineKey > b.TimelineKey:
		return 1
	}
	return a.From.Compare(b.From)
}
