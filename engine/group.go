package engine

import (
	"slices"
	"time"

	"github.com/ftahirops/xtimeline/model"
)

// CategoryOptions controls how one category's timelines are ordered.
type CategoryOptions struct {
	// OrderByEarliestStart orders timelines by their first interval instead
	// of by timeline key.
	OrderByEarliestStart bool
}

// Policy maps categories to their ordering options.
type Policy map[model.Category]CategoryOptions

// DefaultPolicy orders E2E tests as a waterfall.
func DefaultPolicy() Policy {
	return Policy{
		model.CategoryE2ETest: {OrderByEarliestStart: true},
	}
}

// Timeline is one display row.
type Timeline struct {
	Key       model.GroupKey
	Intervals []*model.Interval // ordered by From
	Start     time.Time         // earliest From
	Stop      time.Time         // latest To
}

// Overlaps reports whether any interval intersects [start, stop].
func (t *Timeline) Overlaps(start, stop time.Time) bool {
	if t.Stop.Before(start) || t.Start.After(stop) {
		return false
	}
	for _, iv := range t.Intervals {
		if iv.Overlaps(start, stop) {
			return true
		}
	}
	return false
}

// At returns the intervals covering t.
func (t *Timeline) At(at time.Time) []*model.Interval {
	var out []*model.Interval
	for _, iv := range t.Intervals {
		if iv.From.After(at) {
			break
		}
		if iv.Covers(at) {
			out = append(out, iv)
		}
	}
	return out
}

// Grouping is the ordered set of timelines built from a filtered view. It
// is replaced wholesale on every refresh and never modified afterwards.
type Grouping struct {
	timelines  []*Timeline
	index      map[model.GroupKey]int
	categories []model.Category
	byCategory map[model.Category][]*Timeline
	count      int
}

// Group partitions records by category (first-appearance order) and then
// by timeline key. Timelines keep insertion order unless the category's
// policy orders them by earliest start.
func Group(records []*model.Interval, policy Policy) *Grouping {
	var categories []model.Category
	buckets := make(map[model.Category][]*Timeline)
	byKey := make(map[model.GroupKey]*Timeline)

	for _, iv := range records {
		k := iv.Key()
		t, ok := byKey[k]
		if !ok {
			if _, seen := buckets[k.Category]; !seen {
				categories = append(categories, k.Category)
			}
			t = &Timeline{Key: k, Start: iv.From, Stop: iv.To}
			byKey[k] = t
			buckets[k.Category] = append(buckets[k.Category], t)
		}
		t.Intervals = append(t.Intervals, iv)
		if iv.From.Before(t.Start) {
			t.Start = iv.From
		}
		if iv.To.After(t.Stop) {
			t.Stop = iv.To
		}
	}

	byFrom := func(a, b *model.Interval) int { return a.From.Compare(b.From) }
	for _, ts := range buckets {
		for _, t := range ts {
			if !slices.IsSortedFunc(t.Intervals, byFrom) {
				slices.SortStableFunc(t.Intervals, byFrom)
			}
		}
	}
	for cat, opts := range policy {
		if opts.OrderByEarliestStart {
			slices.SortStableFunc(buckets[cat], func(a, b *Timeline) int {
				return a.Start.Compare(b.Start)
			})
		}
	}
	return build(categories, buckets, len(records))
}

func build(categories []model.Category, buckets map[model.Category][]*Timeline, count int) *Grouping {
	g := &Grouping{
		index:      make(map[model.GroupKey]int),
		categories: categories,
		byCategory: buckets,
		count:      count,
	}
	for _, cat := range categories {
		for _, t := range buckets[cat] {
			g.index[t.Key] = len(g.timelines)
			g.timelines = append(g.timelines, t)
		}
	}
	return g
}

// Collapse returns the grouping restricted to timelines with at least one
// interval overlapping [start, stop]. Surviving timelines keep their full
// interval lists.
func (g *Grouping) Collapse(start, stop time.Time) *Grouping {
	var categories []model.Category
	buckets := make(map[model.Category][]*Timeline)
	count := 0
	for _, cat := range g.categories {
		for _, t := range g.byCategory[cat] {
			if !t.Overlaps(start, stop) {
				continue
			}
			if _, seen := buckets[cat]; !seen {
				categories = append(categories, cat)
			}
			buckets[cat] = append(buckets[cat], t)
			count += len(t.Intervals)
		}
	}
	return build(categories, buckets, count)
}

// Categories returns the categories in display order.
func (g *Grouping) Categories() []model.Category { return g.categories }

// TimelinesFor returns the timeline keys of a category in display order.
func (g *Grouping) TimelinesFor(cat model.Category) []string {
	ts := g.byCategory[cat]
	keys := make([]string, len(ts))
	for i, t := range ts {
		keys[i] = t.Key.TimelineKey
	}
	return keys
}

// Intervals returns the ordered intervals of one timeline.
func (g *Grouping) Intervals(cat model.Category, key string) []*model.Interval {
	if i, ok := g.index[model.GroupKey{Category: cat, TimelineKey: key}]; ok {
		return g.timelines[i].Intervals
	}
	return nil
}

// Keys returns every row key in display order.
func (g *Grouping) Keys() []model.GroupKey {
	keys := make([]model.GroupKey, len(g.timelines))
	for i, t := range g.timelines {
		keys[i] = t.Key
	}
	return keys
}

// Len returns the number of rows.
func (g *Grouping) Len() int { return len(g.timelines) }

// Timeline returns row i.
func (g *Grouping) Timeline(i int) *Timeline {
	if i < 0 || i >= len(g.timelines) {
		return nil
	}
	return g.timelines[i]
}

// Find returns the row index of key.
func (g *Grouping) Find(key model.GroupKey) (int, bool) {
	i, ok := g.index[key]
	return i, ok
}

// Count returns the number of intervals across all rows.
func (g *Grouping) Count() int { return g.count }

// AnchorRow maps row of prev, the grouping previously on screen, onto g.
// The same timeline wins if it survived; otherwise the nearest surviving
// neighbour in prev's display order, looking below first.
func (g *Grouping) AnchorRow(prev *Grouping, row int) int {
	if prev == nil || len(g.timelines) == 0 || len(prev.timelines) == 0 {
		return 0
	}
	row = max(0, min(row, len(prev.timelines)-1))
	for i := row; i < len(prev.timelines); i++ {
		if j, ok := g.index[prev.timelines[i].Key]; ok {
			return j
		}
	}
	for i := row - 1; i >= 0; i-- {
		if j, ok := g.index[prev.timelines[i].Key]; ok {
			return j
		}
	}
	return 0
}
