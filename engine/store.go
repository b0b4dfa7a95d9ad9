package engine

import (
	"log/slog"
	"slices"
	"time"

	"github.com/ftahirops/xtimeline/filter"
	"github.com/ftahirops/xtimeline/model"
	"github.com/ftahirops/xtimeline/util"
)

// Store is the append-only collection of classified intervals, kept
// ordered by (category, timeline key, from).
type Store struct {
	records  []*model.Interval
	minFrom  time.Time
	maxTo    time.Time
	filter   *filter.Expr
	selected []*model.Interval
	log      *slog.Logger
}

// NewStore returns an empty store with no filter.
func NewStore() *Store {
	return &Store{filter: &filter.Expr{}, log: slog.Default()}
}

// WithLogger sets the logger used for dropped-record warnings.
func (s *Store) WithLogger(l *slog.Logger) *Store {
	s.log = l
	return s
}

// Append derives duration and timeline key for each interval and merges the
// batch into the global order. Intervals without a start time are dropped
// and logged. It returns the number of intervals kept.
func (s *Store) Append(batch string, ivs []*model.Interval) int {
	added := make([]*model.Interval, 0, len(ivs))
	for i, iv := range ivs {
		if iv == nil || iv.From.IsZero() {
			s.log.Warn("dropping malformed record", "batch", batch, "index", i, "reason", "missing from")
			continue
		}
		iv.Derive()
		added = append(added, iv)
	}
	if len(added) == 0 {
		return 0
	}
	slices.SortStableFunc(added, model.Compare)
	s.records = mergeSorted(s.records, added)

	for _, iv := range added {
		if s.minFrom.IsZero() || iv.From.Before(s.minFrom) {
			s.minFrom = iv.From
		}
		if iv.To.After(s.maxTo) {
			s.maxTo = iv.To
		}
	}
	s.selected = s.filter.Filter(s.records)
	return len(added)
}

// mergeSorted merges two ordered slices. On ties elements of a come first,
// so earlier appends keep their relative order.
func mergeSorted(a, b []*model.Interval) []*model.Interval {
	out := make([]*model.Interval, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if model.Compare(b[j], a[i]) < 0 {
			out = append(out, b[j])
			j++
		} else {
			out = append(out, a[i])
			i++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}

// Len returns the number of stored intervals.
func (s *Store) Len() int { return len(s.records) }

// All returns every interval in store order. Callers must not modify it.
func (s *Store) All() []*model.Interval { return s.records }

// Bounds returns the absolute range of the data: the earliest start rounded
// down to the minute and the latest end rounded up. A degenerate range is
// widened to one minute. ok is false when the store is empty.
func (s *Store) Bounds() (w Window, ok bool) {
	if len(s.records) == 0 {
		return Window{}, false
	}
	w = Window{Start: util.FloorMinute(s.minFrom), Stop: util.CeilMinute(s.maxTo)}
	if !w.Stop.After(w.Start) {
		w.Stop = w.Start.Add(time.Minute)
	}
	return w, true
}

// Query returns the intervals matching expr in store order. An empty
// expression returns everything. It does not change the applied filter.
func (s *Store) Query(expr string) ([]*model.Interval, error) {
	e, err := filter.Parse(expr)
	if err != nil {
		return nil, err
	}
	return e.Filter(s.records), nil
}

// SetFilter applies expr to the selected view. On a syntax error the
// previous filter stays in effect and the error is returned.
func (s *Store) SetFilter(expr string) error {
	e, err := filter.Parse(expr)
	if err != nil {
		return err
	}
	s.filter = e
	s.selected = e.Filter(s.records)
	return nil
}

// Filter returns the applied filter expression.
func (s *Store) Filter() string { return s.filter.String() }

// Filtered reports whether a non-empty filter is applied.
func (s *Store) Filtered() bool { return !s.filter.Empty() }

// Selected returns the filtered view in store order.
func (s *Store) Selected() []*model.Interval { return s.selected }
