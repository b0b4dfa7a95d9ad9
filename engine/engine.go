// Package engine holds the interval store, the timeline grouper, the
// time-to-pixel mapper and the coordinator that keeps them consistent.
package engine

import (
	"errors"
	"log/slog"
	"time"

	"github.com/ftahirops/xtimeline/classify"
	"github.com/ftahirops/xtimeline/model"
)

// ErrEmptyDataset is reported when an operation needs data and none has
// been loaded. Such operations return empty results instead of failing.
var ErrEmptyDataset = errors.New("no intervals loaded")

// State is the coordinator's position in its load/filter/zoom lifecycle.
type State int

const (
	StateEmpty State = iota
	StateLoaded
	StateFiltered
	StateZoomed
	StateFilteredAndZoomed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoaded:
		return "loaded"
	case StateFiltered:
		return "filtered"
	case StateZoomed:
		return "zoomed"
	case StateFilteredAndZoomed:
		return "filtered+zoomed"
	}
	return "unknown"
}

// Batch is one unit of ingested records sharing a record type.
type Batch struct {
	ID      string
	Source  string
	Schema  model.Schema
	Records []model.RawRecord
}

// LoadResult summarizes a Load call.
type LoadResult struct {
	Batches  int
	Records  int
	Accepted int
	Dropped  int
	Warnings []classify.ClassificationWarning
	Bounds   Window
	// Err is ErrEmptyDataset when nothing has been loaded so far.
	Err error
}

// Listener is notified after every refresh of the visible grouping.
type Listener interface {
	Refreshed(c *Coordinator)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(c *Coordinator)

// Refreshed calls f(c).
func (f ListenerFunc) Refreshed(c *Coordinator) { f(c) }

// Options configures a Coordinator.
type Options struct {
	Classifier    *classify.Engine
	Policy        Policy
	MinIntervalPx float64
	HistorySize   int
	Logger        *slog.Logger
}

// Coordinator owns the store and the zoom window and rebuilds the grouping
// whenever data, filter or zoom changes. It is not safe for concurrent use;
// ingestion hands batches to it from the UI goroutine.
type Coordinator struct {
	store      *Store
	classifier *classify.Engine
	mapper     *Mapper
	policy     Policy
	history    *ZoomHistory

	grouping *Grouping // filtered view
	view     *Grouping // grouping, collapsed when collapse is set
	collapse bool

	listeners []Listener
	log       *slog.Logger
}

// NewCoordinator creates an empty coordinator.
func NewCoordinator(opts Options) *Coordinator {
	if opts.Classifier == nil {
		opts.Classifier = classify.Default()
	}
	if opts.Policy == nil {
		opts.Policy = DefaultPolicy()
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = 32
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	m := NewMapper()
	if opts.MinIntervalPx > 0 {
		m.SetMinIntervalPx(opts.MinIntervalPx)
	}
	empty := Group(nil, opts.Policy)
	return &Coordinator{
		store:      NewStore().WithLogger(opts.Logger),
		classifier: opts.Classifier.WithLogger(opts.Logger),
		mapper:     m,
		policy:     opts.Policy,
		history:    NewZoomHistory(opts.HistorySize),
		grouping:   empty,
		view:       empty,
		log:        opts.Logger,
	}
}

// AddListener registers l for refresh notifications.
func (c *Coordinator) AddListener(l Listener) {
	c.listeners = append(c.listeners, l)
}

func (c *Coordinator) notify() {
	for _, l := range c.listeners {
		l.Refreshed(c)
	}
}

// Load converts, classifies and appends batches, merging them into the
// existing data. The zoom window is reset to the new bounds, collapse is
// cleared and the current filter is re-applied.
func (c *Coordinator) Load(batches ...Batch) LoadResult {
	var res LoadResult
	for _, b := range batches {
		res.Batches++
		res.Records += len(b.Records)
		ivs := make([]*model.Interval, 0, len(b.Records))
		for i := range b.Records {
			iv, err := b.Records[i].ToInterval(i)
			if err != nil {
				res.Dropped++
				c.log.Warn("dropping malformed record",
					"batch", b.ID, "source", b.Source, "error", err)
				continue
			}
			ivs = append(ivs, iv)
		}
		res.Warnings = append(res.Warnings, c.classifier.ClassifyBatch(b.ID, ivs, b.Schema)...)
		kept := c.store.Append(b.ID, ivs)
		res.Dropped += len(ivs) - kept
		res.Accepted += kept
		c.log.Info("batch loaded",
			"batch", b.ID, "source", b.Source,
			"records", len(b.Records), "accepted", kept)
	}

	bounds, ok := c.store.Bounds()
	if !ok {
		res.Err = ErrEmptyDataset
		return res
	}
	res.Bounds = bounds
	c.mapper.SetBounds(bounds)
	c.history.Clear()
	c.collapse = false
	c.regroup()
	c.notify()
	return res
}

// Ready returns ErrEmptyDataset until data has been loaded.
func (c *Coordinator) Ready() error {
	if c.store.Len() == 0 {
		return ErrEmptyDataset
	}
	return nil
}

// SetFilter applies expr and regroups. A syntax error leaves the previous
// filter and grouping in place and is returned as *filter.SyntaxError.
func (c *Coordinator) SetFilter(expr string) error {
	if err := c.store.SetFilter(expr); err != nil {
		return err
	}
	c.regroup()
	c.notify()
	return nil
}

// Zoom sets the visible window and the collapse mode.
func (c *Coordinator) Zoom(from, to time.Time, collapse bool) Window {
	if c.store.Len() == 0 {
		c.log.Debug("zoom ignored", "error", ErrEmptyDataset)
		return Window{}
	}
	c.history.Push(c.mapper.Window())
	w := c.mapper.ZoomTo(from, to)
	c.collapse = collapse
	c.refreshView()
	c.notify()
	return w
}

// ResetZoom restores the absolute window and clears collapse.
func (c *Coordinator) ResetZoom() Window {
	if c.store.Len() == 0 {
		return Window{}
	}
	if c.mapper.Zoomed() {
		c.history.Push(c.mapper.Window())
	}
	w := c.mapper.Reset()
	c.collapse = false
	c.refreshView()
	c.notify()
	return w
}

// Pan shifts the window by fraction of its span.
func (c *Coordinator) Pan(fraction float64) Window {
	if c.store.Len() == 0 {
		return Window{}
	}
	w := c.mapper.Pan(fraction)
	c.refreshView()
	c.notify()
	return w
}

// ZoomBy narrows (positive) or widens (negative) the window on both sides.
func (c *Coordinator) ZoomBy(fraction float64) Window {
	if c.store.Len() == 0 {
		return Window{}
	}
	c.history.Push(c.mapper.Window())
	w := c.mapper.ZoomBy(fraction)
	c.refreshView()
	c.notify()
	return w
}

// Back returns to the window before the last zoom. ok is false when there
// is no earlier window.
func (c *Coordinator) Back() (Window, bool) {
	prev, ok := c.history.Pop()
	if !ok || c.store.Len() == 0 {
		return c.mapper.Window(), false
	}
	w := c.mapper.ZoomTo(prev.Start, prev.Stop)
	c.refreshView()
	c.notify()
	return w, true
}

// SetCollapse toggles collapse mode for the current window.
func (c *Coordinator) SetCollapse(on bool) {
	if c.collapse == on {
		return
	}
	c.collapse = on
	c.refreshView()
	c.notify()
}

// SetVisiblePixelWidth sets the width of the timeline area.
func (c *Coordinator) SetVisiblePixelWidth(px float64) {
	c.mapper.SetPixelWidth(px)
}

func (c *Coordinator) regroup() {
	c.grouping = Group(c.store.Selected(), c.policy)
	c.refreshView()
}

func (c *Coordinator) refreshView() {
	if c.collapse {
		w := c.mapper.Window()
		c.view = c.grouping.Collapse(w.Start, w.Stop)
		return
	}
	c.view = c.grouping
}

// State returns the current lifecycle state.
func (c *Coordinator) State() State {
	if c.store.Len() == 0 {
		return StateEmpty
	}
	filtered := c.store.Filtered()
	zoomed := c.mapper.Zoomed()
	switch {
	case filtered && zoomed:
		return StateFilteredAndZoomed
	case zoomed:
		return StateZoomed
	case filtered:
		return StateFiltered
	}
	return StateLoaded
}

// Grouping returns the visible grouping.
func (c *Coordinator) Grouping() *Grouping { return c.view }

// Categories returns the visible categories in display order.
func (c *Coordinator) Categories() []model.Category { return c.view.Categories() }

// TimelinesFor returns the visible timeline keys of a category.
func (c *Coordinator) TimelinesFor(cat model.Category) []string { return c.view.TimelinesFor(cat) }

// Intervals returns the intervals of one visible timeline.
func (c *Coordinator) Intervals(cat model.Category, key string) []*model.Interval {
	return c.view.Intervals(cat, key)
}

// IntervalsAt returns the intervals of one timeline that cover t. Instants
// outside the visible window return nil.
func (c *Coordinator) IntervalsAt(key model.GroupKey, t time.Time) []*model.Interval {
	if !c.mapper.Window().Contains(t) {
		return nil
	}
	i, ok := c.view.Find(key)
	if !ok {
		return nil
	}
	return c.view.Timeline(i).At(t)
}

// Classifications returns the distinct classifications in the visible
// grouping, in display order.
func (c *Coordinator) Classifications() []model.Classification {
	seen := make(map[string]bool)
	var out []model.Classification
	for i := 0; i < c.view.Len(); i++ {
		for _, iv := range c.view.Timeline(i).Intervals {
			name := iv.Classification.Name
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, iv.Classification)
		}
	}
	return out
}

// Window returns the visible window.
func (c *Coordinator) Window() Window { return c.mapper.Window() }

// Bounds returns the absolute window.
func (c *Coordinator) Bounds() Window { return c.mapper.Bounds() }

// Collapsed reports whether collapse mode is on.
func (c *Coordinator) Collapsed() bool { return c.collapse }

// Filter returns the applied filter expression.
func (c *Coordinator) Filter() string { return c.store.Filter() }

// Total returns the number of stored intervals.
func (c *Coordinator) Total() int { return c.store.Len() }

// Query evaluates expr against the store without applying it.
func (c *Coordinator) Query(expr string) ([]*model.Interval, error) {
	return c.store.Query(expr)
}

// TimeToPixel maps a time to an offset in the visible window.
func (c *Coordinator) TimeToPixel(t time.Time) float64 { return c.mapper.TimeToPixel(t) }

// PixelToTime maps an offset in the visible window to a time.
func (c *Coordinator) PixelToTime(px float64) time.Time { return c.mapper.PixelToTime(px) }

// IntervalPixelWidth returns the rendered width of a duration in seconds.
func (c *Coordinator) IntervalPixelWidth(seconds float64) float64 {
	return c.mapper.IntervalPixelWidth(seconds)
}

// PixelsPerSecond returns the current scale.
func (c *Coordinator) PixelsPerSecond() float64 { return c.mapper.PixelsPerSecond() }
