package engine

import (
	"time"
)

// MinZoomSpan is the shortest visible window.
const MinZoomSpan = 10 * time.Second

// DefaultMinIntervalPx keeps sub-pixel intervals visible.
const DefaultMinIntervalPx = 3.0

// Window is a closed time range.
type Window struct {
	Start time.Time `json:"start"`
	Stop  time.Time `json:"stop"`
}

// Span returns Stop-Start.
func (w Window) Span() time.Duration {
	return w.Stop.Sub(w.Start)
}

// IsZero reports whether the window was never set.
func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.Stop.IsZero()
}

// Contains reports whether t falls within the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.Stop)
}

// Mapper converts between wall-clock time and pixel offsets for the
// visible window. Deltas are kept as time.Duration and converted to float
// seconds only for pixel math.
type Mapper struct {
	abs     Window
	zoom    Window
	bounded bool

	width float64
	pps   float64
	minPx float64
}

// NewMapper returns an unbounded mapper with the default pixel floor.
func NewMapper() *Mapper {
	m := &Mapper{minPx: DefaultMinIntervalPx}
	m.recompute()
	return m
}

// SetMinIntervalPx sets the floor applied by IntervalPixelWidth.
func (m *Mapper) SetMinIntervalPx(px float64) {
	if px >= 0 {
		m.minPx = px
	}
}

// SetBounds sets the absolute range and resets the zoom window to it.
func (m *Mapper) SetBounds(w Window) {
	m.abs = w
	m.bounded = true
	m.zoom = w
	m.recompute()
}

// Bounds returns the absolute range.
func (m *Mapper) Bounds() Window { return m.abs }

// Window returns the visible window.
func (m *Mapper) Window() Window { return m.zoom }

// Zoomed reports whether the visible window differs from the bounds.
func (m *Mapper) Zoomed() bool {
	return m.bounded && !(m.zoom.Start.Equal(m.abs.Start) && m.zoom.Stop.Equal(m.abs.Stop))
}

// SetPixelWidth stores the visible width and recomputes pixels per second.
func (m *Mapper) SetPixelWidth(px float64) {
	if px < 0 {
		px = 0
	}
	m.width = px
	m.recompute()
}

// PixelWidth returns the last width set.
func (m *Mapper) PixelWidth() float64 { return m.width }

// Seconds returns the visible span in seconds, never below MinZoomSpan.
func (m *Mapper) Seconds() float64 {
	span := m.zoom.Span()
	if span <= 0 {
		span = MinZoomSpan
	}
	return span.Seconds()
}

// PixelsPerSecond returns the current scale.
func (m *Mapper) PixelsPerSecond() float64 { return m.pps }

func (m *Mapper) recompute() {
	m.pps = m.width / m.Seconds()
}

// ZoomTo sets the visible window. The request is ordered, trimmed to the
// bounds when it overlaps them, extended to MinZoomSpan and then shifted
// inside the bounds keeping its length. Bounds win when the absolute range
// is itself shorter than MinZoomSpan.
func (m *Mapper) ZoomTo(from, to time.Time) Window {
	if from.After(to) {
		from, to = to, from
	}
	if m.bounded && to.After(m.abs.Start) && from.Before(m.abs.Stop) {
		if from.Before(m.abs.Start) {
			from = m.abs.Start
		}
		if to.After(m.abs.Stop) {
			to = m.abs.Stop
		}
	}
	if to.Sub(from) < MinZoomSpan {
		to = from.Add(MinZoomSpan)
	}
	m.zoom = m.clamp(from, to)
	m.recompute()
	return m.zoom
}

// clamp shifts [from, to] inside the bounds preserving its length.
func (m *Mapper) clamp(from, to time.Time) Window {
	if !m.bounded {
		return Window{Start: from, Stop: to}
	}
	if from.Before(m.abs.Start) {
		shift := m.abs.Start.Sub(from)
		from, to = from.Add(shift), to.Add(shift)
	}
	if to.After(m.abs.Stop) {
		shift := to.Sub(m.abs.Stop)
		from, to = from.Add(-shift), to.Add(-shift)
	}
	if from.Before(m.abs.Start) {
		from = m.abs.Start
	}
	return Window{Start: from, Stop: to}
}

// Pan shifts the window by fraction of its span (negative is earlier).
func (m *Mapper) Pan(fraction float64) Window {
	d := time.Duration(fraction * float64(m.zoom.Span()))
	m.zoom = m.clamp(m.zoom.Start.Add(d), m.zoom.Stop.Add(d))
	m.recompute()
	return m.zoom
}

// ZoomBy narrows (positive fraction) or widens (negative) the window by
// fraction of its span on each side.
func (m *Mapper) ZoomBy(fraction float64) Window {
	d := time.Duration(fraction * float64(m.zoom.Span()))
	return m.ZoomTo(m.zoom.Start.Add(d), m.zoom.Stop.Add(-d))
}

// Reset restores the visible window to the bounds.
func (m *Mapper) Reset() Window {
	if m.bounded {
		m.zoom = m.abs
		m.recompute()
	}
	return m.zoom
}

// TimeToPixel returns the offset of t from the window start. The result is
// not clamped to the visible width.
func (m *Mapper) TimeToPixel(t time.Time) float64 {
	return t.Sub(m.zoom.Start).Seconds() * m.pps
}

// PixelToTime returns the time at offset px, truncated to the microsecond.
func (m *Mapper) PixelToTime(px float64) time.Time {
	if m.pps == 0 {
		return m.zoom.Start
	}
	d := time.Duration(px / m.pps * float64(time.Second))
	return m.zoom.Start.Add(d).Truncate(time.Microsecond)
}

// IntervalPixelWidth returns the rendered width of a duration, never below
// the minimum pixel floor.
func (m *Mapper) IntervalPixelWidth(seconds float64) float64 {
	w := seconds * m.pps
	if w < m.minPx {
		return m.minPx
	}
	return w
}
