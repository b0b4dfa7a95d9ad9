package engine

import (
	"math"
	"testing"
	"time"
)

var t0 = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func boundedMapper(span time.Duration, width float64) *Mapper {
	m := NewMapper()
	m.SetBounds(Window{Start: t0, Stop: t0.Add(span)})
	m.SetPixelWidth(width)
	return m
}

func TestZoomToClampsAndFloors(t *testing.T) {
	tests := []struct {
		name      string
		span      time.Duration
		from, to  time.Time
		wantStart time.Time
		wantStop  time.Time
	}{
		{"inside", time.Hour, t0.Add(time.Minute), t0.Add(2 * time.Minute), t0.Add(time.Minute), t0.Add(2 * time.Minute)},
		{"swapped", time.Hour, t0.Add(2 * time.Minute), t0.Add(time.Minute), t0.Add(time.Minute), t0.Add(2 * time.Minute)},
		{"extended to floor", time.Hour, t0.Add(time.Minute), t0.Add(time.Minute + 3*time.Second), t0.Add(time.Minute), t0.Add(time.Minute + 10*time.Second)},
		{"starts before bounds", time.Hour, t0.Add(-time.Hour), t0.Add(5 * time.Second), t0, t0.Add(10 * time.Second)},
		{"floor at the end shifts back", time.Hour, t0.Add(time.Hour - 2*time.Second), t0.Add(time.Hour), t0.Add(time.Hour - 10*time.Second), t0.Add(time.Hour)},
		{"entirely before bounds", time.Hour, t0.Add(-2 * time.Hour), t0.Add(-time.Hour), t0, t0.Add(time.Hour)},
		{"entirely after bounds", time.Hour, t0.Add(2 * time.Hour), t0.Add(2*time.Hour + 30*time.Second), t0.Add(time.Hour - 30*time.Second), t0.Add(time.Hour)},
		{"covers bounds", time.Hour, t0.Add(-time.Hour), t0.Add(3 * time.Hour), t0, t0.Add(time.Hour)},
		{"bounds shorter than floor", 4 * time.Second, t0, t0.Add(time.Second), t0, t0.Add(4 * time.Second)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := boundedMapper(tt.span, 1000)
			w := m.ZoomTo(tt.from, tt.to)
			if !w.Start.Equal(tt.wantStart) || !w.Stop.Equal(tt.wantStop) {
				t.Fatalf("window = [%v, %v], want [%v, %v]", w.Start, w.Stop, tt.wantStart, tt.wantStop)
			}
			if w.Start.Before(m.Bounds().Start) {
				t.Errorf("start %v before bounds %v", w.Start, m.Bounds().Start)
			}
		})
	}
}

func TestZoomFloorProperty(t *testing.T) {
	m := boundedMapper(time.Hour, 800)
	for i := -50; i < 50; i++ {
		from := t0.Add(time.Duration(i) * 97 * time.Second)
		to := from.Add(time.Duration(i*i) * time.Second)
		w := m.ZoomTo(from, to)
		if w.Span() < MinZoomSpan {
			t.Fatalf("span %v below floor for [%v, %v]", w.Span(), from, to)
		}
		if w.Start.Before(m.Bounds().Start) || w.Stop.After(m.Bounds().Stop) {
			t.Fatalf("window %v outside bounds %v", w, m.Bounds())
		}
	}
}

func TestPixelMapping(t *testing.T) {
	m := boundedMapper(100*time.Second, 1000)
	if pps := m.PixelsPerSecond(); pps != 10 {
		t.Fatalf("pps = %v, want 10", pps)
	}
	if px := m.TimeToPixel(t0.Add(2500 * time.Millisecond)); px != 25 {
		t.Errorf("TimeToPixel = %v, want 25", px)
	}
	if px := m.TimeToPixel(t0.Add(-time.Second)); px != -10 {
		t.Errorf("TimeToPixel before window = %v, want -10 (unclamped)", px)
	}
	if got := m.PixelToTime(25); !got.Equal(t0.Add(2500 * time.Millisecond)) {
		t.Errorf("PixelToTime = %v", got)
	}
	if w := m.IntervalPixelWidth(0.01); w != DefaultMinIntervalPx {
		t.Errorf("IntervalPixelWidth floor = %v", w)
	}
	if w := m.IntervalPixelWidth(5); w != 50 {
		t.Errorf("IntervalPixelWidth = %v, want 50", w)
	}

	m.ZoomTo(t0.Add(10*time.Second), t0.Add(20*time.Second))
	if pps := m.PixelsPerSecond(); pps != 100 {
		t.Errorf("pps after zoom = %v, want 100", pps)
	}
}

func TestPixelRoundTrip(t *testing.T) {
	for _, width := range []float64{80, 733, 1920} {
		m := boundedMapper(37*time.Hour, width)
		m.ZoomTo(t0.Add(3*time.Hour+17*time.Millisecond), t0.Add(5*time.Hour+time.Second))
		for p := 0.0; p < width; p += 0.5 {
			back := m.TimeToPixel(m.PixelToTime(p))
			if math.Abs(back-p) > 1 {
				t.Fatalf("width %v: p=%v round-trips to %v", width, p, back)
			}
		}
	}
}

func TestPanAndZoomBy(t *testing.T) {
	m := boundedMapper(time.Hour, 600)
	m.ZoomTo(t0.Add(10*time.Minute), t0.Add(20*time.Minute))

	w := m.Pan(0.5)
	if !w.Start.Equal(t0.Add(15*time.Minute)) || w.Span() != 10*time.Minute {
		t.Errorf("Pan = %+v", w)
	}
	w = m.Pan(-10)
	if !w.Start.Equal(t0) || w.Span() != 10*time.Minute {
		t.Errorf("Pan past start = %+v", w)
	}
	w = m.ZoomBy(0.1)
	if !w.Start.Equal(t0.Add(time.Minute)) || w.Span() != 8*time.Minute {
		t.Errorf("ZoomBy in = %+v", w)
	}
	w = m.ZoomBy(-1)
	if !w.Start.Equal(t0) || w.Span() != 17*time.Minute {
		t.Errorf("ZoomBy out = %+v", w)
	}
	if !m.Zoomed() {
		t.Error("expected zoomed")
	}
	m.Reset()
	if m.Zoomed() || m.Window() != m.Bounds() {
		t.Errorf("Reset left window %+v", m.Window())
	}
}

func TestUnboundedMapper(t *testing.T) {
	m := NewMapper()
	m.SetPixelWidth(100)
	if pps := m.PixelsPerSecond(); pps != 10 {
		t.Errorf("pps with empty window = %v, want 10 (10s floor)", pps)
	}
	w := m.ZoomTo(t0, t0)
	if w.Span() != MinZoomSpan {
		t.Errorf("span = %v", w.Span())
	}
	if m.Zoomed() {
		t.Error("unbounded mapper should never report zoomed")
	}
}

func TestZoomHistory(t *testing.T) {
	h := NewZoomHistory(2)
	w1 := Window{Start: t0, Stop: t0.Add(time.Minute)}
	w2 := Window{Start: t0, Stop: t0.Add(2 * time.Minute)}
	w3 := Window{Start: t0, Stop: t0.Add(3 * time.Minute)}
	h.Push(w1)
	h.Push(w2)
	h.Push(w3)
	if h.Len() != 2 {
		t.Fatalf("Len = %d", h.Len())
	}
	if got, ok := h.Pop(); !ok || got != w3 {
		t.Errorf("Pop = %+v", got)
	}
	if got, ok := h.Pop(); !ok || got != w2 {
		t.Errorf("Pop = %+v", got)
	}
	if _, ok := h.Pop(); ok {
		t.Error("Pop on empty succeeded")
	}
	h.Push(w1)
	h.Clear()
	if h.Len() != 0 {
		t.Error("Clear left entries")
	}
}
