package engine

// ZoomHistory is a ring buffer of previously visible windows. When full,
// the oldest entry is overwritten.
type ZoomHistory struct {
	buf  []Window
	head int
	size int
	cap  int
}

// NewZoomHistory creates a ring buffer with the given capacity.
func NewZoomHistory(capacity int) *ZoomHistory {
	if capacity < 1 {
		capacity = 1
	}
	return &ZoomHistory{
		buf: make([]Window, capacity),
		cap: capacity,
	}
}

// Push records a window.
func (h *ZoomHistory) Push(w Window) {
	h.buf[h.head] = w
	h.head = (h.head + 1) % h.cap
	if h.size < h.cap {
		h.size++
	}
}

// Pop removes and returns the most recent window.
func (h *ZoomHistory) Pop() (Window, bool) {
	if h.size == 0 {
		return Window{}, false
	}
	h.head = (h.head - 1 + h.cap) % h.cap
	h.size--
	return h.buf[h.head], true
}

// Len returns the number of windows stored.
func (h *ZoomHistory) Len() int {
	return h.size
}

// Clear drops every entry.
func (h *ZoomHistory) Clear() {
	h.head, h.size = 0, 0
}
