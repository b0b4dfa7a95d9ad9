package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the timeline page bindings.
type keyMap struct {
	PanLeft     key.Binding
	PanRight    key.Binding
	ZoomIn      key.Binding
	ZoomOut     key.Binding
	Reset       key.Binding
	Back        key.Binding
	Collapse    key.Binding
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Top         key.Binding
	Bottom      key.Binding
	CursorLeft  key.Binding
	CursorRight key.Binding
	ZoomCursor  key.Binding
	Inspect     key.Binding
	Filter      key.Binding
	ClearFlt    key.Binding
	Import      key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		PanLeft:     key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "pan back")),
		PanRight:    key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "pan forward")),
		ZoomIn:      key.NewBinding(key.WithKeys("+", "=", "ctrl+up"), key.WithHelp("+", "zoom in")),
		ZoomOut:     key.NewBinding(key.WithKeys("-", "_", "ctrl+down"), key.WithHelp("-", "zoom out")),
		Reset:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset zoom")),
		Back:        key.NewBinding(key.WithKeys("b", "backspace"), key.WithHelp("b", "previous zoom")),
		Collapse:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "toggle collapse")),
		Up:          key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "row up")),
		Down:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "row down")),
		PageUp:      key.NewBinding(key.WithKeys("pgup", "ctrl+b"), key.WithHelp("pgup", "page up")),
		PageDown:    key.NewBinding(key.WithKeys("pgdown", "ctrl+f"), key.WithHelp("pgdn", "page down")),
		Top:         key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("home", "first row")),
		Bottom:      key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end", "last row")),
		CursorLeft:  key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "cursor back")),
		CursorRight: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "cursor forward")),
		ZoomCursor:  key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "zoom on cursor")),
		Inspect:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "inspect")),
		Filter:      key.NewBinding(key.WithKeys("/", "f1"), key.WithHelp("/", "filter")),
		ClearFlt:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear filter")),
		Import:      key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "import URL")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// helpGroups lists bindings by section for the help page.
func (k keyMap) helpGroups() []struct {
	title    string
	bindings []key.Binding
} {
	return []struct {
		title    string
		bindings []key.Binding
	}{
		{"Time", []key.Binding{k.PanLeft, k.PanRight, k.ZoomIn, k.ZoomOut, k.ZoomCursor, k.Reset, k.Back, k.Collapse}},
		{"Rows", []key.Binding{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom}},
		{"Inspect", []key.Binding{k.CursorLeft, k.CursorRight, k.Inspect}},
		{"Data", []key.Binding{k.Filter, k.ClearFlt, k.Import}},
		{"General", []key.Binding{k.Help, k.Quit}},
	}
}

// shortHelp is the status bar hint.
func (k keyMap) shortHelp() []key.Binding {
	return []key.Binding{k.PanLeft, k.ZoomIn, k.Collapse, k.Filter, k.Help, k.Quit}
}

// formKeyMap holds the bindings shared by the filter and import pages.
type formKeyMap struct {
	Next   key.Binding
	Prev   key.Binding
	Apply  key.Binding
	Cancel key.Binding
	NewSet key.Binding
	SetUp  key.Binding
	SetDn  key.Binding
	Clear  key.Binding
}

func defaultFormKeyMap() formKeyMap {
	return formKeyMap{
		Next:   key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("S-tab", "previous field")),
		Apply:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		NewSet: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "add OR set")),
		SetUp:  key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "previous set")),
		SetDn:  key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "next set")),
		Clear:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "clear form")),
	}
}
