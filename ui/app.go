package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ftahirops/xtimeline/config"
	"github.com/ftahirops/xtimeline/engine"
	"github.com/ftahirops/xtimeline/filter"
	"github.com/ftahirops/xtimeline/ingest"
	"github.com/ftahirops/xtimeline/model"
	"github.com/ftahirops/xtimeline/util"
)

// Page identifies the current screen.
type Page int

const (
	PageTimelines Page = iota
	PageFilter
	PageImport
	PageHelp
)

// pollInterval is how often finished loads are handed to the coordinator.
const pollInterval = 250 * time.Millisecond

// statusTTL is how long a status message stays in the status bar.
const statusTTL = 10 * time.Second

// Fixed layout rows: header, axis and status bar.
const (
	chromeRows    = 3
	legendRows    = 2
	detailRows    = 12
	detailItems   = 1
	minBarWidth   = 10
	minLabelWidth = 20
)

type tickMsg time.Time

// Model is the bubbletea model.
type Model struct {
	coord  *engine.Coordinator
	loader *ingest.Loader
	ctx    context.Context
	cfg    config.Config

	keys     keyMap
	formKeys formKeyMap

	width  int
	height int
	page   Page

	// Navigation
	top     int // first visible row
	row     int // selected row
	cursor  int // column in the bar area
	inspect bool
	rows    *rowTracker

	// Filter page state
	form    *filter.Form
	formSet int
	inputs  []textinput.Model // one per form field, then the raw expression
	focus   int
	formErr string

	importInput textinput.Model

	// Status feedback
	statusMsg  string
	statusErr  bool
	statusTime time.Time
}

// NewModel creates the viewer. loader may be nil when imports are disabled.
func NewModel(ctx context.Context, coord *engine.Coordinator, loader *ingest.Loader, cfg config.Config) Model {
	m := Model{
		coord:    coord,
		loader:   loader,
		ctx:      ctx,
		cfg:      cfg,
		keys:     defaultKeyMap(),
		formKeys: defaultFormKeyMap(),
		form:     filter.NewForm(),
		rows:     &rowTracker{shown: coord.Grouping()},
	}
	coord.AddListener(m.rows)
	for _, name := range filter.FormFields {
		m.inputs = append(m.inputs, newInput(name))
	}
	expr := newInput("full expression, overrides the fields above")
	expr.SetValue(coord.Filter())
	m.inputs = append(m.inputs, expr)

	m.importInput = newInput("https://... or a file path")
	m.importInput.CharLimit = 2048
	return m
}

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = 512
	ti.Width = 60
	return ti
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// ─── LAYOUT ─────────────────────────────────────────────────────────────────

func (m Model) labelWidth() int {
	w := m.cfg.LabelWidth
	if w < minLabelWidth {
		w = minLabelWidth
	}
	if m.width > 0 && w > m.width/2 {
		w = m.width / 2
	}
	return w
}

func (m Model) barWidth() int {
	w := m.width - m.labelWidth() - 1
	if w < minBarWidth {
		w = minBarWidth
	}
	return w
}

// rowsHeight is the number of timeline rows that fit on screen.
func (m Model) rowsHeight() int {
	h := m.height - chromeRows - legendRows
	if m.inspect {
		h -= detailRows
	}
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusErr = isErr
	m.statusTime = time.Now()
}

// ─── UPDATE ─────────────────────────────────────────────────────────────────

// rowTracker is registered with the coordinator. It remembers the grouping
// that top and row index into, and whether the coordinator has refreshed
// since.
type rowTracker struct {
	shown   *engine.Grouping
	pending bool
}

// Refreshed implements engine.Listener.
func (r *rowTracker) Refreshed(*engine.Coordinator) { r.pending = true }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.followRefresh()
	return next, cmd
}

// followRefresh re-anchors top and row after the coordinator rebuilt its
// grouping, so the same timelines stay on screen.
func (m *Model) followRefresh() {
	if !m.rows.pending {
		return
	}
	g := m.coord.Grouping()
	m.top = g.AnchorRow(m.rows.shown, m.top)
	m.row = g.AnchorRow(m.rows.shown, m.row)
	m.rows.shown, m.rows.pending = g, false
	m.ensureVisible()
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.coord.SetVisiblePixelWidth(float64(m.barWidth()))
		m.clampCursor()
		m.ensureVisible()
		return m, nil
	case tickMsg:
		m.drain()
		return m, tick()
	case tea.MouseMsg:
		if m.page == PageTimelines {
			m.handleMouse(msg)
		}
		return m, nil
	case tea.KeyMsg:
		switch m.page {
		case PageHelp:
			m.page = PageTimelines
			return m, nil
		case PageFilter:
			return m.updateFilter(msg)
		case PageImport:
			return m.updateImport(msg)
		}
		return m.updateTimelines(msg)
	}

	// Blink and other input messages go to the focused field.
	var cmd tea.Cmd
	switch m.page {
	case PageFilter:
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	case PageImport:
		m.importInput, cmd = m.importInput.Update(msg)
	}
	return m, cmd
}

// drain hands finished background loads to the coordinator.
func (m *Model) drain() {
	if m.loader == nil {
		return
	}
	batches, errs := m.loader.Take()
	if len(batches) > 0 {
		res := m.coord.Load(batches...)
		m.setStatus(fmt.Sprintf("loaded %s intervals from %d source(s), %d dropped",
			fmtCount(res.Accepted), res.Batches, res.Dropped), false)
	}
	if len(errs) > 0 {
		m.setStatus(errs[len(errs)-1].Error(), true)
	}
}

func (m Model) rowKey(i int) model.GroupKey {
	if tl := m.coord.Grouping().Timeline(i); tl != nil {
		return tl.Key
	}
	return model.GroupKey{}
}

func (m *Model) ensureVisible() {
	n := m.coord.Grouping().Len()
	if m.row >= n {
		m.row = n - 1
	}
	if m.row < 0 {
		m.row = 0
	}
	h := m.rowsHeight()
	if m.row < m.top {
		m.top = m.row
	}
	if m.row >= m.top+h {
		m.top = m.row - h + 1
	}
	if m.top > n-h {
		m.top = n - h
	}
	if m.top < 0 {
		m.top = 0
	}
}

func (m *Model) clampCursor() {
	if m.cursor >= m.barWidth() {
		m.cursor = m.barWidth() - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) updateTimelines(msg tea.KeyMsg) (Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.Help):
		m.page = PageHelp
	case key.Matches(msg, k.PanLeft):
		m.coord.Pan(-m.cfg.PanFraction)
	case key.Matches(msg, k.PanRight):
		m.coord.Pan(m.cfg.PanFraction)
	case key.Matches(msg, k.ZoomIn):
		m.coord.ZoomBy(m.cfg.ZoomFraction)
	case key.Matches(msg, k.ZoomOut):
		m.coord.ZoomBy(-m.cfg.ZoomFraction)
	case key.Matches(msg, k.ZoomCursor):
		m.zoomOnCursor()
	case key.Matches(msg, k.Reset):
		m.coord.ResetZoom()
	case key.Matches(msg, k.Back):
		if _, ok := m.coord.Back(); !ok {
			m.setStatus("no earlier zoom", false)
		}
	case key.Matches(msg, k.Collapse):
		m.coord.SetCollapse(!m.coord.Collapsed())
	case key.Matches(msg, k.Up):
		m.row--
		m.ensureVisible()
	case key.Matches(msg, k.Down):
		m.row++
		m.ensureVisible()
	case key.Matches(msg, k.PageUp):
		m.row -= m.rowsHeight()
		m.ensureVisible()
	case key.Matches(msg, k.PageDown):
		m.row += m.rowsHeight()
		m.ensureVisible()
	case key.Matches(msg, k.Top):
		m.row = 0
		m.ensureVisible()
	case key.Matches(msg, k.Bottom):
		m.row = m.coord.Grouping().Len() - 1
		m.ensureVisible()
	case key.Matches(msg, k.CursorLeft):
		m.cursor--
		m.clampCursor()
	case key.Matches(msg, k.CursorRight):
		m.cursor++
		m.clampCursor()
	case key.Matches(msg, k.Inspect):
		m.inspect = !m.inspect
		m.ensureVisible()
	case key.Matches(msg, k.Filter):
		m.page = PageFilter
		m.formErr = ""
		m.loadFormSet()
		return m, m.focusInput(0)
	case key.Matches(msg, k.ClearFlt):
		if err := m.coord.SetFilter(""); err == nil {
			m.inputs[len(m.inputs)-1].SetValue("")
			m.setStatus("filter cleared", false)
		}
	case key.Matches(msg, k.Import):
		if m.loader == nil {
			m.setStatus("import is not available", true)
			break
		}
		m.page = PageImport
		m.importInput.SetValue("")
		return m, m.importInput.Focus()
	}
	return m, nil
}

// zoomOnCursor narrows the window to a quarter of its span around the
// cursor.
func (m *Model) zoomOnCursor() {
	if m.coord.Ready() != nil {
		return
	}
	at := m.coord.PixelToTime(float64(m.cursor) + 0.5)
	half := m.coord.Window().Span() / 8
	m.coord.Zoom(at.Add(-half), at.Add(half), m.coord.Collapsed())
	m.cursor = m.barWidth() / 2
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if msg.Ctrl {
			m.coord.ZoomBy(m.cfg.ZoomFraction)
			return
		}
		m.row--
		m.ensureVisible()
	case tea.MouseButtonWheelDown:
		if msg.Ctrl {
			m.coord.ZoomBy(-m.cfg.ZoomFraction)
			return
		}
		m.row++
		m.ensureVisible()
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return
		}
		// Rows start below the header and the axis.
		if r := msg.Y - 2; r >= 0 && r < m.rowsHeight() {
			m.row = m.top + r
			m.ensureVisible()
		}
		if x := msg.X - m.labelWidth() - 1; x >= 0 {
			m.cursor = x
			m.clampCursor()
		}
	}
}

// ─── FILTER PAGE ────────────────────────────────────────────────────────────

func (m *Model) focusInput(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = (i + len(m.inputs)) % len(m.inputs)
	return m.inputs[m.focus].Focus()
}

// storeFormSet copies the field inputs into the current form set.
func (m *Model) storeFormSet() {
	for i, name := range filter.FormFields {
		m.form.Set(m.formSet, name, m.inputs[i].Value())
	}
}

// loadFormSet copies the current form set into the field inputs.
func (m *Model) loadFormSet() {
	for i, name := range filter.FormFields {
		m.inputs[i].SetValue(m.form.Get(m.formSet, name))
	}
}

func (m *Model) switchSet(i int) {
	m.storeFormSet()
	if i < 0 || i >= len(m.form.Sets) {
		return
	}
	m.formSet = i
	m.loadFormSet()
}

// pendingExpression is what applying the filter page would set.
func (m *Model) pendingExpression() string {
	if raw := strings.TrimSpace(m.inputs[len(m.inputs)-1].Value()); raw != "" {
		return raw
	}
	m.storeFormSet()
	return m.form.Expression()
}

func (m Model) updateFilter(msg tea.KeyMsg) (Model, tea.Cmd) {
	k := m.formKeys
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, k.Cancel):
		m.storeFormSet()
		m.inputs[m.focus].Blur()
		m.page = PageTimelines
		return m, nil
	case key.Matches(msg, k.Next):
		return m, m.focusInput(m.focus + 1)
	case key.Matches(msg, k.Prev):
		return m, m.focusInput(m.focus - 1)
	case key.Matches(msg, k.NewSet):
		m.storeFormSet()
		m.form.Sets = append(m.form.Sets, filter.FieldSet{})
		m.formSet = len(m.form.Sets) - 1
		m.loadFormSet()
		return m, m.focusInput(0)
	case key.Matches(msg, k.SetUp):
		m.switchSet(m.formSet - 1)
		return m, nil
	case key.Matches(msg, k.SetDn):
		m.switchSet(m.formSet + 1)
		return m, nil
	case key.Matches(msg, k.Clear):
		m.form = filter.NewForm()
		m.formSet = 0
		m.loadFormSet()
		m.inputs[len(m.inputs)-1].SetValue("")
		m.formErr = ""
		return m, nil
	case key.Matches(msg, k.Apply):
		expr := m.pendingExpression()
		if err := m.coord.SetFilter(expr); err != nil {
			m.formErr = err.Error()
			return m, nil
		}
		m.formErr = ""
		m.inputs[m.focus].Blur()
		m.page = PageTimelines
		if expr == "" {
			m.setStatus("filter cleared", false)
		} else {
			m.setStatus("filter: "+expr, false)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// ─── IMPORT PAGE ────────────────────────────────────────────────────────────

func (m Model) updateImport(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	case key.Matches(msg, m.formKeys.Cancel):
		m.importInput.Blur()
		m.page = PageTimelines
		return m, nil
	case key.Matches(msg, m.formKeys.Apply):
		src := strings.TrimSpace(m.importInput.Value())
		if src == "" {
			m.setStatus("nothing to import", true)
			return m, nil
		}
		m.loader.Start(m.ctx, src)
		m.importInput.Blur()
		m.page = PageTimelines
		m.setStatus("loading "+src, false)
		return m, nil
	}
	var cmd tea.Cmd
	m.importInput, cmd = m.importInput.Update(msg)
	return m, cmd
}

// ─── VIEW ───────────────────────────────────────────────────────────────────

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	var content string
	switch m.page {
	case PageHelp:
		content = m.renderHelp()
	case PageFilter:
		content = m.renderFilterPage()
	case PageImport:
		content = m.renderImportPage()
	default:
		content = m.renderTimelines()
	}

	lines := strings.Split(content, "\n")
	if maxLines := m.height - 1; maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	for len(lines) < m.height-1 {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n") + "\n" + m.renderStatusBar()
}

func (m Model) renderHeader() string {
	w := m.coord.Window()
	state := m.coord.State()
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("xtimeline"))
	if !w.IsZero() {
		sb.WriteString("  ")
		sb.WriteString(valueStyle.Render(w.Start.UTC().Format("2006-01-02 15:04:05")))
		sb.WriteString(dimStyle.Render(" → "))
		sb.WriteString(valueStyle.Render(w.Stop.UTC().Format("2006-01-02 15:04:05")))
		sb.WriteString(dimStyle.Render(" (" + util.FormatSpan(w.Span()) + ")"))
	}
	filtered := state == engine.StateFiltered || state == engine.StateFilteredAndZoomed
	zoomed := state == engine.StateZoomed || state == engine.StateFilteredAndZoomed
	sb.WriteString("  " + stateStyle(filtered, zoomed).Render(state.String()))
	if m.coord.Collapsed() {
		sb.WriteString(" " + warnStyle.Render("collapsed"))
	}
	return sb.String()
}

func (m Model) renderTimelines() string {
	var sb strings.Builder
	sb.WriteString(m.renderHeader() + "\n")

	if m.coord.Ready() != nil {
		sb.WriteString("\n")
		sb.WriteString(dimStyle.Render("  No intervals loaded.") + "\n")
		if m.loader != nil {
			if st := m.loader.Status(); st.Busy() {
				sb.WriteString(warnStyle.Render(fmt.Sprintf("  Loading %d source(s)...", st.Pending)) + "\n")
			}
			sb.WriteString(dimStyle.Render("  Press i to import a URL or file, ? for help, q to quit.") + "\n")
		}
		return sb.String()
	}

	labelW, barW := m.labelWidth(), m.barWidth()
	win := m.coord.Window()
	sb.WriteString(strings.Repeat(" ", labelW+1) + renderAxis(m.coord, win, barW) + "\n")

	g := m.coord.Grouping()
	h := m.rowsHeight()
	for i := m.top; i < m.top+h; i++ {
		tl := g.Timeline(i)
		if tl == nil {
			sb.WriteString("\n")
			continue
		}
		first := i == m.top || g.Timeline(i-1).Key.Category != tl.Key.Category
		label := rowLabel(tl.Key, first, labelW)
		if i == m.row {
			label = selectedStyle.Render(label)
		}
		cursor := -1
		if i == m.row || m.inspect {
			cursor = m.cursor
		}
		cells := paintCells(m.coord, win, tl.Intervals, barW)
		sb.WriteString(label + " " + renderBar(cells, cursor) + "\n")
	}

	legend := renderLegend(m.coord.Classifications(), m.width, legendRows)
	for i := 0; i < legendRows; i++ {
		if i < len(legend) {
			sb.WriteString(legend[i])
		}
		sb.WriteString("\n")
	}

	if m.inspect {
		at := m.coord.PixelToTime(float64(m.cursor) + 0.5)
		ivs := m.coord.IntervalsAt(m.rowKey(m.row), at)
		sb.WriteString(renderDetail(ivs, at, m.width-4, detailItems))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (m Model) renderStatusBar() string {
	var parts []string
	g := m.coord.Grouping()
	parts = append(parts, fmt.Sprintf("%s intervals", fmtCountOf(g.Count(), m.coord.Total())))
	parts = append(parts, fmt.Sprintf("%s rows", fmtCount(g.Len())))
	if g.Len() > 0 {
		parts = append(parts, fmt.Sprintf("row %d", m.row+1))
	}
	if f := m.coord.Filter(); f != "" {
		parts = append(parts, "filter: "+truncate(f, 40))
	}
	if m.loader != nil {
		if st := m.loader.Status(); st.Busy() {
			parts = append(parts, warnStyle.Render(fmt.Sprintf("loading %d", st.Pending)))
		}
	}
	left := dimStyle.Render(strings.Join(parts, " · "))

	if m.statusMsg != "" && time.Since(m.statusTime) < statusTTL {
		style := okStyle
		if m.statusErr {
			style = critStyle
		}
		left += "  " + style.Render(truncate(m.statusMsg, m.width/2))
	}

	var hints []string
	for _, b := range m.keys.shortHelp() {
		hints = append(hints, b.Help().Key+" "+b.Help().Desc)
	}
	right := dimStyle.Render(strings.Join(hints, "  "))
	if gap := m.width - lipgloss.Width(left) - lipgloss.Width(right); gap > 0 {
		return left + strings.Repeat(" ", gap) + right
	}
	return left
}

func (m Model) renderHelp() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("xtimeline — interval timeline viewer"))
	sb.WriteString("\n\n")
	for _, grp := range m.keys.helpGroups() {
		sb.WriteString(headerStyle.Render(grp.title) + "\n")
		for _, b := range grp.bindings {
			sb.WriteString("  " + padRight(b.Help().Key, 10) + " " + b.Help().Desc + "\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(headerStyle.Render("Filter expressions") + "\n")
	for _, line := range []string{
		`  category == Pod & key.namespace contains "kube"`,
		`  classification contains fail | not (source == Alert)`,
		`  duration > 60 & annotation.severity is not null`,
		`  fields: category classification source locator timeline message`,
		`          reason cause type duration key.<name> annotation.<name>`,
	} {
		sb.WriteString(dimStyle.Render(line) + "\n")
	}
	sb.WriteString("\n" + dimStyle.Render("Press any key to return"))
	return sb.String()
}

func (m Model) renderFilterPage() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("FILTER"))
	sb.WriteString(dimStyle.Render(fmt.Sprintf("  set %d of %d (sets are OR'd, fields AND'd)", m.formSet+1, len(m.form.Sets))))
	sb.WriteString("\n\n")

	for i, name := range filter.FormFields {
		sb.WriteString(m.formLine(i, name) + "\n")
	}
	sb.WriteString("\n" + m.formLine(len(m.inputs)-1, "Expression") + "\n\n")

	preview := m.pendingExpression()
	if preview == "" {
		preview = "(no filter)"
	}
	sb.WriteString(labelStyle.Render("  → ") + valueStyle.Render(truncate(preview, m.width-6)) + "\n")
	if m.formErr != "" {
		sb.WriteString(critStyle.Render("  "+m.formErr) + "\n")
	}
	sb.WriteString("\n")

	k := m.formKeys
	var hints []string
	for _, b := range []key.Binding{k.Apply, k.Next, k.NewSet, k.SetUp, k.SetDn, k.Clear, k.Cancel} {
		hints = append(hints, b.Help().Key+" "+b.Help().Desc)
	}
	sb.WriteString(dimStyle.Render("  " + strings.Join(hints, " · ")))
	return sb.String()
}

func (m Model) formLine(i int, name string) string {
	label := styledPad(labelStyle.Render("  "+name), 18)
	if i == m.focus {
		label = styledPad(headerStyle.Render("▸ "+name), 18)
	}
	return label + m.inputs[i].View()
}

func (m Model) renderImportPage() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("IMPORT") + "\n\n")
	sb.WriteString(dimStyle.Render("  Interval document ({\"items\": [...]}) or audit log, by URL or path.") + "\n\n")
	box := activePanelStyle.Width(m.width - 6).Render(m.importInput.View())
	for _, line := range strings.Split(box, "\n") {
		sb.WriteString("  " + line + "\n")
	}
	if st := m.loader.Status(); st.Busy() || st.Failed > 0 {
		sb.WriteString(fmt.Sprintf("\n  pending %d · loaded %d · failed %d\n", st.Pending, st.Loaded, st.Failed))
	}
	sb.WriteString("\n" + dimStyle.Render("  enter load · esc cancel"))
	return sb.String()
}
