package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ftahirops/xtimeline/classify"
	"github.com/ftahirops/xtimeline/engine"
	"github.com/ftahirops/xtimeline/model"
	"github.com/ftahirops/xtimeline/util"
)

// writeSummary renders a Markdown report of the visible grouping.
func writeSummary(w io.Writer, c *engine.Coordinator) error {
	var sb strings.Builder
	win := c.Window()
	g := c.Grouping()

	sb.WriteString("# xtimeline summary\n\n")
	sb.WriteString(fmt.Sprintf("**Window:** %s → %s (%s)\n\n",
		win.Start.UTC().Format(time.RFC3339), win.Stop.UTC().Format(time.RFC3339), util.FormatSpan(win.Span())))
	sb.WriteString(fmt.Sprintf("**State:** %s", c.State()))
	if c.Collapsed() {
		sb.WriteString(" (collapsed)")
	}
	sb.WriteString("\n\n")
	if f := c.Filter(); f != "" {
		sb.WriteString(fmt.Sprintf("**Filter:** `%s`\n\n", f))
	}
	sb.WriteString(fmt.Sprintf("**Intervals:** %s of %s in %s timelines\n",
		humanize.Comma(int64(g.Count())), humanize.Comma(int64(c.Total())), humanize.Comma(int64(g.Len()))))

	for _, cat := range c.Categories() {
		keys := c.TimelinesFor(cat)
		sb.WriteString(fmt.Sprintf("\n## %s\n\n", cat))
		sb.WriteString("| Timeline | Intervals | First | Last | Classifications |\n")
		sb.WriteString("|----------|-----------|-------|------|-----------------|\n")
		for _, key := range keys {
			ivs := c.Intervals(cat, key)
			name := key
			if name == "" {
				name = "-"
			}
			first, last := span(ivs)
			sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s |\n",
				name, len(ivs), first.UTC().Format("15:04:05"), last.UTC().Format("15:04:05"), classCounts(ivs)))
		}
	}

	if classes := c.Classifications(); len(classes) > 0 {
		sb.WriteString("\n## Legend\n\n")
		for _, cl := range classes {
			sb.WriteString(fmt.Sprintf("- %s `%s` (%s)\n", cl.Name, cl.Color.Hex(), cl.Category))
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// writeClasses lists every classification the engine can assign, in rule
// order.
func writeClasses(w io.Writer, e *classify.Engine) error {
	var sb strings.Builder
	sb.WriteString("| Classification | Category | Color |\n")
	sb.WriteString("|----------------|----------|-------|\n")
	for _, cl := range e.Classifications() {
		sb.WriteString(fmt.Sprintf("| %s | %s | `%s` |\n", cl.Name, cl.Category, cl.Color.Hex()))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// span returns the earliest start and latest end of ivs.
func span(ivs []*model.Interval) (first, last time.Time) {
	for i, iv := range ivs {
		if i == 0 || iv.From.Before(first) {
			first = iv.From
		}
		if iv.To.After(last) {
			last = iv.To
		}
	}
	return first, last
}

// classCounts renders "Name×n" pairs, most frequent first.
func classCounts(ivs []*model.Interval) string {
	counts := map[string]int{}
	for _, iv := range ivs {
		counts[iv.Classification.Name]++
	}
	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s×%d", n, counts[n])
	}
	return strings.Join(parts, ", ")
}

type jsonWindow struct {
	Start time.Time `json:"start"`
	Stop  time.Time `json:"stop"`
}

type jsonInterval struct {
	Classification string            `json:"classification"`
	Color          string            `json:"color"`
	Source         string            `json:"source,omitempty"`
	Locator        string            `json:"locator,omitempty"`
	Message        string            `json:"message,omitempty"`
	Reason         string            `json:"reason,omitempty"`
	Annotations    map[string]string `json:"annotations,omitempty"`
	From           time.Time         `json:"from"`
	To             time.Time         `json:"to"`
	Duration       float64           `json:"duration"`
}

type jsonTimeline struct {
	Key       string         `json:"key"`
	Intervals []jsonInterval `json:"intervals"`
}

type jsonCategory struct {
	Category  model.Category `json:"category"`
	Timelines []jsonTimeline `json:"timelines"`
}

type jsonReport struct {
	Window     jsonWindow     `json:"window"`
	Bounds     jsonWindow     `json:"bounds"`
	State      string         `json:"state"`
	Filter     string         `json:"filter,omitempty"`
	Collapsed  bool           `json:"collapsed"`
	Total      int            `json:"total"`
	Shown      int            `json:"shown"`
	Categories []jsonCategory `json:"categories"`
}

// writeJSON encodes the visible grouping.
func writeJSON(w io.Writer, c *engine.Coordinator) error {
	win, abs := c.Window(), c.Bounds()
	rep := jsonReport{
		Window:     jsonWindow{Start: win.Start.UTC(), Stop: win.Stop.UTC()},
		Bounds:     jsonWindow{Start: abs.Start.UTC(), Stop: abs.Stop.UTC()},
		State:      c.State().String(),
		Filter:     c.Filter(),
		Collapsed:  c.Collapsed(),
		Total:      c.Total(),
		Shown:      c.Grouping().Count(),
		Categories: []jsonCategory{},
	}
	for _, cat := range c.Categories() {
		jc := jsonCategory{Category: cat}
		for _, key := range c.TimelinesFor(cat) {
			jt := jsonTimeline{Key: key}
			for _, iv := range c.Intervals(cat, key) {
				jt.Intervals = append(jt.Intervals, jsonInterval{
					Classification: iv.Classification.Name,
					Color:          iv.Classification.Color.Hex(),
					Source:         iv.Source,
					Locator:        iv.Locator.String(),
					Message:        iv.MessageText(),
					Reason:         iv.Message.Reason,
					Annotations:    iv.Message.Annotations,
					From:           iv.From.UTC(),
					To:             iv.To.UTC(),
					Duration:       iv.Duration,
				})
			}
			jc.Timelines = append(jc.Timelines, jt)
		}
		rep.Categories = append(rep.Categories, jc)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
