package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ftahirops/xtimeline/engine"
	"github.com/ftahirops/xtimeline/model"
	"github.com/ftahirops/xtimeline/util"
)

// categoryWidth is the label column reserved for the category name.
const categoryWidth = 14

// axisStep is the minimum spacing between time axis ticks, in columns.
const axisStep = 18

// pixelMapper converts between time and columns of the bar area.
type pixelMapper interface {
	TimeToPixel(t time.Time) float64
	PixelToTime(px float64) time.Time
	IntervalPixelWidth(seconds float64) float64
}

// paintCells assigns each column of the bar area the interval drawn there.
// Later intervals overwrite earlier ones. Columns are the terminal's pixels.
func paintCells(pm pixelMapper, w engine.Window, ivs []*model.Interval, width int) []*model.Interval {
	cells := make([]*model.Interval, width)
	for _, iv := range ivs {
		if !iv.Overlaps(w.Start, w.Stop) {
			continue
		}
		start := int(math.Floor(pm.TimeToPixel(iv.From)))
		n := int(math.Round(pm.IntervalPixelWidth(iv.Duration)))
		if n < 1 {
			n = 1
		}
		end := start + n
		if start < 0 {
			start = 0
		}
		if end > width {
			end = width
		}
		for x := start; x < end; x++ {
			cells[x] = iv
		}
	}
	return cells
}

// renderBar draws one timeline row. cursor is the highlighted column, or -1.
func renderBar(cells []*model.Interval, cursor int) string {
	var sb strings.Builder
	for x := 0; x < len(cells); {
		iv := cells[x]
		run := 1
		for x+run < len(cells) && cells[x+run] == iv && x+run != cursor && x != cursor {
			run++
		}
		switch {
		case x == cursor && iv == nil:
			sb.WriteString(cursorStyle.Render("│"))
		case x == cursor:
			sb.WriteString(barStyle(iv.Classification.Color).Render("▓"))
		case iv == nil:
			sb.WriteString(strings.Repeat(" ", run))
		default:
			sb.WriteString(barStyle(iv.Classification.Color).Render(strings.Repeat("█", run)))
		}
		x += run
	}
	return sb.String()
}

// axisLayout picks a tick label format for the visible span.
func axisLayout(span time.Duration) string {
	switch {
	case span > 24*time.Hour:
		return "01-02 15:04"
	case span > 2*time.Minute:
		return "15:04:05"
	default:
		return "15:04:05.000"
	}
}

// renderAxis draws tick marks and times across the bar area.
func renderAxis(pm pixelMapper, w engine.Window, width int) string {
	line := []rune(strings.Repeat(" ", width))
	layout := axisLayout(w.Span())
	for col := 0; col < width; col += axisStep {
		label := "┆" + pm.PixelToTime(float64(col)).UTC().Format(layout)
		lr := []rune(label)
		if col+len(lr) > width {
			break
		}
		copy(line[col:], lr)
	}
	return dimStyle.Render(string(line))
}

// rowLabel renders the category and timeline key columns. The category is
// only printed on the first row of each category.
func rowLabel(key model.GroupKey, firstOfCategory bool, width int) string {
	cat := ""
	if firstOfCategory {
		cat = string(key.Category)
	}
	name := key.TimelineKey
	if name == "" {
		name = "-"
	}
	keyW := width - categoryWidth - 1
	if keyW < 1 {
		return padRight(name, width)
	}
	return padRight(cat, categoryWidth) + " " + padRight(name, keyW)
}

// renderLegend lists classifications with their colors, wrapped to width
// and limited to maxLines.
func renderLegend(classes []model.Classification, width, maxLines int) []string {
	var lines []string
	var cur strings.Builder
	curW := 0
	for _, c := range classes {
		item := barStyle(c.Color).Render("█") + " " + c.Name
		itemW := len([]rune(c.Name)) + 2
		if curW > 0 && curW+2+itemW > width {
			lines = append(lines, cur.String())
			if len(lines) == maxLines {
				return lines
			}
			cur.Reset()
			curW = 0
		}
		if curW > 0 {
			cur.WriteString("  ")
			curW += 2
		}
		cur.WriteString(item)
		curW += itemW
	}
	if curW > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

// renderDetail describes the intervals under the cursor.
func renderDetail(ivs []*model.Interval, at time.Time, innerW, maxItems int) string {
	title := fmt.Sprintf("At %s", at.UTC().Format("2006-01-02 15:04:05.000"))
	if len(ivs) == 0 {
		return renderKVBox(title, []kv{{"Intervals", "none"}}, innerW)
	}
	var boxes []string
	for i, iv := range ivs {
		if i == maxItems {
			boxes = append(boxes, dimStyle.Render(fmt.Sprintf("  ... %d more", len(ivs)-maxItems)))
			break
		}
		details := []kv{
			{"Classification", iv.Classification.Name},
			{"Category", string(iv.Category)},
			{"From", iv.From.UTC().Format(time.RFC3339Nano)},
			{"To", iv.To.UTC().Format(time.RFC3339Nano)},
			{"Duration", util.FormatSeconds(iv.Duration)},
			{"Source", iv.Source},
			{"Locator", iv.Locator.String()},
		}
		if msg := iv.MessageText(); msg != "" {
			details = append(details, kv{"Message", msg})
		}
		if iv.Message.Reason != "" {
			details = append(details, kv{"Reason", iv.Message.Reason})
		}
		boxes = append(boxes, renderKVBox(title, details, innerW))
		title = ""
	}
	return strings.Join(boxes, "\n")
}
