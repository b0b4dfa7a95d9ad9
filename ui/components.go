package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// kv is one line of a detail box.
type kv struct {
	Key string
	Val string
}

// styledPad pads a styled string to the given visual width using spaces.
// Unlike fmt.Sprintf("%-Xs"), this accounts for ANSI escape codes.
func styledPad(styled string, width int) string {
	visW := lipgloss.Width(styled)
	if visW >= width {
		return styled
	}
	return styled + strings.Repeat(" ", width-visW)
}

// ─── BOX DRAWING HELPERS ─────────────────────────────────────────────────────

// boxTop renders the top border of a rounded box with an optional title.
func boxTop(title string, innerW int) string {
	if title == "" {
		return dimStyle.Render("╭" + strings.Repeat("─", innerW+2) + "╮")
	}
	t := " " + truncate(title, innerW-2) + " "
	fill := innerW + 1 - len([]rune(t))
	if fill < 0 {
		fill = 0
	}
	return dimStyle.Render("╭─") + headerStyle.Render(t) + dimStyle.Render(strings.Repeat("─", fill)+"╮")
}

// boxBot renders the bottom border of a rounded box.
func boxBot(innerW int) string {
	return dimStyle.Render("╰" + strings.Repeat("─", innerW+2) + "╯")
}

// boxRow renders one content line inside a box, padded to innerW.
func boxRow(content string, innerW int) string {
	visW := lipgloss.Width(content)
	pad := innerW - visW
	if pad < 0 {
		pad = 0
	}
	return dimStyle.Render("│") + " " + content + strings.Repeat(" ", pad) + " " + dimStyle.Render("│")
}

// renderKVBox renders key-value pairs inside a titled box.
func renderKVBox(title string, details []kv, innerW int) string {
	const keyW = 16
	var sb strings.Builder
	sb.WriteString(boxTop(title, innerW) + "\n")
	for _, d := range details {
		key := truncate(d.Key, keyW-2)
		content := styledPad(dimStyle.Render(key+":"), keyW) + " " +
			valueStyle.Render(truncate(d.Val, innerW-keyW-1))
		sb.WriteString(boxRow(content, innerW) + "\n")
	}
	sb.WriteString(boxBot(innerW))
	return sb.String()
}

// padRight pads s with spaces to width runes, truncating with an ellipsis
// when it is too long.
func padRight(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return truncate(s, width)
	}
	return s + strings.Repeat(" ", width-len(r))
}

// truncate shortens s to maxLen runes with ellipsis if needed.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func padLeft(s string, width int) string {
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return strings.Repeat(" ", width-len(r)) + s
}

// fmtCount formats an interval or row count with thousands separators.
func fmtCount(n int) string {
	return humanize.Comma(int64(n))
}

// fmtCountOf renders "n/total" when a filter hides part of the data.
func fmtCountOf(n, total int) string {
	if n == total {
		return fmtCount(n)
	}
	return fmt.Sprintf("%s/%s", fmtCount(n), fmtCount(total))
}
