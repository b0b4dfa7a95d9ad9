package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ftahirops/xtimeline/model"
)

var (
	// Colors
	colorRed     = lipgloss.Color("#FF5555")
	colorYellow  = lipgloss.Color("#F1FA8C")
	colorGreen   = lipgloss.Color("#50FA7B")
	colorCyan    = lipgloss.Color("#8BE9FD")
	colorMagenta = lipgloss.Color("#FF79C6")
	colorWhite   = lipgloss.Color("#F8F8F2")
	colorGray    = lipgloss.Color("#6272A4")
	colorPanel   = lipgloss.Color("#44475A")

	activePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorCyan).
				Padding(0, 1)

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	labelStyle    = lipgloss.NewStyle().Foreground(colorGray)
	valueStyle    = lipgloss.NewStyle().Foreground(colorWhite)
	warnStyle     = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	critStyle     = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(colorGreen)
	headerStyle   = lipgloss.NewStyle().Foreground(colorMagenta).Bold(true)
	selectedStyle = lipgloss.NewStyle().Background(colorPanel).Foreground(colorWhite)
	dimStyle      = lipgloss.NewStyle().Foreground(colorGray)
	cursorStyle   = lipgloss.NewStyle().Foreground(colorYellow)
)

// barStyles caches one style per classification color.
var barStyles = map[model.Color]lipgloss.Style{}

// barStyle renders interval cells in the classification color. Alpha is
// ignored; terminals have no blending.
func barStyle(c model.Color) lipgloss.Style {
	if s, ok := barStyles[c]; ok {
		return s
	}
	s := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex()))
	barStyles[c] = s
	return s
}

// stateStyle colors the lifecycle state in the header.
func stateStyle(filtered, zoomed bool) lipgloss.Style {
	switch {
	case filtered && zoomed:
		return critStyle
	case filtered:
		return warnStyle
	case zoomed:
		return headerStyle
	default:
		return okStyle
	}
}
