package ui

import (
	"github.com/nconklindev/pricesheet/internal/types"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	accent    = lipgloss.Color("#2BB673")
	highlight = lipgloss.Color("#8CE0B1")
	muted     = lipgloss.Color("#6B7280")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			MarginTop(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(muted).
			MarginBottom(1)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	UnselectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF4757")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(highlight).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(muted).
			MarginTop(1)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2)

	headerCellStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1)
	cellStyle       = lipgloss.NewStyle().Padding(0, 1)
)

const previewCellWidth = 24

// renderPreview draws the header and sample rows of a file as a table.
func renderPreview(data *types.FileData, width int) string {
	rows := make([][]string, 0, len(data.Rows))
	for _, r := range data.Rows {
		cells := make([]string, len(r))
		for i, c := range r {
			cells[i] = truncate(c, previewCellWidth)
		}
		rows = append(rows, cells)
	}

	headers := make([]string, 3)
	for i := range headers {
		if i < len(data.Headers) {
			headers[i] = truncate(data.Headers[i], previewCellWidth)
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(muted)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCellStyle
			}
			return cellStyle
		})
	if width > 20 {
		t = t.Width(width)
	}
	return t.String()
}

// renderStats draws run statistics as a two column table.
func renderStats(stats types.Stats) string {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return cellStyle.Foreground(muted)
			}
			return cellStyle.Bold(true)
		})
	for _, l := range stats.Lines() {
		t = t.Row(l.Label, l.Value)
	}
	return t.String()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
