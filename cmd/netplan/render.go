package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/dd0wney/cluso-netplan/pkg/cost"
	"github.com/dd0wney/cluso-netplan/pkg/planning"
)

// Styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FFFF"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	headerCellStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF00FF")).Padding(0, 1)
	cellStyle       = lipgloss.NewStyle().Padding(0, 1)
)

func (cli *CLI) printTable(headers []string, rows [][]string) {
	renderTable(cli.out, headers, rows)
}

func renderTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(w, subtleStyle.Render("(none)"))
		return
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("63"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCellStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}

func renderStatus(s planning.Status) string {
	switch s {
	case planning.StatusOptimal:
		return okStyle.Render(string(s))
	case planning.StatusNoRoute:
		return errorStyle.Render(string(s))
	default:
		return warnStyle.Render(string(s))
	}
}

func formatAmount(a cost.Amount) string {
	if a.IsUnbounded() {
		return "∞"
	}
	return fmt.Sprintf("%.2f", float64(a))
}

func formatMbps(v float64) string {
	return fmt.Sprintf("%.0f Mbps", v)
}

// usageBar draws a ten cell gauge followed by the percentage
func usageBar(percent float64) string {
	filled := int(percent / 10)
	filled = max(0, min(filled, 10))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", 10-filled)

	style := okStyle
	switch {
	case percent > 90:
		style = errorStyle
	case percent > planning.BottleneckPercent:
		style = warnStyle
	}
	return style.Render(bar) + fmt.Sprintf(" %.1f%%", percent)
}
