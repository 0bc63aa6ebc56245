// Package report renders screening output for the terminal.
package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"us-screener/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	overboughtStyle = cellStyle.
			Foreground(lipgloss.Color("#EF4444")).
			Bold(true)

	oversoldStyle = cellStyle.
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4B5563"))
)

// Summary describes one batch run.
type Summary struct {
	Title     string
	Window    model.DateRange
	Tickers   int
	Skipped   int
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}

// WriteSummary prints a one-block run summary.
func WriteSummary(w io.Writer, s Summary) {
	fmt.Fprintln(w, titleStyle.Render(s.Title))
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return headerStyle
			}
			return cellStyle
		}).
		Row("window", s.Window.String()).
		Row("tickers", strconv.Itoa(s.Tickers)).
		Row("skipped (error set)", strconv.Itoa(s.Skipped)).
		Row("succeeded", strconv.Itoa(s.Succeeded)).
		Row("failed", strconv.Itoa(s.Failed)).
		Row("elapsed", s.Elapsed.Round(time.Millisecond).String())
	fmt.Fprintln(w, t.Render())
}

// WriteClassified prints the {Symbol, Type} table.
func WriteClassified(w io.Writer, rows []model.ClassifiedTicker) {
	if len(rows) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no overbought or oversold tickers"))
		return
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("Symbol", "Type").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 1 && rows[row].Type == model.Overbought.String():
				return overboughtStyle
			case col == 1 && rows[row].Type == model.Oversold.String():
				return oversoldStyle
			default:
				return cellStyle
			}
		})
	for _, r := range rows {
		t.Row(r.Symbol, r.Type)
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d tickers", len(rows))))
}

// WriteErrorSet prints the known-bad tickers with the time of their last failure.
func WriteErrorSet(w io.Writer, set model.ErrorSet) {
	if len(set) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("error set is empty"))
		return
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("Ticker", "Failed at").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, tk := range set.Tickers() {
		at := "unknown"
		if ts := set[tk]; !ts.IsZero() {
			at = ts.Format(time.RFC3339)
		}
		t.Row(tk, at)
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("%d tickers", len(set))))
}
