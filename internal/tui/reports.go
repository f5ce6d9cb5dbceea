package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/workway/internal/income"
)

type reportsModel struct {
	env    *env
	width  int
	height int

	year     int
	totals   [12]float64
	currency string

	chart barchart.Model
}

func newReportsModel(e *env, now time.Time) reportsModel {
	return reportsModel{
		env:      e,
		year:     now.Year(),
		currency: "RUB",
		chart:    barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type reportsDataMsg struct {
	year     int
	totals   [12]float64
	currency string
	err      error
}

func (r reportsModel) refresh() tea.Cmd {
	e, year := r.env, r.year
	return func() tea.Msg {
		totals, err := e.shifts.MonthTotals(year)
		if err != nil {
			return reportsDataMsg{err: err}
		}
		return reportsDataMsg{year: year, totals: totals, currency: e.currency()}
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		if msg.err != nil {
			return r, func() tea.Msg { return errStatus("Load report", msg.err) }
		}
		if msg.year != r.year {
			return r, nil
		}
		r.totals = msg.totals
		r.currency = msg.currency
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.year--
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			r.year++
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 24 {
		chartWidth = 24
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	style := lipgloss.NewStyle().Foreground(colorPrimary)
	var bars []barchart.BarData
	for i, total := range r.totals {
		label := r.env.shifts.MonthName(i + 1)
		if len([]rune(label)) > 3 {
			label = string([]rune(label)[:3])
		}
		bars = append(bars, barchart.BarData{
			Label:  label,
			Values: []barchart.BarValue{{Name: label, Value: max(total, 0), Style: style}},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) yearTotal() float64 {
	var sum float64
	for _, t := range r.totals {
		sum += t
	}
	return sum
}

func (r reportsModel) view() string {
	w := r.width - 4

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Income"), "  ", highlightStyle.Render(fmt.Sprintf("%d", r.year)),
	)

	var rows []string
	for i, total := range r.totals {
		if total == 0 {
			continue
		}
		rows = append(rows, fmt.Sprintf("  %-12s %14s", r.env.shifts.MonthName(i+1), income.FormatMoney(total)))
	}
	table := mutedStyle.Render("  No shifts this year")
	if len(rows) > 0 {
		rows = append(rows, "  "+strings.Repeat("─", max(0, min(w-6, 27))))
		rows = append(rows, fmt.Sprintf("  %-12s %14s", "Total",
			amountStyle.Render(income.FormatMoney(r.yearTotal())+" "+r.currency)))
		table = strings.Join(rows, "\n")
	}

	nav := mutedStyle.Render("  ←/→: year")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", r.chart.View(), "", table, "", nav),
	)
}
