package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/workway/internal/income"
	"github.com/sadopc/workway/internal/input"
	"github.com/sadopc/workway/internal/shifts"
	"github.com/sadopc/workway/internal/store"
)

type shiftsModel struct {
	env    *env
	width  int
	height int

	year   int
	month  int
	works  []store.Work
	totals map[int64]income.Result
	months []shifts.Month
	cursor int

	formActive bool
	form       *huh.Form
	fields     *shiftFields
	editing    *store.Work
	rates      []store.Rate
	bonuses    []store.Bonus
	currency   string
	formErr    string
}

func newShiftsModel(e *env, now time.Time) shiftsModel {
	return shiftsModel{
		env:      e,
		year:     now.Year(),
		month:    int(now.Month()),
		totals:   map[int64]income.Result{},
		currency: "RUB",
	}
}

func (m *shiftsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type shiftsDataMsg struct {
	works    []store.Work
	totals   map[int64]income.Result
	months   []shifts.Month
	currency string
	err      error
}

func (m shiftsModel) refresh() tea.Cmd {
	e, year, month := m.env, m.year, m.month
	return func() tea.Msg {
		works, err := e.shifts.GetWorks(year, month)
		if err != nil {
			return shiftsDataMsg{err: err}
		}
		totals := make(map[int64]income.Result, len(works))
		for i := range works {
			res, err := e.shifts.Breakdown(&works[i])
			if err != nil {
				return shiftsDataMsg{err: err}
			}
			totals[works[i].ID] = res
		}
		_, months, err := e.shifts.FiltersData(year)
		if err != nil {
			return shiftsDataMsg{err: err}
		}
		return shiftsDataMsg{works: works, totals: totals, months: months, currency: e.currency()}
	}
}

func (m shiftsModel) update(msg tea.Msg) (shiftsModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case shiftsDataMsg:
		if msg.err != nil {
			return m, func() tea.Msg { return errStatus("Load shifts", msg.err) }
		}
		m.works = msg.works
		m.totals = msg.totals
		m.months = msg.months
		m.currency = msg.currency
		m.cursor = clampCursor(m.cursor, len(m.works))
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.works)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Left):
			m.shiftMonth(-1)
			return m, m.refresh()
		case key.Matches(msg, keys.Right):
			m.shiftMonth(1)
			return m, m.refresh()
		case key.Matches(msg, keys.New):
			return m.showForm(nil)
		case key.Matches(msg, keys.Edit), key.Matches(msg, keys.Enter):
			if len(m.works) > 0 {
				w := m.works[m.cursor]
				return m.showForm(&w)
			}
		case key.Matches(msg, keys.Delete):
			if len(m.works) > 0 {
				return m, m.deleteWork(m.works[m.cursor])
			}
		}
	}
	return m, nil
}

// shiftMonth moves the visible month by delta, rolling the year over.
func (m *shiftsModel) shiftMonth(delta int) {
	t := time.Date(m.year, time.Month(m.month)+time.Month(delta), 1, 0, 0, 0, 0, time.Local)
	m.year = t.Year()
	m.month = int(t.Month())
	m.cursor = 0
}

func (m shiftsModel) deleteWork(w store.Work) tea.Cmd {
	e := m.env
	return tea.Sequence(
		func() tea.Msg {
			if err := e.shifts.DeleteWork(&w); err != nil {
				return errStatus("Delete shift", err)
			}
			return statusMsg{text: "Shift deleted"}
		},
		m.refresh(),
	)
}

func (m shiftsModel) showForm(w *store.Work) (shiftsModel, tea.Cmd) {
	var linked []shifts.SelectedBonus
	var rework *store.Rework
	var other []income.OtherIncome

	if w != nil {
		var err error
		linked, err = m.env.shifts.Bonuses(w)
		if err != nil {
			return m, func() tea.Msg { return errStatus("Open shift", err) }
		}
		if w.ReworkID != nil {
			rework, err = m.env.store.GetRework(*w.ReworkID)
			if err != nil {
				return m, func() tea.Msg { return errStatus("Open shift", err) }
			}
		}
		other, err = m.env.shifts.OtherIncome(w)
		if err != nil {
			return m, func() tea.Msg { return errStatus("Open shift", err) }
		}
	}

	rates, bonuses, err := shiftChoices(m.env, w, linked)
	if err != nil {
		return m, func() tea.Msg { return errStatus("Open shift", err) }
	}
	if len(rates) == 0 {
		return m, func() tea.Msg { return statusMsg{text: "Add a rate first", isError: true} }
	}

	if w != nil {
		m.fields = fieldsFromWork(*w, linked, rework, other)
	} else {
		m.fields = newShiftFields(time.Now())
	}
	m.editing = w
	m.rates = rates
	m.bonuses = bonuses
	m.formErr = ""
	m.form = m.fields.form(rates, bonuses, m.currency)
	m.formActive = true
	return m, m.form.Init()
}

func (m shiftsModel) updateForm(msg tea.Msg) (shiftsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, keys.Back) {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		in, err := m.fields.workInput(m.rates, m.bonuses)
		if err != nil {
			return m, func() tea.Msg { return errStatus("Shift not saved", err) }
		}
		return m, tea.Sequence(m.save(in), m.refresh())
	}

	return m, cmd
}

func (m shiftsModel) save(in shifts.WorkInput) tea.Cmd {
	e, editing := m.env, m.editing
	return func() tea.Msg {
		if editing != nil {
			if _, err := e.shifts.UpdateWork(editing, in); err != nil {
				return errStatus("Update shift", err)
			}
			return statusMsg{text: "Shift updated"}
		}
		w, err := e.shifts.SaveWork(in)
		if err != nil {
			return errStatus("Save shift", err)
		}
		return statusMsg{text: "Shift saved: " + income.FormatMoney(w.Value)}
	}
}

func (m shiftsModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Shift")
		if m.editing != nil {
			title = titleStyle.Render("Edit Shift")
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()))
	}

	title := titleStyle.Render(fmt.Sprintf("%s %d", m.env.shifts.MonthName(m.month), m.year))
	rows := []string{title, m.renderMonths(), ""}

	if len(m.works) == 0 {
		rows = append(rows, mutedStyle.Render("No shifts this month. Press n to add one."))
		return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
	}

	var sum float64
	for i, work := range m.works {
		label := fmt.Sprintf("%-18s %-20s %12s %s",
			input.WorkDateLabel(work.Start, work.End), work.Name, income.FormatMoney(work.Value), m.currency)
		rows = append(rows, cursorRow(i == m.cursor, label))
		sum += work.Value
	}
	rows = append(rows, "")
	rows = append(rows, fmt.Sprintf("  Month total %s", amountStyle.Render(income.FormatMoney(sum)+" "+m.currency)))
	rows = append(rows, "")
	rows = append(rows, m.renderBreakdown())
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: delete  ←/→: month"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m shiftsModel) renderMonths() string {
	var names []string
	for _, mo := range m.months {
		if mo.Number == m.month {
			names = append(names, highlightStyle.Render(mo.Name))
		} else {
			names = append(names, mutedStyle.Render(mo.Name))
		}
	}
	return strings.Join(names, "  ")
}

func (m shiftsModel) renderBreakdown() string {
	if m.cursor >= len(m.works) {
		return ""
	}
	work := m.works[m.cursor]
	res, ok := m.totals[work.ID]
	if !ok {
		return ""
	}
	var rows []string
	rows = append(rows, subtitleStyle.Render(fmt.Sprintf("  %s  %s - %s",
		work.Name, work.Start.Format("02.01 15:04"), work.End.Format("02.01 15:04"))))
	for _, l := range res.Breakdown() {
		rows = append(rows, fmt.Sprintf("  %-14s %12s", l.Component, income.FormatMoney(l.Amount)))
		if l.Component != income.ComponentOther {
			continue
		}
		other, err := m.env.shifts.OtherIncome(&work)
		if err != nil {
			rows = append(rows, warningStyle.Render("    "+err.Error()))
			continue
		}
		for _, o := range other {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("    %-12s %12s", o.Name, income.FormatMoney(o.Value))))
		}
	}
	rows = append(rows, fmt.Sprintf("  %-14s %12s", "Total", amountStyle.Render(income.FormatMoney(res.Total()))))
	if work.Description != "" {
		rows = append(rows, mutedStyle.Render("  "+work.Description))
	}
	return strings.Join(rows, "\n")
}
