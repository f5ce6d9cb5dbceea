package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/workway/internal/catalog"
	"github.com/sadopc/workway/internal/input"
	"github.com/sadopc/workway/internal/store"
)

type catalogModel struct {
	env    *env
	width  int
	height int

	rates       []store.Rate
	bonuses     []store.Bonus
	cursor      int
	showBonuses bool
	currency    string

	formActive bool
	form       *huh.Form
	fields     *catalogFields
	editingID  int64
}

// catalogFields backs both the rate and the bonus form.
type catalogFields struct {
	name      string
	value     string
	typ       string
	hours     string
	byDefault bool
}

func newCatalogModel(e *env) catalogModel {
	return catalogModel{env: e, fields: &catalogFields{}, currency: "RUB"}
}

func (c *catalogModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

type catalogDataMsg struct {
	rates    []store.Rate
	bonuses  []store.Bonus
	currency string
	err      error
}

func (c catalogModel) refresh() tea.Cmd {
	e := c.env
	return func() tea.Msg {
		rates, err := e.catalog.AllRates()
		if err != nil {
			return catalogDataMsg{err: err}
		}
		bonuses, err := e.catalog.AllBonuses()
		if err != nil {
			return catalogDataMsg{err: err}
		}
		return catalogDataMsg{rates: rates, bonuses: bonuses, currency: e.currency()}
	}
}

func (c catalogModel) size() int {
	if c.showBonuses {
		return len(c.bonuses)
	}
	return len(c.rates)
}

func (c catalogModel) update(msg tea.Msg) (catalogModel, tea.Cmd) {
	if c.formActive && c.form != nil {
		return c.updateForm(msg)
	}

	switch msg := msg.(type) {
	case catalogDataMsg:
		if msg.err != nil {
			return c, func() tea.Msg { return errStatus("Load catalog", msg.err) }
		}
		c.rates = msg.rates
		c.bonuses = msg.bonuses
		c.currency = msg.currency
		c.cursor = clampCursor(c.cursor, c.size())
		return c, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if c.cursor > 0 {
				c.cursor--
			}
		case key.Matches(msg, keys.Down):
			if c.cursor < c.size()-1 {
				c.cursor++
			}
		case key.Matches(msg, keys.Toggle):
			c.showBonuses = !c.showBonuses
			c.cursor = 0
		case key.Matches(msg, keys.New):
			return c.showForm(false)
		case key.Matches(msg, keys.Edit), key.Matches(msg, keys.Enter):
			if c.size() > 0 {
				return c.showForm(true)
			}
		case key.Matches(msg, keys.Delete):
			if c.size() > 0 {
				return c, c.deleteSelected()
			}
		}
	}
	return c, nil
}

func (c catalogModel) deleteSelected() tea.Cmd {
	e := c.env
	if c.showBonuses {
		id := c.bonuses[c.cursor].ID
		return tea.Sequence(func() tea.Msg {
			if err := e.catalog.DeleteBonus(id); err != nil {
				return errStatus("Delete bonus", err)
			}
			return statusMsg{text: "Bonus deleted"}
		}, c.refresh())
	}
	id := c.rates[c.cursor].ID
	return tea.Sequence(func() tea.Msg {
		if err := e.catalog.DeleteRate(id); err != nil {
			return errStatus("Delete rate", err)
		}
		return statusMsg{text: "Rate deleted"}
	}, c.refresh())
}

func (c catalogModel) showForm(edit bool) (catalogModel, tea.Cmd) {
	*c.fields = catalogFields{}
	c.editingID = 0

	if c.showBonuses {
		c.fields.typ = store.BonusFixed
		if edit {
			b := c.bonuses[c.cursor]
			c.editingID = b.ID
			*c.fields = catalogFields{name: b.Name, value: formatValue(b.Value), typ: b.Type, byDefault: b.ByDefault}
		}
		c.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Bonus name").Value(&c.fields.name),
				huh.NewInput().Title("Value").Value(&c.fields.value).Validate(input.ValidateRequiredAmount),
				huh.NewSelect[string]().Title("Type").
					Options(
						huh.NewOption("Fixed amount", store.BonusFixed),
						huh.NewOption("Percent", store.BonusPercent),
					).Value(&c.fields.typ),
				huh.NewConfirm().Title("Selected by default").Value(&c.fields.byDefault),
			),
		).WithShowHelp(true).WithShowErrors(true)
	} else {
		c.fields.typ = store.RateShift
		c.fields.hours = strconv.Itoa(store.DefaultRateHours)
		if edit {
			r := c.rates[c.cursor]
			c.editingID = r.ID
			*c.fields = catalogFields{name: r.Name, value: formatValue(r.Value), typ: r.Type, hours: strconv.Itoa(r.Hours), byDefault: r.ByDefault}
		}
		c.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Rate name").Value(&c.fields.name),
				huh.NewInput().Title("Value").Value(&c.fields.value).Validate(input.ValidateRequiredAmount),
				huh.NewSelect[string]().Title("Type").
					Options(
						huh.NewOption("Per shift", store.RateShift),
						huh.NewOption("Per hour", store.RateHourly),
					).Value(&c.fields.typ),
				huh.NewInput().Title("Shift hours").Value(&c.fields.hours).Validate(validateHours),
				huh.NewConfirm().Title("Selected by default").Value(&c.fields.byDefault),
			),
		).WithShowHelp(true).WithShowErrors(true)
	}

	c.formActive = true
	return c, c.form.Init()
}

func (c catalogModel) updateForm(msg tea.Msg) (catalogModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, keys.Back) {
			c.formActive = false
			c.form = nil
			return c, nil
		}
	}

	form, cmd := c.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		c.form = f
	}

	if c.form.State == huh.StateCompleted {
		c.formActive = false
		return c, tea.Sequence(c.save(), c.refresh())
	}
	return c, cmd
}

func (c catalogModel) save() tea.Cmd {
	e, f, editingID, bonuses := c.env, *c.fields, c.editingID, c.showBonuses
	var rate store.Rate
	var bonus store.Bonus
	if editingID != 0 {
		if bonuses {
			bonus, _ = findBonus(c.bonuses, editingID)
		} else {
			rate, _ = findRate(c.rates, editingID)
		}
	}

	return func() tea.Msg {
		value, err := input.ParseRequiredAmount(f.value)
		if err != nil {
			return errStatus("Not saved", err)
		}

		if bonuses {
			in := catalog.BonusInput{Name: strings.TrimSpace(f.name), Value: value, ByDefault: f.byDefault, Type: f.typ}
			if editingID != 0 {
				if _, err := e.catalog.ReviseBonus(&bonus, in); err != nil {
					return errStatus("Update bonus", err)
				}
				return statusMsg{text: "Bonus updated"}
			}
			if _, err := e.catalog.AddBonus(in); err != nil {
				return errStatus("Add bonus", err)
			}
			return statusMsg{text: "Bonus added"}
		}

		hours, err := strconv.Atoi(strings.TrimSpace(f.hours))
		if err != nil {
			hours = store.DefaultRateHours
		}
		in := catalog.RateInput{Name: strings.TrimSpace(f.name), Value: value, ByDefault: f.byDefault, Type: f.typ, Hours: hours}
		if editingID != 0 {
			if _, err := e.catalog.ReviseRate(&rate, in); err != nil {
				return errStatus("Update rate", err)
			}
			return statusMsg{text: "Rate updated"}
		}
		if _, err := e.catalog.AddRate(in); err != nil {
			return errStatus("Add rate", err)
		}
		return statusMsg{text: "Rate added"}
	}
}

var errHours = errors.New("hours must be 0-24")

func validateHours(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 || n > 24 {
		return errHours
	}
	return nil
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (c catalogModel) view() string {
	w := c.width - 4

	if c.formActive && c.form != nil {
		kind := "Rate"
		if c.showBonuses {
			kind = "Bonus"
		}
		verb := "New"
		if c.editingID != 0 {
			verb = "Edit"
		}
		title := titleStyle.Render(verb + " " + kind)
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", c.form.View()))
	}

	ratesTab := inactiveTabStyle.Render("Rates")
	bonusesTab := inactiveTabStyle.Render("Bonuses")
	if c.showBonuses {
		bonusesTab = activeTabStyle.Render("Bonuses")
	} else {
		ratesTab = activeTabStyle.Render("Rates")
	}
	rows := []string{lipgloss.JoinHorizontal(lipgloss.Bottom, ratesTab, bonusesTab), ""}

	if c.size() == 0 {
		rows = append(rows, mutedStyle.Render("Nothing here yet. Press n to add one."))
	}

	if c.showBonuses {
		for i, b := range c.bonuses {
			rows = append(rows, cursorRow(i == c.cursor, defaultMark(b.ByDefault)+input.BonusLabel(b)))
		}
	} else {
		for i, r := range c.rates {
			label := input.RateLabel(r, c.currency)
			if r.Type == store.RateHourly {
				label += " / h"
			} else {
				label += fmt.Sprintf(" / %dh shift", r.Hours)
			}
			rows = append(rows, cursorRow(i == c.cursor, defaultMark(r.ByDefault)+label))
		}
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: delete  b: rates/bonuses"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func defaultMark(byDefault bool) string {
	if byDefault {
		return "* "
	}
	return "  "
}
