package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/workway/internal/store"
)

type settingsModel struct {
	env    *env
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	locale   *string
	currency *string
	dbPath   *string
}

func newSettingsModel(e *env) settingsModel {
	locale, currency, dbPath := "", "", ""
	return settingsModel{
		env:      e,
		locale:   &locale,
		currency: &currency,
		dbPath:   &dbPath,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	e := s.env
	return func() tea.Msg {
		settings, err := e.store.GetAllSettings()
		if err != nil {
			return errStatus("Load settings", err)
		}
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.locale = s.env.store.SettingOr("locale", "en")
	*s.currency = s.env.store.SettingOr("currency", "RUB")
	*s.dbPath = s.env.store.Path()

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Language").
				Options(
					huh.NewOption("English", "en"),
					huh.NewOption("Русский", "ru"),
				).Value(s.locale),
			huh.NewInput().Title("Currency label").Value(s.currency).Validate(validateCurrency),
		).Title("General"),
		huh.NewGroup(
			huh.NewInput().Title("Database file").Value(s.dbPath).Validate(validatePath),
		).Title("Storage"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(msg, keys.Back) {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		return s, s.saveSettings()
	}

	return s, cmd
}

// saveSettings writes locale and currency to the current database, then asks
// the app to switch files if the path changed.
func (s settingsModel) saveSettings() tea.Cmd {
	e := s.env
	locale, currency := *s.locale, strings.TrimSpace(*s.currency)
	path := strings.TrimSpace(*s.dbPath)

	cmds := []tea.Cmd{
		func() tea.Msg {
			if err := e.store.SetSetting("locale", locale); err != nil {
				return errStatus("Save settings", err)
			}
			if err := e.store.SetSetting("currency", currency); err != nil {
				return errStatus("Save settings", err)
			}
			return localeChangedMsg{locale: locale}
		},
	}
	if path != "" && path != e.store.Path() {
		cmds = append(cmds, func() tea.Msg { return switchDBMsg{path: path} })
	}
	cmds = append(cmds, s.refresh())
	return tea.Sequence(cmds...)
}

var (
	errCurrency = errors.New("currency label is required")
	errPath     = errors.New("database path is required")
)

func validateCurrency(v string) error {
	if strings.TrimSpace(v) == "" {
		return errCurrency
	}
	return nil
}

func validatePath(v string) error {
	if strings.TrimSpace(v) == "" {
		return errPath
	}
	return nil
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}
	label := lipgloss.NewStyle().Width(24).Render("database")
	rows = append(rows, fmt.Sprintf("  %s %s", label, highlightStyle.Render(s.env.store.Path())))

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case "locale":
		switch v {
		case "ru":
			return "Русский"
		case "en":
			return "English"
		}
	}
	return v
}
