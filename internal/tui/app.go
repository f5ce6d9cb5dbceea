package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/workway/internal/catalog"
	"github.com/sadopc/workway/internal/shifts"
	"github.com/sadopc/workway/internal/store"
	"go.uber.org/zap"
)

// App is the root Bubble Tea model.
type App struct {
	env    *env
	width  int
	height int

	activeView viewState
	showHelp   bool

	shifts   shiftsModel
	catalog  catalogModel
	reports  reportsModel
	settings settingsModel

	help     help.Model
	status   string
	statusOK bool
}

func NewApp(s *store.Store, cat *catalog.Manager, svc *shifts.Service, log *zap.Logger) App {
	h := help.New()
	h.ShowAll = false

	e := &env{store: s, catalog: cat, shifts: svc, log: log.Named("tui")}
	now := time.Now()

	return App{
		env:        e,
		activeView: viewShifts,
		shifts:     newShiftsModel(e, now),
		catalog:    newCatalogModel(e),
		reports:    newReportsModel(e, now),
		settings:   newSettingsModel(e),
		help:       h,
	}
}

// Store returns the handle currently in use; it changes after a database switch.
func (a App) Store() *store.Store {
	return a.env.store
}

func (a App) Init() tea.Cmd {
	return a.shifts.refresh()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.shifts.setSize(a.width, contentHeight)
		a.catalog.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewShifts
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewCatalog
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewReports
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab4):
			a.activeView = viewSettings
			return a, a.refreshCurrentView()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % viewState(len(viewNames))
			return a, a.refreshCurrentView()
		}

	case statusMsg:
		a.status = msg.text
		a.statusOK = !msg.isError
		if msg.isError {
			a.env.log.Warn("action failed", zap.String("status", msg.text))
		}
		return a, nil

	case localeChangedMsg:
		a.env.shifts.SetLocale(msg.locale)
		a.status = "Settings saved"
		a.statusOK = true
		return a, nil

	case switchDBMsg:
		if err := a.switchDatabase(msg.path); err != nil {
			a.status = "Open database: " + err.Error()
			a.statusOK = false
			return a, nil
		}
		a.status = "Using " + msg.path
		a.statusOK = true
		return a, a.refreshCurrentView()
	}

	return a.updateActiveView(msg)
}

// switchDatabase opens path, points every service at it and closes the old
// handle. On failure the current database stays in use.
func (a App) switchDatabase(path string) error {
	next, err := store.New(path)
	if err != nil {
		return err
	}
	old := a.env.store

	a.env.store = next
	a.env.catalog.Rebind(next)
	a.env.shifts.Rebind(next)
	a.env.shifts.SetLocale(next.SettingOr("locale", "en"))

	if err := old.Close(); err != nil {
		a.env.log.Warn("close previous database", zap.String("path", old.Path()), zap.Error(err))
	}
	a.env.log.Info("database switched", zap.String("from", old.Path()), zap.String("to", path))
	return nil
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewShifts:
		a.shifts, cmd = a.shifts.update(msg)
	case viewCatalog:
		a.catalog, cmd = a.catalog.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewShifts:
		return a.shifts.formActive
	case viewCatalog:
		return a.catalog.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewShifts:
		return a.shifts.refresh()
	case viewCatalog:
		return a.catalog.refresh()
	case viewReports:
		return a.reports.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewShifts:
		content = a.shifts.view()
	case viewCatalog:
		content = a.catalog.view()
	case viewReports:
		content = a.reports.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("workway")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.statusOK {
			status = successStyle.Render(" " + a.status)
		} else {
			status = errorStyle.Render(" " + a.status)
		}
	}

	left := footerStyle.Render(helpView)

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(status) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, status)
}
