package tui

import (
	"github.com/sadopc/workway/internal/catalog"
	"github.com/sadopc/workway/internal/shifts"
	"github.com/sadopc/workway/internal/store"
	"go.uber.org/zap"
)

// viewState represents the currently active view.
type viewState int

const (
	viewShifts viewState = iota
	viewCatalog
	viewReports
	viewSettings
)

var viewNames = []string{"Shifts", "Rates & Bonuses", "Reports", "Settings"}

// env is shared by every view. Switching the database swaps env.store and
// rebinds the services, so views never hold a stale handle.
type env struct {
	store   *store.Store
	catalog *catalog.Manager
	shifts  *shifts.Service
	log     *zap.Logger
}

func (e *env) currency() string {
	return e.store.SettingOr("currency", "RUB")
}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type switchDBMsg struct {
	path string
}

type localeChangedMsg struct {
	locale string
}

func errStatus(prefix string, err error) statusMsg {
	return statusMsg{text: prefix + ": " + err.Error(), isError: true}
}

// --- Helpers ---

func cursorRow(selected bool, text string) string {
	if selected {
		return selectedItemStyle.Render("> " + text)
	}
	return normalItemStyle.Render("  " + text)
}

func clampCursor(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	return max(cursor, 0)
}
