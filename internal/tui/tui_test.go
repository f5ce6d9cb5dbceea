package tui

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/workway/internal/catalog"
	"github.com/sadopc/workway/internal/income"
	"github.com/sadopc/workway/internal/input"
	"github.com/sadopc/workway/internal/shifts"
	"github.com/sadopc/workway/internal/store"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestApp(t *testing.T, s *store.Store) App {
	t.Helper()
	log := zap.NewNop()
	return NewApp(s, catalog.New(s, log), shifts.New(s, log), log)
}

func seedRates(t *testing.T, s *store.Store) (*store.Rate, *store.Bonus, *store.Bonus) {
	t.Helper()
	r, err := s.CreateRate(store.Rate{Name: "Hourly", Value: 200, Type: store.RateHourly, Hours: 8})
	if err != nil {
		t.Fatal(err)
	}
	fixed, err := s.CreateBonus(store.Bonus{Name: "Meal", Value: 300, Type: store.BonusFixed})
	if err != nil {
		t.Fatal(err)
	}
	pct, err := s.CreateBonus(store.Bonus{Name: "Night", Value: 10, Type: store.BonusPercent})
	if err != nil {
		t.Fatal(err)
	}
	return r, fixed, pct
}

// ============================================================
// Shift form
// ============================================================

func TestShiftFieldsWorkInput(t *testing.T) {
	s := newTestStore(t)
	r, fixed, pct := seedRates(t, s)
	rates := []store.Rate{*r}
	bonuses := []store.Bonus{*fixed, *pct}

	f := &shiftFields{
		name:        "Warehouse",
		rateID:      r.ID,
		bonusIDs:    []int64{fixed.ID, pct.ID},
		fullSumIDs:  []int64{pct.ID},
		startDate:   "10.03.2024",
		startTime:   "08:00",
		endDate:     "10.03.2024",
		endTime:     "18:00",
		reworkKind:  store.ReworkPercent,
		reworkValue: "50",
		other:       []input.OtherIncomeRow{{Amount: "100"}},
	}
	if !f.overtime(rates) {
		t.Fatal("10 hours on an 8 hour rate should be overtime")
	}

	in, err := f.workInput(rates, bonuses)
	if err != nil {
		t.Fatal(err)
	}
	if in.Rework == nil || in.Rework.Kind != income.ReworkPercent || in.Rework.Value != 50 {
		t.Fatalf("unexpected rework: %+v", in.Rework)
	}
	if len(in.Bonuses) != 2 || in.Bonuses[0].OnFullSum || !in.Bonuses[1].OnFullSum {
		t.Fatalf("unexpected bonuses: %+v", in.Bonuses)
	}
	if len(in.OtherIncome) != 1 || in.OtherIncome[0].Name != "100" {
		t.Fatalf("unexpected other income: %+v", in.OtherIncome)
	}
	if in.End.Sub(in.Start) != 10*time.Hour {
		t.Fatalf("unexpected span %v", in.End.Sub(in.Start))
	}
}

func TestShiftFieldsIgnoreReworkWithoutOvertime(t *testing.T) {
	s := newTestStore(t)
	r, _, _ := seedRates(t, s)
	f := &shiftFields{
		rateID:      r.ID,
		startDate:   "10.03.2024",
		startTime:   "08:00",
		endDate:     "10.03.2024",
		endTime:     "16:30",
		reworkKind:  store.ReworkFixed,
		reworkValue: "500",
	}
	in, err := f.workInput([]store.Rate{*r}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if in.Rework != nil {
		t.Fatalf("expected no rework, got %+v", in.Rework)
	}
}

func TestShiftFieldsErrors(t *testing.T) {
	s := newTestStore(t)
	r, _, _ := seedRates(t, s)
	rates := []store.Rate{*r}

	f := &shiftFields{startDate: "10.03.2024", startTime: "08:00", endDate: "10.03.2024", endTime: "09:00"}
	if _, err := f.workInput(rates, nil); !errors.Is(err, errNoRate) {
		t.Fatalf("expected errNoRate, got %v", err)
	}

	f.rateID = r.ID
	f.endDate = "09.03.2024"
	if _, err := f.workInput(rates, nil); !errors.Is(err, input.ErrEndBeforeStart) {
		t.Fatalf("expected ErrEndBeforeStart, got %v", err)
	}

	f.endDate = "10.03.2024"
	f.other = []input.OtherIncomeRow{{Name: "tip", Amount: "lots"}}
	if _, err := f.workInput(rates, nil); !errors.Is(err, input.ErrNotNumber) {
		t.Fatalf("expected ErrNotNumber, got %v", err)
	}
}

func TestFieldsFromWork(t *testing.T) {
	start := time.Date(2024, 12, 31, 20, 0, 0, 0, time.Local)
	w := store.Work{Name: "NYE", RateID: 3, Start: start, End: start.Add(12 * time.Hour), Description: "busy"}
	linked := []shifts.SelectedBonus{
		{Bonus: store.Bonus{ID: 7}},
		{Bonus: store.Bonus{ID: 9}, OnFullSum: true},
	}
	f := fieldsFromWork(w, linked, &store.Rework{Value: 12.5, Type: store.ReworkPercent},
		[]income.OtherIncome{{Name: "tip", Value: 100}})

	if f.startDate != "31.12.2024" || f.endDate != "01.01.2025" || f.endTime != "08:00" {
		t.Fatalf("unexpected dates: %+v", f)
	}
	if len(f.bonusIDs) != 2 || len(f.fullSumIDs) != 1 || f.fullSumIDs[0] != 9 {
		t.Fatalf("unexpected bonus ids: %v %v", f.bonusIDs, f.fullSumIDs)
	}
	if f.reworkKind != store.ReworkPercent || f.reworkValue != "12.5" {
		t.Fatalf("unexpected rework fields: %q %q", f.reworkKind, f.reworkValue)
	}
	want := []input.OtherIncomeRow{{Name: "tip", Amount: "100"}, {}}
	if !slices.Equal(f.other, want) {
		t.Fatalf("unexpected other income rows: %+v", f.other)
	}
}

func TestEditKeepsEveryOtherIncomeEntry(t *testing.T) {
	s := newTestStore(t)
	app := newTestApp(t, s)
	r, _, _ := seedRates(t, s)

	start := time.Date(2024, 3, 12, 8, 0, 0, 0, time.Local)
	w, err := app.env.shifts.SaveWork(shifts.WorkInput{
		Rate:        *r,
		Start:       start,
		End:         start.Add(8 * time.Hour),
		OtherIncome: []income.OtherIncome{{Name: "tip", Value: 100}, {Name: "fuel", Value: 40}},
	})
	if err != nil {
		t.Fatal(err)
	}

	m := app.shifts
	m, _ = m.showForm(w)
	if !m.formActive {
		t.Fatal("expected the edit form to open")
	}
	if len(m.fields.other) != 3 {
		t.Fatalf("expected two stored rows and a blank one, got %+v", m.fields.other)
	}
	m.fields.other[2] = input.OtherIncomeRow{Name: "parking", Amount: "15"}

	in, err := m.fields.workInput(m.rates, m.bonuses)
	if err != nil {
		t.Fatal(err)
	}
	updated, err := app.env.shifts.UpdateWork(w, in)
	if err != nil {
		t.Fatal(err)
	}

	other, err := app.env.shifts.OtherIncome(updated)
	if err != nil {
		t.Fatal(err)
	}
	want := []income.OtherIncome{{Name: "tip", Value: 100}, {Name: "fuel", Value: 40}, {Name: "parking", Value: 15}}
	if !slices.Equal(other, want) {
		t.Fatalf("unexpected other income after edit: %+v", other)
	}
	if updated.Value != 1600+155 {
		t.Fatalf("expected value 1755, got %v", updated.Value)
	}
}

func TestEditMalformedPayloadRefusesToOpen(t *testing.T) {
	s := newTestStore(t)
	app := newTestApp(t, s)
	r, _, _ := seedRates(t, s)

	start := time.Date(2024, 3, 12, 8, 0, 0, 0, time.Local)
	w, err := app.env.shifts.SaveWork(shifts.WorkInput{Rate: *r, Start: start, End: start.Add(8 * time.Hour)})
	if err != nil {
		t.Fatal(err)
	}
	w.JSON = "{broken"

	m, cmd := app.shifts.showForm(w)
	if m.formActive {
		t.Fatal("form should stay closed for an unreadable shift")
	}
	if msg, ok := cmd().(statusMsg); !ok || !msg.isError {
		t.Fatalf("expected an error status, got %+v", msg)
	}
}

func TestShiftChoicesKeepsRetiredRate(t *testing.T) {
	s := newTestStore(t)
	app := newTestApp(t, s)
	r, _, pct := seedRates(t, s)
	def, _ := s.CreateRate(store.Rate{Name: "Default", Value: 1, Type: store.RateShift, Hours: 8, ByDefault: true})

	w, err := app.env.shifts.SaveWork(shifts.WorkInput{
		Rate:    *r,
		Bonuses: []shifts.SelectedBonus{{Bonus: *pct}},
		Start:   time.Date(2024, 3, 1, 8, 0, 0, 0, time.Local),
		End:     time.Date(2024, 3, 1, 16, 0, 0, 0, time.Local),
	})
	if err != nil {
		t.Fatal(err)
	}
	s.RetireRate(r.ID)
	s.RetireBonus(pct.ID)

	linked, _ := app.env.shifts.Bonuses(w)
	rates, bonuses, err := shiftChoices(app.env, w, linked)
	if err != nil {
		t.Fatal(err)
	}
	if len(rates) != 2 || rates[0].ID != def.ID {
		t.Fatalf("expected default rate first and retired rate kept, got %+v", rates)
	}
	if _, ok := findBonus(bonuses, pct.ID); !ok {
		t.Fatal("retired bonus linked to the shift should be offered")
	}
}

func TestShiftMonthRollsYear(t *testing.T) {
	s := newTestStore(t)
	m := newShiftsModel(&env{store: s}, time.Date(2024, 12, 15, 0, 0, 0, 0, time.Local))
	m.shiftMonth(1)
	if m.year != 2025 || m.month != 1 {
		t.Fatalf("expected 2025-01, got %d-%02d", m.year, m.month)
	}
	m.shiftMonth(-1)
	if m.year != 2024 || m.month != 12 {
		t.Fatalf("expected 2024-12, got %d-%02d", m.year, m.month)
	}
}

func TestShiftsRefreshLoadsBreakdowns(t *testing.T) {
	s := newTestStore(t)
	app := newTestApp(t, s)
	r, fixed, _ := seedRates(t, s)

	w, err := app.env.shifts.SaveWork(shifts.WorkInput{
		Rate:    *r,
		Bonuses: []shifts.SelectedBonus{{Bonus: *fixed}},
		Start:   time.Date(2024, 3, 1, 8, 0, 0, 0, time.Local),
		End:     time.Date(2024, 3, 1, 18, 0, 0, 0, time.Local),
	})
	if err != nil {
		t.Fatal(err)
	}

	m := newShiftsModel(app.env, time.Date(2024, 3, 20, 0, 0, 0, 0, time.Local))
	msg := m.refresh()()
	m, _ = m.update(msg)

	if len(m.works) != 1 {
		t.Fatalf("expected 1 shift, got %d", len(m.works))
	}
	if got := m.totals[w.ID].Total(); got != 2300 {
		t.Fatalf("expected breakdown total 2300, got %v", got)
	}
	if len(m.months) != 1 || m.months[0].Name != "March" {
		t.Fatalf("unexpected month filters %+v", m.months)
	}

	m.width, m.height = 120, 40
	if out := m.view(); !strings.Contains(out, "2300.00") {
		t.Fatal("view should show the shift total")
	}
}

func TestEscClosesShiftForm(t *testing.T) {
	s := newTestStore(t)
	app := newTestApp(t, s)
	seedRates(t, s)

	m, _ := app.shifts.showForm(nil)
	if !m.formActive {
		t.Fatal("expected the new shift form to open")
	}
	m, _ = m.update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.formActive || m.form != nil {
		t.Fatal("esc should close the form")
	}
}

func TestReportsViewBeforeResize(t *testing.T) {
	s := newTestStore(t)
	app := newTestApp(t, s)

	r := app.reports
	r.totals[2] = 1500
	out := r.view()
	if !strings.Contains(out, "1500.00") {
		t.Fatal("report should list the March total")
	}
}

// ============================================================
// Catalog and settings
// ============================================================

func TestCatalogRefresh(t *testing.T) {
	s := newTestStore(t)
	app := newTestApp(t, s)
	seedRates(t, s)

	c := newCatalogModel(app.env)
	c, _ = c.update(c.refresh()())
	if len(c.rates) != 1 || len(c.bonuses) != 2 {
		t.Fatalf("expected 1 rate and 2 bonuses, got %d and %d", len(c.rates), len(c.bonuses))
	}
	if c.currency != "RUB" {
		t.Fatalf("expected default currency RUB, got %q", c.currency)
	}
	if c.size() != 1 {
		t.Fatal("rates are listed first")
	}
	c.showBonuses = true
	if c.size() != 2 {
		t.Fatal("toggle should list bonuses")
	}
}

func TestValidateHours(t *testing.T) {
	for _, ok := range []string{"0", "8", " 12 ", "24"} {
		if err := validateHours(ok); err != nil {
			t.Fatalf("validateHours(%q): %v", ok, err)
		}
	}
	for _, bad := range []string{"", "-1", "25", "eight"} {
		if err := validateHours(bad); err == nil {
			t.Fatalf("validateHours(%q) should fail", bad)
		}
	}
}

func TestFormatSettingValue(t *testing.T) {
	tests := []struct {
		key, value, want string
	}{
		{"locale", "ru", "Русский"},
		{"locale", "en", "English"},
		{"locale", "de", "de"},
		{"currency", "RUB", "RUB"},
	}
	for _, tt := range tests {
		if got := formatSettingValue(tt.key, tt.value); got != tt.want {
			t.Fatalf("formatSettingValue(%q, %q) = %q, want %q", tt.key, tt.value, got, tt.want)
		}
	}
}

// ============================================================
// App
// ============================================================

func TestNewApp(t *testing.T) {
	s := newTestStore(t)
	app := newTestApp(t, s)

	if app.activeView != viewShifts {
		t.Fatal("default view should be shifts")
	}
	if app.showHelp {
		t.Fatal("help should be hidden by default")
	}
	if app.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
	if app.Store() != s {
		t.Fatal("app should report the store it was built with")
	}
}

func TestAppViewStates(t *testing.T) {
	s := newTestStore(t)
	app := newTestApp(t, s)
	app.width = 120
	app.height = 40

	for v := range viewNames {
		app.activeView = viewState(v)
		if output := app.View(); output == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	s := newTestStore(t)
	app := newTestApp(t, s)
	app.width = 160
	app.height = 40

	header := app.renderHeader()
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppLoadingState(t *testing.T) {
	s := newTestStore(t)
	app := newTestApp(t, s)
	if output := app.View(); output != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", output)
	}
}

func TestAppStatusMessage(t *testing.T) {
	s := newTestStore(t)
	app := newTestApp(t, s)
	app.width = 120
	app.height = 40

	model, _ := app.Update(statusMsg{text: "test status"})
	app = model.(App)
	if !strings.Contains(app.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}
}

func TestAppLocaleChange(t *testing.T) {
	s := newTestStore(t)
	app := newTestApp(t, s)

	model, _ := app.Update(localeChangedMsg{locale: "ru"})
	app = model.(App)
	if got := app.env.shifts.MonthName(1); got != "Январь" {
		t.Fatalf("expected Russian month names, got %q", got)
	}
}

func TestSwitchDatabase(t *testing.T) {
	first, err := store.NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	first.CreateRate(store.Rate{Name: "Old", Value: 1, Type: store.RateShift, Hours: 8})
	app := newTestApp(t, first)

	path := filepath.Join(t.TempDir(), "other.db")
	if err := app.switchDatabase(path); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { app.Store().Close() })

	if app.Store().Path() != path {
		t.Fatalf("expected store at %q, got %q", path, app.Store().Path())
	}
	rates, err := app.env.catalog.AllRates()
	if err != nil {
		t.Fatal(err)
	}
	if len(rates) != 0 {
		t.Fatal("catalog should read the new database")
	}
	years, _, err := app.env.shifts.FiltersData(2024)
	if err != nil {
		t.Fatal(err)
	}
	if len(years) != 0 {
		t.Fatal("shift service should read the new database")
	}
}

func TestSwitchDatabaseFailureKeepsCurrent(t *testing.T) {
	s := newTestStore(t)
	app := newTestApp(t, s)

	// A regular file cannot be a parent directory.
	blocker := filepath.Join(t.TempDir(), "file")
	other, err := store.New(blocker)
	if err != nil {
		t.Fatal(err)
	}
	other.Close()

	if err := app.switchDatabase(filepath.Join(blocker, "nested.db")); err == nil {
		t.Fatal("expected error opening a path under a file")
	}
	if app.Store() != s {
		t.Fatal("failed switch must keep the current store")
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should have groups")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}
