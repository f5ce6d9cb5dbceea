package tui

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/sadopc/workway/internal/catalog"
	"github.com/sadopc/workway/internal/income"
	"github.com/sadopc/workway/internal/input"
	"github.com/sadopc/workway/internal/shifts"
	"github.com/sadopc/workway/internal/store"
)

const reworkNone = ""

var errNoRate = errors.New("choose a rate")

// shiftFields holds the shift form values. The form binds to these pointers,
// so they survive the value copies Bubble Tea makes of the model.
type shiftFields struct {
	name        string
	description string
	rateID      int64
	bonusIDs    []int64
	fullSumIDs  []int64
	startDate   string
	startTime   string
	endDate     string
	endTime     string
	reworkKind  string
	reworkValue string
	other       []input.OtherIncomeRow
}

func newShiftFields(now time.Time) *shiftFields {
	return &shiftFields{
		startDate: now.Format(input.DateLayout),
		startTime: "08:00",
		endDate:   now.Format(input.DateLayout),
		endTime:   "17:00",
		other:     make([]input.OtherIncomeRow, 1),
	}
}

// fieldsFromWork prefills the form from a stored shift.
func fieldsFromWork(w store.Work, bonuses []shifts.SelectedBonus, rework *store.Rework, other []income.OtherIncome) *shiftFields {
	f := &shiftFields{
		name:        w.Name,
		description: w.Description,
		rateID:      w.RateID,
		startDate:   w.Start.Format(input.DateLayout),
		startTime:   w.Start.Format(input.ClockLayout),
		endDate:     w.End.Format(input.DateLayout),
		endTime:     w.End.Format(input.ClockLayout),
	}
	for _, b := range bonuses {
		f.bonusIDs = append(f.bonusIDs, b.Bonus.ID)
		if b.OnFullSum {
			f.fullSumIDs = append(f.fullSumIDs, b.Bonus.ID)
		}
	}
	if rework != nil {
		f.reworkKind = rework.Type
		f.reworkValue = strconv.FormatFloat(rework.Value, 'f', -1, 64)
	}
	// One blank row after the stored ones for a new entry.
	f.other = make([]input.OtherIncomeRow, 0, len(other)+1)
	for _, o := range other {
		f.other = append(f.other, input.OtherIncomeRow{Name: o.Name, Amount: strconv.FormatFloat(o.Value, 'f', -1, 64)})
	}
	f.other = append(f.other, input.OtherIncomeRow{})
	return f
}

func (f *shiftFields) span() (time.Time, time.Time, error) {
	start, err := input.CombineDateTime(f.startDate, f.startTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := input.CombineDateTime(f.endDate, f.endTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if err := input.CheckSpan(start, end); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// overtime reports whether the entered span runs past the chosen rate's hours.
func (f *shiftFields) overtime(rates []store.Rate) bool {
	rate, ok := findRate(rates, f.rateID)
	if !ok {
		return false
	}
	start, end, err := f.span()
	if err != nil {
		return false
	}
	_, ok = input.DetectOvertime(rate, start, end)
	return ok
}

// workInput converts the form into a service call. Rework is only taken when
// the span has overtime, matching when the form shows it.
func (f *shiftFields) workInput(rates []store.Rate, bonuses []store.Bonus) (shifts.WorkInput, error) {
	rate, ok := findRate(rates, f.rateID)
	if !ok {
		return shifts.WorkInput{}, errNoRate
	}
	start, end, err := f.span()
	if err != nil {
		return shifts.WorkInput{}, err
	}

	in := shifts.WorkInput{
		Name:        f.name,
		Description: f.description,
		Rate:        rate,
		Start:       start,
		End:         end,
	}

	if _, over := input.DetectOvertime(rate, start, end); over && f.reworkKind != reworkNone {
		v, err := input.ParseRequiredAmount(f.reworkValue)
		if err != nil {
			return shifts.WorkInput{}, err
		}
		in.Rework = &income.Rework{Kind: income.ReworkKind(f.reworkKind), Value: v}
	}

	for _, id := range f.bonusIDs {
		b, ok := findBonus(bonuses, id)
		if !ok {
			continue
		}
		in.Bonuses = append(in.Bonuses, shifts.SelectedBonus{Bonus: b, OnFullSum: slices.Contains(f.fullSumIDs, id)})
	}

	other, err := input.OtherIncome(f.other)
	if err != nil {
		return shifts.WorkInput{}, err
	}
	in.OtherIncome = other
	return in, nil
}

func (f *shiftFields) form(rates []store.Rate, bonuses []store.Bonus, currency string) *huh.Form {
	rateOptions := make([]huh.Option[int64], len(rates))
	for i, r := range rates {
		rateOptions[i] = huh.NewOption(input.RateLabel(r, currency), r.ID)
	}
	if f.rateID == 0 && len(rates) > 0 {
		f.rateID = rates[0].ID
	}

	bonusOptions := make([]huh.Option[int64], len(bonuses))
	for i, b := range bonuses {
		bonusOptions[i] = huh.NewOption(input.BonusLabel(b), b.ID)
	}

	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&f.name),
			huh.NewSelect[int64]().Title("Rate").Options(rateOptions...).Value(&f.rateID),
			huh.NewInput().Title("Start date").Placeholder("dd.mm.yyyy").Value(&f.startDate).Validate(input.ValidateDate),
			huh.NewInput().Title("Start time").Placeholder("hh:mm").Value(&f.startTime).Validate(input.ValidateClock),
			huh.NewInput().Title("End date").Placeholder("dd.mm.yyyy").Value(&f.endDate).Validate(input.ValidateDate),
			huh.NewInput().Title("End time").Placeholder("hh:mm").Value(&f.endTime).Validate(input.ValidateClock),
		).Title("Shift"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Overtime").
				Options(
					huh.NewOption("None", reworkNone),
					huh.NewOption("Percent of rate per hour", store.ReworkPercent),
					huh.NewOption("Fixed amount", store.ReworkFixed),
				).Value(&f.reworkKind),
			huh.NewInput().Title("Overtime value").Value(&f.reworkValue).Validate(input.ValidateAmount),
		).Title("Overtime").WithHideFunc(func() bool { return !f.overtime(rates) }),
	}

	if len(bonusOptions) > 0 {
		groups = append(groups, huh.NewGroup(
			huh.NewMultiSelect[int64]().Title("Bonuses").Options(bonusOptions...).Value(&f.bonusIDs),
			huh.NewMultiSelect[int64]().Title("Percentages on rate + overtime").Options(bonusOptions...).Value(&f.fullSumIDs),
		).Title("Bonuses"))
	}

	extras := make([]huh.Field, 0, 2*len(f.other)+1)
	for i := range f.other {
		row := &f.other[i]
		extras = append(extras,
			huh.NewInput().Title(fmt.Sprintf("Other income %d", i+1)).Placeholder("name").Value(&row.Name),
			huh.NewInput().Title("Amount").Value(&row.Amount).Validate(input.ValidateAmount),
		)
	}
	extras = append(extras, huh.NewText().Title("Description").Value(&f.description))
	groups = append(groups, huh.NewGroup(extras...).Title("Extras"))

	return huh.NewForm(groups...).WithShowHelp(true).WithShowErrors(true)
}

// shiftChoices returns the active rates and bonuses for the form, default
// first, plus any retired ones the edited shift still points at.
func shiftChoices(e *env, w *store.Work, linked []shifts.SelectedBonus) ([]store.Rate, []store.Bonus, error) {
	rates, err := e.catalog.AllRates()
	if err != nil {
		return nil, nil, err
	}
	bonuses, err := e.catalog.AllBonuses()
	if err != nil {
		return nil, nil, err
	}
	catalog.SortRatesDefaultFirst(rates)
	catalog.SortBonusesDefaultFirst(bonuses)

	if w != nil {
		if _, ok := findRate(rates, w.RateID); !ok {
			r, err := e.store.GetRate(w.RateID)
			if err != nil {
				return nil, nil, err
			}
			rates = append(rates, *r)
		}
		for _, l := range linked {
			if _, ok := findBonus(bonuses, l.Bonus.ID); !ok {
				bonuses = append(bonuses, l.Bonus)
			}
		}
	}
	return rates, bonuses, nil
}

func findRate(rates []store.Rate, id int64) (store.Rate, bool) {
	for _, r := range rates {
		if r.ID == id {
			return r, true
		}
	}
	return store.Rate{}, false
}

func findBonus(bonuses []store.Bonus, id int64) (store.Bonus, bool) {
	for _, b := range bonuses {
		if b.ID == id {
			return b, true
		}
	}
	return store.Bonus{}, false
}
