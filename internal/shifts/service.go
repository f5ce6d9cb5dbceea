// Package shifts records worked shifts, prices them with the income engine and
// answers the period queries the month view is built from.
package shifts

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sadopc/workway/internal/income"
	"github.com/sadopc/workway/internal/store"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// ErrInvalidSpan is returned when a shift ends before it starts.
var ErrInvalidSpan = errors.New("shift ends before it starts")

// SelectedBonus is a bonus chosen for a shift together with its full-sum flag.
type SelectedBonus struct {
	Bonus     store.Bonus
	OnFullSum bool
}

// WorkInput is everything needed to price and persist one shift.
type WorkInput struct {
	Name        string
	Description string
	Rate        store.Rate
	Bonuses     []SelectedBonus
	Start       time.Time
	End         time.Time
	Rework      *income.Rework
	OtherIncome []income.OtherIncome
}

// payload is the JSON document kept in Work.json.
type payload struct {
	OtherIncome []income.OtherIncome `json:"other_income"`
}

type Service struct {
	store  *store.Store
	log    *zap.Logger
	locale language.Tag
}

func New(s *store.Store, log *zap.Logger) *Service {
	return &Service{store: s, log: log.Named("shifts"), locale: language.English}
}

// Rebind points the service at a freshly opened store.
func (svc *Service) Rebind(s *store.Store) {
	svc.store = s
}

// SetLocale selects the month names returned by FiltersData.
func (svc *Service) SetLocale(tag string) {
	svc.locale = MatchLocale(tag)
	svc.log.Debug("locale set", zap.String("requested", tag), zap.Stringer("locale", svc.locale))
}

// Locale reports the locale month names are rendered in.
func (svc *Service) Locale() language.Tag {
	return svc.locale
}

// SaveWork prices the shift and stores it with its rework and bonus links.
func (svc *Service) SaveWork(in WorkInput) (*store.Work, error) {
	w, rework, links, err := svc.prepare(in)
	if err != nil {
		return nil, err
	}
	created, err := svc.store.CreateWork(w, rework, links)
	if err != nil {
		return nil, err
	}
	svc.log.Info("shift saved",
		zap.Int64("id", created.ID),
		zap.Int64("rate_id", created.RateID),
		zap.Float64("value", created.Value),
	)
	return created, nil
}

// UpdateWork reprices work from in and rewrites it. work is refreshed with the
// stored row on success.
func (svc *Service) UpdateWork(work *store.Work, in WorkInput) (*store.Work, error) {
	w, rework, links, err := svc.prepare(in)
	if err != nil {
		return nil, err
	}
	w.ID = work.ID
	w.State = work.State

	updated, err := svc.store.ReplaceWork(w, rework, links)
	if err != nil {
		return nil, err
	}
	*work = *updated
	svc.log.Info("shift updated", zap.Int64("id", work.ID), zap.Float64("value", work.Value))
	return work, nil
}

// DeleteWork removes the shift and its bonus links.
func (svc *Service) DeleteWork(work *store.Work) error {
	if err := svc.store.DeleteWork(work.ID); err != nil {
		return err
	}
	svc.log.Info("shift deleted", zap.Int64("id", work.ID))
	return nil
}

// GetWorks returns the shifts that start or end in the given month.
func (svc *Service) GetWorks(year, month int) ([]store.Work, error) {
	works, err := svc.store.ListWorksByMonth(year, month)
	if err != nil {
		return nil, err
	}
	svc.log.Debug("works loaded", zap.Int("year", year), zap.Int("month", month), zap.Int("count", len(works)))
	return works, nil
}

// FiltersData returns the years that have shifts and the months of year that
// have shifts, the latter named in the service locale.
func (svc *Service) FiltersData(year int) ([]int, []Month, error) {
	years, err := svc.store.WorkYears()
	if err != nil {
		return nil, nil, err
	}
	nums, err := svc.store.WorkMonths(year)
	if err != nil {
		return nil, nil, err
	}
	names := monthsFor(svc.locale)
	months := make([]Month, 0, len(nums))
	for _, n := range nums {
		if n < 1 || n > 12 {
			continue
		}
		months = append(months, Month{Number: n, Name: names[n-1]})
	}
	return years, months, nil
}

// MonthName returns the localized name of month 1-12.
func (svc *Service) MonthName(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthsFor(svc.locale)[month-1]
}

// MonthTotals sums stored shift values per month of year.
func (svc *Service) MonthTotals(year int) ([12]float64, error) {
	return svc.store.MonthTotals(year)
}

// Reconstruct rebuilds the engine input of a stored shift. Retired rates and
// bonuses resolve like active ones.
func (svc *Service) Reconstruct(work *store.Work) (income.Input, error) {
	rate, err := svc.store.GetRate(work.RateID)
	if err != nil {
		return income.Input{}, fmt.Errorf("reconstruct work %d: %w", work.ID, err)
	}

	in := income.Input{
		Rate: toIncomeRate(*rate),
		Span: income.Span{Start: work.Start, End: work.End},
	}

	if work.ReworkID != nil {
		rw, err := svc.store.GetRework(*work.ReworkID)
		if err != nil {
			return income.Input{}, fmt.Errorf("reconstruct work %d: %w", work.ID, err)
		}
		in.Rework = &income.Rework{Kind: income.ReworkKind(rw.Type), Value: rw.Value}
	}

	links, err := svc.store.ListWorkBonuses(work.ID)
	if err != nil {
		return income.Input{}, fmt.Errorf("reconstruct work %d: %w", work.ID, err)
	}
	for _, l := range links {
		in.Bonuses = append(in.Bonuses, toIncomeBonus(l.Bonus, l.OnFullSum))
	}

	other, err := decodePayload(work.JSON)
	if err != nil {
		return income.Input{}, fmt.Errorf("reconstruct work %d: %w", work.ID, err)
	}
	in.OtherIncome = other
	return in, nil
}

// Breakdown recomputes a stored shift. Its total equals the stored value.
func (svc *Service) Breakdown(work *store.Work) (income.Result, error) {
	in, err := svc.Reconstruct(work)
	if err != nil {
		return income.Result{}, err
	}
	return income.Compute(in), nil
}

// OtherIncome decodes the other-income entries stored with a shift.
func (svc *Service) OtherIncome(work *store.Work) ([]income.OtherIncome, error) {
	other, err := decodePayload(work.JSON)
	if err != nil {
		return nil, fmt.Errorf("work %d: %w", work.ID, err)
	}
	return other, nil
}

// Bonuses returns the bonuses attached to a stored shift, for edit forms.
func (svc *Service) Bonuses(work *store.Work) ([]SelectedBonus, error) {
	links, err := svc.store.ListWorkBonuses(work.ID)
	if err != nil {
		return nil, err
	}
	out := make([]SelectedBonus, 0, len(links))
	for _, l := range links {
		out = append(out, SelectedBonus{Bonus: l.Bonus, OnFullSum: l.OnFullSum})
	}
	return out, nil
}

func (svc *Service) prepare(in WorkInput) (store.Work, *store.Rework, []store.BonusLink, error) {
	// Price the instants as they will be read back from storage.
	start := in.Start.Truncate(time.Second).In(time.Local)
	end := in.End.Truncate(time.Second).In(time.Local)
	if end.Before(start) {
		return store.Work{}, nil, nil, ErrInvalidSpan
	}

	bonuses := make([]income.Bonus, 0, len(in.Bonuses))
	links := make([]store.BonusLink, 0, len(in.Bonuses))
	for _, b := range in.Bonuses {
		bonuses = append(bonuses, toIncomeBonus(b.Bonus, b.OnFullSum))
		links = append(links, store.BonusLink{BonusID: b.Bonus.ID, OnFullSum: b.OnFullSum})
	}

	res := income.Compute(income.Input{
		Rate:        toIncomeRate(in.Rate),
		Span:        income.Span{Start: start, End: end},
		Rework:      in.Rework,
		Bonuses:     bonuses,
		OtherIncome: in.OtherIncome,
	})

	doc, err := encodePayload(in.OtherIncome)
	if err != nil {
		return store.Work{}, nil, nil, err
	}

	var rework *store.Rework
	if in.Rework != nil {
		rework = &store.Rework{Value: in.Rework.Value, Type: string(in.Rework.Kind)}
	}

	w := store.Work{
		Name:        in.Name,
		Start:       start,
		End:         end,
		RateID:      in.Rate.ID,
		Value:       res.Total(),
		JSON:        doc,
		State:       store.StateActive,
		Description: in.Description,
	}
	return w, rework, links, nil
}

func toIncomeRate(r store.Rate) income.Rate {
	return income.Rate{Kind: income.RateKind(r.Type), Value: r.Value, ExpectedHours: r.Hours}
}

func toIncomeBonus(b store.Bonus, onFullSum bool) income.Bonus {
	return income.Bonus{Kind: income.BonusKind(b.Type), Value: b.Value, OnFullSum: onFullSum}
}

func encodePayload(other []income.OtherIncome) (string, error) {
	if other == nil {
		other = []income.OtherIncome{}
	}
	data, err := json.Marshal(payload{OtherIncome: other})
	if err != nil {
		return "", fmt.Errorf("encode other income: %w", err)
	}
	return string(data), nil
}

func decodePayload(doc string) ([]income.OtherIncome, error) {
	if doc == "" {
		return nil, nil
	}
	var p payload
	if err := json.Unmarshal([]byte(doc), &p); err != nil {
		return nil, fmt.Errorf("decode other income: %w", err)
	}
	return p.OtherIncome, nil
}
