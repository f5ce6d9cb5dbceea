// Package catalog manages the rate and bonus definitions shifts are priced with.
//
// Catalog rows are never hard-deleted and never change value or type in place
// once shifts may point at them: Revise retires the old row and creates a new one
// instead, so historical shifts keep reading the numbers they were computed with.
package catalog

import (
	"sort"
	"strconv"

	"github.com/sadopc/workway/internal/store"
	"go.uber.org/zap"
)

type RateInput struct {
	Name      string
	Value     float64
	ByDefault bool
	Type      string // store.RateShift or store.RateHourly
	Hours     int
}

type BonusInput struct {
	Name      string
	Value     float64
	ByDefault bool
	Type      string // store.BonusFixed or store.BonusPercent
}

type Manager struct {
	store *store.Store
	log   *zap.Logger
}

func New(s *store.Store, log *zap.Logger) *Manager {
	return &Manager{store: s, log: log.Named("catalog")}
}

// Rebind points the manager at a freshly opened store.
func (m *Manager) Rebind(s *store.Store) {
	m.store = s
}

// normalizeRate drops the expected hours of hourly rates back to the column
// default and names an unnamed rate after its value.
func normalizeRate(in RateInput) RateInput {
	if in.Type == store.RateHourly {
		in.Hours = store.DefaultRateHours
	}
	if in.Name == "" {
		in.Name = formatValue(in.Value)
	}
	return in
}

func normalizeBonus(in BonusInput) BonusInput {
	if in.Name == "" {
		in.Name = formatValue(in.Value)
	}
	return in
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (m *Manager) AddRate(in RateInput) (*store.Rate, error) {
	in = normalizeRate(in)
	r, err := m.store.CreateRate(store.Rate{
		Name:      in.Name,
		Value:     in.Value,
		ByDefault: in.ByDefault,
		Type:      in.Type,
		Hours:     in.Hours,
	})
	if err != nil {
		return nil, err
	}
	m.log.Info("rate added", zap.Int64("id", r.ID), zap.String("type", r.Type), zap.Float64("value", r.Value))
	return r, nil
}

func (m *Manager) AddBonus(in BonusInput) (*store.Bonus, error) {
	in = normalizeBonus(in)
	b, err := m.store.CreateBonus(store.Bonus{
		Name:      in.Name,
		Value:     in.Value,
		ByDefault: in.ByDefault,
		Type:      in.Type,
	})
	if err != nil {
		return nil, err
	}
	m.log.Info("bonus added", zap.Int64("id", b.ID), zap.String("type", b.Type), zap.Float64("value", b.Value))
	return b, nil
}

// AllRates returns active rates in insertion order.
func (m *Manager) AllRates() ([]store.Rate, error) {
	return m.store.ListRates(false)
}

// AllBonuses returns active bonuses in insertion order.
func (m *Manager) AllBonuses() ([]store.Bonus, error) {
	return m.store.ListBonuses(false)
}

// SortRatesDefaultFirst moves default-flagged rates to the front, keeping the
// relative order otherwise.
func SortRatesDefaultFirst(rates []store.Rate) {
	sort.SliceStable(rates, func(i, j int) bool {
		return rates[i].ByDefault && !rates[j].ByDefault
	})
}

func SortBonusesDefaultFirst(bonuses []store.Bonus) {
	sort.SliceStable(bonuses, func(i, j int) bool {
		return bonuses[i].ByDefault && !bonuses[j].ByDefault
	})
}

// UpdateRate mutates item in place with every field of in. The rate is
// re-normalized when the type changes, and hourly rates always keep the
// default hours.
func (m *Manager) UpdateRate(item *store.Rate, in RateInput) (*store.Rate, error) {
	if in.Type != item.Type {
		in = normalizeRate(in)
	}
	if in.Type == store.RateHourly {
		in.Hours = store.DefaultRateHours
	}
	next := *item
	next.Name = in.Name
	next.Value = in.Value
	next.ByDefault = in.ByDefault
	next.Type = in.Type
	next.Hours = in.Hours

	if err := m.store.UpdateRate(next); err != nil {
		return nil, err
	}
	*item = next
	m.log.Info("rate updated", zap.Int64("id", item.ID))
	return item, nil
}

func (m *Manager) UpdateBonus(item *store.Bonus, in BonusInput) (*store.Bonus, error) {
	if in.Type != item.Type {
		in = normalizeBonus(in)
	}
	next := *item
	next.Name = in.Name
	next.Value = in.Value
	next.ByDefault = in.ByDefault
	next.Type = in.Type

	if err := m.store.UpdateBonus(next); err != nil {
		return nil, err
	}
	*item = next
	m.log.Info("bonus updated", zap.Int64("id", item.ID))
	return item, nil
}

// ReviseRate applies an edit to old. A changed value or type retires old and
// creates a replacement; anything else is written in place.
func (m *Manager) ReviseRate(old *store.Rate, in RateInput) (*store.Rate, error) {
	if old.Value == in.Value && old.Type == in.Type {
		return m.UpdateRate(old, in)
	}
	in = normalizeRate(in)
	r, err := m.store.SupersedeRate(old.ID, store.Rate{
		Name:      in.Name,
		Value:     in.Value,
		ByDefault: in.ByDefault,
		Type:      in.Type,
		Hours:     in.Hours,
	})
	if err != nil {
		return nil, err
	}
	old.State = store.StateRetired
	m.log.Info("rate superseded", zap.Int64("old_id", old.ID), zap.Int64("new_id", r.ID))
	return r, nil
}

func (m *Manager) ReviseBonus(old *store.Bonus, in BonusInput) (*store.Bonus, error) {
	if old.Value == in.Value && old.Type == in.Type {
		return m.UpdateBonus(old, in)
	}
	in = normalizeBonus(in)
	b, err := m.store.SupersedeBonus(old.ID, store.Bonus{
		Name:      in.Name,
		Value:     in.Value,
		ByDefault: in.ByDefault,
		Type:      in.Type,
	})
	if err != nil {
		return nil, err
	}
	old.State = store.StateRetired
	m.log.Info("bonus superseded", zap.Int64("old_id", old.ID), zap.Int64("new_id", b.ID))
	return b, nil
}

// DeleteRate retires the rate; shifts that reference it keep resolving it.
func (m *Manager) DeleteRate(id int64) error {
	if err := m.store.RetireRate(id); err != nil {
		return err
	}
	m.log.Info("rate retired", zap.Int64("id", id))
	return nil
}

func (m *Manager) DeleteBonus(id int64) error {
	if err := m.store.RetireBonus(id); err != nil {
		return err
	}
	m.log.Info("bonus retired", zap.Int64("id", id))
	return nil
}
