package income

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

func span(d time.Duration) Span {
	return Span{Start: base, End: base.Add(d)}
}

func TestSpanHoursTruncates(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want int64
	}{
		{0, 0},
		{59 * time.Minute, 0},
		{time.Hour, 1},
		{2*time.Hour + 45*time.Minute, 2},
		{25*time.Hour + 30*time.Minute, 25},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, span(tt.d).Hours(), "span %s", tt.d)
	}
}

func TestShiftRateIgnoresSpan(t *testing.T) {
	rate := Rate{Kind: RateShift, Value: 1500, ExpectedHours: 8}
	for _, d := range []time.Duration{0, 3 * time.Hour, 12 * time.Hour, 40 * time.Hour} {
		res := Compute(Input{Rate: rate, Span: span(d)})
		assert.Equal(t, 1500.0, res.Rate(), "span %s", d)
		assert.Equal(t, 1500.0, res.Total())
	}
}

func TestHourlyRateFloorsPartialHours(t *testing.T) {
	rate := Rate{Kind: RateHourly, Value: 100}
	res := Compute(Input{Rate: rate, Span: span(2*time.Hour + 45*time.Minute)})
	assert.Equal(t, 200.0, res.Rate())
}

func TestHourlyRateAcrossMidnight(t *testing.T) {
	rate := Rate{Kind: RateHourly, Value: 10}
	start := time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)
	res := Compute(Input{Rate: rate, Span: Span{Start: start, End: start.Add(30 * time.Hour)}})
	assert.Equal(t, 300.0, res.Rate())
}

func TestPercentReworkScenario(t *testing.T) {
	res := Compute(Input{
		Rate:   Rate{Kind: RateHourly, Value: 200, ExpectedHours: 8},
		Span:   span(10 * time.Hour),
		Rework: &Rework{Kind: ReworkPercent, Value: 50},
	})
	assert.Equal(t, 2000.0, res.Rate())
	assert.Equal(t, 200.0, res.Rework())
	assert.Equal(t, 0.0, res.Bonus())
	assert.Equal(t, 2200.0, res.Total())
}

func TestFixedBonusAndOtherIncomeScenario(t *testing.T) {
	res := Compute(Input{
		Rate:        Rate{Kind: RateShift, Value: 1500},
		Span:        span(8 * time.Hour),
		Bonuses:     []Bonus{{Kind: BonusFixed, Value: 300}},
		OtherIncome: []OtherIncome{{Name: "tip", Value: 100}},
	})
	assert.Equal(t, 300.0, res.Bonus())
	assert.Equal(t, 100.0, res.Other())
	assert.Equal(t, 1900.0, res.Total())
}

func TestFixedRework(t *testing.T) {
	res := Compute(Input{
		Rate:   Rate{Kind: RateShift, Value: 1000, ExpectedHours: 8},
		Span:   span(3 * time.Hour),
		Rework: &Rework{Kind: ReworkFixed, Value: 250},
	})
	assert.Equal(t, 250.0, res.Rework())
	assert.Equal(t, 1250.0, res.Total())
}

func TestNegativeReworkHoursNotClamped(t *testing.T) {
	res := Compute(Input{
		Rate:   Rate{Kind: RateShift, Value: 1000, ExpectedHours: 8},
		Span:   span(6 * time.Hour),
		Rework: &Rework{Kind: ReworkPercent, Value: 50},
	})
	// (6-8) * (1000/100*50)
	assert.Equal(t, -1000.0, res.Rework())
	assert.Equal(t, 0.0, res.Total())
}

func TestPercentBonusOnRateOnly(t *testing.T) {
	in := Input{
		Rate:    Rate{Kind: RateHourly, Value: 200, ExpectedHours: 8},
		Span:    span(10 * time.Hour),
		Bonuses: []Bonus{{Kind: BonusPercent, Value: 10}},
	}
	withoutRework := Compute(in)
	in.Rework = &Rework{Kind: ReworkPercent, Value: 50}
	withRework := Compute(in)

	assert.Equal(t, 200.0, withoutRework.Bonus())
	assert.Equal(t, withoutRework.Bonus(), withRework.Bonus(), "rate-only bonus must not see rework")
}

func TestPercentBonusOnFullSum(t *testing.T) {
	res := Compute(Input{
		Rate:    Rate{Kind: RateHourly, Value: 200, ExpectedHours: 8},
		Span:    span(10 * time.Hour),
		Rework:  &Rework{Kind: ReworkPercent, Value: 50},
		Bonuses: []Bonus{{Kind: BonusPercent, Value: 10, OnFullSum: true}},
	})
	// (2000 + 200) / 100 * 10
	assert.Equal(t, 220.0, res.Bonus())
	assert.Equal(t, 2420.0, res.Total())
}

func TestMixedBonuses(t *testing.T) {
	res := Compute(Input{
		Rate:   Rate{Kind: RateShift, Value: 1000, ExpectedHours: 8},
		Span:   span(8 * time.Hour),
		Rework: &Rework{Kind: ReworkFixed, Value: 500},
		Bonuses: []Bonus{
			{Kind: BonusFixed, Value: 100},
			{Kind: BonusPercent, Value: 20},
			{Kind: BonusPercent, Value: 10, OnFullSum: true},
			{Kind: BonusFixed, Value: 50, OnFullSum: true},
		},
	})
	// fixed 150, rate-only 200, full-sum 150
	assert.Equal(t, 500.0, res.Bonus())
	assert.Equal(t, 2000.0, res.Total())
}

func TestOtherIncomeSums(t *testing.T) {
	res := Compute(Input{
		Rate: Rate{Kind: RateShift, Value: 0},
		OtherIncome: []OtherIncome{
			{Name: "tip", Value: 100},
			{Name: "fuel", Value: 45.5},
		},
	})
	assert.Equal(t, 145.5, res.Other())
	assert.Equal(t, 145.5, res.Total())
}

func TestBreakdownOrder(t *testing.T) {
	res := Compute(Input{
		Rate:        Rate{Kind: RateHourly, Value: 200, ExpectedHours: 8},
		Span:        span(10 * time.Hour),
		Rework:      &Rework{Kind: ReworkPercent, Value: 50},
		Bonuses:     []Bonus{{Kind: BonusFixed, Value: 300}},
		OtherIncome: []OtherIncome{{Name: "tip", Value: 100}},
	})
	lines := res.Breakdown()
	require.Len(t, lines, 4)

	var sum float64
	want := []Component{ComponentRate, ComponentRework, ComponentBonus, ComponentOther}
	for i, l := range lines {
		assert.Equal(t, want[i], l.Component)
		sum += l.Amount
	}
	assert.Equal(t, res.Total(), sum)
	assert.Equal(t, "Overtime", lines[1].Component.String())
}

func TestComputeIsDeterministic(t *testing.T) {
	in := Input{
		Rate:        Rate{Kind: RateHourly, Value: 187.3, ExpectedHours: 7},
		Span:        span(11*time.Hour + 20*time.Minute),
		Rework:      &Rework{Kind: ReworkPercent, Value: 37},
		Bonuses:     []Bonus{{Kind: BonusPercent, Value: 13, OnFullSum: true}, {Kind: BonusPercent, Value: 7}},
		OtherIncome: []OtherIncome{{Name: "x", Value: 0.1}, {Name: "y", Value: 0.2}},
	}
	first := Compute(in).Total()
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Compute(in).Total())
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{1900, "1900.00"},
		{2.675, "2.68"},
		{1234.5, "1234.50"},
		{-1000, "-1000.00"},
		{0.1 + 0.2, "0.30"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatMoney(tt.in))
	}
}
