// Package income turns a shift's rate, time span, overtime policy, bonuses and
// other income into a monetary total. Everything here is pure: no storage, no
// clocks, no errors. Callers validate their input before computing.
package income

import "time"

type RateKind string

const (
	RateShift  RateKind = "shift"
	RateHourly RateKind = "hour"
)

// Rate is the pay rate a shift is computed against. ExpectedHours is the shift
// length beyond which percentage overtime starts counting.
type Rate struct {
	Kind          RateKind
	Value         float64
	ExpectedHours int
}

type ReworkKind string

const (
	ReworkPercent ReworkKind = "percent"
	ReworkFixed   ReworkKind = "fix"
)

// Rework is the overtime policy of a single shift.
type Rework struct {
	Kind  ReworkKind
	Value float64
}

type BonusKind string

const (
	BonusFixed   BonusKind = "fix"
	BonusPercent BonusKind = "percent"
)

// Bonus is one selected bonus. OnFullSum makes a percentage apply to rate plus
// overtime instead of the rate alone; fixed bonuses ignore it.
type Bonus struct {
	Kind      BonusKind
	Value     float64
	OnFullSum bool
}

type OtherIncome struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Span is the worked period. End is never before Start.
type Span struct {
	Start time.Time
	End   time.Time
}

// Hours is the number of whole hours in the span; a partial hour counts as zero.
func (s Span) Hours() int64 {
	return int64(s.End.Sub(s.Start) / time.Hour)
}

type Input struct {
	Rate        Rate
	Span        Span
	Rework      *Rework
	Bonuses     []Bonus
	OtherIncome []OtherIncome
}

// Compute evaluates rate, rework, bonus and other income in that order; the
// bonus percentages read the rate and rework amounts computed before them.
func Compute(in Input) Result {
	rate := rateAmount(in.Rate, in.Span)
	rework := reworkAmount(in.Rate, in.Span, in.Rework)
	bonus := bonusAmount(rate, rework, in.Bonuses)
	other := otherAmount(in.OtherIncome)
	return Result{rate: rate, rework: rework, bonus: bonus, other: other}
}

func rateAmount(r Rate, span Span) float64 {
	switch r.Kind {
	case RateHourly:
		return float64(span.Hours()) * r.Value
	default:
		return r.Value
	}
}

// reworkAmount does not clamp: a shift shorter than the expected hours yields a
// negative percentage overtime.
func reworkAmount(r Rate, span Span, rw *Rework) float64 {
	if rw == nil {
		return 0
	}
	switch rw.Kind {
	case ReworkPercent:
		extraHours := float64(span.Hours() - int64(r.ExpectedHours))
		percentRate := r.Value / 100 * rw.Value
		return extraHours * percentRate
	case ReworkFixed:
		return rw.Value
	}
	return 0
}

func bonusAmount(rate, rework float64, bonuses []Bonus) float64 {
	var fixed, percent float64
	for _, b := range bonuses {
		switch b.Kind {
		case BonusFixed:
			fixed += b.Value
		case BonusPercent:
			base := rate
			if b.OnFullSum {
				base = rate + rework
			}
			percent += base / 100 * b.Value
		}
	}
	return fixed + percent
}

func otherAmount(items []OtherIncome) float64 {
	var sum float64
	for _, o := range items {
		sum += o.Value
	}
	return sum
}
