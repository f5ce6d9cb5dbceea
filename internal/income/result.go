package income

// Component names one part of a shift total.
type Component int

const (
	ComponentRate Component = iota
	ComponentRework
	ComponentBonus
	ComponentOther
)

func (c Component) String() string {
	switch c {
	case ComponentRate:
		return "Rate"
	case ComponentRework:
		return "Overtime"
	case ComponentBonus:
		return "Bonuses"
	case ComponentOther:
		return "Other income"
	}
	return "Unknown"
}

// Line is one row of a breakdown.
type Line struct {
	Component Component
	Amount    float64
}

// Result holds the four computed components of a shift. It is built once by
// Compute and never changes.
type Result struct {
	rate   float64
	rework float64
	bonus  float64
	other  float64
}

func (r Result) Rate() float64   { return r.rate }
func (r Result) Rework() float64 { return r.rework }
func (r Result) Bonus() float64  { return r.bonus }
func (r Result) Other() float64  { return r.other }

// Total is the sum of the components, added in evaluation order.
func (r Result) Total() float64 {
	return r.rate + r.rework + r.bonus + r.other
}

// Breakdown lists every component, zero amounts included, in evaluation order.
func (r Result) Breakdown() []Line {
	return []Line{
		{Component: ComponentRate, Amount: r.rate},
		{Component: ComponentRework, Amount: r.rework},
		{Component: ComponentBonus, Amount: r.bonus},
		{Component: ComponentOther, Amount: r.other},
	}
}
