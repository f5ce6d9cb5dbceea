package store

import "time"

// Rate types.
const (
	RateShift  = "shift"
	RateHourly = "hour"
)

// Bonus types.
const (
	BonusFixed   = "fix"
	BonusPercent = "percent"
)

// Rework types.
const (
	ReworkPercent = "percent"
	ReworkFixed   = "fix"
)

// Lifecycle states shared by catalog rows and shifts.
const (
	StateActive  = 1
	StateRetired = 2
)

// DefaultRateHours is the expected shift length a rate gets when none applies.
const DefaultRateHours = 8

type Rate struct {
	ID        int64
	Name      string
	Value     float64
	ByDefault bool
	Type      string // shift, hour
	Hours     int
	State     int
}

func (r Rate) Active() bool { return r.State == StateActive }

type Bonus struct {
	ID        int64
	Name      string
	Value     float64
	ByDefault bool
	Type      string // fix, percent
	State     int
}

func (b Bonus) Active() bool { return b.State == StateActive }

type Rework struct {
	ID    int64
	Value float64
	Type  string // percent, fix
}

// Work is one recorded shift.
type Work struct {
	ID          int64
	Name        string
	Start       time.Time
	End         time.Time
	Hours       int
	RateID      int64
	ReworkID    *int64
	Value       float64
	JSON        string
	State       int
	Description string
}

// WorkBonus is a Work_Bonus association row together with the bonus it points at.
type WorkBonus struct {
	WorkID    int64
	BonusID   int64
	OnFullSum bool
	Bonus     Bonus
}

// BonusLink is what a shift writes into Work_Bonus.
type BonusLink struct {
	BonusID   int64
	OnFullSum bool
}

type Setting struct {
	Key   string
	Value string
}
