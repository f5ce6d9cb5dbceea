package input

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sadopc/workway/internal/store"
)

// LabelDateLayout is the short date used on shift rows.
const LabelDateLayout = "02.01.06"

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RateLabel renders a rate for pickers: "Day +1500 RUB".
func RateLabel(r store.Rate, currency string) string {
	return fmt.Sprintf("%s +%s %s", r.Name, formatNumber(r.Value), currency)
}

// BonusLabel renders fixed bonuses as "Meal +300" and percentages as "Night 10%".
func BonusLabel(b store.Bonus) string {
	if b.Type == store.BonusPercent {
		return fmt.Sprintf("%s %s%%", b.Name, formatNumber(b.Value))
	}
	return fmt.Sprintf("%s +%s", b.Name, formatNumber(b.Value))
}

// WorkDateLabel is the start date, or a start-end range when the shift ends on
// another day.
func WorkDateLabel(start, end time.Time) string {
	s := start.Format(LabelDateLayout)
	e := end.Format(LabelDateLayout)
	if s == e {
		return s
	}
	return s + "-" + e
}
