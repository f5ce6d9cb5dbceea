// Package input turns form text into the typed values the services accept.
package input

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sadopc/workway/internal/income"
	"github.com/sadopc/workway/internal/store"
)

var (
	ErrNotNumber      = errors.New("not a number")
	ErrRequired       = errors.New("value is required")
	ErrEndBeforeStart = errors.New("end is before start")
)

// Form layouts for dates and clock times.
const (
	DateLayout  = "02.01.2006"
	ClockLayout = "15:04"
)

var numberRe = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// IsNumber reports whether s is a non-negative decimal: digits, optionally
// followed by a dot and more digits.
func IsNumber(s string) bool {
	return numberRe.MatchString(s)
}

// ParseAmount parses an optional amount. Blank input is zero.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if !IsNumber(s) {
		return 0, fmt.Errorf("%q: %w", s, ErrNotNumber)
	}
	return strconv.ParseFloat(s, 64)
}

// ParseRequiredAmount is ParseAmount for fields that cannot be left blank.
func ParseRequiredAmount(s string) (float64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, ErrRequired
	}
	return ParseAmount(s)
}

// ValidateAmount and ValidateRequiredAmount are form validators.
func ValidateAmount(s string) error {
	_, err := ParseAmount(s)
	return err
}

func ValidateRequiredAmount(s string) error {
	_, err := ParseRequiredAmount(s)
	return err
}

// CombineDateTime joins a DateLayout date and a ClockLayout time in local time.
func CombineDateTime(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout,
		strings.TrimSpace(date)+" "+strings.TrimSpace(clock), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q %q: %w", date, clock, err)
	}
	return t, nil
}

func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, strings.TrimSpace(s)); err != nil {
		return errors.New("use dd.mm.yyyy")
	}
	return nil
}

func ValidateClock(s string) error {
	if _, err := time.Parse(ClockLayout, strings.TrimSpace(s)); err != nil {
		return errors.New("use hh:mm")
	}
	return nil
}

// CheckSpan rejects an end before the start. Equal instants are a zero-length shift.
func CheckSpan(start, end time.Time) error {
	if end.Before(start) {
		return ErrEndBeforeStart
	}
	return nil
}

// OtherIncomeRow is one unparsed other-income line of the shift form.
type OtherIncomeRow struct {
	Name   string
	Amount string
}

// OtherIncome parses form rows. Rows with a zero amount are dropped and an
// unnamed row is named after its amount.
func OtherIncome(rows []OtherIncomeRow) ([]income.OtherIncome, error) {
	var out []income.OtherIncome
	for _, r := range rows {
		v, err := ParseAmount(r.Amount)
		if err != nil {
			return nil, err
		}
		if v <= 0 {
			continue
		}
		name := strings.TrimSpace(r.Name)
		if name == "" {
			name = strings.TrimSpace(r.Amount)
		}
		out = append(out, income.OtherIncome{Name: name, Value: v})
	}
	return out, nil
}

// DetectOvertime returns the whole hours worked beyond the rate's expected
// hours, and whether there are any.
func DetectOvertime(rate store.Rate, start, end time.Time) (int, bool) {
	worked := income.Span{Start: start, End: end}.Hours()
	extra := int(worked) - rate.Hours
	if extra <= 0 {
		return 0, false
	}
	return extra, true
}
