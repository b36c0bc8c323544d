package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the only date format that crosses the API boundary.
const DateLayout = "2006-01-02"

// RoundMoney rounds to 2 decimal places, half up.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ParseMoney parses a decimal-safe money string. Monetary values never cross
// the boundary as floats.
func ParseMoney(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// FormatMoney renders a decimal with exactly 2 fraction digits.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Noon normalizes a timestamp to the same calendar date at 12:00 UTC.
// All due-date arithmetic happens at noon so that DST and UTC/local
// boundaries cannot shift a due date across midnight.
func Noon(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into a noon-UTC date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Noon(t), nil
}

// FormatDate renders a date as YYYY-MM-DD with no time component.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// AddDays returns the noon-normalized date n days after t.
func AddDays(t time.Time, n int) time.Time {
	return Noon(t).AddDate(0, 0, n)
}

// AddMonthsClipped returns the date n calendar months after t, keeping the
// day of month and clipping to the target month's length (Jan 31 + 1 month
// is Feb 28, not Mar 3 as time.AddDate would give).
func AddMonthsClipped(t time.Time, n int) time.Time {
	t = Noon(t)
	return AddMonthsWithDay(t, n, t.Day())
}

// AddMonthsWithDay returns the date n calendar months after t, on the given
// day of month, clipped per target month. The day is taken as a parameter
// rather than from t so a clipped date (Feb 29 for a day-31 schedule) does
// not lose the original day for later months.
func AddMonthsWithDay(t time.Time, n, day int) time.Time {
	t = Noon(t)
	y, m, _ := t.Date()

	months := int(m) - 1 + n
	year := y + months/12
	month := time.Month(months%12 + 1)
	if months < 0 && months%12 != 0 {
		year--
		month = time.Month(months%12 + 13)
	}

	if last := DaysInMonth(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 12, 0, 0, 0, time.UTC).Day()
}

// SameDate reports whether two timestamps fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
