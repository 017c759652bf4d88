package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date. It is anchored at 12:00 UTC so converting it to
// any real time zone keeps the same day.
type Date struct {
	time.Time
}

// NewDate normalizes out-of-range values the way time.Date does.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

func (d Date) Day() int   { return d.Time.Day() }
func (d Date) Month() int { return int(d.Time.Month()) }
func (d Date) Year() int  { return d.Time.Year() }

// String formats the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Before reports whether d is an earlier calendar day than o.
func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }

// After reports whether d is a later calendar day than o.
func (d Date) After(o Date) bool { return d.Time.After(o.Time) }

// Equal reports whether d and o are the same calendar day.
func (d Date) Equal(o Date) bool { return d.String() == o.String() }

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return ErrInvalidDate
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DaysIn returns the number of days of the given month.
func DaysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 12, 0, 0, 0, time.UTC).Day()
}

// AddMonths moves d by n calendar months, clamping the day to the length of
// the target month (2024-01-31 + 1 month = 2024-02-29).
func AddMonths(d Date, n int) Date {
	y, m := d.Year(), d.Month()-1+n
	y += m / 12
	m %= 12
	if m < 0 {
		m += 12
		y--
	}
	month := m + 1
	day := d.Day()
	if last := DaysIn(y, month); day > last {
		day = last
	}
	return NewDate(y, month, day)
}

// Period is an inclusive range of calendar dates.
type Period struct {
	From Date
	To   Date
}

// MonthPeriod covers the whole given month.
func MonthPeriod(year, month int) Period {
	return Period{
		From: NewDate(year, month, 1),
		To:   NewDate(year, month, DaysIn(year, month)),
	}
}

// AllTime covers every representable billing date.
func AllTime() Period {
	return Period{From: NewDate(1, 1, 1), To: NewDate(9999, 12, 31)}
}

func (p Period) Validate() error {
	if p.From.IsZero() {
		return invalid("from", ErrInvalidDate)
	}
	if p.To.IsZero() {
		return invalid("to", ErrInvalidDate)
	}
	if p.To.Before(p.From) {
		return invalid("to", fmt.Errorf("%w: range ends before it starts", ErrInvalidDate))
	}
	return nil
}

// Contains reports whether d falls inside the period.
func (p Period) Contains(d Date) bool {
	return !d.Before(p.From) && !d.After(p.To)
}
