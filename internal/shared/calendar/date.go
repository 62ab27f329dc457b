// Package calendar provides a day-granularity Date used as the identity of
// snapshots and dividend ex-dates.
package calendar

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Layout is the ISO-8601 representation of a Date.
const Layout = "2006-01-02"

// Date is a calendar day with no time-of-day or location. The zero value is
// not a valid day and reports true from IsZero.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date, so New(2025, 1, 32) is 2025-02-01.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.Time().Date()
	return d
}

// Of returns the calendar day of t in t's own location.
func Of(t time.Time) Date { return New(t.Date()) }

// Today returns the calendar day of now.
func Today(now func() time.Time) Date {
	if now == nil {
		now = time.Now
	}
	return Of(now())
}

// Parse reads a Date in Layout form. A leading RFC 3339 timestamp is accepted
// and truncated to its day.
func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		ts, err2 := time.Parse(time.RFC3339, s)
		if err2 != nil {
			return Date{}, fmt.Errorf("invalid date %q want format %q: %w", s, Layout, err)
		}
		t = ts
	}
	return Of(t), nil
}

// MustParse is like Parse but panics on error. Meant for tests and constants.
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err.Error())
	}
	return d
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

func (d Date) Year() int          { return d.y }
func (d Date) Month() time.Month  { return d.m }
func (d Date) Day() int           { return d.d }
func (d Date) Before(x Date) bool { return d.Time().Before(x.Time()) }
func (d Date) After(x Date) bool  { return d.Time().After(x.Time()) }

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date { return New(d.y, d.m, d.d+n) }

// AddMonths returns the date n months after d, normalized like time.AddDate.
func (d Date) AddMonths(n int) Date { return New(d.y, d.m+time.Month(n), d.d) }

// DaysSince returns the number of whole days from x to d.
func (d Date) DaysSince(x Date) int {
	return int(d.Time().Sub(x.Time()).Hours() / 24)
}

// MonthKey returns the "2006-01" bucket the day belongs to.
func (d Date) MonthKey() string { return d.Time().Format("2006-01") }

// Compare returns -1, 0 or +1 like cmp.Compare, for slices.SortFunc.
func (d Date) Compare(x Date) int {
	switch {
	case d.Before(x):
		return -1
	case d.After(x):
		return 1
	}
	return 0
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(Layout)
}

func (d Date) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	x, err := Parse(s)
	if err != nil {
		return err
	}
	*d = x
	return nil
}

// Value stores the date as its Layout string.
func (d Date) Value() (driver.Value, error) { return d.String(), nil }

// Scan accepts string, []byte and time.Time columns.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case string:
		x, err := Parse(v)
		if err != nil {
			return err
		}
		*d = x
		return nil
	case []byte:
		return d.Scan(string(v))
	case time.Time:
		*d = Of(v)
		return nil
	}
	return fmt.Errorf("calendar: cannot scan %T into Date", src)
}
