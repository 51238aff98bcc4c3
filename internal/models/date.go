package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the on-disk and user-facing date format.
const DateLayout = "2006-01-02"

// Date is a calendar date without a time component, always held at UTC midnight.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string. Out-of-range days such as 2023-02-29 are rejected.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// MonthBounds returns the first and last day of the given month.
// The last day is the first day of the next month minus one day, for every month.
func MonthBounds(month, year int) (Date, Date) {
	first := NewDate(year, month, 1)
	last := first.AddDate(0, 1, -1)
	return first, Date{Time: last}
}

// YearBounds returns January 1st and December 31st of year.
func YearBounds(year int) (Date, Date) {
	first, _ := MonthBounds(1, year)
	_, last := MonthBounds(12, year)
	return first, last
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// Month returns the month number (1-12).
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Value stores the date as YYYY-MM-DD text so lexical order matches calendar order.
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements sql.Scanner.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return d.parseInto(v)
	case []byte:
		return d.parseInto(string(v))
	case time.Time:
		*d = NewDate(v.Year(), int(v.Month()), v.Day())
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

func (d *Date) parseInto(s string) error {
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	return d.parseInto(s)
}
