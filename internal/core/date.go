package core

import (
	"strings"
	"time"
)

const (
	DateLayout     = "2006-01-02"
	MonthKeyLayout = "2006-01"
)

// inputLayouts are tried in order by ParseDate. The second one is the
// MM/DD/YYYY format the desktop form used to prompt for; leading zeros are
// optional.
var inputLayouts = []string{DateLayout, "1/2/2006", "2006/01/02"}

// Date is a calendar date without time of day.
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses user input. Anything that is not a full date is rejected
// with ErrInvalidDate.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, ErrInvalidDate
}

// ParseStoredDate reads a date column. Rows written before dates were
// validated may carry a time after the day ("2024-03-17 10:00") or only a
// "YYYY-MM" prefix, which maps to the first day of that month; anything else
// yields the zero Date.
func ParseStoredDate(s string) Date {
	if d, err := ParseDate(s); err == nil {
		return d
	}
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) {
		if t, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
			return Date{Time: t}
		}
	}
	if len(s) >= len(MonthKeyLayout) {
		if t, err := time.Parse(MonthKeyLayout, s[:len(MonthKeyLayout)]); err == nil {
			return Date{Time: t}
		}
	}
	return Date{}
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String returns the canonical YYYY-MM-DD form, or "" for the zero Date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MonthKey returns the YYYY-MM grouping key, or "" for the zero Date.
func (d Date) MonthKey() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(MonthKeyLayout)
}
