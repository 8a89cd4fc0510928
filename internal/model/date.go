package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DateLayout is the canonical calendar date layout.
const DateLayout = "2006-01-02"

// TimestampLayout is the midnight timestamp companion of a Date, for stores
// that only accept datetimes.
const TimestampLayout = "2006-01-02T15:04:05"

// Date is a calendar date without time of day or zone.
type Date struct {
	time.Time
}

// NewDate returns the date of t, discarding time of day and zone.
func NewDate(t time.Time) Date {
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// String returns the date as YYYY-MM-DD.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Timestamp returns the date as YYYY-MM-DDT00:00:00.
func (d Date) Timestamp() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(TimestampLayout)
}

// Equal reports whether both values name the same day.
func (d Date) Equal(o Date) bool {
	return d.String() == o.String()
}

// MarshalJSON encodes the date as "YYYY-MM-DD", or null when zero.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD" or null.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date %s", s)
	}
	t, err := time.Parse(DateLayout, s[1:len(s)-1])
	if err != nil {
		return fmt.Errorf("invalid date %s: %w", s, err)
	}
	*d = NewDate(t)
	return nil
}

// Scan implements sql.Scanner. SQLite returns TEXT, Postgres returns time.Time.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
	case time.Time:
		*d = NewDate(v)
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
	return nil
}

func (d *Date) scanString(s string) error {
	if s == "" {
		*d = Date{}
		return nil
	}
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("scanning date %q: %w", s, err)
	}
	*d = NewDate(t)
	return nil
}

// Value implements driver.Valuer.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}
