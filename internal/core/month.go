package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidMonthKey is returned when a month key string does not match
// the YYYY-MM form or its month component is out of range.
var ErrInvalidMonthKey = errors.New("invalid month key, expected YYYY-MM")

// MonthKey identifies a calendar month. All month arithmetic is done in UTC
// so that transactions near month boundaries never drift between months.
type MonthKey struct {
	Year  int
	Month time.Month
}

// ParseMonthKey parses a YYYY-MM string into a MonthKey.
func ParseMonthKey(s string) (MonthKey, error) {
	if len(s) != 7 || s[4] != '-' {
		return MonthKey{}, ErrInvalidMonthKey
	}
	for i, r := range s {
		if i == 4 {
			continue
		}
		if r < '0' || r > '9' {
			return MonthKey{}, ErrInvalidMonthKey
		}
	}
	year := int(s[0]-'0')*1000 + int(s[1]-'0')*100 + int(s[2]-'0')*10 + int(s[3]-'0')
	month := int(s[5]-'0')*10 + int(s[6]-'0')
	if month < 1 || month > 12 {
		return MonthKey{}, ErrInvalidMonthKey
	}
	return MonthKey{Year: year, Month: time.Month(month)}, nil
}

// MonthKeyOf returns the month containing t, evaluated in UTC.
func MonthKeyOf(t time.Time) MonthKey {
	u := t.UTC()
	return MonthKey{Year: u.Year(), Month: u.Month()}
}

// String renders the key in YYYY-MM form. Both halves are zero-padded so the
// textual form sorts chronologically.
func (m MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// MarshalText implements encoding.TextMarshaler so MonthKey can be used as a
// JSON object value or map key.
func (m MonthKey) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *MonthKey) UnmarshalText(b []byte) error {
	parsed, err := ParseMonthKey(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Before reports whether m is strictly earlier than other.
func (m MonthKey) Before(other MonthKey) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

// After reports whether m is strictly later than other.
func (m MonthKey) After(other MonthKey) bool {
	return other.Before(m)
}

// Next returns the month immediately following m.
func (m MonthKey) Next() MonthKey {
	if m.Month == time.December {
		return MonthKey{Year: m.Year + 1, Month: time.January}
	}
	return MonthKey{Year: m.Year, Month: m.Month + 1}
}

// FirstInstant returns midnight UTC on the first day of the month.
func (m MonthKey) FirstInstant() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// LastInstant returns the final representable instant of the month in UTC.
func (m MonthKey) LastInstant() time.Time {
	return m.Next().FirstInstant().Add(-time.Nanosecond)
}

// LaterMonth returns the later of a and b.
func LaterMonth(a, b MonthKey) MonthKey {
	if a.Before(b) {
		return b
	}
	return a
}
