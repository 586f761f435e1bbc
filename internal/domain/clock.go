package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

var ErrInvalidClockTime = errors.New("clock time must be HH:MM")

// ClockTime is a wall-clock time of day with minute granularity and no timezone.
// Arithmetic wraps within 24 hours; there is no day-boundary marker.
type ClockTime int

func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute).normalize()
}

// Parse an "HH:MM" string. Single-digit hours ("9:05") are accepted.
func ParseClockTime(s string) (ClockTime, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(mm) != 2 || hh == "" || len(hh) > 2 || !allDigits(hh) || !allDigits(mm) {
		return 0, fmt.Errorf("parse clock time %q: %w", s, ErrInvalidClockTime)
	}

	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("parse clock time %q: %w", s, ErrInvalidClockTime)
	}

	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse clock time %q: %w", s, ErrInvalidClockTime)
	}

	return NewClockTime(h, m), nil
}

// strconv.Atoi accepts a leading sign, so digits are checked first.
func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func MustParseClockTime(s string) ClockTime {
	t, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t ClockTime) normalize() ClockTime {
	m := int(t) % minutesPerDay
	if m < 0 {
		m += minutesPerDay
	}
	return ClockTime(m)
}

// Advance the clock by n minutes, wrapping past midnight.
func (t ClockTime) AddMinutes(n int) ClockTime {
	return (t + ClockTime(n)).normalize()
}

func (t ClockTime) Hour() int   { return int(t.normalize()) / 60 }
func (t ClockTime) Minute() int { return int(t.normalize()) % 60 }

func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

func (t ClockTime) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *ClockTime) UnmarshalText(b []byte) error {
	parsed, err := ParseClockTime(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
