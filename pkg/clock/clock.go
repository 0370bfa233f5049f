// Package clock converts between wall-clock strings, free-text durations and
// minutes since midnight.
package clock

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// MinutesPerDay is the length of the timeline in minutes.
	MinutesPerDay = 24 * 60

	// DefaultDurationMinutes is used when a duration string cannot be parsed.
	DefaultDurationMinutes = 15

	// DefaultClock is used when a clock string cannot be parsed.
	DefaultClock = "12:00p"
)

// ErrInvalidClock is returned when a wall-clock string cannot be parsed.
var ErrInvalidClock = errors.New("invalid clock time")

var (
	hoursPattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:hours?|hrs?|h)`)
	minutesPattern = regexp.MustCompile(`(\d+)\s*(?:minutes?|mins?|m)\b`)
	clockPattern   = regexp.MustCompile(`^(\d{1,2})(?::(\d{2}))?\s*(a|p|am|pm|a\.m\.|p\.m\.)?$`)
)

// ParseDuration converts strings such as "2 hours 30 min" or "45 min" to minutes.
// Unparsable or empty input yields DefaultDurationMinutes.
func ParseDuration(s string) int {
	text := strings.ToLower(strings.TrimSpace(s))
	if text == "" {
		return DefaultDurationMinutes
	}

	total := 0.0
	if m := hoursPattern.FindStringSubmatch(text); m != nil {
		if h, err := strconv.ParseFloat(m[1], 64); err == nil {
			total += h * 60
		}
		// Drop the hour match so "2h30m" does not feed "2h" into the minute pattern.
		text = strings.Replace(text, m[0], " ", 1)
	}
	if m := minutesPattern.FindStringSubmatch(text); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			total += float64(v)
		}
	}

	minutes := int(math.Round(total))
	if minutes <= 0 {
		return DefaultDurationMinutes
	}
	return minutes
}

// FormatDuration renders minutes the way templates write them ("45 min", "2 hours 30 min").
func FormatDuration(minutes int) string {
	if minutes <= 0 {
		minutes = DefaultDurationMinutes
	}
	h, m := minutes/60, minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%d min", m)
	case m == 0 && h == 1:
		return "1 hour"
	case m == 0:
		return fmt.Sprintf("%d hours", h)
	case h == 1:
		return fmt.Sprintf("1 hour %d min", m)
	default:
		return fmt.Sprintf("%d hours %d min", h, m)
	}
}

// ParseClock parses "HH:MM", "H:MMa", "H:MMp", "H:MM AM" or "9am" into minutes since midnight.
func ParseClock(s string) (int, error) {
	text := strings.ToLower(strings.TrimSpace(s))
	m := clockPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	suffix := strings.ReplaceAll(m[3], ".", "")

	if minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}

	switch suffix {
	case "":
		if m[2] == "" || hour > 23 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
	case "a", "am":
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
		if hour == 12 {
			hour = 0
		}
	case "p", "pm":
		if hour < 1 || hour > 12 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
		}
		if hour != 12 {
			hour += 12
		}
	}

	return Join(hour, minute), nil
}

// ClockMinutes parses s, falling back to noon.
func ClockMinutes(s string) int {
	if m, err := ParseClock(s); err == nil {
		return m
	}
	m, _ := ParseClock(DefaultClock)
	return m
}

// Normalize wraps m into [0, MinutesPerDay).
func Normalize(m int) int {
	m %= MinutesPerDay
	if m < 0 {
		m += MinutesPerDay
	}
	return m
}

// NormalizeFloat wraps m into [0, MinutesPerDay).
func NormalizeFloat(m float64) float64 {
	m = math.Mod(m, MinutesPerDay)
	if m < 0 {
		m += MinutesPerDay
	}
	return m
}

// MinutesSinceMidnight returns the fractional minute of day for t in its own location.
func MinutesSinceMidnight(t time.Time) float64 {
	return float64(t.Hour()*60+t.Minute()) + float64(t.Second())/60 + float64(t.Nanosecond())/6e10
}

// Split decomposes a minute of day into hour and minute.
func Split(m int) (hour, minute int) {
	m = Normalize(m)
	return m / 60, m % 60
}

// Join composes hour and minute into a normalized minute of day.
func Join(hour, minute int) int {
	return Normalize(hour*60 + minute)
}

// Format12h renders a minute of day as "9:05a" or "12:00p".
func Format12h(m int) string {
	hour, minute := Split(m)
	suffix := "a"
	if hour >= 12 {
		suffix = "p"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%02d%s", display, minute, suffix)
}

// Format24h renders a minute of day as "09:05".
func Format24h(m int) string {
	hour, minute := Split(m)
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// On returns the instant at minute m of the calendar day of day.
func On(day time.Time, m int) time.Time {
	hour, minute := Split(m)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

// Round rounds a fractional minute to the nearest multiple of quantum and normalizes it.
func Round(m float64, quantum int) int {
	if quantum <= 0 {
		quantum = 1
	}
	q := float64(quantum)
	return Normalize(int(math.Round(m/q) * q))
}
