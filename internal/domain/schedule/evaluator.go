package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/billoapp/tabz/internal/domain/entity"
	"github.com/billoapp/tabz/internal/domain/enum"
)

// Evaluator answers "is the venue open at this instant" and "when does the
// current business day end" for a venue's hours configuration. All instants
// are explicit parameters; the evaluator never reads the process clock, so
// it stays unit-testable with fixed instants.
type Evaluator struct {
	zones *Resolver
}

// NewEvaluator creates an evaluator backed by the given zone resolver
func NewEvaluator(zones *Resolver) *Evaluator {
	return &Evaluator{zones: zones}
}

// IsOpenAt reports whether a venue with the given hours configuration is
// open at the instant. Missing or always-open configuration fails open:
// blocking commerce on a config gap is worse than serving past close.
// Advanced per-weekday schedules are stored but not evaluated yet and are
// treated as always open rather than guessed at.
func (e *Evaluator) IsOpenAt(hours entity.HoursConfig, zone string, at time.Time) (bool, error) {
	if hours.Mode != enum.HoursModeSimple {
		return true, nil
	}
	if hours.Open == "" || hours.Close == "" {
		return true, nil
	}

	openMinutes, err := ParseClock(hours.Open)
	if err != nil {
		return false, err
	}
	closeMinutes, err := ParseClock(hours.Close)
	if err != nil {
		return false, err
	}

	local, err := e.zones.ToLocal(at, zone)
	if err != nil {
		return false, err
	}
	localMinutes := local.Hour()*60 + local.Minute()

	// A close before the open is an implicit overnight window even when the
	// flag was not set.
	if hours.ClosesNextDay || closeMinutes < openMinutes {
		return localMinutes >= openMinutes || localMinutes <= closeMinutes, nil
	}
	return localMinutes >= openMinutes && localMinutes <= closeMinutes, nil
}

// BusinessDayEndAfter computes the absolute instant at which the business
// day containing the instant ends: the configured close time on the
// instant's local calendar date, one day later when the window closes next
// day. The conversion goes through the zone resolver; fixed-hour addition
// caused multi-hour drift around DST in the past and is not used. The
// second return value is false when the venue has no defined close.
func (e *Evaluator) BusinessDayEndAfter(hours entity.HoursConfig, zone string, at time.Time) (time.Time, bool, error) {
	if hours.Mode != enum.HoursModeSimple || hours.Close == "" {
		return time.Time{}, false, nil
	}

	closeMinutes, err := ParseClock(hours.Close)
	if err != nil {
		return time.Time{}, false, err
	}

	local, err := e.zones.ToLocal(at, zone)
	if err != nil {
		return time.Time{}, false, err
	}

	year, month, day := local.Date()
	if hours.ClosesNextDay {
		day++
	}

	end, err := e.zones.FromLocal(year, month, day, closeMinutes/60, closeMinutes%60, zone)
	if err != nil {
		return time.Time{}, false, err
	}
	return end, true, nil
}

// ParseClock parses a "HH:MM" wall-clock string into minutes since midnight
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q, expected HH:MM", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in clock value %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in clock value %q", s)
	}

	return hour*60 + minute, nil
}

// ValidateHours checks a venue hours configuration at write time so that
// evaluation never meets an unparseable window
func ValidateHours(hours entity.HoursConfig) error {
	switch hours.Mode {
	case enum.HoursModeAlwaysOpen:
		return nil
	case enum.HoursModeSimple:
		if hours.Open == "" || hours.Close == "" {
			return nil
		}
		if _, err := ParseClock(hours.Open); err != nil {
			return err
		}
		if _, err := ParseClock(hours.Close); err != nil {
			return err
		}
		return nil
	case enum.HoursModeAdvanced:
		for weekday, window := range hours.Weekdays {
			if _, err := ParseClock(window.Open); err != nil {
				return fmt.Errorf("%s: %w", weekday, err)
			}
			if _, err := ParseClock(window.Close); err != nil {
				return fmt.Errorf("%s: %w", weekday, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown hours mode %d", hours.Mode)
	}
}
