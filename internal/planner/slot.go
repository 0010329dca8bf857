package planner

import (
	"fmt"
	"strings"
	"time"
)

const (
	// SlotMinutes is the width of one grid slot. Every duration, window and clock
	// conversion in the planner is derived from it.
	SlotMinutes = 30
	// MinutesPerDay is the length of a planning day.
	MinutesPerDay = 24 * 60
	// SlotsPerDay is the number of slots in one grid row.
	SlotsPerDay = MinutesPerDay / SlotMinutes
	// DaysPerWeek bounds weekday indexes.
	DaysPerWeek = 7

	// SleepWindowMinutes sizes both the night window (ending at midnight) and the
	// morning window (starting at midnight) used for sleep fill.
	SleepWindowMinutes = 8 * 60
	// LookAheadDays is how many leading days the second placement tier scans.
	LookAheadDays = 3
)

// Weekday is a 0-indexed day of week with Monday = 0.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [DaysPerWeek]string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"}

// Valid reports whether w is within Monday..Sunday.
func (w Weekday) Valid() bool {
	return w >= Monday && w <= Sunday
}

func (w Weekday) String() string {
	if !w.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return weekdayNames[w]
}

// WeekdayOf maps a calendar date onto the Monday-first index.
func WeekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % DaysPerWeek)
}

// ParseWeekday accepts an English day name or a short form ("mon").
func ParseWeekday(raw string) (Weekday, bool) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if len(raw) < 3 {
		return 0, false
	}
	for i, name := range weekdayNames {
		if strings.HasPrefix(name, raw) {
			return Weekday(i), true
		}
	}
	return 0, false
}

// SlotsForMinutes converts a duration in minutes to slots, rounding to the
// nearest slot and never returning less than one slot for a positive input.
func SlotsForMinutes(minutes int) int {
	if minutes <= 0 {
		return 0
	}
	slots := (minutes + SlotMinutes/2) / SlotMinutes
	if slots < 1 {
		slots = 1
	}
	return slots
}

// SlotsForHours converts fractional hours (e.g. 1.5) to slots.
func SlotsForHours(hours float64) int {
	return SlotsForMinutes(int(hours*60 + 0.5))
}

// SlotsForDuration converts a time.Duration to slots.
func SlotsForDuration(d time.Duration) int {
	return SlotsForMinutes(int(d / time.Minute))
}

// ClockToSlot returns the slot containing hour:minute.
func ClockToSlot(hour, minute int) int {
	return (hour*60 + minute) / SlotMinutes
}

// ParseClock parses "HH:MM" into a slot index.
func ParseClock(raw string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", raw, err)
	}
	return ClockToSlot(t.Hour(), t.Minute()), nil
}

// SlotToClock renders the start of slot as "HH:MM". SlotsPerDay renders as "24:00".
func SlotToClock(slot int) string {
	mins := slot * SlotMinutes
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}

// SlotHours returns the length of n slots in hours.
func SlotHours(n int) float64 {
	return float64(n*SlotMinutes) / 60
}

// DayIndex returns the number of whole days between start and date, ignoring
// clock time and location offsets.
func DayIndex(start, date time.Time) int {
	s := civilDate(start)
	d := civilDate(date)
	return int(d.Sub(s).Hours() / 24)
}

// DaysInRange returns the inclusive day count of [start, end].
func DaysInRange(start, end time.Time) int {
	return DayIndex(start, end) + 1
}

func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
