package planner

import (
	"strings"
	"time"
)

// Kind discriminates the closed set of activity variants. The values double as
// persistence discriminators.
type Kind string

const (
	KindFixed Kind = "FixedActivity"
	KindEvent Kind = "Event"
	KindTask  Kind = "Task"
)

// PreferredTime narrows the first search window for a task.
type PreferredTime string

const (
	PreferAny     PreferredTime = "any"
	PreferMorning PreferredTime = "morning"
	PreferEvening PreferredTime = "evening"
)

// ParsePreferredTime normalises user input, mapping unknown values to PreferAny.
func ParsePreferredTime(raw string) PreferredTime {
	switch PreferredTime(strings.ToLower(strings.TrimSpace(raw))) {
	case PreferMorning:
		return PreferMorning
	case PreferEvening:
		return PreferEvening
	default:
		return PreferAny
	}
}

// window returns the half-open slot range searched first for the preference.
func (p PreferredTime) window() (int, int, bool) {
	switch p {
	case PreferMorning:
		return 0, SlotsPerDay / 2, true
	case PreferEvening:
		return SlotsPerDay / 2, SlotsPerDay, true
	default:
		return 0, SlotsPerDay, false
	}
}

// Activity is implemented only by *Fixed, *Event and *Task.
type Activity interface {
	Name() string
	DurationSlots() int
	Kind() Kind
	sealed()
}

type base struct {
	name     string
	duration int
}

func (b base) Name() string       { return b.name }
func (b base) DurationSlots() int { return b.duration }

// Fixed is a recurring immovable block synthesised by the scheduler (work, sleep).
type Fixed struct {
	base
}

// NewFixed builds a fixed activity.
func NewFixed(name string, durationSlots int) *Fixed {
	return &Fixed{base{name: name, duration: durationSlots}}
}

func (*Fixed) Kind() Kind { return KindFixed }
func (*Fixed) sealed()    {}

// Event is anchored to a calendar date and start slot. It always wins conflicts.
type Event struct {
	base
	date      time.Time
	startSlot int
}

// NewEvent builds an event on date starting at startSlot. Only the calendar
// date of date is kept.
func NewEvent(name string, durationSlots int, date time.Time, startSlot int) *Event {
	return &Event{
		base:      base{name: name, duration: durationSlots},
		date:      civilDate(date),
		startSlot: startSlot,
	}
}

func (*Event) Kind() Kind { return KindEvent }
func (*Event) sealed()    {}

// Date returns the event's calendar date (UTC midnight).
func (e *Event) Date() time.Time { return e.date }

// StartSlot returns the first slot the event occupies on its date.
func (e *Event) StartSlot() int { return e.startSlot }

// Task is a single flexible placement request.
type Task struct {
	base
	targetDay *Weekday
	preferred PreferredTime
}

// TaskOption customises a task at construction.
type TaskOption func(*Task)

// OnWeekday restricts the first placement tier to the given weekday.
func OnWeekday(day Weekday) TaskOption {
	return func(t *Task) {
		d := day
		t.targetDay = &d
	}
}

// Preferring sets the preferred time-of-day window.
func Preferring(p PreferredTime) TaskOption {
	return func(t *Task) {
		t.preferred = p
	}
}

// NewTask builds a task that may land on any day at any time unless options say otherwise.
func NewTask(name string, durationSlots int, opts ...TaskOption) *Task {
	t := &Task{base: base{name: name, duration: durationSlots}, preferred: PreferAny}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (*Task) Kind() Kind { return KindTask }
func (*Task) sealed()    {}

// TargetDay returns the weekday filter, if any.
func (t *Task) TargetDay() (Weekday, bool) {
	if t.targetDay == nil {
		return 0, false
	}
	return *t.targetDay, true
}

// PreferredTime returns the preferred window.
func (t *Task) PreferredTime() PreferredTime { return t.preferred }
