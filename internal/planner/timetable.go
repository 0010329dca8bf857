package planner

import (
	"errors"
	"fmt"
)

// Grid errors.
var (
	ErrOutOfRange   = errors.New("placement outside timetable bounds")
	ErrSlotOccupied = errors.New("slot already occupied")
)

// ActivityID indexes the timetable's activity registry.
type ActivityID int

// NoActivity marks an empty cell.
const NoActivity ActivityID = -1

// Timetable is a days x SlotsPerDay grid. Cells hold registry ids so that one
// activity spanning several slots is a single shared value.
type Timetable struct {
	days     int
	registry []Activity
	index    map[Activity]ActivityID
	cells    [][]ActivityID
}

// NewTimetable allocates an empty grid.
func NewTimetable(days int) *Timetable {
	if days < 0 {
		days = 0
	}
	cells := make([][]ActivityID, days)
	for d := range cells {
		row := make([]ActivityID, SlotsPerDay)
		for s := range row {
			row[s] = NoActivity
		}
		cells[d] = row
	}
	return &Timetable{
		days:  days,
		index: make(map[Activity]ActivityID),
		cells: cells,
	}
}

// Days returns the number of grid rows.
func (t *Timetable) Days() int { return t.days }

// Register adds a to the registry, returning the existing id when a was registered before.
func (t *Timetable) Register(a Activity) ActivityID {
	if id, ok := t.index[a]; ok {
		return id
	}
	id := ActivityID(len(t.registry))
	t.registry = append(t.registry, a)
	t.index[a] = id
	return id
}

// Activity resolves an id; it returns nil for NoActivity or unknown ids.
func (t *Timetable) Activity(id ActivityID) Activity {
	if id < 0 || int(id) >= len(t.registry) {
		return nil
	}
	return t.registry[id]
}

// Activities returns the registry in registration order.
func (t *Timetable) Activities() []Activity {
	out := make([]Activity, len(t.registry))
	copy(out, t.registry)
	return out
}

// Cells exposes the grid for bulk manipulation.
func (t *Timetable) Cells() [][]ActivityID { return t.cells }

// At returns the activity occupying a cell.
func (t *Timetable) At(day, slot int) (Activity, bool) {
	if !t.inBounds(day, slot) {
		return nil, false
	}
	a := t.Activity(t.cells[day][slot])
	return a, a != nil
}

// IsFree reports whether a cell is in bounds and empty.
func (t *Timetable) IsFree(day, slot int) bool {
	return t.inBounds(day, slot) && t.cells[day][slot] == NoActivity
}

// SpanFree reports whether [start, start+length) on day is in bounds and empty.
func (t *Timetable) SpanFree(day, start, length int) bool {
	if length <= 0 || !t.inBounds(day, start) || start+length > SlotsPerDay {
		return false
	}
	for s := start; s < start+length; s++ {
		if t.cells[day][s] != NoActivity {
			return false
		}
	}
	return true
}

// PlaceAt writes a over [startSlot, startSlot+duration) on day. The write is
// all-or-nothing; without force every target cell must be empty.
func (t *Timetable) PlaceAt(a Activity, day, startSlot int, force bool) error {
	duration := a.DurationSlots()
	if duration <= 0 || day < 0 || day >= t.days || startSlot < 0 || startSlot+duration > SlotsPerDay {
		return fmt.Errorf("place %q at day %d slot %d (+%d): %w", a.Name(), day, startSlot, duration, ErrOutOfRange)
	}
	if !force {
		for s := startSlot; s < startSlot+duration; s++ {
			if t.cells[day][s] != NoActivity {
				return fmt.Errorf("place %q at day %d slot %d: %w", a.Name(), day, s, ErrSlotOccupied)
			}
		}
	}
	id := t.Register(a)
	for s := startSlot; s < startSlot+duration; s++ {
		t.cells[day][s] = id
	}
	return nil
}

// FirstFit scans [from, to) on day left to right and returns the start of the
// first free run of at least length slots.
func (t *Timetable) FirstFit(day, from, to, length int) (int, bool) {
	if day < 0 || day >= t.days || length <= 0 {
		return 0, false
	}
	if from < 0 {
		from = 0
	}
	if to > SlotsPerDay {
		to = SlotsPerDay
	}
	run := 0
	for s := from; s < to; s++ {
		if t.cells[day][s] != NoActivity {
			run = 0
			continue
		}
		run++
		if run >= length {
			return s - length + 1, true
		}
	}
	return 0, false
}

// HasKind reports whether any cell on day holds an activity of kind k.
func (t *Timetable) HasKind(day int, k Kind) bool {
	if day < 0 || day >= t.days {
		return false
	}
	for _, id := range t.cells[day] {
		if a := t.Activity(id); a != nil && a.Kind() == k {
			return true
		}
	}
	return false
}

// Occupied counts filled cells on day.
func (t *Timetable) Occupied(day int) int {
	if day < 0 || day >= t.days {
		return 0
	}
	n := 0
	for _, id := range t.cells[day] {
		if id != NoActivity {
			n++
		}
	}
	return n
}

// fill writes id into an empty in-bounds cell and reports whether it did.
func (t *Timetable) fill(day, slot int, id ActivityID) bool {
	if !t.IsFree(day, slot) {
		return false
	}
	t.cells[day][slot] = id
	return true
}

func (t *Timetable) inBounds(day, slot int) bool {
	return day >= 0 && day < t.days && slot >= 0 && slot < SlotsPerDay
}
