package planner

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimetablePlaceAtRejectsOutOfRange(t *testing.T) {
	table := NewTimetable(2)

	err := table.PlaceAt(NewTask("late", 4), 0, SlotsPerDay-2, false)
	require.ErrorIs(t, err, ErrOutOfRange)

	err = table.PlaceAt(NewTask("nowhere", 1), 2, 0, false)
	require.ErrorIs(t, err, ErrOutOfRange)

	err = table.PlaceAt(NewTask("negative", 1), 0, -1, true)
	require.ErrorIs(t, err, ErrOutOfRange)

	for day := 0; day < table.Days(); day++ {
		assert.Zero(t, table.Occupied(day), "rejected writes must not touch day %d", day)
	}
}

func TestTimetablePlaceAtIsAtomicOnConflict(t *testing.T) {
	table := NewTimetable(1)
	blocker := NewTask("blocker", 1)
	require.NoError(t, table.PlaceAt(blocker, 0, 5, false))

	err := table.PlaceAt(NewTask("wide", 4), 0, 3, false)
	require.ErrorIs(t, err, ErrSlotOccupied)

	assert.True(t, table.IsFree(0, 3))
	assert.True(t, table.IsFree(0, 4))
	assert.True(t, table.IsFree(0, 6))
	got, ok := table.At(0, 5)
	require.True(t, ok)
	assert.Same(t, blocker, got)
}

func TestTimetableForceOverwrites(t *testing.T) {
	table := NewTimetable(1)
	require.NoError(t, table.PlaceAt(NewTask("study", 4), 0, 10, false))

	event := NewEvent("dentist", 2, time.Now(), 11)
	require.NoError(t, table.PlaceAt(event, 0, 11, true))

	got, _ := table.At(0, 11)
	assert.Same(t, event, got)
	got, _ = table.At(0, 10)
	assert.Equal(t, "study", got.Name())
}

func TestTimetableSharesOneIDAcrossSpan(t *testing.T) {
	table := NewTimetable(1)
	task := NewTask("read", 3)
	require.NoError(t, table.PlaceAt(task, 0, 0, false))

	cells := table.Cells()
	assert.Equal(t, cells[0][0], cells[0][1])
	assert.Equal(t, cells[0][1], cells[0][2])
	assert.Equal(t, table.Register(task), cells[0][0])
	assert.Len(t, table.Activities(), 1)
}

func TestTimetableNonForcedPlacementsNeverOverwrite(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	table := NewTimetable(3)
	owner := make(map[[2]int]ActivityID)

	for i := 0; i < 500; i++ {
		task := NewTask("t", 1+rng.Intn(6))
		day := rng.Intn(3)
		start := rng.Intn(SlotsPerDay)
		if err := table.PlaceAt(task, day, start, false); err != nil {
			continue
		}
		id := table.Register(task)
		for s := start; s < start+task.DurationSlots(); s++ {
			key := [2]int{day, s}
			_, taken := owner[key]
			require.False(t, taken, "cell %v written twice", key)
			owner[key] = id
		}
	}
	for key, id := range owner {
		assert.Equal(t, id, table.Cells()[key[0]][key[1]])
	}
}

func TestTimetableFirstFit(t *testing.T) {
	table := NewTimetable(1)
	require.NoError(t, table.PlaceAt(NewTask("a", 2), 0, 2, false))
	require.NoError(t, table.PlaceAt(NewTask("b", 1), 0, 6, false))

	start, ok := table.FirstFit(0, 0, SlotsPerDay, 2)
	require.True(t, ok)
	assert.Equal(t, 0, start)

	start, ok = table.FirstFit(0, 0, SlotsPerDay, 3)
	require.True(t, ok)
	assert.Equal(t, 7, start)

	start, ok = table.FirstFit(0, 4, SlotsPerDay, 2)
	require.True(t, ok)
	assert.Equal(t, 4, start)

	_, ok = table.FirstFit(0, 0, 6, 3)
	assert.False(t, ok)

	_, ok = table.FirstFit(0, 0, SlotsPerDay, SlotsPerDay+1)
	assert.False(t, ok)
}

func TestTimetableBlocksMergeByName(t *testing.T) {
	table := NewTimetable(1)
	require.NoError(t, table.PlaceAt(NewFixed(SleepActivityName, 2), 0, 0, false))
	require.NoError(t, table.PlaceAt(NewFixed(SleepActivityName, 2), 0, 2, false))
	require.NoError(t, table.PlaceAt(NewTask("Gym", 2), 0, 10, false))

	blocks := table.Blocks(0)
	require.Len(t, blocks, 4)
	assert.Equal(t, Block{StartSlot: 0, EndSlot: 4, Name: SleepActivityName, Kind: KindFixed}, blocks[0])
	assert.Equal(t, Block{StartSlot: 4, EndSlot: 10, Name: FreeTimeName}, blocks[1])
	assert.True(t, blocks[1].Free())
	assert.Equal(t, "05:00", blocks[2].Start())
	assert.Equal(t, "06:00", blocks[2].End())
	assert.Equal(t, "24:00", blocks[3].End())
}

func TestGroupSlotsSeparatesKinds(t *testing.T) {
	labels := make([]SlotLabel, 6)
	labels[1] = SlotLabel{Name: "Gym", Kind: KindTask}
	labels[2] = SlotLabel{Name: "Gym", Kind: KindEvent}
	labels[3] = SlotLabel{Name: "Gym", Kind: KindEvent}

	blocks := GroupSlots(labels)
	require.Len(t, blocks, 4)
	assert.Equal(t, Block{StartSlot: 2, EndSlot: 4, Name: "Gym", Kind: KindEvent}, blocks[2])
	assert.Equal(t, FreeTimeName, blocks[3].Name)
	assert.Empty(t, GroupSlots(nil))
}

func TestSlotConversions(t *testing.T) {
	assert.Equal(t, 48, SlotsPerDay)
	assert.Equal(t, 18, ClockToSlot(9, 0))
	assert.Equal(t, 19, ClockToSlot(9, 30))
	assert.Equal(t, "09:30", SlotToClock(19))
	assert.Equal(t, 16, SlotsForHours(8))
	assert.Equal(t, 3, SlotsForHours(1.5))
	assert.Equal(t, 1, SlotsForMinutes(10))
	assert.Equal(t, 2, SlotsForDuration(time.Hour))

	slot, err := ParseClock("17:30")
	require.NoError(t, err)
	assert.Equal(t, 35, slot)
	_, err = ParseClock("nope")
	assert.Error(t, err)

	day, ok := ParseWeekday("wed")
	require.True(t, ok)
	assert.Equal(t, Wednesday, day)
	assert.Equal(t, Monday, WeekdayOf(time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC)))
	assert.Equal(t, Sunday, WeekdayOf(time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)))
}
