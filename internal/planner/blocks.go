package planner

// FreeTimeName labels merged runs of empty slots.
const FreeTimeName = "Free time"

// Block is a run of consecutive slots holding the same activity name.
// EndSlot is exclusive.
type Block struct {
	StartSlot int
	EndSlot   int
	Name      string
	Kind      Kind
}

// Start renders the block start as HH:MM.
func (b Block) Start() string { return SlotToClock(b.StartSlot) }

// End renders the block end as HH:MM.
func (b Block) End() string { return SlotToClock(b.EndSlot) }

// Free reports whether the block is unallocated time.
func (b Block) Free() bool { return b.Kind == "" }

// SlotLabel describes the occupant of one slot. The zero value is free time.
type SlotLabel struct {
	Name string
	Kind Kind
}

// GroupSlots merges adjacent labels with equal name and kind into blocks, so
// two back-to-back "Sleep" halves render as one.
func GroupSlots(labels []SlotLabel) []Block {
	var blocks []Block
	for slot, label := range labels {
		name := label.Name
		if label.Kind == "" {
			name = FreeTimeName
		}
		if n := len(blocks); n > 0 && blocks[n-1].Name == name && blocks[n-1].Kind == label.Kind {
			blocks[n-1].EndSlot = slot + 1
			continue
		}
		blocks = append(blocks, Block{StartSlot: slot, EndSlot: slot + 1, Name: name, Kind: label.Kind})
	}
	return blocks
}

// Blocks groups a day's slots into display intervals.
func (t *Timetable) Blocks(day int) []Block {
	if day < 0 || day >= t.days {
		return nil
	}
	labels := make([]SlotLabel, SlotsPerDay)
	for slot := range labels {
		if a := t.Activity(t.cells[day][slot]); a != nil {
			labels[slot] = SlotLabel{Name: a.Name(), Kind: a.Kind()}
		}
	}
	return GroupSlots(labels)
}
