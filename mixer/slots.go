package mixer

// slotTable tracks occupancy of the mixer node's fixed input slots. Capacity
// is set once at graph initialization and never changes afterwards.
type slotTable struct {
	used []bool
}

func newSlotTable(capacity int) *slotTable {
	return &slotTable{used: make([]bool, capacity)}
}

// acquire claims and returns the lowest free slot index, or -1 when every
// slot is occupied. Eviction on a full table is the orchestrator's job, not
// the table's.
func (t *slotTable) acquire() int {
	for i, inUse := range t.used {
		if !inUse {
			t.used[i] = true
			return i
		}
	}
	return -1
}

// release frees a slot. Releasing a free or out-of-range index is a no-op.
func (t *slotTable) release(slot int) {
	if slot < 0 || slot >= len(t.used) {
		return
	}
	t.used[slot] = false
}

func (t *slotTable) capacity() int {
	return len(t.used)
}
