package layout

import "github.com/zyedidia/generic/mapset"

// Frontier is the FIFO of rooms waiting to have their neighbours placed.
// A room is queued at most once at a time; popping it records it as
// processed. A processed room may be queued again.
type Frontier struct {
	items     []int
	queued    mapset.Set[int]
	processed mapset.Set[int]
}

// NewFrontier returns an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{queued: mapset.New[int](), processed: mapset.New[int]()}
}

// Push appends id unless it is already waiting. It reports whether id was
// added.
func (f *Frontier) Push(id int) bool {
	if f.queued.Has(id) {
		return false
	}
	f.queued.Put(id)
	f.items = append(f.items, id)
	return true
}

// Pop removes the oldest room and marks it processed.
func (f *Frontier) Pop() (int, bool) {
	if len(f.items) == 0 {
		return 0, false
	}
	id := f.items[0]
	f.items = f.items[1:]
	f.queued.Remove(id)
	f.processed.Put(id)
	return id, true
}

// Queued reports whether id is waiting.
func (f *Frontier) Queued(id int) bool { return f.queued.Has(id) }

// Processed reports whether id was ever popped.
func (f *Frontier) Processed(id int) bool { return f.processed.Has(id) }

// Len returns the number of waiting rooms.
func (f *Frontier) Len() int { return len(f.items) }
