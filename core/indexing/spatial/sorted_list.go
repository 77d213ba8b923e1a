package spatial

import "math"

const defaultPreferredMaximumSize = 10

// sortedList is a small, bounded container ordered by descending priority,
// used by the legacy k-NN path (nearestNLegacy). It is kept for parity
// with that path's original semantics rather than for any performance
// advantage over the heap-based path in rtree.go.
type sortedList struct {
	ids                  []int32
	priorities           []float64
	preferredMaximumSize int
}

func newSortedList(preferredMaximumSize int) *sortedList {
	if preferredMaximumSize <= 0 {
		preferredMaximumSize = defaultPreferredMaximumSize
	}
	return &sortedList{preferredMaximumSize: preferredMaximumSize}
}

func (l *sortedList) reset() {
	l.ids = l.ids[:0]
	l.priorities = l.priorities[:0]
}

func (l *sortedList) size() int {
	return len(l.ids)
}

// lowestPriority returns the priority of the lowest-ranked retained entry,
// or -Inf if the list is not yet full. A caller may use this as a
// tightening cutoff once it stops being -Inf.
func (l *sortedList) lowestPriority() float64 {
	if len(l.priorities) < l.preferredMaximumSize {
		return math.Inf(-1)
	}
	return l.priorities[len(l.priorities)-1]
}

// add inserts (id, priority), possibly evicting the current lowest-priority
// run from the tail to make room, per the rules in SortedList's contract:
// equal-to-lowest and under-capacity insertions always append at the low
// end; a strictly higher priority may evict the tied-lowest tail run, but
// only if doing so would not shrink the list below preferredMaximumSize-1.
func (l *sortedList) add(id int32, priority float64) {
	lowest := math.Inf(-1)
	if len(l.priorities) > 0 {
		lowest = l.priorities[len(l.priorities)-1]
	}

	switch {
	case priority == lowest:
		l.ids = append(l.ids, id)
		l.priorities = append(l.priorities, priority)
	case priority < lowest && len(l.priorities) < l.preferredMaximumSize:
		l.ids = append(l.ids, id)
		l.priorities = append(l.priorities, priority)
	case priority > lowest:
		l.evictTiedLowestIfRoom()
		l.insertSorted(id, priority)
	}
}

func (l *sortedList) evictTiedLowestIfRoom() {
	n := len(l.priorities)
	if n == 0 {
		return
	}
	lowest := l.priorities[n-1]
	lowestIndex := n - 1
	for lowestIndex > 0 && l.priorities[lowestIndex-1] == lowest {
		lowestIndex--
	}
	if lowestIndex >= l.preferredMaximumSize-1 {
		l.ids = l.ids[:lowestIndex]
		l.priorities = l.priorities[:lowestIndex]
	}
}

func (l *sortedList) insertSorted(id int32, priority float64) {
	pos := len(l.priorities)
	l.ids = append(l.ids, id)
	l.priorities = append(l.priorities, priority)
	for pos > 0 && priority > l.priorities[pos-1] {
		l.ids[pos], l.ids[pos-1] = l.ids[pos-1], l.ids[pos]
		l.priorities[pos], l.priorities[pos-1] = l.priorities[pos-1], l.priorities[pos]
		pos--
	}
}

func (l *sortedList) forEach(visit func(id int32) bool) {
	for _, id := range l.ids {
		if !visit(id) {
			return
		}
	}
}
