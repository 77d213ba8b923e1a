// Package spatial implements an in-memory, single-threaded Guttman-style
// R-tree: node layout, chooseLeaf descent, quadratic node splitting, MBR
// maintenance, condenseTree on deletion, and a cutoff-pruned k-NN search.
// There is no persistence, no concurrency, and no disk pager; see
// SpatialIndexManager for the external-lock pattern callers should use if
// a tree must be shared across goroutines.
package spatial

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/aled/jsi/pkg/logger"
)

const (
	statusAssigned   byte = 0
	statusUnassigned byte = 1
)

// RTree is the top-level container. All public operations are methods on
// this type; none of them are safe to call concurrently on the same tree
// (see the package doc comment).
type RTree struct {
	maxNodeEntries int
	minNodeEntries int

	rootNodeID        int32
	treeHeight        int
	size              int
	highestUsedNodeID int32
	deletedNodeIDs    []int32
	nodeTable         map[int32]*node

	// Scratch state, reused across calls to avoid allocation. None of it
	// is part of the tree's logical state.
	entryStatus      []byte
	parents          []int32
	parentsEntry     []int
	nearestIDs       []int32
	rangeNodeStack   []int32
	rangeCursorStack []int

	log *zap.Logger
}

// NewRTree constructs an empty tree. A nil logger is replaced with a
// default one built by logger.New; invalid or missing Config fields are
// clamped to defaults by Config.resolve, which logs a single warning if
// anything was clamped.
func NewRTree(cfg Config, log *zap.Logger) (*RTree, error) {
	if log == nil {
		defaultLog, err := logger.New(logger.Config{})
		if err != nil {
			return nil, fmt.Errorf("rtree: build default logger: %w", err)
		}
		log = defaultLog
	}
	resolved := cfg.resolve(log)

	t := &RTree{
		maxNodeEntries: resolved.MaxNodeEntries,
		minNodeEntries: resolved.MinNodeEntries,
		treeHeight:     1,
		nodeTable:      make(map[int32]*node),
		entryStatus:    make([]byte, resolved.MaxNodeEntries+1),
		log:            log,
	}
	t.nodeTable[0] = newNode(0, 1, t.maxNodeEntries)
	t.rootNodeID = 0
	return t, nil
}

// Version identifies the index implementation, mirroring the original
// JSI lineage's getVersion().
func (t *RTree) Version() string {
	return "RTree-1.0b2"
}

// Logger returns the *zap.Logger this tree logs through, including the
// default built by NewRTree when the caller passed nil.
func (t *RTree) Logger() *zap.Logger {
	return t.log
}

// Size returns the number of indexed entries.
func (t *RTree) Size() int {
	return t.size
}

// Bounds returns the MBR of every indexed entry, or false if the tree is
// empty.
func (t *RTree) Bounds() (Rectangle, bool) {
	if t.size == 0 {
		return Rectangle{}, false
	}
	return t.nodeTable[t.rootNodeID].mbr, true
}

func (t *RTree) getNextNodeID() int32 {
	if n := len(t.deletedNodeIDs); n > 0 {
		id := t.deletedNodeIDs[n-1]
		t.deletedNodeIDs = t.deletedNodeIDs[:n-1]
		return id
	}
	t.highestUsedNodeID++
	return t.highestUsedNodeID
}

// --- Insertion ---

// Insert adds rectangle r tagged with id. Idempotence is not enforced:
// inserting the same (r, id) pair twice means two matching entries exist,
// and a single Delete call removes only one of them.
func (t *RTree) Insert(r Rectangle, id int32) {
	t.add(r, id, 1)
	t.size++
}

// add places (r, id) as an entry at the given tree level -- level 1 for
// caller-supplied leaf data, or a node's own level when condenseTree
// reinserts the survivors of an eliminated node.
func (t *RTree) add(r Rectangle, id int32, level int) {
	nodeID := t.chooseNode(r, level)
	n := t.nodeTable[nodeID]
	n.addEntryRect(r, id)

	var siblingID int32 = -1
	if n.entryCount > t.maxNodeEntries {
		siblingID = t.splitNode(n)
	}
	t.adjustTree(n, siblingID)
}

// chooseNode descends from the root to targetLevel, at each internal node
// picking the child needing least enlargement to absorb r (ties broken by
// smaller current area), recording the descent on the scratch stacks so
// adjustTree can walk back up.
func (t *RTree) chooseNode(r Rectangle, targetLevel int) int32 {
	t.parents = t.parents[:0]
	t.parentsEntry = t.parentsEntry[:0]

	n := t.nodeTable[t.rootNodeID]
	for n.level != targetLevel {
		bestIdx := 0
		bestEnl := Enlargement(n.entryRect(0), r)
		bestArea := Area(n.entryRect(0))
		for i := 1; i < n.entryCount; i++ {
			candidate := n.entryRect(i)
			enl := Enlargement(candidate, r)
			area := Area(candidate)
			if enl < bestEnl || (enl == bestEnl && area < bestArea) {
				bestEnl, bestArea, bestIdx = enl, area, i
			}
		}
		t.parents = append(t.parents, n.id)
		t.parentsEntry = append(t.parentsEntry, bestIdx)
		n = t.nodeTable[n.ids[bestIdx]]
	}
	return n.id
}

// adjustTree walks back up the path recorded by chooseNode (or findLeaf),
// propagating MBR changes and, if a split occurred below, inserting the
// new sibling into each ancestor -- splitting that ancestor in turn if it
// overflows -- until either the propagation dies out or the root itself
// must split, in which case a new root is grown and treeHeight increases.
func (t *RTree) adjustTree(n *node, siblingID int32) {
	for len(t.parents) > 0 {
		parentID := t.parents[len(t.parents)-1]
		parentEntryIdx := t.parentsEntry[len(t.parentsEntry)-1]
		t.parents = t.parents[:len(t.parents)-1]
		t.parentsEntry = t.parentsEntry[:len(t.parentsEntry)-1]
		parent := t.nodeTable[parentID]

		old := parent.entryRect(parentEntryIdx)
		if !Equals(old, n.mbr) {
			parent.entriesMinX[parentEntryIdx] = n.mbr.MinX
			parent.entriesMinY[parentEntryIdx] = n.mbr.MinY
			parent.entriesMaxX[parentEntryIdx] = n.mbr.MaxX
			parent.entriesMaxY[parentEntryIdx] = n.mbr.MaxY
			parent.recalculateMBR()
		}

		newSibling := int32(-1)
		if siblingID != -1 {
			sib := t.nodeTable[siblingID]
			parent.addEntryRect(sib.mbr, siblingID)
			if parent.entryCount > t.maxNodeEntries {
				newSibling = t.splitNode(parent)
			}
		}
		n = parent
		siblingID = newSibling
	}

	if siblingID != -1 {
		newRootID := t.getNextNodeID()
		newRoot := newNode(newRootID, t.treeHeight+1, t.maxNodeEntries)
		sib := t.nodeTable[siblingID]
		newRoot.addEntryRect(n.mbr, n.id)
		newRoot.addEntryRect(sib.mbr, sib.id)
		t.nodeTable[newRootID] = newRoot
		t.rootNodeID = newRootID
		t.treeHeight++
	}
}

// --- Node splitting (Guttman quadratic) ---

// splitNode partitions n's maxNodeEntries+1 entries (the live ones plus
// the one overflow entry in the scratch slot) into two groups, each
// satisfying minNodeEntries <= |group| <= maxNodeEntries. n is reorganised
// in place to hold one group; the other is returned as a newly allocated
// sibling's id.
func (t *RTree) splitNode(n *node) int32 {
	total := n.entryCount

	newSiblingID := t.getNextNodeID()
	sibling := newNode(newSiblingID, n.level, t.maxNodeEntries)
	t.nodeTable[newSiblingID] = sibling

	status := t.entryStatus[:total]
	for i := range status {
		status[i] = statusUnassigned
	}

	seed1, seed2 := pickSeeds(n, total)
	status[seed1] = statusAssigned
	status[seed2] = statusAssigned

	keptMBR := n.entryRect(seed1)
	keptCount := 1
	sibling.addEntryRect(n.entryRect(seed2), n.ids[seed2])
	n.ids[seed2] = tombstoneID

	assignToKept := func(i int) {
		Add(&keptMBR, n.entryRect(i))
		keptCount++
		status[i] = statusAssigned
	}
	assignToSibling := func(i int) {
		sibling.addEntryRect(n.entryRect(i), n.ids[i])
		n.ids[i] = tombstoneID
		status[i] = statusAssigned
	}

	remaining := total - 2
	for remaining > 0 {
		if keptCount+remaining <= t.minNodeEntries {
			for i := 0; i < total; i++ {
				if status[i] == statusUnassigned {
					assignToKept(i)
				}
			}
			break
		}
		if sibling.entryCount+remaining <= t.minNodeEntries {
			for i := 0; i < total; i++ {
				if status[i] == statusUnassigned {
					assignToSibling(i)
				}
			}
			break
		}

		next, toKept := pickNext(n, status, total, keptMBR, sibling.mbr, keptCount, sibling.entryCount)
		if toKept {
			assignToKept(next)
		} else {
			assignToSibling(next)
		}
		remaining--
	}

	n.mbr = keptMBR
	n.entryCount = total
	n.reorganize()
	n.entryCount = keptCount

	return newSiblingID
}

// pickSeeds implements Guttman's quadratic seed selection: for each axis,
// find the entry with the greatest min (highestLow) and the entry with the
// smallest max (lowestHigh), and take the axis/pair whose normalised
// separation (highestLow-lowestHigh)/(mbr width) is largest. If every
// entry overlaps enough that neither axis yields two distinct extremes,
// fall back to a deterministic rule: smallest minY, then largest maxX
// among the rest.
func pickSeeds(n *node, total int) (seed1, seed2 int) {
	bestSeparation := math.Inf(-1)
	bestValid := false
	var bestHigh, bestLow int

	for axis := 0; axis < 2; axis++ {
		minOf := func(i int) float64 {
			if axis == 0 {
				return n.entriesMinX[i]
			}
			return n.entriesMinY[i]
		}
		maxOf := func(i int) float64 {
			if axis == 0 {
				return n.entriesMaxX[i]
			}
			return n.entriesMaxY[i]
		}

		highestLowIdx, lowestHighIdx := 0, 0
		mbrMin, mbrMax := minOf(0), maxOf(0)
		for i := 1; i < total; i++ {
			if minOf(i) > minOf(highestLowIdx) {
				highestLowIdx = i
			}
			if maxOf(i) < maxOf(lowestHighIdx) {
				lowestHighIdx = i
			}
			mbrMin = math.Min(mbrMin, minOf(i))
			mbrMax = math.Max(mbrMax, maxOf(i))
		}
		if highestLowIdx == lowestHighIdx {
			continue
		}

		width := mbrMax - mbrMin
		separation := 0.0
		if width > 0 {
			separation = (minOf(highestLowIdx) - maxOf(lowestHighIdx)) / width
		}
		if separation > bestSeparation {
			bestSeparation = separation
			bestHigh, bestLow = highestLowIdx, lowestHighIdx
			bestValid = true
		}
	}

	if bestValid {
		return bestHigh, bestLow
	}

	// Degenerate fallback: every axis's two extremes coincided on a
	// single entry, which happens when all entries mutually overlap.
	smallestMinY := 0
	for i := 1; i < total; i++ {
		if n.entriesMinY[i] < n.entriesMinY[smallestMinY] {
			smallestMinY = i
		}
	}
	largestMaxX := -1
	for i := 0; i < total; i++ {
		if i == smallestMinY {
			continue
		}
		if largestMaxX == -1 || n.entriesMaxX[i] > n.entriesMaxX[largestMaxX] {
			largestMaxX = i
		}
	}
	return smallestMinY, largestMaxX
}

// pickNext selects the next unassigned entry to place, per Guttman: the
// entry maximising the absolute difference between the enlargement each
// group would incur, assigned to the group that enlarges less. Ties on
// that difference fall to whichever unassigned entry is scanned first;
// ties on which group to assign (equal enlargement) cascade through
// smaller resulting area, then fewer current entries, then the kept group.
func pickNext(n *node, status []byte, total int, keptMBR, sibMBR Rectangle, keptCount, sibCount int) (index int, toKept bool) {
	bestIdx := -1
	bestDiff := -1.0
	var bestToKept bool

	for i := 0; i < total; i++ {
		if status[i] != statusUnassigned {
			continue
		}
		r := n.entryRect(i)
		enlKept := Enlargement(keptMBR, r)
		enlSib := Enlargement(sibMBR, r)
		diff := math.Abs(enlKept - enlSib)

		var toKeptHere bool
		switch {
		case enlKept < enlSib:
			toKeptHere = true
		case enlSib < enlKept:
			toKeptHere = false
		default:
			areaKept := Area(Union(keptMBR, r))
			areaSib := Area(Union(sibMBR, r))
			switch {
			case areaKept < areaSib:
				toKeptHere = true
			case areaSib < areaKept:
				toKeptHere = false
			case keptCount < sibCount:
				toKeptHere = true
			case sibCount < keptCount:
				toKeptHere = false
			default:
				toKeptHere = true
			}
		}

		if diff > bestDiff {
			bestDiff = diff
			bestIdx = i
			bestToKept = toKeptHere
		}
	}
	return bestIdx, bestToKept
}

// --- Deletion ---

// Delete removes the entry matching both r's coordinates and id exactly.
// It reports false, leaving the tree unchanged, if no such entry exists.
// Deletion only ever descends into children whose MBR contains r (not
// merely overlaps it) -- correct for this exact-match semantics, but this
// means Delete cannot be repurposed to mean "remove any entry intersecting
// r"; that is intentionally not offered as an API.
func (t *RTree) Delete(r Rectangle, id int32) bool {
	leafID, idx, err := t.findLeaf(r, id)
	if errors.Is(err, ErrEntryNotFound) {
		return false
	}

	leaf := t.nodeTable[leafID]
	leaf.deleteEntry(idx, t.minNodeEntries)
	t.condenseTree(leaf)

	for t.treeHeight > 1 {
		root := t.nodeTable[t.rootNodeID]
		if root.entryCount != 1 {
			break
		}
		childID := root.ids[0]
		t.deletedNodeIDs = append(t.deletedNodeIDs, root.id)
		delete(t.nodeTable, root.id)
		t.rootNodeID = childID
		t.treeHeight--
	}

	// The root may hold fewer than minNodeEntries entries, in which case
	// deleteEntry left its MBR as it was.
	if root := t.nodeTable[t.rootNodeID]; root.entryCount < t.minNodeEntries {
		root.recalculateMBR()
	}

	t.size--
	if t.size == 0 {
		t.nodeTable[t.rootNodeID].mbr = EmptyRectangle()
	}
	return true
}

// findLeaf iteratively descends from the root, following only children
// whose MBR contains r, backtracking via the scratch stacks (used here as
// resume markers rather than a pure descent record) whenever a branch
// dead-ends without finding (r, id).
func (t *RTree) findLeaf(r Rectangle, id int32) (leafID int32, index int, err error) {
	t.parents = t.parents[:0]
	t.parentsEntry = t.parentsEntry[:0]

	nodeID := t.rootNodeID
	resumeFrom := 0
	for {
		n := t.nodeTable[nodeID]
		if n.isLeaf() {
			if i := n.findEntry(r, id); i != -1 {
				return nodeID, i, nil
			}
		} else {
			for i := resumeFrom; i < n.entryCount; i++ {
				if Contains(n.entryRect(i), r) {
					t.parents = append(t.parents, nodeID)
					t.parentsEntry = append(t.parentsEntry, i)
					nodeID = n.ids[i]
					resumeFrom = 0
					goto descended
				}
			}
		}

		if len(t.parents) == 0 {
			return 0, 0, ErrEntryNotFound
		}
		nodeID = t.parents[len(t.parents)-1]
		resumeFrom = t.parentsEntry[len(t.parentsEntry)-1] + 1
		t.parents = t.parents[:len(t.parents)-1]
		t.parentsEntry = t.parentsEntry[:len(t.parentsEntry)-1]
	descended:
	}
}

// condenseTree walks from leaf's parent up to the root (using the path
// findLeaf just recorded), eliminating any node that fell under
// minNodeEntries and keeping ancestor MBRs in sync, then reinserts every
// eliminated node's surviving entries at that node's original level.
func (t *RTree) condenseTree(leaf *node) {
	var eliminated []int32
	n := leaf

	for len(t.parents) > 0 {
		parentID := t.parents[len(t.parents)-1]
		parentEntryIdx := t.parentsEntry[len(t.parentsEntry)-1]
		t.parents = t.parents[:len(t.parents)-1]
		t.parentsEntry = t.parentsEntry[:len(t.parentsEntry)-1]
		parent := t.nodeTable[parentID]

		if n.entryCount < t.minNodeEntries {
			parent.deleteEntry(parentEntryIdx, t.minNodeEntries)
			eliminated = append(eliminated, n.id)
		} else {
			old := parent.entryRect(parentEntryIdx)
			if !Equals(old, n.mbr) {
				parent.entriesMinX[parentEntryIdx] = n.mbr.MinX
				parent.entriesMinY[parentEntryIdx] = n.mbr.MinY
				parent.entriesMaxX[parentEntryIdx] = n.mbr.MaxX
				parent.entriesMaxY[parentEntryIdx] = n.mbr.MaxY
				if !Contains(parent.mbr, n.mbr) {
					// Deletion only ever shrinks n.mbr, so this branch should be
					// unreachable; kept defensively in case that assumption ever
					// stops holding.
					Add(&parent.mbr, n.mbr)
				} else if EdgeOverlaps(parent.mbr, old) {
					parent.recalculateMBR()
				}
			}
		}
		n = parent
	}

	for _, nodeID := range eliminated {
		en := t.nodeTable[nodeID]
		for i := 0; i < en.entryCount; i++ {
			t.add(en.entryRect(i), en.ids[i], en.level)
		}
		delete(t.nodeTable, nodeID)
		t.deletedNodeIDs = append(t.deletedNodeIDs, nodeID)
	}
}

// --- Range queries ---

func (t *RTree) pushRange(nodeID int32, cursor int) {
	t.rangeNodeStack = append(t.rangeNodeStack, nodeID)
	t.rangeCursorStack = append(t.rangeCursorStack, cursor)
}

func (t *RTree) popRange() {
	last := len(t.rangeNodeStack) - 1
	t.rangeNodeStack = t.rangeNodeStack[:last]
	t.rangeCursorStack = t.rangeCursorStack[:last]
}

// rangeQuery shares one iterative traversal between Intersects and
// Contains: both prune descent on "child MBR intersects query" and differ
// only in the leaf-level emit predicate.
func (t *RTree) rangeQuery(query Rectangle, emit func(Rectangle) bool, sink func(id int32) bool) {
	t.rangeNodeStack = t.rangeNodeStack[:0]
	t.rangeCursorStack = t.rangeCursorStack[:0]
	t.pushRange(t.rootNodeID, 0)

	for len(t.rangeNodeStack) > 0 {
		top := len(t.rangeNodeStack) - 1
		nid := t.rangeNodeStack[top]
		cur := t.rangeCursorStack[top]
		n := t.nodeTable[nid]

		if n.isLeaf() {
			for i := cur; i < n.entryCount; i++ {
				if emit(n.entryRect(i)) {
					if !sink(n.ids[i]) {
						return
					}
				}
			}
			t.popRange()
			continue
		}

		advanced := false
		for i := cur; i < n.entryCount; i++ {
			t.rangeCursorStack[top] = i + 1
			if Intersects(n.entryRect(i), query) {
				t.pushRange(n.ids[i], 0)
				advanced = true
				break
			}
		}
		if !advanced {
			t.popRange()
		}
	}
}

// Intersects calls sink once for every id whose rectangle intersects
// query, in unspecified order, stopping early if sink returns false.
func (t *RTree) Intersects(query Rectangle, sink func(id int32) bool) {
	t.rangeQuery(query, func(r Rectangle) bool { return Intersects(r, query) }, sink)
}

// Contains calls sink once for every id whose rectangle is contained by
// query, in unspecified order, stopping early if sink returns false.
func (t *RTree) Contains(query Rectangle, sink func(id int32) bool) {
	t.rangeQuery(query, func(r Rectangle) bool { return Contains(query, r) }, sink)
}

// --- Nearest neighbour ---

// Nearest calls sink once for every id tied for minimum distance to p,
// provided that distance does not exceed furthestDistance. The set of
// ids passed to sink is empty iff nothing lies within furthestDistance.
func (t *RTree) Nearest(p Point, sink func(id int32) bool, furthestDistance float64) {
	if t.size == 0 {
		return
	}
	t.nearestIDs = t.nearestIDs[:0]
	bestSq := furthestDistance * furthestDistance
	t.nearestRecurse(t.rootNodeID, p, bestSq)
	for _, id := range t.nearestIDs {
		if !sink(id) {
			return
		}
	}
}

func (t *RTree) nearestRecurse(nodeID int32, p Point, bestSq float64) float64 {
	n := t.nodeTable[nodeID]
	if n.isLeaf() {
		for i := 0; i < n.entryCount; i++ {
			d := DistanceSq(n.entryRect(i), p)
			switch {
			case d < bestSq:
				bestSq = d
				t.nearestIDs = t.nearestIDs[:0]
				t.nearestIDs = append(t.nearestIDs, n.ids[i])
			case d == bestSq:
				t.nearestIDs = append(t.nearestIDs, n.ids[i])
			}
		}
		return bestSq
	}
	for i := 0; i < n.entryCount; i++ {
		d := DistanceSq(n.entryRect(i), p)
		if d <= bestSq {
			bestSq = t.nearestRecurse(n.ids[i], p, bestSq)
		}
	}
	return bestSq
}

type nnCandidate struct {
	id     int32
	distSq float64
}

// collectNearestN performs the search behind NearestN and NearestNUnsorted:
// a depth-first descent that visits children in entry order (not in order
// of distance), skipping any child farther than a cutoff that tightens to
// the worst retained distance once the heap is full. A bounded max-heap
// of size count holds the best
// candidates found so far, with a side buffer preserving any extra
// entries exactly tied with the current worst retained distance, so that
// ties straddling the count boundary are never silently dropped.
func (t *RTree) collectNearestN(p Point, count int, furthestDistance float64) []nnCandidate {
	if count <= 0 || t.size == 0 {
		return nil
	}

	cutoffSq := furthestDistance * furthestDistance
	heap := newPriorityQueue(sortDescending)
	var side []nnCandidate

	insert := func(id int32, d float64) {
		if heap.size() < count {
			heap.insert(id, d)
			return
		}
		peek := heap.peekPriority()
		switch {
		case d > peek:
			return
		case d == peek:
			side = append(side, nnCandidate{id, d})
		default:
			evictedID, evictedPriority := heap.pop()
			heap.insert(id, d)
			if heap.peekPriority() != peek {
				// The evicted entry was the last one at the old boundary:
				// the boundary itself moved, so neither it nor any
				// previously buffered tie still belongs in side.
				side = side[:0]
			} else {
				// Other entries still sit at the old boundary, so the one
				// just evicted to make room is tied with them and must be
				// kept, not silently dropped.
				side = append(side, nnCandidate{evictedID, evictedPriority})
			}
		}
	}

	t.rangeNodeStack = t.rangeNodeStack[:0]
	t.rangeCursorStack = t.rangeCursorStack[:0]
	t.pushRange(t.rootNodeID, 0)

	for len(t.rangeNodeStack) > 0 {
		top := len(t.rangeNodeStack) - 1
		nid := t.rangeNodeStack[top]
		cur := t.rangeCursorStack[top]
		n := t.nodeTable[nid]

		if n.isLeaf() {
			for i := cur; i < n.entryCount; i++ {
				d := DistanceSq(n.entryRect(i), p)
				if d <= cutoffSq {
					insert(n.ids[i], d)
				}
			}
			t.popRange()
			if heap.size() == count {
				cutoffSq = math.Min(cutoffSq, heap.peekPriority())
			}
			continue
		}

		advanced := false
		for i := cur; i < n.entryCount; i++ {
			t.rangeCursorStack[top] = i + 1
			if DistanceSq(n.entryRect(i), p) <= cutoffSq {
				t.pushRange(n.ids[i], 0)
				advanced = true
				break
			}
		}
		if !advanced {
			t.popRange()
		}
	}

	result := make([]nnCandidate, 0, heap.size()+len(side))
	for heap.size() > 0 {
		id, d := heap.pop()
		result = append(result, nnCandidate{id, d})
	}
	result = append(result, side...)
	return result
}

// NearestN streams the n nearest ids to p, ascending by distance, plus
// any extra ids tied with the n-th nearest distance.
func (t *RTree) NearestN(p Point, sink func(id int32) bool, n int, furthestDistance float64) {
	cands := t.collectNearestN(p, n, furthestDistance)
	insertionSortByDistance(cands)
	for _, c := range cands {
		if !sink(c.id) {
			return
		}
	}
}

// NearestNUnsorted reports the same set of ids as NearestN given identical
// arguments, without paying for the final sort.
func (t *RTree) NearestNUnsorted(p Point, sink func(id int32) bool, n int, furthestDistance float64) {
	cands := t.collectNearestN(p, n, furthestDistance)
	for _, c := range cands {
		if !sink(c.id) {
			return
		}
	}
}

func insertionSortByDistance(cands []nnCandidate) {
	for i := 1; i < len(cands); i++ {
		for j := i; j > 0 && cands[j].distSq < cands[j-1].distSq; j-- {
			cands[j], cands[j-1] = cands[j-1], cands[j]
		}
	}
}
