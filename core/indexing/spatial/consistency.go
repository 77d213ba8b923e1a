package spatial

import (
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// CheckConsistency walks the whole tree and verifies, for every node:
// that it is reachable and present in the node table, that its level
// matches its depth from the root, that every non-root node's entry
// count lies within [minNodeEntries, maxNodeEntries], and that its MBR is
// exactly the union of its own entries' rectangles. It is a diagnostic,
// not something the package calls on its own behalf -- callers who
// suspect corruption (e.g. after recovering a tree from an external
// store) should invoke it explicitly.
func (t *RTree) CheckConsistency() error {
	err := t.checkNode(t.rootNodeID, t.treeHeight)
	if err != nil {
		t.log.Error("rtree: consistency check failed", zap.Error(err))
	}
	return err
}

func (t *RTree) checkNode(nodeID int32, expectedLevel int) error {
	n, ok := t.nodeTable[nodeID]
	if !ok {
		return fmt.Errorf("%w: node %d referenced but missing from node table", ErrTreeCorrupt, nodeID)
	}

	var errs error
	if n.level != expectedLevel {
		errs = multierr.Append(errs, fmt.Errorf("%w: node %d at level %d, want %d", ErrTreeCorrupt, nodeID, n.level, expectedLevel))
	}
	if nodeID != t.rootNodeID && (n.entryCount < t.minNodeEntries || n.entryCount > t.maxNodeEntries) {
		errs = multierr.Append(errs, fmt.Errorf("%w: node %d has %d entries, want [%d,%d]", ErrTreeCorrupt, nodeID, n.entryCount, t.minNodeEntries, t.maxNodeEntries))
	}

	if n.entryCount > 0 {
		union := n.entryRect(0)
		for i := 1; i < n.entryCount; i++ {
			Add(&union, n.entryRect(i))
		}
		if !Equals(union, n.mbr) {
			errs = multierr.Append(errs, fmt.Errorf("%w: node %d mbr does not match the union of its entries", ErrTreeCorrupt, nodeID))
		}
	}

	if !n.isLeaf() {
		for i := 0; i < n.entryCount; i++ {
			if err := t.checkNode(n.ids[i], n.level-1); err != nil {
				errs = multierr.Append(errs, err)
			}
		}
	}
	return errs
}
