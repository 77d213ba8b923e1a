package spatial

import (
	"sync"

	"go.uber.org/zap"
)

// SpatialIndexManager is a concurrency-safe façade over a single RTree.
// RTree itself assumes single-threaded use; this type is the external
// lock callers should reach for instead of sharing a bare *RTree across
// goroutines.
type SpatialIndexManager struct {
	mu   sync.RWMutex
	tree *RTree
	log  *zap.Logger
}

// NewSpatialIndexManager builds a manager around a freshly constructed
// RTree using cfg.
func NewSpatialIndexManager(cfg Config, log *zap.Logger) (*SpatialIndexManager, error) {
	tree, err := NewRTree(cfg, log)
	if err != nil {
		return nil, err
	}
	return &SpatialIndexManager{tree: tree, log: tree.Logger()}, nil
}

// Insert adds (rect, id) to the index.
func (m *SpatialIndexManager) Insert(rect Rectangle, id int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tree.Insert(rect, id)
}

// Delete removes the entry matching (rect, id) exactly, reporting whether
// it was present.
func (m *SpatialIndexManager) Delete(rect Rectangle, id int32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tree.Delete(rect, id)
}

// Intersects calls sink for every id intersecting query. The queries take
// the exclusive lock because they reuse scratch stacks stored on the tree.
// sink is invoked while that lock is held, so it must not call back into
// the manager.
func (m *SpatialIndexManager) Intersects(query Rectangle, sink func(id int32) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tree.Intersects(query, sink)
}

// Contains calls sink for every id whose rectangle is enclosed by query.
func (m *SpatialIndexManager) Contains(query Rectangle, sink func(id int32) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tree.Contains(query, sink)
}

// Nearest calls sink for every id tied for nearest to p within
// furthestDistance.
func (m *SpatialIndexManager) Nearest(p Point, sink func(id int32) bool, furthestDistance float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tree.Nearest(p, sink, furthestDistance)
}

// NearestN calls sink for the n ids nearest to p, ascending by distance,
// plus any extras tied with the n-th distance.
func (m *SpatialIndexManager) NearestN(p Point, sink func(id int32) bool, n int, furthestDistance float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tree.NearestN(p, sink, n, furthestDistance)
}

// Size returns the number of indexed entries.
func (m *SpatialIndexManager) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tree.Size()
}

// Bounds returns the MBR of every indexed entry, or false if empty.
func (m *SpatialIndexManager) Bounds() (Rectangle, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tree.Bounds()
}

// Version identifies the underlying index implementation.
func (m *SpatialIndexManager) Version() string {
	return m.tree.Version()
}

// CheckConsistency runs the underlying tree's consistency check under the
// manager's read lock.
func (m *SpatialIndexManager) CheckConsistency() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.tree.CheckConsistency()
}
