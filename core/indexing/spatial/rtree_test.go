package spatial

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTree(t *testing.T, cfg Config) *RTree {
	t.Helper()
	tree, err := NewRTree(cfg, zap.NewNop())
	require.NoError(t, err)
	return tree
}

func smallTree(t *testing.T) *RTree {
	return setupTree(t, Config{MaxNodeEntries: 4, MinNodeEntries: 2})
}

func collectIDs(f func(sink func(id int32) bool)) []int32 {
	var out []int32
	f(func(id int32) bool {
		out = append(out, id)
		return true
	})
	return out
}

func sortedInts(ids []int32) []int32 {
	out := append([]int32(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// --- universal invariants ---

func TestNewRTreeIsEmpty(t *testing.T) {
	tree := smallTree(t)
	require.Equal(t, 0, tree.Size())
	_, ok := tree.Bounds()
	require.False(t, ok)
}

func TestNewRTreeBuildsDefaultLoggerWhenNilPassed(t *testing.T) {
	tree, err := NewRTree(Config{MaxNodeEntries: 4, MinNodeEntries: 2}, nil)
	require.NoError(t, err)
	require.NotNil(t, tree.Logger())
}

func TestInsertThenSizeIncreases(t *testing.T) {
	tree := smallTree(t)
	for i := int32(0); i < 20; i++ {
		tree.Insert(NewRectangle(float64(i), float64(i), float64(i)+1, float64(i)+1), i)
		require.Equal(t, int(i)+1, tree.Size())
	}
}

func TestDeleteThenSizeDecreases(t *testing.T) {
	tree := smallTree(t)
	r := NewRectangle(0, 0, 1, 1)
	tree.Insert(r, 1)
	require.True(t, tree.Delete(r, 1))
	require.Equal(t, 0, tree.Size())
}

func TestDeleteUnknownEntryReturnsFalse(t *testing.T) {
	tree := smallTree(t)
	tree.Insert(NewRectangle(0, 0, 1, 1), 1)
	require.False(t, tree.Delete(NewRectangle(99, 99, 100, 100), 1))
	require.False(t, tree.Delete(NewRectangle(0, 0, 1, 1), 2))
	require.Equal(t, 1, tree.Size())
}

func TestDeleteEmptiesTreeBackToEmptyMBR(t *testing.T) {
	tree := smallTree(t)
	tree.Insert(NewRectangle(0, 0, 1, 1), 1)
	tree.Insert(NewRectangle(5, 5, 6, 6), 2)
	require.True(t, tree.Delete(NewRectangle(0, 0, 1, 1), 1))
	require.True(t, tree.Delete(NewRectangle(5, 5, 6, 6), 2))

	require.Equal(t, 0, tree.Size())
	_, ok := tree.Bounds()
	require.False(t, ok)
	require.NoError(t, tree.CheckConsistency())
}

func TestEveryNodeRespectsEntryCountBounds(t *testing.T) {
	tree := setupTree(t, Config{MaxNodeEntries: 4, MinNodeEntries: 2})
	rng := rand.New(rand.NewSource(1))
	for i := int32(0); i < 500; i++ {
		x := float64(rng.Intn(100))
		y := float64(rng.Intn(100))
		tree.Insert(NewRectangle(x, y, x+1, y+1), i)
	}
	require.NoError(t, tree.CheckConsistency())
}

func TestBoundsIsUnionOfAllEntries(t *testing.T) {
	tree := smallTree(t)
	tree.Insert(NewRectangle(-5, 0, -3, 2), 1)
	tree.Insert(NewRectangle(10, 10, 12, 20), 2)
	tree.Insert(NewRectangle(0, -8, 1, -7), 3)

	b, ok := tree.Bounds()
	require.True(t, ok)
	require.Equal(t, Rectangle{MinX: -5, MinY: -8, MaxX: 12, MaxY: 20}, b)
}

// --- query correctness ---

func TestIntersectsFindsOverlapping(t *testing.T) {
	tree := smallTree(t)
	tree.Insert(NewRectangle(0, 0, 2, 2), 1)
	tree.Insert(NewRectangle(10, 10, 12, 12), 2)
	tree.Insert(NewRectangle(1, 1, 3, 3), 3)

	got := sortedInts(collectIDs(func(sink func(int32) bool) {
		tree.Intersects(NewRectangle(0, 0, 2, 2), sink)
	}))
	require.Equal(t, []int32{1, 3}, got)
}

func TestContainsOnlyReportsFullyEnclosed(t *testing.T) {
	tree := smallTree(t)
	tree.Insert(NewRectangle(2, 2, 4, 4), 1) // enclosed
	tree.Insert(NewRectangle(0, 0, 6, 6), 2) // larger than the query
	tree.Insert(NewRectangle(5, 5, 7, 7), 3) // overlapping, not enclosed

	got := collectIDs(func(sink func(int32) bool) {
		tree.Contains(NewRectangle(0, 0, 5, 5), sink)
	})
	require.Equal(t, []int32{1}, got)
}

func TestIntersectsEmptyTree(t *testing.T) {
	tree := smallTree(t)
	got := collectIDs(func(sink func(int32) bool) {
		tree.Intersects(NewRectangle(0, 0, 1, 1), sink)
	})
	require.Empty(t, got)
}

func TestIntersectsSinkEarlyStop(t *testing.T) {
	tree := smallTree(t)
	for i := int32(0); i < 10; i++ {
		tree.Insert(NewRectangle(0, 0, 1, 1), i)
	}
	count := 0
	tree.Intersects(NewRectangle(0, 0, 1, 1), func(id int32) bool {
		count++
		return count < 3
	})
	require.Equal(t, 3, count)
}

func TestNearestFindsSingleClosest(t *testing.T) {
	tree := smallTree(t)
	tree.Insert(NewRectangle(0, 0, 1, 1), 1)
	tree.Insert(NewRectangle(10, 10, 11, 11), 2)
	tree.Insert(NewRectangle(5, 5, 6, 6), 3)

	got := collectIDs(func(sink func(int32) bool) {
		tree.Nearest(Point{X: -1, Y: -1}, sink, math.Inf(1))
	})
	require.Equal(t, []int32{1}, got)
}

func TestNearestReturnsAllTies(t *testing.T) {
	tree := smallTree(t)
	tree.Insert(NewRectangle(-1, 0, 0, 1), 1)
	tree.Insert(NewRectangle(1, 0, 2, 1), 2)
	tree.Insert(NewRectangle(10, 10, 11, 11), 3)

	got := sortedInts(collectIDs(func(sink func(int32) bool) {
		tree.Nearest(Point{X: 0.5, Y: 0.5}, sink, math.Inf(1))
	}))
	require.Equal(t, []int32{1, 2}, got)
}

func TestNearestRespectsFurthestDistance(t *testing.T) {
	tree := smallTree(t)
	tree.Insert(NewRectangle(100, 100, 101, 101), 1)

	got := collectIDs(func(sink func(int32) bool) {
		tree.Nearest(Point{X: 0, Y: 0}, sink, 1.0)
	})
	require.Empty(t, got, "nothing lies within furthestDistance")
}

func TestNearestNOrdersAscendingByDistance(t *testing.T) {
	tree := smallTree(t)
	tree.Insert(NewRectangle(1, 0, 1, 0), 1)
	tree.Insert(NewRectangle(2, 0, 2, 0), 2)
	tree.Insert(NewRectangle(3, 0, 3, 0), 3)
	tree.Insert(NewRectangle(4, 0, 4, 0), 4)

	got := collectIDs(func(sink func(int32) bool) {
		tree.NearestN(Point{X: 0, Y: 0}, sink, 3, math.Inf(1))
	})
	require.Equal(t, []int32{1, 2, 3}, got)
}

func TestNearestNIncludesTiesAtBoundary(t *testing.T) {
	tree := smallTree(t)
	tree.Insert(NewRectangle(1, 0, 1, 0), 1)
	tree.Insert(NewRectangle(-1, 0, -1, 0), 2) // ties with id 1
	tree.Insert(NewRectangle(5, 0, 5, 0), 3)

	got := sortedInts(collectIDs(func(sink func(int32) bool) {
		tree.NearestN(Point{X: 0, Y: 0}, sink, 1, math.Inf(1))
	}))
	require.Equal(t, []int32{1, 2}, got, "both entries tied for nearest must be returned even though n=1")
}

func TestNearestNIncludesTiesBrokenByLaterEviction(t *testing.T) {
	tree := smallTree(t)
	// All four entries land in one unsplit leaf (MaxNodeEntries=4), so
	// traversal order equals insertion order: two ties at distSq=9 are
	// inserted before the heap fills, a third (closer) candidate then
	// evicts one of them, and a fourth tie at distSq=9 arrives last. The
	// evicted entry must survive into the result via the side buffer
	// since it is still tied with the entry left behind in the heap.
	tree.Insert(NewRectangle(3, 0, 3, 0), 1)  // distSq=9
	tree.Insert(NewRectangle(-3, 0, -3, 0), 2) // distSq=9, ties with 1
	tree.Insert(NewRectangle(1, 0, 1, 0), 3)   // distSq=1, strictly closer
	tree.Insert(NewRectangle(0, 3, 0, 3), 4)   // distSq=9, ties with 1 and 2

	got := sortedInts(collectIDs(func(sink func(int32) bool) {
		tree.NearestN(Point{X: 0, Y: 0}, sink, 2, math.Inf(1))
	}))
	require.Equal(t, []int32{1, 2, 3, 4}, got, "all entries tied at the boundary distance must survive, not just the one left in the heap")

	legacy := sortedInts(tree.nearestNLegacy(Point{X: 0, Y: 0}, 2, math.Inf(1)))
	require.Equal(t, []int32{1, 2, 3, 4}, legacy, "legacy path already gets this case right")
}

func TestNearestNUnsortedReturnsSameSetAsNearestN(t *testing.T) {
	tree := setupTree(t, Config{MaxNodeEntries: 4, MinNodeEntries: 2})
	rng := rand.New(rand.NewSource(42))
	for i := int32(0); i < 100; i++ {
		x := float64(rng.Intn(50))
		y := float64(rng.Intn(50))
		tree.Insert(NewRectangle(x, y, x, y), i)
	}

	sorted := sortedInts(collectIDs(func(sink func(int32) bool) {
		tree.NearestN(Point{X: 25, Y: 25}, sink, 10, math.Inf(1))
	}))
	unsorted := sortedInts(collectIDs(func(sink func(int32) bool) {
		tree.NearestNUnsorted(Point{X: 25, Y: 25}, sink, 10, math.Inf(1))
	}))
	require.Equal(t, sorted, unsorted)
}

func TestNearestNLegacyAgreesWithNearestN(t *testing.T) {
	tree := setupTree(t, Config{MaxNodeEntries: 4, MinNodeEntries: 2})
	rng := rand.New(rand.NewSource(7))
	for i := int32(0); i < 200; i++ {
		x := float64(rng.Intn(80))
		y := float64(rng.Intn(80))
		tree.Insert(NewRectangle(x, y, x, y), i)
	}

	p := Point{X: 40, Y: 40}
	modern := sortedInts(collectIDs(func(sink func(int32) bool) {
		tree.NearestN(p, sink, 7, math.Inf(1))
	}))
	legacy := sortedInts(tree.nearestNLegacy(p, 7, math.Inf(1)))
	require.Equal(t, modern, legacy)
}

// --- split/merge stress ---

func TestInsertForcesSplitAndTreeStaysConsistent(t *testing.T) {
	tree := setupTree(t, Config{MaxNodeEntries: 4, MinNodeEntries: 2})
	for i := int32(0); i < 4; i++ {
		tree.Insert(NewRectangle(float64(i), 0, float64(i)+1, 1), i)
	}
	require.Equal(t, 1, tree.treeHeight, "still fits in a single leaf")

	tree.Insert(NewRectangle(5, 0, 6, 1), 4)
	require.Greater(t, tree.treeHeight, 1, "the fifth entry forces the root to split")
	require.NoError(t, tree.CheckConsistency())
}

func TestDeleteCondensesTreeBackDown(t *testing.T) {
	tree := setupTree(t, Config{MaxNodeEntries: 4, MinNodeEntries: 2})
	var rects []Rectangle
	for i := int32(0); i < 50; i++ {
		x := float64(i)
		r := NewRectangle(x, 0, x+1, 1)
		rects = append(rects, r)
		tree.Insert(r, i)
	}
	require.NoError(t, tree.CheckConsistency())

	for i := int32(0); i < 49; i++ {
		require.True(t, tree.Delete(rects[i], i))
		require.NoError(t, tree.CheckConsistency())
	}
	require.Equal(t, 1, tree.Size())
	require.Equal(t, 1, tree.treeHeight, "the tree collapses back down as entries are removed")
}

func TestInsertDeleteInsertRoundTrip(t *testing.T) {
	tree := setupTree(t, Config{MaxNodeEntries: 4, MinNodeEntries: 2})
	rng := rand.New(rand.NewSource(99))

	present := map[int32]Rectangle{}
	for i := int32(0); i < 300; i++ {
		op := rng.Intn(3)
		switch {
		case op < 2 || len(present) == 0:
			x := float64(rng.Intn(40))
			y := float64(rng.Intn(40))
			r := NewRectangle(x, y, x+1, y+1)
			tree.Insert(r, i)
			present[i] = r
		default:
			for id, r := range present {
				require.True(t, tree.Delete(r, id))
				delete(present, id)
				break
			}
		}
	}
	require.Equal(t, len(present), tree.Size())
	require.NoError(t, tree.CheckConsistency())

	for id, r := range present {
		got := collectIDs(func(sink func(int32) bool) {
			tree.Intersects(r, sink)
		})
		require.Contains(t, got, id)
	}
}

func TestVersionString(t *testing.T) {
	tree := smallTree(t)
	require.Equal(t, "RTree-1.0b2", tree.Version())
}

// --- fixed seed scenarios ---

func TestSeedScenarioGridOfUnitSquares(t *testing.T) {
	tree := setupTree(t, Config{MaxNodeEntries: 4, MinNodeEntries: 2})
	id := int32(0)
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			tree.Insert(NewRectangle(float64(x), float64(y), float64(x)+1, float64(y)+1), id)
			id++
		}
	}
	require.Equal(t, 100, tree.Size())
	require.NoError(t, tree.CheckConsistency())

	got := collectIDs(func(sink func(int32) bool) {
		tree.Intersects(NewRectangle(4.5, 4.5, 5.5, 5.5), sink)
	})
	require.Len(t, got, 4, "a query straddling four unit cells should hit exactly those four")
}

func TestSeedScenarioDuplicateRectangleDistinctIDs(t *testing.T) {
	tree := smallTree(t)
	r := NewRectangle(0, 0, 1, 1)
	tree.Insert(r, 1)
	tree.Insert(r, 2)

	got := sortedInts(collectIDs(func(sink func(int32) bool) {
		tree.Intersects(r, sink)
	}))
	require.Equal(t, []int32{1, 2}, got)

	require.True(t, tree.Delete(r, 1))
	got = collectIDs(func(sink func(int32) bool) {
		tree.Intersects(r, sink)
	})
	require.Equal(t, []int32{2}, got)
}

func TestSeedScenarioPointRectangles(t *testing.T) {
	tree := smallTree(t)
	for i := int32(0); i < 20; i++ {
		tree.Insert(NewRectangle(float64(i), float64(i), float64(i), float64(i)), i)
	}
	require.NoError(t, tree.CheckConsistency())

	got := collectIDs(func(sink func(int32) bool) {
		tree.Intersects(NewRectangle(5, 5, 5, 5), sink)
	})
	require.Equal(t, []int32{5}, got)
}

func TestSeedScenarioLinearChain(t *testing.T) {
	tree := setupTree(t, Config{MaxNodeEntries: 3, MinNodeEntries: 1})
	for i := int32(0); i < 30; i++ {
		x := float64(i) * 100
		tree.Insert(NewRectangle(x, 0, x+1, 1), i)
	}
	require.NoError(t, tree.CheckConsistency())

	got := collectIDs(func(sink func(int32) bool) {
		tree.Nearest(Point{X: 1550, Y: 0.5}, sink, math.Inf(1))
	})
	require.Equal(t, []int32{15}, got)
}

func TestSeedScenarioAllSamePointThenFullDrain(t *testing.T) {
	tree := setupTree(t, Config{MaxNodeEntries: 4, MinNodeEntries: 2})
	const n = 40
	for i := int32(0); i < n; i++ {
		tree.Insert(NewRectangle(3, 3, 3, 3), i)
	}
	require.Equal(t, n, tree.Size())
	require.NoError(t, tree.CheckConsistency())

	for i := int32(0); i < n; i++ {
		require.True(t, tree.Delete(NewRectangle(3, 3, 3, 3), i))
	}
	require.Equal(t, 0, tree.Size())
	require.NoError(t, tree.CheckConsistency())
}

func TestSeedScenarioManyEntriesDeepTree(t *testing.T) {
	tree := setupTree(t, Config{MaxNodeEntries: 4, MinNodeEntries: 2})
	rng := rand.New(rand.NewSource(2024))
	for i := int32(0); i < 2000; i++ {
		x := rng.Float64() * 1000
		y := rng.Float64() * 1000
		tree.Insert(NewRectangle(x, y, x+0.5, y+0.5), i)
	}
	require.Greater(t, tree.treeHeight, 2, "two thousand entries at max 4 per node must build a deep tree")
	require.NoError(t, tree.CheckConsistency())
}

func TestCheckConsistencyCatchesMissingNode(t *testing.T) {
	tree := smallTree(t)
	tree.Insert(NewRectangle(0, 0, 1, 1), 1)
	tree.Insert(NewRectangle(10, 10, 11, 11), 2)
	tree.Insert(NewRectangle(20, 20, 21, 21), 3)
	tree.Insert(NewRectangle(30, 30, 31, 31), 4)
	tree.Insert(NewRectangle(40, 40, 41, 41), 5) // forces at least one split

	require.NoError(t, tree.CheckConsistency())

	root := tree.nodeTable[tree.rootNodeID]
	require.Greater(t, root.entryCount, 0)
	victim := root.ids[0]
	delete(tree.nodeTable, victim)

	err := tree.CheckConsistency()
	require.Error(t, err)
	require.ErrorIs(t, err, ErrTreeCorrupt)
}

func TestManyEntriesIntersectsMatchesBruteForce(t *testing.T) {
	tree := setupTree(t, Config{MaxNodeEntries: 4, MinNodeEntries: 2})
	rng := rand.New(rand.NewSource(55))

	type entry struct {
		id int32
		r  Rectangle
	}
	var entries []entry
	for i := int32(0); i < 300; i++ {
		x := float64(rng.Intn(60))
		y := float64(rng.Intn(60))
		w := float64(rng.Intn(5) + 1)
		h := float64(rng.Intn(5) + 1)
		r := NewRectangle(x, y, x+w, y+h)
		tree.Insert(r, i)
		entries = append(entries, entry{i, r})
	}

	query := NewRectangle(20, 20, 35, 35)
	var want []int32
	for _, e := range entries {
		if Intersects(e.r, query) {
			want = append(want, e.id)
		}
	}

	got := collectIDs(func(sink func(int32) bool) {
		tree.Intersects(query, sink)
	})
	require.ElementsMatch(t, want, got, fmt.Sprintf("want %d matches, got %d", len(want), len(got)))
}
