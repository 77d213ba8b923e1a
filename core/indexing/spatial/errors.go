package spatial

import "errors"

// --- Error Definitions ---

var (
	// ErrInvalidConfig marks a configuration value outside its legal
	// range. Never returned from a public method -- NewRTree clamps to a
	// default and logs a warning instead, per the non-fatal configuration
	// error class.
	ErrInvalidConfig = errors.New("rtree: configuration value out of range")

	// ErrTreeCorrupt marks an internal invariant violation: a parent
	// entry pointing at a node that does not exist in the node table, or
	// an MBR that no longer matches what CheckConsistency expects. The
	// tree is no longer safe to use once this is observed.
	ErrTreeCorrupt = errors.New("rtree: internal invariant violation, tree is corrupt")

	// ErrEntryNotFound is an internal sentinel returned by findLeaf when
	// no entry matches both the rectangle and id exactly. It never
	// escapes Delete, which reports not-found as false rather than as
	// an error.
	ErrEntryNotFound = errors.New("rtree: entry not found")
)
