// Package ring implements the circular-buffer update algebra shared by the
// RRDB-v1 main sample ring and every xform stream (spec.md §4.1): advancing
// a write cursor modulo the slot count, forward-in-time iteration for
// printing, and reverse-in-time iteration for aggregation scans.
package ring

// Advance bumps pos by one modulo n and returns the new position. n must be
// > 0.
func Advance(pos, n int) int {
	return (pos + 1) % n
}

// Forward visits slot indices (pos+1+i) mod n for i in [0,n), in
// insertion-time order, stopping early if yield returns false. This is the
// order printRRDBFile and printRRDBFileXform traverse the ring in.
func Forward(pos, n int, yield func(index int) bool) {
	for i := 0; i < n; i++ {
		idx := (pos + 1 + i) % n
		if !yield(idx) {
			return
		}
	}
}

// Reverse visits slot indices (pos-i+n) mod n for i in [0,n), in
// reverse-insertion-time order, used by aggregation scans that need the most
// recently written slots first. It stops at the first index for which
// inWindow returns false, and before calling yield on it -- this is the
// early-termination optimization spec.md §4.1 requires preserving, relying
// on strictly monotonic insertion-order timestamps. inWindow may be nil, in
// which case Reverse always continues until yield returns false or i == n.
func Reverse(pos, n int, inWindow func(index int) bool, yield func(index int) bool) {
	for i := 0; i < n; i++ {
		idx := (pos - i + n) % n
		if inWindow != nil && !inWindow(idx) {
			return
		}
		if !yield(idx) {
			return
		}
	}
}
