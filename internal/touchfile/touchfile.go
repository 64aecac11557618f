// Package touchfile implements the Touch-v2 on-disk format: a dynamically
// grown set of per-(path, period) event-count ring buffers, addressed by
// wall-clock modulo the period (spec.md §3, §4.3, §4.4).
package touchfile

import "errors"

// Version is the 32-bit discriminator every Touch-v2 file begins with.
const Version uint32 = 2

// MaxPathLength is the fixed, NUL-padded width of a set's path field
// (TOUCHMAXPATHLENGTH in original_source/rrdb.h).
const MaxPathLength = 100

// DefaultMaxSets and DefaultSampleCount are the fallbacks touch uses when
// the caller passes zero for either (TOUCHMAXDEFAULTSETS /
// TOUCHDEFAULTSAMPLECOUNT in original_source/rrdb.h).
const (
	DefaultMaxSets     = 50
	DefaultSampleCount = 2000
)

// headerSize is the encoded size of {version, sets, samplesPerSet}, three
// uint32 fields, little-endian, no padding.
const headerSize = 4 * 3

// setHeaderSize is the encoded size of one set's {lastTouch, path, period}:
// int64 + MaxPathLength bytes + uint32.
const setHeaderSize = 8 + MaxPathLength + 4

var (
	// ErrBadVersion indicates the file's version discriminator did not
	// match Version (a Format error per spec.md §7).
	ErrBadVersion = errors.New("touchfile: not a Touch-v2 file")
	// ErrEmptyPath indicates a touch path component was empty (an Input
	// error per spec.md §7). Fetch does not return it: an empty path there
	// matches any set.
	ErrEmptyPath = errors.New("touchfile: path must not be empty")
	// ErrPathTooLong indicates a path component exceeded MaxPathLength-1
	// bytes (it must fit NUL-terminated into the fixed path field).
	ErrPathTooLong = errors.New("touchfile: path exceeds maximum length")
)

// setBlockSize returns the total encoded size of one set's header plus its
// samplesPerSet count buckets.
func setBlockSize(samplesPerSet uint32) int64 {
	return int64(setHeaderSize) + int64(samplesPerSet)*4
}
