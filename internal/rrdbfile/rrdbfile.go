// Package rrdbfile implements the RRDB-v1 on-disk format: a fixed-shape
// circular buffer of timestamped numeric samples plus up to
// MaxXformsTotal derived rolling-aggregate streams (spec.md §3, §4.2).
package rrdbfile

import (
	"errors"
	"fmt"

	"github.com/babblevoice/rrdb/internal/format"
)

// Version is the 32-bit discriminator every RRDB-v1 file begins with.
const Version uint32 = 1

// MaxSets is the maximum number of parallel value columns a v1 file can
// hold (spec.md §3, MAXNUMSETS in original_source/rrdb.h).
const MaxSets = 20

// MaxXformsPerSet is the maximum number of xform streams any one set may
// drive (MAXNUMXFORMPERSET in original_source/rrdb.h).
const MaxXformsPerSet = 5

// MaxXformsTotal is the overall cap on xform streams in a single file
// (spec.md §3: xformCount ≤ MAXNUMSETS×MAXNUMXFORMPERSET).
const MaxXformsTotal = MaxSets * MaxXformsPerSet

var (
	// ErrBadVersion indicates the file's version discriminator did not
	// match Version (a Format error per spec.md §7).
	ErrBadVersion = errors.New("rrdbfile: not an RRDB-v1 file")
	// ErrZeroSampleCount indicates create was asked for a zero-length
	// ring (an Input error per spec.md §7).
	ErrZeroSampleCount = errors.New("rrdbfile: sample count must be greater than zero")
	// ErrTooManySets indicates setCount exceeded MaxSets.
	ErrTooManySets = errors.New("rrdbfile: set count exceeds maximum")
	// ErrXformIndexOutOfBounds is returned by Fetch/Modify for an xform
	// index that is not < len(File.Xforms) -- adopting the v2 printer's
	// ">=" bound check per spec.md §9 open question #2, not the v1
	// printer's off-by-one "index > xformCount".
	ErrXformIndexOutOfBounds = errors.New("xform index out of bounds")
)

// TimePoint is a single ring slot's timestamp (spec.md §3). A slot is
// valid iff it has been written at least once since file creation.
type TimePoint struct {
	Sec   int64
	Usec  int32
	Valid bool
}

// Xform is one derived aggregate stream: a reducer applied to one set's
// values, re-computed incrementally on every Update (spec.md §4.2).
type Xform struct {
	Period        format.Period
	Reducer       format.Reducer
	SetIndex      uint32
	WindowPos     uint32
	Times         []TimePoint
	Data          []float64
}

// File is the complete in-memory image of an RRDB-v1 file (spec.md §3).
// Unlike the source's pointer-graph record (raw pointers to separately
// malloc'd column arrays), this holds everything as plain indexed slices
// owned by the single File value -- there is nothing here that crosses an
// API boundary as a raw address (Design Note "Pointer-graph file image").
type File struct {
	WindowPos   uint32
	SampleCount uint32
	Times       []TimePoint  // len == SampleCount
	Sets        [][]float64  // len(Sets) == SetCount, each len == SampleCount
	Xforms      []Xform      // len <= MaxXformsTotal
}

// SetCount returns the number of value columns in the main ring.
func (f *File) SetCount() int { return len(f.Sets) }

// New builds a zero-initialized File ready to be written to disk, per
// spec.md §3 "Lifecycle: create writes a fully zero-initialized image."
func New(setCount, sampleCount int, xforms []Xform) (*File, error) {
	if sampleCount <= 0 {
		return nil, ErrZeroSampleCount
	}
	if setCount < 0 || setCount > MaxSets {
		return nil, ErrTooManySets
	}
	if len(xforms) > MaxXformsTotal {
		return nil, fmt.Errorf("rrdbfile: %d xforms exceeds maximum of %d", len(xforms), MaxXformsTotal)
	}

	f := &File{
		SampleCount: uint32(sampleCount),
		Times:       make([]TimePoint, sampleCount),
		Sets:        make([][]float64, setCount),
	}
	for i := range f.Sets {
		f.Sets[i] = make([]float64, sampleCount)
	}
	f.Xforms = make([]Xform, len(xforms))
	for i, x := range xforms {
		f.Xforms[i] = Xform{
			Period:   x.Period,
			Reducer:  x.Reducer,
			SetIndex: x.SetIndex,
			Times:    make([]TimePoint, sampleCount),
			Data:     make([]float64, sampleCount),
		}
	}
	return f, nil
}
