package rrdbfile

import (
	"time"

	"github.com/babblevoice/rrdb/internal/format"
	"github.com/babblevoice/rrdb/internal/ring"
)

// Update advances the main ring by one slot, writes now and values into it,
// and folds the new sample into every xform stream's current or newly
// opened window (spec.md §4.2). values shorter than len(f.Sets) are
// zero-padded; values beyond len(f.Sets) are ignored -- matching the
// source's strtok loop, which only consumes setCount tokens.
func (f *File) Update(now time.Time, values []float64) {
	n := int(f.SampleCount)
	pos := ring.Advance(int(f.WindowPos), n)
	f.WindowPos = uint32(pos)

	sec := now.Unix()
	usec := int32(now.Nanosecond() / 1000)
	f.Times[pos] = TimePoint{Sec: sec, Usec: usec, Valid: true}

	for i, set := range f.Sets {
		var v float64
		if i < len(values) {
			v = values[i]
		}
		set[pos] = v
	}

	for i := range f.Xforms {
		f.updateXform(i, now, pos)
	}
}

// updateXform applies the current sample (already written into the main
// ring at mainPos) to xform i, computing its calendar-aligned window start
// and either updating the current write slot in place or opening a new one
// (spec.md §4.2 steps 3-5).
func (f *File) updateXform(i int, now time.Time, mainPos int) {
	x := &f.Xforms[i]
	n := int(f.SampleCount)
	windowStart := x.Period.WindowStart(now)

	writePos := int(x.WindowPos)
	movedOn := x.Times[writePos].Sec != windowStart.Unix()
	if movedOn {
		writePos = ring.Advance(writePos, n)
	}

	// RRDBCOUNT never reads a set (setIndex is optional and omitted in
	// practice), so it must not index f.Sets -- a count xform is valid on
	// a file with zero sets (spec.md §8 scenario #1).
	var incoming float64
	if x.Reducer != format.ReducerCount {
		incoming = f.Sets[x.SetIndex][mainPos]
	}

	var result float64
	if x.Reducer == format.ReducerMean {
		// The hidden running-count slot lives immediately after the write
		// slot, with its Valid flag cleared so readers never see it
		// (spec.md §3, §4.2 step 5).
		countPos := ring.Advance(writePos, n)
		if movedOn {
			x.Times[countPos].Valid = false
			x.Data[countPos] = 1
			result = x.Reducer.Open(incoming)
		} else {
			count := x.Data[countPos]
			result = x.Reducer.Update(x.Data[writePos], incoming, count)
			x.Data[countPos] = count + 1
		}
	} else if movedOn {
		result = x.Reducer.Open(incoming)
	} else {
		result = x.Reducer.Update(x.Data[writePos], incoming, 0)
	}

	x.Data[writePos] = result
	x.Times[writePos] = TimePoint{Sec: windowStart.Unix(), Usec: 0, Valid: true}
	x.WindowPos = uint32(writePos)
}
