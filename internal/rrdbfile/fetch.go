package rrdbfile

import (
	"fmt"
	"io"

	"github.com/babblevoice/rrdb/internal/ring"
)

// FetchMain writes each valid main-ring slot forward-in-time as
// "sec.usec:v0:v1:..." (spec.md §4.5).
func (f *File) FetchMain(w io.Writer) error {
	var err error
	ring.Forward(int(f.WindowPos), int(f.SampleCount), func(idx int) bool {
		tp := f.Times[idx]
		if !tp.Valid {
			return true
		}
		if _, werr := fmt.Fprintf(w, "%d.%d", tp.Sec, tp.Usec); werr != nil {
			err = werr
			return false
		}
		for _, set := range f.Sets {
			if _, werr := fmt.Fprintf(w, ":%f", set[idx]); werr != nil {
				err = werr
				return false
			}
		}
		_, werr := fmt.Fprintln(w)
		if werr != nil {
			err = werr
			return false
		}
		return true
	})
	return err
}

// FetchXform writes each valid slot of xform index as "sec:value"
// (spec.md §4.5). It returns ErrXformIndexOutOfBounds for an out-of-range
// index, adopting the Touch-v2 printer's ">=" bound check per spec.md §9
// open question #2 rather than the v1 printer's off-by-one "index >
// xformCount".
func (f *File) FetchXform(w io.Writer, index int) error {
	if index < 0 || index >= len(f.Xforms) {
		return ErrXformIndexOutOfBounds
	}
	x := &f.Xforms[index]
	var err error
	ring.Forward(int(x.WindowPos), int(f.SampleCount), func(idx int) bool {
		tp := x.Times[idx]
		if !tp.Valid {
			return true
		}
		if _, werr := fmt.Fprintf(w, "%d:%f\n", tp.Sec, x.Data[idx]); werr != nil {
			err = werr
			return false
		}
		return true
	})
	return err
}

// Info writes the version/header/xform summary spec.md §4.5 and end-to-end
// scenario #1 describe.
func (f *File) Info(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Version is %d\n", Version); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Number of sets %d\n", len(f.Sets)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Number of samples %d\n", f.SampleCount); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Current window position %d\n", f.WindowPos); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Contains #%d xformations\n", len(f.Xforms)); err != nil {
		return err
	}
	for _, x := range f.Xforms {
		if _, err := fmt.Fprintf(w, "%s:%s\n", x.Reducer, x.Period); err != nil {
			return err
		}
	}
	return nil
}
