package rrdbfile

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/babblevoice/rrdb/internal/format"
)

// headerSize is the encoded size of {version, windowPosition, setCount,
// sampleCount}, four uint32 fields, little-endian, no padding.
const headerSize = 4 * 4

// timePointSize is the encoded size of a TimePoint: int64 + int32 + 1-byte
// bool, written field-by-field (never via binary.Write on the Go struct, to
// avoid depending on Go's struct layout as a serialization contract --
// Design Note "Pointer-graph file image").
const timePointSize = 8 + 4 + 1

// xformHeaderSize is the encoded size of one xform's {period, reducer,
// setIndex, windowPosition}, four uint32 fields.
const xformHeaderSize = 4 * 4

// Encode writes f's on-disk image to w, little-endian, explicit field
// order, matching spec.md §3's RRDB-v1 layout table exactly.
func (f *File) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if err := writeU32(bw, Version); err != nil {
		return err
	}
	if err := writeU32(bw, f.WindowPos); err != nil {
		return err
	}
	if err := writeU32(bw, uint32(len(f.Sets))); err != nil {
		return err
	}
	if err := writeU32(bw, f.SampleCount); err != nil {
		return err
	}

	for _, tp := range f.Times {
		if err := writeTimePoint(bw, tp); err != nil {
			return err
		}
	}
	for _, set := range f.Sets {
		for _, v := range set {
			if err := writeFloat64(bw, v); err != nil {
				return err
			}
		}
	}

	if err := writeU32(bw, uint32(len(f.Xforms))); err != nil {
		return err
	}
	for _, x := range f.Xforms {
		if err := writeU32(bw, uint32(x.Period)); err != nil {
			return err
		}
		if err := writeU32(bw, uint32(x.Reducer)); err != nil {
			return err
		}
		if err := writeU32(bw, x.SetIndex); err != nil {
			return err
		}
		if err := writeU32(bw, x.WindowPos); err != nil {
			return err
		}
		for _, tp := range x.Times {
			if err := writeTimePoint(bw, tp); err != nil {
				return err
			}
		}
		for _, v := range x.Data {
			if err := writeFloat64(bw, v); err != nil {
				return err
			}
		}
	}

	return bw.Flush()
}

// Decode reads an RRDB-v1 image from r into a new File. It returns
// ErrBadVersion if the leading discriminator does not match Version.
func Decode(r io.Reader) (*File, error) {
	br := bufio.NewReader(r)

	version, err := readU32(br)
	if err != nil {
		return nil, fmt.Errorf("rrdbfile: read version: %w", err)
	}
	if version != Version {
		return nil, ErrBadVersion
	}

	windowPos, err := readU32(br)
	if err != nil {
		return nil, fmt.Errorf("rrdbfile: read header: %w", err)
	}
	setCount, err := readU32(br)
	if err != nil {
		return nil, fmt.Errorf("rrdbfile: read header: %w", err)
	}
	sampleCount, err := readU32(br)
	if err != nil {
		return nil, fmt.Errorf("rrdbfile: read header: %w", err)
	}
	if setCount > MaxSets {
		return nil, fmt.Errorf("rrdbfile: set count %d exceeds maximum %d", setCount, MaxSets)
	}

	f := &File{
		WindowPos:   windowPos,
		SampleCount: sampleCount,
	}

	f.Times = make([]TimePoint, sampleCount)
	for i := range f.Times {
		tp, err := readTimePoint(br)
		if err != nil {
			return nil, fmt.Errorf("rrdbfile: read time column: %w", err)
		}
		f.Times[i] = tp
	}

	f.Sets = make([][]float64, setCount)
	for s := range f.Sets {
		col := make([]float64, sampleCount)
		for i := range col {
			v, err := readFloat64(br)
			if err != nil {
				return nil, fmt.Errorf("rrdbfile: read set %d: %w", s, err)
			}
			col[i] = v
		}
		f.Sets[s] = col
	}

	xformCount, err := readU32(br)
	if err != nil {
		return nil, fmt.Errorf("rrdbfile: read xform header: %w", err)
	}
	if xformCount > MaxXformsTotal {
		return nil, fmt.Errorf("rrdbfile: xform count %d exceeds maximum %d", xformCount, MaxXformsTotal)
	}

	f.Xforms = make([]Xform, xformCount)
	for i := range f.Xforms {
		period, err := readU32(br)
		if err != nil {
			return nil, fmt.Errorf("rrdbfile: read xform %d: %w", i, err)
		}
		reducer, err := readU32(br)
		if err != nil {
			return nil, fmt.Errorf("rrdbfile: read xform %d: %w", i, err)
		}
		setIndex, err := readU32(br)
		if err != nil {
			return nil, fmt.Errorf("rrdbfile: read xform %d: %w", i, err)
		}
		xWindowPos, err := readU32(br)
		if err != nil {
			return nil, fmt.Errorf("rrdbfile: read xform %d: %w", i, err)
		}

		times := make([]TimePoint, sampleCount)
		for j := range times {
			tp, err := readTimePoint(br)
			if err != nil {
				return nil, fmt.Errorf("rrdbfile: read xform %d time column: %w", i, err)
			}
			times[j] = tp
		}
		data := make([]float64, sampleCount)
		for j := range data {
			v, err := readFloat64(br)
			if err != nil {
				return nil, fmt.Errorf("rrdbfile: read xform %d data: %w", i, err)
			}
			data[j] = v
		}

		f.Xforms[i] = Xform{
			Period:    format.Period(period),
			Reducer:   format.Reducer(reducer),
			SetIndex:  setIndex,
			WindowPos: xWindowPos,
			Times:     times,
			Data:      data,
		}
	}

	return f, nil
}

func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func writeFloat64(w io.Writer, v float64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	_, err := w.Write(buf[:])
	return err
}

func readFloat64(r io.Reader) (float64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[:])), nil
}

func writeTimePoint(w io.Writer, tp TimePoint) error {
	var buf [timePointSize]byte
	binary.LittleEndian.PutUint64(buf[0:8], uint64(tp.Sec))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(tp.Usec))
	if tp.Valid {
		buf[12] = 1
	}
	_, err := w.Write(buf[:])
	return err
}

func readTimePoint(r io.Reader) (TimePoint, error) {
	var buf [timePointSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return TimePoint{}, err
	}
	return TimePoint{
		Sec:   int64(binary.LittleEndian.Uint64(buf[0:8])),
		Usec:  int32(binary.LittleEndian.Uint32(buf[8:12])),
		Valid: buf[12] != 0,
	}, nil
}
