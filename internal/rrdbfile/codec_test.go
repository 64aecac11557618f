package rrdbfile

import (
	"bytes"
	"testing"
	"time"

	"github.com/babblevoice/rrdb/internal/format"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	f, err := New(2, 4, []Xform{
		{Period: format.OneDay, Reducer: format.ReducerCount, SetIndex: 0},
		{Period: format.FiveMinute, Reducer: format.ReducerSum, SetIndex: 1},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	f.Update(now, []float64{1, 2})
	f.Update(now.Add(time.Second), []float64{3, 4})

	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got.WindowPos != f.WindowPos {
		t.Fatalf("WindowPos = %d, want %d", got.WindowPos, f.WindowPos)
	}
	if got.SampleCount != f.SampleCount {
		t.Fatalf("SampleCount = %d, want %d", got.SampleCount, f.SampleCount)
	}
	if len(got.Sets) != len(f.Sets) {
		t.Fatalf("len(Sets) = %d, want %d", len(got.Sets), len(f.Sets))
	}
	for i, set := range f.Sets {
		for j, v := range set {
			if got.Sets[i][j] != v {
				t.Fatalf("Sets[%d][%d] = %v, want %v", i, j, got.Sets[i][j], v)
			}
		}
	}
	for i, tp := range f.Times {
		if got.Times[i] != tp {
			t.Fatalf("Times[%d] = %+v, want %+v", i, got.Times[i], tp)
		}
	}
	if len(got.Xforms) != len(f.Xforms) {
		t.Fatalf("len(Xforms) = %d, want %d", len(got.Xforms), len(f.Xforms))
	}
	for i, x := range f.Xforms {
		gx := got.Xforms[i]
		if gx.Period != x.Period || gx.Reducer != x.Reducer || gx.SetIndex != x.SetIndex {
			t.Fatalf("Xforms[%d] = %+v, want %+v", i, gx, x)
		}
	}
}

func TestDecodeRejectsBadVersion(t *testing.T) {
	var buf bytes.Buffer
	if err := writeU32(&buf, 99); err != nil {
		t.Fatalf("writeU32: %v", err)
	}
	if _, err := Decode(&buf); err != ErrBadVersion {
		t.Fatalf("Decode() = %v, want ErrBadVersion", err)
	}
}
