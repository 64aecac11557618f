package rrdbfile

import (
	"testing"

	"github.com/babblevoice/rrdb/internal/format"
)

func TestParseXformSpecExample(t *testing.T) {
	xforms, err := ParseXformSpec("RRDBCOUNT:ONEDAY:RRDBCOUNT:FIVEMINUTE:RRDBSUM:FIVEMINUTE:0")
	if err != nil {
		t.Fatalf("ParseXformSpec: %v", err)
	}
	if len(xforms) != 3 {
		t.Fatalf("len(xforms) = %d, want 3", len(xforms))
	}
	want := []Xform{
		{Reducer: format.ReducerCount, Period: format.OneDay},
		{Reducer: format.ReducerCount, Period: format.FiveMinute},
		{Reducer: format.ReducerSum, Period: format.FiveMinute, SetIndex: 0},
	}
	for i, w := range want {
		if xforms[i].Reducer != w.Reducer || xforms[i].Period != w.Period || xforms[i].SetIndex != w.SetIndex {
			t.Fatalf("xforms[%d] = %+v, want %+v", i, xforms[i], w)
		}
	}
}

func TestParseXformSpecEmpty(t *testing.T) {
	xforms, err := ParseXformSpec("")
	if err != nil || xforms != nil {
		t.Fatalf("ParseXformSpec(\"\") = %v, %v, want nil, nil", xforms, err)
	}
}

func TestParseXformSpecMissingSetIndex(t *testing.T) {
	if _, err := ParseXformSpec("RRDBSUM:ONEHOUR"); err == nil {
		t.Fatalf("expected an error for RRDBSUM with no set index")
	}
}

func TestParseXformSpecMissingPeriod(t *testing.T) {
	if _, err := ParseXformSpec("RRDBCOUNT"); err == nil {
		t.Fatalf("expected an error for a reducer with no period")
	}
}

func TestParseXformSpecUnrecognisedPeriodDefaultsToZeroValue(t *testing.T) {
	xforms, err := ParseXformSpec("RRDBCOUNT:BOGUS")
	if err != nil {
		t.Fatalf("ParseXformSpec: %v", err)
	}
	if len(xforms) != 1 {
		t.Fatalf("len(xforms) = %d, want 1", len(xforms))
	}
	if xforms[0].Period != format.FiveMinute {
		t.Fatalf("Period = %v, want the zero value FiveMinute", xforms[0].Period)
	}
}

func TestParseXformSpecUnrecognisedReducerStopsParsing(t *testing.T) {
	xforms, err := ParseXformSpec("RRDBBOGUS:ONEHOUR:RRDBSUM:ONEHOUR:0")
	if err != nil {
		t.Fatalf("ParseXformSpec: %v", err)
	}
	if len(xforms) != 0 {
		t.Fatalf("len(xforms) = %d, want 0", len(xforms))
	}
}

func TestParseXformSpecTooManyXforms(t *testing.T) {
	spec := ""
	for i := 0; i < MaxXformsTotal+1; i++ {
		if i > 0 {
			spec += ":"
		}
		spec += "RRDBCOUNT:ONEHOUR"
	}
	if _, err := ParseXformSpec(spec); err == nil {
		t.Fatalf("expected an error for exceeding MaxXformsTotal")
	}
}
