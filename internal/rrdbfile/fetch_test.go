package rrdbfile

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/babblevoice/rrdb/internal/format"
)

func TestFetchMainOnlyPrintsValidSlots(t *testing.T) {
	f, err := New(1, 5, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f.Update(now, []float64{1})
	f.Update(now.Add(time.Second), []float64{2})

	var buf bytes.Buffer
	if err := f.FetchMain(&buf); err != nil {
		t.Fatalf("FetchMain: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
}

func TestFetchXformOutOfBounds(t *testing.T) {
	f, err := New(1, 5, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var buf bytes.Buffer
	if err := f.FetchXform(&buf, 0); err != ErrXformIndexOutOfBounds {
		t.Fatalf("FetchXform(0) = %v, want ErrXformIndexOutOfBounds", err)
	}
}

func TestInfoFormat(t *testing.T) {
	f, err := New(0, 10, []Xform{{Period: format.OneDay, Reducer: format.ReducerCount, SetIndex: 0}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		f.Update(now, nil)
	}

	var buf bytes.Buffer
	if err := f.Info(&buf); err != nil {
		t.Fatalf("Info: %v", err)
	}

	want := "Version is 1\n" +
		"Number of sets 0\n" +
		"Number of samples 10\n" +
		"Current window position 3\n" +
		"Contains #1 xformations\n" +
		"RRDBCOUNT:ONEDAY\n"
	if buf.String() != want {
		t.Fatalf("Info() = %q, want %q", buf.String(), want)
	}
}
