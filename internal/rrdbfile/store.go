package rrdbfile

import (
	"io"
	"os"
	"time"

	"github.com/babblevoice/rrdb/internal/lock"
)

// Create writes a fully zero-initialized RRDB-v1 image to path under the
// advisory byte-0 lock (spec.md §3 "Lifecycle", §5). It fails if sampleCount
// is zero or setCount/xform counts exceed their maximums.
func Create(path string, setCount, sampleCount int, xforms []Xform) error {
	f, err := New(setCount, sampleCount, xforms)
	if err != nil {
		return err
	}
	lf, err := lock.Open(path, true, 0o644)
	if err != nil {
		return err
	}
	defer lf.Close()
	if err := lf.Truncate(0); err != nil {
		return err
	}
	if _, err := lf.Seek(0, io.SeekStart); err != nil {
		return err
	}
	return f.Encode(lf)
}

// WithFile opens path under the advisory byte-0 lock, decodes it, invokes
// fn, and if fn returns true (meaning the file was modified), re-encodes
// the in-memory image back over the file -- the read-modify-write cycle
// spec.md §4.2 step 6 and §5 describe. WithFile takes the "now" timestamp
// itself, after the lock is held, and passes it to fn so ordering matches
// spec.md §5 ("Ordering": gettimeofday is called after lockf succeeds).
func WithFile(path string, fn func(f *File, now time.Time) (write bool, err error)) error {
	lf, err := lock.Open(path, false, 0o644)
	if err != nil {
		return err
	}
	defer lf.Close()

	f, err := Decode(lf)
	if err != nil {
		return err
	}

	now := time.Now()
	write, err := fn(f, now)
	if err != nil {
		return err
	}
	if !write {
		return nil
	}

	if _, err := lf.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := lf.Truncate(0); err != nil {
		return err
	}
	return f.Encode(lf)
}

// ReadOnly opens path under the advisory byte-0 lock (readers still lock,
// per spec.md §5: "every mutating or reading operation... acquires" the
// lock), decodes it, and invokes fn. No writeback occurs.
func ReadOnly(path string, fn func(f *File) error) error {
	lf, err := lock.Open(path, false, 0o644)
	if err != nil {
		return err
	}
	defer lf.Close()

	f, err := Decode(lf)
	if err != nil {
		return err
	}
	return fn(f)
}

// FileVersion reads only the leading 32-bit discriminator of path, without
// decoding the rest of the image -- used by the dispatcher to route
// info/fetch between RRDB-v1 and Touch-v2 handling (mirrors getFileVersion
// in the original source).
func FileVersion(path string) (uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	v, err := readU32(f)
	if err != nil {
		return 0, err
	}
	return v, nil
}
