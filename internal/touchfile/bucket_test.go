package touchfile

import (
	"testing"

	"github.com/babblevoice/rrdb/internal/format"
)

// newTestMapping builds a mapping backed by a plain byte slice (not an
// actual mmap) holding one set, for exercising setView/touchBucket logic
// without touching the filesystem.
func newTestMapping(samplesPerSet uint32) (*mapping, setView) {
	size := headerSize + setBlockSize(samplesPerSet)
	m := &mapping{data: make([]byte, size)}
	m.setVersion(Version)
	m.setSets(1)
	m.setSamplesPerSet(samplesPerSet)
	s := m.set(0)
	s.setPeriod(uint32(format.OneHour))
	s.setPath("a")
	return m, s
}

func TestTouchBucketFirstTouch(t *testing.T) {
	_, s := newTestMapping(10)
	tps := format.OneHour.SecondsPerSample()
	now := int64(5 * tps) // lastTouch starts at 0, so this is a huge gap

	touchBucket(s, format.OneHour, now)

	idx := uint32((now / tps) % 10)
	if s.count(idx) != 1 {
		t.Fatalf("count(%d) = %d, want 1", idx, s.count(idx))
	}
	if s.lastTouch() != now {
		t.Fatalf("lastTouch() = %d, want %d", s.lastTouch(), now)
	}
}

func TestTouchBucketConsecutiveTouchesAccumulate(t *testing.T) {
	_, s := newTestMapping(10)
	tps := format.OneHour.SecondsPerSample()
	now := int64(5 * tps)

	touchBucket(s, format.OneHour, now)
	touchBucket(s, format.OneHour, now+1)

	idx := uint32((now / tps) % 10)
	if s.count(idx) != 2 {
		t.Fatalf("count(%d) = %d, want 2", idx, s.count(idx))
	}
}

func TestTouchBucketLargeGapZeroesWholeRing(t *testing.T) {
	_, s := newTestMapping(4)
	tps := format.OneHour.SecondsPerSample()

	touchBucket(s, format.OneHour, 0)
	for i := uint32(0); i < 4; i++ {
		s.setCount(i, 7)
	}
	s.setLastTouch(0)

	far := int64(100 * tps)
	touchBucket(s, format.OneHour, far)

	idx := uint32((far / tps) % 4)
	for i := uint32(0); i < 4; i++ {
		if i == idx {
			if s.count(i) != 1 {
				t.Fatalf("count(%d) = %d, want 1 after the touch", i, s.count(i))
			}
			continue
		}
		if s.count(i) != 0 {
			t.Fatalf("count(%d) = %d, want 0 after a gap covering the whole ring", i, s.count(i))
		}
	}
}

func TestZeroCountsClampsToSamplesPerSet(t *testing.T) {
	_, s := newTestMapping(4)
	for i := uint32(0); i < 4; i++ {
		s.setCount(i, 9)
	}
	s.zeroCounts(2, 10) // deliberately overshoots samplesPerSet
	if s.count(0) != 9 || s.count(1) != 9 {
		t.Fatalf("zeroCounts clobbered buckets before `from`")
	}
	if s.count(2) != 0 || s.count(3) != 0 {
		t.Fatalf("zeroCounts did not clear buckets within range")
	}
}
