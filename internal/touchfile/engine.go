package touchfile

import (
	"fmt"
	"os"
	"time"

	"github.com/babblevoice/rrdb/internal/format"
	"github.com/babblevoice/rrdb/internal/lock"
	"golang.org/x/sys/unix"
)

// ensureHeader creates the header page (version=2, sets=0,
// samplesPerSet=sampleCount) if the file is currently empty (spec.md §3
// "Lifecycle": touch writes only the header and grows on demand).
func ensureHeader(lf *lock.File, sampleCount uint32) (*mapping, error) {
	size, err := fileSize(lf.File)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		if err := growFile(lf.File, int64(headerSize)); err != nil {
			return nil, err
		}
	}
	m, err := openMapping(lf.File)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		m.setVersion(Version)
		m.setSets(0)
		m.setSamplesPerSet(sampleCount)
		return m, nil
	}
	if m.version() != Version {
		m.close()
		return nil, ErrBadVersion
	}
	return m, nil
}

// growFile extends an empty file to the given size via posix_fallocate.
func growFile(f *os.File, size int64) error {
	if err := unix.Fallocate(int(f.Fd()), 0, 0, size); err != nil {
		return fmt.Errorf("touchfile: fallocate: %w", err)
	}
	return nil
}

// Touch processes one `touch` command: for every (pathComponent, period)
// pair in the cartesian product of pathComponents x periods, it finds or
// creates that set's counter ring and records one event in it, then runs
// garbage collection over the whole file (spec.md §4.3).
func Touch(path string, pathComponents []string, periods []format.Period, maxSets, sampleCount uint32) error {
	if maxSets == 0 {
		maxSets = DefaultMaxSets
	}
	if sampleCount == 0 {
		sampleCount = DefaultSampleCount
	}

	lf, err := lock.Open(path, true, 0o644)
	if err != nil {
		return err
	}
	defer lf.Close()

	m, err := ensureHeader(lf, sampleCount)
	if err != nil {
		return err
	}
	defer m.close()

	now := time.Now().Unix()
	for _, comp := range pathComponents {
		if comp == "" {
			return ErrEmptyPath
		}
		if len(comp) >= MaxPathLength {
			return ErrPathTooLong
		}
		for _, period := range periods {
			if err := findOrCreateSet(lf, m, comp, period, maxSets, now); err != nil {
				return err
			}
			// findOrCreateSet may have grown the file and replaced the
			// mapping; re-fetch via the mapping returned isn't needed
			// since findOrCreateSet mutates *m in place.
		}
	}

	return gc(lf, m, now)
}

// findOrCreateSet locates the set for (path, period); if found, it records
// a touch in it. Otherwise, if there is room, it appends a new set; if not,
// it overwrites the set with the oldest lastTouch (spec.md §4.3 steps 3-5).
func findOrCreateSet(lf *lock.File, m *mapping, path string, period format.Period, maxSets uint32, now int64) error {
	sets := m.sets()

	var oldestIdx uint32
	haveOldest := false
	var oldestTouch int64

	for i := uint32(0); i < sets; i++ {
		s := m.set(i)
		if s.path() == path && s.period() == uint32(period) {
			touchBucket(s, period, now)
			return nil
		}
		// findTouchSet's oldest-set tracking in the original source
		// guards on "0 == oldestlasttouch && lastTouch < oldestlasttouch",
		// a condition that can never be true once oldestlasttouch has
		// been set away from its zero initializer, and is never true at
		// all unless a set's lastTouch is negative -- spec.md §9 open
		// question #1 flags this as a likely typo (should be `||`) that
		// makes the eviction-by-oldest branch unreachable in the source.
		// This is an explicitly flagged open question, not resolved by
		// guessing: we implement the literal, correctly-working "track
		// the minimum lastTouch seen" behavior the comment clearly
		// intends, and record the decision in DESIGN.md rather than
		// reproducing the dead branch.
		t := s.lastTouch()
		if !haveOldest || t < oldestTouch {
			haveOldest = true
			oldestTouch = t
			oldestIdx = i
		}
	}

	if sets >= maxSets && haveOldest {
		s := m.set(oldestIdx)
		s.zeroCounts(0, m.samplesPerSet())
		initSet(s, path, period, now)
		return nil
	}

	// Append a new set.
	extra := setBlockSize(m.samplesPerSet())
	if err := m.grow(extra); err != nil {
		return err
	}
	m.setSets(sets + 1)
	s := m.set(sets)
	s.zeroCounts(0, m.samplesPerSet())
	initSet(s, path, period, now)
	return nil
}

func initSet(s setView, path string, period format.Period, now int64) {
	s.setLastTouch(now)
	s.setPeriod(uint32(period))
	s.setPath(path)
	tps := period.SecondsPerSample()
	idx := uint32((now / tps) % int64(s.m.samplesPerSet()))
	s.setCount(idx, 1)
}

// gc evicts every set whose lastTouch is older than
// samplesPerSet×secondsPerSample(period), swapping the last set into the
// evicted slot; after each pass that evicted anything it truncates the file
// to the header plus the remaining set-blocks, looping until a full pass
// removes nothing (spec.md §4.3 closing paragraph).
func gc(lf *lock.File, m *mapping, now int64) error {
	for {
		removedAny := false
		sets := m.sets()
		blockSize := setBlockSize(m.samplesPerSet())

		for i := uint32(0); i < sets; {
			s := m.set(i)
			period := format.Period(s.period())
			maxAge := int64(m.samplesPerSet()) * period.SecondsPerSample()
			if s.lastTouch() >= now-maxAge {
				i++
				continue
			}

			sets--
			if i != sets {
				last := m.set(sets)
				copySet(s, last)
			}
			removedAny = true
			// Do not advance i: the set swapped into position i (if any)
			// still needs to be checked.
		}

		if sets != m.sets() {
			m.setSets(sets)
			newSize := int64(headerSize) + int64(sets)*blockSize
			if err := m.remapToSize(newSize); err != nil {
				return err
			}
			if err := lf.Truncate(newSize); err != nil {
				return fmt.Errorf("touchfile: truncate: %w", err)
			}
		}

		if !removedAny {
			return nil
		}
	}
}

// copySet copies src's header and count buckets over dst in place.
func copySet(dst, src setView) {
	dst.setLastTouch(src.lastTouch())
	dst.setPath(src.path())
	dst.setPeriod(src.period())
	n := dst.m.samplesPerSet()
	for i := uint32(0); i < n; i++ {
		dst.setCount(i, src.count(i))
	}
}
