package touchfile

import "github.com/babblevoice/rrdb/internal/format"

// touchBucket applies one touch to set at the given index: it zeroes any
// buckets the gap since lastTouch skipped over, increments the bucket for
// now, and updates lastTouch (spec.md §4.4).
func touchBucket(s setView, period format.Period, now int64) {
	tps := period.SecondsPerSample()
	samplesPerSet := s.m.samplesPerSet()

	lastTouch := s.lastTouch()
	nowIndex := uint32((now / tps) % int64(samplesPerSet))
	lastIndex := uint32((lastTouch / tps) % int64(samplesPerSet))
	gap := now/tps - lastTouch/tps

	if gap > 1 {
		toClear := gap - 1
		switch {
		case toClear >= int64(samplesPerSet):
			s.zeroCounts(0, samplesPerSet)
		case nowIndex > lastIndex:
			s.zeroCounts(0, nowIndex)
			s.zeroCounts(lastIndex+1, samplesPerSet-lastIndex-1)
		default:
			s.zeroCounts(lastIndex+1, uint32(toClear))
		}
	}

	s.setCount(nowIndex, s.count(nowIndex)+1)
	s.setLastTouch(now)
}
