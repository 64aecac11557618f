package touchfile

import (
	"fmt"
	"io"
	"time"

	"github.com/babblevoice/rrdb/internal/format"
	"github.com/babblevoice/rrdb/internal/lock"
)

// Fetch locates the first set matching path (or any path, if path is empty)
// and period, and writes its recent non-zero buckets newest-first as
// "sec:count" lines, walking backward from one window past the set's last
// touch (mirrors printRRDBTouchFile).
func Fetch(w io.Writer, filePath string, period format.Period, pathFilter string) error {
	lf, err := lock.Open(filePath, false, 0o644)
	if err != nil {
		return err
	}
	defer lf.Close()

	size, err := fileSize(lf.File)
	if err != nil {
		return err
	}
	if size == 0 {
		return nil
	}

	m, err := openMapping(lf.File)
	if err != nil {
		return err
	}
	defer m.close()
	if m.version() != Version {
		return ErrBadVersion
	}

	sets := m.sets()
	samplesPerSet := m.samplesPerSet()

	for i := uint32(0); i < sets; i++ {
		s := m.set(i)
		if pathFilter != "" && s.path() != pathFilter {
			continue
		}
		if s.period() != uint32(period) {
			continue
		}

		tps := period.SecondsPerSample()

		sampleTime := (s.lastTouch()/tps)*tps + tps
		now := (time.Now().Unix()/tps)*tps + tps

		missing := now - sampleTime
		missingSamples := missing / tps

		var outputSamples uint32
		if missingSamples >= int64(samplesPerSet) {
			outputSamples = 0
		} else {
			outputSamples = samplesPerSet - uint32(missingSamples)
		}

		for j := uint32(0); j < outputSamples; j++ {
			idx := uint32((sampleTime/tps + 1) % int64(samplesPerSet))
			value := s.count(idx)
			if value != 0 {
				if _, err := fmt.Fprintf(w, "%d:%d\n", sampleTime, value); err != nil {
					return err
				}
			}
			sampleTime -= tps
		}
		return nil
	}

	return nil
}

// Info writes the Touch-v2 header summary and one "path:secondsPerSample"
// line per set (mirrors the RRDBTOUCHV2 branch of printRRDBFileInfo).
func Info(w io.Writer, filePath string) error {
	lf, err := lock.Open(filePath, false, 0o644)
	if err != nil {
		return err
	}
	defer lf.Close()

	size, err := fileSize(lf.File)
	if err != nil {
		return err
	}
	if size == 0 {
		return ErrBadVersion
	}

	m, err := openMapping(lf.File)
	if err != nil {
		return err
	}
	defer m.close()
	if m.version() != Version {
		return ErrBadVersion
	}

	sets := m.sets()
	if _, err := fmt.Fprintf(w, "2:%d:%d\n", sets, m.samplesPerSet()); err != nil {
		return err
	}

	for i := uint32(0); i < sets; i++ {
		s := m.set(i)
		period := format.Period(s.period())
		if _, err := fmt.Fprintf(w, "%s:%d\n", s.path(), period.SecondsPerSample()); err != nil {
			return err
		}
	}
	return nil
}
