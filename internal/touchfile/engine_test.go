package touchfile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/babblevoice/rrdb/internal/format"
	"github.com/babblevoice/rrdb/internal/lock"
)

func TestGCEvictsExpiredSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.touch")

	if err := Touch(path, []string{"old"}, []format.Period{format.OneHour}, 50, 4); err != nil {
		t.Fatalf("Touch: %v", err)
	}

	// Age "old"'s lastTouch past its retention window (samplesPerSet x
	// secondsPerSample) without waiting in real time.
	if err := ageSet(path, "old", 0); err != nil {
		t.Fatalf("ageSet: %v", err)
	}

	if err := Touch(path, []string{"new"}, []format.Period{format.OneHour}, 50, 4); err != nil {
		t.Fatalf("Touch: %v", err)
	}

	var buf bytes.Buffer
	if err := Info(&buf, path); err != nil {
		t.Fatalf("Info: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("new:")) {
		t.Fatalf("Info() = %q, want the new set present", buf.String())
	}
	if bytes.Contains(buf.Bytes(), []byte("old:")) {
		t.Fatalf("Info() = %q, want the expired set evicted", buf.String())
	}
}

// ageSet rewrites the named set's lastTouch field directly, bypassing the
// Touch entrypoint, so garbage collection can be exercised without
// sleeping in real time.
func ageSet(path, name string, lastTouch int64) error {
	lf, err := lock.Open(path, false, 0o644)
	if err != nil {
		return err
	}
	defer lf.Close()

	m, err := openMapping(lf.File)
	if err != nil {
		return err
	}
	defer m.close()

	for i := uint32(0); i < m.sets(); i++ {
		s := m.set(i)
		if s.path() == name {
			s.setLastTouch(lastTouch)
			return nil
		}
	}
	return os.ErrNotExist
}

func TestTouchWritesAtCurrentTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.touch")
	before := time.Now().Unix()
	if err := Touch(path, []string{"a"}, []format.Period{format.OneHour}, 50, 10); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	after := time.Now().Unix()

	lf, err := lock.Open(path, false, 0o644)
	if err != nil {
		t.Fatalf("lock.Open: %v", err)
	}
	defer lf.Close()
	m, err := openMapping(lf.File)
	if err != nil {
		t.Fatalf("openMapping: %v", err)
	}
	defer m.close()

	s := m.set(0)
	if s.lastTouch() < before || s.lastTouch() > after {
		t.Fatalf("lastTouch() = %d, want within [%d, %d]", s.lastTouch(), before, after)
	}
}
