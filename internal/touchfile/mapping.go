package touchfile

import (
	"encoding/binary"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mapping holds a memory-mapped Touch-v2 file. It is grown in place by
// unix.Fallocate followed by a fresh unix.Mmap (Go's mmap, unlike the
// source's mmap+implicit-remap idiom, requires the old mapping to be
// explicitly unmapped before a new one covering the grown file is made --
// Design Note "mmap and growth").
type mapping struct {
	f    *os.File
	data []byte
}

func openMapping(f *os.File) (*mapping, error) {
	size, err := fileSize(f)
	if err != nil {
		return nil, err
	}
	m := &mapping{f: f}
	if size == 0 {
		return m, nil
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("touchfile: mmap: %w", err)
	}
	m.data = data
	return m, nil
}

func fileSize(f *os.File) (int64, error) {
	st, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("touchfile: stat: %w", err)
	}
	return st.Size(), nil
}

// close unmaps the current mapping, if any. It does not close the
// underlying file.
func (m *mapping) close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	return err
}

// grow extends the backing file by extra bytes via posix_fallocate and
// remaps the whole (new) file.
func (m *mapping) grow(extra int64) error {
	size, err := fileSize(m.f)
	if err != nil {
		return err
	}
	if err := unix.Fallocate(int(m.f.Fd()), 0, size, extra); err != nil {
		return fmt.Errorf("touchfile: fallocate: %w", err)
	}
	if err := m.close(); err != nil {
		return fmt.Errorf("touchfile: munmap before remap: %w", err)
	}
	newData, err := unix.Mmap(int(m.f.Fd()), 0, int(size+extra), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("touchfile: remap: %w", err)
	}
	m.data = newData
	return nil
}

// remapToSize unmaps and remaps to exactly size bytes, used after
// truncating the file during garbage collection.
func (m *mapping) remapToSize(size int64) error {
	if err := m.close(); err != nil {
		return err
	}
	if size == 0 {
		return nil
	}
	data, err := unix.Mmap(int(m.f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("touchfile: remap: %w", err)
	}
	m.data = data
	return nil
}

// --- header accessors: version, sets, samplesPerSet at fixed offsets ---

func (m *mapping) version() uint32       { return binary.LittleEndian.Uint32(m.data[0:4]) }
func (m *mapping) sets() uint32          { return binary.LittleEndian.Uint32(m.data[4:8]) }
func (m *mapping) samplesPerSet() uint32 { return binary.LittleEndian.Uint32(m.data[8:12]) }

func (m *mapping) setVersion(v uint32)       { binary.LittleEndian.PutUint32(m.data[0:4], v) }
func (m *mapping) setSets(v uint32)          { binary.LittleEndian.PutUint32(m.data[4:8], v) }
func (m *mapping) setSamplesPerSet(v uint32) { binary.LittleEndian.PutUint32(m.data[8:12], v) }

// setOffset returns the byte offset of set index i's header within the
// mapping.
func (m *mapping) setOffset(i uint32) int64 {
	return int64(headerSize) + int64(i)*setBlockSize(m.samplesPerSet())
}

// setView exposes one set's fields as accessors over the shared mmap
// backing array -- mutations through it are visible immediately, matching
// the source's direct struct-pointer-into-mmap approach without exposing a
// raw pointer across the package boundary.
type setView struct {
	m      *mapping
	offset int64
}

func (m *mapping) set(i uint32) setView {
	return setView{m: m, offset: m.setOffset(i)}
}

func (s setView) lastTouch() int64 {
	return int64(binary.LittleEndian.Uint64(s.m.data[s.offset : s.offset+8]))
}

func (s setView) setLastTouch(v int64) {
	binary.LittleEndian.PutUint64(s.m.data[s.offset:s.offset+8], uint64(v))
}

func (s setView) path() string {
	raw := s.m.data[s.offset+8 : s.offset+8+MaxPathLength]
	n := 0
	for n < len(raw) && raw[n] != 0 {
		n++
	}
	return string(raw[:n])
}

func (s setView) setPath(p string) {
	raw := s.m.data[s.offset+8 : s.offset+8+MaxPathLength]
	for i := range raw {
		raw[i] = 0
	}
	copy(raw, p)
}

func (s setView) period() uint32 {
	off := s.offset + 8 + MaxPathLength
	return binary.LittleEndian.Uint32(s.m.data[off : off+4])
}

func (s setView) setPeriod(v uint32) {
	off := s.offset + 8 + MaxPathLength
	binary.LittleEndian.PutUint32(s.m.data[off:off+4], v)
}

func (s setView) countsOffset() int64 {
	return s.offset + int64(setHeaderSize)
}

func (s setView) count(i uint32) uint32 {
	off := s.countsOffset() + int64(i)*4
	return binary.LittleEndian.Uint32(s.m.data[off : off+4])
}

func (s setView) setCount(i uint32, v uint32) {
	off := s.countsOffset() + int64(i)*4
	binary.LittleEndian.PutUint32(s.m.data[off:off+4], v)
}

// zeroCounts zeroes count buckets [from, from+n), clamped to the set's
// samplesPerSet bound. The source's equivalent memset calls trust their
// own arithmetic not to overrun the buffer; clamping here only guards
// against writing past the mmap'd region in pathological inputs, it does
// not change behavior for any gap value spec.md's boundary table covers.
func (s setView) zeroCounts(from, n uint32) {
	if n == 0 {
		return
	}
	samplesPerSet := s.m.samplesPerSet()
	if from >= samplesPerSet {
		return
	}
	if from+n > samplesPerSet {
		n = samplesPerSet - from
	}
	start := s.countsOffset() + int64(from)*4
	end := start + int64(n)*4
	for i := start; i < end; i++ {
		s.m.data[i] = 0
	}
}
