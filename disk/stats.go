package disk

// Stats wraps a Disk and counts block reads and writes.
type Stats struct {
	d      Disk
	Reads  uint64
	Writes uint64
}

func MkStats(d Disk) *Stats {
	return &Stats{d: d}
}

func (s *Stats) Read(a uint64) Block {
	s.Reads++
	return s.d.Read(a)
}

func (s *Stats) Write(a uint64, v Block) {
	s.Writes++
	s.d.Write(a, v)
}

func (s *Stats) Size() uint64 {
	return s.d.Size()
}

func (s *Stats) Reset() {
	s.Reads = 0
	s.Writes = 0
}
