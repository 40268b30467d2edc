package sat

// implicationCache stores, per literal, the literals a speculative
// probe of that literal propagated. Entries live for a single probing
// pass; release drops everything wholesale. An entry with an empty
// fragment is still a valid hit, it means the probe propagated
// nothing.
type implicationCache struct {
	entries []cacheEntry
	bytes   uint64
}

type cacheEntry struct {
	available bool
	lits      []Lit
}

const cacheEntryOverhead = 32

func (c *implicationCache) ensure(n int) {
	for len(c.entries) < n {
		c.entries = append(c.entries, cacheEntry{})
	}
}

// record stores the implied literals of l, replacing any previous
// entry. The fragment is copied; callers hand in trail storage that
// is about to be unwound.
func (c *implicationCache) record(l Lit, lits []Lit) {
	c.ensure(l.Index() + 1)
	e := &c.entries[l.Index()]
	if e.available {
		c.bytes -= uint64(len(e.lits))*litBytes + cacheEntryOverhead
	}
	e.available = true
	e.lits = append(e.lits[:0], lits...)
	c.bytes += uint64(len(e.lits))*litBytes + cacheEntryOverhead
}

// lookup returns the cached fragment for l. The returned slice is the
// cache's own storage and is only valid until the next record or
// release.
func (c *implicationCache) lookup(l Lit) ([]Lit, bool) {
	if l.Index() >= len(c.entries) {
		return nil, false
	}
	e := &c.entries[l.Index()]
	if !e.available {
		return nil, false
	}
	return e.lits, true
}

// reset invalidates the entry for l, keeping its storage for reuse.
func (c *implicationCache) reset(l Lit) {
	if l.Index() >= len(c.entries) {
		return
	}
	e := &c.entries[l.Index()]
	if e.available {
		c.bytes -= uint64(len(e.lits))*litBytes + cacheEntryOverhead
		e.available = false
		e.lits = e.lits[:0]
	}
}

// release drops the whole cache.
func (c *implicationCache) release() {
	c.entries = nil
	c.bytes = 0
}

func (c *implicationCache) footprint() uint64 { return c.bytes }

// litMarks is a literal set with O(1) membership and O(inserted)
// reset, the usual seen-array trick sized to the literal index space.
type litMarks struct {
	marked []bool
	lits   []Lit
}

func (m *litMarks) insert(l Lit) {
	for len(m.marked) <= l.Index() {
		m.marked = append(m.marked, false)
	}
	if !m.marked[l.Index()] {
		m.marked[l.Index()] = true
		m.lits = append(m.lits, l)
	}
}

func (m *litMarks) contains(l Lit) bool {
	return l.Index() < len(m.marked) && m.marked[l.Index()]
}

func (m *litMarks) reset() {
	for _, l := range m.lits {
		m.marked[l.Index()] = false
	}
	m.lits = m.lits[:0]
}

func (m *litMarks) release() {
	m.marked = nil
	m.lits = nil
}
