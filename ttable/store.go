package ttable

import (
	"sync"
	"sync/atomic"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"
)

// NodeType says how a stored score relates to the true value of a node.
type NodeType uint8

const (
	Exact      NodeType = 1
	UpperBound NodeType = 2
	LowerBound NodeType = 3
)

func (n NodeType) String() string {
	switch n {
	case Exact:
		return "exact"
	case UpperBound:
		return "upper"
	case LowerBound:
		return "lower"
	}
	return "invalid"
}

// DefaultCapacity is the number of entries a store holds when it isn't
// sized from system memory.
const DefaultCapacity = 6_000_000

// Rough cost of one map entry: a ~25-byte key, its string header, the entry
// and map overhead.
const approxEntryBytes = 96

type Entry struct {
	NodeType NodeType
	Depth    int
	Score    int
}

// Row is an entry with its key, as it is persisted.
type Row struct {
	Key string
	Entry
}

type TableLock interface {
	Lock()
	Unlock()
	RLock()
	RUnlock()
}

type FakeLock struct{}

func (f FakeLock) Lock()    {}
func (f FakeLock) Unlock()  {}
func (f FakeLock) RLock()   {}
func (f FakeLock) RUnlock() {}

// Store is the transposition table. It has a hard capacity and no eviction:
// once full, inserts are dropped. Lock makes it read-only for good; it is
// called before the table is persisted at shutdown.
type Store struct {
	mu       TableLock
	table    map[string]Entry
	capacity int
	locked   atomic.Bool

	created atomic.Uint64
	lookups atomic.Uint64
	hits    atomic.Uint64
}

// New creates an empty store in single-threaded mode.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		mu:       FakeLock{},
		table:    make(map[string]Entry),
		capacity: capacity,
	}
}

// CapacityForMemory returns how many entries fit in the given fraction of
// system memory. A non-positive fraction means DefaultCapacity.
func CapacityForMemory(fraction float64) int {
	totalMem := memory.TotalMemory()
	if fraction <= 0 || totalMem == 0 {
		return DefaultCapacity
	}
	n := int(fraction * float64(totalMem) / approxEntryBytes)
	n = max(n, 1024)
	log.Info().Int("num-elems", n).
		Int("estimated-total-memory-bytes", n*approxEntryBytes).
		Uint64("total-system-memory-bytes", totalMem).
		Float64("fraction", fraction).
		Msg("transposition-table-size")
	return n
}

// SetSingleThreadedMode drops locking; the search is the only writer.
func (s *Store) SetSingleThreadedMode() {
	s.mu = FakeLock{}
}

// SetMultiThreadedMode guards the table with a mutex, for when something
// other than the search reads it while a search runs.
func (s *Store) SetMultiThreadedMode() {
	s.mu = new(sync.RWMutex)
}

func (s *Store) Lookup(key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.lookups.Add(1)
	e, ok := s.table[key]
	if ok {
		s.hits.Add(1)
	}
	return e, ok
}

// Insert stores a result unless the store is full or locked, or it already
// holds a deeper result for key.
func (s *Store) Insert(key string, nt NodeType, depth, score int) {
	if s.locked.Load() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locked.Load() || len(s.table) >= s.capacity {
		return
	}
	if prev, ok := s.table[key]; ok && prev.Depth > depth {
		return
	}
	s.table[key] = Entry{NodeType: nt, Depth: depth, Score: score}
	s.created.Add(1)
}

// Lock turns all further inserts into no-ops. It cannot be undone. In
// multi-threaded mode it waits for an insert in progress, so once it
// returns Rows sees a table nobody writes to. In single-threaded mode the
// caller must make sure no search is running.
func (s *Store) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locked.Store(true)
}

func (s *Store) Locked() bool {
	return s.locked.Load()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.table)
}

func (s *Store) Capacity() int {
	return s.capacity
}

// Seed loads previously saved rows, stopping once the store is full. It
// returns the number of rows taken. Seeding ignores the depth rule: rows
// are taken as they come.
func (s *Store) Seed(rows []Row) int {
	if s.locked.Load() {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range rows {
		if len(s.table) >= s.capacity {
			break
		}
		s.table[r.Key] = r.Entry
		n++
	}
	return n
}

// Rows returns a copy of every entry, in no particular order.
func (s *Store) Rows() []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]Row, 0, len(s.table))
	for k, e := range s.table {
		rows = append(rows, Row{Key: k, Entry: e})
	}
	return rows
}

// Reset empties the table and zeroes the counters. A locked store stays
// locked.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.table)
	s.created.Store(0)
	s.lookups.Store(0)
	s.hits.Store(0)
}

func (s *Store) Created() uint64 { return s.created.Load() }
func (s *Store) Lookups() uint64 { return s.lookups.Load() }
func (s *Store) Hits() uint64    { return s.hits.Load() }

// FillRatio is the fraction of capacity in use.
func (s *Store) FillRatio() float64 {
	return float64(s.Len()) / float64(s.capacity)
}
