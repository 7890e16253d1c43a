// Package memostore holds the memoized results of one owner.
//
// A Store maps member names to caches. A member with no parameters uses a single slot
// with a populated flag, so a computed nil is cached like any other value; every other
// member uses a mapping from canonical cache key to value.
//
// Concurrency: every member cache has its own mutex and singleflight group. Concurrent
// misses on the same key collapse into one computation whose result (or error) is handed
// to every waiter. Errors and panics are never cached. Invalidation bumps a per-member
// generation, and a computation that started before the invalidation does not write its
// result back.
package memostore

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/rickb777/date/v2/timespan"
	"golang.org/x/sync/singleflight"

	"github.com/on-the-ground/memoized_go/cachekey"
)

// State is the lifecycle state of one member cache.
type State int

const (
	Unset State = iota
	Populated
)

func (s State) String() string {
	if s == Populated {
		return "populated"
	}
	return "unset"
}

// Entry describes a member cache at one point in time.
type Entry struct {
	Member string
	State  State
	// Keys is the number of cached argument combinations; 1 for a populated single slot.
	Keys int
	// ComputedDuring spans the most recent successful computation.
	ComputedDuring timespan.TimeSpan
}

// ComputeFunc produces the value for a cache miss.
type ComputeFunc func(ctx context.Context) (any, error)

// Store is the per-owner cache. The zero value is not usable; call New.
type Store struct {
	mu      sync.Mutex
	members map[string]*memberCache
}

// New returns an empty Store.
func New() *Store {
	return &Store{members: make(map[string]*memberCache)}
}

type slot struct {
	value any
	key   *cachekey.Key
	span  timespan.TimeSpan
}

type memberCache struct {
	mu     sync.Mutex
	gen    uint64
	single *slot
	keyed  map[string]*slot
	last   timespan.TimeSpan
	flight singleflight.Group
}

// singleID never collides with a canonical key, which always starts with '('.
const singleID = "-"

func slotID(key *cachekey.Key) string {
	if key == nil {
		return singleID
	}
	return key.String()
}

func (m *memberCache) lookup(id string) (*slot, bool) {
	if id == singleID {
		return m.single, m.single != nil
	}
	s, ok := m.keyed[id]
	return s, ok
}

func (m *memberCache) store(id string, s *slot) {
	if id == singleID {
		m.single = s
	} else {
		if m.keyed == nil {
			m.keyed = make(map[string]*slot)
		}
		m.keyed[id] = s
	}
	m.last = s.span
}

func (s *Store) member(name string, create bool) *memberCache {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.members[name]
	if !ok && create {
		m = &memberCache{}
		s.members[name] = m
	}
	return m
}

// GetOrCompute returns the cached value of member for key, computing and storing it on a
// miss. A nil key selects the single slot of a parameterless member. loaded is false only
// for the caller whose call ran compute; callers that waited for it get loaded == true.
//
// compute runs at most once per key until the member is invalidated. If it fails, nothing
// is stored and the next call computes again. A panic in compute is re-raised with its
// original value in every waiting caller. compute receives ctx without its cancellation,
// so a caller that gives up cannot fail the callers waiting on the same computation.
func (s *Store) GetOrCompute(ctx context.Context, member string, key *cachekey.Key, compute ComputeFunc) (value any, loaded bool, err error) {
	m := s.member(member, true)
	id := slotID(key)

	m.mu.Lock()
	if hit, ok := m.lookup(id); ok {
		m.mu.Unlock()
		return hit.value, true, nil
	}
	gen := m.gen
	m.mu.Unlock()

	type result struct {
		value  any
		loaded bool
	}
	led := false
	res, err, _ := m.flight.Do(strconv.FormatUint(gen, 10)+"|"+id, func() (_ any, err error) {
		led = true
		m.mu.Lock()
		if hit, ok := m.lookup(id); ok {
			m.mu.Unlock()
			return result{value: hit.value, loaded: true}, nil
		}
		m.mu.Unlock()

		defer func() {
			if r := recover(); r != nil {
				err = &panicked{value: r}
			}
		}()

		start := time.Now()
		v, err := compute(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		computed := &slot{value: v, key: key, span: timespan.BetweenTimes(start, time.Now())}

		m.mu.Lock()
		if m.gen == gen {
			m.store(id, computed)
		}
		m.mu.Unlock()
		return result{value: v}, nil
	})
	if p, ok := err.(*panicked); ok {
		panic(p.value)
	}
	if err != nil {
		return nil, false, err
	}
	r := res.(result)
	// Callers that joined another caller's computation did not compute anything.
	return r.value, r.loaded || !led, nil
}

// panicked carries a panic raised by a computation to every caller of the flight,
// which re-raise its value unchanged.
type panicked struct {
	value any
}

func (p *panicked) Error() string {
	return fmt.Sprintf("memostore: computation panicked: %v", p.value)
}

// Invalidate clears every cached value of member. It reports whether anything was cached;
// clearing a member that was never populated, or never seen, is a no-op.
func (s *Store) Invalidate(member string) bool {
	m := s.member(member, false)
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	cleared := m.single != nil || len(m.keyed) > 0
	m.single = nil
	m.keyed = nil
	return cleared
}

// InvalidateAll clears each named member and returns the names that held values.
func (s *Store) InvalidateAll(members ...string) []string {
	var cleared []string
	for _, name := range members {
		if s.Invalidate(name) {
			cleared = append(cleared, name)
		}
	}
	return cleared
}

// Inspect reports the state of member.
func (s *Store) Inspect(member string) Entry {
	e := Entry{Member: member}
	m := s.member(member, false)
	if m == nil {
		return e
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.single != nil:
		e.State, e.Keys = Populated, 1
	case len(m.keyed) > 0:
		e.State, e.Keys = Populated, len(m.keyed)
	default:
		return e
	}
	e.ComputedDuring = m.last
	return e
}

// Keys lists the cached keys of a keyed member, ordered by canonical encoding.
func (s *Store) Keys(member string) []cachekey.Key {
	m := s.member(member, false)
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.keyed))
	for id := range m.keyed {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	keys := make([]cachekey.Key, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, *m.keyed[id].key)
	}
	return keys
}

// Members lists the members that have been looked up at least once.
func (s *Store) Members() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.members))
	for name := range s.members {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
