package limiter

import (
	"hash/fnv"
	"sync"
	"time"
)

// Memory is an in-process fixed-window limiter. Counters reset at window
// boundaries, so a client can burst up to 2×limit across one boundary;
// that is the accepted trade-off of fixed windows.
//
// The identity map is split into shards with independent locks so a hot
// identity does not serialize unrelated ones. State is per-process; a
// multi-process deployment needs an external counter store instead.
type Memory struct {
	limit  int
	window time.Duration
	shards [shardCount]shard

	now  func() time.Time
	done chan struct{}
	once sync.Once
}

const shardCount = 64

// staleWindows is how many windows an entry may sit idle before the
// sweeper discards it.
const staleWindows = 3

type shard struct {
	mu      sync.Mutex
	entries map[string]*entry
}

type entry struct {
	windowStart time.Time
	count       int
}

// NewMemory constructs a fixed-window limiter and starts its background
// sweeper. Call Close to stop the sweeper.
func NewMemory(limit int, window time.Duration) *Memory {
	m := &Memory{
		limit:  limit,
		window: window,
		now:    time.Now,
		done:   make(chan struct{}),
	}
	for i := range m.shards {
		m.shards[i].entries = make(map[string]*entry)
	}
	go m.sweepLoop()
	return m
}

// Allow admits the request iff the identity's count within the current
// window does not exceed the limit. The check-and-increment runs under
// the shard lock, so concurrent calls cannot both act on the same
// pre-increment count.
func (m *Memory) Allow(identity string) (bool, time.Duration) {
	sh := &m.shards[shardFor(identity)]
	now := m.now()

	sh.mu.Lock()
	defer sh.mu.Unlock()

	e, ok := sh.entries[identity]
	if !ok || now.Sub(e.windowStart) >= m.window {
		sh.entries[identity] = &entry{windowStart: now, count: 1}
		return true, 0
	}
	e.count++
	if e.count <= m.limit {
		return true, 0
	}
	return false, e.windowStart.Add(m.window).Sub(now)
}

// Close stops the background sweeper. Allow remains usable afterwards.
func (m *Memory) Close() {
	m.once.Do(func() { close(m.done) })
}

func (m *Memory) sweepLoop() {
	t := time.NewTicker(m.window)
	defer t.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-t.C:
			m.sweep()
		}
	}
}

// sweep discards entries whose window went stale, bounding memory for
// identities that stopped sending traffic.
func (m *Memory) sweep() {
	cutoff := m.now().Add(-time.Duration(staleWindows) * m.window)
	for i := range m.shards {
		sh := &m.shards[i]
		sh.mu.Lock()
		for id, e := range sh.entries {
			if e.windowStart.Before(cutoff) {
				delete(sh.entries, id)
			}
		}
		sh.mu.Unlock()
	}
}

func shardFor(identity string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(identity))
	return h.Sum32() % shardCount
}
