package arc

import (
	"hash/maphash"
	"iter"

	"github.com/djdv/go-arc/internal/lru"
)

type (
	// Hasher maps a key to the hash its list index is keyed by.
	// It must be pure and stable for the cache's lifetime.
	Hasher[Key comparable] func(Key) uint64
	// ghost entries record eviction history; key only, no value.
	ghost = struct{}
	// Cache utilizes the ARC replacement algorithm.
	// Concurrent access must be guarded by the caller.
	// Constructed by [New].
	Cache[Key comparable, Value any] struct {
		recent, frequent           *lru.List[Key, Value]
		recentGhost, frequentGhost *lru.List[Key, ghost]
		capacity, p,
		inserted, evicted, removed int
	}
)

// New creates a [Cache] with the given capacity.
// Capacity is fixed for the cache's lifetime and must be non-zero.
func New[Key comparable, Value any](capacity int) (*Cache[Key, Value], error) {
	return NewWithHasher[Key, Value](capacity, nil)
}

// NewWithHasher is [New] with a caller-selected hash strategy,
// forwarded unchanged to all four underlying lists.
// A nil hash selects the default strategy.
func NewWithHasher[Key comparable, Value any](
	capacity int, hash Hasher[Key],
) (*Cache[Key, Value], error) {
	if capacity < 1 {
		return nil, invalidCapacityError(capacity)
	}
	if hash == nil {
		hash = defaultHasher[Key]()
	}
	return &Cache[Key, Value]{
		capacity:      capacity,
		recent:        lru.New[Key, Value](hash),
		frequent:      lru.New[Key, Value](hash),
		recentGhost:   lru.New[Key, ghost](hash),
		frequentGhost: lru.New[Key, ghost](hash),
	}, nil
}

func defaultHasher[Key comparable]() Hasher[Key] {
	seed := maphash.MakeSeed()
	return func(key Key) uint64 {
		return maphash.Comparable(seed, key)
	}
}

// Insert adds or updates key with value, reporting whether the key
// was already known to the cache (live or ghost). A repeat insert
// counts as a second access and promotes the key into frequent;
// a ghost hit additionally adapts p toward the list that would
// have retained the key.
func (c *Cache[Key, Value]) Insert(key Key, value Value) bool {
	cached := c.insert(key, value)
	if debugging {
		c.checkInvariants(key)
	}
	return cached
}

func (c *Cache[Key, Value]) insert(key Key, value Value) bool {
	if c.frequent.Contains(key) {
		// Overwrite; refreshes recency within frequent.
		c.frequent.Insert(key, value)
		return true
	}
	if _, wasRecent := c.recent.Remove(key); wasRecent {
		// Second access; promote.
		c.frequent.Insert(key, value)
		return true
	}
	if c.frequentGhost.Contains(key) {
		c.adaptTowardFrequency()
		if c.atCapacity() {
			const preferFrequentEviction = true
			c.replace(preferFrequentEviction)
		}
		c.frequentGhost.Remove(key)
		c.frequent.Insert(key, value)
		return true
	}
	if c.recentGhost.Contains(key) {
		c.adaptTowardRecency()
		if c.atCapacity() {
			const preferFrequentEviction = false
			c.replace(preferFrequentEviction)
		}
		c.recentGhost.Remove(key)
		c.frequent.Insert(key, value)
		return true
	}
	c.handleColdMiss(key, value)
	return false
}

// handleColdMiss admits a key seen in none of the four lists;
// the one place ghost history is trimmed to its bounds.
func (c *Cache[Key, Value]) handleColdMiss(key Key, value Value) {
	if c.atCapacity() {
		const preferFrequentEviction = false
		c.replace(preferFrequentEviction)
	}
	if c.recentGhost.Len() > c.capacity-c.p {
		c.recentGhost.RemoveOldest()
		c.evicted++
	}
	if c.frequentGhost.Len() > c.p {
		c.frequentGhost.RemoveOldest()
		c.evicted++
	}
	c.recent.Insert(key, value)
	c.inserted++
}

func (c *Cache[_, _]) atCapacity() bool {
	return c.recent.Len()+c.frequent.Len() >= c.capacity
}

// adaptTowardFrequency shrinks p after a frequentGhost hit,
// growing the share of the budget that frequent may keep.
func (c *Cache[_, _]) adaptTowardFrequency() {
	delta := max(
		c.recentGhost.Len()/c.frequentGhost.Len(),
		1,
	)
	c.p = max(c.p-delta, 0)
}

// adaptTowardRecency grows p after a recentGhost hit.
func (c *Cache[_, _]) adaptTowardRecency() {
	delta := max(
		c.frequentGhost.Len()/c.recentGhost.Len(),
		1,
	)
	c.p = min(c.p+delta, c.capacity)
}

// replace demotes the least-recently-used member of one live list,
// converting its key into a ghost entry (value discarded).
// recent loses when it exceeds its target p; preferFrequentEviction
// breaks the |recent| == p tie toward evicting recent, preserving
// frequency information when frequency-side pressure caused the
// admission.
func (c *Cache[Key, Value]) replace(preferFrequentEviction bool) {
	recentLen := c.recent.Len()
	if recentLen > 0 &&
		(recentLen > c.p ||
			(recentLen == c.p && preferFrequentEviction)) {
		if key, _, ok := c.recent.RemoveOldest(); ok {
			c.recentGhost.Insert(key, ghost{})
		}
		return
	}
	if key, _, ok := c.frequent.RemoveOldest(); ok {
		c.frequentGhost.Insert(key, ghost{})
	}
}

// Contains reports whether key is live in the cache, without
// altering recency or promoting. Ghost entries are not a hit.
func (c *Cache[Key, _]) Contains(key Key) bool {
	return c.frequent.Contains(key) || c.recent.Contains(key)
}

// Peek returns a handle to key's value if it is live
// (frequent checked before recent), without altering recency
// or triggering promotion.
// The handle is valid until the next mutating operation.
func (c *Cache[Key, Value]) Peek(key Key) (*Value, bool) {
	if value, hit := c.frequent.Peek(key); hit {
		return value, hit
	}
	return c.recent.Peek(key)
}

// Get returns a handle to key's value if it is live.
// A hit counts as a repeat access: a key in recent is promoted
// (value intact) into frequent, and its recency within frequent
// is refreshed. Ghost presence is not surfaced here and does not
// adapt p; adaptation only happens via [Cache.Insert].
// The handle is valid until the next mutating operation.
func (c *Cache[Key, Value]) Get(key Key) (*Value, bool) {
	if value, wasRecent := c.recent.Remove(key); wasRecent {
		c.frequent.Insert(key, value)
	}
	return c.frequent.Get(key)
}

// Load returns the cached value for key (if live). Otherwise, it calls fetch,
// inserts and returns the value on success.
// If fetch returns an error, the value is not cached.
func (c *Cache[Key, Value]) Load(key Key, fetch func() (Value, error)) (Value, error) {
	if value, hit := c.Get(key); hit {
		return *value, nil
	}
	value, err := fetch()
	if err != nil {
		return value, err
	}
	c.Insert(key, value)
	return value, nil
}

// Remove purges key from all four lists, returning its value if it
// was live. Ghost history must be erased too: a stale ghost would
// mis-attribute a later cold insert as a ghost hit and perturb p.
// Absent keys are a no-op.
func (c *Cache[Key, Value]) Remove(key Key) (Value, bool) {
	value, removed := c.recent.Remove(key)
	if !removed {
		value, removed = c.frequent.Remove(key)
	}
	c.recentGhost.Remove(key)
	c.frequentGhost.Remove(key)
	if removed {
		c.removed++
	}
	return value, removed
}

// Clear empties all four lists. p and the lifetime counters are
// cumulative statistics, not generation-scoped; they persist.
func (c *Cache[_, _]) Clear() {
	c.recent.Clear()
	c.frequent.Clear()
	c.recentGhost.Clear()
	c.frequentGhost.Clear()
}

// Len returns the number of live entries;
// ghost entries are never counted.
func (c *Cache[_, _]) Len() int {
	return c.recent.Len() + c.frequent.Len()
}

// IsEmpty reports whether the cache holds no live entries.
func (c *Cache[_, _]) IsEmpty() bool { return c.Len() == 0 }

// FrequentLen returns the size of the frequency list.
func (c *Cache[_, _]) FrequentLen() int { return c.frequent.Len() }

// RecentLen returns the size of the recency list.
func (c *Cache[_, _]) RecentLen() int { return c.recent.Len() }

// Inserted returns the lifetime count of cold-miss admissions.
func (c *Cache[_, _]) Inserted() int { return c.inserted }

// Evicted returns the lifetime count of ghost entries trimmed out of
// history (permanently forgotten).
func (c *Cache[_, _]) Evicted() int { return c.evicted }

// Removed returns the lifetime count of live values purged by
// [Cache.Remove].
func (c *Cache[_, _]) Removed() int { return c.removed }

// All yields every live entry: frequent first, then recent, each
// ordered least-recently-used to most-recently-used. The traversal
// is read-only (no recency updates, no promotion) and one-shot;
// behavior is undefined if the cache is mutated during iteration.
func (c *Cache[Key, Value]) All() iter.Seq2[Key, Value] {
	return func(yield func(Key, Value) bool) {
		for key, value := range c.frequent.All() {
			if !yield(key, value) {
				return
			}
		}
		for key, value := range c.recent.All() {
			if !yield(key, value) {
				return
			}
		}
	}
}

// Keys yields the keys of live entries in [Cache.All] order.
func (c *Cache[Key, _]) Keys() iter.Seq[Key] {
	return func(yield func(Key) bool) {
		for key := range c.All() {
			if !yield(key) {
				return
			}
		}
	}
}

func (c *Cache[Key, _]) checkInvariants(key Key) {
	assert(c.p >= 0 && c.p <= c.capacity,
		"p outside [0, capacity]")
	assert(c.recent.Len()+c.frequent.Len() <= c.capacity,
		"live lists exceed capacity")
	var locations int
	for _, present := range []bool{
		c.recent.Contains(key),
		c.frequent.Contains(key),
		c.recentGhost.Contains(key),
		c.frequentGhost.Contains(key),
	} {
		if present {
			locations++
		}
	}
	assert(locations <= 1,
		"key present in more than one list")
}
