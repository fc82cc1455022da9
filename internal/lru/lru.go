// Package lru provides the ordered key→value container the cache's
// four lists are built from: a hash-bucketed index over a circular
// recency list. All operations are O(1) amortized.
package lru

import (
	"iter"

	"github.com/djdv/go-arc/internal/ring"
)

type (
	node[Key comparable, Value any] = ring.Ring[Key, Value]
	// List is an unbounded collection of key→value entries
	// ordered by recency of use. Callers are responsible
	// for bounding its size (e.g. via [List.RemoveOldest]).
	// Constructed by [New].
	List[Key comparable, Value any] struct {
		hash func(Key) uint64
		// Index chains hold hash collisions; chain order is
		// insignificant, recency order is held by the ring.
		buckets map[uint64][]*node[Key, Value]
		// mru is the most-recently-used entry;
		// mru.Next() is the least-recently-used.
		mru    *node[Key, Value]
		length int
	}
)

// New creates an empty [List] whose index is keyed by hash.
// hash must not be nil and must be stable for the list's lifetime.
func New[Key comparable, Value any](hash func(Key) uint64) *List[Key, Value] {
	return &List[Key, Value]{
		hash:    hash,
		buckets: make(map[uint64][]*node[Key, Value]),
	}
}

// Insert adds key with value, or overwrites the value of an existing
// entry. Either way the entry becomes the most-recently-used.
func (l *List[Key, Value]) Insert(key Key, value Value) {
	if existing := l.lookup(key); existing != nil {
		existing.Value = value
		l.moveToMRU(existing)
		return
	}
	entry := &node[Key, Value]{Key: key, Value: value}
	if l.mru == nil {
		l.mru = entry
	} else {
		l.mru.Link(entry)
		l.mru = entry // == l.mru.Next().
	}
	hash := l.hash(key)
	l.buckets[hash] = append(l.buckets[hash], entry)
	l.length++
}

// Contains reports whether key is present, without altering recency.
func (l *List[Key, Value]) Contains(key Key) bool {
	return l.lookup(key) != nil
}

// Peek returns a pointer to key's value without altering recency,
// or nil and false if key is absent. The pointer is valid until
// the entry is removed.
func (l *List[Key, Value]) Peek(key Key) (*Value, bool) {
	if entry := l.lookup(key); entry != nil {
		return &entry.Value, true
	}
	return nil, false
}

// Get is [List.Peek], except the entry
// also becomes the most-recently-used.
func (l *List[Key, Value]) Get(key Key) (*Value, bool) {
	entry := l.lookup(key)
	if entry == nil {
		return nil, false
	}
	l.moveToMRU(entry)
	return &entry.Value, true
}

// Remove deletes key, returning its value if it was present.
func (l *List[Key, Value]) Remove(key Key) (Value, bool) {
	entry := l.lookup(key)
	if entry == nil {
		var zero Value
		return zero, false
	}
	l.unlink(entry)
	return entry.Value, true
}

// RemoveOldest evicts and returns the least-recently-used entry,
// or zero values and false if the list is empty.
func (l *List[Key, Value]) RemoveOldest() (Key, Value, bool) {
	if l.mru == nil {
		var (
			zeroKey   Key
			zeroValue Value
		)
		return zeroKey, zeroValue, false
	}
	oldest := l.mru.Next()
	l.unlink(oldest)
	return oldest.Key, oldest.Value, true
}

// Len returns the number of entries.
func (l *List[Key, Value]) Len() int { return l.length }

// Clear removes all entries.
func (l *List[Key, Value]) Clear() {
	l.mru = nil
	l.length = 0
	clear(l.buckets)
}

// All yields entries ordered least-recently-used to most-recently-used.
// Behavior is undefined if the list is mutated during iteration.
func (l *List[Key, Value]) All() iter.Seq2[Key, Value] {
	return func(yield func(Key, Value) bool) {
		if l.mru == nil {
			return
		}
		for entry := range l.mru.Next().Iter() {
			if !yield(entry.Key, entry.Value) {
				return
			}
		}
	}
}

func (l *List[Key, Value]) lookup(key Key) *node[Key, Value] {
	for _, entry := range l.buckets[l.hash(key)] {
		if entry.Key == key {
			return entry
		}
	}
	return nil
}

func (l *List[Key, Value]) moveToMRU(entry *node[Key, Value]) {
	if entry == l.mru {
		return
	}
	leaf := entry.Prev().Unlink(1)
	l.mru.Link(leaf)
	l.mru = leaf
}

// unlink detaches entry from both the ring and the index.
func (l *List[Key, Value]) unlink(entry *node[Key, Value]) {
	if l.length == 1 {
		l.mru = nil
	} else {
		if entry == l.mru {
			l.mru = entry.Prev()
		}
		entry.Prev().Unlink(1)
	}
	var (
		hash  = l.hash(entry.Key)
		chain = l.buckets[hash]
	)
	for i, indexed := range chain {
		if indexed != entry {
			continue
		}
		last := len(chain) - 1
		chain[i] = chain[last]
		chain[last] = nil
		chain = chain[:last]
		break
	}
	if len(chain) == 0 {
		delete(l.buckets, hash)
	} else {
		l.buckets[hash] = chain
	}
	l.length--
}
