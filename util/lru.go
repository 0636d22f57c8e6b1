package util

import (
	"fmt"
	"strings"
	"sync"
)

/*
LRU is a fixed-capacity cache with least-recently-used eviction, safe for
concurrent use. Entries live in a doubly linked list between two sentinel
nodes; the most recently used entry sits just after the head.
*/

////////////////////////////////////////////////////////////////////////////////

// LRU is a simple LRU cache.
type LRU[K comparable, V any] struct {
	entries    map[K]*entry[K, V]
	head, tail *entry[K, V]
	cap        int
	mtx        *sync.Mutex
}

type entry[K comparable, V any] struct {
	key        K
	value      V
	prev, next *entry[K, V]
}

// NewLRU returns a new LRU cache with the given capacity. A capacity below one
// is treated as one.
func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	head, tail := &entry[K, V]{}, &entry[K, V]{}
	head.next = tail
	tail.prev = head
	return &LRU[K, V]{
		entries: make(map[K]*entry[K, V]),
		head:    head,
		tail:    tail,
		cap:     max(capacity, 1),
		mtx:     &sync.Mutex{},
	}
}

// Len returns the number of cached entries.
func (lru *LRU[K, V]) Len() int {
	lru.mtx.Lock()
	defer lru.mtx.Unlock()
	return len(lru.entries)
}

// Reset clears the cache.
func (lru *LRU[K, V]) Reset() {
	lru.mtx.Lock()
	defer lru.mtx.Unlock()
	lru.entries = make(map[K]*entry[K, V])
	lru.head.next = lru.tail
	lru.tail.prev = lru.head
}

// Put adds a key-value pair to the cache, replacing any existing value for the
// key, and evicts the least recently used entry if the cache is over capacity.
func (lru *LRU[K, V]) Put(key K, value V) {
	lru.mtx.Lock()
	defer lru.mtx.Unlock()
	if e, ok := lru.entries[key]; ok {
		e.value = value
		lru.unlink(e)
		lru.pushFront(e)
		return
	}
	e := &entry[K, V]{key: key, value: value}
	lru.entries[key] = e
	lru.pushFront(e)
	for len(lru.entries) > lru.cap {
		oldest := lru.tail.prev
		lru.unlink(oldest)
		delete(lru.entries, oldest.key)
	}
}

// Get returns the value associated with the given key and marks it most
// recently used. The second return value reports whether the key was present.
func (lru *LRU[K, V]) Get(key K) (V, bool) {
	lru.mtx.Lock()
	defer lru.mtx.Unlock()
	e, ok := lru.entries[key]
	if !ok {
		var v V
		return v, false
	}
	lru.unlink(e)
	lru.pushFront(e)
	return e.value, true
}

// Delete removes a key from the cache, reporting whether it was present.
func (lru *LRU[K, V]) Delete(key K) bool {
	lru.mtx.Lock()
	defer lru.mtx.Unlock()
	e, ok := lru.entries[key]
	if !ok {
		return false
	}
	lru.unlink(e)
	delete(lru.entries, key)
	return true
}

func (lru *LRU[K, V]) pushFront(e *entry[K, V]) {
	e.next = lru.head.next
	e.prev = lru.head
	lru.head.next.prev = e
	lru.head.next = e
}

func (lru *LRU[K, V]) unlink(e *entry[K, V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
}

// String returns the cache contents from most to least recently used.
func (lru *LRU[K, V]) String() string {
	lru.mtx.Lock()
	defer lru.mtx.Unlock()
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "(%d/%d) [", len(lru.entries), lru.cap)
	for e := lru.head.next; e != lru.tail; e = e.next {
		fmt.Fprintf(sb, "%v:%v", e.key, e.value)
		if e.next != lru.tail {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
