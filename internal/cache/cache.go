package cache

import (
	"sync"
	"time"
)

// Stats provides cache performance metrics.
type Stats struct {
	Size          int     `json:"size"`
	Capacity      int     `json:"capacity"`
	Hits          int64   `json:"hits"`
	Misses        int64   `json:"misses"`
	Evictions     int64   `json:"evictions"`
	HitRate       float64 `json:"hit_rate"`
	AvgHitTimeUS  float64 `json:"avg_hit_time_us"`
	AvgMissTimeUS float64 `json:"avg_miss_time_us"`
}

// LRU is a fixed-capacity least-recently-used cache with statistics.
// A capacity of zero disables caching entirely: Get always misses and Set is
// a no-op. All operations are safe for concurrent use.
type LRU[V any] struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*lruItem[V]
	head     *lruItem[V]
	tail     *lruItem[V]

	hits        int64
	misses      int64
	evictions   int64
	hitTimeSum  time.Duration
	missTimeSum time.Duration
}

type lruItem[V any] struct {
	key   string
	value V
	prev  *lruItem[V]
	next  *lruItem[V]
}

// NewLRU creates a cache holding at most capacity entries.
func NewLRU[V any](capacity int) *LRU[V] {
	if capacity < 0 {
		capacity = 0
	}
	return &LRU[V]{
		capacity: capacity,
		items:    make(map[string]*lruItem[V], capacity),
	}
}

// Get retrieves the value for key and moves it to the front.
func (l *LRU[V]) Get(key string) (V, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	item, found := l.items[key]
	if !found {
		l.misses++
		var zero V
		return zero, false
	}

	l.moveToFront(item)
	l.hits++
	return item.value, true
}

// Set stores value under key, evicting the least-recently-used entry when
// the cache is full.
func (l *LRU[V]) Set(key string, value V) {
	if l.capacity == 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if item, found := l.items[key]; found {
		item.value = value
		l.moveToFront(item)
		return
	}

	if len(l.items) >= l.capacity {
		l.removeLRU()
	}

	item := &lruItem[V]{key: key, value: value}
	l.items[key] = item
	l.addToFront(item)
}

// RecordHitTime accumulates the time spent serving a cache hit.
func (l *LRU[V]) RecordHitTime(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hitTimeSum += d
}

// RecordMissTime accumulates the time spent computing a cache miss.
func (l *LRU[V]) RecordMissTime(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.missTimeSum += d
}

// Clear removes all cached entries. Statistics are retained.
func (l *LRU[V]) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.items = make(map[string]*lruItem[V], l.capacity)
	l.head = nil
	l.tail = nil
}

// Len returns the number of cached entries.
func (l *LRU[V]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Stats returns a snapshot of the cache statistics.
func (l *LRU[V]) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := Stats{
		Size:      len(l.items),
		Capacity:  l.capacity,
		Hits:      l.hits,
		Misses:    l.misses,
		Evictions: l.evictions,
	}
	if total := l.hits + l.misses; total > 0 {
		stats.HitRate = float64(l.hits) / float64(total)
	}
	if l.hits > 0 {
		stats.AvgHitTimeUS = float64(l.hitTimeSum.Microseconds()) / float64(l.hits)
	}
	if l.misses > 0 {
		stats.AvgMissTimeUS = float64(l.missTimeSum.Microseconds()) / float64(l.misses)
	}
	return stats
}

func (l *LRU[V]) moveToFront(item *lruItem[V]) {
	if item == l.head {
		return
	}
	l.removeFromList(item)
	l.addToFront(item)
}

func (l *LRU[V]) addToFront(item *lruItem[V]) {
	item.prev = nil
	item.next = l.head
	if l.head != nil {
		l.head.prev = item
	}
	l.head = item
	if l.tail == nil {
		l.tail = item
	}
}

func (l *LRU[V]) removeFromList(item *lruItem[V]) {
	if item.prev != nil {
		item.prev.next = item.next
	} else {
		l.head = item.next
	}
	if item.next != nil {
		item.next.prev = item.prev
	} else {
		l.tail = item.prev
	}
}

func (l *LRU[V]) removeLRU() {
	if l.tail == nil {
		return
	}
	item := l.tail
	l.removeFromList(item)
	delete(l.items, item.key)
	l.evictions++
}
