package sound

import (
	"container/list"
)

// DefaultCacheCapacity is the number of on-demand nodes retained before
// FIFO eviction kicks in.
const DefaultCacheCapacity = 32

// CacheStats holds cache performance metrics.
type CacheStats struct {
	Capacity  int   // Maximum number of cached nodes
	Size      int   // Current number of cached nodes
	Hits      int64 // Lookups that found a reusable node
	Misses    int64 // Lookups that found nothing
	Evictions int64 // Nodes discarded oldest-first to make room
}

// TemporaryCache is a bounded, insertion-ordered collection of nodes
// created on demand. When an insert pushes the size past capacity, the
// oldest entry is detached and discarded. Capacity is enforced after each
// insert, never before, so size may momentarily reach capacity+1 inside
// Insert but is normalized before it returns.
type TemporaryCache struct {
	host     Host
	capacity int

	// entries is FIFO: Front is the oldest node. members is the
	// explicit ownership index; membership is never derived from the
	// host's children.
	entries *list.List
	members map[*Node]*list.Element

	stats CacheStats
}

// NewTemporaryCache creates an empty cache backed by the given host.
// A non-positive capacity falls back to DefaultCacheCapacity.
func NewTemporaryCache(host Host, capacity int) *TemporaryCache {
	if capacity < 1 {
		capacity = DefaultCacheCapacity
	}
	return &TemporaryCache{
		host:     host,
		capacity: capacity,
		entries:  list.New(),
		members:  make(map[*Node]*list.Element),
		stats:    CacheStats{Capacity: capacity},
	}
}

// FindAvailable returns the oldest cached node with matching ID that is
// not playing, or nil if none qualifies. First match wins, so the oldest
// compatible node is always reused first.
func (c *TemporaryCache) FindAvailable(name string) *Node {
	for e := c.entries.Front(); e != nil; e = e.Next() {
		node := e.Value.(*Node)
		if node.id == name && !node.IsPlaying() {
			c.stats.Hits++
			return node
		}
	}
	c.stats.Misses++
	return nil
}

// Insert attaches node and appends it to the end of the sequence, then
// evicts the single oldest entry if the size now exceeds capacity.
func (c *TemporaryCache) Insert(node *Node) {
	c.host.Attach(node)
	c.members[node] = c.entries.PushBack(node)

	for c.entries.Len() > c.capacity {
		c.evictOldest()
	}
}

// evictOldest detaches and discards the front entry.
func (c *TemporaryCache) evictOldest() {
	front := c.entries.Front()
	if front == nil {
		return
	}
	node := front.Value.(*Node)
	node.cancelPending()
	c.entries.Remove(front)
	delete(c.members, node)
	c.host.Detach(node)
	c.stats.Evictions++
}

// Clear detaches and discards every cached node.
func (c *TemporaryCache) Clear() {
	for e := c.entries.Front(); e != nil; e = e.Next() {
		node := e.Value.(*Node)
		node.cancelPending()
		c.host.Detach(node)
	}
	c.entries.Init()
	c.members = make(map[*Node]*list.Element)
}

// Contains reports whether the cache owns the given node.
func (c *TemporaryCache) Contains(node *Node) bool {
	_, ok := c.members[node]
	return ok
}

// Len returns the number of cached nodes.
func (c *TemporaryCache) Len() int {
	return c.entries.Len()
}

// Capacity returns the maximum number of cached nodes.
func (c *TemporaryCache) Capacity() int {
	return c.capacity
}

// Stats returns a snapshot of the cache metrics.
func (c *TemporaryCache) Stats() CacheStats {
	stats := c.stats
	stats.Size = c.entries.Len()
	return stats
}

// Oldest returns the node that would be evicted next, or nil when empty.
func (c *TemporaryCache) Oldest() *Node {
	front := c.entries.Front()
	if front == nil {
		return nil
	}
	return front.Value.(*Node)
}
