// Package cache keeps recent single-pair evaluation results so a
// caller re-scoring the same sentence skips inference entirely.
package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/shuji-bonji/xcomet-mcp-server/internal/domain/model"
	"github.com/shuji-bonji/xcomet-mcp-server/pkg/metrics"
)

// Key identifies one cached evaluation: results are only valid for the
// exact model and pair contents they were computed from.
type Key struct {
	Model string
	Pair  model.TranslationPair
}

func (k Key) id() string {
	var b strings.Builder
	b.WriteString(k.Model)
	b.WriteByte(0)
	b.WriteString(k.Pair.Source)
	b.WriteByte(0)
	b.WriteString(k.Pair.Translation)
	b.WriteByte(0)
	b.WriteString(k.Pair.Reference)
	return b.String()
}

// node is a single entry in the eviction list.
type node struct {
	id     string
	result model.EvaluationResult
	next   *node
}

func (n *node) reset() {
	n.id = ""
	n.result = model.EvaluationResult{}
	n.next = nil
}

// Cache is a bounded in-memory result store with oldest-first eviction.
// A max size of zero or below disables caching entirely: every Get
// misses and Put is a no-op.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*node
	head     *node // most recently added
	maxSize  int
	size     atomic.Int64
	nodePool sync.Pool
}

// New creates a cache with configuration options.
func New(opts ...Option) *Cache {
	c := &Cache{
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.entries = make(map[string]*node)
	if c.maxSize > 0 {
		c.nodePool = sync.Pool{
			New: func() interface{} {
				return &node{}
			},
		}
	}
	return c
}

// Enabled reports whether the cache stores anything at all.
func (c *Cache) Enabled() bool {
	return c.maxSize > 0
}

// Get looks up the result for key. The second return is false on miss.
func (c *Cache) Get(_ context.Context, key Key) (model.EvaluationResult, bool) {
	if !c.Enabled() {
		return model.EvaluationResult{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key.id()]
	if !ok {
		metrics.RecordCacheMiss()
		return model.EvaluationResult{}, false
	}
	metrics.RecordCacheHit()
	return n.result, true
}

// Put stores the result, evicting the oldest entry when full. Storing
// an already-present key refreshes its result in place.
func (c *Cache) Put(_ context.Context, key Key, result model.EvaluationResult) {
	if !c.Enabled() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id := key.id()
	if existing, ok := c.entries[id]; ok {
		existing.result = result
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	n := c.nodePool.Get().(*node)
	n.id = id
	n.result = result
	n.next = c.head

	c.head = n
	c.entries[id] = n
	c.size.Add(1)
}

// evictOldest removes the tail of the list. Must be called with c.mu held.
func (c *Cache) evictOldest() {
	if len(c.entries) == 0 || c.head == nil {
		return
	}

	if c.head.next == nil {
		delete(c.entries, c.head.id)
		c.head.reset()
		c.nodePool.Put(c.head)
		c.head = nil
		c.size.Add(-1)
		return
	}

	var prev *node
	current := c.head
	for current.next != nil {
		prev = current
		current = current.next
	}
	prev.next = nil
	delete(c.entries, current.id)
	current.reset()
	c.nodePool.Put(current)
	c.size.Add(-1)
}

// Size returns the current number of cached results.
func (c *Cache) Size() int64 {
	return c.size.Load()
}
