package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Entity kinds used as the first segment of every cache key.
const (
	KindBooking   = "booking"
	KindDelivery  = "delivery"
	KindInventory = "inventory"
	KindCustomer  = "customer"
	KindProduct   = "product"
)

// Coordinator is the read-through/write-invalidate cache in front of the
// repositories. Entity entries are keyed by kind+id; paged list entries by
// kind+page+size. Any mutation of an entity invalidates its entity key and
// every page key of that kind before the mutating call returns, so a reader
// can never observe a value staler than the last committed mutation.
//
// A nil *Coordinator is valid and bypasses caching entirely: every lookup
// misses and every invalidation is a no-op. That is also the degradation
// path when caching is disabled — correctness over performance.
type Coordinator struct {
	lru *expirable.LRU[string, interface{}]
}

// New creates a Coordinator holding up to size entries for at most ttl.
func New(size int, ttl time.Duration) *Coordinator {
	return &Coordinator{
		lru: expirable.NewLRU[string, interface{}](size, nil, ttl),
	}
}

func entityKey(kind, id string) string {
	return kind + ":" + id
}

func pageKey(kind string, page, limit int) string {
	return fmt.Sprintf("%s:page:%d:%d", kind, page, limit)
}

// Get returns the cached entity for kind+id, if present.
func (c *Coordinator) Get(kind, id string) (interface{}, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(entityKey(kind, id))
}

// Put stores an entity under kind+id.
func (c *Coordinator) Put(kind, id string, value interface{}) {
	if c == nil {
		return
	}
	c.lru.Add(entityKey(kind, id), value)
}

// GetPage returns the cached page for kind+page+limit, if present.
func (c *Coordinator) GetPage(kind string, page, limit int) (interface{}, bool) {
	if c == nil {
		return nil, false
	}
	return c.lru.Get(pageKey(kind, page, limit))
}

// PutPage stores a page result under kind+page+limit.
func (c *Coordinator) PutPage(kind string, page, limit int, value interface{}) {
	if c == nil {
		return
	}
	c.lru.Add(pageKey(kind, page, limit), value)
}

// Invalidate drops the entity entry for kind+id and, because any entity
// mutation can change the membership of arbitrary page windows, every page
// entry of that kind.
func (c *Coordinator) Invalidate(kind, id string) {
	if c == nil {
		return
	}
	c.lru.Remove(entityKey(kind, id))
	c.invalidatePages(kind)
}

// InvalidateKind drops every entry (entity and page) of the given kind.
func (c *Coordinator) InvalidateKind(kind string) {
	if c == nil {
		return
	}
	prefix := kind + ":"
	for _, key := range c.lru.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.lru.Remove(key)
		}
	}
}

func (c *Coordinator) invalidatePages(kind string) {
	prefix := kind + ":page:"
	for _, key := range c.lru.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.lru.Remove(key)
		}
	}
}
