package stub

import (
	"sync"
	"time"

	"orderdesk/internal/orders"
)

// orderCache keeps each customer's recent orders for the agent so repeated
// chat turns don't hit the order book every time. Cleared on logout.
type orderCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	orders    []orders.Order
	expiresAt time.Time
}

func newOrderCache(ttl time.Duration) *orderCache {
	return &orderCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

func (c *orderCache) get(customerID string) ([]orders.Order, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[customerID]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.orders, true
}

func (c *orderCache) set(customerID string, list []orders.Order) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[customerID] = cacheEntry{orders: list, expiresAt: time.Now().Add(c.ttl)}
}

func (c *orderCache) clear(customerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, customerID)
}
