package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     interface{}
	createdAt time.Time
	ttl       time.Duration
}

func (e entry) expired(now time.Time) bool {
	return now.Sub(e.createdAt) > e.ttl
}

// Stats is a point-in-time view of the cache contents.
type Stats struct {
	Total   int
	Active  int
	Expired int
}

// Cache is an in-process key/value store with per-entry TTL. Expiry is
// lazy: an expired entry behaves as a miss on Get and is evicted as a
// side effect. TTL policy belongs to callers; the cache stores whatever
// duration it is handed.
//
// The cache is the only piece of shared mutable state in the billing
// engine, so every operation takes the mutex.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

func New() *Cache {
	return &Cache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Set stores value under key. Setting an existing key overwrites the
// value, resets the creation time, and replaces the TTL.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, createdAt: c.now(), ttl: ttl}
}

// Get returns the value for key, or (nil, false) on a miss. An entry
// older than its TTL counts as a miss and is evicted.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if e.expired(c.now()) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	stats := Stats{Total: len(c.entries)}
	for _, e := range c.entries {
		if e.expired(now) {
			stats.Expired++
		} else {
			stats.Active++
		}
	}
	return stats
}

// InvalidateCustomer removes every cached view held for a customer:
// subscription status, usage, default billing history, and payment
// method. Called after durable writes (cancellation, plan change) so a
// concurrent read cannot resurrect stale state.
func (c *Cache) InvalidateCustomer(customerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, SubscriptionKey(customerID))
	delete(c.entries, UsageKey(customerID))
	delete(c.entries, BillingHistoryKey(customerID))
	delete(c.entries, PaymentMethodKey(customerID))
}

func SubscriptionKey(customerID string) string {
	return "subscription:" + customerID
}

func UsageKey(customerID string) string {
	return "usage:" + customerID
}

func BillingHistoryKey(customerID string) string {
	return "billing_history:" + customerID
}

func PaymentMethodKey(customerID string) string {
	return "payment_method:" + customerID
}

func PlanChangeKey(subscriptionID string) string {
	return "plan_change:" + subscriptionID
}
