package cache

import (
	"testing"
	"time"
)

func newTestCache(start time.Time) (*Cache, *time.Time) {
	current := start
	c := New()
	c.now = func() time.Time { return current }
	return c, &current
}

func TestGetMissingKey(t *testing.T) {
	c := New()
	if _, ok := c.Get("subscription:cust-1"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestSetAndGetWithinTTL(t *testing.T) {
	c, _ := newTestCache(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	c.Set("subscription:cust-1", "active", 30*time.Second)
	value, ok := c.Get("subscription:cust-1")
	if !ok {
		t.Fatal("expected hit inside TTL window")
	}
	if value != "active" {
		t.Fatalf("unexpected value: %v", value)
	}
}

func TestEntryExpiresAfterTTL(t *testing.T) {
	c, current := newTestCache(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	c.Set("usage:cust-1", 42.0, time.Second)

	*current = current.Add(time.Second)
	if _, ok := c.Get("usage:cust-1"); !ok {
		t.Fatal("entry exactly at TTL should still be readable")
	}

	*current = current.Add(time.Millisecond)
	if _, ok := c.Get("usage:cust-1"); ok {
		t.Fatal("entry older than TTL should be a miss")
	}

	stats := c.Stats()
	if stats.Total != 0 {
		t.Fatalf("expired entry should be evicted on read, stats: %+v", stats)
	}
}

func TestOverwriteResetsTTL(t *testing.T) {
	c, current := newTestCache(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	c.Set("subscription:cust-1", "v1", 10*time.Second)
	*current = current.Add(8 * time.Second)
	c.Set("subscription:cust-1", "v2", 10*time.Second)
	*current = current.Add(8 * time.Second)

	value, ok := c.Get("subscription:cust-1")
	if !ok {
		t.Fatal("overwrite should have reset the creation time")
	}
	if value != "v2" {
		t.Fatalf("unexpected value after overwrite: %v", value)
	}
}

func TestDeleteAndClear(t *testing.T) {
	c, _ := newTestCache(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)

	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Fatal("deleted key should miss")
	}
	if _, ok := c.Get("b"); !ok {
		t.Fatal("unrelated key should survive delete")
	}

	c.Clear()
	if stats := c.Stats(); stats.Total != 0 {
		t.Fatalf("clear should empty the cache, stats: %+v", stats)
	}
}

func TestStatsCountsActiveAndExpired(t *testing.T) {
	c, current := newTestCache(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	c.Set("short", 1, time.Second)
	c.Set("long", 2, time.Hour)

	*current = current.Add(2 * time.Second)

	stats := c.Stats()
	if stats.Total != 2 || stats.Active != 1 || stats.Expired != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestInvalidateCustomerRemovesAllViews(t *testing.T) {
	c, _ := newTestCache(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))

	c.Set(SubscriptionKey("cust-1"), "s", time.Minute)
	c.Set(UsageKey("cust-1"), "u", time.Minute)
	c.Set(BillingHistoryKey("cust-1"), "h", time.Minute)
	c.Set(PaymentMethodKey("cust-1"), "p", time.Minute)
	c.Set(SubscriptionKey("cust-2"), "other", time.Minute)

	c.InvalidateCustomer("cust-1")

	for _, key := range []string{
		SubscriptionKey("cust-1"),
		UsageKey("cust-1"),
		BillingHistoryKey("cust-1"),
		PaymentMethodKey("cust-1"),
	} {
		if _, ok := c.Get(key); ok {
			t.Fatalf("key %s should be invalidated", key)
		}
	}
	if _, ok := c.Get(SubscriptionKey("cust-2")); !ok {
		t.Fatal("other customers must be untouched")
	}
}
