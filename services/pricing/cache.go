package pricing

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"venuebook/models"
)

// FetchFunc loads the full active-rule list from the store, already in
// evaluation order.
type FetchFunc func(ctx context.Context) ([]models.PricingRule, error)

// RuleCache holds a short-lived snapshot of the active rules so a batch
// resolution pays for one rule fetch instead of one per date. Rules change
// rarely (admin-driven), so staleness up to the TTL is accepted behavior.
//
// Refresh is synchronous: the first caller past the expiry pays the
// refetch round trip while holding the lock; everyone else observes the
// same snapshot until the next expiry. The clock is injected so tests can
// force expiry without sleeping.
type RuleCache struct {
	fetch FetchFunc
	ttl   time.Duration
	now   func() time.Time

	mu        sync.Mutex
	rules     []models.PricingRule
	expiresAt time.Time
}

// NewRuleCache constructs a rule cache. A nil clock defaults to time.Now.
func NewRuleCache(fetch FetchFunc, ttl time.Duration, now func() time.Time) *RuleCache {
	if now == nil {
		now = time.Now
	}
	return &RuleCache{fetch: fetch, ttl: ttl, now: now}
}

// ActiveRules returns the cached snapshot, refetching it first if the TTL
// has lapsed. A failed refresh is returned to the caller rather than
// serving an arbitrarily old snapshot.
func (c *RuleCache) ActiveRules(ctx context.Context) ([]models.PricingRule, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.now().Before(c.expiresAt) {
		return c.rules, nil
	}

	rules, err := c.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("rule cache refresh failed: %w", err)
	}
	sortRules(rules)
	c.rules = rules
	c.expiresAt = c.now().Add(c.ttl)
	return c.rules, nil
}

// sortRules puts the snapshot in evaluation order: priority descending,
// ties broken by most recent CreatedAt. The store already fetches in this
// order; sorting here makes the contract hold no matter where the rules
// came from.
func sortRules(rules []models.PricingRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].Priority != rules[j].Priority {
			return rules[i].Priority > rules[j].Priority
		}
		return rules[i].CreatedAt.After(rules[j].CreatedAt)
	})
}

// Invalidate forces the next ActiveRules call to refetch. Admin rule
// mutations call this so their changes show up without waiting out the TTL.
func (c *RuleCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expiresAt = time.Time{}
}
