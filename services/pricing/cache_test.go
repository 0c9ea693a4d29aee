package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"venuebook/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleCacheServesSnapshotWithinTTL(t *testing.T) {
	fetches := 0
	fetch := func(ctx context.Context) ([]models.PricingRule, error) {
		fetches++
		return []models.PricingRule{{ID: "r1", Price: 7000}}, nil
	}

	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	cache := NewRuleCache(fetch, 30*time.Second, func() time.Time { return now })

	for i := 0; i < 5; i++ {
		rules, err := cache.ActiveRules(context.Background())
		require.NoError(t, err)
		require.Len(t, rules, 1)
	}
	assert.Equal(t, 1, fetches, "snapshot should be reused within the TTL")
}

func TestRuleCacheRefetchesAfterExpiry(t *testing.T) {
	fetches := 0
	fetch := func(ctx context.Context) ([]models.PricingRule, error) {
		fetches++
		return nil, nil
	}

	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	cache := NewRuleCache(fetch, 30*time.Second, func() time.Time { return now })

	_, err := cache.ActiveRules(context.Background())
	require.NoError(t, err)

	now = now.Add(29 * time.Second)
	_, err = cache.ActiveRules(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fetches)

	now = now.Add(2 * time.Second)
	_, err = cache.ActiveRules(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fetches, "lapsed TTL should force a refetch")
}

func TestRuleCacheInvalidateForcesRefetch(t *testing.T) {
	fetches := 0
	fetch := func(ctx context.Context) ([]models.PricingRule, error) {
		fetches++
		return nil, nil
	}

	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	cache := NewRuleCache(fetch, 30*time.Second, func() time.Time { return now })

	_, err := cache.ActiveRules(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fetches)

	cache.Invalidate()

	_, err = cache.ActiveRules(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fetches, "invalidate should bypass the remaining TTL")
}

func TestRuleCacheSortsSnapshotIntoEvaluationOrder(t *testing.T) {
	unsorted := []models.PricingRule{
		{ID: "low", Priority: 1, CreatedAt: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "tie-old", Priority: 5, CreatedAt: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "high", Priority: 9, CreatedAt: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "tie-new", Priority: 5, CreatedAt: time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC)},
	}
	cache := NewRuleCache(func(ctx context.Context) ([]models.PricingRule, error) {
		return unsorted, nil
	}, 30*time.Second, nil)

	rules, err := cache.ActiveRules(context.Background())
	require.NoError(t, err)
	require.Len(t, rules, 4)

	var ids []string
	for _, r := range rules {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"high", "tie-new", "tie-old", "low"}, ids)
}

func TestRuleCacheSurfacesRefreshFailure(t *testing.T) {
	fetchErr := errors.New("store down")
	fetch := func(ctx context.Context) ([]models.PricingRule, error) {
		return nil, fetchErr
	}

	cache := NewRuleCache(fetch, 30*time.Second, nil)

	_, err := cache.ActiveRules(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, fetchErr)
}
