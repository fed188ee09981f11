package service

import (
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/Senja-Hookathon/senja-gateway/internal/domain/entity"
	"github.com/Senja-Hookathon/senja-gateway/internal/pkg/metrics"
)

// invalidationSets maps every mutation kind to the cache tags whose cached
// reads become stale once that mutation confirms on chain.
var invalidationSets = map[entity.MutationKind][]entity.CacheTag{
	entity.MutationSupplyLiquidity: {
		entity.TagPools,
		entity.TagTokenBalance,
		entity.TagLiquidityBalance,
	},
	entity.MutationWithdrawLiquidity: {
		entity.TagPools,
		entity.TagTokenBalance,
		entity.TagLiquidityBalance,
	},
	entity.MutationSupplyCollateral: {
		entity.TagPools,
		entity.TagTokenBalance,
		entity.TagCollateralBalance,
	},
	entity.MutationWithdrawCollateral: {
		entity.TagPools,
		entity.TagTokenBalance,
		entity.TagCollateralBalance,
	},
	entity.MutationBorrow: {
		entity.TagPools,
		entity.TagTokenBalance,
		entity.TagUserBorrowBalance,
		entity.TagUserCollateralBalance,
		entity.TagUserBorrowShares,
	},
	entity.MutationRepay: {
		entity.TagPools,
		entity.TagTokenBalance,
		entity.TagUserBorrowBalance,
		entity.TagUserBorrowShares,
	},
	entity.MutationSwap: {
		entity.TagPools,
		entity.TagPoolsComplete,
		entity.TagTokenBalance,
		entity.TagCollateralBalance,
		entity.TagExchangeRate,
	},
	entity.MutationCreatePool: {
		entity.TagPools,
		entity.TagPoolsComplete,
		entity.TagTokenBalance,
	},
}

// QueryCache is a tag aware wrapper around an in-memory cache. Entries are
// keyed "<tag>:<suffix>" so a whole tag can be dropped in one pass.
type QueryCache struct {
	store  *gocache.Cache
	logger *zap.Logger
}

func NewQueryCache(defaultTTL, cleanupInterval time.Duration, logger *zap.Logger) *QueryCache {
	return &QueryCache{
		store:  gocache.New(defaultTTL, cleanupInterval),
		logger: logger.Named("QueryCache"),
	}
}

func cacheKey(tag entity.CacheTag, suffix string) string {
	return string(tag) + ":" + suffix
}

func (c *QueryCache) Get(tag entity.CacheTag, suffix string) (interface{}, bool) {
	return c.store.Get(cacheKey(tag, suffix))
}

func (c *QueryCache) Set(tag entity.CacheTag, suffix string, value interface{}) {
	c.store.Set(cacheKey(tag, suffix), value, gocache.DefaultExpiration)
}

// InvalidateTag removes every entry stored under the given tag.
func (c *QueryCache) InvalidateTag(tag entity.CacheTag) {
	prefix := string(tag) + ":"
	for key := range c.store.Items() {
		if strings.HasPrefix(key, prefix) {
			c.store.Delete(key)
		}
	}
	metrics.CacheInvalidations.WithLabelValues(string(tag)).Inc()
}

// InvalidationPolicy applies the per-mutation invalidation sets to a QueryCache.
type InvalidationPolicy struct {
	cache  *QueryCache
	logger *zap.Logger
}

func NewInvalidationPolicy(cache *QueryCache, logger *zap.Logger) (*InvalidationPolicy, error) {
	for _, kind := range entity.AllMutationKinds() {
		if len(invalidationSets[kind]) == 0 {
			return nil, fmt.Errorf("no invalidation set registered for mutation %q", kind)
		}
	}
	return &InvalidationPolicy{
		cache:  cache,
		logger: logger.Named("InvalidationPolicy"),
	}, nil
}

// TagsFor returns a copy of the invalidation set for the given mutation kind.
func (p *InvalidationPolicy) TagsFor(kind entity.MutationKind) []entity.CacheTag {
	tags := invalidationSets[kind]
	out := make([]entity.CacheTag, len(tags))
	copy(out, tags)
	return out
}

// Invalidate drops every cached read that the given mutation kind makes stale.
func (p *InvalidationPolicy) Invalidate(kind entity.MutationKind) {
	tags := invalidationSets[kind]
	for _, tag := range tags {
		p.cache.InvalidateTag(tag)
	}
	p.logger.Debug("invalidated cached reads",
		zap.String("mutation", string(kind)),
		zap.Int("tags", len(tags)),
	)
}
