package service

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Senja-Hookathon/senja-gateway/internal/app/port"
	"github.com/Senja-Hookathon/senja-gateway/internal/config"
	"github.com/Senja-Hookathon/senja-gateway/internal/domain/entity"
	"github.com/Senja-Hookathon/senja-gateway/internal/infrastructure/tokenregistry"
	"github.com/Senja-Hookathon/senja-gateway/internal/pkg/amount"
)

const poolCreatedQuery = `{
  poolCreatedEvents {
    id
    pool
    collateralToken
    borrowToken
    ltv
  }
}`

const historyEventFields = `{
      id
      user { id address }
      pool { id address collateralToken borrowToken }
      amount
      shares
      timestamp
      blockNumber
      transactionHash
    }`

// historyCollections maps each indexed collection to the event kind its rows
// report as.
var historyCollections = []struct {
	Collection string
	Kind       entity.HistoryEventKind
}{
	{"liquiditySuppliedEvents", entity.HistorySupplyLiquidity},
	{"liquidityWithdrawnEvents", entity.HistoryWithdrawLiquidity},
	{"debtBorrowedEvents", entity.HistoryBorrow},
	{"debtRepaidEvents", entity.HistoryRepay},
	{"tokenSwappedEvents", entity.HistorySwap},
}

type rawPoolCreated struct {
	ID              string `json:"id"`
	Pool            string `json:"pool"`
	CollateralToken string `json:"collateralToken"`
	BorrowToken     string `json:"borrowToken"`
	LTV             string `json:"ltv"`
}

type rawHistoryEvent struct {
	ID   string `json:"id"`
	User struct {
		ID      string `json:"id"`
		Address string `json:"address"`
	} `json:"user"`
	Pool struct {
		ID              string `json:"id"`
		Address         string `json:"address"`
		CollateralToken string `json:"collateralToken"`
		BorrowToken     string `json:"borrowToken"`
	} `json:"pool"`
	Amount          string `json:"amount"`
	Shares          string `json:"shares"`
	Timestamp       string `json:"timestamp"`
	BlockNumber     string `json:"blockNumber"`
	TransactionHash string `json:"transactionHash"`
}

// poolTotalFunctions are the four view functions enriching a pool listing.
var poolTotalFunctions = []string{
	"totalSupplyAssets",
	"totalSupplyShares",
	"totalBorrowAssets",
	"totalBorrowShares",
}

type poolServiceImpl struct {
	indexer  port.IndexerClient
	reader   port.ContractReader
	registry *tokenregistry.Registry
	cache    *QueryCache
	cfg      config.PoolServiceConfig
	logger   *zap.Logger
}

// NewPoolService serves pool listings and transaction history from the
// indexer. ListPoolsComplete enriches listings with rate limited on-chain
// reads.
func NewPoolService(
	indexer port.IndexerClient,
	reader port.ContractReader,
	registry *tokenregistry.Registry,
	cache *QueryCache,
	cfg config.PoolServiceConfig,
	logger *zap.Logger,
) port.PoolService {
	return &poolServiceImpl{
		indexer:  indexer,
		reader:   reader,
		registry: registry,
		cache:    cache,
		cfg:      cfg,
		logger:   logger.Named("PoolService"),
	}
}

func (s *poolServiceImpl) ListPools(ctx context.Context) ([]entity.Pool, error) {
	if cached, found := s.cache.Get(entity.TagPools, "all"); found {
		return cached.([]entity.Pool), nil
	}

	var resp struct {
		PoolCreatedEvents []rawPoolCreated `json:"poolCreatedEvents"`
	}
	if err := s.indexer.Query(ctx, poolCreatedQuery, &resp); err != nil {
		return nil, fmt.Errorf("querying pool listings: %w", err)
	}

	pools := make([]entity.Pool, 0, len(resp.PoolCreatedEvents))
	for _, raw := range resp.PoolCreatedEvents {
		collateral, okCollateral := s.registry.ByAddress(raw.CollateralToken)
		borrow, okBorrow := s.registry.ByAddress(raw.BorrowToken)
		if !okCollateral || !okBorrow {
			// Pools over tokens outside the registry cannot be rendered.
			s.logger.Warn("skipping pool with unregistered token",
				zap.String("pool", raw.Pool),
				zap.String("collateralToken", raw.CollateralToken),
				zap.String("borrowToken", raw.BorrowToken),
			)
			continue
		}
		pools = append(pools, entity.Pool{
			ID:              raw.ID,
			Address:         raw.Pool,
			CollateralToken: collateral,
			BorrowToken:     borrow,
			LTV:             raw.LTV,
		})
	}

	s.cache.Set(entity.TagPools, "all", pools)
	return pools, nil
}

func (s *poolServiceImpl) ListPoolsComplete(ctx context.Context) ([]entity.PoolStats, error) {
	if cached, found := s.cache.Get(entity.TagPoolsComplete, "all"); found {
		return cached.([]entity.PoolStats), nil
	}

	pools, err := s.ListPools(ctx)
	if err != nil {
		return nil, err
	}

	stats := make([]entity.PoolStats, len(pools))
	limiter := rate.NewLimiter(rate.Limit(s.cfg.ReadsPerSecond), s.cfg.ReadsPerSecond)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrentReads)
	for i, pool := range pools {
		g.Go(func() error {
			enriched, err := s.enrichPool(gctx, limiter, pool)
			if err != nil {
				return fmt.Errorf("enriching pool %s: %w", pool.Address, err)
			}
			stats[i] = enriched
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.cache.Set(entity.TagPoolsComplete, "all", stats)
	return stats, nil
}

func (s *poolServiceImpl) enrichPool(ctx context.Context, limiter *rate.Limiter, pool entity.Pool) (entity.PoolStats, error) {
	totals := make([]string, len(poolTotalFunctions))
	for i, function := range poolTotalFunctions {
		if err := limiter.Wait(ctx); err != nil {
			return entity.PoolStats{}, err
		}
		outputs, err := s.reader.ReadContract(ctx, entity.ContractCall{
			Contract: pool.Address,
			Function: function,
		})
		if err != nil {
			return entity.PoolStats{}, fmt.Errorf("%s: %w", function, err)
		}
		value, ok := outputs[0].(*big.Int)
		if !ok {
			return entity.PoolStats{}, fmt.Errorf("%s returned unexpected type %T", function, outputs[0])
		}
		totals[i] = amount.ToHuman(value, pool.BorrowToken.Decimals)
	}
	return entity.PoolStats{
		Pool:              pool,
		TotalSupplyAssets: totals[0],
		TotalSupplyShares: totals[1],
		TotalBorrowAssets: totals[2],
		TotalBorrowShares: totals[3],
	}, nil
}

func (s *poolServiceImpl) TransactionHistory(ctx context.Context, userAddress string) ([]entity.HistoryEvent, error) {
	query := buildHistoryQuery(userAddress)

	raw := make(map[string][]rawHistoryEvent, len(historyCollections))
	if err := s.indexer.Query(ctx, query, &raw); err != nil {
		return nil, fmt.Errorf("querying transaction history: %w", err)
	}

	var events []entity.HistoryEvent
	for _, collection := range historyCollections {
		for _, row := range raw[collection.Collection] {
			events = append(events, mapHistoryEvent(collection.Kind, row))
		}
	}

	// Newest first across all collections.
	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp > events[j].Timestamp
	})
	return events, nil
}

func buildHistoryQuery(userAddress string) string {
	query := "{\n"
	for _, collection := range historyCollections {
		query += fmt.Sprintf(
			"  %s(where: {user_: {address: %q}}, orderBy: timestamp, orderDirection: desc) %s\n",
			collection.Collection, userAddress, historyEventFields,
		)
	}
	return query + "}"
}

func mapHistoryEvent(kind entity.HistoryEventKind, row rawHistoryEvent) entity.HistoryEvent {
	timestamp, _ := strconv.ParseInt(row.Timestamp, 10, 64)
	blockNumber, _ := strconv.ParseUint(row.BlockNumber, 10, 64)
	return entity.HistoryEvent{
		ID:              row.ID,
		Kind:            kind,
		User:            row.User.Address,
		PoolAddress:     row.Pool.Address,
		CollateralToken: row.Pool.CollateralToken,
		BorrowToken:     row.Pool.BorrowToken,
		Amount:          row.Amount,
		Shares:          row.Shares,
		Timestamp:       timestamp,
		BlockNumber:     blockNumber,
		TransactionHash: row.TransactionHash,
	}
}
