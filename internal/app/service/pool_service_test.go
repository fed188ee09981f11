package service

import (
	"context"
	"math/big"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Senja-Hookathon/senja-gateway/internal/app/port"
	"github.com/Senja-Hookathon/senja-gateway/internal/config"
	"github.com/Senja-Hookathon/senja-gateway/internal/domain/entity"
	"github.com/Senja-Hookathon/senja-gateway/internal/infrastructure/tokenregistry"
)

type fakeIndexer struct {
	response string
	queries  []string
}

func (f *fakeIndexer) Query(_ context.Context, document string, out interface{}) error {
	f.queries = append(f.queries, document)
	return jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal([]byte(f.response), out)
}

func testRegistry() *tokenregistry.Registry {
	return tokenregistry.New(&config.Config{
		Network: config.NetworkConfig{ChainID: 43114},
		Contracts: config.ContractsConfig{
			Factory: testFactory,
			Helper:  "0xhelper",
		},
		Tokens: []config.TokenConfig{
			{Name: "Tether USD", Symbol: "USDT", Address: testBorrowTk, Decimals: 6},
			{Name: "Wrapped Ether", Symbol: "WETH", Address: testCollatTk, Decimals: 18},
		},
	})
}

func newTestPoolService(t *testing.T, indexer port.IndexerClient, chain *fakeChain) (port.PoolService, *QueryCache) {
	t.Helper()
	cache := NewQueryCache(time.Minute, time.Minute, testLogger())
	svc := NewPoolService(indexer, chain, testRegistry(), cache, config.PoolServiceConfig{
		MaxConcurrentReads: 2,
		ReadsPerSecond:     1000,
	}, testLogger())
	return svc, cache
}

func TestListPools(t *testing.T) {
	t.Run("MapsRegistryTokensAndSkipsUnknown", func(t *testing.T) {
		indexer := &fakeIndexer{response: `{
			"poolCreatedEvents": [
				{"id": "1", "pool": "` + testPool + `", "collateralToken": "` + testCollatTk + `", "borrowToken": "` + testBorrowTk + `", "ltv": "800000000000000000"},
				{"id": "2", "pool": "0xdead", "collateralToken": "0xunknown", "borrowToken": "` + testBorrowTk + `", "ltv": "700000000000000000"}
			]
		}`}
		svc, _ := newTestPoolService(t, indexer, newFakeChain())

		pools, err := svc.ListPools(context.Background())
		require.NoError(t, err)
		require.Len(t, pools, 1, "pools over unregistered tokens are dropped")

		pool := pools[0]
		assert.Equal(t, testPool, pool.Address)
		assert.Equal(t, "WETH", pool.CollateralToken.Symbol)
		assert.Equal(t, "USDT", pool.BorrowToken.Symbol)
		assert.Equal(t, "800000000000000000", pool.LTV)
	})

	t.Run("SecondListHitsCache", func(t *testing.T) {
		indexer := &fakeIndexer{response: `{"poolCreatedEvents": []}`}
		svc, _ := newTestPoolService(t, indexer, newFakeChain())

		svc.ListPools(context.Background())
		svc.ListPools(context.Background())
		assert.Len(t, indexer.queries, 1)
	})
}

func TestListPoolsComplete(t *testing.T) {
	indexer := &fakeIndexer{response: `{
		"poolCreatedEvents": [
			{"id": "1", "pool": "` + testPool + `", "collateralToken": "` + testCollatTk + `", "borrowToken": "` + testBorrowTk + `", "ltv": "800000000000000000"}
		]
	}`}
	chain := newFakeChain()
	chain.readResults["totalSupplyAssets"] = []interface{}{big.NewInt(5_000_000)}
	chain.readResults["totalSupplyShares"] = []interface{}{big.NewInt(4_000_000)}
	chain.readResults["totalBorrowAssets"] = []interface{}{big.NewInt(3_000_000)}
	chain.readResults["totalBorrowShares"] = []interface{}{big.NewInt(2_000_000)}
	svc, _ := newTestPoolService(t, indexer, chain)

	stats, err := svc.ListPoolsComplete(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 1)

	// Totals are formatted against the borrow token's 6 decimals.
	assert.Equal(t, "5", stats[0].TotalSupplyAssets)
	assert.Equal(t, "4", stats[0].TotalSupplyShares)
	assert.Equal(t, "3", stats[0].TotalBorrowAssets)
	assert.Equal(t, "2", stats[0].TotalBorrowShares)
	assert.Len(t, chain.readCalls, 4)
}

func TestTransactionHistory(t *testing.T) {
	const user = "0xabcabcabcabcabcabcabcabcabcabcabcabcabca"

	t.Run("QueryNamesEveryCollectionWithUserFilter", func(t *testing.T) {
		query := buildHistoryQuery(user)
		for _, collection := range []string{
			"liquiditySuppliedEvents",
			"liquidityWithdrawnEvents",
			"debtBorrowedEvents",
			"debtRepaidEvents",
			"tokenSwappedEvents",
		} {
			assert.Contains(t, query, collection)
		}
		assert.Contains(t, query, user)
	})

	t.Run("MergesAndSortsNewestFirst", func(t *testing.T) {
		indexer := &fakeIndexer{response: `{
			"liquiditySuppliedEvents": [
				{"id": "a", "user": {"address": "` + user + `"}, "pool": {"address": "` + testPool + `", "collateralToken": "` + testCollatTk + `", "borrowToken": "` + testBorrowTk + `"}, "amount": "100", "shares": "90", "timestamp": "1700000000", "blockNumber": "101", "transactionHash": "0xaa"}
			],
			"debtBorrowedEvents": [
				{"id": "b", "user": {"address": "` + user + `"}, "pool": {"address": "` + testPool + `", "collateralToken": "` + testCollatTk + `", "borrowToken": "` + testBorrowTk + `"}, "amount": "50", "shares": "", "timestamp": "1700000500", "blockNumber": "105", "transactionHash": "0xbb"}
			]
		}`}
		svc, _ := newTestPoolService(t, indexer, newFakeChain())

		events, err := svc.TransactionHistory(context.Background(), user)
		require.NoError(t, err)
		require.Len(t, events, 2)

		assert.Equal(t, entity.HistoryBorrow, events[0].Kind, "newest event first")
		assert.Equal(t, int64(1700000500), events[0].Timestamp)
		assert.Equal(t, uint64(105), events[0].BlockNumber)
		assert.Equal(t, entity.HistorySupplyLiquidity, events[1].Kind)
		assert.Equal(t, user, events[1].User)
		assert.Equal(t, testPool, events[1].PoolAddress)
		assert.Equal(t, "100", events[1].Amount)
	})
}
