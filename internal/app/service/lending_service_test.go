package service

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Senja-Hookathon/senja-gateway/internal/app/port"
	"github.com/Senja-Hookathon/senja-gateway/internal/domain/entity"
)

const (
	testOperator = "0x1111111111111111111111111111111111111111"
	testPool     = "0x2222222222222222222222222222222222222222"
	testBorrowTk = "0x3333333333333333333333333333333333333333"
	testCollatTk = "0x4444444444444444444444444444444444444444"
	testFactory  = "0x5555555555555555555555555555555555555555"
)

func newTestLending(t *testing.T, chain *fakeChain, accounts *fakeAccounts, fees port.FeeService) (port.LendingService, *QueryCache) {
	t.Helper()
	cache := NewQueryCache(time.Minute, time.Minute, testLogger())
	policy, err := NewInvalidationPolicy(cache, testLogger())
	require.NoError(t, err)
	if fees == nil {
		fees = &fakeFees{quote: entity.FeeQuote{FeeWei: big.NewInt(0), IsLocal: true}}
	}
	svc := NewLendingService(chain, accounts, fees, policy, testFactory, testLocalEndpoint, 65000, testLogger())
	return svc, cache
}

func seedReadCaches(cache *QueryCache) {
	cache.Set(entity.TagPools, "all", "cached")
	cache.Set(entity.TagTokenBalance, "0xtoken", "cached")
	cache.Set(entity.TagLiquidityBalance, "0xpool", "cached")
	cache.Set(entity.TagExchangeRate, "ETH-USDC", "cached")
}

func TestSupplyLiquidity(t *testing.T) {
	t.Run("ApproveThenSupply", func(t *testing.T) {
		chain := newFakeChain()
		svc, cache := newTestLending(t, chain, &fakeAccounts{address: testOperator}, nil)
		seedReadCaches(cache)

		result, err := svc.SupplyLiquidity(context.Background(), entity.SupplyLiquidityParams{
			PoolAddress:        testPool,
			BorrowTokenAddress: testBorrowTk,
			Amount:             "100",
			TokenDecimals:      6,
		})
		require.NoError(t, err)
		require.True(t, result.Completed)

		require.Equal(t, []string{"approve", "supplyLiquidity"}, chain.submittedFunctions())

		approve := chain.submitted[0]
		assert.Equal(t, testBorrowTk, approve.Contract)
		assert.Equal(t, common.HexToAddress(testPool), approve.Args[0])
		assert.Equal(t, "100000000", approve.Args[1].(*big.Int).String())

		supply := chain.submitted[1]
		assert.Equal(t, testPool, supply.Contract)
		assert.Equal(t, common.HexToAddress(testOperator), supply.Args[0])
		assert.Equal(t, "100000000", supply.Args[1].(*big.Int).String())

		require.Len(t, result.Steps, 2)
		for _, step := range result.Steps {
			assert.Equal(t, entity.StepSuccess, step.Status)
		}
		assert.Equal(t, result.Steps[0].TxHash, result.ApproveTxHash)
		assert.Equal(t, result.Steps[1].TxHash, result.TxHash)

		// Stale reads are gone, unrelated ones survive.
		_, found := cache.Get(entity.TagPools, "all")
		assert.False(t, found)
		_, found = cache.Get(entity.TagTokenBalance, "0xtoken")
		assert.False(t, found)
		_, found = cache.Get(entity.TagLiquidityBalance, "0xpool")
		assert.False(t, found)
		_, found = cache.Get(entity.TagExchangeRate, "ETH-USDC")
		assert.True(t, found)
	})

	t.Run("NoWalletFailsBeforeAnySubmission", func(t *testing.T) {
		chain := newFakeChain()
		svc, _ := newTestLending(t, chain, &fakeAccounts{}, nil)

		result, err := svc.SupplyLiquidity(context.Background(), entity.SupplyLiquidityParams{
			PoolAddress: testPool, BorrowTokenAddress: testBorrowTk, Amount: "100", TokenDecimals: 6,
		})
		require.ErrorIs(t, err, entity.ErrWalletNotConnected)
		assert.Empty(t, chain.submitted)
		assert.False(t, result.Completed)
		assert.Empty(t, result.Steps, "no step activity before validation passes")
	})

	t.Run("InvalidAmountFailsBeforeAnySubmission", func(t *testing.T) {
		chain := newFakeChain()
		svc, _ := newTestLending(t, chain, &fakeAccounts{address: testOperator}, nil)

		for _, amount := range []string{"0", "-5", "abc", ""} {
			_, err := svc.SupplyLiquidity(context.Background(), entity.SupplyLiquidityParams{
				PoolAddress: testPool, BorrowTokenAddress: testBorrowTk, Amount: amount, TokenDecimals: 6,
			})
			require.ErrorIs(t, err, entity.ErrInvalidAmount, "amount %q", amount)
		}
		assert.Empty(t, chain.submitted)
	})

	t.Run("FailedSecondStepDoesNotInvalidate", func(t *testing.T) {
		chain := newFakeChain()
		chain.submitErrs["supplyLiquidity"] = errors.New("execution reverted")
		svc, cache := newTestLending(t, chain, &fakeAccounts{address: testOperator}, nil)
		seedReadCaches(cache)

		result, err := svc.SupplyLiquidity(context.Background(), entity.SupplyLiquidityParams{
			PoolAddress: testPool, BorrowTokenAddress: testBorrowTk, Amount: "100", TokenDecimals: 6,
		})
		require.Error(t, err)
		assert.False(t, result.Completed)
		assert.Equal(t, entity.StepSuccess, result.Steps[0].Status)
		assert.Equal(t, entity.StepError, result.Steps[1].Status)

		_, found := cache.Get(entity.TagPools, "all")
		assert.True(t, found, "caches stay warm when the mutation fails")
	})
}

func TestWithdrawals(t *testing.T) {
	t.Run("WithdrawLiquidityIsSingleStep", func(t *testing.T) {
		chain := newFakeChain()
		svc, _ := newTestLending(t, chain, &fakeAccounts{address: testOperator}, nil)

		result, err := svc.WithdrawLiquidity(context.Background(), entity.WithdrawLiquidityParams{
			PoolAddress: testPool, Shares: "50", TokenDecimals: 6,
		})
		require.NoError(t, err)
		require.Equal(t, []string{"withdrawLiquidity"}, chain.submittedFunctions())
		assert.Equal(t, "50000000", chain.submitted[0].Args[0].(*big.Int).String())
		assert.True(t, result.Completed)
		assert.Empty(t, result.ApproveTxHash)
	})

	t.Run("WithdrawCollateralIsSingleStep", func(t *testing.T) {
		chain := newFakeChain()
		svc, _ := newTestLending(t, chain, &fakeAccounts{address: testOperator}, nil)

		_, err := svc.WithdrawCollateral(context.Background(), entity.WithdrawCollateralParams{
			PoolAddress: testPool, Amount: "1.5", TokenDecimals: 18,
		})
		require.NoError(t, err)
		require.Equal(t, []string{"withdrawCollateral"}, chain.submittedFunctions())
		assert.Equal(t, "1500000000000000000", chain.submitted[0].Args[0].(*big.Int).String())
	})
}

func TestSupplyCollateral(t *testing.T) {
	chain := newFakeChain()
	svc, _ := newTestLending(t, chain, &fakeAccounts{address: testOperator}, nil)

	_, err := svc.SupplyCollateral(context.Background(), entity.SupplyCollateralParams{
		PoolAddress:            testPool,
		CollateralTokenAddress: testCollatTk,
		Amount:                 "2",
		TokenDecimals:          18,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"approve", "supplyCollateral"}, chain.submittedFunctions())
	assert.Equal(t, testCollatTk, chain.submitted[0].Contract)
}

func TestBorrow(t *testing.T) {
	t.Run("LocalBorrowCarriesNoValue", func(t *testing.T) {
		chain := newFakeChain()
		fees := &fakeFees{quote: entity.FeeQuote{FeeWei: big.NewInt(0), IsLocal: true}}
		svc, _ := newTestLending(t, chain, &fakeAccounts{address: testOperator}, fees)

		_, err := svc.Borrow(context.Background(), entity.BorrowParams{
			PoolAddress: testPool, Amount: "100", TokenDecimals: 6, BorrowToken: testToken,
		})
		require.NoError(t, err)
		require.Equal(t, []string{"borrowDebt"}, chain.submittedFunctions())

		call := chain.submitted[0]
		assert.Nil(t, call.Value)
		assert.Equal(t, "100000000", call.Args[0].(*big.Int).String())
		assert.Equal(t, int64(testLocalEndpoint), call.Args[1].(*big.Int).Int64(), "zero destination defaults to the local endpoint")
		assert.Equal(t, int64(65000), call.Args[2].(*big.Int).Int64())
		assert.Equal(t, 1, fees.calls)
	})

	t.Run("RemoteBorrowAttachesFeeAsValue", func(t *testing.T) {
		chain := newFakeChain()
		fees := &fakeFees{quote: entity.FeeQuote{FeeWei: big.NewInt(98765)}}
		svc, _ := newTestLending(t, chain, &fakeAccounts{address: testOperator}, fees)

		_, err := svc.Borrow(context.Background(), entity.BorrowParams{
			PoolAddress:           testPool,
			Amount:                "100",
			TokenDecimals:         6,
			DestinationEndpointID: testRemoteEndpoint,
			BorrowToken:           testToken,
		})
		require.NoError(t, err)

		call := chain.submitted[0]
		require.NotNil(t, call.Value)
		assert.Equal(t, int64(98765), call.Value.Int64())
		assert.Equal(t, int64(testRemoteEndpoint), call.Args[1].(*big.Int).Int64())
	})

	t.Run("UnavailableFeeBlocksSubmission", func(t *testing.T) {
		chain := newFakeChain()
		fees := &fakeFees{quote: entity.FeeQuote{Err: entity.ErrFeeUnavailable}}
		svc, _ := newTestLending(t, chain, &fakeAccounts{address: testOperator}, fees)

		_, err := svc.Borrow(context.Background(), entity.BorrowParams{
			PoolAddress:           testPool,
			Amount:                "100",
			TokenDecimals:         6,
			DestinationEndpointID: testRemoteEndpoint,
			BorrowToken:           testToken,
		})
		require.ErrorIs(t, err, entity.ErrFeeUnavailable)
		assert.Empty(t, chain.submitted, "never borrow with an unknown fee")
	})
}

func TestRepay(t *testing.T) {
	chain := newFakeChain()
	chain.readResults["totalBorrowAssets"] = []interface{}{big.NewInt(1000)}
	chain.readResults["totalBorrowShares"] = []interface{}{big.NewInt(500)}
	svc, _ := newTestLending(t, chain, &fakeAccounts{address: testOperator}, nil)

	_, err := svc.Repay(context.Background(), entity.RepayParams{
		PoolAddress:        testPool,
		BorrowTokenAddress: testBorrowTk,
		Amount:             "0.0001",
		TokenDecimals:      6,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"approve", "repayWithSelectedToken"}, chain.submittedFunctions())

	// 0.0001 @ 6 decimals = 100 base units.
	approve := chain.submitted[0]
	assert.Equal(t, "110", approve.Args[1].(*big.Int).String(), "allowance carries the 10% buffer")

	repay := chain.submitted[1]
	assert.Equal(t, common.HexToAddress(testOperator), repay.Args[0])
	assert.Equal(t, common.HexToAddress(testBorrowTk), repay.Args[1])
	assert.Equal(t, "50", repay.Args[2].(*big.Int).String(), "repaid shares are unbuffered: 100 * 500 / 1000")
	assert.Equal(t, int64(0), repay.Args[3].(*big.Int).Int64())
	assert.Equal(t, false, repay.Args[4])
}

func TestSwap(t *testing.T) {
	chain := newFakeChain()
	svc, _ := newTestLending(t, chain, &fakeAccounts{address: testOperator}, nil)

	_, err := svc.Swap(context.Background(), entity.SwapParams{
		PoolAddress:     testPool,
		TokenIn:         testCollatTk,
		TokenOut:        testBorrowTk,
		AmountIn:        "3",
		TokenInDecimals: 18,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"swapTokenByPosition"}, chain.submittedFunctions())

	call := chain.submitted[0]
	assert.Equal(t, common.HexToAddress(testCollatTk), call.Args[0])
	assert.Equal(t, common.HexToAddress(testBorrowTk), call.Args[1])
	assert.Equal(t, "3000000000000000000", call.Args[2].(*big.Int).String())
	assert.Equal(t, int64(0), call.Args[3].(*big.Int).Int64())
}

func TestCreatePool(t *testing.T) {
	t.Run("ScalesLTVAndRateParams", func(t *testing.T) {
		chain := newFakeChain()
		svc, _ := newTestLending(t, chain, &fakeAccounts{address: testOperator}, nil)

		result, err := svc.CreatePool(context.Background(), entity.CreatePoolParams{
			CollateralTokenAddress: testCollatTk,
			BorrowTokenAddress:     testBorrowTk,
			BorrowTokenDecimals:    6,
			LTV:                    "80",
			SupplyAmount:           "1000",
		})
		require.NoError(t, err)
		require.Equal(t, []string{"approve", "createLendingPool"}, chain.submittedFunctions())

		approve := chain.submitted[0]
		assert.Equal(t, testBorrowTk, approve.Contract)
		assert.Equal(t, common.HexToAddress(testFactory), approve.Args[0])
		assert.Equal(t, "1000000000", approve.Args[1].(*big.Int).String())

		create := chain.submitted[1]
		assert.Equal(t, testFactory, create.Contract)
		params := create.Args[0].(entity.PoolFactoryParams)
		assert.Equal(t, common.HexToAddress(testCollatTk), params.CollateralToken)
		assert.Equal(t, common.HexToAddress(testBorrowTk), params.BorrowToken)
		assert.Equal(t, "800000000000000000", params.Ltv.String(), "80% scaled by 1e16")
		assert.Equal(t, "1000000000", params.SupplyLiquidity.String())
		assert.Equal(t, "500000000000000", params.BaseRate.String(), "0.05 scaled by 1e16")
		assert.Equal(t, "60000000000000000", params.RateAtOptimal.String())
		assert.Equal(t, "920000000000000000", params.OptimalUtilization.String())
		assert.Equal(t, "1000000000000000000", params.MaxUtilization.String())
		assert.Equal(t, "850000000000000000", params.LiquidationThreshold.String())
		assert.Equal(t, "50000000000000000", params.LiquidationBonus.String())

		assert.True(t, result.Completed)
	})

	t.Run("RejectsLTVOutOfRange", func(t *testing.T) {
		chain := newFakeChain()
		svc, _ := newTestLending(t, chain, &fakeAccounts{address: testOperator}, nil)

		for _, ltv := range []string{"101", "-1", "abc", ""} {
			_, err := svc.CreatePool(context.Background(), entity.CreatePoolParams{
				CollateralTokenAddress: testCollatTk,
				BorrowTokenAddress:     testBorrowTk,
				BorrowTokenDecimals:    6,
				LTV:                    ltv,
				SupplyAmount:           "1000",
			})
			require.ErrorIs(t, err, entity.ErrInvalidAmount, "ltv %q", ltv)
		}
		assert.Empty(t, chain.submitted)
	})
}
