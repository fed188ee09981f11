package port

import (
	"context"

	"github.com/Senja-Hookathon/senja-gateway/internal/domain/entity"
)

// LendingService runs the protocol mutations: each call validates input,
// drives the approve/act step sequence, and invalidates read caches on
// success.
type LendingService interface {
	SupplyLiquidity(ctx context.Context, p entity.SupplyLiquidityParams) (entity.MutationResult, error)
	WithdrawLiquidity(ctx context.Context, p entity.WithdrawLiquidityParams) (entity.MutationResult, error)
	SupplyCollateral(ctx context.Context, p entity.SupplyCollateralParams) (entity.MutationResult, error)
	WithdrawCollateral(ctx context.Context, p entity.WithdrawCollateralParams) (entity.MutationResult, error)
	Borrow(ctx context.Context, p entity.BorrowParams) (entity.MutationResult, error)
	Repay(ctx context.Context, p entity.RepayParams) (entity.MutationResult, error)
	Swap(ctx context.Context, p entity.SwapParams) (entity.MutationResult, error)
	CreatePool(ctx context.Context, p entity.CreatePoolParams) (entity.MutationResult, error)
}

// FeeService resolves cross-chain borrow fees.
type FeeService interface {
	// Resolve quotes the fee for moving amount of token to the destination
	// endpoint. A quote is valid for a single amount/destination/token
	// tuple; any change forces a fresh resolution.
	Resolve(ctx context.Context, destinationEndpointID uint32, humanAmount string, decimals uint8, token entity.TokenInfo) entity.FeeQuote
}

// PoolService serves pool listings and user transaction history from the
// indexer, enriched with on-chain reads.
type PoolService interface {
	ListPools(ctx context.Context) ([]entity.Pool, error)
	ListPoolsComplete(ctx context.Context) ([]entity.PoolStats, error)
	TransactionHistory(ctx context.Context, userAddress string) ([]entity.HistoryEvent, error)
}

// BalanceService serves the read-side balances backing the UI.
type BalanceService interface {
	// TokenBalance returns the operator's wallet balance of a token, in
	// base units and formatted for display.
	TokenBalance(ctx context.Context, token entity.TokenInfo) (string, string, error)

	// SupplyBalance returns the operator position's balance of a token
	// within a pool.
	SupplyBalance(ctx context.Context, poolAddress string, token entity.TokenInfo) (string, string, error)

	// BorrowShares returns the operator's borrow share balance in a pool,
	// formatted with the share display precision.
	BorrowShares(ctx context.Context, poolAddress string, decimals uint8) (string, string, error)
}

// PriceService serves external market rates for swap quoting.
type PriceService interface {
	// ExchangeRate returns the spot rate between two token symbols, or
	// false when no trading pair is mapped.
	ExchangeRate(ctx context.Context, fromSymbol, toSymbol string) (float64, bool, error)

	// SwapQuote computes the display-precision output amount for a swap.
	SwapQuote(ctx context.Context, amountIn string, fromSymbol, toSymbol string) (string, error)
}
