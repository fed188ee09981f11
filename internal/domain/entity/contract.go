package entity

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ContractCall describes one call against a protocol contract. Args are
// packed against the named contract's ABI at the transport layer; Value, when
// non-nil, is attached as native currency (used for cross-chain borrow fees).
type ContractCall struct {
	Contract string
	Function string
	Args     []interface{}
	Value    *big.Int
}

// WaitOptions control how a submitted transaction is awaited.
type WaitOptions struct {
	Confirmations   uint64
	PollingInterval time.Duration
	Timeout         time.Duration
}

// PoolFactoryParams is the tuple passed to the factory's createLendingPool.
// Field names mirror the ABI component names; interest rate parameters are
// fixed point values scaled by 1e16.
type PoolFactoryParams struct {
	CollateralToken      common.Address
	BorrowToken          common.Address
	Ltv                  *big.Int
	SupplyLiquidity      *big.Int
	BaseRate             *big.Int
	RateAtOptimal        *big.Int
	OptimalUtilization   *big.Int
	MaxUtilization       *big.Int
	LiquidationThreshold *big.Int
	LiquidationBonus     *big.Int
}
