// Package shares converts between pool asset amounts and the pool-internal
// share unit of proportional ownership. All conversion math stays on big.Int;
// the intermediate product of an 18-decimal amount and a pool total does not
// fit in 64 bits.
package shares

import (
	"math/big"

	"github.com/Senja-Hookathon/senja-gateway/internal/domain/entity"
)

var (
	bufferNumerator   = big.NewInt(110)
	bufferDenominator = big.NewInt(100)
)

// AssetsToShares converts an asset amount to shares against the pool's
// accounting totals: floor(assets * totalShares / totalAssets). When either
// total is zero (bootstrap pool, first depositor, or totals not yet read) the
// amount passes through unchanged.
func AssetsToShares(assets *big.Int, pool entity.SharePosition) *big.Int {
	if assets == nil {
		return new(big.Int)
	}
	if !convertible(pool) {
		return new(big.Int).Set(assets)
	}
	result := new(big.Int).Mul(assets, pool.TotalShares)
	return result.Quo(result, pool.TotalAssets)
}

// SharesToAssets is the inverse conversion:
// floor(shares * totalAssets / totalShares), with the same zero-total
// pass-through.
func SharesToAssets(shareAmount *big.Int, pool entity.SharePosition) *big.Int {
	if shareAmount == nil {
		return new(big.Int)
	}
	if !convertible(pool) {
		return new(big.Int).Set(shareAmount)
	}
	result := new(big.Int).Mul(shareAmount, pool.TotalAssets)
	return result.Quo(result, pool.TotalShares)
}

// ApprovalWithBuffer scales a repay amount by 110/100 for the ERC-20
// allowance only. The buffer absorbs interest accrued between quoting and
// execution; the repay call itself uses the unbuffered shares.
func ApprovalWithBuffer(assets *big.Int) *big.Int {
	result := new(big.Int).Mul(orZero(assets), bufferNumerator)
	return result.Quo(result, bufferDenominator)
}

func convertible(pool entity.SharePosition) bool {
	return pool.TotalAssets != nil && pool.TotalAssets.Sign() > 0 &&
		pool.TotalShares != nil && pool.TotalShares.Sign() > 0
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
