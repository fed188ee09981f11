package entity

import "math/big"

// Pool represents a collateral/borrow token pair created through the factory,
// as reported by the indexer and mapped against the token registry.
type Pool struct {
	ID              string    `json:"id"`
	Address         string    `json:"address"`
	CollateralToken TokenInfo `json:"collateralToken"`
	BorrowToken     TokenInfo `json:"borrowToken"`
	LTV             string    `json:"ltv"`
}

// SharePosition describes a pool's global accounting state at a point in
// time: total underlying assets against total shares issued over them. Both
// figures come from on-chain reads and may be zero for a freshly created
// pool.
type SharePosition struct {
	TotalAssets *big.Int
	TotalShares *big.Int
}

// PoolStats is a Pool enriched with on-chain accounting totals, formatted
// for API responses.
type PoolStats struct {
	Pool

	TotalSupplyAssets string `json:"totalSupplyAssets"`
	TotalSupplyShares string `json:"totalSupplyShares"`
	TotalBorrowAssets string `json:"totalBorrowAssets"`
	TotalBorrowShares string `json:"totalBorrowShares"`
}
