package entity

// SupplyLiquidityParams describes a liquidity supply into a pool.
type SupplyLiquidityParams struct {
	PoolAddress        string `json:"poolAddress"`
	BorrowTokenAddress string `json:"borrowTokenAddress"`
	Amount             string `json:"amount"`
	TokenDecimals      uint8  `json:"tokenDecimals"`
}

// WithdrawLiquidityParams describes a liquidity withdrawal. Shares are the
// user-supplied unit directly, scaled by the borrow token's decimals.
type WithdrawLiquidityParams struct {
	PoolAddress   string `json:"poolAddress"`
	Shares        string `json:"shares"`
	TokenDecimals uint8  `json:"tokenDecimals"`
}

// SupplyCollateralParams describes a collateral deposit.
type SupplyCollateralParams struct {
	PoolAddress            string `json:"poolAddress"`
	CollateralTokenAddress string `json:"collateralTokenAddress"`
	Amount                 string `json:"amount"`
	TokenDecimals          uint8  `json:"tokenDecimals"`
}

// WithdrawCollateralParams describes a collateral withdrawal.
type WithdrawCollateralParams struct {
	PoolAddress   string `json:"poolAddress"`
	Amount        string `json:"amount"`
	TokenDecimals uint8  `json:"tokenDecimals"`
}

// BorrowParams describes a borrow, optionally to a remote chain. A zero
// DestinationEndpointID means the configured local endpoint. BorrowToken is
// needed for its OFT address when the destination is remote.
type BorrowParams struct {
	PoolAddress           string    `json:"poolAddress"`
	Amount                string    `json:"amount"`
	TokenDecimals         uint8     `json:"tokenDecimals"`
	DestinationEndpointID uint32    `json:"destinationEndpointId,omitempty"`
	BorrowToken           TokenInfo `json:"borrowToken"`
}

// RepayParams describes a debt repayment.
type RepayParams struct {
	PoolAddress        string `json:"poolAddress"`
	BorrowTokenAddress string `json:"borrowTokenAddress"`
	Amount             string `json:"amount"`
	TokenDecimals      uint8  `json:"tokenDecimals"`
}

// SwapParams describes a position-internal token swap.
type SwapParams struct {
	PoolAddress     string `json:"poolAddress"`
	TokenIn         string `json:"tokenIn"`
	TokenOut        string `json:"tokenOut"`
	AmountIn        string `json:"amountIn"`
	TokenInDecimals uint8  `json:"tokenInDecimals"`
}

// CreatePoolParams describes a new lending pool creation through the
// factory. LTV is a percentage in [0, 100]; the initial supply is
// denominated in the borrow token.
type CreatePoolParams struct {
	CollateralTokenAddress string `json:"collateralTokenAddress"`
	BorrowTokenAddress     string `json:"borrowTokenAddress"`
	BorrowTokenDecimals    uint8  `json:"borrowTokenDecimals"`
	LTV                    string `json:"ltv"`
	SupplyAmount           string `json:"supplyAmount"`
}

// MutationResult reports the outcome of a mutation run. Completed is the
// unambiguous completion signal: when true every step succeeded, caches were
// invalidated, and the caller may safely clear the amount input.
type MutationResult struct {
	Kind          MutationKind      `json:"kind"`
	Steps         []TransactionStep `json:"steps"`
	ApproveTxHash string            `json:"approveTxHash,omitempty"`
	TxHash        string            `json:"txHash,omitempty"`
	Completed     bool              `json:"completed"`
}
