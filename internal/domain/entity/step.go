package entity

// StepStatus represents the lifecycle state of a single transaction step.
type StepStatus int

const (
	// StepIdle means the step has not started (or was reset after a
	// user-initiated cancel).
	StepIdle StepStatus = iota
	// StepLoading means the step's transaction has been submitted and is
	// awaiting confirmation.
	StepLoading
	// StepSuccess means the step's transaction was confirmed.
	StepSuccess
	// StepError means the step failed with a non-cancel error.
	StepError
)

// String returns the lower-case name used in API responses.
func (s StepStatus) String() string {
	switch s {
	case StepIdle:
		return "idle"
	case StepLoading:
		return "loading"
	case StepSuccess:
		return "success"
	case StepError:
		return "error"
	default:
		return "unknown"
	}
}

// TransactionStep tracks the progress of one on-chain call within a
// mutation. Index is 1-based; step 1 precedes step 2 when both exist.
type TransactionStep struct {
	Index  int        `json:"step"`
	Status StepStatus `json:"status"`
	TxHash string     `json:"txHash,omitempty"`
	Error  string     `json:"error,omitempty"`
}

// MutationKind identifies a state-changing protocol operation. Every kind
// must have a registered cache invalidation set.
type MutationKind string

const (
	MutationSupplyLiquidity    MutationKind = "supply-liquidity"
	MutationWithdrawLiquidity  MutationKind = "withdraw-liquidity"
	MutationSupplyCollateral   MutationKind = "supply-collateral"
	MutationWithdrawCollateral MutationKind = "withdraw-collateral"
	MutationBorrow             MutationKind = "borrow"
	MutationRepay              MutationKind = "repay"
	MutationSwap               MutationKind = "swap"
	MutationCreatePool         MutationKind = "create-pool"
)

// AllMutationKinds lists every defined mutation kind, in a stable order.
func AllMutationKinds() []MutationKind {
	return []MutationKind{
		MutationSupplyLiquidity,
		MutationWithdrawLiquidity,
		MutationSupplyCollateral,
		MutationWithdrawCollateral,
		MutationBorrow,
		MutationRepay,
		MutationSwap,
		MutationCreatePool,
	}
}

// CacheTag names a class of previously fetched read data that a mutation
// must invalidate on success.
type CacheTag string

const (
	TagPools                 CacheTag = "pools"
	TagPoolsComplete         CacheTag = "poolsComplete"
	TagTokenBalance          CacheTag = "tokenBalance"
	TagLiquidityBalance      CacheTag = "liquidityBalance"
	TagCollateralBalance     CacheTag = "collateralBalance"
	TagUserBorrowBalance     CacheTag = "userBorrowBalance"
	TagUserCollateralBalance CacheTag = "userCollateralBalance"
	TagUserBorrowShares      CacheTag = "userBorrowShares"
	TagExchangeRate          CacheTag = "exchangeRate"
)
