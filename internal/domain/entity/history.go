package entity

// HistoryEventKind identifies one indexed protocol event collection.
type HistoryEventKind string

const (
	HistorySupplyLiquidity   HistoryEventKind = "supply-liquidity"
	HistoryWithdrawLiquidity HistoryEventKind = "withdraw-liquidity"
	HistoryBorrow            HistoryEventKind = "borrow"
	HistoryRepay             HistoryEventKind = "repay"
	HistorySwap              HistoryEventKind = "swap"
)

// HistoryEvent is one row of a user's transaction history as reported by the
// indexer. Amount and Shares are base-unit decimal strings as indexed; the
// gateway formats them against the pool's tokens for display.
type HistoryEvent struct {
	ID              string           `json:"id"`
	Kind            HistoryEventKind `json:"kind"`
	User            string           `json:"user"`
	PoolAddress     string           `json:"poolAddress"`
	CollateralToken string           `json:"collateralToken"`
	BorrowToken     string           `json:"borrowToken"`
	Amount          string           `json:"amount"`
	Shares          string           `json:"shares,omitempty"`
	Timestamp       int64            `json:"timestamp"`
	BlockNumber     uint64           `json:"blockNumber"`
	TransactionHash string           `json:"transactionHash"`
}
