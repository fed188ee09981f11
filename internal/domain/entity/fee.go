package entity

import "math/big"

// FeeQuote is the result of resolving the cross-chain fee for a borrow
// destination. A local destination is fee-free and never touches the chain.
// Err set to ErrFeeUnavailable must be rendered as a distinct "fee
// unavailable" state, never as a zero fee.
type FeeQuote struct {
	DestinationEndpointID uint32   `json:"destinationEndpointId"`
	FeeWei                *big.Int `json:"feeWei"`
	IsLocal               bool     `json:"isLocal"`
	Err                   error    `json:"-"`
}

// Available reports whether the quote carries a usable fee figure.
func (q FeeQuote) Available() bool {
	return q.Err == nil && q.FeeWei != nil
}
