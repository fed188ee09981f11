package entity

import (
	"errors"
	"strings"
)

// Sentinel errors for the mutation flows. Local validation failures
// (ErrInvalidAmount, ErrWalletNotConnected) never reach the chain and never
// flip a transaction step to its error state.
var (
	// ErrInvalidAmount means the human-entered amount did not parse to a
	// strictly positive number.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrWalletNotConnected means no operator account is configured.
	ErrWalletNotConnected = errors.New("wallet not connected")

	// ErrUserRejected means the signer declined the transaction. It is a
	// cancel, not a fault: steps reset to idle and no error is surfaced.
	ErrUserRejected = errors.New("user rejected transaction")

	// ErrFeeUnavailable means the cross-chain fee could not be quoted.
	ErrFeeUnavailable = errors.New("crosschain fee unavailable")

	// ErrTransientFinality means the node reported data not yet finalized;
	// the confirmation wait retries once before escalating.
	ErrTransientFinality = errors.New("unfinalized data")

	// ErrTransactionFailed covers any other submit or confirmation failure.
	ErrTransactionFailed = errors.New("transaction failed")
)

// ErrorKind is the classified category of a raw chain/network failure.
type ErrorKind int

const (
	// KindFailure is any failure that is not a cancel or a known transient.
	KindFailure ErrorKind = iota
	// KindUserRejected is a signer-declined submission.
	KindUserRejected
	// KindTransientFinality is a "data not yet finalized" node response.
	KindTransientFinality
)

// ClassifyError maps a raw error to the taxonomy by inspecting its message,
// case-insensitively. The matching is substring-based because wallet and node
// software report rejection in free text ("User rejected the request",
// "transaction denied", "cannot query unfinalized data"); there is no stable
// structured code across providers. The patterns are pinned by tests.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return KindFailure
	}
	if errors.Is(err, ErrUserRejected) {
		return KindUserRejected
	}
	if errors.Is(err, ErrTransientFinality) {
		return KindTransientFinality
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "rejected") || strings.Contains(msg, "denied") {
		return KindUserRejected
	}
	if strings.Contains(msg, "unfinalized") {
		return KindTransientFinality
	}
	return KindFailure
}
