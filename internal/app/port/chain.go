package port

import (
	"context"

	"github.com/Senja-Hookathon/senja-gateway/internal/domain/entity"
)

// ContractReader executes read-only calls against protocol contracts. The
// implementation packs arguments against the named contract's ABI and
// returns the unpacked output values.
type ContractReader interface {
	ReadContract(ctx context.Context, call entity.ContractCall) ([]interface{}, error)
}

// ContractWriter submits state-changing transactions and awaits their
// confirmation. A submitted transaction cannot be unsent; abandoning its
// tracking is the only form of cancellation.
type ContractWriter interface {
	// Submit signs and broadcasts the transaction, returning its hash.
	Submit(ctx context.Context, call entity.ContractCall) (string, error)

	// AwaitConfirmation polls for the transaction receipt. It returns an
	// error wrapping entity.ErrTransientFinality when the node reports data
	// not yet finalized, so callers can apply the retry-once policy.
	AwaitConfirmation(ctx context.Context, txHash string, opts entity.WaitOptions) error
}

// ChainClient bundles the read and write halves of one network connection.
type ChainClient interface {
	ContractReader
	ContractWriter
}
