package port

import "context"

// IndexerClient executes GraphQL documents against the protocol indexer and
// unmarshals the response data into out.
type IndexerClient interface {
	Query(ctx context.Context, document string, out interface{}) error
}
