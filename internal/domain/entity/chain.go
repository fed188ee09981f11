package entity

// ChainDefinition describes one chain a borrow can be delivered to. The
// EndpointID is the cross-chain messaging endpoint, distinct from the EVM
// chain id.
type ChainDefinition struct {
	ChainID          uint64 `json:"chainId"`
	EndpointID       uint32 `json:"endpointId"`
	Name             string `json:"name"`
	Identifier       string `json:"identifier"`
	NativeSymbol     string `json:"nativeSymbol"`
	BlockExplorerURL string `json:"blockExplorerUrl"`
}
