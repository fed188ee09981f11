package entity

// ZeroAddress represents the Ethereum zero address.
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// TokenInfo holds the details of a specific token known to the gateway.
// OFTAddress is the contract used to move the token across chains via the
// cross-chain messaging layer; the zero address means the token is not
// registered for remote transfers.
type TokenInfo struct {
	ChainID    uint64 `json:"chainId" yaml:"chainId"`
	Address    string `json:"address" yaml:"address"`
	OFTAddress string `json:"oftAddress,omitempty" yaml:"oftAddress,omitempty"`
	Name       string `json:"name" yaml:"name"`
	Symbol     string `json:"symbol" yaml:"symbol"`
	Decimals   uint8  `json:"decimals" yaml:"decimals"`
}

// HasOFTAddress reports whether the token is registered for cross-chain
// transfers.
func (t TokenInfo) HasOFTAddress() bool {
	return t.OFTAddress != "" && t.OFTAddress != ZeroAddress
}
