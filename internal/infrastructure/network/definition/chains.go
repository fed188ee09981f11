package networkdefinition

import (
	"fmt"
	"sort"

	"github.com/Senja-Hookathon/senja-gateway/internal/app/port"
	"github.com/Senja-Hookathon/senja-gateway/internal/domain/entity"
)

// Predefined borrow destination chains.
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.ChainDefinition{
		ChainID:          1,
		EndpointID:       30101,
		Name:             "Ethereum Mainnet",
		Identifier:       "ethereum",
		NativeSymbol:     "ETH",
		BlockExplorerURL: "https://etherscan.io",
	}
	BSC = entity.ChainDefinition{
		ChainID:          56,
		EndpointID:       30102,
		Name:             "BNB Smart Chain",
		Identifier:       "bsc",
		NativeSymbol:     "BNB",
		BlockExplorerURL: "https://bscscan.com",
	}
	Avalanche = entity.ChainDefinition{
		ChainID:          43114,
		EndpointID:       30106,
		Name:             "Avalanche C-Chain",
		Identifier:       "avalanche",
		NativeSymbol:     "AVAX",
		BlockExplorerURL: "https://snowtrace.io",
	}
	Polygon = entity.ChainDefinition{
		ChainID:          137,
		EndpointID:       30109,
		Name:             "Polygon PoS",
		Identifier:       "polygon",
		NativeSymbol:     "POL",
		BlockExplorerURL: "https://polygonscan.com",
	}
	Arbitrum = entity.ChainDefinition{
		ChainID:          42161,
		EndpointID:       30110,
		Name:             "Arbitrum One",
		Identifier:       "arbitrum",
		NativeSymbol:     "ETH",
		BlockExplorerURL: "https://arbiscan.io",
	}
	Optimism = entity.ChainDefinition{
		ChainID:          10,
		EndpointID:       30111,
		Name:             "OP Mainnet",
		Identifier:       "optimism",
		NativeSymbol:     "ETH",
		BlockExplorerURL: "https://optimistic.etherscan.io",
	}
	Base = entity.ChainDefinition{
		ChainID:          8453,
		EndpointID:       30184,
		Name:             "Base Mainnet",
		Identifier:       "base",
		NativeSymbol:     "ETH",
		BlockExplorerURL: "https://basescan.org",
	}
)

var allKnownChains = map[uint32]entity.ChainDefinition{
	Ethereum.EndpointID:  Ethereum,
	BSC.EndpointID:       BSC,
	Avalanche.EndpointID: Avalanche,
	Polygon.EndpointID:   Polygon,
	Arbitrum.EndpointID:  Arbitrum,
	Optimism.EndpointID:  Optimism,
	Base.EndpointID:      Base,
}

// ChainProvider serves the catalog of chains a borrow can target. The local
// chain is always part of the catalog.
type ChainProvider struct {
	logger        port.Logger
	localEndpoint uint32
	chains        map[uint32]entity.ChainDefinition
}

func NewChainProvider(localEndpoint uint32, log port.Logger) *ChainProvider {
	p := &ChainProvider{
		logger:        log,
		localEndpoint: localEndpoint,
		chains:        allKnownChains,
	}
	if _, known := p.chains[localEndpoint]; !known {
		p.logger.Warn(fmt.Sprintf("Local endpoint id %d has no chain definition.", localEndpoint))
	}
	return p
}

// All returns the destination catalog ordered by endpoint id, local chain
// first.
func (p *ChainProvider) All() []entity.ChainDefinition {
	out := make([]entity.ChainDefinition, 0, len(p.chains))
	for _, def := range p.chains {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool {
		if (out[i].EndpointID == p.localEndpoint) != (out[j].EndpointID == p.localEndpoint) {
			return out[i].EndpointID == p.localEndpoint
		}
		return out[i].EndpointID < out[j].EndpointID
	})
	return out
}

// ByEndpointID returns the chain reachable through the given endpoint.
func (p *ChainProvider) ByEndpointID(endpointID uint32) (entity.ChainDefinition, bool) {
	def, ok := p.chains[endpointID]
	return def, ok
}

// ByChainID returns the chain with the given EVM chain id.
func (p *ChainProvider) ByChainID(chainID uint64) (entity.ChainDefinition, bool) {
	for _, def := range p.chains {
		if def.ChainID == chainID {
			return def, true
		}
	}
	return entity.ChainDefinition{}, false
}

// IsLocal reports whether the endpoint is the chain the gateway runs on.
func (p *ChainProvider) IsLocal(endpointID uint32) bool {
	return endpointID == p.localEndpoint
}
