// Package tokenregistry resolves the tokens and protocol contract addresses
// the gateway knows about, as loaded from configuration.
package tokenregistry

import (
	"strings"

	"github.com/Senja-Hookathon/senja-gateway/internal/config"
	"github.com/Senja-Hookathon/senja-gateway/internal/domain/entity"
)

// Registry indexes the configured tokens by symbol and by address.
type Registry struct {
	chainID   uint64
	bySymbol  map[string]entity.TokenInfo
	byAddress map[string]entity.TokenInfo
	factory   string
	helper    string
}

// New builds a Registry from configuration.
func New(cfg *config.Config) *Registry {
	r := &Registry{
		chainID:   cfg.Network.ChainID,
		bySymbol:  make(map[string]entity.TokenInfo, len(cfg.Tokens)),
		byAddress: make(map[string]entity.TokenInfo, len(cfg.Tokens)),
		factory:   cfg.Contracts.Factory,
		helper:    cfg.Contracts.Helper,
	}
	for _, t := range cfg.Tokens {
		info := entity.TokenInfo{
			ChainID:    cfg.Network.ChainID,
			Address:    t.Address,
			OFTAddress: t.OFTAddress,
			Name:       t.Name,
			Symbol:     t.Symbol,
			Decimals:   t.Decimals,
		}
		r.bySymbol[strings.ToUpper(t.Symbol)] = info
		r.byAddress[strings.ToLower(t.Address)] = info
	}
	return r
}

// BySymbol looks up a token by its symbol, case-insensitively.
func (r *Registry) BySymbol(symbol string) (entity.TokenInfo, bool) {
	t, ok := r.bySymbol[strings.ToUpper(symbol)]
	return t, ok
}

// ByAddress looks up a token by its contract address, case-insensitively.
func (r *Registry) ByAddress(address string) (entity.TokenInfo, bool) {
	t, ok := r.byAddress[strings.ToLower(address)]
	return t, ok
}

// All returns every registered token.
func (r *Registry) All() []entity.TokenInfo {
	tokens := make([]entity.TokenInfo, 0, len(r.bySymbol))
	for _, t := range r.bySymbol {
		tokens = append(tokens, t)
	}
	return tokens
}

// FactoryAddress returns the pool factory contract address.
func (r *Registry) FactoryAddress() string { return r.factory }

// HelperAddress returns the helper contract address used for fee quotes.
func (r *Registry) HelperAddress() string { return r.helper }
