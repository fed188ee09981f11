package tokenregistry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Senja-Hookathon/senja-gateway/internal/config"
)

func newTestConfig() *config.Config {
	return &config.Config{
		Network: config.NetworkConfig{ChainID: 43114},
		Contracts: config.ContractsConfig{
			Factory: "0xFactory",
			Helper:  "0xHelper",
		},
		Tokens: []config.TokenConfig{
			{
				Name:       "Tether USD",
				Symbol:     "USDT",
				Address:    "0x9702230A8Ea53601f5cD2dc00fDBc13d4dF4A8c7",
				OFTAddress: "0xD1a8B86C726bA17c6B1Ff69C1e888c0f4a8c3aBf",
				Decimals:   6,
			},
		},
	}
}

func TestRegistryLookups(t *testing.T) {
	r := New(newTestConfig())

	t.Run("BySymbolIsCaseInsensitive", func(t *testing.T) {
		for _, symbol := range []string{"USDT", "usdt", "UsDt"} {
			token, ok := r.BySymbol(symbol)
			require.True(t, ok, "symbol %q", symbol)
			assert.Equal(t, uint8(6), token.Decimals)
			assert.Equal(t, uint64(43114), token.ChainID)
		}
	})

	t.Run("ByAddressIsCaseInsensitive", func(t *testing.T) {
		token, ok := r.ByAddress("0x9702230a8ea53601f5cd2dc00fdbc13d4df4a8c7")
		require.True(t, ok)
		assert.Equal(t, "USDT", token.Symbol)
	})

	t.Run("UnknownLookupsReportMiss", func(t *testing.T) {
		_, ok := r.BySymbol("DOGE")
		assert.False(t, ok)
		_, ok = r.ByAddress("0xdead")
		assert.False(t, ok)
	})

	t.Run("ContractAddresses", func(t *testing.T) {
		assert.Equal(t, "0xFactory", r.FactoryAddress())
		assert.Equal(t, "0xHelper", r.HelperAddress())
	})

	t.Run("AllListsEveryToken", func(t *testing.T) {
		assert.Len(t, r.All(), 1)
	})
}
