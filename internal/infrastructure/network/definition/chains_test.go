package networkdefinition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Senja-Hookathon/senja-gateway/internal/pkg/logger"
)

func TestChainProvider(t *testing.T) {
	p := NewChainProvider(Avalanche.EndpointID, logger.NewSlogAdapter())

	t.Run("LocalChainListedFirst", func(t *testing.T) {
		chains := p.All()
		require.NotEmpty(t, chains)
		assert.Equal(t, Avalanche.EndpointID, chains[0].EndpointID)
	})

	t.Run("ByEndpointID", func(t *testing.T) {
		def, ok := p.ByEndpointID(Base.EndpointID)
		require.True(t, ok)
		assert.Equal(t, "base", def.Identifier)

		_, ok = p.ByEndpointID(99999)
		assert.False(t, ok)
	})

	t.Run("ByChainID", func(t *testing.T) {
		def, ok := p.ByChainID(42161)
		require.True(t, ok)
		assert.Equal(t, Arbitrum.EndpointID, def.EndpointID)
	})

	t.Run("IsLocal", func(t *testing.T) {
		assert.True(t, p.IsLocal(Avalanche.EndpointID))
		assert.False(t, p.IsLocal(Ethereum.EndpointID))
	})
}
