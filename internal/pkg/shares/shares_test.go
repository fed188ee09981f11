package shares

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Senja-Hookathon/senja-gateway/internal/domain/entity"
)

func pool(totalAssets, totalShares int64) entity.SharePosition {
	return entity.SharePosition{
		TotalAssets: big.NewInt(totalAssets),
		TotalShares: big.NewInt(totalShares),
	}
}

func TestAssetsToShares(t *testing.T) {
	t.Run("ProportionalConversion", func(t *testing.T) {
		// 1000 assets backed by 500 shares: each share is worth 2 assets.
		p := pool(1000, 500)
		assert.Equal(t, int64(50), AssetsToShares(big.NewInt(100), p).Int64())
	})

	t.Run("FloorsTowardZero", func(t *testing.T) {
		p := pool(3, 2)
		// 5 * 2 / 3 = 3.33..., floored.
		assert.Equal(t, int64(3), AssetsToShares(big.NewInt(5), p).Int64())
	})

	t.Run("BootstrapPoolPassesThrough", func(t *testing.T) {
		for _, p := range []entity.SharePosition{
			pool(0, 0),
			pool(1000, 0),
			pool(0, 500),
			{},
		} {
			assert.Equal(t, int64(123), AssetsToShares(big.NewInt(123), p).Int64())
		}
	})

	t.Run("DoesNotMutateInput", func(t *testing.T) {
		assets := big.NewInt(100)
		AssetsToShares(assets, pool(1000, 500))
		assert.Equal(t, int64(100), assets.Int64())
	})

	t.Run("NilAssetsIsZero", func(t *testing.T) {
		assert.Equal(t, int64(0), AssetsToShares(nil, pool(1000, 500)).Int64())
	})
}

func TestSharesToAssets(t *testing.T) {
	t.Run("InverseOfAssetsToShares", func(t *testing.T) {
		p := pool(1000, 500)
		shareAmount := AssetsToShares(big.NewInt(100), p)
		assert.Equal(t, int64(100), SharesToAssets(shareAmount, p).Int64())
	})

	t.Run("BootstrapPoolPassesThrough", func(t *testing.T) {
		assert.Equal(t, int64(42), SharesToAssets(big.NewInt(42), pool(0, 0)).Int64())
	})
}

func TestApprovalWithBuffer(t *testing.T) {
	t.Run("AddsTenPercent", func(t *testing.T) {
		assert.Equal(t, int64(110), ApprovalWithBuffer(big.NewInt(100)).Int64())
		assert.Equal(t, int64(1100000), ApprovalWithBuffer(big.NewInt(1000000)).Int64())
	})

	t.Run("FloorsOddAmounts", func(t *testing.T) {
		// 7 * 110 / 100 = 7.7, floored.
		assert.Equal(t, int64(7), ApprovalWithBuffer(big.NewInt(7)).Int64())
	})

	t.Run("NilIsZero", func(t *testing.T) {
		assert.Equal(t, int64(0), ApprovalWithBuffer(nil).Int64())
	})
}
