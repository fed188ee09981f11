package port

import "context"

// PriceOracle fetches spot prices from an external market data source.
// Symbol is the exchange's trading pair notation (e.g. "AVAXUSDT").
type PriceOracle interface {
	SpotPrice(ctx context.Context, symbol string) (float64, error)
}
