package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Senja-Hookathon/senja-gateway/internal/app/port"
	"github.com/Senja-Hookathon/senja-gateway/internal/domain/entity"
)

// pairMapping points a normalized FROM-TO pair at the market ticker quoting
// it. Invert flips the quote when the pair is listed the other way round.
type pairMapping struct {
	Ticker string
	Invert bool
}

var tokenPairs = map[string]pairMapping{
	"ETH-USDC":  {Ticker: "ETHUSDT"},
	"USDC-ETH":  {Ticker: "ETHUSDT", Invert: true},
	"ETH-USDT":  {Ticker: "ETHUSDT"},
	"USDT-ETH":  {Ticker: "ETHUSDT", Invert: true},
	"AVAX-USDT": {Ticker: "AVAXUSDT"},
	"USDT-AVAX": {Ticker: "AVAXUSDT", Invert: true},
	"AVAX-USDC": {Ticker: "AVAXUSDT"},
	"USDC-AVAX": {Ticker: "AVAXUSDT", Invert: true},
	"BTC-USDT":  {Ticker: "BTCUSDT"},
	"USDT-BTC":  {Ticker: "BTCUSDT", Invert: true},
	"BTC-USDC":  {Ticker: "BTCUSDT"},
	"USDC-BTC":  {Ticker: "BTCUSDT", Invert: true},
	"ETH-BTC":   {Ticker: "ETHBTC"},
	"BTC-ETH":   {Ticker: "ETHBTC", Invert: true},
	"USDC-USDT": {Ticker: "USDCUSDT"},
	"USDT-USDC": {Ticker: "USDCUSDT", Invert: true},
}

var stablecoins = map[string]bool{
	"USDC": true,
	"USDT": true,
	"DAI":  true,
}

// swapQuoteDecimals is the display precision of computed swap outputs.
const swapQuoteDecimals = 6

// IsStablecoin reports whether amounts in the given symbol can be shown as
// USD values directly.
func IsStablecoin(symbol string) bool {
	return stablecoins[normalizeSymbol(symbol)]
}

var wrappedSymbols = map[string]string{
	"WETH":  "ETH",
	"WBTC":  "BTC",
	"WAVAX": "AVAX",
}

// normalizeSymbol upper-cases and unwraps wrapped-token symbols, so WETH and
// ETH quote against the same ticker.
func normalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if unwrapped, ok := wrappedSymbols[s]; ok {
		return unwrapped
	}
	return s
}

type priceServiceImpl struct {
	oracle port.PriceOracle
	cache  *QueryCache
	logger *zap.Logger
}

// NewPriceService serves market exchange rates for swap quoting, backed by
// the spot price oracle with cached lookups.
func NewPriceService(oracle port.PriceOracle, cache *QueryCache, logger *zap.Logger) port.PriceService {
	return &priceServiceImpl{
		oracle: oracle,
		cache:  cache,
		logger: logger.Named("PriceService"),
	}
}

func (s *priceServiceImpl) ExchangeRate(ctx context.Context, fromSymbol, toSymbol string) (float64, bool, error) {
	from := normalizeSymbol(fromSymbol)
	to := normalizeSymbol(toSymbol)
	if from == to {
		return 1, true, nil
	}

	pair, known := tokenPairs[from+"-"+to]
	if !known {
		return 0, false, nil
	}

	cacheSuffix := from + "-" + to
	if cached, found := s.cache.Get(entity.TagExchangeRate, cacheSuffix); found {
		return cached.(float64), true, nil
	}

	price, err := s.oracle.SpotPrice(ctx, pair.Ticker)
	if err != nil {
		return 0, true, fmt.Errorf("fetching %s: %w", pair.Ticker, err)
	}
	rate := price
	if pair.Invert {
		if price == 0 {
			return 0, true, fmt.Errorf("ticker %s returned zero price", pair.Ticker)
		}
		rate = 1 / price
	}

	s.cache.Set(entity.TagExchangeRate, cacheSuffix, rate)
	s.logger.Debug("fetched exchange rate",
		zap.String("pair", cacheSuffix),
		zap.Float64("rate", rate),
	)
	return rate, true, nil
}

func (s *priceServiceImpl) SwapQuote(ctx context.Context, amountIn string, fromSymbol, toSymbol string) (string, error) {
	in, err := strconv.ParseFloat(strings.TrimSpace(amountIn), 64)
	if err != nil || in <= 0 {
		return "", fmt.Errorf("%w: %q", entity.ErrInvalidAmount, amountIn)
	}

	rate, known, err := s.ExchangeRate(ctx, fromSymbol, toSymbol)
	if err != nil {
		return "", err
	}
	if !known {
		return "", fmt.Errorf("no trading pair for %s-%s", fromSymbol, toSymbol)
	}

	return strconv.FormatFloat(in*rate, 'f', swapQuoteDecimals, 64), nil
}
