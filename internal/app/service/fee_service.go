package service

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/Senja-Hookathon/senja-gateway/internal/app/port"
	"github.com/Senja-Hookathon/senja-gateway/internal/domain/entity"
	"github.com/Senja-Hookathon/senja-gateway/internal/pkg/amount"
	"github.com/Senja-Hookathon/senja-gateway/internal/pkg/metrics"
)

type feeServiceImpl struct {
	reader        port.ContractReader
	accounts      port.AccountProvider
	helperAddress string
	localEndpoint uint32
	quotes        *gocache.Cache
	logger        *zap.Logger
}

// NewFeeService builds the cross-chain fee resolver. Quotes are cached per
// destination/token/amount tuple for quoteTTL.
func NewFeeService(
	reader port.ContractReader,
	accounts port.AccountProvider,
	helperAddress string,
	localEndpoint uint32,
	quoteTTL time.Duration,
	logger *zap.Logger,
) port.FeeService {
	return &feeServiceImpl{
		reader:        reader,
		accounts:      accounts,
		helperAddress: helperAddress,
		localEndpoint: localEndpoint,
		quotes:        gocache.New(quoteTTL, 10*time.Minute),
		logger:        logger.Named("FeeService"),
	}
}

func (s *feeServiceImpl) Resolve(ctx context.Context, destinationEndpointID uint32, humanAmount string, decimals uint8, token entity.TokenInfo) entity.FeeQuote {
	// Same-chain borrows never leave the local endpoint and cost nothing.
	if destinationEndpointID == 0 || destinationEndpointID == s.localEndpoint {
		metrics.FeeQuoteLookups.WithLabelValues("local").Inc()
		return entity.FeeQuote{
			DestinationEndpointID: destinationEndpointID,
			FeeWei:                big.NewInt(0),
			IsLocal:               true,
		}
	}

	base, err := amount.ToBaseUnits(humanAmount, decimals)
	if err != nil {
		return s.unavailable(destinationEndpointID, fmt.Errorf("amount %q not quotable: %v", humanAmount, err))
	}

	account, ok := s.accounts.CurrentAccount()
	if !ok {
		return s.unavailable(destinationEndpointID, fmt.Errorf("no account connected"))
	}

	if !token.HasOFTAddress() {
		return s.unavailable(destinationEndpointID, fmt.Errorf("token %s has no OFT address", token.Symbol))
	}

	key := fmt.Sprintf("%d|%s|%s", destinationEndpointID, strings.ToLower(token.Address), base.String())
	if cached, found := s.quotes.Get(key); found {
		metrics.FeeQuoteLookups.WithLabelValues("cache").Inc()
		return cached.(entity.FeeQuote)
	}

	outputs, err := s.reader.ReadContract(ctx, entity.ContractCall{
		Contract: s.helperAddress,
		Function: "getFee",
		Args: []interface{}{
			common.HexToAddress(token.OFTAddress),
			destinationEndpointID,
			common.HexToAddress(account),
			base,
		},
	})
	if err != nil {
		return s.unavailable(destinationEndpointID, fmt.Errorf("getFee call: %v", err))
	}

	fee, ok := outputs[0].(*big.Int)
	if !ok {
		return s.unavailable(destinationEndpointID, fmt.Errorf("getFee returned unexpected type %T", outputs[0]))
	}

	quote := entity.FeeQuote{
		DestinationEndpointID: destinationEndpointID,
		FeeWei:                fee,
	}
	s.quotes.Set(key, quote, gocache.DefaultExpiration)
	metrics.FeeQuoteLookups.WithLabelValues("chain").Inc()

	s.logger.Debug("resolved cross-chain fee",
		zap.Uint32("dstEid", destinationEndpointID),
		zap.String("token", token.Symbol),
		zap.String("feeWei", fee.String()),
	)
	return quote
}

func (s *feeServiceImpl) unavailable(destinationEndpointID uint32, cause error) entity.FeeQuote {
	metrics.FeeQuoteLookups.WithLabelValues("unavailable").Inc()
	s.logger.Warn("fee quote unavailable",
		zap.Uint32("dstEid", destinationEndpointID),
		zap.Error(cause),
	)
	return entity.FeeQuote{
		DestinationEndpointID: destinationEndpointID,
		FeeWei:                big.NewInt(0),
		Err:                   fmt.Errorf("%w: %v", entity.ErrFeeUnavailable, cause),
	}
}
