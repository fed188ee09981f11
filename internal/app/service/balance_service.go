package service

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/Senja-Hookathon/senja-gateway/internal/app/port"
	"github.com/Senja-Hookathon/senja-gateway/internal/domain/entity"
	"github.com/Senja-Hookathon/senja-gateway/internal/pkg/amount"
)

// borrowShareDisplayDecimals is the fixed display precision for borrow share
// balances.
const borrowShareDisplayDecimals = 5

// Pools report this sentinel when an account has interacted but holds no
// position contract.
var placeholderPosition = common.HexToAddress("0x0000000000000000000000000000000000000001")

type balanceEntry struct {
	Base      string
	Formatted string
}

type balanceServiceImpl struct {
	reader   port.ContractReader
	accounts port.AccountProvider
	cache    *QueryCache
	logger   *zap.Logger
}

// NewBalanceService serves the cached read-side balances backing the UI.
func NewBalanceService(
	reader port.ContractReader,
	accounts port.AccountProvider,
	cache *QueryCache,
	logger *zap.Logger,
) port.BalanceService {
	return &balanceServiceImpl{
		reader:   reader,
		accounts: accounts,
		cache:    cache,
		logger:   logger.Named("BalanceService"),
	}
}

func (s *balanceServiceImpl) TokenBalance(ctx context.Context, token entity.TokenInfo) (string, string, error) {
	account, ok := s.accounts.CurrentAccount()
	if !ok {
		return "", "", entity.ErrWalletNotConnected
	}

	suffix := strings.ToLower(token.Address)
	if cached, found := s.cache.Get(entity.TagTokenBalance, suffix); found {
		entry := cached.(balanceEntry)
		return entry.Base, entry.Formatted, nil
	}

	balance, err := s.readUint(ctx, token.Address, "balanceOf", common.HexToAddress(account))
	if err != nil {
		return "", "", fmt.Errorf("reading %s balance: %w", token.Symbol, err)
	}

	entry := balanceEntry{
		Base:      balance.String(),
		Formatted: amount.ToHumanFixed(balance, token.Decimals, amount.DisplayDecimals(token.Decimals)),
	}
	s.cache.Set(entity.TagTokenBalance, suffix, entry)
	return entry.Base, entry.Formatted, nil
}

func (s *balanceServiceImpl) SupplyBalance(ctx context.Context, poolAddress string, token entity.TokenInfo) (string, string, error) {
	account, ok := s.accounts.CurrentAccount()
	if !ok {
		return "", "", entity.ErrWalletNotConnected
	}

	suffix := strings.ToLower(poolAddress) + "|" + strings.ToLower(token.Address)
	if cached, found := s.cache.Get(entity.TagLiquidityBalance, suffix); found {
		entry := cached.(balanceEntry)
		return entry.Base, entry.Formatted, nil
	}

	outputs, err := s.reader.ReadContract(ctx, entity.ContractCall{
		Contract: poolAddress,
		Function: "addressPositions",
		Args:     []interface{}{common.HexToAddress(account)},
	})
	if err != nil {
		return "", "", fmt.Errorf("reading position address: %w", err)
	}
	position, ok := outputs[0].(common.Address)
	if !ok {
		return "", "", fmt.Errorf("addressPositions returned unexpected type %T", outputs[0])
	}

	// No position contract yet means a zero balance, not an error.
	if position == (common.Address{}) || position == placeholderPosition {
		entry := balanceEntry{Base: "0", Formatted: "0"}
		s.cache.Set(entity.TagLiquidityBalance, suffix, entry)
		return entry.Base, entry.Formatted, nil
	}

	balance, err := s.readUint(ctx, token.Address, "balanceOf", position)
	if err != nil {
		return "", "", fmt.Errorf("reading position %s balance: %w", token.Symbol, err)
	}

	entry := balanceEntry{
		Base:      balance.String(),
		Formatted: amount.ToHumanFixed(balance, token.Decimals, amount.DisplayDecimals(token.Decimals)),
	}
	s.cache.Set(entity.TagLiquidityBalance, suffix, entry)
	return entry.Base, entry.Formatted, nil
}

func (s *balanceServiceImpl) BorrowShares(ctx context.Context, poolAddress string, decimals uint8) (string, string, error) {
	account, ok := s.accounts.CurrentAccount()
	if !ok {
		return "", "", entity.ErrWalletNotConnected
	}

	suffix := strings.ToLower(poolAddress)
	if cached, found := s.cache.Get(entity.TagUserBorrowShares, suffix); found {
		entry := cached.(balanceEntry)
		return entry.Base, entry.Formatted, nil
	}

	sharesHeld, err := s.readUint(ctx, poolAddress, "userBorrowShares", common.HexToAddress(account))
	if err != nil {
		return "", "", fmt.Errorf("reading borrow shares: %w", err)
	}

	entry := balanceEntry{Base: sharesHeld.String()}
	if sharesHeld.Sign() == 0 {
		entry.Formatted = amount.ZeroShareDisplay
	} else {
		entry.Formatted = amount.ToHumanFixed(sharesHeld, decimals, borrowShareDisplayDecimals)
	}
	s.cache.Set(entity.TagUserBorrowShares, suffix, entry)
	return entry.Base, entry.Formatted, nil
}

func (s *balanceServiceImpl) readUint(ctx context.Context, contract, function string, arg common.Address) (*big.Int, error) {
	outputs, err := s.reader.ReadContract(ctx, entity.ContractCall{
		Contract: contract,
		Function: function,
		Args:     []interface{}{arg},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", function, err)
	}
	value, ok := outputs[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s returned unexpected type %T", function, outputs[0])
	}
	return value, nil
}
