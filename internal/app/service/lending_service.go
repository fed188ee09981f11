package service

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/Senja-Hookathon/senja-gateway/internal/app/port"
	"github.com/Senja-Hookathon/senja-gateway/internal/domain/entity"
	"github.com/Senja-Hookathon/senja-gateway/internal/pkg/amount"
	"github.com/Senja-Hookathon/senja-gateway/internal/pkg/metrics"
	"github.com/Senja-Hookathon/senja-gateway/internal/pkg/shares"
)

// Interest rate parameters applied to every new pool, fixed point 1e16.
var (
	poolBaseRate             = scale16("0.05")
	poolRateAtOptimal        = scale16("6")
	poolOptimalUtilization   = scale16("92")
	poolMaxUtilization       = scale16("100")
	poolLiquidationThreshold = scale16("85")
	poolLiquidationBonus     = scale16("5")

	maxLtvScaled = scale16("100")
)

func scale16(value string) *big.Int {
	v, err := amount.ToBaseUnits(value, 16)
	if err != nil {
		panic(fmt.Sprintf("bad rate constant %q: %v", value, err))
	}
	return v
}

type lendingServiceImpl struct {
	chain          port.ChainClient
	accounts       port.AccountProvider
	fees           port.FeeService
	invalidation   *InvalidationPolicy
	factoryAddress string
	localEndpoint  uint32
	borrowGasLimit uint64
	logger         *zap.Logger
}

// NewLendingService wires the mutation side of the protocol: input
// validation, the approve/act step sequences, fee resolution for cross-chain
// borrows, and cache invalidation on completion.
func NewLendingService(
	chain port.ChainClient,
	accounts port.AccountProvider,
	fees port.FeeService,
	invalidation *InvalidationPolicy,
	factoryAddress string,
	localEndpoint uint32,
	borrowGasLimit uint64,
	logger *zap.Logger,
) port.LendingService {
	return &lendingServiceImpl{
		chain:          chain,
		accounts:       accounts,
		fees:           fees,
		invalidation:   invalidation,
		factoryAddress: factoryAddress,
		localEndpoint:  localEndpoint,
		borrowGasLimit: borrowGasLimit,
		logger:         logger.Named("LendingService"),
	}
}

func (s *lendingServiceImpl) SupplyLiquidity(ctx context.Context, p entity.SupplyLiquidityParams) (entity.MutationResult, error) {
	kind := entity.MutationSupplyLiquidity
	account, base, err := s.preflight(p.Amount, p.TokenDecimals)
	if err != nil {
		return s.rejectInput(kind, err)
	}

	specs := []StepSpec{
		s.approveSpec(p.BorrowTokenAddress, p.PoolAddress, base),
		{Name: "supplyLiquidity", Submit: func(ctx context.Context) (string, error) {
			return s.chain.Submit(ctx, entity.ContractCall{
				Contract: p.PoolAddress,
				Function: "supplyLiquidity",
				Args:     []interface{}{common.HexToAddress(account), base},
			})
		}},
	}
	return s.execute(ctx, kind, specs)
}

func (s *lendingServiceImpl) WithdrawLiquidity(ctx context.Context, p entity.WithdrawLiquidityParams) (entity.MutationResult, error) {
	kind := entity.MutationWithdrawLiquidity
	_, shareAmount, err := s.preflight(p.Shares, p.TokenDecimals)
	if err != nil {
		return s.rejectInput(kind, err)
	}

	specs := []StepSpec{
		{Name: "withdrawLiquidity", Submit: func(ctx context.Context) (string, error) {
			return s.chain.Submit(ctx, entity.ContractCall{
				Contract: p.PoolAddress,
				Function: "withdrawLiquidity",
				Args:     []interface{}{shareAmount},
			})
		}},
	}
	return s.execute(ctx, kind, specs)
}

func (s *lendingServiceImpl) SupplyCollateral(ctx context.Context, p entity.SupplyCollateralParams) (entity.MutationResult, error) {
	kind := entity.MutationSupplyCollateral
	account, base, err := s.preflight(p.Amount, p.TokenDecimals)
	if err != nil {
		return s.rejectInput(kind, err)
	}

	specs := []StepSpec{
		s.approveSpec(p.CollateralTokenAddress, p.PoolAddress, base),
		{Name: "supplyCollateral", Submit: func(ctx context.Context) (string, error) {
			return s.chain.Submit(ctx, entity.ContractCall{
				Contract: p.PoolAddress,
				Function: "supplyCollateral",
				Args:     []interface{}{common.HexToAddress(account), base},
			})
		}},
	}
	return s.execute(ctx, kind, specs)
}

func (s *lendingServiceImpl) WithdrawCollateral(ctx context.Context, p entity.WithdrawCollateralParams) (entity.MutationResult, error) {
	kind := entity.MutationWithdrawCollateral
	_, base, err := s.preflight(p.Amount, p.TokenDecimals)
	if err != nil {
		return s.rejectInput(kind, err)
	}

	specs := []StepSpec{
		{Name: "withdrawCollateral", Submit: func(ctx context.Context) (string, error) {
			return s.chain.Submit(ctx, entity.ContractCall{
				Contract: p.PoolAddress,
				Function: "withdrawCollateral",
				Args:     []interface{}{base},
			})
		}},
	}
	return s.execute(ctx, kind, specs)
}

func (s *lendingServiceImpl) Borrow(ctx context.Context, p entity.BorrowParams) (entity.MutationResult, error) {
	kind := entity.MutationBorrow
	_, base, err := s.preflight(p.Amount, p.TokenDecimals)
	if err != nil {
		return s.rejectInput(kind, err)
	}

	destination := p.DestinationEndpointID
	if destination == 0 {
		destination = s.localEndpoint
	}

	quote := s.fees.Resolve(ctx, destination, p.Amount, p.TokenDecimals, p.BorrowToken)
	if quote.Err != nil {
		return s.rejectInput(kind, quote.Err)
	}

	var value *big.Int
	if !quote.IsLocal {
		value = quote.FeeWei
	}

	specs := []StepSpec{
		{Name: "borrowDebt", Submit: func(ctx context.Context) (string, error) {
			return s.chain.Submit(ctx, entity.ContractCall{
				Contract: p.PoolAddress,
				Function: "borrowDebt",
				Args: []interface{}{
					base,
					new(big.Int).SetUint64(uint64(destination)),
					new(big.Int).SetUint64(s.borrowGasLimit),
				},
				Value: value,
			})
		}},
	}
	return s.execute(ctx, kind, specs)
}

func (s *lendingServiceImpl) Repay(ctx context.Context, p entity.RepayParams) (entity.MutationResult, error) {
	kind := entity.MutationRepay
	account, base, err := s.preflight(p.Amount, p.TokenDecimals)
	if err != nil {
		return s.rejectInput(kind, err)
	}

	position, err := s.readBorrowPosition(ctx, p.PoolAddress)
	if err != nil {
		return s.rejectInput(kind, fmt.Errorf("reading pool borrow totals: %w", err))
	}

	shareAmount := shares.AssetsToShares(base, position)
	// The approval carries a 10% buffer over the repaid assets so accrued
	// interest between quote and confirmation cannot starve the transfer.
	// The repay call itself uses the exact share amount.
	approveAmount := shares.ApprovalWithBuffer(base)

	specs := []StepSpec{
		s.approveSpec(p.BorrowTokenAddress, p.PoolAddress, approveAmount),
		{Name: "repayWithSelectedToken", Submit: func(ctx context.Context) (string, error) {
			return s.chain.Submit(ctx, entity.ContractCall{
				Contract: p.PoolAddress,
				Function: "repayWithSelectedToken",
				Args: []interface{}{
					common.HexToAddress(account),
					common.HexToAddress(p.BorrowTokenAddress),
					shareAmount,
					big.NewInt(0),
					false,
				},
			})
		}},
	}
	return s.execute(ctx, kind, specs)
}

func (s *lendingServiceImpl) Swap(ctx context.Context, p entity.SwapParams) (entity.MutationResult, error) {
	kind := entity.MutationSwap
	_, base, err := s.preflight(p.AmountIn, p.TokenInDecimals)
	if err != nil {
		return s.rejectInput(kind, err)
	}

	specs := []StepSpec{
		{Name: "swapTokenByPosition", Submit: func(ctx context.Context) (string, error) {
			return s.chain.Submit(ctx, entity.ContractCall{
				Contract: p.PoolAddress,
				Function: "swapTokenByPosition",
				Args: []interface{}{
					common.HexToAddress(p.TokenIn),
					common.HexToAddress(p.TokenOut),
					base,
					big.NewInt(0),
				},
			})
		}},
	}
	return s.execute(ctx, kind, specs)
}

func (s *lendingServiceImpl) CreatePool(ctx context.Context, p entity.CreatePoolParams) (entity.MutationResult, error) {
	kind := entity.MutationCreatePool
	_, supply, err := s.preflight(p.SupplyAmount, p.BorrowTokenDecimals)
	if err != nil {
		return s.rejectInput(kind, err)
	}

	ltvScaled, err := amount.ToBaseUnits(p.LTV, 16)
	if err != nil {
		return s.rejectInput(kind, fmt.Errorf("%w: LTV %q", entity.ErrInvalidAmount, p.LTV))
	}
	if ltvScaled.Cmp(maxLtvScaled) > 0 {
		return s.rejectInput(kind, fmt.Errorf("%w: LTV %q exceeds 100%%", entity.ErrInvalidAmount, p.LTV))
	}

	params := entity.PoolFactoryParams{
		CollateralToken:      common.HexToAddress(p.CollateralTokenAddress),
		BorrowToken:          common.HexToAddress(p.BorrowTokenAddress),
		Ltv:                  ltvScaled,
		SupplyLiquidity:      supply,
		BaseRate:             poolBaseRate,
		RateAtOptimal:        poolRateAtOptimal,
		OptimalUtilization:   poolOptimalUtilization,
		MaxUtilization:       poolMaxUtilization,
		LiquidationThreshold: poolLiquidationThreshold,
		LiquidationBonus:     poolLiquidationBonus,
	}

	specs := []StepSpec{
		s.approveSpec(p.BorrowTokenAddress, s.factoryAddress, supply),
		{Name: "createLendingPool", Submit: func(ctx context.Context) (string, error) {
			return s.chain.Submit(ctx, entity.ContractCall{
				Contract: s.factoryAddress,
				Function: "createLendingPool",
				Args:     []interface{}{params},
			})
		}},
	}
	return s.execute(ctx, kind, specs)
}

// approveSpec builds the ERC20 approval step granting spender the given
// allowance on token.
func (s *lendingServiceImpl) approveSpec(token, spender string, allowance *big.Int) StepSpec {
	return StepSpec{Name: "approve", Submit: func(ctx context.Context) (string, error) {
		return s.chain.Submit(ctx, entity.ContractCall{
			Contract: token,
			Function: "approve",
			Args:     []interface{}{common.HexToAddress(spender), allowance},
		})
	}}
}

// preflight validates the inputs every mutation shares. It runs before any
// step changes status, so a failure here leaves no visible step activity.
func (s *lendingServiceImpl) preflight(humanAmount string, decimals uint8) (string, *big.Int, error) {
	account, ok := s.accounts.CurrentAccount()
	if !ok {
		return "", nil, entity.ErrWalletNotConnected
	}
	base, err := amount.ToBaseUnits(humanAmount, decimals)
	if err != nil {
		return "", nil, err
	}
	return account, base, nil
}

func (s *lendingServiceImpl) rejectInput(kind entity.MutationKind, err error) (entity.MutationResult, error) {
	metrics.MutationsTotal.WithLabelValues(string(kind), "invalid").Inc()
	s.logger.Warn("mutation rejected before submission",
		zap.String("mutation", string(kind)),
		zap.Error(err),
	)
	return entity.MutationResult{Kind: kind}, err
}

func (s *lendingServiceImpl) readBorrowPosition(ctx context.Context, poolAddress string) (entity.SharePosition, error) {
	assets, err := s.readPoolUint(ctx, poolAddress, "totalBorrowAssets")
	if err != nil {
		return entity.SharePosition{}, err
	}
	shareTotal, err := s.readPoolUint(ctx, poolAddress, "totalBorrowShares")
	if err != nil {
		return entity.SharePosition{}, err
	}
	return entity.SharePosition{TotalAssets: assets, TotalShares: shareTotal}, nil
}

func (s *lendingServiceImpl) readPoolUint(ctx context.Context, poolAddress, function string) (*big.Int, error) {
	outputs, err := s.chain.ReadContract(ctx, entity.ContractCall{
		Contract: poolAddress,
		Function: function,
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

// execute runs the step sequence and settles the result: tx hashes, metrics,
// and cache invalidation on completion.
func (s *lendingServiceImpl) execute(ctx context.Context, kind entity.MutationKind, specs []StepSpec) (entity.MutationResult, error) {
	machine := NewStepMachine(kind, len(specs), s.chain, s.logger)
	runErr := machine.Run(ctx, specs)

	result := entity.MutationResult{Kind: kind, Steps: machine.Snapshot()}
	if len(result.Steps) == 2 {
		result.ApproveTxHash = result.Steps[0].TxHash
	}
	result.TxHash = result.Steps[len(result.Steps)-1].TxHash

	if runErr != nil {
		label := "failed"
		if errors.Is(runErr, entity.ErrUserRejected) {
			label = "rejected"
		}
		metrics.MutationsTotal.WithLabelValues(string(kind), label).Inc()
		return result, runErr
	}

	s.invalidation.Invalidate(kind)
	result.Completed = true
	metrics.MutationsTotal.WithLabelValues(string(kind), "completed").Inc()
	s.logger.Info("mutation completed",
		zap.String("mutation", string(kind)),
		zap.String("txHash", result.TxHash),
	)
	return result, nil
}
