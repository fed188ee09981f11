package client

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/Senja-Hookathon/senja-gateway/internal/app/port"
	"github.com/Senja-Hookathon/senja-gateway/internal/config"
	"github.com/Senja-Hookathon/senja-gateway/internal/domain/entity"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// Minimal ABI fragments for the protocol surface the gateway touches.
const erc20ABI = `[
	{"constant":false,"inputs":[{"name":"_spender","type":"address"},{"name":"_value","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"payable":false,"stateMutability":"nonpayable","type":"function"},
	{"constant":true,"inputs":[{"name":"_owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"balance","type":"uint256"}],"payable":false,"stateMutability":"view","type":"function"}
]`

const lendingPoolABI = `[
	{"inputs":[{"name":"_user","type":"address"},{"name":"_amount","type":"uint256"}],"name":"supplyLiquidity","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"_shares","type":"uint256"}],"name":"withdrawLiquidity","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"_user","type":"address"},{"name":"_amount","type":"uint256"}],"name":"supplyCollateral","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"_amount","type":"uint256"}],"name":"withdrawCollateral","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"_amount","type":"uint256"},{"name":"_chainId","type":"uint256"},{"name":"_gasLimit","type":"uint256"}],"name":"borrowDebt","outputs":[],"stateMutability":"payable","type":"function"},
	{"inputs":[{"name":"_user","type":"address"},{"name":"_token","type":"address"},{"name":"_shares","type":"uint256"},{"name":"_amountOutMinimum","type":"uint256"},{"name":"_fromPosition","type":"bool"}],"name":"repayWithSelectedToken","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"name":"_tokenIn","type":"address"},{"name":"_tokenOut","type":"address"},{"name":"_amountIn","type":"uint256"},{"name":"_amountOutMinimum","type":"uint256"}],"name":"swapTokenByPosition","outputs":[{"name":"amountOut","type":"uint256"}],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[],"name":"totalSupplyAssets","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"totalSupplyShares","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"totalBorrowAssets","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"totalBorrowShares","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"_user","type":"address"}],"name":"addressPositions","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"_user","type":"address"}],"name":"userBorrowShares","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

const helperABI = `[
	{"inputs":[{"name":"_oft","type":"address"},{"name":"_dstEid","type":"uint32"},{"name":"_to","type":"address"},{"name":"_amount","type":"uint256"}],"name":"getFee","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

const factoryABI = `[
	{"inputs":[{"components":[{"name":"collateralToken","type":"address"},{"name":"borrowToken","type":"address"},{"name":"ltv","type":"uint256"},{"name":"supplyLiquidity","type":"uint256"},{"name":"baseRate","type":"uint256"},{"name":"rateAtOptimal","type":"uint256"},{"name":"optimalUtilization","type":"uint256"},{"name":"maxUtilization","type":"uint256"},{"name":"liquidationThreshold","type":"uint256"},{"name":"liquidationBonus","type":"uint256"}],"name":"_params","type":"tuple"}],"name":"createLendingPool","outputs":[{"name":"","type":"address"}],"stateMutability":"nonpayable","type":"function"}
]`

var (
	parsedABIs     map[string]abi.ABI // function name -> owning ABI
	parseABIsOnce  sync.Once
	parseABIsError error
)

func initParsedABIs() {
	parseABIsOnce.Do(func() {
		parsedABIs = make(map[string]abi.ABI)
		for _, raw := range []string{erc20ABI, lendingPoolABI, helperABI, factoryABI} {
			parsed, err := abi.JSON(strings.NewReader(raw))
			if err != nil {
				parseABIsError = fmt.Errorf("failed to parse protocol ABI: %w", err)
				return
			}
			for name := range parsed.Methods {
				parsedABIs[name] = parsed
			}
		}
	})
}

// EVMClient implements port.ChainClient for EVM-compatible chains, signing
// mutations with the configured operator key.
type EVMClient struct {
	ethClient      *ethclient.Client
	chainID        *big.Int
	operator       common.Address
	privateKey     *ecdsa.PrivateKey
	rpcCallTimeout time.Duration
	logger         *zap.Logger
}

// NewEVMClient connects to the first reachable RPC endpoint of the
// configured network and loads the operator key when one is configured.
// Without a key the client can still serve reads; Submit fails.
func NewEVMClient(cfg *config.Config, connectionTimeout time.Duration, logger *zap.Logger) (*EVMClient, error) {
	initParsedABIs()
	if parseABIsError != nil {
		return nil, parseABIsError
	}

	rpcURLs := append([]string{cfg.Network.PrimaryRPCURL}, cfg.Network.FallbackRPCURLs...)
	var ethClient *ethclient.Client
	var lastErr error

	for _, rpcURL := range rpcURLs {
		ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		c, err := ethclient.DialContext(ctx, rpcURL)
		cancel()
		if err == nil {
			ethClient = c
			break
		}
		lastErr = fmt.Errorf("failed to connect to RPC %s: %w", rpcURL, err)
	}
	if ethClient == nil {
		return nil, fmt.Errorf("all RPC connection attempts failed for network %s: %w", cfg.Network.Name, lastErr)
	}

	c := &EVMClient{
		ethClient:      ethClient,
		chainID:        new(big.Int).SetUint64(cfg.Network.ChainID),
		rpcCallTimeout: time.Duration(cfg.Network.RPCTimeoutMs) * time.Millisecond,
		logger:         logger.Named("EVMClient"),
	}

	if cfg.Account.Address != "" {
		c.operator = common.HexToAddress(cfg.Account.Address)
	}
	if cfg.Account.PrivateKeyFile != "" {
		key, err := crypto.LoadECDSA(cfg.Account.PrivateKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load operator key from %s: %w", cfg.Account.PrivateKeyFile, err)
		}
		c.privateKey = key
		derived := crypto.PubkeyToAddress(key.PublicKey)
		if cfg.Account.Address != "" && derived != c.operator {
			return nil, fmt.Errorf("operator key does not match configured address %s", cfg.Account.Address)
		}
		c.operator = derived
	}

	return c, nil
}

var (
	_ port.ChainClient     = (*EVMClient)(nil)
	_ port.AccountProvider = (*EVMClient)(nil)
)

// ReadContract packs the call against the protocol ABI, executes eth_call
// and returns the unpacked outputs.
func (c *EVMClient) ReadContract(ctx context.Context, call entity.ContractCall) ([]interface{}, error) {
	contractABI, ok := parsedABIs[call.Function]
	if !ok {
		return nil, fmt.Errorf("unknown contract function %q", call.Function)
	}

	data, err := contractABI.Pack(call.Function, call.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s call: %w", call.Function, err)
	}

	to := common.HexToAddress(call.Contract)
	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	raw, err := c.ethClient.CallContract(callCtx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s read on %s failed: %w", call.Function, call.Contract, err)
	}

	outputs, err := contractABI.Unpack(call.Function, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", call.Function, err)
	}
	return outputs, nil
}

// Submit signs and broadcasts the transaction, returning its hash.
func (c *EVMClient) Submit(ctx context.Context, call entity.ContractCall) (string, error) {
	if c.privateKey == nil {
		return "", fmt.Errorf("no operator key configured: %w", entity.ErrWalletNotConnected)
	}

	contractABI, ok := parsedABIs[call.Function]
	if !ok {
		return "", fmt.Errorf("unknown contract function %q", call.Function)
	}
	data, err := contractABI.Pack(call.Function, call.Args...)
	if err != nil {
		return "", fmt.Errorf("failed to pack %s call: %w", call.Function, err)
	}

	to := common.HexToAddress(call.Contract)
	value := call.Value
	if value == nil {
		value = new(big.Int)
	}

	txCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	nonce, err := c.ethClient.PendingNonceAt(txCtx, c.operator)
	if err != nil {
		return "", fmt.Errorf("failed to fetch nonce: %w", err)
	}
	gasPrice, err := c.ethClient.SuggestGasPrice(txCtx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch gas price: %w", err)
	}
	gasLimit, err := c.ethClient.EstimateGas(txCtx, ethereum.CallMsg{
		From:  c.operator,
		To:    &to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		return "", fmt.Errorf("failed to estimate gas for %s: %w", call.Function, err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})
	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s transaction: %w", call.Function, err)
	}

	if err := c.ethClient.SendTransaction(txCtx, signedTx); err != nil {
		return "", fmt.Errorf("failed to send %s transaction: %w", call.Function, err)
	}

	hash := signedTx.Hash().Hex()
	c.logger.Debug("Transaction submitted",
		zap.String("function", call.Function),
		zap.String("contract", call.Contract),
		zap.String("txHash", hash))
	return hash, nil
}

// AwaitConfirmation polls for the transaction receipt until it is found or
// the timeout elapses. Node responses about unfinalized data are surfaced
// wrapped in entity.ErrTransientFinality so the caller can apply its
// retry-once policy.
func (c *EVMClient) AwaitConfirmation(ctx context.Context, txHash string, opts entity.WaitOptions) error {
	hash := common.HexToHash(txHash)

	waitCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	ticker := time.NewTicker(opts.PollingInterval)
	defer ticker.Stop()

	for {
		receipt, err := c.ethClient.TransactionReceipt(waitCtx, hash)
		switch {
		case err == nil && receipt != nil:
			if receipt.Status == types.ReceiptStatusFailed {
				return fmt.Errorf("%w: transaction %s reverted", entity.ErrTransactionFailed, txHash)
			}
			c.logger.Debug("Transaction confirmed",
				zap.String("txHash", txHash),
				zap.Uint64("block", receipt.BlockNumber.Uint64()))
			return nil
		case receiptPending(err):
			// Still pending; keep polling.
		case err != nil && strings.Contains(strings.ToLower(err.Error()), "unfinalized"):
			return fmt.Errorf("%w: %s", entity.ErrTransientFinality, err.Error())
		case err != nil:
			return fmt.Errorf("failed to fetch receipt for %s: %w", txHash, err)
		}

		select {
		case <-waitCtx.Done():
			return fmt.Errorf("%w: confirmation wait for %s timed out after %s",
				entity.ErrTransactionFailed, txHash, opts.Timeout)
		case <-ticker.C:
		}
	}
}

// receiptPending reports whether a receipt lookup error means the transaction
// has not landed yet and polling should continue. Intermediate RPC layers may
// wrap the not-found sentinel, so the check unwraps.
func receiptPending(err error) bool {
	return errors.Is(err, ethereum.NotFound)
}

// CurrentAccount returns the configured operator address and whether one is
// set, satisfying port.AccountProvider.
func (c *EVMClient) CurrentAccount() (string, bool) {
	if c.operator == (common.Address{}) {
		return "", false
	}
	return c.operator.Hex(), true
}

// Close releases the underlying RPC connection.
func (c *EVMClient) Close() {
	c.ethClient.Close()
}
