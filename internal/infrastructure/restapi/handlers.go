package restapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Senja-Hookathon/senja-gateway/internal/app/port"
	"github.com/Senja-Hookathon/senja-gateway/internal/app/service"
	"github.com/Senja-Hookathon/senja-gateway/internal/domain/entity"
	networkdefinition "github.com/Senja-Hookathon/senja-gateway/internal/infrastructure/network/definition"
	"github.com/Senja-Hookathon/senja-gateway/internal/infrastructure/tokenregistry"
)

// Handler exposes the gateway's services over HTTP.
type Handler struct {
	lending  port.LendingService
	fees     port.FeeService
	pools    port.PoolService
	balances port.BalanceService
	prices   port.PriceService
	registry *tokenregistry.Registry
	chains   *networkdefinition.ChainProvider
	logger   *zap.Logger
}

func NewHandler(
	lending port.LendingService,
	fees port.FeeService,
	pools port.PoolService,
	balances port.BalanceService,
	prices port.PriceService,
	registry *tokenregistry.Registry,
	chains *networkdefinition.ChainProvider,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		lending:  lending,
		fees:     fees,
		pools:    pools,
		balances: balances,
		prices:   prices,
		registry: registry,
		chains:   chains,
		logger:   logger.Named("RestAPI"),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type balanceResponse struct {
	Raw       string `json:"raw"`
	Formatted string `json:"formatted"`
}

type feeResponse struct {
	DestinationEndpointID uint32 `json:"destinationEndpointId"`
	FeeWei                string `json:"feeWei"`
	IsLocal               bool   `json:"isLocal"`
}

type rateResponse struct {
	From     string  `json:"from"`
	To       string  `json:"to"`
	Rate     float64 `json:"rate"`
	USDValue bool    `json:"usdValue"`
}

type quoteResponse struct {
	AmountIn  string `json:"amountIn"`
	AmountOut string `json:"amountOut"`
	USDValue  bool   `json:"usdValue"`
}

// statusFor maps the error taxonomy to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrWalletNotConnected):
		return http.StatusConflict
	case errors.Is(err, entity.ErrFeeUnavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, entity.ErrUserRejected):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func (h *Handler) GetPools(c *gin.Context) {
	pools, err := h.pools.ListPools(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pools": pools})
}

func (h *Handler) GetPoolsComplete(c *gin.Context) {
	stats, err := h.pools.ListPoolsComplete(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pools": stats})
}

func (h *Handler) GetHistory(c *gin.Context) {
	user := c.Query("user")
	if user == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "user query parameter is required"})
		return
	}
	events, err := h.pools.TransactionHistory(c.Request.Context(), user)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (h *Handler) GetChains(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"chains": h.chains.All()})
}

func (h *Handler) GetTokens(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tokens": h.registry.All()})
}

func (h *Handler) GetFee(c *gin.Context) {
	dstEid, err := strconv.ParseUint(c.Query("dstEid"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "dstEid query parameter must be a valid endpoint id"})
		return
	}
	symbol := c.Query("token")
	token, ok := h.registry.BySymbol(symbol)
	if !ok {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "unknown token symbol " + symbol})
		return
	}

	quote := h.fees.Resolve(c.Request.Context(), uint32(dstEid), c.Query("amount"), token.Decimals, token)
	if quote.Err != nil {
		c.JSON(statusFor(quote.Err), errorResponse{Error: quote.Err.Error()})
		return
	}
	c.JSON(http.StatusOK, feeResponse{
		DestinationEndpointID: quote.DestinationEndpointID,
		FeeWei:                quote.FeeWei.String(),
		IsLocal:               quote.IsLocal,
	})
}

func (h *Handler) GetTokenBalance(c *gin.Context) {
	token, ok := h.registry.BySymbol(c.Param("symbol"))
	if !ok {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "unknown token symbol " + c.Param("symbol")})
		return
	}
	raw, formatted, err := h.balances.TokenBalance(c.Request.Context(), token)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, balanceResponse{Raw: raw, Formatted: formatted})
}

func (h *Handler) GetSupplyBalance(c *gin.Context) {
	pool := c.Query("pool")
	token, ok := h.registry.BySymbol(c.Query("token"))
	if pool == "" || !ok {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "pool and token query parameters are required"})
		return
	}
	raw, formatted, err := h.balances.SupplyBalance(c.Request.Context(), pool, token)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, balanceResponse{Raw: raw, Formatted: formatted})
}

func (h *Handler) GetBorrowShares(c *gin.Context) {
	pool := c.Query("pool")
	if pool == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "pool query parameter is required"})
		return
	}
	decimals, err := strconv.ParseUint(c.DefaultQuery("decimals", "18"), 10, 8)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "decimals query parameter must be a small integer"})
		return
	}
	raw, formatted, err := h.balances.BorrowShares(c.Request.Context(), pool, uint8(decimals))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, balanceResponse{Raw: raw, Formatted: formatted})
}

func (h *Handler) GetExchangeRate(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")
	rate, known, err := h.prices.ExchangeRate(c.Request.Context(), from, to)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !known {
		c.JSON(http.StatusNotFound, errorResponse{Error: "no trading pair for " + from + "-" + to})
		return
	}
	c.JSON(http.StatusOK, rateResponse{
		From:     from,
		To:       to,
		Rate:     rate,
		USDValue: service.IsStablecoin(to),
	})
}

func (h *Handler) GetSwapQuote(c *gin.Context) {
	from, to := c.Query("from"), c.Query("to")
	out, err := h.prices.SwapQuote(c.Request.Context(), c.Query("amount"), from, to)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, quoteResponse{
		AmountIn:  c.Query("amount"),
		AmountOut: out,
		USDValue:  service.IsStablecoin(to),
	})
}

func (h *Handler) PostSupplyLiquidity(c *gin.Context) {
	var p entity.SupplyLiquidityParams
	if !h.bind(c, &p) {
		return
	}
	h.respondMutation(c, h.lending.SupplyLiquidity(c.Request.Context(), p))
}

func (h *Handler) PostWithdrawLiquidity(c *gin.Context) {
	var p entity.WithdrawLiquidityParams
	if !h.bind(c, &p) {
		return
	}
	h.respondMutation(c, h.lending.WithdrawLiquidity(c.Request.Context(), p))
}

func (h *Handler) PostSupplyCollateral(c *gin.Context) {
	var p entity.SupplyCollateralParams
	if !h.bind(c, &p) {
		return
	}
	h.respondMutation(c, h.lending.SupplyCollateral(c.Request.Context(), p))
}

func (h *Handler) PostWithdrawCollateral(c *gin.Context) {
	var p entity.WithdrawCollateralParams
	if !h.bind(c, &p) {
		return
	}
	h.respondMutation(c, h.lending.WithdrawCollateral(c.Request.Context(), p))
}

func (h *Handler) PostBorrow(c *gin.Context) {
	var p entity.BorrowParams
	if !h.bind(c, &p) {
		return
	}
	h.respondMutation(c, h.lending.Borrow(c.Request.Context(), p))
}

func (h *Handler) PostRepay(c *gin.Context) {
	var p entity.RepayParams
	if !h.bind(c, &p) {
		return
	}
	h.respondMutation(c, h.lending.Repay(c.Request.Context(), p))
}

func (h *Handler) PostSwap(c *gin.Context) {
	var p entity.SwapParams
	if !h.bind(c, &p) {
		return
	}
	h.respondMutation(c, h.lending.Swap(c.Request.Context(), p))
}

func (h *Handler) PostCreatePool(c *gin.Context) {
	var p entity.CreatePoolParams
	if !h.bind(c, &p) {
		return
	}
	h.respondMutation(c, h.lending.CreatePool(c.Request.Context(), p))
}

func (h *Handler) bind(c *gin.Context, target interface{}) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

// respondMutation reports the result of a mutation run. The step states go
// back to the caller even on failure so the UI can render exactly where the
// flow stopped.
func (h *Handler) respondMutation(c *gin.Context, result entity.MutationResult, err error) {
	if err != nil {
		h.logger.Warn("mutation request failed",
			zap.String("mutation", string(result.Kind)),
			zap.Error(err),
		)
		c.JSON(statusFor(err), gin.H{"error": err.Error(), "result": result})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (h *Handler) fail(c *gin.Context, err error) {
	h.logger.Warn("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(statusFor(err), errorResponse{Error: err.Error()})
}
