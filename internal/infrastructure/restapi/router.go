package restapi

import (
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter builds the HTTP surface: the v1 API, health, Prometheus metrics
// and pprof.
func NewRouter(h *Handler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(requestLogger(logger.Named("HTTP")), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/chains", h.GetChains)
		v1.GET("/tokens", h.GetTokens)
		v1.GET("/pools", h.GetPools)
		v1.GET("/pools/complete", h.GetPoolsComplete)
		v1.GET("/history", h.GetHistory)
		v1.GET("/fee", h.GetFee)

		v1.GET("/balances/token/:symbol", h.GetTokenBalance)
		v1.GET("/balances/supply", h.GetSupplyBalance)
		v1.GET("/balances/borrow-shares", h.GetBorrowShares)

		v1.GET("/prices/rate", h.GetExchangeRate)
		v1.GET("/prices/quote", h.GetSwapQuote)

		mutations := v1.Group("/mutations")
		{
			mutations.POST("/supply-liquidity", h.PostSupplyLiquidity)
			mutations.POST("/withdraw-liquidity", h.PostWithdrawLiquidity)
			mutations.POST("/supply-collateral", h.PostSupplyCollateral)
			mutations.POST("/withdraw-collateral", h.PostWithdrawCollateral)
			mutations.POST("/borrow", h.PostBorrow)
			mutations.POST("/repay", h.PostRepay)
			mutations.POST("/swap", h.PostSwap)
			mutations.POST("/create-pool", h.PostCreatePool)
		}
	}

	debug := router.Group("/debug/pprof")
	{
		debug.GET("/", gin.WrapF(pprof.Index))
		debug.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		debug.GET("/profile", gin.WrapF(pprof.Profile))
		debug.GET("/symbol", gin.WrapF(pprof.Symbol))
		debug.GET("/trace", gin.WrapF(pprof.Trace))
		debug.GET("/heap", gin.WrapH(pprof.Handler("heap")))
		debug.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
	}

	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
