package api

import (
	"net/http"
	"strconv"

	"portfolio_tracker/internal/entity"
	"portfolio_tracker/internal/port"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PortfolioHandler translates HTTP requests into engine calls. No decision
// logic lives here; the engine owns classification, pricing and caching.
type PortfolioHandler struct {
	svc    port.PortfolioService
	logger *zap.Logger
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(svc port.PortfolioService, logger *zap.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		svc:    svc,
		logger: logger.Named("PortfolioHandler"),
	}
}

// GetPortfolio handles GET /api/v1/wallet/:address/portfolio. With a chainId
// query it returns one chain's snapshot; without it the engine fans out over
// every registered chain.
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	address := c.Param("address")
	includeHidden := c.Query("includeHidden") == "true"

	chainParam := c.Query("chainId")
	if chainParam == "" {
		result, err := h.svc.GetMultiChainPortfolio(c.Request.Context(), address, includeHidden)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	chainID, err := strconv.ParseInt(chainParam, 10, 64)
	if err != nil {
		h.respondError(c, entity.NewValidationError("chainId", "must be a decimal integer"))
		return
	}

	snapshot, err := h.svc.GetWalletPortfolio(c.Request.Context(), address, chainID, includeHidden)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// GetNativeBalance handles GET /api/v1/wallet/:address/native.
func (h *PortfolioHandler) GetNativeBalance(c *gin.Context) {
	address := c.Param("address")

	chainID, err := strconv.ParseInt(c.Query("chainId"), 10, 64)
	if err != nil {
		h.respondError(c, entity.NewValidationError("chainId", "must be a decimal integer"))
		return
	}

	balance, err := h.svc.GetNativeBalance(c.Request.Context(), address, chainID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

// InvalidateWallet handles DELETE /api/v1/wallet/:address/cache.
func (h *PortfolioHandler) InvalidateWallet(c *gin.Context) {
	removed := h.svc.InvalidateWallet(c.Param("address"))
	c.JSON(http.StatusOK, gin.H{"entriesRemoved": removed})
}

// GetCacheStats handles GET /api/v1/cache/stats.
func (h *PortfolioHandler) GetCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.CacheStats())
}

// ListChains handles GET /api/v1/chains.
func (h *PortfolioHandler) ListChains(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"chains": h.svc.ListSupportedChains()})
}

// ListPresetTokens handles GET /api/v1/chains/:chainId/tokens.
func (h *PortfolioHandler) ListPresetTokens(c *gin.Context) {
	chainID, err := strconv.ParseInt(c.Param("chainId"), 10, 64)
	if err != nil {
		h.respondError(c, entity.NewValidationError("chainId", "must be a decimal integer"))
		return
	}

	tokens, err := h.svc.ListPresetTokens(chainID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chainId": chainID, "tokens": tokens})
}

func (h *PortfolioHandler) respondError(c *gin.Context, err error) {
	switch {
	case entity.IsValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case entity.IsConfigError(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Unhandled service error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
