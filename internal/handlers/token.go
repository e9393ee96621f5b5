package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hilo-gateway-backend/internal/chain"
	"hilo-gateway-backend/internal/models"
)

type TokenHandler struct {
	chain *chain.Client
}

func NewTokenHandler(chainClient *chain.Client) *TokenHandler {
	return &TokenHandler{chain: chainClient}
}

// GetState returns one owner's balance and allowance toward the game
// contract. Defaults to the operator address when ?owner is absent.
func (h *TokenHandler) GetState(c *gin.Context) {
	owner := c.Query("owner")
	if owner == "" {
		owner = h.chain.Operator()
	}
	if owner == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "owner query parameter required in read-only mode"})
		return
	}

	state, err := h.chain.TokenState(c.Request.Context(), owner)
	if err != nil {
		respondChainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"owner":           owner,
		"decimals":        state.Decimals,
		"balance":         state.Balance.String(),
		"balance_human":   models.FormatUnits(state.Balance, state.Decimals),
		"allowance":       state.Allowance.String(),
		"allowance_human": models.FormatUnits(state.Allowance, state.Decimals),
	})
}

// GetLatestHeader returns the newest Bitcoin header in the cache.
func (h *TokenHandler) GetLatestHeader(c *gin.Context) {
	header, err := h.chain.LatestHeader(c.Request.Context())
	if err != nil {
		respondChainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"header": header})
}

// GetHeaderAt returns the cached header at one height, 404 when absent.
func (h *TokenHandler) GetHeaderAt(c *gin.Context) {
	height, err := strconv.ParseInt(c.Param("height"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid height"})
		return
	}

	header, err := h.chain.HeaderAt(c.Request.Context(), height)
	if err != nil {
		respondChainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"header": header})
}
