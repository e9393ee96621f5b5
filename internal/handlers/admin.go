package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"hilo-gateway-backend/internal/chain"
	"hilo-gateway-backend/internal/models"
	"hilo-gateway-backend/internal/services"
)

type AdminHandler struct {
	chain      *chain.Client
	jwtService *services.JWTService
	adminToken string
}

func NewAdminHandler(chainClient *chain.Client, jwtService *services.JWTService, adminToken string) *AdminHandler {
	return &AdminHandler{
		chain:      chainClient,
		jwtService: jwtService,
		adminToken: adminToken,
	}
}

// Login exchanges the configured admin credential for a bearer token.
func (h *AdminHandler) Login(c *gin.Context) {
	if h.adminToken == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin surface is disabled"})
		return
	}

	var req models.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Token), []byte(h.adminToken)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credential"})
		return
	}

	token, err := h.jwtService.IssueAdminToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// SetDelay submits the owner-gated setBtcDelay transaction. The chain still
// rejects it unless the operator key is the contract owner.
func (h *AdminHandler) SetDelay(c *gin.Context) {
	var req models.SetDelayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	txHash, err := h.chain.SetBtcDelay(c.Request.Context(), req.Delay)
	if err != nil {
		respondChainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"tx_hash":      txHash,
		"explorer_url": h.chain.Network().ExplorerTxURL(txHash),
		"btc_delay":    req.Delay,
	})
}

// GetOwner reports the contract owner and whether the operator key is it.
func (h *AdminHandler) GetOwner(c *gin.Context) {
	owner, err := h.chain.Owner(c.Request.Context())
	if err != nil {
		respondChainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"owner":             owner,
		"operator":          h.chain.Operator(),
		"operator_is_owner": owner == h.chain.Operator(),
	})
}
