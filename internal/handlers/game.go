package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"hilo-gateway-backend/internal/chain"
	"hilo-gateway-backend/internal/models"
	"hilo-gateway-backend/internal/services"
)

type GameHandler struct {
	chain        *chain.Client
	redisService *services.RedisService
}

func NewGameHandler(chainClient *chain.Client, redisService *services.RedisService) *GameHandler {
	return &GameHandler{
		chain:        chainClient,
		redisService: redisService,
	}
}

// GetConfig returns the contract's parameter snapshot, fetched fresh.
func (h *GameHandler) GetConfig(c *gin.Context) {
	cfg, err := h.chain.GameConfig(c.Request.Context())
	if err != nil {
		respondChainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"network": h.chain.Network().Key,
		"config": gin.H{
			"paused":         cfg.Paused,
			"house_edge_bps": cfg.HouseEdgeBps,
			"max_bet":        cfg.MaxBet.String(),
			"max_bet_human":  models.FormatUnits(cfg.MaxBet, cfg.TokenDecimals),
			"max_profit":     cfg.MaxProfit.String(),
			"max_profit_human": models.FormatUnits(cfg.MaxProfit, cfg.TokenDecimals),
			"btc_delay":      cfg.BtcDelay,
			"token_decimals": cfg.TokenDecimals,
		},
	})
}

// GetBet returns one bet record; an unissued id is a 404, never a zero record.
func (h *GameHandler) GetBet(c *gin.Context) {
	id, ok := betIDParam(c)
	if !ok {
		return
	}

	bet, err := h.chain.Bet(c.Request.Context(), id)
	if err != nil {
		respondChainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bet": bet, "result": bet.Result()})
}

// GetRecentBets returns up to ?limit recent bets, optionally filtered to
// one ?player, newest first.
func (h *GameHandler) GetRecentBets(c *gin.Context) {
	limit := 30
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	bets, err := h.chain.RecentBets(c.Request.Context(), limit, c.Query("player"))
	if err != nil {
		respondChainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bets": bets, "count": len(bets)})
}

// Precheck evaluates a proposed bet against fresh contract state and
// returns the verdict with the potential payout. Always 200: a rejection is
// information, not a failure.
func (h *GameHandler) Precheck(c *gin.Context) {
	var req models.PrecheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	owner := req.Owner
	if owner == "" {
		owner = h.chain.Operator()
	}

	cfg, token, err := h.fetchSnapshots(c, owner)
	if err != nil {
		respondChainError(c, err)
		return
	}

	verdict := services.EvaluatePlaceBet(cfg, token, req.Low, req.High, req.Amount)

	resp := gin.H{"verdict": verdict}
	// Payout figures only make sense for a well-formed range.
	if req.Validate() == nil {
		if amt, perr := models.ParseUnits(req.Amount, cfg.TokenDecimals); perr == nil {
			payout := services.PotentialPayout(amt, cfg.HouseEdgeBps, req.Low, req.High)
			profit := services.PotentialProfit(amt, cfg.HouseEdgeBps, req.Low, req.High)
			resp["potential_payout"] = models.FormatUnits(payout, cfg.TokenDecimals)
			resp["potential_profit"] = models.FormatUnits(profit, cfg.TokenDecimals)
		}
	}

	c.JSON(http.StatusOK, resp)
}

// PlaceBet submits a real bet with the operator key: advisory precheck,
// allowance top-up, transaction, then seed vaulting for auto-settle.
func (h *GameHandler) PlaceBet(c *gin.Context) {
	var req models.PlaceBetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if h.chain.ReadOnly() {
		c.JSON(http.StatusForbidden, gin.H{"error": chain.ErrReadOnly.Error()})
		return
	}

	seed := req.PlayerSeed
	if seed == "" {
		generated, err := models.GeneratePlayerSeed()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate seed"})
			return
		}
		seed = generated
	}

	ctx := c.Request.Context()

	cfg, token, err := h.fetchSnapshots(c, h.chain.Operator())
	if err != nil {
		respondChainError(c, err)
		return
	}

	verdict := services.EvaluatePlaceBet(cfg, token, req.Low, req.High, req.Amount)
	if !verdict.Accepted && !req.Force {
		// Advisory stop before gas is spent; force=true sends anyway.
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Precheck rejected the bet",
			"verdict": verdict,
		})
		return
	}

	amount, err := models.ParseUnits(req.Amount, cfg.TokenDecimals)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.chain.EnsureAllowance(ctx, amount); err != nil {
		respondChainError(c, err)
		return
	}

	betID, txHash, err := h.chain.PlaceBet(ctx, uint16(req.Low), uint16(req.High), seed, req.SuggestedDelay, amount)
	if err != nil {
		respondChainError(c, err)
		return
	}

	entry := &services.SeedEntry{
		BetID:    betID,
		Seed:     seed,
		Player:   h.chain.Operator(),
		Network:  h.chain.Network().Key,
		TxHash:   txHash,
		Low:      req.Low,
		High:     req.High,
		AmountBU: amount.String(),
	}
	if err := h.redisService.SaveSeed(entry); err != nil {
		// The bet is on-chain regardless; losing the vault copy only costs
		// auto-settle convenience. Report it but do not fail the request.
		log.Printf("failed to vault seed for bet %d: %v", betID, err)
	}
	if err := h.redisService.AddPendingBet(betID); err != nil {
		log.Printf("failed to watch bet %d: %v", betID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"bet_id":       betID,
		"tx_hash":      txHash,
		"explorer_url": h.chain.Network().ExplorerTxURL(txHash),
		"player_seed":  seed,
		"verdict":      verdict,
	})
}

// SettleBet settles one bet with the supplied seed, falling back to the
// vaulted one.
func (h *GameHandler) SettleBet(c *gin.Context) {
	id, ok := betIDParam(c)
	if !ok {
		return
	}

	// An empty body is fine: settle falls back to the vaulted seed.
	var req models.SettleRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	seed := req.PlayerSeed
	if seed == "" {
		vaulted, err := h.redisService.Seed(id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Seed lookup failed"})
			return
		}
		seed = vaulted
	}
	if seed == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No player seed supplied and none vaulted; settlement needs the seed used at placement",
		})
		return
	}

	txHash, err := h.chain.Settle(c.Request.Context(), id, seed)
	if err != nil {
		respondChainError(c, err)
		return
	}

	if err := h.redisService.RemovePendingBet(id); err != nil {
		log.Printf("failed to unwatch bet %d: %v", id, err)
	}

	bet, err := h.chain.Bet(c.Request.Context(), id)
	resp := gin.H{
		"success":      true,
		"tx_hash":      txHash,
		"explorer_url": h.chain.Network().ExplorerTxURL(txHash),
	}
	if err == nil {
		resp["bet"] = bet
		resp["result"] = bet.Result()
	}
	c.JSON(http.StatusOK, resp)
}

// GetReadiness reports whether a bet can settle yet: the bet record, the
// cache's latest height and the presence probe for the bet's target height,
// fetched jointly.
func (h *GameHandler) GetReadiness(c *gin.Context) {
	id, ok := betIDParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	bet, err := h.chain.Bet(ctx, id)
	if err != nil {
		respondChainError(c, err)
		return
	}

	if bet.Settled {
		c.JSON(http.StatusOK, gin.H{
			"status": "settled",
			"bet":    bet,
			"result": bet.Result(),
		})
		return
	}

	var (
		latest    *models.Header
		available bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var gerr error
		latest, gerr = h.chain.LatestHeader(gctx)
		return gerr
	})
	g.Go(func() error {
		available = h.chain.HeaderAvailable(gctx, int64(bet.BtcHeight))
		return nil
	})
	if err := g.Wait(); err != nil {
		respondChainError(c, err)
		return
	}

	status := "pending"
	if available {
		status = "ready"
	}

	hasSeed := false
	if seed, err := h.redisService.Seed(id); err == nil && seed != "" {
		hasSeed = true
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         status,
		"target_height":  bet.BtcHeight,
		"latest_height":  latest.Height,
		"has_vaulted_seed": hasSeed,
	})
}

func (h *GameHandler) fetchSnapshots(c *gin.Context, owner string) (*models.ConfigSnapshot, *models.TokenState, error) {
	ctx := c.Request.Context()

	var (
		cfg   *models.ConfigSnapshot
		token *models.TokenState
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cfg, err = h.chain.GameConfig(gctx)
		return err
	})
	if owner != "" {
		g.Go(func() error {
			var err error
			token, err = h.chain.TokenState(gctx, owner)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return cfg, token, nil
}

func betIDParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bet id"})
		return 0, false
	}
	return id, true
}

// respondChainError maps the chain error taxonomy to HTTP statuses: absence
// is a 404, bad input a 400, read-only mode a 403, everything else an
// upstream failure the caller should retry.
func respondChainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, chain.ErrBetNotFound), errors.Is(err, chain.ErrHeaderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, chain.ErrInvalidAddress):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, chain.ErrReadOnly):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "Chain call failed",
			"details": err.Error(),
		})
	}
}
