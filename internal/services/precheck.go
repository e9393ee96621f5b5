package services

import (
	"fmt"
	"math/big"

	"hilo-gateway-backend/internal/models"
)

// EvaluatePlaceBet applies the game contract's placeBet validation rules to
// a proposed bet against a fetched config and token snapshot. The checks run
// in the contract's revert order and short-circuit at the first failure, so
// the reported reason matches what the chain would say.
//
// token may be nil when the caller's funding is unknown; the balance and
// allowance checks are then skipped. The verdict is advisory only: it never
// submits anything and never prevents a transaction the caller insists on.
func EvaluatePlaceBet(cfg *models.ConfigSnapshot, token *models.TokenState, low, high int, amount string) models.Verdict {
	// 1) paused wins over everything else
	if cfg.Paused {
		return models.Reject(models.ReasonPaused, "betting is paused")
	}

	// 2) range bounds: inclusive 0..9999, low <= high
	if low < 0 || high > models.RangeMax || low > high {
		return models.Reject(models.ReasonInvalidRange,
			fmt.Sprintf("range [%d, %d] must satisfy 0 <= low <= high <= %d", low, high, models.RangeMax))
	}

	// 3) amount parses to a positive integer in base units
	amt, err := models.ParseUnits(amount, cfg.TokenDecimals)
	if err != nil {
		return models.Reject(models.ReasonMalformedAmount, err.Error())
	}
	if amt.Sign() <= 0 {
		return models.Reject(models.ReasonNonPositiveAmount, "amount must be > 0")
	}

	// 4) bet-size cap
	if cfg.MaxBet != nil && amt.Cmp(cfg.MaxBet) > 0 {
		return models.Reject(models.ReasonExceedsMaxBet,
			fmt.Sprintf("amount exceeds maxBet %s", models.FormatUnits(cfg.MaxBet, cfg.TokenDecimals)))
	}

	// 5) profit cap
	profit := PotentialProfit(amt, cfg.HouseEdgeBps, low, high)
	if cfg.MaxProfit != nil && profit.Cmp(cfg.MaxProfit) > 0 {
		return models.Reject(models.ReasonExceedsMaxProfit,
			fmt.Sprintf("potential profit exceeds maxProfit %s", models.FormatUnits(cfg.MaxProfit, cfg.TokenDecimals)))
	}

	// 6) + 7) funding, balance strictly before allowance
	if token != nil {
		if token.Balance != nil && token.Balance.Cmp(amt) < 0 {
			return models.Reject(models.ReasonInsufficientBalance,
				fmt.Sprintf("balance %s < amount", models.FormatUnits(token.Balance, cfg.TokenDecimals)))
		}
		if token.Allowance != nil && token.Allowance.Cmp(amt) < 0 {
			return models.Reject(models.ReasonInsufficientAllowance,
				fmt.Sprintf("allowance %s < amount", models.FormatUnits(token.Allowance, cfg.TokenDecimals)))
		}
	}

	return models.Accept()
}

// PotentialPayout mirrors the contract's fixed-point payout rule exactly:
// floor(amount * (10000 - edgeBps) / rangeSize). Integer division, never
// rounded, so client and contract can never disagree.
func PotentialPayout(amount *big.Int, edgeBps uint64, low, high int) *big.Int {
	size := int64(high) - int64(low) + 1
	if size <= 0 {
		// A reversed range covers no outcomes; zero payout, never a
		// division by zero.
		return new(big.Int)
	}
	rangeSize := big.NewInt(size)
	if edgeBps > models.BasisPointsScale {
		edgeBps = models.BasisPointsScale
	}
	keep := new(big.Int).SetUint64(models.BasisPointsScale - edgeBps)

	payout := new(big.Int).Mul(amount, keep)
	return payout.Div(payout, rangeSize)
}

// PotentialProfit is max(0, payout - amount).
func PotentialProfit(amount *big.Int, edgeBps uint64, low, high int) *big.Int {
	profit := PotentialPayout(amount, edgeBps, low, high)
	profit.Sub(profit, amount)
	if profit.Sign() < 0 {
		profit.SetInt64(0)
	}
	return profit
}
