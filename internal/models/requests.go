package models

import "fmt"

// PrecheckRequest is a proposed bet to evaluate against current contract
// state without sending anything.
type PrecheckRequest struct {
	Low    int    `json:"low"`
	High   int    `json:"high"`
	Amount string `json:"amount" binding:"required"`
	Owner  string `json:"owner,omitempty"`
}

// PlaceBetRequest asks the gateway to submit a real placeBet transaction
// with the operator key. Force skips the advisory precheck, matching the
// rule that a precheck may inform but never block.
type PlaceBetRequest struct {
	Low            int    `json:"low"`
	High           int    `json:"high"`
	Amount         string `json:"amount" binding:"required"`
	PlayerSeed     string `json:"player_seed,omitempty"`
	SuggestedDelay uint64 `json:"suggested_delay,omitempty"`
	Force          bool   `json:"force,omitempty"`
}

type SettleRequest struct {
	PlayerSeed string `json:"player_seed,omitempty"`
}

type SetDelayRequest struct {
	Delay uint64 `json:"delay"`
}

type AdminLoginRequest struct {
	Token string `json:"token" binding:"required"`
}

// Validate rejects malformed ranges before any network call is made.
// Amount parsing needs the token's decimal count, so it happens later
// against a fetched config snapshot.
func (r *PlaceBetRequest) Validate() error {
	return validateRange(r.Low, r.High)
}

func (r *PrecheckRequest) Validate() error {
	return validateRange(r.Low, r.High)
}

func validateRange(low, high int) error {
	if low < 0 || high > RangeMax || low > high {
		return fmt.Errorf("range [%d, %d] is out of bounds (0..%d, low <= high)", low, high, RangeMax)
	}
	return nil
}
