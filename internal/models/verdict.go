package models

// RejectReason names the first precondition a proposed bet failed. The
// values mirror the game contract's revert order.
type RejectReason string

const (
	ReasonPaused                RejectReason = "paused"
	ReasonInvalidRange          RejectReason = "invalid-range"
	ReasonMalformedAmount       RejectReason = "malformed-amount"
	ReasonNonPositiveAmount     RejectReason = "non-positive-amount"
	ReasonExceedsMaxBet         RejectReason = "exceeds-max-bet"
	ReasonExceedsMaxProfit      RejectReason = "exceeds-max-profit"
	ReasonInsufficientBalance   RejectReason = "insufficient-balance"
	ReasonInsufficientAllowance RejectReason = "insufficient-allowance"
)

// Verdict is the outcome of a client-side precheck. It is advisory: a
// rejected verdict explains why the contract would revert, it never blocks
// a transaction the caller insists on sending.
type Verdict struct {
	Accepted bool         `json:"accepted"`
	Reason   RejectReason `json:"reason,omitempty"`
	Detail   string       `json:"detail,omitempty"`
}

func Accept() Verdict {
	return Verdict{Accepted: true}
}

func Reject(reason RejectReason, detail string) Verdict {
	return Verdict{Accepted: false, Reason: reason, Detail: detail}
}
