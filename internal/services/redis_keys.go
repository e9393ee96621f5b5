package services

import "time"

const (
	KeySeed        = "seed:bet:%d"
	KeyPendingBets = "bets:pending"
	KeyRateLimit   = "ratelimit:%s:%s"

	// Seeds outlive any reasonable settlement window by far; they are a
	// convenience copy, the player may keep their own.
	TTLSeed = 90 * 24 * time.Hour

	// One settle attempt per bet per window, so a reverting settle is not
	// retried on every poll tick.
	SettleAttemptWindow = 2 * time.Minute
)
