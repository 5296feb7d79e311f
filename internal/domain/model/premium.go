package model

import "time"

// Premium plan terms. A single plan for now: 9.999,00 Kz per month,
// activated by code, renewable by repeating the same flow.
const (
	PremiumPriceCentavos = 999_900
	PremiumCurrency      = "Kz"

	// PremiumPeriod is the billing period granted per redeemed code.
	PremiumPeriod = 30 * 24 * time.Hour

	// CodeTTL is how long a freshly minted code stays redeemable. The
	// operator confirms payments within ~90 minutes, so a day is generous.
	CodeTTL = 24 * time.Hour

	// Mint rate limit: at most MintRateLimit codes per user within
	// MintRateWindow, counted against persisted rows.
	MintRateLimit  = 3
	MintRateWindow = 60 * time.Second
)
