package model

import (
	"regexp"
	"time"
)

// CodeStatus is the lifecycle state of an activation code. Transitions are
// monotonic: pending -> activated, or pending -> rejected/expired. Rows are
// never deleted; they stay for audit.
type CodeStatus string

const (
	CodeStatusPending   CodeStatus = "pending"
	CodeStatusActivated CodeStatus = "activated"
	CodeStatusRejected  CodeStatus = "rejected"
	CodeStatusExpired   CodeStatus = "expired"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// ActivationCode is a short-lived, single-use secret that unlocks premium
// status when redeemed by its owner.
type ActivationCode struct {
	ID                string     `json:"id"`
	Code              string     `json:"code"` // 6 chars, uppercase alphanumeric
	UserID            *string    `json:"user_id"`
	TransactionNumber *string    `json:"transaction_number"`
	PaymentProofURL   *string    `json:"payment_proof_url"`
	Status            CodeStatus `json:"status"`
	CreatedAt         time.Time  `json:"created_at"`
	ExpiresAt         time.Time  `json:"expires_at"`
	ActivatedAt       *time.Time `json:"activated_at"`
}

func (c *ActivationCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Redeemable reports whether the code can still be exchanged for premium.
func (c *ActivationCode) Redeemable(now time.Time) bool {
	return c.Status == CodeStatusPending && !c.Expired(now)
}

// ValidCodeFormat checks the canonical (uppercased) code shape.
func ValidCodeFormat(code string) bool {
	return codePattern.MatchString(code)
}
