package repository

import (
	"context"
	"time"

	"carbusiness-backend/internal/domain/model"
)

// RedemptionOutcome is the soft result of the database-side redemption
// procedure. Success=false is a normal answer, not an error: the caller
// renders Message inline instead of failing the request.
type RedemptionOutcome struct {
	Success bool
	Message string
}

// ActivationCodeRepository is the port for managing activation codes.
type ActivationCodeRepository interface {
	// Save inserts a new activation code row.
	Save(ctx context.Context, tx Tx, code *model.ActivationCode) error
	// FindByCode finds a pending code by its canonical (uppercased) value.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.ActivationCode, error)
	// CountRecentByUser counts rows created by the user within the
	// trailing window. This backs the mint rate limit.
	CountRecentByUser(ctx context.Context, tx Tx, userID string, window time.Duration) (int, error)
	// CountByStatus counts codes in a given status.
	CountByStatus(ctx context.Context, tx Tx, status model.CodeStatus) (int64, error)
	// ListByStatus returns codes in a given status, newest first.
	ListByStatus(ctx context.Context, tx Tx, status model.CodeStatus, offset, limit int) ([]*model.ActivationCode, error)
	// UpdateStatus moves a pending code to a terminal status. Returns
	// domain.ErrNotFound when the row is absent or no longer pending.
	UpdateStatus(ctx context.Context, tx Tx, id string, status model.CodeStatus) error
	// ExpireStale marks pending codes past their expiry as expired and
	// returns how many rows changed.
	ExpireStale(ctx context.Context, tx Tx) (int64, error)
	// Redeem invokes the server-side activation procedure for the given
	// user. The whole find-validate-activate sequence runs as a single
	// database transaction so that exactly one concurrent attempt wins.
	Redeem(ctx context.Context, code, userID string) (RedemptionOutcome, error)
}
