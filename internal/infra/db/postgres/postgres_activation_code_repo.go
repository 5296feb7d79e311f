package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"carbusiness-backend/internal/domain"
	"carbusiness-backend/internal/domain/model"
	"carbusiness-backend/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.ActivationCodeRepository = (*activationCodeRepo)(nil)

type activationCodeRepo struct {
	pool *pgxpool.Pool
}

func NewActivationCodeRepo(pool *pgxpool.Pool) repository.ActivationCodeRepository {
	return &activationCodeRepo{pool: pool}
}

const codeColumns = `id, code, user_id, transaction_number, payment_proof_url, status, created_at, expires_at, activated_at`

func (r *activationCodeRepo) Save(ctx context.Context, tx repository.Tx, code *model.ActivationCode) error {
	if code.ID == "" {
		code.ID = uuid.NewString()
	}
	const q = `
INSERT INTO activation_codes (id, code, user_id, transaction_number, payment_proof_url, status, created_at, expires_at, activated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`
	_, err := execSQL(ctx, r.pool, tx, q,
		code.ID, code.Code, code.UserID, code.TransactionNumber, code.PaymentProofURL,
		code.Status, code.CreatedAt, code.ExpiresAt, code.ActivatedAt,
	)
	return err
}

// FindByCode finds a single pending code, matching case-insensitively.
func (r *activationCodeRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.ActivationCode, error) {
	const q = `
SELECT ` + codeColumns + `
  FROM activation_codes
 WHERE upper(code) = upper($1) AND status = 'pending';
`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}
	return scanCode(row)
}

func (r *activationCodeRepo) CountRecentByUser(ctx context.Context, tx repository.Tx, userID string, window time.Duration) (int, error) {
	const q = `
SELECT COUNT(*) FROM activation_codes
 WHERE user_id = $1 AND created_at > $2;
`
	row, err := pickRow(ctx, r.pool, tx, q, userID, time.Now().Add(-window))
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *activationCodeRepo) CountByStatus(ctx context.Context, tx repository.Tx, status model.CodeStatus) (int64, error) {
	const q = `
SELECT COUNT(*) FROM activation_codes WHERE status = $1;
`
	row, err := pickRow(ctx, r.pool, tx, q, status)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *activationCodeRepo) ListByStatus(ctx context.Context, tx repository.Tx, status model.CodeStatus, offset, limit int) ([]*model.ActivationCode, error) {
	const q = `
SELECT ` + codeColumns + `
  FROM activation_codes
 WHERE status = $1
 ORDER BY created_at DESC
OFFSET $2 LIMIT $3;
`
	rows, err := querySQL(ctx, r.pool, tx, q, status, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ActivationCode
	for rows.Next() {
		var ac model.ActivationCode
		if err := rows.Scan(
			&ac.ID, &ac.Code, &ac.UserID, &ac.TransactionNumber, &ac.PaymentProofURL,
			&ac.Status, &ac.CreatedAt, &ac.ExpiresAt, &ac.ActivatedAt,
		); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &ac)
	}
	return out, rows.Err()
}

// UpdateStatus only moves codes out of pending; terminal states stay put.
func (r *activationCodeRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.CodeStatus) error {
	const q = `
UPDATE activation_codes SET status = $2
 WHERE id = $1 AND status = 'pending';
`
	tag, err := execSQL(ctx, r.pool, tx, q, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *activationCodeRepo) ExpireStale(ctx context.Context, tx repository.Tx) (int64, error) {
	const q = `
UPDATE activation_codes SET status = 'expired'
 WHERE status = 'pending' AND expires_at < now();
`
	tag, err := execSQL(ctx, r.pool, tx, q)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Redeem delegates to the activate_premium_with_code procedure. The whole
// sequence runs server-side; no read-then-write round trips from here.
func (r *activationCodeRepo) Redeem(ctx context.Context, code, userID string) (repository.RedemptionOutcome, error) {
	const q = `SELECT success, message FROM activate_premium_with_code($1, $2);`
	var out repository.RedemptionOutcome
	if err := r.pool.QueryRow(ctx, q, code, userID).Scan(&out.Success, &out.Message); err != nil {
		return repository.RedemptionOutcome{}, err
	}
	return out, nil
}

func scanCode(row pgx.Row) (*model.ActivationCode, error) {
	var ac model.ActivationCode
	err := row.Scan(
		&ac.ID, &ac.Code, &ac.UserID, &ac.TransactionNumber, &ac.PaymentProofURL,
		&ac.Status, &ac.CreatedAt, &ac.ExpiresAt, &ac.ActivatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &ac, nil
}
