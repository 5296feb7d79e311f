package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"carbusiness-backend/internal/domain"
	"carbusiness-backend/internal/domain/model"
	"carbusiness-backend/internal/domain/ports/repository"
)

var _ repository.ProfileRepository = (*profileRepo)(nil)

type profileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) repository.ProfileRepository {
	return &profileRepo{pool: pool}
}

const profileColumns = `id, email, full_name, phone, is_premium, premium_expires_at, created_at, updated_at`

func (r *profileRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Profile, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1;`, id)
	if err != nil {
		return nil, err
	}
	return scanProfile(row)
}

func (r *profileRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.Profile, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+profileColumns+` FROM profiles WHERE email = $1;`, email)
	if err != nil {
		return nil, err
	}
	return scanProfile(row)
}

// Save upserts the contact fields. Premium columns are deliberately absent
// from the update list: only the redemption procedure writes those.
func (r *profileRepo) Save(ctx context.Context, tx repository.Tx, p *model.Profile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	const q = `
INSERT INTO profiles (id, email, full_name, phone, is_premium, premium_expires_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, now(), now())
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email,
  full_name = EXCLUDED.full_name,
  phone = EXCLUDED.phone,
  updated_at = now();
`
	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.Email, p.FullName, p.Phone, p.IsPremium, p.PremiumExpiresAt)
	return err
}

func (r *profileRepo) CountPremium(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx,
		`SELECT COUNT(*) FROM profiles WHERE is_premium AND premium_expires_at > now();`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func scanProfile(row pgx.Row) (*model.Profile, error) {
	var p model.Profile
	err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.Phone, &p.IsPremium, &p.PremiumExpiresAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &p, nil
}
