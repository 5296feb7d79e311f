package repository

import (
	"context"

	"carbusiness-backend/internal/domain/model"
)

// ProfileRepository is the port for user profiles. The premium flag itself
// is only ever written by the database-side redemption procedure; Save
// exists for provisioning and for the seed tool.
type ProfileRepository interface {
	FindByID(ctx context.Context, tx Tx, id string) (*model.Profile, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.Profile, error)
	Save(ctx context.Context, tx Tx, p *model.Profile) error
	CountPremium(ctx context.Context, tx Tx) (int, error)
}
