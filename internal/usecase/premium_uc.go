package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"carbusiness-backend/internal/domain/ports/repository"
)

// Compile-time check
var _ PremiumUseCase = (*premiumUC)(nil)

// PremiumStatus mirrors the shape the client expects from the subscription
// check: a boolean plus the raw expiry.
type PremiumStatus struct {
	Subscribed      bool       `json:"subscribed"`
	SubscriptionEnd *time.Time `json:"subscription_end"`
}

// StatusCache is an optional read-through cache for premium lookups. The
// Redis implementation lives in infra; a nil cache disables caching.
type StatusCache interface {
	Get(ctx context.Context, userID string) (*PremiumStatus, bool)
	Set(ctx context.Context, userID string, st PremiumStatus)
}

type PremiumUseCase interface {
	// Status answers "is this user currently premium" with a read-time
	// expiry check. The stored flag is never trusted on its own.
	Status(ctx context.Context, userID string) (PremiumStatus, error)
	// CountPremium counts profiles whose premium has not lapsed.
	CountPremium(ctx context.Context) (int, error)
}

type premiumUC struct {
	profiles repository.ProfileRepository
	cache    StatusCache
	log      *zerolog.Logger
	now      func() time.Time
}

func NewPremiumUseCase(profiles repository.ProfileRepository, cache StatusCache, logger *zerolog.Logger) *premiumUC {
	l := logger.With().Str("component", "PremiumUC").Logger()
	return &premiumUC{profiles: profiles, cache: cache, log: &l, now: time.Now}
}

func (uc *premiumUC) Status(ctx context.Context, userID string) (PremiumStatus, error) {
	if uc.cache != nil {
		if st, ok := uc.cache.Get(ctx, userID); ok {
			return *st, nil
		}
	}

	p, err := uc.profiles.FindByID(ctx, nil, userID)
	if err != nil {
		return PremiumStatus{}, err
	}

	st := PremiumStatus{
		Subscribed:      p.PremiumActive(uc.now()),
		SubscriptionEnd: p.PremiumExpiresAt,
	}
	if uc.cache != nil {
		uc.cache.Set(ctx, userID, st)
	}
	return st, nil
}

func (uc *premiumUC) CountPremium(ctx context.Context) (int, error) {
	return uc.profiles.CountPremium(ctx, nil)
}
