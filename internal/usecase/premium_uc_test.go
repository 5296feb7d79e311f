//go:build !integration

package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"carbusiness-backend/internal/domain"
	"carbusiness-backend/internal/domain/model"
)

func TestPremiumUseCase_Status(t *testing.T) {
	ctx := context.Background()

	t.Run("premium with future expiry is subscribed", func(t *testing.T) {
		profiles := newMemProfileRepo()
		exp := time.Now().Add(10 * 24 * time.Hour)
		profiles.Save(ctx, nil, &model.Profile{ID: "u1", Email: "a@b.com", IsPremium: true, PremiumExpiresAt: &exp})

		uc := NewPremiumUseCase(profiles, nil, newTestLogger())
		st, err := uc.Status(ctx, "u1")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if !st.Subscribed {
			t.Error("expected subscribed=true")
		}
		if st.SubscriptionEnd == nil || !st.SubscriptionEnd.Equal(exp) {
			t.Error("expected the raw expiry to be returned")
		}
	})

	t.Run("stale premium flag reads as not subscribed", func(t *testing.T) {
		profiles := newMemProfileRepo()
		exp := time.Now().Add(-time.Hour)
		profiles.Save(ctx, nil, &model.Profile{ID: "u1", Email: "a@b.com", IsPremium: true, PremiumExpiresAt: &exp})

		uc := NewPremiumUseCase(profiles, nil, newTestLogger())
		st, err := uc.Status(ctx, "u1")
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if st.Subscribed {
			t.Error("the read-time check must override the stored flag")
		}
	})

	t.Run("unknown user propagates not found", func(t *testing.T) {
		uc := NewPremiumUseCase(newMemProfileRepo(), nil, newTestLogger())
		_, err := uc.Status(ctx, "ghost")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got: %v", err)
		}
	})
}
