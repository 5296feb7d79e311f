package model

import "time"

// Profile carries the marketplace user fields this service owns. The rest of
// the profile (listings, avatar, etc.) lives with the main application and is
// not our concern here.
type Profile struct {
	ID               string
	Email            string
	FullName         string
	Phone            string
	IsPremium        bool
	PremiumExpiresAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PremiumActive is the read-time source of truth for "currently premium".
// The stored flag alone is not enough: a profile whose expiry has passed is
// not premium even before the sweep or any write catches up.
func (p *Profile) PremiumActive(now time.Time) bool {
	return p.IsPremium && p.PremiumExpiresAt != nil && p.PremiumExpiresAt.After(now)
}
