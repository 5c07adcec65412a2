// Package subscription holds the marketplace subscription tiers and the
// per-tier limits enforced on listings.
package subscription

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

type Tier string

const (
	TierFree     Tier = "free"
	TierPremium  Tier = "premium"
	TierBusiness Tier = "business"
)

// Unlimited marks a limit that is not enforced.
const Unlimited = -1

// Limits describes what an account on a tier may do.
type Limits struct {
	Tier                Tier `json:"tier"`
	MaxListings         int  `json:"max_listings"`
	MaxImagesPerListing int  `json:"max_images_per_listing"`
	WeeklyReset         bool `json:"weekly_reset"`
}

var limitsByTier = map[Tier]Limits{
	TierFree: {
		Tier:                TierFree,
		MaxListings:         5,
		MaxImagesPerListing: 4,
		WeeklyReset:         true,
	},
	TierPremium: {
		Tier:                TierPremium,
		MaxListings:         50,
		MaxImagesPerListing: 12,
	},
	TierBusiness: {
		Tier:                TierBusiness,
		MaxListings:         Unlimited,
		MaxImagesPerListing: 24,
	},
}

// ParseTier accepts a tier name in any case.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown subscription tier %q", s)
	}
	return t, nil
}

func (t Tier) Valid() bool {
	_, ok := limitsByTier[t]
	return ok
}

func (t Tier) String() string { return string(t) }

// Value stores the tier as plain text.
func (t Tier) Value() (driver.Value, error) {
	return string(t), nil
}

// Scan reads a tier column. Unknown values fall back to free, which is the
// most restrictive tier.
func (t *Tier) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		*t = TierFree
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Tier", src)
	}
	parsed, err := ParseTier(s)
	if err != nil {
		*t = TierFree
		return nil
	}
	*t = parsed
	return nil
}

// LimitsFor returns the limits for a tier; unknown tiers get free limits.
func LimitsFor(t Tier) Limits {
	if l, ok := limitsByTier[t]; ok {
		return l
	}
	return limitsByTier[TierFree]
}

// CanCreateListing reports whether an account holding current listings may add one more.
func CanCreateListing(t Tier, current int) bool {
	max := LimitsFor(t).MaxListings
	return max == Unlimited || current < max
}

// RemainingListings returns how many more listings fit, or Unlimited.
func RemainingListings(t Tier, current int) int {
	max := LimitsFor(t).MaxListings
	if max == Unlimited {
		return Unlimited
	}
	if current >= max {
		return 0
	}
	return max - current
}
