package scoring

import "strings"

type Tier string

const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
	TierDiamond  Tier = "diamond"
)

// TierBand is one scoring band, exposed so the UI can render thresholds.
type TierBand struct {
	Tier     Tier
	MinScore int
}

// TierBands returns the bands in ascending score order.
func TierBands() []TierBand {
	return []TierBand{
		{Tier: TierBronze, MinScore: 0},
		{Tier: TierSilver, MinScore: 100},
		{Tier: TierGold, MinScore: 500},
		{Tier: TierPlatinum, MinScore: 1500},
		{Tier: TierDiamond, MinScore: 5000},
	}
}

// ClassifyTier is total over all integers; negative scores clamp to the
// lowest tier. Tiers are never stored, always derived at read time.
func ClassifyTier(score int) Tier {
	switch {
	case score >= 5000:
		return TierDiamond
	case score >= 1500:
		return TierPlatinum
	case score >= 500:
		return TierGold
	case score >= 100:
		return TierSilver
	default:
		return TierBronze
	}
}

func ParseTier(raw string) (Tier, bool) {
	switch Tier(strings.ToLower(strings.TrimSpace(raw))) {
	case TierBronze:
		return TierBronze, true
	case TierSilver:
		return TierSilver, true
	case TierGold:
		return TierGold, true
	case TierPlatinum:
		return TierPlatinum, true
	case TierDiamond:
		return TierDiamond, true
	default:
		return "", false
	}
}
