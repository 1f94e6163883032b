package scoring_test

import (
	"testing"

	"paperportal/contexts/community-experience/contribution-engine/domain/scoring"
)

func TestClassifyTierBands(t *testing.T) {
	cases := []struct {
		score int
		want  scoring.Tier
	}{
		{0, scoring.TierBronze},
		{99, scoring.TierBronze},
		{100, scoring.TierSilver},
		{150, scoring.TierSilver},
		{499, scoring.TierSilver},
		{500, scoring.TierGold},
		{1499, scoring.TierGold},
		{1500, scoring.TierPlatinum},
		{4999, scoring.TierPlatinum},
		{5000, scoring.TierDiamond},
		{250000, scoring.TierDiamond},
	}
	for _, tc := range cases {
		if got := scoring.ClassifyTier(tc.score); got != tc.want {
			t.Fatalf("score %d: got %s want %s", tc.score, got, tc.want)
		}
	}
}

func TestClassifyTierClampsNegativeScores(t *testing.T) {
	for _, score := range []int{-1, -100, -1000000} {
		if got := scoring.ClassifyTier(score); got != scoring.TierBronze {
			t.Fatalf("negative score %d must clamp to bronze, got %s", score, got)
		}
	}
}

func TestClassifyTierIsTotal(t *testing.T) {
	known := map[scoring.Tier]bool{
		scoring.TierBronze:   true,
		scoring.TierSilver:   true,
		scoring.TierGold:     true,
		scoring.TierPlatinum: true,
		scoring.TierDiamond:  true,
	}
	for score := -10000; score <= 10000; score++ {
		if tier := scoring.ClassifyTier(score); !known[tier] {
			t.Fatalf("score %d produced unknown tier %q", score, tier)
		}
	}
}

func TestTierBandsAscendAndMatchClassifier(t *testing.T) {
	bands := scoring.TierBands()
	if len(bands) != 5 {
		t.Fatalf("expected 5 tier bands, got %d", len(bands))
	}
	for i, band := range bands {
		if i > 0 && band.MinScore <= bands[i-1].MinScore {
			t.Fatalf("band %s does not ascend: %d after %d", band.Tier, band.MinScore, bands[i-1].MinScore)
		}
		if got := scoring.ClassifyTier(band.MinScore); got != band.Tier {
			t.Fatalf("classifier disagrees with band at %d: got %s want %s", band.MinScore, got, band.Tier)
		}
	}
}

func TestParseTier(t *testing.T) {
	if tier, ok := scoring.ParseTier(" Gold "); !ok || tier != scoring.TierGold {
		t.Fatalf("expected gold, got %q ok=%v", tier, ok)
	}
	if _, ok := scoring.ParseTier("obsidian"); ok {
		t.Fatalf("unknown tier must not parse")
	}
}
