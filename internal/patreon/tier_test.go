package patreon

import "testing"

func TestResolveTierEmpty(t *testing.T) {
	if got := ResolveTier(nil); got != TierNone {
		t.Errorf("ResolveTier(nil) = %v, want TierNone", got)
	}
	if got := ResolveTier([]EntitledTier{}); got != TierNone {
		t.Errorf("ResolveTier(empty) = %v, want TierNone", got)
	}
}

func TestResolveTierTable(t *testing.T) {
	tests := []struct {
		name  string
		tiers []EntitledTier
		want  Tier
	}{
		{
			name:  "keyword wins over cheaper unmatched tier",
			tiers: []EntitledTier{{Title: "Silver", AmountCents: 500}, {Title: "Gold Supporter", AmountCents: 1500}},
			want:  TierSupporter,
		},
		{
			name:  "price fallback founder threshold",
			tiers: []EntitledTier{{Title: "Mystery", AmountCents: 2500}},
			want:  TierFounder,
		},
		{
			name:  "free tier resolves to none",
			tiers: []EntitledTier{{Title: "Mystery", AmountCents: 0}},
			want:  TierNone,
		},
		{
			name:  "founder keyword at any price",
			tiers: []EntitledTier{{Title: "Founder Club", AmountCents: 100}},
			want:  TierFounder,
		},
		{
			name:  "founder keyword not downgraded by later supporter",
			tiers: []EntitledTier{{Title: "Founder Club", AmountCents: 100}, {Title: "Supporter", AmountCents: 5000}},
			want:  TierFounder,
		},
		{
			name:  "keyword match is case insensitive",
			tiers: []EntitledTier{{Title: "BASIC access", AmountCents: 0}},
			want:  TierBasic,
		},
		{
			name:  "price fallback supporter threshold",
			tiers: []EntitledTier{{Title: "Gold", AmountCents: 1000}},
			want:  TierSupporter,
		},
		{
			name:  "any paid unmatched tier is basic",
			tiers: []EntitledTier{{Title: "Tip jar", AmountCents: 100}},
			want:  TierBasic,
		},
		{
			name:  "basic keyword does not downgrade price supporter",
			tiers: []EntitledTier{{Title: "Gold", AmountCents: 1500}, {Title: "Basic legacy", AmountCents: 9000}},
			want:  TierSupporter,
		},
		{
			name: "legacy lower tier plus add-on picks the best",
			tiers: []EntitledTier{
				{Title: "Basic", AmountCents: 300},
				{Title: "Extras", AmountCents: 700},
				{Title: "Founder's Circle", AmountCents: 2000},
			},
			want: TierFounder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveTier(tt.tiers); got != tt.want {
				t.Errorf("ResolveTier() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestResolveTierOrderIndependent checks that every permutation of the same
// entitled-tier list resolves to the same tier.
func TestResolveTierOrderIndependent(t *testing.T) {
	tiers := []EntitledTier{
		{Title: "Silver", AmountCents: 500},
		{Title: "Gold Supporter", AmountCents: 1500},
		{Title: "Mystery", AmountCents: 2500},
		{Title: "Free preview", AmountCents: 0},
	}

	want := ResolveTier(tiers)
	permute(tiers, func(p []EntitledTier) {
		if got := ResolveTier(p); got != want {
			t.Fatalf("ResolveTier(%v) = %v, want %v", p, got, want)
		}
	})
}

// TestResolveTierFounderDominates checks the monotonicity property: a
// founder-titled tier wins regardless of what else is present.
func TestResolveTierFounderDominates(t *testing.T) {
	others := [][]EntitledTier{
		nil,
		{{Title: "Basic", AmountCents: 100}},
		{{Title: "Supporter", AmountCents: 1500}},
		{{Title: "Whale", AmountCents: 99999}},
	}

	for _, extra := range others {
		tiers := append([]EntitledTier{{Title: "Founder Club", AmountCents: 1}}, extra...)
		permute(tiers, func(p []EntitledTier) {
			if got := ResolveTier(p); got != TierFounder {
				t.Fatalf("ResolveTier(%v) = %v, want TierFounder", p, got)
			}
		})
	}
}

func TestTierStringRoundTrip(t *testing.T) {
	for _, tier := range []Tier{TierNone, TierBasic, TierSupporter, TierFounder} {
		if got := TierFromString(tier.String()); got != tier {
			t.Errorf("TierFromString(%q) = %v, want %v", tier.String(), got, tier)
		}
	}
	if got := TierFromString("patreon_gold"); got != TierNone {
		t.Errorf("TierFromString(unknown) = %v, want TierNone", got)
	}
}

// permute calls fn with every permutation of tiers.
func permute(tiers []EntitledTier, fn func([]EntitledTier)) {
	var rec func(k int)
	work := make([]EntitledTier, len(tiers))
	copy(work, tiers)

	rec = func(k int) {
		if k == len(work) {
			p := make([]EntitledTier, len(work))
			copy(p, work)
			fn(p)
			return
		}
		for i := k; i < len(work); i++ {
			work[k], work[i] = work[i], work[k]
			rec(k + 1)
			work[k], work[i] = work[i], work[k]
		}
	}
	rec(0)
}
