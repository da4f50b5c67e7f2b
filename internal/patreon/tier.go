// Package patreon implements the Patreon membership link: the OAuth2
// authorization-code flow, the webhook receiver and the tier resolution
// shared by both.
package patreon

import "strings"

// Tier is the portal's fixed access level, derived from Patreon's
// admin-defined, free-text tiers.
type Tier int

const (
	TierNone Tier = iota
	TierBasic
	TierSupporter
	TierFounder
)

func (t Tier) String() string {
	switch t {
	case TierBasic:
		return "basic"
	case TierSupporter:
		return "supporter"
	case TierFounder:
		return "founder"
	}
	return ""
}

// TierFromString parses a stored tier value. Unknown values map to TierNone.
func TierFromString(s string) Tier {
	switch s {
	case "basic":
		return TierBasic
	case "supporter":
		return TierSupporter
	case "founder":
		return TierFounder
	}
	return TierNone
}

// EntitledTier is one currently-entitled Patreon tier as reported live by the
// platform. Title is free text chosen by the campaign owner; AmountCents is
// the price in minor currency units.
type EntitledTier struct {
	Title       string
	AmountCents int
}

// ResolveTier reduces a member's currently entitled tiers to a single portal
// access level. Name keywords outrank the price fallback, and the running
// best never decreases, so the result is independent of input order. An
// empty list resolves to TierNone.
func ResolveTier(tiers []EntitledTier) Tier {
	best := TierNone
	for _, tier := range tiers {
		title := strings.ToLower(tier.Title)
		switch {
		case strings.Contains(title, "founder"):
			best = TierFounder
		case strings.Contains(title, "supporter"):
			if best < TierSupporter {
				best = TierSupporter
			}
		case strings.Contains(title, "basic"):
			if best < TierBasic {
				best = TierBasic
			}
		case tier.AmountCents >= 2000:
			best = TierFounder
		case tier.AmountCents >= 1000:
			if best < TierSupporter {
				best = TierSupporter
			}
		case tier.AmountCents > 0:
			if best < TierBasic {
				best = TierBasic
			}
		}
	}
	return best
}
