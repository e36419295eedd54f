package entity

// MatchTier names the matcher rule that produced a candidate.
type MatchTier string

const (
	TierDatePrimaryPrefix     MatchTier = "date+primary-name"
	TierDateSecondaryContains MatchTier = "date+secondary-name"
	TierPrimaryPrefixUnique   MatchTier = "exact-name"
	TierFuzzyToken            MatchTier = "fuzzy-token"
)

// MatchCandidate is the matcher's pick for one import. It is never persisted.
type MatchCandidate struct {
	Couple Couple
	Tier   MatchTier
}
