package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/wedding-ledger/internal/entity"
	"github.com/joseph-ayodele/wedding-ledger/internal/extraction"
	"github.com/joseph-ayodele/wedding-ledger/internal/repository/repotest"
)

func newMatcher(couples ...entity.Couple) *Matcher {
	store := repotest.New()
	store.Seed(couples...)
	return NewMatcher(store.Couples(), nil)
}

func TestMatch_DateAndPrimaryName(t *testing.T) {
	m := newMatcher(entity.Couple{CoupleName: "Amanda & Justin Kong", WeddingDate: "2026-09-12"})

	got, err := m.Match(context.Background(), Identity{PrimaryFirstName: "Amanda", SecondaryFirstName: "Justin", WeddingDate: "2026-09-12"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.TierDatePrimaryPrefix, got.Tier)
	assert.Equal(t, "Amanda & Justin Kong", got.Couple.CoupleName)
}

func TestMatch_SameDayTakesFirstInStoreOrder(t *testing.T) {
	m := newMatcher(
		entity.Couple{CoupleName: "Amanda & Justin Kong", WeddingDate: "2026-09-12"},
		entity.Couple{CoupleName: "Amanda & Justin Lee", WeddingDate: "2026-09-12"},
	)
	got, err := m.Match(context.Background(), Identity{PrimaryFirstName: "amanda", SecondaryFirstName: "Justin", WeddingDate: "2026-09-12"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.TierDatePrimaryPrefix, got.Tier)
	assert.Equal(t, "Amanda & Justin Kong", got.Couple.CoupleName)
}

func TestMatch_DateAndSecondaryName(t *testing.T) {
	m := newMatcher(
		entity.Couple{CoupleName: "Mandy & Justin Kong", WeddingDate: "2026-09-12"},
		entity.Couple{CoupleName: "Justine Park", WeddingDate: "2026-10-01"},
	)
	got, err := m.Match(context.Background(), Identity{PrimaryFirstName: "Amanda", SecondaryFirstName: "Justin", WeddingDate: "2026-09-12"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.TierDateSecondaryContains, got.Tier)
	assert.Equal(t, "Mandy & Justin Kong", got.Couple.CoupleName)
}

func TestMatch_DateTierBeatsFuzzy(t *testing.T) {
	m := newMatcher(
		entity.Couple{CoupleName: "Justin & Amanda Kong"},
		entity.Couple{CoupleName: "Amanda K.", WeddingDate: "2026-09-12"},
	)
	got, err := m.Match(context.Background(), Identity{
		PrimaryFirstName: "Amanda", SecondaryFirstName: "Justin",
		DisplayName: "Amanda & Justin Kong", WeddingDate: "2026-09-12",
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.TierDatePrimaryPrefix, got.Tier)
	assert.Equal(t, "Amanda K.", got.Couple.CoupleName)
}

func TestMatch_PrimaryPrefixIsUniquenessGated(t *testing.T) {
	m := newMatcher(
		entity.Couple{CoupleName: "Amanda & Justin Kong", WeddingDate: "2026-09-12"},
		entity.Couple{CoupleName: "Amanda & Chris Lee", WeddingDate: "2027-06-01"},
	)
	got, err := m.Match(context.Background(), Identity{PrimaryFirstName: "Amanda"})
	require.NoError(t, err)
	assert.Nil(t, got)

	m = newMatcher(
		entity.Couple{CoupleName: "Amanda & Justin Kong", WeddingDate: "2026-09-12"},
		entity.Couple{CoupleName: "Priya & Sam Shah"},
	)
	got, err = m.Match(context.Background(), Identity{PrimaryFirstName: "Amanda"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.TierPrimaryPrefixUnique, got.Tier)
}

func TestMatch_AmbiguousPrimaryPrefixFallsThroughToTokens(t *testing.T) {
	m := newMatcher(
		entity.Couple{CoupleName: "Amanda & Justin Kong", WeddingDate: "2026-09-12"},
		entity.Couple{CoupleName: "Amanda & Chris Lee", WeddingDate: "2027-06-01"},
	)
	// both share the primary name; only one also carries the secondary
	got, err := m.Match(context.Background(), Identity{PrimaryFirstName: "Amanda", SecondaryFirstName: "Justin"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.TierFuzzyToken, got.Tier)
	assert.Equal(t, "Amanda & Justin Kong", got.Couple.CoupleName)

	m = newMatcher(
		entity.Couple{CoupleName: "Amanda & Justin Kong", WeddingDate: "2026-09-12"},
		entity.Couple{CoupleName: "Amanda & Justin Lee", WeddingDate: "2027-06-01"},
	)
	got, err = m.Match(context.Background(), Identity{PrimaryFirstName: "Amanda", SecondaryFirstName: "Justin"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMatch_FuzzyTokens(t *testing.T) {
	m := newMatcher(
		entity.Couple{CoupleName: "Justin & Amanda Kong"},
		entity.Couple{CoupleName: "Priya & Sam Shah"},
	)
	got, err := m.Match(context.Background(), Identity{DisplayName: "Amanda & Justin Kong Album Order"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.TierFuzzyToken, got.Tier)
	assert.Equal(t, "Justin & Amanda Kong", got.Couple.CoupleName)
}

func TestMatch_FuzzyAmbiguousIsNoMatch(t *testing.T) {
	m := newMatcher(
		entity.Couple{CoupleName: "Justin & Amanda Kong"},
		entity.Couple{CoupleName: "Amanda Kong"},
	)
	got, err := m.Match(context.Background(), Identity{DisplayName: "Kong Amanda prints"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMatch_NoCandidates(t *testing.T) {
	m := newMatcher(entity.Couple{CoupleName: "Priya & Sam Shah", WeddingDate: "2026-09-12"})
	got, err := m.Match(context.Background(), Identity{PrimaryFirstName: "Amanda", SecondaryFirstName: "Justin", WeddingDate: "2026-09-12"})
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = m.Match(context.Background(), Identity{})
	require.NoError(t, err)
	assert.Nil(t, got)
}

type failingFinder struct{ CoupleFinder }

func (failingFinder) ListByWeddingDate(context.Context, string) ([]entity.Couple, error) {
	return nil, errors.New("connection reset")
}

func TestMatch_StoreErrorPropagates(t *testing.T) {
	m := NewMatcher(failingFinder{}, nil)
	_, err := m.Match(context.Background(), Identity{PrimaryFirstName: "Amanda", WeddingDate: "2026-09-12"})
	assert.ErrorContains(t, err, "connection reset")
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"amanda", "justin", "kong"}, Tokenize("Amanda & Justin Kong"))
	assert.Equal(t, []string{"amanda"}, Tokenize("Amanda & Jo Li"))
	assert.Empty(t, Tokenize(" & "))
}

func TestTokenOverlap(t *testing.T) {
	assert.True(t, TokenOverlap([]string{"amanda", "kong"}, []string{"amanda", "justin", "kong"}))
	assert.False(t, TokenOverlap([]string{"amanda", "lee"}, []string{"amanda", "justin", "kong"}))
	assert.True(t, TokenOverlap([]string{"kong"}, []string{"kongs"}))
	assert.False(t, TokenOverlap([]string{"kong"}, nil))
}

func TestIdentityOf(t *testing.T) {
	id := IdentityOf(&extraction.Payload{Extras: &extraction.ExtrasFields{CoupleName: "Amanda & Justin Kong", WeddingDate: "2026-09-12"}})
	assert.Equal(t, Identity{PrimaryFirstName: "Amanda", SecondaryFirstName: "Justin", DisplayName: "Amanda & Justin Kong", WeddingDate: "2026-09-12"}, id)

	id = IdentityOf(&extraction.Payload{Contract: &extraction.ContractFields{
		Bride:       entity.Party{FirstName: "Amanda"},
		Groom:       entity.Party{FirstName: "Justin", LastName: "Kong"},
		WeddingDate: "2026-09-12",
	}})
	assert.Equal(t, "Amanda", id.PrimaryFirstName)
	assert.Equal(t, "Amanda & Justin Kong", id.DisplayName)

	id = IdentityOf(&extraction.Payload{Quote: &extraction.QuoteFields{CoupleName: "Priya and Sam Shah"}})
	assert.Equal(t, "Priya", id.PrimaryFirstName)
	assert.Equal(t, "Sam", id.SecondaryFirstName)
}
