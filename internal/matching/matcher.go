// Package matching links an extracted identity to an existing couple.
//
// The cascade runs strongest tier first and stops at the first tier that
// produces a usable candidate. Tiers without a date constraint only accept a
// candidate when exactly one record qualifies.
package matching

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/wedding-ledger/internal/common"
	"github.com/joseph-ayodele/wedding-ledger/internal/entity"
)

// CoupleFinder is the read side of repository.CoupleRepository.
type CoupleFinder interface {
	ListAll(ctx context.Context) ([]entity.Couple, error)
	ListByWeddingDate(ctx context.Context, date string) ([]entity.Couple, error)
	ListByNamePrefix(ctx context.Context, prefix string) ([]entity.Couple, error)
}

// Identity is what an import knows about who a document belongs to.
type Identity struct {
	PrimaryFirstName   string
	SecondaryFirstName string
	DisplayName        string // free-text title, e.g. "Amanda & Justin Kong"
	WeddingDate        string // YYYY-MM-DD or ""
}

func (id Identity) IsZero() bool {
	return id.PrimaryFirstName == "" && id.SecondaryFirstName == "" && id.DisplayName == ""
}

type Matcher struct {
	finder CoupleFinder
	logger *slog.Logger
}

func NewMatcher(finder CoupleFinder, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{finder: finder, logger: logger}
}

// Match returns the best existing couple for id, or nil when no tier
// matches. A nil result is not an error; only store failures are.
func (m *Matcher) Match(ctx context.Context, id Identity) (*entity.MatchCandidate, error) {
	logger := common.LoggerFromContext(ctx, m.logger)
	primary := strings.ToLower(strings.TrimSpace(id.PrimaryFirstName))
	secondary := strings.ToLower(strings.TrimSpace(id.SecondaryFirstName))

	if id.WeddingDate != "" && (primary != "" || secondary != "") {
		sameDay, err := m.finder.ListByWeddingDate(ctx, id.WeddingDate)
		if err != nil {
			return nil, fmt.Errorf("match by date: %w", err)
		}
		if primary != "" {
			for _, c := range sameDay {
				if strings.HasPrefix(strings.ToLower(c.CoupleName), primary) {
					return m.found(logger, c, entity.TierDatePrimaryPrefix, len(sameDay)), nil
				}
			}
		}
		if secondary != "" {
			for _, c := range sameDay {
				if strings.Contains(strings.ToLower(c.CoupleName), secondary) {
					return m.found(logger, c, entity.TierDateSecondaryContains, len(sameDay)), nil
				}
			}
		}
	}

	if primary != "" {
		hits, err := m.finder.ListByNamePrefix(ctx, primary)
		if err != nil {
			return nil, fmt.Errorf("match by name: %w", err)
		}
		if len(hits) == 1 {
			return m.found(logger, hits[0], entity.TierPrimaryPrefixUnique, 1), nil
		}
		if len(hits) > 1 {
			logger.Info("match.ambiguous", "tier", entity.TierPrimaryPrefixUnique, "hits", len(hits))
		}
	}

	title := id.DisplayName
	if title == "" {
		title = strings.TrimSpace(id.PrimaryFirstName + " & " + id.SecondaryFirstName)
	}
	if tokens := Tokenize(title); len(tokens) > 0 {
		all, err := m.finder.ListAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("match by tokens: %w", err)
		}
		var hits []entity.Couple
		for _, c := range all {
			if TokenOverlap(Tokenize(c.CoupleName), tokens) {
				hits = append(hits, c)
			}
		}
		switch {
		case len(hits) == 1:
			return m.found(logger, hits[0], entity.TierFuzzyToken, 1), nil
		case len(hits) > 1:
			logger.Info("match.ambiguous", "tier", entity.TierFuzzyToken, "hits", len(hits))
		}
	}

	logger.Debug("match.none", "primary", id.PrimaryFirstName, "date", id.WeddingDate)
	return nil, nil
}

func (m *Matcher) found(logger *slog.Logger, c entity.Couple, tier entity.MatchTier, hits int) *entity.MatchCandidate {
	logger.Info("match.ok", "couple_id", c.ID, "couple_name", c.CoupleName, "tier", tier, "hits", hits)
	return &entity.MatchCandidate{Couple: c, Tier: tier}
}

// Tokenize lower-cases s, splits it on whitespace and '&', and drops tokens
// of two characters or fewer.
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == '&' || r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == ','
	})
	out := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) > 2 {
			out = append(out, f)
		}
	}
	return out
}

// TokenOverlap reports whether at least min(2, len(candidate)) of the
// record's tokens occur inside some candidate token.
func TokenOverlap(record, candidate []string) bool {
	need := min(2, len(candidate))
	if need == 0 {
		return false
	}
	n := 0
	for _, rt := range record {
		for _, ct := range candidate {
			if strings.Contains(ct, rt) {
				n++
				break
			}
		}
	}
	return n >= need
}
