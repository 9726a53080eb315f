package plan

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"server/internal/domain"
)

// Decision is the ephemeral outcome of a quota check. It is computed fresh on
// every generation request and never persisted.
type Decision struct {
	Allowed bool
	Tier    domain.PlanTier
	Current int
	Limit   int
	Reason  string
}

// Gate decides whether a new generation is allowed for a user, query and
// content type. It never returns an error: infrastructure failures translate
// into a denial so that paid generation work is not started on unknown usage.
type Gate struct {
	catalog  Catalog
	contents domain.ContentStore
	users    domain.UserStore
	logger   zerolog.Logger
}

// NewGate builds a quota gate over the given stores.
func NewGate(catalog Catalog, contents domain.ContentStore, users domain.UserStore, logger zerolog.Logger) *Gate {
	return &Gate{catalog: catalog, contents: contents, users: users, logger: logger}
}

// Check resolves the user's tier, reads the current count and compares it to
// the catalog limit. Quota is consumed only on generation, so callers must
// run their cache check before calling Check.
func (g *Gate) Check(ctx context.Context, userID, queryID string, contentType domain.ContentType) Decision {
	tier := domain.PlanFree
	user, err := g.users.GetByID(ctx, userID)
	if err == nil && user != nil {
		tier = user.Plan
	} else if err != nil {
		g.logger.Warn().Err(err).Str("user_id", userID).Msg("quota: plan lookup failed, assuming free tier")
	}

	limit := g.catalog.LimitFor(tier, contentType)

	current, err := g.contents.CountByType(ctx, queryID, contentType)
	if err != nil {
		g.logger.Error().Err(err).Str("query_id", queryID).Str("content_type", string(contentType)).
			Msg("quota: usage count unavailable")
		return Decision{
			Allowed: false,
			Tier:    tier,
			Limit:   limit,
			Reason:  "could not verify current usage, please try again",
		}
	}

	if contentType == domain.ContentTypeAudio && current > 0 && !g.catalog.AudioOnDemand(tier) {
		return Decision{
			Allowed: false,
			Tier:    tier,
			Current: current,
			Limit:   limit,
			Reason:  "on-demand audio regeneration is not included in the free plan; upgrade to pro to regenerate narration",
		}
	}

	if current >= limit {
		return Decision{
			Allowed: false,
			Tier:    tier,
			Current: current,
			Limit:   limit,
			Reason:  denialReason(tier, contentType, current, limit),
		}
	}

	return Decision{Allowed: true, Tier: tier, Current: current, Limit: limit}
}

func denialReason(tier domain.PlanTier, contentType domain.ContentType, current, limit int) string {
	msg := fmt.Sprintf("%s limit reached on the %s plan (%d of %d)", contentType, tier, current, limit)
	if tier == domain.PlanFree {
		msg += "; upgrade to pro for a higher limit"
	}
	return msg
}
