package summarize

import (
	"context"
	"fmt"
	"lifewrapped/internal/models"
	"lifewrapped/internal/providers"
)

// Coordinator routes summarization through the engine chain. The
// preferred engine is tried first, then the remaining tiers in fixed
// order external, local, platform, basic. Unavailable engines are
// skipped, failing engines fall through, and the basic engine at the
// end of the chain never fails, so a summary is always produced.
type Coordinator struct {
	engines   map[Tier]Engine
	preferred Tier
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
}

var tierOrder = []Tier{TierExternal, TierLocal, TierPlatform, TierBasic}

func NewCoordinator(preferred Tier, engines []Engine,
	logger providers.Logger, metrics providers.MetricsProviderInterface) *Coordinator {
	byTier := make(map[Tier]Engine, len(engines))
	for _, e := range engines {
		byTier[e.Tier()] = e
	}
	return &Coordinator{
		engines:   byTier,
		preferred: preferred,
		logger:    logger,
		metrics:   metrics,
	}
}

// Chain returns the engines in the order they will be tried.
func (c *Coordinator) Chain() []Engine {
	order := make([]Engine, 0, len(c.engines))
	if e, ok := c.engines[c.preferred]; ok {
		order = append(order, e)
	}
	for _, tier := range tierOrder {
		if tier == c.preferred {
			continue
		}
		if e, ok := c.engines[tier]; ok {
			order = append(order, e)
		}
	}
	return order
}

// ActiveTier reports which engine would handle the next request.
func (c *Coordinator) ActiveTier(ctx context.Context) Tier {
	for _, e := range c.Chain() {
		if e.IsAvailable(ctx) {
			return e.Tier()
		}
	}
	return TierBasic
}

func (c *Coordinator) SummarizeSession(ctx context.Context, in SessionInput) (*models.SessionIntelligence, error) {
	var result *models.SessionIntelligence
	err := c.run(ctx, "session", func(e Engine) error {
		out, err := e.SummarizeSession(ctx, in)
		if err != nil {
			return err
		}
		result = out
		return nil
	})
	return result, err
}

func (c *Coordinator) SummarizePeriod(ctx context.Context, in PeriodInput) (*models.PeriodIntelligence, error) {
	var result *models.PeriodIntelligence
	err := c.run(ctx, string(in.PeriodType), func(e Engine) error {
		out, err := e.SummarizePeriod(ctx, in)
		if err != nil {
			return err
		}
		result = out
		return nil
	})
	return result, err
}

func (c *Coordinator) run(ctx context.Context, level string, attempt func(Engine) error) error {
	chain := c.Chain()
	var lastErr error

	for i, engine := range chain {
		if !engine.IsAvailable(ctx) {
			c.logger.Debugf(providers.TypeAi, "Engine %s unavailable, skipping", engine.Tier())
			continue
		}

		if err := attempt(engine); err != nil {
			lastErr = err
			c.logger.Warnf(providers.TypeAi, "Engine %s failed for %s summary: %s", engine.Tier(), level, err)
			if i+1 < len(chain) {
				c.metrics.IncEngineFallbacks(string(engine.Tier()), string(chain[i+1].Tier()))
			}
			continue
		}

		c.metrics.IncSummaries(string(engine.Tier()), level)
		return nil
	}

	if lastErr != nil {
		return fmt.Errorf("all summarization engines failed: %w", lastErr)
	}
	return fmt.Errorf("no summarization engine available")
}
