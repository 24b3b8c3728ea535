package services

import (
	"context"

	"github.com/l3montree-dev/sbomguard/shared"
	"github.com/l3montree-dev/sbomguard/utils"
	"go.uber.org/fx"
)

func newTierService(cfg shared.Config, repository shared.TierRepository) shared.TierService {
	if cfg.TierServiceURL != "" {
		return NewHTTPTierService(cfg.TierServiceURL, cfg.TierCacheTTL, nil)
	}
	return NewTierService(repository, cfg.DefaultTier, cfg.TierCacheTTL)
}

func newAnalysisStore(lc fx.Lifecycle, repository shared.AnalysisRepository, broker shared.PubSubBroker, clock utils.Clock) *AnalysisStore {
	store := NewAnalysisStore(repository, broker, clock)
	listenCtx, stopListening := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return store.ListenForCancellation(listenCtx)
		},
		OnStop: func(ctx context.Context) error {
			stopListening()
			return store.Shutdown(ctx)
		},
	})
	return store
}

// Module provides all service-layer constructors
var Module = fx.Options(
	fx.Provide(utils.NewRealClock),
	fx.Provide(newTierService),
	fx.Provide(fx.Annotate(NewUsageGuard, fx.As(new(shared.UsageGuard)))),
	fx.Provide(newAnalysisStore),
	fx.Provide(fx.Annotate(NewAnalysisService, fx.As(new(shared.AnalysisService)))),
)
