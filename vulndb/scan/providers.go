package scan

import (
	"github.com/l3montree-dev/sbomguard/shared"
	"go.uber.org/fx"
)

var Module = fx.Module("scan",
	fx.Provide(fx.Annotate(NewCorrelatorFromConfig, fx.As(new(shared.Correlator)))),
)
