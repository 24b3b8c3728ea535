package vulndb

import (
	"github.com/l3montree-dev/sbomguard/shared"
	"go.uber.org/fx"
)

var Module = fx.Module("vulndb",
	fx.Provide(fx.Annotate(NewOSVClientFromConfig, fx.As(new(shared.VulnerabilityClient)))),
)
