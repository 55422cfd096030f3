package observability

import (
	"github.com/smallbiznis/keygate/internal/observability/metrics"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		metrics.NewRegistry,
		metrics.New,
	),
)
