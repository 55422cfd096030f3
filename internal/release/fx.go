package release

import (
	"github.com/smallbiznis/keygate/internal/release/repository"
	"github.com/smallbiznis/keygate/internal/release/service"
	"go.uber.org/fx"
)

var Module = fx.Module("release.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
