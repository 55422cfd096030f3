package team

import (
	"github.com/smallbiznis/keygate/internal/team/repository"
	"github.com/smallbiznis/keygate/internal/team/service"
	"go.uber.org/fx"
)

var Module = fx.Module("team.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
