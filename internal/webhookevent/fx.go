package webhookevent

import (
	"github.com/smallbiznis/keygate/internal/webhookevent/repository"
	"github.com/smallbiznis/keygate/internal/webhookevent/service"
	"go.uber.org/fx"
)

var Module = fx.Module("webhookevent.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
