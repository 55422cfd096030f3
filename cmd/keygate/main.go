package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/smallbiznis/keygate/internal/config"
	"github.com/smallbiznis/keygate/internal/logger"
	"github.com/smallbiznis/keygate/internal/migration"
	"github.com/smallbiznis/keygate/internal/scheduler"
	"github.com/smallbiznis/keygate/internal/server"
	"github.com/smallbiznis/keygate/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		server.Module,
		scheduler.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) *snowflake.Node {
	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		panic(err)
	}
	return node
}
