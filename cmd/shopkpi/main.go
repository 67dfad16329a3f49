package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/shopkpi/shopkpi/internal/clock"
	"github.com/shopkpi/shopkpi/internal/config"
	"github.com/shopkpi/shopkpi/internal/logger"
	"github.com/shopkpi/shopkpi/internal/migration"
	"github.com/shopkpi/shopkpi/internal/server"
	"github.com/shopkpi/shopkpi/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
