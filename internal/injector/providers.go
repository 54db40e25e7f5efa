package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/scenekit/internal/config"
	"github.com/zeusync/scenekit/internal/core/assets"
	"github.com/zeusync/scenekit/internal/core/observability/log"
	"github.com/zeusync/scenekit/internal/core/scene"
	"github.com/zeusync/scenekit/internal/game"
	"github.com/zeusync/scenekit/internal/game/builtin"
	"github.com/zeusync/scenekit/internal/server"
)

// Runtime is everything the scene binary runs.
type Runtime struct {
	Logger log.Log
	App    *game.App
	Server *server.Server
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideRenderer,
	ProvideRequests,
	ProvideServerConfig,
	game.NewApp,
	wire.Bind(new(server.Controller), new(*game.App)),
	server.NewConsole,
	server.NewServer,
	wire.Struct(new(Runtime), "*"),
)

func ProvideLogger(cfg *config.Config) (log.Log, error) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return log.New(level), nil
}

// ProvideRenderer returns the headless renderer.
func ProvideRenderer() scene.Renderer {
	return &scene.NopRenderer{}
}

func ProvideRequests() []assets.Request {
	return builtin.Requests()
}

func ProvideServerConfig(cfg *config.Config) server.Config {
	c := server.DefaultServerConfig()
	c.ListenAddr = cfg.Console.Addr
	return c
}
