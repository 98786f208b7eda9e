package http

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/mavedefi/whitelist-dapp/internal/api/websocket"
	"github.com/mavedefi/whitelist-dapp/internal/config"
	"github.com/mavedefi/whitelist-dapp/internal/page"
	eventiface "github.com/mavedefi/whitelist-dapp/pkg/interfaces/infrastructure/event"
)

// ServerParams 服务器生命周期依赖
type ServerParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Server    *Server
	Config    config.HTTPConfig
}

// registerLifecycle OnStart 开始服务，OnStop 关闭并等待后台流程
func registerLifecycle(p ServerParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return p.Server.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			if p.Config.ShutdownTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
				defer cancel()
			}
			return p.Server.Stop(ctx)
		},
	})
}

// NewWebSocketServer 创建页面状态推送服务
func NewWebSocketServer(logger *zap.Logger, bus eventiface.EventBus, home *page.Home) *websocket.Server {
	return websocket.NewServer(logger.Named("websocket"), bus, home)
}

// Module 返回 HTTP 模块
func Module() fx.Option {
	return fx.Module("http",
		fx.Provide(
			NewWebSocketServer,
			NewServer,
		),
		fx.Invoke(registerLifecycle),
	)
}
