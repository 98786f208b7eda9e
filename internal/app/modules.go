package app

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/mavedefi/whitelist-dapp/client/core/contract"
	"github.com/mavedefi/whitelist-dapp/client/core/wallet"
	"github.com/mavedefi/whitelist-dapp/internal/config"
	"github.com/mavedefi/whitelist-dapp/internal/core/infrastructure/metrics"
	"github.com/mavedefi/whitelist-dapp/internal/page"
	eventiface "github.com/mavedefi/whitelist-dapp/pkg/interfaces/infrastructure/event"
	logiface "github.com/mavedefi/whitelist-dapp/pkg/interfaces/infrastructure/log"
)

// WalletParams 钱包连接器依赖
type WalletParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Dialer    wallet.Dialer
	Alerts    *page.AlertBox
	Logger    logiface.Logger
}

// ProvideConnector 加载签名私钥并创建连接器，应用停止时关闭连接
func ProvideConnector(p WalletParams) (*wallet.Connector, error) {
	key, err := p.Config.KeySource().LoadKey()
	if err != nil {
		return nil, fmt.Errorf("load wallet key: %w", err)
	}
	opts := p.Config.ConnectorOptions()
	opts.Key = key

	connector := wallet.NewConnector(p.Dialer, opts, p.Alerts, p.Logger)
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return connector.Close()
		},
	})
	return connector, nil
}

// ProvideWhitelistService 已部署合约的读写服务
func ProvideWhitelistService(
	cfg *config.Config,
	connector *wallet.Connector,
	collector *metrics.Collector,
	logger logiface.Logger,
) (*contract.WhitelistService, error) {
	if err := cfg.RequireContract(); err != nil {
		return nil, err
	}
	return contract.NewWhitelistService(connector, cfg.ContractAddress(), collector, logger), nil
}

// HomeParams 页面依赖
type HomeParams struct {
	fx.In

	Connector *wallet.Connector
	Service   *contract.WhitelistService
	Alerts    *page.AlertBox
	Bus       eventiface.EventBus
	Metrics   *metrics.Collector
	Logger    logiface.Logger
}

// ProvideHome 白名单页面
func ProvideHome(p HomeParams) *page.Home {
	return page.NewHome(page.Options{
		Wallet:    p.Connector,
		Whitelist: p.Service,
		Alerts:    p.Alerts,
		Bus:       p.Bus,
		Metrics:   p.Metrics,
		Logger:    p.Logger,
	})
}

// pageModule 钱包、合约与页面状态机
func pageModule(dialer wallet.Dialer) fx.Option {
	return fx.Module("page",
		fx.Provide(func() wallet.Dialer { return dialer }),
		fx.Provide(
			page.NewAlertBox,
			ProvideConnector,
			ProvideWhitelistService,
			ProvideHome,
		),
	)
}
