package app

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/mavedefi/whitelist-dapp/client/core/wallet"
	apihttp "github.com/mavedefi/whitelist-dapp/internal/api/http"
	"github.com/mavedefi/whitelist-dapp/internal/config"
	"github.com/mavedefi/whitelist-dapp/internal/core/infrastructure/event"
	log "github.com/mavedefi/whitelist-dapp/internal/core/infrastructure/log"
	"github.com/mavedefi/whitelist-dapp/internal/core/infrastructure/metrics"
)

// Bootstrap 应用引导程序
type Bootstrap struct {
	cfg     *config.Config
	dialer  wallet.Dialer
	verbose bool
	fxApp   *fx.App
	server  *apihttp.Server
}

// NewBootstrap 创建引导程序
func NewBootstrap(cfg *config.Config, opts *options) *Bootstrap {
	dialer := opts.dialer
	if dialer == nil {
		dialer = wallet.DialRPC(cfg.Network.RPCURL)
	}
	return &Bootstrap{cfg: cfg, dialer: dialer, verbose: opts.verbose}
}

// SetupInfrastructureLayer 配置、日志、指标、事件
func (b *Bootstrap) SetupInfrastructureLayer() []fx.Option {
	return []fx.Option{
		config.Module(b.cfg), // 1. 配置(不依赖其他)
		log.Module(),         // 2. 日志(依赖配置)
		metrics.Module(),     // 3. 指标
		event.Module(),       // 4. 事件总线
	}
}

// SetupBusinessLayer 钱包、合约与页面
func (b *Bootstrap) SetupBusinessLayer() []fx.Option {
	return []fx.Option{
		pageModule(b.dialer),
	}
}

// SetupApplicationLayer 页面服务
func (b *Bootstrap) SetupApplicationLayer() []fx.Option {
	return []fx.Option{
		apihttp.Module(),
		fx.Populate(&b.server),
	}
}

// SetupModules 设置所有应用模块
func (b *Bootstrap) SetupModules() []fx.Option {
	var all []fx.Option
	all = append(all, b.SetupInfrastructureLayer()...)
	all = append(all, b.SetupBusinessLayer()...)
	all = append(all, b.SetupApplicationLayer()...)
	return all
}

// fxLogger fx 事件日志
func (b *Bootstrap) fxLogger() fx.Option {
	if !b.verbose {
		return fx.NopLogger
	}
	return fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: l.Named("fx")}
	})
}

// CreateFxApp 创建并配置fx应用
func (b *Bootstrap) CreateFxApp() error {
	b.fxApp = fx.New(
		fx.Options(b.SetupModules()...),
		b.fxLogger(),
	)
	if err := b.fxApp.Err(); err != nil {
		return fmt.Errorf("依赖装配失败: %w", err)
	}
	return nil
}

// StartApp 启动应用程序
func (b *Bootstrap) StartApp(ctx context.Context) error {
	if err := b.fxApp.Start(ctx); err != nil {
		return fmt.Errorf("启动应用失败: %w", err)
	}
	return nil
}

// StopApp 停止应用程序
func (b *Bootstrap) StopApp(ctx context.Context) error {
	if err := b.fxApp.Stop(ctx); err != nil {
		return fmt.Errorf("停止应用失败: %w", err)
	}
	return nil
}

// Validate 只检查依赖图，不启动
func Validate(opts ...Option) error {
	o := newOptions(opts...)
	cfg, err := o.config()
	if err != nil {
		return err
	}
	b := NewBootstrap(cfg, o)
	return fx.ValidateApp(fx.Options(b.SetupModules()...), fx.NopLogger)
}
