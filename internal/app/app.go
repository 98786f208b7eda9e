// Package app 组装白名单页面服务：配置、日志、指标、事件、钱包、合约、页面与 HTTP
package app

import (
	"context"
	"fmt"
	"time"
)

const (
	startTimeout = 30 * time.Second
	stopTimeout  = 30 * time.Second
)

// App 页面服务
type App interface {
	// Addr 页面服务实际监听地址
	Addr() string

	// Stop 停止应用
	Stop() error
}

type internalApp struct {
	bootstrap *Bootstrap
}

// Start 装配并启动页面服务
func Start(opts ...Option) (App, error) {
	o := newOptions(opts...)
	cfg, err := o.config()
	if err != nil {
		return nil, err
	}

	b := NewBootstrap(cfg, o)
	if err := b.CreateFxApp(); err != nil {
		return nil, fmt.Errorf("创建应用失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := b.StartApp(ctx); err != nil {
		return nil, err
	}
	return &internalApp{bootstrap: b}, nil
}

// Addr 页面服务地址
func (a *internalApp) Addr() string {
	if a.bootstrap.server == nil {
		return ""
	}
	return a.bootstrap.server.Addr()
}

// Stop 停止应用
func (a *internalApp) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return a.bootstrap.StopApp(ctx)
}
