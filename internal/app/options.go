package app

import (
	"github.com/mavedefi/whitelist-dapp/client/core/wallet"
	"github.com/mavedefi/whitelist-dapp/internal/config"
)

// Option 应用程序选项函数类型
type Option func(*options)

// options 应用程序选项
type options struct {
	// 已加载的配置，为空时按默认顺序加载
	cfg *config.Config

	// 配置文件路径
	configFilePath string

	// 链连接方式，为空时按配置拨号 RPC
	dialer wallet.Dialer

	// fx 事件日志
	verbose bool
}

// WithConfig 使用已加载的配置
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithConfigFile 设置配置文件路径
func WithConfigFile(configPath string) Option {
	return func(o *options) {
		o.configFilePath = configPath
	}
}

// WithDialer 替换链连接方式
func WithDialer(d wallet.Dialer) Option {
	return func(o *options) {
		o.dialer = d
	}
}

// WithFxEvents 把依赖注入过程写入日志
func WithFxEvents() Option {
	return func(o *options) {
		o.verbose = true
	}
}

// newOptions 创建选项
func newOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// config 返回配置，未提供时加载
func (o *options) config() (*config.Config, error) {
	if o.cfg != nil {
		return o.cfg, nil
	}
	return config.Load(o.configFilePath)
}
