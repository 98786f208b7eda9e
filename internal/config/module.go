package config

import (
	"go.uber.org/fx"

	logconfig "github.com/mavedefi/whitelist-dapp/internal/config/log"
)

// ConfigOutput 配置模块输出
type ConfigOutput struct {
	fx.Out

	Network  NetworkConfig
	Contract ContractConfig
	HTTP     HTTPConfig
	Log      *logconfig.LogOptions
}

// ProvideSections 把配置拆分为各模块使用的部分
func ProvideSections(cfg *Config) ConfigOutput {
	logOptions := cfg.Log
	return ConfigOutput{
		Network:  cfg.Network,
		Contract: cfg.Contract,
		HTTP:     cfg.HTTP,
		Log:      &logOptions,
	}
}

// Module 返回配置模块，cfg 由命令行加载后传入
func Module(cfg *Config) fx.Option {
	return fx.Module("config",
		fx.Supply(cfg),
		fx.Provide(ProvideSections),
	)
}
