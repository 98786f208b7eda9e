package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mavedefi/whitelist-dapp/client/core/contract"
	"github.com/mavedefi/whitelist-dapp/client/core/output"
	"github.com/mavedefi/whitelist-dapp/client/core/wallet"
	"github.com/mavedefi/whitelist-dapp/internal/app/version"
	"github.com/mavedefi/whitelist-dapp/internal/config"
	logconfig "github.com/mavedefi/whitelist-dapp/internal/config/log"
	corelog "github.com/mavedefi/whitelist-dapp/internal/core/infrastructure/log"
	"github.com/mavedefi/whitelist-dapp/internal/page"
	logiface "github.com/mavedefi/whitelist-dapp/pkg/interfaces/infrastructure/log"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	ConfigPath   string // JSON 配置文件
	OutputFormat string // 输出格式
	Silent       bool   // 静默模式
}

// cliEnv 命令运行环境，测试时替换
type cliEnv struct {
	loadConfig func(path string) (*config.Config, error)
	dial       func(cfg *config.Config) wallet.Dialer
	password   wallet.PasswordFunc
	stdout     io.Writer
	stderr     io.Writer
}

func defaultEnv() *cliEnv {
	return &cliEnv{
		loadConfig: config.Load,
		dial: func(cfg *config.Config) wallet.Dialer {
			return wallet.DialRPC(cfg.Network.RPCURL)
		},
		password: wallet.PromptPassword,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
}

// cli 单次命令的运行状态
type cli struct {
	env       *cliEnv
	flags     GlobalFlags
	cfg       *config.Config
	formatter *output.Formatter
	logger    logiface.Logger
}

func newRootCmd(env *cliEnv) *cobra.Command {
	c := &cli{env: env, logger: corelog.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "whitelist",
		Short: "Mave DeFi 白名单 dApp 命令行",
		Long: `whitelist - Mave DeFi 白名单 dApp

通过配置的钱包查询白名单人数、检查成员资格、加入白名单，
或以 serve 启动网页服务。

配置来源（后者覆盖前者）：默认值、--config 指定的 JSON 文件、.env、环境变量。`,
		Version:       version.GetBuildInfo().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = c.logger.Sync()
		},
	}
	rootCmd.SetOut(env.stdout)
	rootCmd.SetErr(env.stderr)

	rootCmd.PersistentFlags().StringVar(&c.flags.ConfigPath, "config", "", "JSON 配置文件路径 (默认读取 WHITELIST_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&c.flags.OutputFormat, "output", "o", "text", "输出格式: text|json|pretty|table")
	rootCmd.PersistentFlags().BoolVar(&c.flags.Silent, "silent", false, "静默模式 (仅输出结果)")

	rootCmd.AddCommand(
		newStatusCmd(c),
		newJoinCmd(c),
		newAccountCmd(c),
		newServeCmd(c),
	)
	return rootCmd
}

// init 加载配置、输出格式与日志
func (c *cli) init() error {
	format, err := output.ParseFormat(c.flags.OutputFormat)
	if err != nil {
		return err
	}
	c.formatter = output.NewFormatter(format, c.env.stdout)
	c.formatter.SetLogWriter(c.env.stderr)
	c.formatter.SetSilent(c.flags.Silent)

	cfg, err := c.env.loadConfig(c.flags.ConfigPath)
	if err != nil {
		return fmt.Errorf("加载配置: %w", err)
	}
	c.cfg = cfg

	logger, err := corelog.NewWithConsole(logconfig.New(&cfg.Log), zapcoreWriter(c.env.stderr))
	if err != nil {
		return fmt.Errorf("初始化日志: %w", err)
	}
	c.logger = logger
	return nil
}

// loadKey 读取签名私钥，keystore 未配置密码时提示输入
func (c *cli) loadKey() (wallet.KeySource, error) {
	return c.cfg.KeySource().WithPassword(c.env.password)
}

// connector 创建钱包连接器；提示通过 stderr 输出
func (c *cli) connector() (*wallet.Connector, error) {
	src, err := c.loadKey()
	if err != nil {
		return nil, err
	}
	key, err := src.LoadKey()
	if err != nil {
		return nil, fmt.Errorf("load wallet key: %w", err)
	}
	opts := c.cfg.ConnectorOptions()
	opts.Key = key
	return wallet.NewConnector(c.env.dial(c.cfg), opts, wallet.AlertFunc(c.formatter.PrintWarning), c.logger), nil
}

// pageSession 已部署合约上的页面会话
type pageSession struct {
	connector *wallet.Connector
	service   *contract.WhitelistService
	home      *page.Home
}

func (c *cli) openPage() (*pageSession, error) {
	if err := c.cfg.RequireContract(); err != nil {
		return nil, err
	}
	connector, err := c.connector()
	if err != nil {
		return nil, err
	}
	svc := contract.NewWhitelistService(connector, c.cfg.ContractAddress(), nil, c.logger)
	home := page.NewHome(page.Options{
		Wallet:    connector,
		Whitelist: svc,
		Logger:    c.logger,
	})
	return &pageSession{connector: connector, service: svc, home: home}, nil
}

func (s *pageSession) close(logger logiface.Logger) {
	if err := s.connector.Close(); err != nil {
		logger.Warnf("关闭链连接失败: %v", err)
	}
}

// commandContext cobra 未设置上下文时使用 Background
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
