// whitelist-deploy 部署 Whitelist 合约（容量 10）并打印合约地址
//
// 网络、账户与编译产物路径来自 .env、环境变量和 WHITELIST_CONFIG 指定的 JSON 文件。
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mavedefi/whitelist-dapp/client/core/wallet"
	"github.com/mavedefi/whitelist-dapp/internal/config"
	logconfig "github.com/mavedefi/whitelist-dapp/internal/config/log"
	corelog "github.com/mavedefi/whitelist-dapp/internal/core/infrastructure/log"
	logiface "github.com/mavedefi/whitelist-dapp/pkg/interfaces/infrastructure/log"
)

func newRootCmd(logger *logiface.Logger) *cobra.Command {
	return &cobra.Command{
		Use:           "whitelist-deploy",
		Short:         "部署 Whitelist 合约",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load("")
			if err != nil {
				return err
			}
			l, err := corelog.New(logconfig.New(&cfg.Log))
			if err != nil {
				return err
			}
			*logger = l

			d := &deployer{
				cfg:      cfg,
				dial:     wallet.DialRPC(cfg.Network.RPCURL),
				alerter:  wallet.TerminalAlerter{},
				password: wallet.PromptPassword,
				out:      cmd.OutOrStdout(),
				logger:   corelog.NewModuleLogger(l, "deploy"),
			}
			_, err = d.run(cmd.Context())
			return err
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := corelog.NewNop()
	if err := newRootCmd(&logger).ExecuteContext(ctx); err != nil {
		logger.Errorf("部署失败: %v", err)
		_ = logger.Sync()
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
	_ = logger.Sync()
}
