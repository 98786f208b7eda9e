package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mavedefi/whitelist-dapp/internal/app"
)

func newServeCmd(c *cli) *cobra.Command {
	var fxEvents bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动白名单网页服务",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, err := c.loadKey()
			if err != nil {
				return err
			}
			c.cfg.Wallet.KeystorePassword = src.KeystorePassword

			opts := []app.Option{app.WithConfig(c.cfg), app.WithDialer(c.env.dial(c.cfg))}
			if fxEvents {
				opts = append(opts, app.WithFxEvents())
			}
			a, err := app.Start(opts...)
			if err != nil {
				return err
			}
			c.formatter.PrintSuccess(fmt.Sprintf("页面服务已启动: http://%s/", a.Addr()))

			<-commandContext(cmd).Done()
			c.formatter.PrintInfo("正在停止页面服务...")
			return a.Stop()
		},
	}
	cmd.Flags().BoolVar(&fxEvents, "fx-events", false, "记录依赖注入过程")
	return cmd
}
