package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mavedefi/whitelist-dapp/client/core/output"
	"github.com/mavedefi/whitelist-dapp/internal/page"
)

// joinResult 加入结果
type joinResult struct {
	Account     string `json:"account"`
	Whitelisted uint64 `json:"whitelisted"`
	Joined      bool   `json:"joined"`
	Button      string `json:"button"`
}

func (r joinResult) Fields() []output.Field {
	return []output.Field{
		{Key: "Account", Value: r.Account},
		{Key: "Whitelisted", Value: fmt.Sprintf("%d", r.Whitelisted)},
		{Key: "Status", Value: r.Button},
	}
}

func newJoinCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "join",
		Short: "把当前账户加入白名单并等待交易确认",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			s, err := c.openPage()
			if err != nil {
				return err
			}
			defer s.close(c.logger)

			if err := s.home.ConnectWallet(ctx); err != nil {
				return err
			}

			if !s.home.Snapshot().Joined {
				done := c.formatter.Spinner(page.LabelLoading)
				if err := s.home.AddAddressToWhitelist(ctx); err != nil {
					done(false, err.Error())
					return err
				}
				done(true, page.LabelJoined)
			}

			snap := s.home.Snapshot()
			return c.formatter.Print(joinResult{
				Account:     snap.Account,
				Whitelisted: snap.Count,
				Joined:      snap.Joined,
				Button:      snap.Button.Label,
			})
		},
	}
}
