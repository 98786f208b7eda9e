package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mavedefi/whitelist-dapp/client/core/output"
	"github.com/mavedefi/whitelist-dapp/internal/page"
)

// statusResult 页面状态
type statusResult struct {
	Network        string     `json:"network"`
	ChainID        int64      `json:"chain_id"`
	Contract       string     `json:"contract"`
	Account        string     `json:"account,omitempty"`
	Whitelisted    uint64     `json:"whitelisted"`
	MaxWhitelisted uint64     `json:"max_whitelisted"`
	Member         bool       `json:"member"`
	Phase          page.Phase `json:"phase"`
	Button         string     `json:"button"`
}

func (r statusResult) Fields() []output.Field {
	return []output.Field{
		{Key: "Network", Value: fmt.Sprintf("%s (%d)", r.Network, r.ChainID)},
		{Key: "Contract", Value: r.Contract},
		{Key: "Account", Value: r.Account},
		{Key: "Whitelisted", Value: fmt.Sprintf("%d / %d", r.Whitelisted, r.MaxWhitelisted)},
		{Key: "Member", Value: strconv.FormatBool(r.Member)},
		{Key: "Button", Value: r.Button},
	}
}

func newStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "连接钱包并显示白名单人数、容量与成员资格",
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
			capacity, err := s.service.MaxWhitelisted(ctx)
			if err != nil {
				return err
			}

			snap := s.home.Snapshot()
			return c.formatter.Print(statusResult{
				Network:        s.connector.Network(),
				ChainID:        c.cfg.Network.ChainID,
				Contract:       s.service.Address().Hex(),
				Account:        snap.Account,
				Whitelisted:    snap.Count,
				MaxWhitelisted: capacity,
				Member:         snap.Joined,
				Phase:          snap.Phase,
				Button:         snap.Button.Label,
			})
		},
	}
}
