package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"

	"github.com/mavedefi/whitelist-dapp/client/core/output"
	"github.com/mavedefi/whitelist-dapp/client/core/wallet"
)

// accountResult 签名账户
type accountResult struct {
	Address string            `json:"address"`
	Source  wallet.SourceType `json:"source"`
}

func (r accountResult) Fields() []output.Field {
	return []output.Field{
		{Key: "Address", Value: r.Address},
		{Key: "Source", Value: string(r.Source)},
	}
}

// mnemonicResult 新助记词及其第一个地址
type mnemonicResult struct {
	Mnemonic string `json:"mnemonic"`
	Path     string `json:"path"`
	Address  string `json:"address"`
}

func (r mnemonicResult) Fields() []output.Field {
	return []output.Field{
		{Key: "Mnemonic", Value: r.Mnemonic},
		{Key: "Path", Value: r.Path},
		{Key: "Address", Value: r.Address},
	}
}

func newAccountCmd(c *cli) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "显示配置的签名账户地址",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			src, err := c.loadKey()
			if err != nil {
				return err
			}
			key, err := src.LoadKey()
			if err != nil {
				return fmt.Errorf("load wallet key: %w", err)
			}
			if key == nil {
				return wallet.ErrNoSigner
			}
			return c.formatter.Print(accountResult{
				Address: crypto.PubkeyToAddress(key.PublicKey).Hex(),
				Source:  src.Type(),
			})
		},
	}
	accountCmd.AddCommand(newMnemonicCmd(c))
	return accountCmd
}

func newMnemonicCmd(c *cli) *cobra.Command {
	var (
		words int
		index uint32
	)
	cmd := &cobra.Command{
		Use:   "new-mnemonic",
		Short: "生成新的 BIP39 助记词并显示指定索引的地址",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var strength wallet.MnemonicStrength
			switch words {
			case 12:
				strength = wallet.Mnemonic12Words
			case 24:
				strength = wallet.Mnemonic24Words
			default:
				return fmt.Errorf("--words must be 12 or 24, got %d", words)
			}
			if index >= wallet.HardenedOffset {
				return fmt.Errorf("--index must be below %d, got %d", wallet.HardenedOffset, index)
			}

			mnemonic, err := wallet.GenerateMnemonic(strength)
			if err != nil {
				return err
			}
			path := wallet.DefaultDerivationPath().WithAddressIndex(index)
			key, err := wallet.DeriveKeyFromMnemonic(mnemonic, "", path.String())
			if err != nil {
				return err
			}

			c.formatter.PrintWarning("离线保存助记词，持有助记词即可控制该账户")
			return c.formatter.Print(mnemonicResult{
				Mnemonic: mnemonic,
				Path:     path.String(),
				Address:  crypto.PubkeyToAddress(key.PublicKey).Hex(),
			})
		},
	}
	cmd.Flags().IntVar(&words, "words", 12, "助记词长度: 12|24")
	cmd.Flags().Uint32Var(&index, "index", 0, "地址索引 m/44'/60'/0'/0/<index>")
	return cmd
}
