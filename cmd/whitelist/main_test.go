package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mavedefi/whitelist-dapp/client/core/wallet"
	"github.com/mavedefi/whitelist-dapp/internal/config"
	"github.com/mavedefi/whitelist-dapp/internal/page"
	"github.com/mavedefi/whitelist-dapp/internal/testutil/fakechain"
)

const (
	hardhatKey     = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	hardhatAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

type harness struct {
	cfg    *config.Config
	chain  *fakechain.Backend
	stdout bytes.Buffer
	stderr bytes.Buffer
	env    *cliEnv
}

func newHarness(t *testing.T, chainID int64, members ...common.Address) *harness {
	t.Helper()
	h := &harness{chain: fakechain.New(chainID)}

	cfg := config.DefaultConfig()
	cfg.Contract.Address = h.chain.SeedWhitelist(10, members...).Hex()
	cfg.Wallet.PrivateKey = hardhatKey
	cfg.Log.ToConsole = false
	h.cfg = cfg

	h.env = &cliEnv{
		loadConfig: func(string) (*config.Config, error) { return h.cfg, nil },
		dial:       func(*config.Config) wallet.Dialer { return wallet.StaticDialer(h.chain) },
		password: func(string) (string, error) {
			t.Fatal("unexpected password prompt")
			return "", nil
		},
		stdout: &h.stdout,
		stderr: &h.stderr,
	}
	return h
}

func (h *harness) run(args ...string) error {
	h.stdout.Reset()
	h.stderr.Reset()
	cmd := newRootCmd(h.env)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func (h *harness) decode(t *testing.T, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), v), h.stdout.String())
}

func randomAddress(t *testing.T) common.Address {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return crypto.PubkeyToAddress(key.PublicKey)
}

func TestStatus(t *testing.T) {
	h := newHarness(t, 4, randomAddress(t), randomAddress(t))

	require.NoError(t, h.run("status", "-o", "json"))

	var res statusResult
	h.decode(t, &res)
	assert.Equal(t, uint64(2), res.Whitelisted)
	assert.Equal(t, uint64(10), res.MaxWhitelisted)
	assert.False(t, res.Member)
	assert.Equal(t, page.PhaseConnectedNotMember, res.Phase)
	assert.Equal(t, page.LabelJoin, res.Button)
	assert.Equal(t, "Rinkeby", res.Network)
	assert.Equal(t, hardhatAddress, res.Account)
}

func TestStatus_TextOutput(t *testing.T) {
	h := newHarness(t, 4)

	require.NoError(t, h.run("status"))
	out := h.stdout.String()
	assert.Contains(t, out, "Whitelisted: 0 / 10\n")
	assert.Contains(t, out, "Button: "+page.LabelJoin+"\n")
}

func TestJoin(t *testing.T) {
	h := newHarness(t, 4, randomAddress(t))

	require.NoError(t, h.run("join", "-o", "json"))

	var res joinResult
	h.decode(t, &res)
	assert.True(t, res.Joined)
	assert.Equal(t, uint64(2), res.Whitelisted)
	assert.Equal(t, page.LabelJoined, res.Button)
	assert.Equal(t, 2, h.chain.Members(h.cfg.ContractAddress()))

	sent := h.chain.SentCount()
	require.NoError(t, h.run("join", "-o", "json"))
	assert.Equal(t, sent, h.chain.SentCount())
}

func TestJoin_Failures(t *testing.T) {
	tests := []struct {
		name    string
		chainID int64
		setup   func(h *harness)
		wantErr error
		stderr  string
	}{
		{
			name:    "错误网络",
			chainID: 1,
			wantErr: wallet.ErrWrongNetwork,
			stderr:  "Change the network to Rinkeby.",
		},
		{
			name:    "交易回滚",
			chainID: 4,
			setup:   func(h *harness) { h.chain.RevertNext() },
		},
		{
			name:    "未配置合约",
			chainID: 4,
			setup:   func(h *harness) { h.cfg.Contract.Address = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.chainID)
			if tt.setup != nil {
				tt.setup(h)
			}

			err := h.run("join", "-o", "json")
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.stderr != "" {
				assert.Contains(t, h.stderr.String(), tt.stderr)
			}
			assert.Empty(t, h.stdout.String())
		})
	}
}

func TestAccount(t *testing.T) {
	h := newHarness(t, 4)

	require.NoError(t, h.run("account"))
	assert.Contains(t, h.stdout.String(), "Address: "+hardhatAddress+"\n")
	assert.Contains(t, h.stdout.String(), "Source: private_key\n")

	h.cfg.Wallet.PrivateKey = ""
	assert.ErrorIs(t, h.run("account"), wallet.ErrNoSigner)
}

func TestAccount_KeystorePrompt(t *testing.T) {
	h := newHarness(t, 4)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	ks := keystore.NewKeyStore(t.TempDir(), keystore.LightScryptN, keystore.LightScryptP)
	acct, err := ks.ImportECDSA(key, "s3cret")
	require.NoError(t, err)

	h.cfg.Wallet.PrivateKey = ""
	h.cfg.Wallet.KeystorePath = acct.URL.Path

	var prompts []string
	h.env.password = func(prompt string) (string, error) {
		prompts = append(prompts, prompt)
		return "s3cret", nil
	}

	require.NoError(t, h.run("account", "-o", "json"))
	var res accountResult
	h.decode(t, &res)
	assert.Equal(t, acct.Address.Hex(), res.Address)
	assert.Equal(t, wallet.SourceKeystore, res.Source)
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], acct.URL.Path)
}

func TestAccount_NewMnemonic(t *testing.T) {
	h := newHarness(t, 4)

	require.NoError(t, h.run("account", "new-mnemonic", "-o", "json"))
	var res mnemonicResult
	h.decode(t, &res)
	assert.Len(t, strings.Fields(res.Mnemonic), 12)
	assert.True(t, wallet.ValidateMnemonic(res.Mnemonic))
	assert.Equal(t, "m/44'/60'/0'/0/0", res.Path)
	assert.True(t, common.IsHexAddress(res.Address))

	require.NoError(t, h.run("account", "new-mnemonic", "--words", "24", "-o", "json"))
	h.decode(t, &res)
	assert.Len(t, strings.Fields(res.Mnemonic), 24)

	require.NoError(t, h.run("account", "new-mnemonic", "--index", "7", "-o", "json"))
	h.decode(t, &res)
	assert.Equal(t, "m/44'/60'/0'/0/7", res.Path)
	key, err := wallet.DeriveKeyFromMnemonic(res.Mnemonic, "", res.Path)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(key.PublicKey).Hex(), res.Address)

	assert.Error(t, h.run("account", "new-mnemonic", "--index", "2147483648"))

	assert.Error(t, h.run("account", "new-mnemonic", "--words", "13"))
}

func TestUnknownOutputFormat(t *testing.T) {
	h := newHarness(t, 4)
	assert.Error(t, h.run("status", "-o", "yaml"))
}
